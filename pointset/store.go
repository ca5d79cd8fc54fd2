// Package pointset stores point sets in SQLite and loads them into X-trees.
//
// A point set is a table with an integer primary key and a BLOB column of
// little-endian float32 coordinates. The pure-Go modernc.org/sqlite driver is
// registered under the name "sqlite".
package pointset

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/TrevorS/xtree"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// Point is one stored point.
type Point struct {
	ID     int
	Coords []float32
}

// Store reads and writes one point table.
type Store struct {
	db    *sql.DB
	table string
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Open opens a SQLite database with the pure-Go driver.
func Open(dsn string) (*sql.DB, error) { return sql.Open("sqlite", dsn) }

// NewStore returns a Store for table, creating the table if needed.
func NewStore(ctx context.Context, db *sql.DB, table string) (*Store, error) {
	if db == nil {
		return nil, errors.New("pointset: db is nil")
	}
	if !tableName.MatchString(table) {
		return nil, errors.Newf("pointset: invalid table name %q", table)
	}
	s := &Store{db: db, table: table}
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the point table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id     INTEGER PRIMARY KEY,
	coords BLOB NOT NULL
)`, s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return errors.Wrapf(err, "pointset: create table %s", s.table)
	}
	return nil
}

// Put inserts or replaces points in one transaction.
func (s *Store) Put(ctx context.Context, pts []Point) error {
	if len(pts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT OR REPLACE INTO %s(id, coords) VALUES(?, ?)`, s.table))
	if err != nil {
		return errors.Wrap(err, "pointset: prepare insert")
	}
	defer stmt.Close()

	for _, p := range pts {
		if len(p.Coords) == 0 {
			return errors.Newf("pointset: point %d has no coordinates", p.ID)
		}
		if _, err := stmt.ExecContext(ctx, p.ID, Encode(p.Coords)); err != nil {
			return errors.Wrapf(err, "pointset: insert point %d", p.ID)
		}
	}
	return tx.Commit()
}

// Delete removes a point by identifier. It reports whether a row was removed.
func (s *Store) Delete(ctx context.Context, id int) (bool, error) {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.table), id)
	if err != nil {
		return false, errors.Wrapf(err, "pointset: delete point %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Get returns one point by identifier.
func (s *Store) Get(ctx context.Context, id int) (Point, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT coords FROM %s WHERE id = ?`, s.table), id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return Point{}, false, nil
	}
	if err != nil {
		return Point{}, false, errors.Wrapf(err, "pointset: get point %d", id)
	}
	coords, err := Decode(blob)
	if err != nil {
		return Point{}, false, errors.Wrapf(err, "pointset: point %d", id)
	}
	return Point{ID: id, Coords: coords}, true, nil
}

// Load returns every point in the table in identifier order.
func (s *Store) Load(ctx context.Context) ([]Point, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, coords FROM %s ORDER BY id`, s.table))
	if err != nil {
		return nil, errors.Wrapf(err, "pointset: load %s", s.table)
	}
	defer rows.Close()

	var out []Point
	for rows.Next() {
		var id int64
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, err
		}
		coords, err := Decode(blob)
		if err != nil {
			return nil, errors.Wrapf(err, "pointset: point %d", id)
		}
		out = append(out, Point{ID: int(id), Coords: coords})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of stored points.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&n); err != nil {
		return 0, errors.Wrapf(err, "pointset: count %s", s.table)
	}
	return n, nil
}

// BuildOptions controls BuildTree.
type BuildOptions struct {
	// Config is passed to xtree.New. A zero Config means xtree.DefaultConfig.
	Config xtree.Config

	// Normalize scales every point to unit length before insertion.
	Normalize bool
}

// BuildTree loads every point of the table into a new tree. The dimensionality
// is taken from the first point; a point of any other length is an error.
func (s *Store) BuildTree(ctx context.Context, opts BuildOptions) (*xtree.XTree, error) {
	pts, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(pts) == 0 {
		return nil, errors.Newf("pointset: table %s is empty", s.table)
	}

	cfg := opts.Config
	if cfg.MaxLeafSize == 0 {
		logger := cfg.Logger
		cfg = xtree.DefaultConfig()
		cfg.Logger = logger
	}
	dims := len(pts[0].Coords)
	tree, err := xtree.New(dims, cfg)
	if err != nil {
		return nil, err
	}
	for _, p := range pts {
		if len(p.Coords) != dims {
			return nil, errors.Newf("pointset: point %d has %d coordinates, want %d", p.ID, len(p.Coords), dims)
		}
		c := p.Coords
		if opts.Normalize {
			c = Normalize(c)
		}
		if err := tree.Insert(p.ID, Float64s(c)); err != nil {
			return nil, errors.Wrapf(err, "pointset: point %d", p.ID)
		}
	}

	tree.Config().Logger.WithFields(logrus.Fields{
		"table":  s.table,
		"points": tree.Len(),
		"dims":   dims,
		"height": tree.Height(),
	}).Info("pointset: built tree")
	return tree, nil
}
