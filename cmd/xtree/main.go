// Command xtree builds an X-tree from a SQLite point table, prints its shape,
// and optionally answers a nearest-neighbor query or serves the tree over
// HTTP.
//
//	xtree -db points.db -table points -query 0.5,0.5 -k 3
//	xtree -db points.db -table points -listen :8080
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/TrevorS/xtree"
	"github.com/TrevorS/xtree/pointset"
	"github.com/TrevorS/xtree/server"
)

func main() {
	var (
		dsn        = flag.String("db", "points.db", "SQLite database holding the point table")
		table      = flag.String("table", "points", "point table name")
		query      = flag.String("query", "", "comma-separated coordinates of a nearest-neighbor query")
		k          = flag.Int("k", 5, "number of neighbors to return for -query")
		listen     = flag.String("listen", "", "serve the tree over HTTP on this address")
		normalize  = flag.Bool("normalize", false, "scale every point to unit length")
		maxLeaf    = flag.Int("max-leaf", 0, "leaf capacity (0 keeps the default)")
		maxOverlap = flag.Float64("max-overlap", 0, "supernode overlap threshold (0 keeps the default)")
		verbose    = flag.Bool("v", false, "log tree restructuring at debug level")
	)
	flag.Parse()

	log := xtree.Log
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := run(*dsn, *table, *query, *k, *listen, *normalize, *maxLeaf, *maxOverlap); err != nil {
		log.WithError(err).Error("xtree failed")
		os.Exit(1)
	}
}

func run(dsn, table, query string, k int, listen string, normalize bool, maxLeaf int, maxOverlap float64) error {
	ctx := context.Background()

	db, err := pointset.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := pointset.NewStore(ctx, db, table)
	if err != nil {
		return err
	}

	cfg := xtree.DefaultConfig()
	if maxLeaf > 0 {
		cfg.MaxLeafSize = maxLeaf
		cfg.MinLeafSize = max(1, maxLeaf/4)
	}
	if maxOverlap > 0 {
		cfg.MaxOverlap = maxOverlap
	}
	tree, err := store.BuildTree(ctx, pointset.BuildOptions{Config: cfg, Normalize: normalize})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tree.Stats()); err != nil {
		return err
	}

	if query != "" {
		q, err := parseCoords(query)
		if err != nil {
			return err
		}
		nbrs, err := tree.NearestNeighbors(q, k)
		if err != nil {
			return err
		}
		for _, nb := range nbrs {
			fmt.Printf("%d\t%.6g\n", nb.ID, nb.Distance)
		}
	}

	if listen != "" {
		srv := server.New(xtree.Wrap(tree), store, xtree.Log)
		xtree.Log.WithField("addr", listen).Info("serving")
		return srv.Handler().Run(listen)
	}
	return nil
}

func parseCoords(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid coordinate %q", p)
		}
		out[i] = v
	}
	return out, nil
}
