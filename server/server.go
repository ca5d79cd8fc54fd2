// Package server exposes an X-tree over HTTP.
//
// Routes:
//
//	POST   /points         insert points
//	DELETE /points/:id     delete a point
//	POST   /search/range   points inside a box
//	POST   /search/knn     k nearest neighbors of a query point
//	GET    /stats          tree summary
package server

import (
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/TrevorS/xtree"
	"github.com/TrevorS/xtree/pointset"
)

// RequestIDHeader carries the identifier assigned to every request.
const RequestIDHeader = "X-Request-ID"

// Server answers HTTP requests against a tree. When a store is attached,
// inserted and deleted points are written through to it.
type Server struct {
	tree  *xtree.SyncTree
	store *pointset.Store
	log   logrus.FieldLogger
}

// New returns a Server for tree. store may be nil; log defaults to xtree.Log.
func New(tree *xtree.SyncTree, store *pointset.Store, log logrus.FieldLogger) *Server {
	if log == nil {
		log = xtree.Log
	}
	return &Server{tree: tree, store: store, log: log}
}

// Handler builds the gin engine serving all routes.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.POST("/points", s.insertPoints)
	r.DELETE("/points/:id", s.deletePoint)
	r.POST("/search/range", s.searchRange)
	r.POST("/search/knn", s.searchKNN)
	r.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.tree.Stats())
	})
	return r
}

// requestLogger stamps every request with an identifier and logs it once
// the handler is done.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("requestID", id)
		c.Writer.Header().Set(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		entry := s.log.WithFields(logrus.Fields{
			"requestID": id,
			"method":    c.Request.Method,
			"path":      c.FullPath(),
			"status":    c.Writer.Status(),
			"latency":   time.Since(start),
		})
		if len(c.Errors) > 0 {
			entry.WithError(c.Errors.Last()).Warn("request failed")
			return
		}
		entry.Info("request")
	}
}

type pointJSON struct {
	ID     int       `json:"id"`
	Coords []float64 `json:"coords" binding:"required"`
}

func (s *Server) insertPoints(c *gin.Context) {
	var req struct {
		Points []pointJSON `json:"points" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	// Every point is checked before anything is written, so a rejected batch
	// leaves both the tree and the store untouched. Stored points are float32;
	// with a store attached the tree gets the same rounding, and a later
	// delete by stored coordinates finds them.
	dims := s.tree.NumFeatures()
	pts := make([]pointset.Point, len(req.Points))
	coords := make([][]float64, len(req.Points))
	seen := make(map[int]bool, len(req.Points))
	for i, p := range req.Points {
		if len(p.Coords) != dims {
			s.fail(c, http.StatusBadRequest, errors.Newf("point %d has %d coordinates, want %d", p.ID, len(p.Coords), dims))
			return
		}
		pts[i] = pointset.Point{ID: p.ID, Coords: float32s(p.Coords)}
		coords[i] = p.Coords
		if s.store != nil {
			coords[i] = pointset.Float64s(pts[i].Coords)
			if seen[p.ID] {
				s.fail(c, http.StatusBadRequest, errors.Newf("point %d appears twice in the batch", p.ID))
				return
			}
			seen[p.ID] = true
		}
		for k, v := range coords[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				s.fail(c, http.StatusBadRequest, errors.Newf("point %d: coordinate %d is out of range", p.ID, k))
				return
			}
		}
	}

	// Rows about to be replaced; their points leave the tree first.
	var replaced []pointset.Point
	if s.store != nil {
		ctx := c.Request.Context()
		for _, p := range pts {
			old, ok, err := s.store.Get(ctx, p.ID)
			if err != nil {
				s.fail(c, http.StatusInternalServerError, err)
				return
			}
			if ok {
				replaced = append(replaced, old)
			}
		}
		if err := s.store.Put(ctx, pts); err != nil {
			s.fail(c, http.StatusInternalServerError, err)
			return
		}
	}

	for _, old := range replaced {
		s.tree.Delete(old.ID, pointset.Float64s(old.Coords))
	}
	for i, p := range pts {
		if err := s.tree.Insert(p.ID, coords[i]); err != nil {
			s.fail(c, http.StatusInternalServerError, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"inserted": len(req.Points), "size": s.tree.Len()})
}

// deletePoint removes a point. The coordinates come from the request body
// when given, otherwise from the attached store.
func (s *Server) deletePoint(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	var req struct {
		Coords []float64 `json:"coords"`
	}
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			s.fail(c, http.StatusBadRequest, err)
			return
		}
	}
	ctx := c.Request.Context()
	coords := req.Coords
	if coords == nil && s.store != nil {
		p, ok, err := s.store.Get(ctx, id)
		if err != nil {
			s.fail(c, http.StatusInternalServerError, err)
			return
		}
		if ok {
			coords = pointset.Float64s(p.Coords)
		}
	}
	if coords == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "point not found"})
		return
	}

	if !s.tree.Delete(id, coords) {
		c.JSON(http.StatusNotFound, gin.H{"error": "point not found"})
		return
	}
	if s.store != nil {
		if _, err := s.store.Delete(ctx, id); err != nil {
			s.fail(c, http.StatusInternalServerError, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id, "size": s.tree.Len()})
}

func (s *Server) searchRange(c *gin.Context) {
	var req struct {
		Lo []float64 `json:"lo" binding:"required"`
		Hi []float64 `json:"hi" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	if len(req.Lo) != len(req.Hi) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lo and hi differ in length"})
		return
	}
	ids, err := s.tree.Range(xtree.NewBox(req.Lo, req.Hi))
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	if ids == nil {
		ids = []int{}
	}
	c.JSON(http.StatusOK, gin.H{"ids": ids})
}

type neighborJSON struct {
	ID       int       `json:"id"`
	Coords   []float64 `json:"coords"`
	Distance float64   `json:"distance"`
}

func (s *Server) searchKNN(c *gin.Context) {
	var req struct {
		Query []float64 `json:"query" binding:"required"`
		K     int       `json:"k"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	if req.K == 0 {
		req.K = 1
	}
	nbrs, err := s.tree.NearestNeighbors(req.Query, req.K)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	out := make([]neighborJSON, len(nbrs))
	for i, nb := range nbrs {
		out[i] = neighborJSON{ID: nb.ID, Coords: nb.Coords, Distance: nb.Distance}
	}
	c.JSON(http.StatusOK, gin.H{"neighbors": out})
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func float32s(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
