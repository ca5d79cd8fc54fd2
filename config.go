package xtree

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Config controls X-tree node capacities and split behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// MinLeafSize is the fewest points a non-root leaf may hold after a split.
	// Must be >= 1. Default: 5.
	MinLeafSize int

	// MaxLeafSize is the most points a leaf holds before it is split or has
	// entries forcibly reinserted. Must be >= 2*MinLeafSize. Default: 20.
	MaxLeafSize int

	// MinNumChildren is the fewest children a non-root internal node may hold
	// after a split. Must be >= 1. Default: 3.
	MinNumChildren int

	// MaxNumChildren is the most children an internal node holds before it is
	// split. Supernodes double this limit in place. Must be >= 2*MinNumChildren.
	// Default: 8.
	MaxNumChildren int

	// MaxOverlap is the largest overlap-to-area ratio an internal split may
	// have. When neither the best split nor the topological split gets under
	// it, the node becomes a supernode instead. Must be in (0, 1]. Default: 0.2.
	MaxOverlap float64

	// ReinsertFraction is the share of a full leaf's points that is removed
	// and reinserted from the root the first time a leaf overflows at a given
	// depth during an insertion. When floor(ReinsertFraction*MaxLeafSize) is 0
	// the leaf is split instead. Must be in [0, 0.5). Default: 0.3.
	ReinsertFraction float64

	// Metric ranks points by distance to a leaf's centroid during forced
	// reinsertion, and measures nearest-neighbor distance.
	// Default: EuclideanMetric.
	Metric Metric

	// Descent picks the child to descend into during insertion.
	// Default: MinimalEnlargement.
	Descent DescentStrategy

	// Statistic, when set, is called for every node materialized by a split
	// or by growing the root, after its contents are in place.
	Statistic StatisticFunc

	// Logger receives split, reinsertion and supernode events at debug level.
	// Default: the package-level Log.
	Logger logrus.FieldLogger

	// CheckInvariants makes splits assert their post-conditions and panic
	// with an assertion failure when they do not hold. Meant for tests.
	CheckInvariants bool
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		MinLeafSize:      5,
		MaxLeafSize:      20,
		MinNumChildren:   3,
		MaxNumChildren:   8,
		MaxOverlap:       0.2,
		ReinsertFraction: 0.3,
		Metric:           EuclideanMetric{},
		Descent:          MinimalEnlargement{},
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config, dims int) error {
	if dims < 1 {
		return errors.Newf("xtree: dimensionality must be >= 1, got %d", dims)
	}
	if cfg.MinLeafSize < 1 {
		return errors.Newf("xtree: MinLeafSize must be >= 1, got %d", cfg.MinLeafSize)
	}
	if cfg.MaxLeafSize < 2*cfg.MinLeafSize {
		return errors.Newf("xtree: MaxLeafSize must be >= 2*MinLeafSize, got %d < 2*%d",
			cfg.MaxLeafSize, cfg.MinLeafSize)
	}
	if cfg.MinNumChildren < 1 {
		return errors.Newf("xtree: MinNumChildren must be >= 1, got %d", cfg.MinNumChildren)
	}
	if cfg.MaxNumChildren < 2*cfg.MinNumChildren {
		return errors.Newf("xtree: MaxNumChildren must be >= 2*MinNumChildren, got %d < 2*%d",
			cfg.MaxNumChildren, cfg.MinNumChildren)
	}
	if !(cfg.MaxOverlap > 0 && cfg.MaxOverlap <= 1) {
		return errors.Newf("xtree: MaxOverlap must be in (0, 1], got %f", cfg.MaxOverlap)
	}
	if !(cfg.ReinsertFraction >= 0 && cfg.ReinsertFraction < 0.5) {
		return errors.Newf("xtree: ReinsertFraction must be in [0, 0.5), got %f", cfg.ReinsertFraction)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.Descent == nil {
		cfg.Descent = MinimalEnlargement{}
	}
	if cfg.Logger == nil {
		cfg.Logger = Log
	}
}
