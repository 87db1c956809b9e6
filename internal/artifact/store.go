// Package artifact manages generated chart files. Every request gets its own
// uuid-named path, so one request can never observe or clobber another
// request's chart. Committed artifacts are served for a configured TTL and
// unlinked from disk when they expire.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/datasleuth/analyst-backend/internal/config"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Store hands out per-request chart paths and tracks committed artifacts.
type Store struct {
	dir    string
	cache  *gocache.Cache
	logger *zap.Logger
}

func NewStore(cfg config.ArtifactConfig, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}

	c := gocache.New(cfg.TTL, cfg.CleanupInterval)
	s := &Store{dir: cfg.Dir, cache: c, logger: logger}

	c.OnEvicted(func(id string, v any) {
		path, ok := v.(string)
		if !ok {
			return
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove expired artifact",
				zap.String("artifact_id", id),
				zap.Error(err),
			)
			return
		}
		logger.Debug("expired artifact removed", zap.String("artifact_id", id))
	})

	return s, nil
}

// NewChartPath allocates a fresh artifact id and the absolute path the agent
// should write the chart to. The path is not registered until Commit.
func (s *Store) NewChartPath() (id, path string) {
	id = uuid.New().String()
	return id, filepath.Join(s.dir, id+".png")
}

// Commit registers a produced artifact for serving. Returns false when the
// file does not exist, i.e. the agent produced no chart.
func (s *Store) Commit(id, path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	s.cache.SetDefault(id, path)
	return true
}

// Resolve returns the on-disk path of a committed artifact.
func (s *Store) Resolve(id string) (string, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return "", false
	}
	path, ok := v.(string)
	return path, ok
}

// Discard removes an uncommitted placeholder file, if any.
func (s *Store) Discard(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to discard artifact placeholder", zap.Error(err))
	}
}

// Close drops all committed artifacts and their files. Delete (unlike Flush)
// fires the eviction handler, which is what unlinks the files.
func (s *Store) Close() {
	for id := range s.cache.Items() {
		s.cache.Delete(id)
	}
}
