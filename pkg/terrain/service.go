// Package terrain answers "is this point on land or ocean" against a
// GeoJSON land polygon dataset. The dataset is loaded lazily exactly once,
// lookups are memoized per H3 cell, and results can be written through to
// a persistent cache.
package terrain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	h3 "github.com/uber/h3-go/v4"
	"golang.org/x/sync/singleflight"

	"watego/pkg/config"
	"watego/pkg/model"
)

// cellResolution trades cache granularity against precision. Resolution 5
// cells average about 250 km², fine enough that a cell is almost always
// uniformly land or ocean.
const cellResolution = 5

// CellStore persists terrain lookups across restarts. Implementations must
// be safe for concurrent use.
type CellStore interface {
	GetTerrainCell(cell string) (isLand bool, ok bool, err error)
	PutTerrainCell(cell string, isLand bool) error
}

// Service performs land/ocean lookups.
type Service struct {
	cfg    *config.TerrainConfig
	client *http.Client
	store  CellStore

	group singleflight.Group

	mu         sync.RWMutex
	geometries []orb.Geometry

	cache *lru.Cache
}

// New creates a Service. The dataset is not loaded until the first lookup.
// store may be nil to disable the persistent cell cache.
func New(cfg *config.TerrainConfig, store CellStore) (*Service, error) {
	size := cfg.CacheSize
	if size <= 0 {
		size = 4096
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create terrain cache: %w", err)
	}
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		store:  store,
		cache:  cache,
	}, nil
}

// IsOnLand reports whether the coordinates fall inside any land polygon.
func (s *Service) IsOnLand(ctx context.Context, lat, lng float64) (bool, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(lat, lng), cellResolution)
	if err != nil {
		return false, fmt.Errorf("failed to index point %f,%f: %w", lat, lng, err)
	}
	key := cell.String()

	if v, ok := s.cache.Get(key); ok {
		return v.(bool), nil
	}
	if s.store != nil {
		if isLand, ok, err := s.store.GetTerrainCell(key); err == nil && ok {
			s.cache.Add(key, isLand)
			return isLand, nil
		}
	}

	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}

	isLand := s.containsPoint(orb.Point{lng, lat})

	s.cache.Add(key, isLand)
	if s.store != nil {
		if err := s.store.PutTerrainCell(key, isLand); err != nil {
			slog.Warn("Failed to persist terrain cell", "cell", key, "error", err)
		}
	}
	return isLand, nil
}

// Info returns the terrain classification for a point.
func (s *Service) Info(ctx context.Context, lat, lng float64) (model.GeoInfo, error) {
	isLand, err := s.IsOnLand(ctx, lat, lng)
	if err != nil {
		return model.GeoInfo{}, err
	}
	terrain := model.TerrainOcean
	if isLand {
		terrain = model.TerrainLand
	}
	return model.GeoInfo{IsLand: isLand, Terrain: terrain, Lat: lat, Lng: lng}, nil
}

func (s *Service) containsPoint(point orb.Point) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, geom := range s.geometries {
		if !geom.Bound().Contains(point) {
			continue
		}
		switch g := geom.(type) {
		case orb.Polygon:
			if planar.PolygonContains(g, point) {
				return true
			}
		case orb.MultiPolygon:
			for _, poly := range g {
				if planar.PolygonContains(poly, point) {
					return true
				}
			}
		}
	}
	return false
}

// ensureLoaded loads the dataset at most once. Concurrent callers share a
// single in-flight load; a failed load is retried by the next caller.
func (s *Service) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.geometries != nil
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	_, err, _ := s.group.Do("load", func() (interface{}, error) {
		// A caller may have raced past the fast path while another
		// finished loading.
		s.mu.RLock()
		loaded := s.geometries != nil
		s.mu.RUnlock()
		if loaded {
			return nil, nil
		}

		data, err := s.fetch(ctx)
		if err != nil {
			return nil, err
		}
		geoms, err := parseLandData(data)
		if err != nil {
			return nil, err
		}
		slog.Info("Land dataset loaded", "source", s.cfg.Dataset, "geometries", len(geoms))

		s.mu.Lock()
		s.geometries = geoms
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

func (s *Service) fetch(ctx context.Context) ([]byte, error) {
	if strings.HasPrefix(s.cfg.Dataset, "http://") || strings.HasPrefix(s.cfg.Dataset, "https://") {
		return s.fetchHTTP(ctx)
	}
	data, err := os.ReadFile(s.cfg.Dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to read land dataset: %w", err)
	}
	return data, nil
}

// fetchHTTP retrieves the dataset with exponential backoff between
// attempts, plus jitter so restarts don't hammer the origin in lockstep.
func (s *Service) fetchHTTP(ctx context.Context) ([]byte, error) {
	attempts := s.cfg.Retries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(s.cfg.Backoff.BaseDelay) * time.Duration(1<<(attempt-1))
			if max := time.Duration(s.cfg.Backoff.MaxDelay); max > 0 && delay > max {
				delay = max
			}
			delay += time.Duration(rand.Int63n(int64(delay)/10 + 1))
			slog.Debug("Retrying land dataset fetch", "attempt", attempt, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		data, err := s.doFetch(ctx)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to fetch land dataset after %d attempts: %w", attempts, lastErr)
}

func (s *Service) doFetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Dataset, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// parseLandData accepts both FeatureCollection and GeometryCollection
// datasets and flattens them to the polygonal geometries.
func parseLandData(data []byte) ([]orb.Geometry, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse land dataset: %w", err)
	}

	var geoms []orb.Geometry
	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse feature collection: %w", err)
		}
		for _, f := range fc.Features {
			geoms = append(geoms, flatten(f.Geometry)...)
		}
	case "GeometryCollection":
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse geometry collection: %w", err)
		}
		geoms = flatten(g.Geometry())
	default:
		return nil, fmt.Errorf("invalid land dataset: type %q, want FeatureCollection or GeometryCollection", probe.Type)
	}

	if len(geoms) == 0 {
		return nil, fmt.Errorf("land dataset contains no polygons")
	}
	return geoms, nil
}

func flatten(geom orb.Geometry) []orb.Geometry {
	switch g := geom.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return []orb.Geometry{g}
	case orb.Collection:
		var out []orb.Geometry
		for _, sub := range g {
			out = append(out, flatten(sub)...)
		}
		return out
	default:
		return nil
	}
}
