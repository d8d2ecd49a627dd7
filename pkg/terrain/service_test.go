package terrain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watego/pkg/config"
	"watego/pkg/model"
)

// A square island straddling the origin, as both GeoJSON container types.
const featureCollection = `{
	"type": "FeatureCollection",
	"features": [{
		"type": "Feature",
		"properties": {},
		"geometry": {
			"type": "Polygon",
			"coordinates": [[[-1,-1],[1,-1],[1,1],[-1,1],[-1,-1]]]
		}
	}]
}`

const geometryCollection = `{
	"type": "GeometryCollection",
	"geometries": [{
		"type": "Polygon",
		"coordinates": [[[-1,-1],[1,-1],[1,1],[-1,1],[-1,-1]]]
	}]
}`

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "land.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newService(t *testing.T, dataset string) *Service {
	t.Helper()
	cfg := config.DefaultConfig().Terrain
	cfg.Dataset = dataset
	cfg.Retries = 0
	svc, err := New(&cfg, nil)
	require.NoError(t, err)
	return svc
}

func TestIsOnLand(t *testing.T) {
	for name, content := range map[string]string{
		"feature collection":  featureCollection,
		"geometry collection": geometryCollection,
	} {
		t.Run(name, func(t *testing.T) {
			svc := newService(t, writeDataset(t, content))
			ctx := context.Background()

			onLand, err := svc.IsOnLand(ctx, 0, 0)
			require.NoError(t, err)
			assert.True(t, onLand)

			onLand, err = svc.IsOnLand(ctx, 0, 120)
			require.NoError(t, err)
			assert.False(t, onLand)
		})
	}
}

func TestInfo(t *testing.T) {
	svc := newService(t, writeDataset(t, featureCollection))

	info, err := svc.Info(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, model.GeoInfo{IsLand: true, Terrain: model.TerrainLand, Lat: 0, Lng: 0}, info)

	info, err = svc.Info(context.Background(), 0, 120)
	require.NoError(t, err)
	assert.Equal(t, model.TerrainOcean, info.Terrain)
}

func TestLoadHappensOnce(t *testing.T) {
	var loads atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loads.Add(1)
		w.Write([]byte(featureCollection))
	}))
	defer server.Close()

	svc := newService(t, server.URL)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Spread points over distinct cells so the lru cache
			// can't absorb the lookups before the dataset loads.
			_, err := svc.IsOnLand(ctx, 0, float64(i)*10)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(featureCollection))
	}))
	defer server.Close()

	cfg := config.DefaultConfig().Terrain
	cfg.Dataset = server.URL
	cfg.Retries = 3
	cfg.Backoff.BaseDelay = config.Duration(1) // effectively no delay in tests
	svc, err := New(&cfg, nil)
	require.NoError(t, err)

	onLand, err := svc.IsOnLand(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.True(t, onLand)
	assert.Equal(t, int32(3), calls.Load())
}

func TestLoadFailurePropagates(t *testing.T) {
	svc := newService(t, filepath.Join(t.TempDir(), "missing.json"))
	_, err := svc.IsOnLand(context.Background(), 0, 0)
	assert.Error(t, err)
}

func TestRejectsUnknownGeoJSONType(t *testing.T) {
	svc := newService(t, writeDataset(t, `{"type":"Point","coordinates":[0,0]}`))
	_, err := svc.IsOnLand(context.Background(), 0, 0)
	assert.ErrorContains(t, err, "invalid land dataset")
}

type memCellStore struct {
	mu    sync.Mutex
	cells map[string]bool
	gets  int
	puts  int
}

func newMemCellStore() *memCellStore {
	return &memCellStore{cells: map[string]bool{}}
}

func (m *memCellStore) GetTerrainCell(cell string) (bool, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	v, ok := m.cells[cell]
	return v, ok, nil
}

func (m *memCellStore) PutTerrainCell(cell string, isLand bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	m.cells[cell] = isLand
	return nil
}

func TestCellStoreWriteThrough(t *testing.T) {
	st := newMemCellStore()
	cfg := config.DefaultConfig().Terrain
	cfg.Dataset = writeDataset(t, featureCollection)
	svc, err := New(&cfg, st)
	require.NoError(t, err)

	_, err = svc.IsOnLand(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, st.puts)

	// A fresh service with the same store answers from it without
	// touching the dataset.
	cfg2 := cfg
	cfg2.Dataset = filepath.Join(t.TempDir(), "missing.json")
	svc2, err := New(&cfg2, st)
	require.NoError(t, err)

	onLand, err := svc2.IsOnLand(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.True(t, onLand)
}
