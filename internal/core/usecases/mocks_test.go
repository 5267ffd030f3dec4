package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

// --- Fixtures ---

var years = []string{"2000", "2005", "2010", "2015", "2016", "2017", "2018"}

// feature builds a feature with MSW_<year> keys. A negative entry in vals
// keeps the key but leaves the year without a value.
func feature(id, country string, lon, lat float64, vals ...float64) domain.Feature {
	f := domain.Feature{
		ID:       id,
		Country:  country,
		Location: domain.GeoPoint{Lon: lon, Lat: lat},
		Keys:     []string{"Country"},
		Values:   map[string]domain.Value{},
	}
	for i, v := range vals {
		key := "MSW_" + years[i]
		f.Keys = append(f.Keys, key)
		if v >= 0 {
			f.Values[key] = domain.Num(v)
		}
	}
	return f
}

func dataset(name string, kind domain.DatasetKind, features ...domain.Feature) *domain.Dataset {
	ds, err := domain.NewDataset(domain.DatasetSpec{Name: name, Kind: kind, Marker: "MSW"}, features)
	if err != nil {
		panic(err)
	}
	return ds
}

func generatedFixture() *domain.Dataset {
	return dataset("generated", domain.KindGenerated,
		feature("AUT", "Austria", 14.55, 47.52, 500, 510, 520, 530, 540, 550, 560),
		feature("BEL", "Belgium", 4.47, 50.50, 400, 410, 420, 430, 440, 450, 460),
		feature("CHL", "Chile", -71.54, -35.68, 300, 310, 320, -1, 340, 350, 360),
	)
}

func recoveredFixture() *domain.Dataset {
	return dataset("recovered", domain.KindRecovered,
		feature("AUT", "Austria", 14.55, 47.52, 50, 51, 52, 53, 54, 55, 56),
		feature("BEL", "Belgium", 4.47, 50.50, 40, 41, 42, 43, 44, 45, 46),
		feature("CHL", "Chile", -71.54, -35.68, 1, 2, 3, 4, 5, 6, 7),
	)
}

// --- Mock DatasetSource ---

type mockSource struct {
	mu     sync.Mutex
	calls  []string
	loadFn func(ctx context.Context, spec domain.DatasetSpec) ([]domain.Feature, error)
}

func (m *mockSource) Load(ctx context.Context, spec domain.DatasetSpec) ([]domain.Feature, error) {
	m.mu.Lock()
	m.calls = append(m.calls, spec.Name)
	m.mu.Unlock()
	if m.loadFn != nil {
		return m.loadFn(ctx, spec)
	}
	return nil, errors.New("not configured")
}

func fixtureSource() *mockSource {
	return &mockSource{
		loadFn: func(ctx context.Context, spec domain.DatasetSpec) ([]domain.Feature, error) {
			switch spec.Name {
			case "generated":
				return generatedFixture().Features, nil
			case "recovered":
				return recoveredFixture().Features, nil
			}
			return nil, fmt.Errorf("unknown dataset %s", spec.Name)
		},
	}
}

var (
	genSpec = domain.DatasetSpec{Name: "generated", Kind: domain.KindGenerated, Source: "gen.geojson", Marker: "MSW"}
	recSpec = domain.DatasetSpec{Name: "recovered", Kind: domain.KindRecovered, Source: "rec.geojson", Marker: "MSW"}
)

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.SequenceEvent
	reload [][]string
	err    error
}

func (m *mockPublisher) PublishSequenceChanged(ctx context.Context, ev *domain.SequenceEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *ev)
	return m.err
}

func (m *mockPublisher) PublishDatasetsReload(ctx context.Context, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reload = append(m.reload, names)
	return m.err
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("cache miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock DatasetRepository ---

type mockRepo struct {
	upserted []string
	upsertFn func(ctx context.Context, ds *domain.Dataset) error
}

func (m *mockRepo) Upsert(ctx context.Context, ds *domain.Dataset) error {
	m.upserted = append(m.upserted, ds.Name)
	if m.upsertFn != nil {
		return m.upsertFn(ctx, ds)
	}
	return nil
}

func (m *mockRepo) GetByName(ctx context.Context, name string) (*domain.Dataset, error) {
	return nil, domain.ErrDatasetNotFound
}

func (m *mockRepo) List(ctx context.Context) ([]domain.DatasetSummary, error) { return nil, nil }

func (m *mockRepo) Delete(ctx context.Context, name string) error { return nil }
