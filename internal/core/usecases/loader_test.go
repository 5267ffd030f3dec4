package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
	"github.com/wasteatlas/wasteatlas/internal/core/usecases"
)

func TestLoader_LoadPairSerial(t *testing.T) {
	src := fixtureSource()
	loader := usecases.NewLoader(src)

	var gotGen, gotRec *domain.Dataset
	err := loader.LoadPair(context.Background(), genSpec, recSpec, func(gen, rec *domain.Dataset) error {
		gotGen, gotRec = gen, rec
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(src.calls) != 2 || src.calls[0] != "generated" || src.calls[1] != "recovered" {
		t.Errorf("expected generated then recovered, got %v", src.calls)
	}
	if gotGen.Kind != domain.KindGenerated || gotRec.Kind != domain.KindRecovered {
		t.Errorf("unexpected kinds %s, %s", gotGen.Kind, gotRec.Kind)
	}
	if len(gotGen.Attributes) != 7 {
		t.Errorf("expected 7 attributes, got %d", len(gotGen.Attributes))
	}
}

func TestLoader_GeneratedFailureSkipsRecovered(t *testing.T) {
	src := &mockSource{
		loadFn: func(ctx context.Context, spec domain.DatasetSpec) ([]domain.Feature, error) {
			return nil, errors.New("connection refused")
		},
	}
	loader := usecases.NewLoader(src)

	called := false
	err := loader.LoadPair(context.Background(), genSpec, recSpec, func(gen, rec *domain.Dataset) error {
		called = true
		return nil
	})

	var lf *domain.LoadFailure
	if !errors.As(err, &lf) {
		t.Fatalf("expected LoadFailure, got %v", err)
	}
	if lf.Dataset != "generated" || lf.Source != "gen.geojson" {
		t.Errorf("unexpected failure %+v", lf)
	}
	if called {
		t.Error("continuation must not run after a failed load")
	}
	if len(src.calls) != 1 {
		t.Errorf("expected only the generated load, got %v", src.calls)
	}
}

func TestLoader_EmptyDataset(t *testing.T) {
	src := &mockSource{
		loadFn: func(ctx context.Context, spec domain.DatasetSpec) ([]domain.Feature, error) {
			return nil, nil
		},
	}
	_, err := usecases.NewLoader(src).Load(context.Background(), genSpec)
	if !errors.Is(err, domain.ErrNoFeatures) {
		t.Fatalf("expected ErrNoFeatures, got %v", err)
	}
	if !usecases.IsLoadFailure(err) {
		t.Error("expected a load failure")
	}
}

func TestLoader_NoMatchingAttributes(t *testing.T) {
	src := fixtureSource()
	spec := genSpec
	spec.Marker = "MSWKgPerCapita"
	_, err := usecases.NewLoader(src).Load(context.Background(), spec)
	if !errors.Is(err, domain.ErrNoAttributes) {
		t.Fatalf("expected ErrNoAttributes, got %v", err)
	}
}
