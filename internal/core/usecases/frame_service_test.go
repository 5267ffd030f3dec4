package usecases_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
	"github.com/wasteatlas/wasteatlas/internal/core/usecases"
)

func TestFrameService_Current(t *testing.T) {
	ctrl := installed(t, nil)
	svc := usecases.NewFrameService(ctrl, nil, 0)

	ctrl.Forward(context.Background())
	f, err := svc.Current(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Sequence.Index != 1 || f.Year != "2005" {
		t.Errorf("expected index 1 (2005), got %d (%s)", f.Sequence.Index, f.Year)
	}
}

func TestFrameService_AtDoesNotMoveSequence(t *testing.T) {
	ctrl := installed(t, nil)
	svc := usecases.NewFrameService(ctrl, nil, 0)

	f, err := svc.At(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Year != "2015" {
		t.Errorf("expected 2015, got %s", f.Year)
	}
	if f.Layers[0].Markers[0].Radius != domain.Radius(530) {
		t.Errorf("unexpected Austria radius %v", f.Layers[0].Markers[0].Radius)
	}
	if ctrl.State().Index != 0 {
		t.Errorf("shared sequence moved to %d", ctrl.State().Index)
	}
}

func TestFrameService_AtOutOfRange(t *testing.T) {
	svc := usecases.NewFrameService(installed(t, nil), nil, 0)
	if _, err := svc.At(context.Background(), 9); !errors.Is(err, domain.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestFrameService_CacheHitSkipsCompute(t *testing.T) {
	ctx := context.Background()
	cache := newMockCache()
	svc := usecases.NewFrameService(installed(t, nil), cache, 60)

	var computed int32
	svc.OnFrameComputed(func() { atomic.AddInt32(&computed, 1) })

	if _, err := svc.At(ctx, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, err := svc.At(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if computed != 1 {
		t.Errorf("expected 1 computation, got %d", computed)
	}
	if cache.sets != 1 {
		t.Errorf("expected 1 cache write, got %d", cache.sets)
	}
	if f.Year != "2010" {
		t.Errorf("expected cached 2010 frame, got %s", f.Year)
	}
}

func TestFrameService_GenerationChangeMissesCache(t *testing.T) {
	ctx := context.Background()
	cache := newMockCache()
	ctrl := installed(t, nil)
	svc := usecases.NewFrameService(ctrl, cache, 60)

	var computed int32
	svc.OnFrameComputed(func() { atomic.AddInt32(&computed, 1) })

	svc.At(ctx, 1)
	ctrl.SetVisible("generated", false)
	f, _ := svc.At(ctx, 1)

	if computed != 2 {
		t.Errorf("expected recomputation after visibility change, got %d", computed)
	}
	if f.Layers[0].Visible {
		t.Error("expected generated layer hidden in new frame")
	}
}

func TestFrameService_ConcurrentRequests(t *testing.T) {
	svc := usecases.NewFrameService(installed(t, nil), newMockCache(), 60)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f, err := svc.At(context.Background(), i%7)
			if err == nil && f.Sequence.Index != i%7 {
				err = errors.New("wrong frame")
			}
			if err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestFrameService_NotLoaded(t *testing.T) {
	svc := usecases.NewFrameService(usecases.NewSequenceController(nil), nil, 0)
	if _, err := svc.Current(context.Background()); !errors.Is(err, domain.ErrAtlasNotLoaded) {
		t.Fatalf("expected ErrAtlasNotLoaded, got %v", err)
	}
	if _, err := svc.At(context.Background(), 0); !errors.Is(err, domain.ErrAtlasNotLoaded) {
		t.Fatalf("expected ErrAtlasNotLoaded, got %v", err)
	}
}

func TestFrameService_AtCurrentIndexMatchesLiveFrame(t *testing.T) {
	ctx := context.Background()
	cache := newMockCache()
	ctrl := installed(t, nil)
	svc := usecases.NewFrameService(ctrl, cache, 60)

	// Chile has no 2015 value, so it keeps the 2010 symbol on the map.
	for i := 0; i < 3; i++ {
		if _, err := ctrl.Forward(ctx); err != nil {
			t.Fatalf("forward: %v", err)
		}
	}
	cur, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	at, err := svc.At(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chile := func(f *domain.Frame) domain.Marker { return f.Layers[0].Markers[2] }
	if chile(cur).Radius != domain.Radius(320) || chile(cur).Attribute != "MSW_2010" {
		t.Fatalf("unexpected live Chile marker %+v", chile(cur))
	}
	if chile(at).Radius != chile(cur).Radius || chile(at).Attribute != chile(cur).Attribute {
		t.Errorf("At(current) Chile %v/%s, live %v/%s",
			chile(at).Radius, chile(at).Attribute, chile(cur).Radius, chile(cur).Attribute)
	}
	if at.Year != cur.Year || at.Layers[0].Legend.Title != cur.Layers[0].Legend.Title {
		t.Errorf("year %s, live %s", at.Year, cur.Year)
	}
	if cache.sets != 0 {
		t.Errorf("live frame must not be cached, got %d writes", cache.sets)
	}
}

func TestFrameService_AtOtherIndexIsDirectJump(t *testing.T) {
	ctrl := installed(t, nil)
	svc := usecases.NewFrameService(ctrl, nil, 0)

	f, err := svc.At(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Without a 2015 value Chile keeps the symbol rendered at load.
	m := f.Layers[0].Markers[2]
	if m.Radius != domain.Radius(300) || m.Attribute != "MSW_2000" {
		t.Errorf("expected first-year Chile symbol, got %v/%s", m.Radius, m.Attribute)
	}
}
