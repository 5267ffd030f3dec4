package usecases_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
	"github.com/wasteatlas/wasteatlas/internal/core/usecases"
)

func installed(t *testing.T, pub *mockPublisher) *usecases.SequenceController {
	t.Helper()
	var ctrl *usecases.SequenceController
	if pub != nil {
		ctrl = usecases.NewSequenceController(pub)
	} else {
		ctrl = usecases.NewSequenceController(nil)
	}
	if err := ctrl.Install(context.Background(), generatedFixture(), recoveredFixture()); err != nil {
		t.Fatalf("install: %v", err)
	}
	return ctrl
}

func TestSequenceController_Install(t *testing.T) {
	ctrl := installed(t, nil)

	st := ctrl.State()
	if st.Index != 0 || st.Steps != 7 {
		t.Errorf("expected index 0 of 7, got %+v", st)
	}
	if ctrl.Year() != "2000" {
		t.Errorf("expected year 2000, got %s", ctrl.Year())
	}
	f := ctrl.Snapshot()
	if len(f.Layers) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(f.Layers))
	}
	if f.Layers[0].Overlay != "Waste Generated" || f.Layers[1].Overlay != "Waste Recycled or Composted" {
		t.Errorf("unexpected overlays %s, %s", f.Layers[0].Overlay, f.Layers[1].Overlay)
	}
	if f.Layers[1].Style.FillColor != "#006FFF" {
		t.Errorf("unexpected recovered fill %s", f.Layers[1].Style.FillColor)
	}
}

func TestSequenceController_NotLoaded(t *testing.T) {
	ctrl := usecases.NewSequenceController(nil)
	if _, err := ctrl.Forward(context.Background()); !errors.Is(err, domain.ErrAtlasNotLoaded) {
		t.Fatalf("expected ErrAtlasNotLoaded, got %v", err)
	}
	if ctrl.Ready() {
		t.Error("expected not ready")
	}
}

func TestSequenceController_Wraparound(t *testing.T) {
	ctx := context.Background()
	ctrl := installed(t, nil)

	ev, err := ctrl.Reverse(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Sequence.Index != 6 || ev.Year != "2018" {
		t.Errorf("expected index 6 (2018), got %d (%s)", ev.Sequence.Index, ev.Year)
	}

	ev, _ = ctrl.Forward(ctx)
	if ev.Sequence.Index != 0 {
		t.Errorf("expected wrap to 0, got %d", ev.Sequence.Index)
	}

	for i := 0; i < 7; i++ {
		ev, _ = ctrl.Forward(ctx)
	}
	if ev.Sequence.Index != 0 {
		t.Errorf("expected 0 after a full cycle, got %d", ev.Sequence.Index)
	}
}

func TestSequenceController_SetDirectUpdatesLayers(t *testing.T) {
	ctx := context.Background()
	ctrl := installed(t, nil)

	if _, err := ctrl.SetDirect(ctx, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := ctrl.Snapshot()
	if f.Year != "2015" {
		t.Errorf("expected 2015, got %s", f.Year)
	}
	gen := f.Layers[0]
	if gen.Markers[0].Radius != domain.Radius(530) {
		t.Errorf("expected Austria radius for 530, got %v", gen.Markers[0].Radius)
	}
	// Chile has no 2015 value and keeps its 2000 symbol.
	if gen.Markers[2].Radius != domain.Radius(300) || gen.Markers[2].Attribute != "MSW_2000" {
		t.Errorf("expected Chile unchanged, got %+v", gen.Markers[2])
	}
	if gen.Legend.Title != "Waste Generated (kg/capita) in 2015" {
		t.Errorf("unexpected legend title %q", gen.Legend.Title)
	}
	if gen.Legend.Stats.Count != 2 {
		t.Errorf("expected 2 values in stats, got %d", gen.Legend.Stats.Count)
	}
	rec := f.Layers[1]
	if rec.Markers[2].Popup.Body != "Material Recovered: Recycling/Composting (2015): 4 %" {
		t.Errorf("unexpected popup %q", rec.Markers[2].Popup.Body)
	}
}

func TestSequenceController_SetDirectOutOfRange(t *testing.T) {
	ctrl := installed(t, nil)
	_, err := ctrl.SetDirect(context.Background(), 7)
	if !errors.Is(err, domain.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if ctrl.State().Index != 0 {
		t.Error("state changed after rejected transition")
	}
}

func TestSequenceController_PublishesAndWatches(t *testing.T) {
	ctx := context.Background()
	pub := &mockPublisher{}
	ctrl := installed(t, pub)

	var seen []string
	stop := ctrl.Watch(func(ev domain.SequenceEvent) { seen = append(seen, ev.Action) })

	ctrl.Forward(ctx)
	ctrl.Reverse(ctx)
	stop()
	ctrl.Forward(ctx)

	if len(seen) != 2 || seen[0] != "forward" || seen[1] != "reverse" {
		t.Errorf("unexpected watched actions %v", seen)
	}
	// reload + three transitions
	if len(pub.events) != 4 {
		t.Fatalf("expected 4 published events, got %d", len(pub.events))
	}
	if pub.events[0].Action != "reload" {
		t.Errorf("expected reload first, got %s", pub.events[0].Action)
	}
}

func TestSequenceController_PublishErrorIgnored(t *testing.T) {
	pub := &mockPublisher{err: errors.New("nats down")}
	ctrl := installed(t, pub)
	if _, err := ctrl.Forward(context.Background()); err != nil {
		t.Fatalf("publish failure must not fail the transition: %v", err)
	}
}

func TestSequenceController_StepsFromShortestDataset(t *testing.T) {
	short := dataset("recovered", domain.KindRecovered,
		feature("AUT", "Austria", 14.55, 47.52, 1, 2, 3, 4, 5),
	)
	ctrl := usecases.NewSequenceController(nil)
	if err := ctrl.Install(context.Background(), generatedFixture(), short); err != nil {
		t.Fatalf("install: %v", err)
	}
	if st := ctrl.State(); st.Steps != 5 {
		t.Errorf("expected 5 steps, got %d", st.Steps)
	}
	ev, _ := ctrl.Reverse(context.Background())
	if ev.Sequence.Index != 4 {
		t.Errorf("expected wrap to 4, got %d", ev.Sequence.Index)
	}
}

func TestSequenceController_Visibility(t *testing.T) {
	ctrl := installed(t, nil)
	gen := ctrl.Generation()

	if err := ctrl.SetVisible("recovered", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctrl.Generation() == gen {
		t.Error("expected generation bump on visibility change")
	}
	if ctrl.Visibility()["recovered"] {
		t.Error("expected recovered hidden")
	}
	if err := ctrl.SetVisible("nope", true); !errors.Is(err, domain.ErrLayerNotFound) {
		t.Errorf("expected ErrLayerNotFound, got %v", err)
	}

	// visibility survives a reinstall
	if err := ctrl.Install(context.Background(), generatedFixture(), recoveredFixture()); err != nil {
		t.Fatalf("install: %v", err)
	}
	if ctrl.Visibility()["recovered"] {
		t.Error("expected recovered still hidden after reinstall")
	}
}

func TestSequenceController_ConcurrentTransitions(t *testing.T) {
	ctx := context.Background()
	ctrl := installed(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 70; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctrl.Forward(ctx)
		}()
	}
	wg.Wait()

	if idx := ctrl.State().Index; idx != 0 {
		t.Errorf("expected 70 forwards over 7 steps to land on 0, got %d", idx)
	}
	f := ctrl.Snapshot()
	if f.Layers[0].Attribute != "MSW_2000" {
		t.Errorf("layers out of step with sequence: %s", f.Layers[0].Attribute)
	}
}

func TestSequenceController_Autoplay(t *testing.T) {
	ctrl := installed(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	moved := make(chan struct{}, 1)
	ctrl.Watch(func(domain.SequenceEvent) {
		select {
		case moved <- struct{}{}:
		default:
		}
	})

	done := make(chan struct{})
	go func() {
		ctrl.Autoplay(ctx, 5*time.Millisecond)
		close(done)
	}()

	select {
	case <-moved:
	case <-time.After(2 * time.Second):
		t.Fatal("autoplay did not advance")
	}
	cancel()
	<-done
}

func TestSequenceController_EventsDeliveredInTransitionOrder(t *testing.T) {
	ctx := context.Background()
	pub := &mockPublisher{}
	ctrl := installed(t, pub)

	var mu sync.Mutex
	var delivered []int
	first := true
	ctrl.Watch(func(ev domain.SequenceEvent) {
		mu.Lock()
		slow := first
		first = false
		mu.Unlock()
		if slow {
			// hold the first delivery while later transitions queue up
			time.Sleep(50 * time.Millisecond)
		}
		mu.Lock()
		delivered = append(delivered, ev.Sequence.Index)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctrl.Forward(ctx)
		}()
	}
	wg.Wait()

	want := []int{1, 2, 3, 4, 5}
	if len(delivered) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), delivered)
	}
	for i := range want {
		if delivered[i] != want[i] {
			t.Fatalf("events delivered out of order: %v", delivered)
		}
	}
	if last := delivered[len(delivered)-1]; last != ctrl.State().Index {
		t.Errorf("last delivered index %d, controller at %d", last, ctrl.State().Index)
	}
	// reload, then the five forwards in the same order
	for i, ev := range pub.events[1:] {
		if ev.Sequence.Index != want[i] {
			t.Fatalf("published out of order at %d: %d", i, ev.Sequence.Index)
		}
	}
}
