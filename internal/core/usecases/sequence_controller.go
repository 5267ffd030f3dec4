package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
	"github.com/wasteatlas/wasteatlas/internal/core/ports"
	"github.com/wasteatlas/wasteatlas/internal/pkg/metrics"
	"github.com/wasteatlas/wasteatlas/internal/pkg/telemetry"
)

// Sequence actions carried by SequenceEvent.Action.
const (
	ActionForward = "forward"
	ActionReverse = "reverse"
	ActionSet     = "set"
	ActionReload  = "reload"
)

// SequenceController owns the selected year shared by every layer.
// Transitions are serialised; each one runs to completion before the next
// starts.
type SequenceController struct {
	mu         sync.RWMutex
	layers     []*Layer
	state      domain.SequenceState
	year       string
	generation uint64

	publisher ports.EventPublisher

	watchMu  sync.Mutex
	watchers map[int]func(domain.SequenceEvent)
	nextID   int

	// Events are numbered under mu and delivered strictly in that order.
	emitMu    sync.Mutex
	emitCond  *sync.Cond
	issued    uint64
	delivered uint64
}

// NewSequenceController creates a controller with no datasets. publisher
// may be nil.
func NewSequenceController(publisher ports.EventPublisher) *SequenceController {
	c := &SequenceController{
		publisher: publisher,
		watchers:  make(map[int]func(domain.SequenceEvent)),
	}
	c.emitCond = sync.NewCond(&c.emitMu)
	return c
}

// Install renders a layer per dataset at its first attribute and resets
// the sequence to index 0. The first dataset drives the year label.
// Layer visibility survives a reinstall.
func (c *SequenceController) Install(ctx context.Context, datasets ...*domain.Dataset) error {
	if len(datasets) == 0 {
		return domain.ErrAtlasNotLoaded
	}

	layers := make([]*Layer, 0, len(datasets))
	for _, ds := range datasets {
		l, err := RenderAll(ds, ds.Attributes, domain.ProfileFor(ds.Kind))
		if err != nil {
			return err
		}
		layers = append(layers, l)
	}
	steps := deriveSteps(ctx, datasets)

	c.mu.Lock()
	for _, l := range layers {
		if old := c.layerLocked(l.Name()); old != nil {
			l.Visible = old.Visible
		}
	}
	c.layers = layers
	c.state = domain.NewSequence(steps)
	c.year = domain.ParseYear(layers[0].Attribute)
	c.generation++
	ev, seq := c.eventLocked(ActionReload)
	c.mu.Unlock()

	slog.InfoContext(ctx, "atlas installed",
		"layers", len(layers),
		"steps", steps,
		"generation", ev.Generation,
	)
	c.emit(ctx, ev, seq)
	return nil
}

// Forward steps to the next year, wrapping after the last.
func (c *SequenceController) Forward(ctx context.Context) (domain.SequenceEvent, error) {
	return c.transition(ctx, ActionForward, telemetry.SpanSequenceForward,
		func(s domain.SequenceState) (domain.SequenceState, error) { return s.Forward(), nil })
}

// Reverse steps to the previous year, wrapping before the first.
func (c *SequenceController) Reverse(ctx context.Context) (domain.SequenceEvent, error) {
	return c.transition(ctx, ActionReverse, telemetry.SpanSequenceReverse,
		func(s domain.SequenceState) (domain.SequenceState, error) { return s.Reverse(), nil })
}

// SetDirect jumps to index i, as the slider does.
func (c *SequenceController) SetDirect(ctx context.Context, i int) (domain.SequenceEvent, error) {
	return c.transition(ctx, ActionSet, telemetry.SpanSequenceSet,
		func(s domain.SequenceState) (domain.SequenceState, error) { return s.SetDirect(i) })
}

func (c *SequenceController) transition(
	ctx context.Context,
	action, spanName string,
	step func(domain.SequenceState) (domain.SequenceState, error),
) (domain.SequenceEvent, error) {
	ctx, span := telemetry.Tracer("wasteatlas/usecases").Start(ctx, spanName)
	defer span.End()

	c.mu.Lock()
	if len(c.layers) == 0 {
		c.mu.Unlock()
		return domain.SequenceEvent{}, domain.ErrAtlasNotLoaded
	}
	next, err := step(c.state)
	if err != nil {
		c.mu.Unlock()
		return domain.SequenceEvent{}, err
	}

	// slider position, then symbols, then legends, then the year label
	c.state = next
	updated := 0
	for _, l := range c.layers {
		key := l.Dataset.Attributes[next.Index]
		n := l.UpdateAll(key)
		updated += n
		metrics.MarkersUpdated.WithLabelValues(l.Name()).Add(float64(n))
	}
	for _, l := range c.layers {
		l.RefreshLegend(l.Dataset.Attributes[next.Index])
	}
	c.year = domain.ParseYear(c.layers[0].Dataset.Attributes[next.Index])
	attr := c.layers[0].Attribute
	ev, seq := c.eventLocked(action)
	c.mu.Unlock()

	span.SetAttributes(
		attribute.Int(telemetry.AttrIndex, next.Index),
		attribute.String(telemetry.AttrAttribute, attr),
		attribute.Int(telemetry.AttrMarkers, updated),
	)
	metrics.SequenceTransitions.WithLabelValues(action).Inc()
	c.emit(ctx, ev, seq)
	return ev, nil
}

// Autoplay steps forward every interval until ctx is done.
func (c *SequenceController) Autoplay(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.Forward(ctx); err != nil {
				slog.WarnContext(ctx, "autoplay step failed", "error", err)
			}
		}
	}
}

// Watch registers fn to receive every event after it is applied, in the
// order the transitions happened. fn runs on the transitioning goroutine,
// so it must not block or start a transition itself. The returned func
// unregisters it.
func (c *SequenceController) Watch(fn func(domain.SequenceEvent)) func() {
	c.watchMu.Lock()
	id := c.nextID
	c.nextID++
	c.watchers[id] = fn
	c.watchMu.Unlock()

	return func() {
		c.watchMu.Lock()
		delete(c.watchers, id)
		c.watchMu.Unlock()
	}
}

// SetVisible shows or hides a layer.
func (c *SequenceController) SetVisible(name string, visible bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	l := c.layerLocked(name)
	if l == nil {
		return fmt.Errorf("%s: %w", name, domain.ErrLayerNotFound)
	}
	if l.Visible != visible {
		l.Visible = visible
		c.generation++
	}
	return nil
}

// State returns the current sequence position.
func (c *SequenceController) State() domain.SequenceState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Year returns the displayed year label.
func (c *SequenceController) Year() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.year
}

// Generation increases whenever datasets or layer visibility change.
func (c *SequenceController) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Ready reports whether datasets are installed.
func (c *SequenceController) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.layers) > 0
}

// Snapshot returns a copy of the current frame.
func (c *SequenceController) Snapshot() domain.Frame {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f := domain.Frame{
		Generation: c.generation,
		Sequence:   c.state,
		Year:       c.year,
		Layers:     make([]domain.LayerFrame, len(c.layers)),
	}
	for i, l := range c.layers {
		f.Layers[i] = l.Frame()
	}
	return f
}

// Datasets returns the installed datasets in layer order.
func (c *SequenceController) Datasets() []*domain.Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*domain.Dataset, len(c.layers))
	for i, l := range c.layers {
		out[i] = l.Dataset
	}
	return out
}

// Visibility returns the visibility of every layer by name.
func (c *SequenceController) Visibility() map[string]bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]bool, len(c.layers))
	for _, l := range c.layers {
		out[l.Name()] = l.Visible
	}
	return out
}

// WithLayer runs fn against the named layer under the read lock. fn must
// not mutate the layer.
func (c *SequenceController) WithLayer(name string, fn func(*Layer) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l := c.layerLocked(name)
	if l == nil {
		return fmt.Errorf("%s: %w", name, domain.ErrLayerNotFound)
	}
	return fn(l)
}

// frameInputs returns a consistent view of what frames are computed from.
func (c *SequenceController) frameInputs() (uint64, domain.SequenceState, []*domain.Dataset, map[string]bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	datasets := make([]*domain.Dataset, len(c.layers))
	visible := make(map[string]bool, len(c.layers))
	for i, l := range c.layers {
		datasets[i] = l.Dataset
		visible[l.Name()] = l.Visible
	}
	return c.generation, c.state, datasets, visible
}

func (c *SequenceController) layerLocked(name string) *Layer {
	for _, l := range c.layers {
		if l.Name() == name {
			return l
		}
	}
	return nil
}

// eventLocked builds the event for the state just applied and takes its
// delivery ticket.
func (c *SequenceController) eventLocked(action string) (domain.SequenceEvent, uint64) {
	c.issued++
	return domain.SequenceEvent{
		Generation: c.generation,
		Action:     action,
		Sequence:   c.state,
		Year:       c.year,
		At:         time.Now().UTC(),
	}, c.issued
}

// emit delivers ev once every earlier event has been delivered.
func (c *SequenceController) emit(ctx context.Context, ev domain.SequenceEvent, seq uint64) {
	c.emitMu.Lock()
	for c.delivered != seq-1 {
		c.emitCond.Wait()
	}
	defer func() {
		c.delivered = seq
		c.emitCond.Broadcast()
		c.emitMu.Unlock()
	}()

	c.watchMu.Lock()
	ids := make([]int, 0, len(c.watchers))
	for id := range c.watchers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(domain.SequenceEvent), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.watchers[id])
	}
	c.watchMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}

	if c.publisher != nil {
		if err := c.publisher.PublishSequenceChanged(ctx, &ev); err != nil {
			slog.WarnContext(ctx, "publish sequence event", "error", err, "action", ev.Action)
		}
	}
}

// deriveSteps is the shortest attribute list across datasets. Differing
// lengths or years are logged, since layers would then disagree on the
// displayed year.
func deriveSteps(ctx context.Context, datasets []*domain.Dataset) int {
	steps := len(datasets[0].Attributes)
	ref := datasets[0].Years()
	for _, ds := range datasets[1:] {
		if n := len(ds.Attributes); n != steps {
			slog.WarnContext(ctx, "datasets disagree on number of years",
				"reference", datasets[0].Name, "reference_years", steps,
				"dataset", ds.Name, "years", n,
			)
			steps = min(steps, n)
		}
		years := ds.Years()
		for i := 0; i < min(len(ref), len(years)); i++ {
			if ref[i] != years[i] {
				slog.WarnContext(ctx, "datasets disagree on year",
					"index", i, "reference", ref[i], "dataset", ds.Name, "year", years[i],
				)
				break
			}
		}
	}
	return steps
}
