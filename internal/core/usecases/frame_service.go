package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
	"github.com/wasteatlas/wasteatlas/internal/core/ports"
	"github.com/wasteatlas/wasteatlas/internal/pkg/metrics"
	"github.com/wasteatlas/wasteatlas/internal/pkg/telemetry"
)

// FrameService serves map frames. Frames for an explicit index are
// computed without touching the shared sequence and cached per
// generation.
type FrameService struct {
	ctrl     *SequenceController
	cache    ports.CacheService
	ttl      int
	group    singleflight.Group
	computed func() // test hook, called once per computed frame
}

// NewFrameService creates a new FrameService. cache may be nil.
func NewFrameService(ctrl *SequenceController, cache ports.CacheService, ttlSeconds int) *FrameService {
	if ttlSeconds <= 0 {
		ttlSeconds = 600
	}
	return &FrameService{ctrl: ctrl, cache: cache, ttl: ttlSeconds}
}

// Current returns the frame at the shared sequence position.
func (s *FrameService) Current(ctx context.Context) (*domain.Frame, error) {
	if !s.ctrl.Ready() {
		return nil, domain.ErrAtlasNotLoaded
	}
	f := s.ctrl.Snapshot()
	return &f, nil
}

// At returns the frame at index. The current index is served from the
// live layers, so markers without a value for that year keep the radius
// and popup of the last year visited, exactly as the map shows them.
// Any other index is the frame reached by jumping there directly after
// load: markers without a value keep their first-year symbol.
func (s *FrameService) At(ctx context.Context, index int) (*domain.Frame, error) {
	if !s.ctrl.Ready() {
		return nil, domain.ErrAtlasNotLoaded
	}
	if snap := s.ctrl.Snapshot(); snap.Sequence.Index == index && len(snap.Layers) > 0 {
		return &snap, nil
	}

	gen, state, datasets, visible := s.ctrl.frameInputs()
	if len(datasets) == 0 {
		return nil, domain.ErrAtlasNotLoaded
	}
	if _, err := state.SetDirect(index); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("frames:%d:%d", gen, index)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var f domain.Frame
			if err := json.Unmarshal(data, &f); err == nil {
				metrics.CacheHits.WithLabelValues("frame").Inc()
				return &f, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("frame").Inc()
	}

	v, err, _ := s.group.Do(cacheKey, func() (interface{}, error) {
		f, err := s.compute(ctx, gen, state.Steps, index, datasets, visible)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if data, err := json.Marshal(f); err == nil {
				_ = s.cache.Set(ctx, cacheKey, data, s.ttl)
			}
		}
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Frame), nil
}

func (s *FrameService) compute(
	ctx context.Context,
	gen uint64,
	steps, index int,
	datasets []*domain.Dataset,
	visible map[string]bool,
) (*domain.Frame, error) {
	_, span := telemetry.Tracer("wasteatlas/usecases").Start(ctx, telemetry.SpanFrameCompute)
	span.SetAttributes(attribute.Int(telemetry.AttrIndex, index))
	defer span.End()

	f := &domain.Frame{
		Generation: gen,
		Sequence:   domain.SequenceState{Index: index, Steps: steps},
		Year:       domain.ParseYear(datasets[0].Attributes[index]),
		Layers:     make([]domain.LayerFrame, 0, len(datasets)),
	}
	for _, ds := range datasets {
		l, err := RenderAll(ds, ds.Attributes, domain.ProfileFor(ds.Kind))
		if err != nil {
			return nil, err
		}
		key := ds.Attributes[index]
		l.UpdateAll(key)
		l.RefreshLegend(key)
		l.Visible = visible[ds.Name]
		f.Layers = append(f.Layers, l.Frame())
	}
	if s.computed != nil {
		s.computed()
	}
	return f, nil
}
