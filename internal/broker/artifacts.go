package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/MikeSquared-Agency/Triage/internal/cache"
	"github.com/MikeSquared-Agency/Triage/internal/metrics"
	"github.com/MikeSquared-Agency/Triage/internal/risk"
	"github.com/MikeSquared-Agency/Triage/internal/skill"
)

// Artifacts is one immutable set of built models. Requests read whichever
// set was current when they started.
type Artifacts struct {
	Engine  *risk.Engine
	Matcher *skill.Matcher
	BuiltAt time.Time
}

// Init loads artifacts from the cache, building whatever is missing.
func (b *Broker) Init(ctx context.Context) error {
	return b.build(ctx, false)
}

// Rebuild ignores cached artifacts, rebuilds both from the store, saves them
// and swaps them in.
func (b *Broker) Rebuild(ctx context.Context) error {
	return b.build(ctx, true)
}

func (b *Broker) build(ctx context.Context, force bool) error {
	b.buildMu.Lock()
	defer b.buildMu.Unlock()

	// Calibration statistics are always recomputed from the table.
	rows, err := b.store.LoadCalibration(ctx)
	if err != nil {
		return fmt.Errorf("load calibration: %w", err)
	}
	calib, err := risk.NewCalibration(rows)
	if err != nil {
		return fmt.Errorf("calibrate: %w", err)
	}

	scalers, err := b.loadScalers(ctx, calib, force)
	if err != nil {
		return err
	}
	engine, err := risk.NewEngine(calib, scalers)
	if err != nil {
		return fmt.Errorf("risk engine: %w", err)
	}

	model, err := b.loadSkillModel(ctx, force)
	if err != nil {
		return err
	}

	b.artifacts.Store(&Artifacts{
		Engine:  engine,
		Matcher: skill.NewMatcher(model, b.norm),
		BuiltAt: time.Now().UTC(),
	})
	b.logger.Info("artifacts ready",
		"calibration_rows", len(rows),
		"vocabulary", model.Vectorizer.Len(),
		"engineers", len(model.Centroids),
		"forced", force,
	)
	return nil
}

func (b *Broker) loadScalers(ctx context.Context, calib *risk.Calibration, force bool) (*risk.Scalers, error) {
	if !force {
		var cached risk.Scalers
		if b.tryLoad(ctx, cache.ArtifactScalers, &cached) && cached.Width() == 4 {
			return &cached, nil
		}
	}
	scalers, err := risk.FitScalers(calib.Matrix())
	if err != nil {
		return nil, fmt.Errorf("fit scalers: %w", err)
	}
	b.save(ctx, cache.ArtifactScalers, scalers)
	return scalers, nil
}

func (b *Broker) loadSkillModel(ctx context.Context, force bool) (*skill.Model, error) {
	if !force {
		var cached skill.Model
		if b.tryLoad(ctx, cache.ArtifactSkillModel, &cached) && cached.Vectorizer != nil {
			return &cached, nil
		}
	}
	tickets, err := b.store.LoadTickets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tickets: %w", err)
	}
	model := skill.Build(tickets, b.norm, b.skillOpts, b.logger)
	b.save(ctx, cache.ArtifactSkillModel, model)
	return model, nil
}

// tryLoad treats a corrupt entry as a miss.
func (b *Broker) tryLoad(ctx context.Context, name string, v any) bool {
	found, err := b.cache.TryLoad(ctx, name, v)
	switch {
	case err != nil:
		b.logger.Warn("artifact cache load failed, rebuilding", "artifact", name, "error", err)
		metrics.ArtifactCache.WithLabelValues(name, metrics.CacheError).Inc()
		return false
	case !found:
		metrics.ArtifactCache.WithLabelValues(name, metrics.CacheMiss).Inc()
		return false
	}
	metrics.ArtifactCache.WithLabelValues(name, metrics.CacheHit).Inc()
	b.logger.Debug("artifact loaded from cache", "artifact", name)
	return true
}

func (b *Broker) save(ctx context.Context, name string, v any) {
	if err := b.cache.Save(ctx, name, v); err != nil {
		b.logger.Warn("artifact cache save failed", "artifact", name, "error", err)
	}
}

// Artifacts returns the current set or ErrNotReady.
func (b *Broker) Artifacts() (*Artifacts, error) {
	a := b.artifacts.Load()
	if a == nil {
		return nil, ErrNotReady
	}
	return a, nil
}

func (b *Broker) Ready() bool {
	return b.artifacts.Load() != nil
}
