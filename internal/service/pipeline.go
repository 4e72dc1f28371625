// internal/service/pipeline.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StageSummary reports one pipeline stage's run. Failures are collected
// here, never thrown mid-batch.
type StageSummary struct {
	Stage     string `json:"stage"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}

// Pipeline drives the stages sequentially as a single logical worker:
// qualify -> enrich -> initial outreach -> follow-ups.
type Pipeline struct {
	Qualifier *Qualifier
	Enricher  *Enricher
	Outreach  *Outreach
	Sequencer *Sequencer

	BatchLimit int
	Logger     *zap.Logger
}

// Run executes one full pass. A stage-level error (store unavailable, not a
// per-lead failure) stops the pass and is returned with the summaries
// collected so far.
func (p *Pipeline) Run(ctx context.Context) ([]StageSummary, error) {
	summaries := []StageSummary{}

	qualify, err := p.Qualifier.QualifyBatch(ctx, p.BatchLimit)
	summaries = append(summaries, qualify)
	if err != nil {
		return summaries, err
	}

	enrich, err := p.Enricher.EnrichBatch(ctx, p.BatchLimit)
	summaries = append(summaries, enrich)
	if err != nil {
		return summaries, err
	}

	outreach, err := p.Outreach.RunBatch(ctx, p.BatchLimit)
	summaries = append(summaries, outreach)
	if err != nil {
		return summaries, err
	}

	followUp, err := p.Sequencer.RunBatch(ctx, p.BatchLimit)
	summaries = append(summaries, followUp)
	if err != nil {
		return summaries, err
	}

	for _, s := range summaries {
		p.Logger.Info("stage complete",
			zap.String("stage", s.Stage),
			zap.Int("processed", s.Processed),
			zap.Int("skipped", s.Skipped),
			zap.Int("failed", s.Failed),
		)
	}
	return summaries, nil
}

// sleepCtx is the cooperative suspension point between external calls; it
// returns early when the run is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
