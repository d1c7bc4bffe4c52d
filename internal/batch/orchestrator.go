package batch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"carrierscope/internal/carrier"
	"carrierscope/internal/fetch"
)

// Runner executes the pipeline for one identifier. Implemented by
// carrier.Pipeline; tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, id string) carrier.Verdict
}

// Config controls orchestration behavior.
type Config struct {
	Concurrency int
	SliceDelay  time.Duration
	Mode        carrier.Mode
}

// Orchestrator walks the input list in contiguous slices of Concurrency
// identifiers. All members of a slice run in parallel behind a join
// barrier; slices themselves run strictly in input order with a fixed
// politeness delay between them.
type Orchestrator struct {
	runner Runner
	cfg    Config
	pauser fetch.Pauser
	logger *zap.Logger
}

// New builds an Orchestrator.
func New(runner Runner, cfg Config, logger *zap.Logger) *Orchestrator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		runner: runner,
		cfg:    cfg,
		pauser: fetch.TimerPauser{},
		logger: logger,
	}
}

// WithPauser swaps the inter-slice pauser; tests use this to avoid sleeping.
func (o *Orchestrator) WithPauser(p fetch.Pauser) *Orchestrator {
	o.pauser = p
	return o
}

// Run processes every identifier and returns the aggregated accepted output.
// Rejections are not failures of the batch; a run always proceeds to the
// final slice.
func (o *Orchestrator) Run(ctx context.Context, ids []string) carrier.BatchResult {
	var (
		result   carrier.BatchResult
		mu       sync.Mutex
		rejected = make(map[carrier.RejectReason]int)
	)

	for start := 0; start < len(ids); start += o.cfg.Concurrency {
		if start > 0 {
			o.pauser.Pause(ctx, o.cfg.SliceDelay)
		}
		end := start + o.cfg.Concurrency
		if end > len(ids) {
			end = len(ids)
		}
		slice := ids[start:end]
		verdicts := make([]carrier.Verdict, len(slice))

		g, gctx := errgroup.WithContext(ctx)
		for i, id := range slice {
			g.Go(func() error {
				verdicts[i] = o.runner.Run(gctx, id)
				return nil
			})
		}
		// Rejections are values, so the group never returns an error; the
		// Wait is the slice join barrier.
		_ = g.Wait()

		mu.Lock()
		for _, v := range verdicts {
			if !v.Accepted {
				rejected[v.Reason]++
				continue
			}
			if v.Record != nil {
				result.Records = append(result.Records, *v.Record)
			}
			if o.cfg.Mode == carrier.ModeURLs || o.cfg.Mode == carrier.ModeBoth {
				result.URLs = append(result.URLs, v.URL)
			}
		}
		mu.Unlock()

		o.logger.Debug("slice complete",
			zap.Int("start", start),
			zap.Int("size", len(slice)),
		)
	}

	fields := []zap.Field{
		zap.Int("input", len(ids)),
		zap.Int("accepted", len(result.Records)+lenURLsOnly(o.cfg.Mode, result)),
	}
	for reason, n := range rejected {
		fields = append(fields, zap.Int("rejected_"+string(reason), n))
	}
	o.logger.Info("batch complete", fields...)
	return result
}

// lenURLsOnly counts accepted identifiers in urls mode, where no records are
// built.
func lenURLsOnly(mode carrier.Mode, result carrier.BatchResult) int {
	if mode == carrier.ModeURLs {
		return len(result.URLs)
	}
	return 0
}
