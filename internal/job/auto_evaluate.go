package job

import (
	"context"
	"errors"
	"fmt"

	"fivebells/internal/domain/world"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Worlds is the part of the world usecase the scheduler job drives.
type Worlds interface {
	List(ctx context.Context) ([]world.World, error)
	Evaluate(ctx context.Context, worldID uint64) (*world.World, error)
}

// AutoEvaluate advances every running world on a cron schedule. Halted
// worlds are skipped until someone resumes them.
type AutoEvaluate struct {
	worlds Worlds
	cron   *cron.Cron
	spec   string
	log    *zap.Logger
}

func NewAutoEvaluate(worlds Worlds, spec string, log *zap.Logger) *AutoEvaluate {
	if log == nil {
		log = zap.NewNop()
	}
	return &AutoEvaluate{
		worlds: worlds,
		cron:   cron.New(cron.WithSeconds()),
		spec:   spec,
		log:    log.Named("auto_evaluate"),
	}
}

// Start registers the schedule and runs it in the background until ctx is done.
func (j *AutoEvaluate) Start(ctx context.Context) error {
	if _, err := j.cron.AddFunc(j.spec, func() { j.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("auto evaluate schedule %q: %w", j.spec, err)
	}
	j.cron.Start()
	j.log.Info("started", zap.String("spec", j.spec))
	go func() {
		<-ctx.Done()
		j.Stop()
	}()
	return nil
}

// Stop waits for a running evaluation to finish.
func (j *AutoEvaluate) Stop() {
	<-j.cron.Stop().Done()
}

// RunOnce evaluates each non-halted world once and returns how many advanced.
func (j *AutoEvaluate) RunOnce(ctx context.Context) int {
	ws, err := j.worlds.List(ctx)
	if err != nil {
		j.log.Error("list worlds", zap.Error(err))
		return 0
	}
	advanced := 0
	for _, w := range ws {
		if ctx.Err() != nil {
			break
		}
		if w.Halted {
			continue
		}
		got, err := j.worlds.Evaluate(ctx, w.ID)
		switch {
		case errors.Is(err, world.ErrSimulationHalted):
			j.log.Warn("world halted", zap.Uint64("world_id", w.ID), zap.Error(err))
		case errors.Is(err, context.Canceled):
			j.log.Info("evaluation interrupted", zap.Uint64("world_id", w.ID))
		case err != nil:
			j.log.Error("evaluate", zap.Uint64("world_id", w.ID), zap.Error(err))
		default:
			advanced++
			j.log.Debug("advanced", zap.Uint64("world_id", w.ID), zap.Int64("cycle", got.CurrentCycle))
		}
	}
	return advanced
}
