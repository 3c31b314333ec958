package world

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"unicode/utf8"

	"fivebells/internal/domain/agent"
	"fivebells/internal/domain/outbox"
	"fivebells/internal/domain/uow"
	"fivebells/internal/domain/world"

	"go.uber.org/zap"
)

// Locker serialises evaluations of the same world across processes.
type Locker interface {
	Acquire(ctx context.Context, worldID uint64) (world.Lease, error)
}

// maxReasonBytes bounds the stored halt reason.
const maxReasonBytes = 512

// CycleEvent is the outbox payload of a committed tick or a halt.
type CycleEvent struct {
	WorldID uint64 `json:"world_id"`
	Cycle   int64  `json:"cycle"`
	Reason  string `json:"reason,omitempty"`
}

type Usecase struct {
	worlds world.Repository
	uow    uow.UnitOfWork
	pops   agent.Populations
	locker Locker
	log    *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRand returns the PCG source the scheduler shuffles with.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
}

func NewUsecase(worlds world.Repository, tx uow.UnitOfWork, pops agent.Populations, rng *rand.Rand, log *zap.Logger) *Usecase {
	if rng == nil {
		rng = NewRand(1)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{worlds: worlds, uow: tx, pops: pops, rng: rng, log: log}
}

// WithLocker makes Evaluate take a per-world lease first.
func (u *Usecase) WithLocker(l Locker) *Usecase {
	u.locker = l
	return u
}

// Reseed restarts the shuffle sequence, so a replay with the same seed
// visits agents in the same order.
func (u *Usecase) Reseed(seed uint64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.rng = NewRand(seed)
}

func (u *Usecase) Create(ctx context.Context, name string, stepSize int) (*world.World, error) {
	if stepSize < 1 {
		stepSize = 1
	}
	w := &world.World{Name: name, CycleStepSize: stepSize}
	if err := u.worlds.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (u *Usecase) Get(ctx context.Context, worldID uint64) (*world.World, error) {
	return u.worlds.GetByID(ctx, worldID)
}

func (u *Usecase) List(ctx context.Context) ([]world.World, error) {
	return u.worlds.List(ctx)
}

// Evaluate advances the world by CycleStepSize ticks. The first failing tick
// halts the world; earlier ticks stay committed.
//
// A started tick always runs to completion: cancelling ctx stops the loop
// before the next tick and returns ctx.Err() without halting the world.
func (u *Usecase) Evaluate(ctx context.Context, worldID uint64) (*world.World, error) {
	var lease world.Lease
	if u.locker != nil {
		l, err := u.locker.Acquire(ctx, worldID)
		if err != nil {
			return nil, fmt.Errorf("lock world %d: %w", worldID, err)
		}
		lease = l
		defer func() {
			if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
				u.log.Warn("world: release lock", zap.Uint64("world_id", worldID), zap.Error(err))
			}
		}()
	}

	w, err := u.worlds.GetByID(ctx, worldID)
	if err != nil {
		return nil, err
	}
	steps := w.CycleStepSize
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		if w.Halted {
			return w, fmt.Errorf("%w: world %d: %s", world.ErrSimulationHalted, w.ID, w.HaltReason)
		}
		if err := ctx.Err(); err != nil {
			u.log.Info("world: evaluation interrupted", zap.Uint64("world_id", w.ID), zap.Int64("cycle", w.CurrentCycle), zap.Error(err))
			return w, err
		}
		if lease != nil && i > 0 {
			if err := lease.Renew(ctx); err != nil {
				return w, fmt.Errorf("renew world %d lock: %w", w.ID, err)
			}
		}
		if err := u.tick(context.WithoutCancel(ctx), w); err != nil {
			return w, u.halt(ctx, w, err)
		}
	}
	return w, nil
}

// Resume clears the halted flag. The cycle counter is left alone.
func (u *Usecase) Resume(ctx context.Context, worldID uint64) (*world.World, error) {
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Worlds.GetByIDForUpdate(ctx, worldID); err != nil {
			return err
		}
		return r.Worlds.SetHalted(ctx, worldID, false, "")
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("world: resumed", zap.Uint64("world_id", worldID))
	return u.worlds.GetByID(ctx, worldID)
}

func (u *Usecase) tick(ctx context.Context, w *world.World) error {
	cycle := w.CurrentCycle
	var evaluated []agent.Agent
	for _, kind := range agent.Phases {
		pop := u.pops.Population(w.ID, kind)
		u.shuffle(pop)
		for _, a := range pop {
			if err := a.Evaluate(ctx, cycle); err != nil {
				return fmt.Errorf("%s %q evaluate cycle %d: %w", kind, a.Name(), cycle, err)
			}
		}
		evaluated = append(evaluated, pop...)
	}

	next := cycle + 1
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Worlds.SetCycle(ctx, w.ID, next); err != nil {
			return err
		}
		return u.emit(ctx, r, outbox.EventCycleAdvanced, CycleEvent{WorldID: w.ID, Cycle: next})
	})
	if err != nil {
		return fmt.Errorf("persist cycle %d: %w", next, err)
	}
	w.CurrentCycle = next

	for _, a := range evaluated {
		if err := a.RecordStats(ctx, next); err != nil {
			return fmt.Errorf("%s %q record stats: %w", a.Kind(), a.Name(), err)
		}
		if err := a.ResetInternals(ctx); err != nil {
			return fmt.Errorf("%s %q reset: %w", a.Kind(), a.Name(), err)
		}
	}
	u.log.Debug("world: cycle advanced", zap.Uint64("world_id", w.ID), zap.Int64("cycle", next), zap.Int("agents", len(evaluated)))
	return nil
}

func (u *Usecase) halt(ctx context.Context, w *world.World, cause error) error {
	reason := truncate(cause.Error(), maxReasonBytes)
	ctx = context.WithoutCancel(ctx)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Worlds.SetHalted(ctx, w.ID, true, reason); err != nil {
			return err
		}
		return u.emit(ctx, r, outbox.EventWorldHalted, CycleEvent{WorldID: w.ID, Cycle: w.CurrentCycle, Reason: reason})
	})
	if err != nil {
		cause = errors.Join(cause, fmt.Errorf("persist halt: %w", err))
	} else {
		w.Halted = true
		w.HaltReason = reason
	}
	u.log.Error("world: halted", zap.Uint64("world_id", w.ID), zap.Int64("cycle", w.CurrentCycle), zap.Error(cause))
	return &world.HaltError{WorldID: w.ID, Cycle: w.CurrentCycle, Err: cause}
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (u *Usecase) emit(ctx context.Context, r uow.Repos, event string, payload CycleEvent) error {
	key := strconv.FormatUint(payload.WorldID, 10) + ":" + strconv.FormatInt(payload.Cycle, 10)
	msg, err := outbox.NewMessage(event, key, payload)
	if err != nil {
		return err
	}
	return r.Outbox.Create(ctx, msg)
}

func (u *Usecase) shuffle(pop []agent.Agent) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.rng.Shuffle(len(pop), func(i, j int) { pop[i], pop[j] = pop[j], pop[i] })
}
