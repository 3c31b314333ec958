package job

import (
	"context"
	"time"

	"fivebells/internal/domain/outbox"

	"go.uber.org/zap"
)

// Publisher delivers one outbox message to the broker.
type Publisher interface {
	Publish(ctx context.Context, eventType, key, payload string) error
}

// OutboxSender drains pending outbox messages on a fixed interval. A message
// that keeps failing is marked FAILED after maxRetry attempts.
type OutboxSender struct {
	repo      outbox.Repository
	pub       Publisher
	log       *zap.Logger
	stopCh    chan struct{}
	interval  time.Duration
	batchSize int
	maxRetry  int
}

func NewOutboxSender(repo outbox.Repository, pub Publisher, interval time.Duration, maxRetry int, log *zap.Logger) *OutboxSender {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	if maxRetry <= 0 {
		maxRetry = 3
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OutboxSender{
		repo:      repo,
		pub:       pub,
		log:       log.Named("outbox_sender"),
		stopCh:    make(chan struct{}),
		interval:  interval,
		batchSize: 100,
		maxRetry:  maxRetry,
	}
}

// Start blocks until ctx is cancelled or Stop is called.
func (s *OutboxSender) Start(ctx context.Context) {
	s.log.Info("started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("context done, exiting")
			return
		case <-s.stopCh:
			s.log.Info("stopped")
			return
		case <-ticker.C:
			s.Flush(ctx)
		}
	}
}

func (s *OutboxSender) Stop() {
	close(s.stopCh)
}

// Flush sends one batch and returns how many messages were delivered.
func (s *OutboxSender) Flush(ctx context.Context) int {
	messages, err := s.repo.ListPending(ctx, s.batchSize)
	if err != nil {
		s.log.Error("list pending", zap.Error(err))
		return 0
	}
	sent := 0
	for i := range messages {
		if s.send(ctx, &messages[i]) {
			sent++
		}
	}
	return sent
}

func (s *OutboxSender) send(ctx context.Context, msg *outbox.Message) bool {
	err := s.pub.Publish(ctx, msg.EventType, msg.MessageKey, msg.Payload)
	if err == nil {
		if err := s.repo.MarkSent(ctx, msg.ID); err != nil {
			s.log.Error("mark sent", zap.Uint64("id", msg.ID), zap.Error(err))
			return false
		}
		s.log.Debug("sent", zap.Uint64("id", msg.ID), zap.String("event", msg.EventType), zap.String("key", msg.MessageKey))
		return true
	}

	s.log.Warn("publish failed", zap.Uint64("id", msg.ID), zap.Int("retry", msg.RetryCount), zap.Error(err))
	if err := s.repo.IncrementRetry(ctx, msg.ID); err != nil {
		s.log.Error("increment retry", zap.Uint64("id", msg.ID), zap.Error(err))
	}
	if msg.RetryCount+1 >= s.maxRetry {
		if err := s.repo.MarkFailed(ctx, msg.ID); err != nil {
			s.log.Error("mark failed", zap.Uint64("id", msg.ID), zap.Error(err))
		} else {
			s.log.Warn("giving up", zap.Uint64("id", msg.ID))
		}
	}
	return false
}
