package mq

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"
)

func TestPublisher_SendsToPrefixedTopic(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"cycle":3}` {
			return errors.New("unexpected payload " + string(val))
		}
		return nil
	})

	p := NewPublisher(sp, "fivebells")
	require.Equal(t, "fivebells.world.halted", p.Topic("world.halted"))
	require.NoError(t, p.Publish(context.Background(), "world.cycle_advanced", "world-1", `{"cycle":3}`))
	require.NoError(t, p.Close())
}

func TestPublisher_BrokerError(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisher(sp, "")
	require.Equal(t, "transfer.recorded", p.Topic("transfer.recorded"))
	err := p.Publish(context.Background(), "transfer.recorded", "7", "{}")
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestPublisher_CancelledContext(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPublisher(sp, "x").Publish(ctx, "transfer.recorded", "7", "{}")
	require.ErrorIs(t, err, context.Canceled)
	require.NoError(t, sp.Close())
}
