package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/biblioteca-service/library/internal/events"
	"github.com/Astemirdum/biblioteca-service/library/internal/model"
	"github.com/Astemirdum/biblioteca-service/pkg/circuit_breaker"
	"github.com/Astemirdum/biblioteca-service/pkg/kafka"
)

func record() model.LoanRecord {
	return model.LoanRecord{
		ID:        "2f0c1c64-7d8b-4d7e-9a56-3b1b0e4a5c11",
		Kind:      model.KindBorrow,
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		UserID:    "7e2b8e44-1f0a-4f5e-8a55-6a1f3d9c0b22",
		Username:  "alice",
		BookID:    "c4b1a2d3-5e6f-4a7b-8c9d-0e1f2a3b4c55",
		Title:     "Dune",
		Genre:     "SciFi",
	}
}

func TestPublisher_PublishLoanRecorded(t *testing.T) {
	t.Parallel()
	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		producer := mocks.NewSyncProducer(t, nil)
		producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
			var ev events.LoanRecorded
			if err := jsoniter.Unmarshal(val, &ev); err != nil {
				return err
			}
			if ev.Type != events.LoanRecordedType || ev.Title != "Dune" || ev.Kind != "BORROW" {
				return errors.Errorf("unexpected event %+v", ev)
			}
			return nil
		})
		p := events.NewPublisher(producer, kafka.LoanTopic, circuit_breaker.New(3, time.Minute, 0.5, 1), zap.NewExample())

		require.NoError(t, p.PublishLoanRecorded(context.Background(), record()))
		require.NoError(t, p.Close())
	})

	t.Run("breaker opens on broker failures", func(t *testing.T) {
		t.Parallel()
		producer := mocks.NewSyncProducer(t, nil)
		producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
		producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
		breaker := circuit_breaker.New(2, time.Minute, 1, 1)
		p := events.NewPublisher(producer, kafka.LoanTopic, breaker, zap.NewExample())

		err := p.PublishLoanRecorded(context.Background(), record())
		require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
		err = p.PublishLoanRecorded(context.Background(), record())
		require.ErrorIs(t, err, sarama.ErrOutOfBrokers)

		err = p.PublishLoanRecorded(context.Background(), record())
		require.ErrorIs(t, err, circuit_breaker.ErrOpenCB)
		require.Equal(t, circuit_breaker.Open, breaker.State())
		require.NoError(t, p.Close())
	})

	t.Run("nil publisher", func(t *testing.T) {
		t.Parallel()
		var p *events.Publisher
		require.NoError(t, p.PublishLoanRecorded(context.Background(), record()))
	})
}
