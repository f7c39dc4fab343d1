package events

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/biblioteca-service/library/internal/model"
	cb "github.com/Astemirdum/biblioteca-service/pkg/circuit_breaker"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const LoanRecordedType = "loan.recorded"

type LoanRecorded struct {
	Type       string    `json:"type"`
	RequestID  string    `json:"requestId"`
	Kind       string    `json:"kind"`
	UserID     string    `json:"userId"`
	Username   string    `json:"userName"`
	BookID     string    `json:"bookId"`
	Title      string    `json:"book"`
	Genre      string    `json:"genre"`
	OccurredAt time.Time `json:"occurredAt"`
}

func newLoanRecorded(rec model.LoanRecord) LoanRecorded {
	return LoanRecorded{
		Type:       LoanRecordedType,
		RequestID:  rec.ID,
		Kind:       string(rec.Kind),
		UserID:     rec.UserID,
		Username:   rec.Username,
		BookID:     rec.BookID,
		Title:      rec.Title,
		Genre:      rec.Genre,
		OccurredAt: rec.CreatedAt,
	}
}

// Publisher sends committed loan records to Kafka. Sends go through a
// circuit breaker so a dead broker costs one fast error per request.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	breaker  cb.CircuitBreaker
	log      *zap.Logger
}

func NewPublisher(producer sarama.SyncProducer, topic string, breaker cb.CircuitBreaker, log *zap.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		breaker:  breaker,
		log:      log.Named("events"),
	}
}

func (p *Publisher) PublishLoanRecorded(ctx context.Context, rec model.LoanRecord) error {
	if p == nil || p.producer == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(newLoanRecorded(rec))
	if err != nil {
		return errors.Wrap(err, "marshal loan event")
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(rec.BookID),
		Value: sarama.ByteEncoder(data),
	}

	return p.breaker.Call(func() error {
		partition, offset, err := p.producer.SendMessage(msg)
		if err != nil {
			return errors.Wrap(err, "send loan event")
		}
		p.log.Debug("loan event sent",
			zap.String("requestId", rec.ID),
			zap.Int32("partition", partition),
			zap.Int64("offset", offset))
		return nil
	})
}

func (p *Publisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
