package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Astemirdum/biblioteca-service/library/internal/model"
	"github.com/Astemirdum/biblioteca-service/library/internal/repository"
)

// Publisher receives every committed loan record.
type Publisher interface {
	PublishLoanRecorded(ctx context.Context, rec model.LoanRecord) error
}

type nopPublisher struct{}

func (nopPublisher) PublishLoanRecorded(context.Context, model.LoanRecord) error { return nil }

type Service struct {
	log       *zap.Logger
	repo      repository.Repository
	publisher Publisher
	now       func() time.Time
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo repository.Repository, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:       log.Named("service"),
		repo:      repo,
		publisher: nopPublisher{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
