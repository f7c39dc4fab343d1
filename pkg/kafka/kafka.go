package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

const LoanTopic = "biblioteca.loans"

type Config struct {
	Addrs        []string      `envconfig:"KAFKA_ADDRS"`
	Topic        string        `envconfig:"KAFKA_LOAN_TOPIC"`
	WriteTimeout time.Duration `envconfig:"KAFKA_WRITE_TIMEOUT" default:"5s"`
}

// LoanTopicName falls back to LoanTopic when no topic was configured.
func (c Config) LoanTopicName() string {
	if c.Topic == "" {
		return LoanTopic
	}
	return c.Topic
}

// Enabled reports whether brokers were configured at all.
func (c Config) Enabled() bool {
	return len(c.Addrs) > 0
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Idempotent = true
	defaultCfg.Net.MaxOpenRequests = 1
	defaultCfg.Producer.Retry.Max = 3
	if cfg.WriteTimeout > 0 {
		defaultCfg.Net.WriteTimeout = cfg.WriteTimeout
	}

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}
