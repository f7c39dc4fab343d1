package config

import (
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"

	"github.com/Astemirdum/biblioteca-service/pkg/circuit_breaker"
	"github.com/Astemirdum/biblioteca-service/pkg/kafka"
	"github.com/Astemirdum/biblioteca-service/pkg/logger"
	"github.com/Astemirdum/biblioteca-service/pkg/postgres"
)

type HTTPServer struct {
	Host         string        `envconfig:"LIBRARY_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `envconfig:"LIBRARY_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE" default:"10s"`
}

type Config struct {
	Server   HTTPServer
	Database postgres.DB
	Kafka    kafka.Config
	Breaker  circuit_breaker.Config
	Log      logger.Log
}

var (
	once    sync.Once
	cfg     *Config
	errLoad error
)

// NewConfig reads config from environment once; options override what the
// environment says.
func NewConfig(ops ...Option) (*Config, error) {
	once.Do(func() {
		var c Config
		if err := envconfig.Process("", &c); err != nil {
			errLoad = errors.Wrap(err, "envconfig.Process")
			return
		}
		for _, op := range ops {
			op(&c)
		}
		cfg = &c
	})
	return cfg, errLoad
}
