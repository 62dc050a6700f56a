package internal

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Host                  string        `env:"HOST,default=0.0.0.0" validate:"required"`
	Port                  int           `env:"PORT,default=8080" validate:"required,gt=0"`
	LogLevel              string        `env:"LOG_LEVEL,default=INFO" validate:"required,oneof=DEBUG INFO WARN ERROR"`
	SessionBufferSize     int           `env:"SESSION_BUFFER_SIZE,default=64" validate:"gt=0"`
	SinkTimeout           time.Duration `env:"SINK_TIMEOUT,default=5s" validate:"required"`
	RestartInterval       time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"required"`
	MetricInterval        time.Duration `env:"METRIC_INTERVAL,default=5s" validate:"required"`
	ExecWorkDir           string        `env:"EXEC_WORK_DIR,default=/tmp" validate:"required"`
	TrackerBufferSize     int           `env:"TRACKER_BUFFER_SIZE,default=32" validate:"gt=0"`
	RecentResultCacheSize int           `env:"RECENT_RESULT_CACHE_SIZE,default=128" validate:"gt=0"`
}

// Validate rejects a configuration that would start a broken server,
// before anything else is wired.
func Validate(cfg Config) error {
	return validator.New().Struct(cfg)
}
