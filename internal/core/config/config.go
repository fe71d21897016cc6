package config

import (
	"time"

	"github.com/vietddude/dispatcher/internal/core/domain"
	redisclient "github.com/vietddude/dispatcher/internal/infra/redis"
	"github.com/vietddude/dispatcher/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration. It is loaded once at
// startup and treated as immutable for the session's lifetime.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Service  ServiceConfig      `yaml:"service"`
	Auth     AuthConfig         `yaml:"auth"`
	Task     TaskConfig         `yaml:"task"`
	Run      RunConfig          `yaml:"run"`
	Request  RequestConfig      `yaml:"request"`
	Breaker  BreakerConfig      `yaml:"breaker"`
	Logging  LoggingConfig      `yaml:"logging"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds the health/metrics HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// ServiceConfig points at the remote dispatch service.
type ServiceConfig struct {
	Protocol string `yaml:"protocol"` // http or https
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	SceneID  string `yaml:"scene_id"` // map scene used by discovery
}

// AuthConfig supplies the bearer credential. When Token is empty the
// runner logs in with Account/Password before the session starts.
type AuthConfig struct {
	Token    string `yaml:"token"`
	Account  string `yaml:"account"`
	Password string `yaml:"password"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// TaskConfig describes what to submit and the selection policy inputs.
type TaskConfig struct {
	Type domain.TaskType `yaml:"type"`

	// Lift-to-zone inputs.
	Locations            []string `yaml:"locations"`
	DropAreas            []string `yaml:"drop_areas"`
	TasksPerLocationHour int      `yaml:"tasks_per_location_hour"`

	// Region-pickup inputs.
	Rule       int           `yaml:"rule"`
	Areas      []domain.Area `yaml:"areas"`
	Stores     []string      `yaml:"stores"` // allowed destination stores
	FixedStore string        `yaml:"fixed_store"`

	// Pause between submissions, seconds. Fractional allowed. A
	// pointer so an explicit 0 (no pause) survives defaulting.
	IntervalSec *float64 `yaml:"interval"`
}

// RunConfig picks the termination criterion. Exactly one of Count or
// Hours must be set.
type RunConfig struct {
	Count int     `yaml:"count"`
	Hours float64 `yaml:"hours"`
}

// Mode converts the raw run settings into a domain run mode.
func (r RunConfig) Mode() domain.RunMode {
	if r.Count > 0 {
		return domain.CountBound(r.Count)
	}
	return domain.DurationBound(time.Duration(r.Hours * float64(time.Hour)))
}

// RequestConfig tunes the dispatch client and retry controller.
// Times are in seconds, fractional allowed, mirroring the INI the
// operators already maintain for these runs. Retry fields are pointers
// because 0 is a meaningful setting (no retries, no delay) and must be
// distinguishable from unset.
type RequestConfig struct {
	TimeoutSec    float64  `yaml:"timeout"`
	RetryCount    *int     `yaml:"retry_count"`
	RetryDelaySec *float64 `yaml:"retry_delay"`
	SuccessCodes  []int    `yaml:"success_codes"`
}

// Timeout returns the per-call timeout.
func (r RequestConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSec * float64(time.Second))
}

// Retries returns the extra attempts after the first.
func (r RequestConfig) Retries() int {
	if r.RetryCount == nil {
		return 0
	}
	return *r.RetryCount
}

// RetryDelay returns the pause between transport retries.
func (r RequestConfig) RetryDelay() time.Duration {
	if r.RetryDelaySec == nil {
		return 0
	}
	return time.Duration(*r.RetryDelaySec * float64(time.Second))
}

// BreakerConfig tunes the consecutive-failure circuit breaker.
type BreakerConfig struct {
	Threshold int `yaml:"threshold"`
}

// Interval returns the pause between submissions.
func (t TaskConfig) Interval() time.Duration {
	if t.IntervalSec == nil {
		return 0
	}
	return time.Duration(*t.IntervalSec * float64(time.Second))
}
