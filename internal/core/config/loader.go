package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/dispatcher/internal/core/domain"
)

// Defaults applied by Load when the file leaves a field unset.
const (
	DefaultTimeoutSec           = 15.0
	DefaultRetryCount           = 2
	DefaultRetryDelaySec        = 1.0
	DefaultBreakerThreshold     = 5
	DefaultTasksPerLocationHour = 40
	DefaultIntervalSec          = 0.5
	DefaultSuccessCode          = 50421021
)

// Read parses a YAML config file and applies defaults, without the
// run validation. Commands touching a single subsystem (history,
// failures) use it directly and check only what they need.
func Read(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Load reads configuration for a run: Read plus full validation.
func Load(path string) (*AppConfig, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Service.Protocol == "" {
		cfg.Service.Protocol = "http"
	}
	if cfg.Request.TimeoutSec == 0 {
		cfg.Request.TimeoutSec = DefaultTimeoutSec
	}
	// Pointer fields: only fill when absent, so an explicit 0 sticks.
	if cfg.Request.RetryCount == nil {
		n := DefaultRetryCount
		cfg.Request.RetryCount = &n
	}
	if cfg.Request.RetryDelaySec == nil {
		d := DefaultRetryDelaySec
		cfg.Request.RetryDelaySec = &d
	}
	if len(cfg.Request.SuccessCodes) == 0 {
		cfg.Request.SuccessCodes = []int{DefaultSuccessCode}
	}
	if cfg.Breaker.Threshold == 0 {
		cfg.Breaker.Threshold = DefaultBreakerThreshold
	}
	if cfg.Task.TasksPerLocationHour == 0 {
		cfg.Task.TasksPerLocationHour = DefaultTasksPerLocationHour
	}
	if cfg.Task.IntervalSec == nil {
		v := DefaultIntervalSec
		cfg.Task.IntervalSec = &v
	}
	if cfg.Task.Rule == 0 {
		cfg.Task.Rule = 1
	}
}

// Validate checks the configuration a session cannot start without.
// Errors are surfaced verbatim to the operator; nothing recovers from
// them.
func (cfg *AppConfig) Validate() error {
	if cfg.Service.Host == "" {
		return fmt.Errorf("config: service.host is required")
	}
	if cfg.Service.Port <= 0 || cfg.Service.Port > 65535 {
		return fmt.Errorf("config: service.port must be in 1-65535, got %d", cfg.Service.Port)
	}
	if cfg.Service.Protocol != "http" && cfg.Service.Protocol != "https" {
		return fmt.Errorf("config: service.protocol must be http or https, got %q", cfg.Service.Protocol)
	}
	if cfg.Auth.Token == "" && (cfg.Auth.Account == "" || cfg.Auth.Password == "") {
		return fmt.Errorf("config: auth.token or auth.account+auth.password is required")
	}

	if cfg.Run.Count < 0 {
		return fmt.Errorf("config: run.count must be >= 1, got %d", cfg.Run.Count)
	}
	if cfg.Run.Hours < 0 {
		return fmt.Errorf("config: run.hours must be > 0, got %v", cfg.Run.Hours)
	}
	if cfg.Run.Count == 0 && cfg.Run.Hours == 0 {
		return fmt.Errorf("config: one of run.count or run.hours is required")
	}
	if cfg.Run.Count > 0 && cfg.Run.Hours > 0 {
		return fmt.Errorf("config: run.count and run.hours are mutually exclusive")
	}

	if cfg.Request.TimeoutSec <= 0 {
		return fmt.Errorf("config: request.timeout must be > 0, got %v", cfg.Request.TimeoutSec)
	}
	if cfg.Request.Retries() < 0 {
		return fmt.Errorf("config: request.retry_count must be >= 0, got %d", cfg.Request.Retries())
	}
	if cfg.Request.RetryDelay() < 0 {
		return fmt.Errorf("config: request.retry_delay must be >= 0, got %v", cfg.Request.RetryDelay())
	}
	if cfg.Breaker.Threshold < 1 {
		return fmt.Errorf("config: breaker.threshold must be >= 1, got %d", cfg.Breaker.Threshold)
	}

	switch cfg.Task.Type {
	case domain.TaskLiftToZone:
		return cfg.validateLift()
	case domain.TaskRegionPickup:
		return cfg.validatePickup()
	default:
		return fmt.Errorf("config: task.type must be %q or %q, got %q",
			domain.TaskLiftToZone, domain.TaskRegionPickup, cfg.Task.Type)
	}
}

func (cfg *AppConfig) validateLift() error {
	if len(cfg.Task.Locations) == 0 {
		return fmt.Errorf("config: task.locations is required for %s", domain.TaskLiftToZone)
	}
	if len(cfg.Task.DropAreas) == 0 {
		return fmt.Errorf("config: task.drop_areas is required for %s", domain.TaskLiftToZone)
	}
	if cfg.Task.TasksPerLocationHour < 1 {
		return fmt.Errorf("config: task.tasks_per_location_hour must be >= 1, got %d", cfg.Task.TasksPerLocationHour)
	}
	return nil
}

func (cfg *AppConfig) validatePickup() error {
	if cfg.Task.Rule != 1 && cfg.Task.Rule != 2 {
		return fmt.Errorf("config: task.rule must be 1 or 2, got %d", cfg.Task.Rule)
	}
	if cfg.Task.Rule == 1 && len(cfg.Task.Areas) != 1 {
		return fmt.Errorf("config: rule 1 requires exactly one area, got %d", len(cfg.Task.Areas))
	}
	if cfg.Task.Rule == 2 && len(cfg.Task.Areas) < 2 {
		return fmt.Errorf("config: rule 2 requires at least two areas, got %d", len(cfg.Task.Areas))
	}
	for _, a := range cfg.Task.Areas {
		if a.Name == "" {
			return fmt.Errorf("config: task.areas entries need a name")
		}
		if len(a.Stores) == 0 && cfg.Service.SceneID == "" {
			return fmt.Errorf("config: area %q has no stores and no service.scene_id to discover them", a.Name)
		}
	}
	if cfg.Task.FixedStore == "" && len(cfg.Task.Stores) == 0 {
		return fmt.Errorf("config: task.stores or task.fixed_store is required for %s", domain.TaskRegionPickup)
	}
	if cfg.Task.FixedStore != "" && len(cfg.Task.Stores) > 0 {
		found := false
		for _, s := range cfg.Task.Stores {
			if s == cfg.Task.FixedStore {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("config: fixed_store %q is not in task.stores", cfg.Task.FixedStore)
		}
	}
	return nil
}

// BaseURL builds the dispatch service base URL.
func (s ServiceConfig) BaseURL() string {
	return fmt.Sprintf("%s://%s:%d", s.Protocol, s.Host, s.Port)
}
