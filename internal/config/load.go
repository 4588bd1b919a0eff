package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "TASKTRAIL"

// Load reads configuration from environment variables, applies defaults,
// and validates the result. Environment variables use the TASKTRAIL_ prefix
// with underscores separating nested keys, e.g. TASKTRAIL_AUTH_JWT_SECRET.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env vars through Unmarshal for
	// keys without defaults, so bind every key explicitly.
	for _, key := range []string{
		"server.port", "server.log_level",
		"database.url",
		"auth.jwt_secret", "auth.token_lifetime_minutes",
		"auth.refresh_token_lifetime_minutes", "auth.bcrypt_cost",
		"mail.host", "mail.port", "mail.username", "mail.password",
		"mail.from_address",
		"worker.count", "worker.queue_size", "worker.stuck_job_age_minutes",
		"scheduler.overdue_sweep_spec", "scheduler.daily_summary_spec",
		"scheduler.archive_purge_spec", "scheduler.archived_retention_days",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("mail.port", 25)
	v.SetDefault("mail.from_address", "noreply@tasktrail.local")

	v.SetDefault("worker.count", 2)
	v.SetDefault("worker.queue_size", 100)
	v.SetDefault("worker.stuck_job_age_minutes", 30)

	v.SetDefault("scheduler.overdue_sweep_spec", "0 * * * *")
	v.SetDefault("scheduler.daily_summary_spec", "0 6 * * *")
	v.SetDefault("scheduler.archive_purge_spec", "30 2 * * *")
	v.SetDefault("scheduler.archived_retention_days", 30)
}
