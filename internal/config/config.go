package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Mail      MailConfig      `mapstructure:"mail"`
	Worker    WorkerConfig    `mapstructure:"worker" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database related settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains authentication and token settings.
//
// TokenLifetimeMinutes governs access tokens; RefreshTokenLifetimeMinutes
// governs refresh tokens and must be the longer of the two.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=1440"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,lte=43200"`
	BcryptCost                  int    `mapstructure:"bcrypt_cost" validate:"omitempty,gte=4,lte=31"`
}

// MailConfig contains outbound email settings. When Host is empty the
// application logs notifications instead of sending them, which keeps
// local development free of SMTP infrastructure.
type MailConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port" validate:"omitempty,gt=0,lt=65536"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	FromAddress string `mapstructure:"from_address" validate:"omitempty,email"`
}

// WorkerConfig contains background job runner settings.
type WorkerConfig struct {
	Count              int `mapstructure:"count" validate:"required,gt=0,lte=32"`
	QueueSize          int `mapstructure:"queue_size" validate:"required,gt=0"`
	StuckJobAgeMinutes int `mapstructure:"stuck_job_age_minutes" validate:"required,gt=0"`
}

// SchedulerConfig contains cron schedules and retention settings for the
// periodic maintenance jobs.
type SchedulerConfig struct {
	OverdueSweepSpec      string `mapstructure:"overdue_sweep_spec" validate:"required"`
	DailySummarySpec      string `mapstructure:"daily_summary_spec" validate:"required"`
	ArchivePurgeSpec      string `mapstructure:"archive_purge_spec" validate:"required"`
	ArchivedRetentionDays int    `mapstructure:"archived_retention_days" validate:"required,gt=0"`
}
