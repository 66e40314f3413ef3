package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Push     PushConfig     `mapstructure:"push"`
	Quota    QuotaConfig    `mapstructure:"quota"    validate:"required"`
	Task     TaskConfig     `mapstructure:"task"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains all generative-AI integration settings.
type LLMConfig struct {
	// GeminiAPIKey may be empty, in which case the server starts with a
	// degraded generator and every generation call fails cleanly.
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name"     validate:"required"`
	// VisionModelName is the model used for question image analysis.
	// Defaults to ModelName when empty.
	VisionModelName string `mapstructure:"vision_model_name"`
	// RequestTimeoutSeconds bounds each individual generation call.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

// PushConfig contains push-delivery provider settings.
// When CredentialsFile is empty the notification dispatcher runs without a
// provider and every send fails with a provider-unavailable error.
type PushConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
}

// QuotaConfig contains quota ledger settings.
type QuotaConfig struct {
	DailyLimit    int `mapstructure:"daily_limit"    validate:"required,gt=0"`
	RetentionDays int `mapstructure:"retention_days" validate:"required,gt=0"`
}

// TaskConfig contains background processing settings.
type TaskConfig struct {
	WorkerCount          int `mapstructure:"worker_count"`
	QueueSize            int `mapstructure:"queue_size"`
	StuckJobAgeMinutes   int `mapstructure:"stuck_job_age_minutes"`
	StuckJobCheckMinutes int `mapstructure:"stuck_job_check_minutes"`
	SweepIntervalHours   int `mapstructure:"sweep_interval_hours"`
}
