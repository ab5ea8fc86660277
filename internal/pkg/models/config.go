package models

// Config holds all application configuration, populated from the environment.
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	JWT      JWTConfig
	Dispatch DispatchConfig
	Notify   NotifyConfig
	Logger   LoggerConfig
	NewRelic NewRelicConfig
}

// AppConfig holds application metadata.
type AppConfig struct {
	Name        string
	Environment string
	Version     string
	Debug       bool
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NATSConfig holds NATS connection configuration.
type NATSConfig struct {
	URL string
}

// JWTConfig holds JWT validation configuration. Tokens are issued by the
// external identity service; this service only verifies them.
type JWTConfig struct {
	Secret string
	Issuer string
}

// DispatchConfig holds the matching engine tuning knobs.
type DispatchConfig struct {
	SearchRadiusKm       float64
	BroadcastRadiusKm    float64
	AvgSpeedKmh          float64
	OfferTimeoutSeconds  int
	RetryIntervalSeconds int
	DefaultLongitude     float64
	DefaultLatitude      float64
}

// NotifyConfig selects the notification delivery backend.
//
// Transport is "poll" (responders drain a mailbox) or "push" (websocket with
// poll fallback for disconnected responders). Backend is "memory" or "redis".
type NotifyConfig struct {
	Transport string
	Backend   string
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level      string
	FilePath   string
	MaxSize    int64
	MaxAge     int
	MaxBackups int
	Compress   bool
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	LicenseKey  string
	AppName     string
	Enabled     bool
	LogsEnabled bool
	ForwardLogs bool
}
