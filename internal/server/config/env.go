package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// parseEnv overlays values from environment variables. Each setting is bound
// to its variable with the current value as the viper default, so unset or
// empty variables keep it. Malformed numbers, booleans and durations are
// ignored rather than treated as zero.
func parseEnv(config *Config) {
	v := viper.New()

	envString(v, "database_dsn", "DATABASE_DSN", &config.DatabaseDSN)
	envString(v, "grpc_addr", "GRPC_ADDR", &config.EndpointAddrGRPC)
	envString(v, "http_addr", "HTTP_ADDR", &config.EndpointAddrHTTP)
	envString(v, "secret_key", "SECRET_KEY", &config.SecretKey)
	envString(v, "log_level", "LOG_LEVEL", &config.LogLevel)
	envString(v, "log_format", "LOG_FORMAT", &config.LogFormat)

	envBool(v, "notifications.enabled", "NOTIFICATIONS_ENABLED", &config.NotificationsEnabled)
	envInt(v, "notifications.due_soon_days", "DUE_SOON_DAYS", &config.DueSoonDays)
	envInt(v, "notifications.send_hour", "NOTIFICATIONS_SEND_HOUR", &config.SendHour)
	envHours(v, "notifications.dedup_window_hours", "NOTIFICATIONS_DEDUP_WINDOW_HOURS", &config.DedupWindow)
	envDuration(v, "notifications.initial_delay", "NOTIFICATIONS_INITIAL_DELAY", &config.InitialDelay)
	envDuration(v, "notifications.check_interval", "NOTIFICATIONS_CHECK_INTERVAL", &config.CheckInterval)
	envDuration(v, "notifications.send_timeout", "NOTIFICATIONS_SEND_TIMEOUT", &config.SendTimeout)
	envInt(v, "notifications.concurrency", "NOTIFICATIONS_CONCURRENCY", &config.Concurrency)

	envString(v, "smtp.host", "SMTP_HOST", &config.SMTPHost)
	envInt(v, "smtp.port", "SMTP_PORT", &config.SMTPPort)
	envString(v, "smtp.user", "SMTP_USER", &config.SMTPUser)
	envString(v, "smtp.pass", "SMTP_PASS", &config.SMTPPass)
	envString(v, "smtp.from", "SMTP_FROM", &config.SMTPFrom)

	envInt(v, "retention_days", "RETENTION_DAYS", &config.RetentionDays)

	envString(v, "archive.bucket", "ARCHIVE_S3_BUCKET", &config.ArchiveS3Bucket)
	envString(v, "s3.region", "S3_REGION", &config.S3Region)
	envString(v, "s3.base_endpoint", "S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	envString(v, "s3.root_user", "S3_ROOT_USER", &config.S3RootUser)
	envString(v, "s3.root_password", "S3_ROOT_PASSWORD", &config.S3RootPassword)
}

// bind registers def as the default for key and ties key to the env variable.
func bind(v *viper.Viper, key, env string, def any) {
	v.SetDefault(key, def)
	_ = v.BindEnv(key, env)
}

func envString(v *viper.Viper, key, env string, dst *string) {
	bind(v, key, env, *dst)
	if s := strings.TrimSpace(v.GetString(key)); s != "" {
		*dst = s
	}
}

func envInt(v *viper.Viper, key, env string, dst *int) {
	bind(v, key, env, *dst)
	if n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key))); err == nil {
		*dst = n
	}
}

// envHours has no default: the window is only replaced when the variable is
// set, so a configured window that is not a whole number of hours survives.
func envHours(v *viper.Viper, key, env string, dst *time.Duration) {
	_ = v.BindEnv(key, env)
	if !v.IsSet(key) {
		return
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key))); err == nil {
		*dst = time.Duration(n) * time.Hour
	}
}

func envBool(v *viper.Viper, key, env string, dst *bool) {
	bind(v, key, env, *dst)
	if b, ok := parseBool(v.GetString(key)); ok {
		*dst = b
	}
}

func envDuration(v *viper.Viper, key, env string, dst *time.Duration) {
	bind(v, key, env, dst.String())
	if d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key))); err == nil {
		*dst = d
	}
}

// parseBool accepts 1/true/yes/on and 0/false/no/off, case-insensitively.
func parseBool(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
