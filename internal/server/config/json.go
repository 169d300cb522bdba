package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/kitlibrarian/internal/flagx"
	"github.com/dmitrijs2005/kitlibrarian/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations use
// timex.Duration so both "30s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrGRPC string `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP string `json:"endpoint_addr_http"`
	DatabaseDSN      string `json:"database_dsn"`
	SecretKey        string `json:"secret_key"`
	LogLevel         string `json:"log_level"`
	LogFormat        string `json:"log_format"`

	NotificationsEnabled bool           `json:"notifications_enabled"`
	DueSoonDays          int            `json:"due_soon_days"`
	SendHour             int            `json:"notifications_send_hour"`
	DedupWindow          timex.Duration `json:"dedup_window"`
	InitialDelay         timex.Duration `json:"initial_delay"`
	CheckInterval        timex.Duration `json:"check_interval"`
	SendTimeout          timex.Duration `json:"send_timeout"`
	Concurrency          int            `json:"concurrency"`

	SMTPHost string `json:"smtp_host"`
	SMTPPort int    `json:"smtp_port"`
	SMTPUser string `json:"smtp_user"`
	SMTPPass string `json:"smtp_pass"`
	SMTPFrom string `json:"smtp_from"`

	RetentionDays int `json:"retention_days"`

	ArchiveS3Bucket string `json:"archive_s3_bucket"`
	S3Region        string `json:"s3_region"`
	S3BaseEndpoint  string `json:"s3_base_endpoint"`
	S3RootUser      string `json:"s3_root_user"`
	S3RootPassword  string `json:"s3_root_password"`
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrGRPC:     c.EndpointAddrGRPC,
		EndpointAddrHTTP:     c.EndpointAddrHTTP,
		DatabaseDSN:          c.DatabaseDSN,
		SecretKey:            c.SecretKey,
		LogLevel:             c.LogLevel,
		LogFormat:            c.LogFormat,
		NotificationsEnabled: c.NotificationsEnabled,
		DueSoonDays:          c.DueSoonDays,
		SendHour:             c.SendHour,
		DedupWindow:          timex.Duration{Duration: c.DedupWindow},
		InitialDelay:         timex.Duration{Duration: c.InitialDelay},
		CheckInterval:        timex.Duration{Duration: c.CheckInterval},
		SendTimeout:          timex.Duration{Duration: c.SendTimeout},
		Concurrency:          c.Concurrency,
		SMTPHost:             c.SMTPHost,
		SMTPPort:             c.SMTPPort,
		SMTPUser:             c.SMTPUser,
		SMTPPass:             c.SMTPPass,
		SMTPFrom:             c.SMTPFrom,
		RetentionDays:        c.RetentionDays,
		ArchiveS3Bucket:      c.ArchiveS3Bucket,
		S3Region:             c.S3Region,
		S3BaseEndpoint:       c.S3BaseEndpoint,
		S3RootUser:           c.S3RootUser,
		S3RootPassword:       c.S3RootPassword,
	}
}

// parseJson overlays values from the file named by -c/-config. Keys absent
// from the file keep their current values. An unreadable file or invalid
// JSON panics, as a broken config file is a startup error.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.LogLevel = c.LogLevel
	config.LogFormat = c.LogFormat
	config.NotificationsEnabled = c.NotificationsEnabled
	config.DueSoonDays = c.DueSoonDays
	config.SendHour = c.SendHour
	config.DedupWindow = c.DedupWindow.Duration
	config.InitialDelay = c.InitialDelay.Duration
	config.CheckInterval = c.CheckInterval.Duration
	config.SendTimeout = c.SendTimeout.Duration
	config.Concurrency = c.Concurrency
	config.SMTPHost = c.SMTPHost
	config.SMTPPort = c.SMTPPort
	config.SMTPUser = c.SMTPUser
	config.SMTPPass = c.SMTPPass
	config.SMTPFrom = c.SMTPFrom
	config.RetentionDays = c.RetentionDays
	config.ArchiveS3Bucket = c.ArchiveS3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
}
