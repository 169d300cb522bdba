package config

import (
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/kitlibrarian/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.True(t, c.NotificationsEnabled)
	assert.Equal(t, 2, c.DueSoonDays)
	assert.Equal(t, 8, c.SendHour)
	assert.Equal(t, 24*time.Hour, c.DedupWindow)
	assert.Equal(t, 30*time.Second, c.InitialDelay)
	assert.Equal(t, time.Hour, c.CheckInterval)
	assert.Equal(t, 30*time.Second, c.SendTimeout)
	assert.Equal(t, 4, c.Concurrency)
	assert.Equal(t, 587, c.SMTPPort)
	assert.Equal(t, "Kit Librarian <no-reply@example.com>", c.SMTPFrom)
	assert.Equal(t, 365, c.RetentionDays)
	assert.Empty(t, c.ArchiveS3Bucket)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"send hour negative", func(c *Config) { c.SendHour = -1 }},
		{"send hour 24", func(c *Config) { c.SendHour = 24 }},
		{"negative due soon days", func(c *Config) { c.DueSoonDays = -1 }},
		{"zero dedup window", func(c *Config) { c.DedupWindow = 0 }},
		{"zero interval", func(c *Config) { c.CheckInterval = 0 }},
		{"zero send timeout", func(c *Config) { c.SendTimeout = 0 }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"bad smtp port", func(c *Config) { c.SMTPPort = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			assert.ErrorIs(t, c.Validate(), common.ErrInvalidConfig)
		})
	}
}

func TestValidate_SendHourBounds(t *testing.T) {
	var c Config
	c.LoadDefaults()
	c.SendHour = 0
	assert.NoError(t, c.Validate())
	c.SendHour = 23
	assert.NoError(t, c.Validate())
}

func TestValidate_ZeroDueSoonDaysMeansOverdueOnly(t *testing.T) {
	var c Config
	c.LoadDefaults()
	c.DueSoonDays = 0
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_LayersInOrder(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"due_soon_days":           5,
		"notifications_send_hour": 6,
		"database_dsn":            "from-json",
	})
	t.Setenv("NOTIFICATIONS_SEND_HOUR", "7")
	t.Setenv("DATABASE_DSN", "from-env")
	os.Args = []string{"testbin", "-c", path, "-d", "from-flag"}

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5, c.DueSoonDays)
	assert.Equal(t, 7, c.SendHour)
	assert.Equal(t, "from-flag", c.DatabaseDSN)
	assert.True(t, c.NotificationsEnabled)
}

func TestLoadConfig_Invalid(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	t.Setenv("NOTIFICATIONS_SEND_HOUR", "25")

	c, err := LoadConfig()
	assert.Nil(t, c)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}
