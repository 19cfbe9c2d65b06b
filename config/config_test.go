package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.NotEmpty(t, cfg.DatabaseURL)
	assert.Equal(t, "deals", cfg.RedisStream)
	assert.Equal(t, 1, cfg.RedisStreamCount)
	assert.Equal(t, 500, cfg.RedisStreamMaxLength)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 10*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, 55*time.Second, cfg.RunTimeout)
	assert.Equal(t, 60*time.Second, cfg.PpomppuInterval)
	assert.Equal(t, 60*time.Second, cfg.FMKoreaInterval)
	assert.Equal(t, 90*time.Second, cfg.ClienInterval)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.NotificationEnabled())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://user:pw@db:5432/deals")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("CHANNEL_ID_DEAL", "-100200300")
	t.Setenv("PPOMPPU_INTERVAL_SECONDS", "120")
	t.Setenv("BAN_KEYWORDS", "광고, 중고 ,, ad")

	cfg := LoadConfig()

	assert.Equal(t, "postgres://user:pw@db:5432/deals", cfg.DatabaseURL)
	assert.Equal(t, 120*time.Second, cfg.PpomppuInterval)
	assert.Equal(t, []string{"광고", "중고", "ad"}, cfg.BanKeywords)
	assert.True(t, cfg.NotificationEnabled())
}

func TestLoadConfig_BadSecondsFallsBack(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT_SECONDS", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
}

func TestValidate(t *testing.T) {
	valid := Config{
		DatabaseURL:     "postgres://localhost/deals",
		PpomppuInterval: time.Minute,
		FMKoreaInterval: time.Minute,
		ClienInterval:   time.Minute,
		RunTimeout:      55 * time.Second,
	}
	assert.NoError(t, valid.Validate())

	noDB := valid
	noDB.DatabaseURL = ""
	assert.Error(t, noDB.Validate())

	zeroInterval := valid
	zeroInterval.FMKoreaInterval = 0
	assert.Error(t, zeroInterval.Validate())

	halfTelegram := valid
	halfTelegram.TelegramToken = "123:abc"
	assert.Error(t, halfTelegram.Validate())

	fullTelegram := halfTelegram
	fullTelegram.TelegramChatID = "-100200300"
	assert.NoError(t, fullTelegram.Validate())
}
