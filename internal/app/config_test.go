package app

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	_ "github.com/odyssey-erp/fulfillment-ledger/testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.True(t, cfg.TaxRatePercent.Equal(decimal.NewFromInt(11)), cfg.TaxRatePercent.String())
	require.Equal(t, "RGI", cfg.CompanyCode)
	require.Equal(t, 120, cfg.AppRateLimit)
	require.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	require.False(t, cfg.NotifyEnabled)
	require.False(t, cfg.IsProduction())
	require.True(t, InTestMode())
}

func TestLoadConfigNormalizesCompanyCode(t *testing.T) {
	t.Setenv("DOC_COMPANY_CODE", " abc ")
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "ABC", cfg.CompanyCode)
	require.True(t, cfg.IsProduction())
}

func TestLoadConfigAcceptsFractionalTaxRate(t *testing.T) {
	t.Setenv("TAX_RATE_PERCENT", "11.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "11.5", cfg.TaxRatePercent.String())
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("TAX_RATE_PERCENT", "-1")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("TAX_RATE_PERCENT", "eleven")
	_, err = LoadConfig()
	require.Error(t, err)

	t.Setenv("TAX_RATE_PERCENT", "11")
	t.Setenv("DOC_COMPANY_CODE", "   ")
	_, err = LoadConfig()
	require.Error(t, err)
}

func TestLoggerHonoursFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&Config{AppEnv: "development", LogFormat: "json"}, &buf).Info("hello")
	require.Contains(t, buf.String(), `"msg":"hello"`)
	require.Contains(t, buf.String(), `"env":"development"`)

	buf.Reset()
	newLogger(&Config{AppEnv: "production"}, &buf).Debug("hidden")
	require.Empty(t, buf.String())
}
