package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LLM_PROVIDER", "Model", "ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "DEEPSEEK_API_KEY", "AI_DISABLED",
		"AI_HISTORY_LIMIT", "AI_MAX_RETRIES", "PRODUCT_NAME", "PRODUCT_BASE_PRICE",
		"PRODUCT_FEATURES", "PRODUCT_MIN_DISCOUNT", "PRODUCT_MAX_DISCOUNT", "PRODUCT_MAX_ROUNDS",
		"NEGOTIATION_DELEGATE_TIMEOUT", "NEGOTIATION_HISTORY_LIMIT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "llama3", cfg.AI.Model)
	assert.Equal(t, "http://localhost:11434/v1", cfg.AI.BaseURL)
	assert.True(t, cfg.AI.Enabled())
	assert.Equal(t, 0, cfg.AI.HistoryLimit)
	assert.Equal(t, 1, cfg.AI.MaxRetries)
	assert.Equal(t, "Quantum Leap Laptop X1", cfg.Product.Name)
	assert.Equal(t, "1640.00", cfg.Product.FloorPrice().StringFixed(2))
	assert.Equal(t, 30*time.Second, cfg.Negotiation.DelegateTimeout)
	assert.Equal(t, 10, cfg.Negotiation.HistoryLimit)
}

func TestLoadProductOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRODUCT_NAME", "Desk Lamp")
	t.Setenv("PRODUCT_BASE_PRICE", "120.50")
	t.Setenv("PRODUCT_FEATURES", "LED, dimmable ,,USB-C")
	t.Setenv("PRODUCT_MAX_DISCOUNT", "0.25")
	t.Setenv("PRODUCT_MAX_ROUNDS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Desk Lamp", cfg.Product.Name)
	assert.Equal(t, []string{"LED", "dimmable", "USB-C"}, cfg.Product.Features)
	assert.Equal(t, 3, cfg.Product.MaxRounds)
	assert.Equal(t, "90.38", cfg.Product.FloorPrice().StringFixed(2))
}

func TestLoadRejectsInvalidProduct(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRODUCT_MAX_DISCOUNT", "1.2")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	cases := map[string]string{
		"PRODUCT_BASE_PRICE":           "two thousand",
		"PRODUCT_MAX_ROUNDS":           "eight",
		"NEGOTIATION_DELEGATE_TIMEOUT": "-5s",
		"AI_DISABLED":                  "sometimes",
		"LLM_PROVIDER":                 "carrier-pigeon",
		"PORT":                         "80 80",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestAIConfigEnabled(t *testing.T) {
	assert.False(t, AIConfig{Provider: ProviderArk, Model: "ep-1"}.Enabled())
	assert.True(t, AIConfig{Provider: ProviderArk, Model: "ep-1", APIKey: "k"}.Enabled())
	assert.True(t, AIConfig{Provider: ProviderArk, Model: "ep-1", AccessKey: "a", SecretKey: "s"}.Enabled())
	assert.False(t, AIConfig{Provider: ProviderDeepSeek, Model: "deepseek-chat"}.Enabled())
	assert.False(t, AIConfig{Provider: ProviderOpenAI, Model: "llama3", BaseURL: "http://x", Disabled: true}.Enabled())
}
