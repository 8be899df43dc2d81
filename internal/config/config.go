package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zhouzirui/haggle/backend/internal/model/product"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server      ServerConfig
	AI          AIConfig
	Product     product.Product
	Negotiation NegotiationConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	item, err := loadProduct()
	if err != nil {
		return nil, err
	}

	negotiation, err := loadNegotiationConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Product: item, Negotiation: negotiation}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// NegotiationConfig 控制单个议价会话的运行参数。
type NegotiationConfig struct {
	DelegateTimeout time.Duration
	HistoryLimit    int
}

func loadNegotiationConfig() (NegotiationConfig, error) {
	timeout, err := parseDurationEnv("NEGOTIATION_DELEGATE_TIMEOUT", 30*time.Second)
	if err != nil {
		return NegotiationConfig{}, err
	}

	historyLimit := 10
	if override, err := parseOptionalIntEnv("NEGOTIATION_HISTORY_LIMIT"); err != nil {
		return NegotiationConfig{}, err
	} else if override != nil {
		historyLimit = *override
		if historyLimit < 0 {
			historyLimit = 0
		}
	}

	return NegotiationConfig{DelegateTimeout: timeout, HistoryLimit: historyLimit}, nil
}

// loadProduct 以默认商品为基础，允许通过环境变量覆盖各项条款。
func loadProduct() (product.Product, error) {
	item := product.Default()

	if name := strings.TrimSpace(os.Getenv("PRODUCT_NAME")); name != "" {
		item.Name = name
	}

	if features := strings.TrimSpace(os.Getenv("PRODUCT_FEATURES")); features != "" {
		item.Features = splitList(features)
	}

	var err error
	if item.BasePrice, err = parseDecimalEnv("PRODUCT_BASE_PRICE", item.BasePrice); err != nil {
		return product.Product{}, err
	}
	if item.MinDiscount, err = parseDecimalEnv("PRODUCT_MIN_DISCOUNT", item.MinDiscount); err != nil {
		return product.Product{}, err
	}
	if item.MaxDiscount, err = parseDecimalEnv("PRODUCT_MAX_DISCOUNT", item.MaxDiscount); err != nil {
		return product.Product{}, err
	}

	rounds, err := parseOptionalIntEnv("PRODUCT_MAX_ROUNDS")
	if err != nil {
		return product.Product{}, err
	}
	if rounds != nil {
		item.MaxRounds = *rounds
	}

	if err := item.Validate(); err != nil {
		return product.Product{}, fmt.Errorf("invalid product configuration: %w", err)
	}
	return item, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseDecimalEnv(key string, defaultValue decimal.Decimal) (decimal.Decimal, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
