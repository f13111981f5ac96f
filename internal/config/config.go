package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	DBDSN    string `mapstructure:"DB_DSN"`
	LogFile  string `mapstructure:"LOG_FILE"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Storefront
	ShopName         string `mapstructure:"SHOP_NAME"`
	CatalogName      string `mapstructure:"CATALOG_NAME"`
	DefaultCurrency  string `mapstructure:"DEFAULT_CURRENCY"`
	DefaultPriceBook string `mapstructure:"DEFAULT_PRICE_BOOK"`

	// Pricing
	PriceCacheEnabled    bool          `mapstructure:"PRICE_CACHE_ENABLED"`
	PriceCacheName       string        `mapstructure:"PRICE_CACHE_NAME"`
	PriceCacheTTL        time.Duration `mapstructure:"PRICE_CACHE_TTL"`
	PriceRequireApproval bool          `mapstructure:"PRICE_REQUIRE_APPROVAL"`
	PriceBookBlocks      []string      `mapstructure:"PRICEBOOK_BLOCKS"`

	// Sellable items summary transport: "local" runs in-process, "http" posts to SummaryURL.
	SummaryMode    string        `mapstructure:"SUMMARY_MODE"`
	SummaryURL     string        `mapstructure:"SUMMARY_URL"`
	SummaryTimeout time.Duration `mapstructure:"SUMMARY_TIMEOUT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8081")
	v.SetDefault("DB_DSN", "pricebook.db") // sqlite file in project root
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("SHOP_NAME", "Storefront")
	v.SetDefault("CATALOG_NAME", "Retro_Catalog")
	v.SetDefault("DEFAULT_CURRENCY", "USD")
	v.SetDefault("DEFAULT_PRICE_BOOK", "Storefront_PriceBook")

	v.SetDefault("PRICE_CACHE_ENABLED", true)
	v.SetDefault("PRICE_CACHE_NAME", "Pricing")
	v.SetDefault("PRICE_CACHE_TTL", 5*time.Minute)
	v.SetDefault("PRICE_REQUIRE_APPROVAL", true)
	v.SetDefault("PRICEBOOK_BLOCKS", "explicit,customer-group,catalog-default")

	v.SetDefault("SUMMARY_MODE", "local")
	v.SetDefault("SUMMARY_URL", "http://localhost:8081/api/v1/sellable-items/summary")
	v.SetDefault("SUMMARY_TIMEOUT", 5*time.Second)
}

// Load reads app.env from path (if present) and the environment, env winning.
func Load() Config {
	return LoadFrom(".")
}

func LoadFrom(path string) Config {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err == nil {
		log.Printf("[config] using %s", v.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		log.Printf("[warn] could not read config file: %v", err)
	}

	cfg := Config{
		Port:                 v.GetString("PORT"),
		DBDSN:                v.GetString("DB_DSN"),
		LogFile:              v.GetString("LOG_FILE"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		ShopName:             v.GetString("SHOP_NAME"),
		CatalogName:          v.GetString("CATALOG_NAME"),
		DefaultCurrency:      strings.ToUpper(v.GetString("DEFAULT_CURRENCY")),
		DefaultPriceBook:     v.GetString("DEFAULT_PRICE_BOOK"),
		PriceCacheEnabled:    v.GetBool("PRICE_CACHE_ENABLED"),
		PriceCacheName:       v.GetString("PRICE_CACHE_NAME"),
		PriceCacheTTL:        v.GetDuration("PRICE_CACHE_TTL"),
		PriceRequireApproval: v.GetBool("PRICE_REQUIRE_APPROVAL"),
		PriceBookBlocks:      splitList(v.GetString("PRICEBOOK_BLOCKS")),
		SummaryMode:          strings.ToLower(v.GetString("SUMMARY_MODE")),
		SummaryURL:           v.GetString("SUMMARY_URL"),
		SummaryTimeout:       v.GetDuration("SUMMARY_TIMEOUT"),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s SHOP=%s CATALOG=%s CURRENCY=%s CACHE=%t/%s SUMMARY=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.ShopName, cfg.CatalogName, cfg.DefaultCurrency,
		cfg.PriceCacheEnabled, cfg.PriceCacheTTL, cfg.SummaryMode)
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
