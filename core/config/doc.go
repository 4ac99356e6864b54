// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/eventbus/core/config"
//
//	type FeedConfig struct {
//		MinDelay time.Duration `env:"FEED_MIN_DELAY" envDefault:"500ms"`
//		MaxDelay time.Duration `env:"FEED_MAX_DELAY" envDefault:"2s"`
//		Locale   string        `env:"FEED_LOCALE" envDefault:"en"`
//	}
//
//	func main() {
//		var feed FeedConfig
//
//		// Load with error handling
//		if err := config.Load(&feed); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&feed)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime:
//
//	var cfg1 FeedConfig
//	config.Load(&cfg1) // Loads from environment
//
//	var cfg2 FeedConfig
//	config.Load(&cfg2) // Returns cached value, cfg1 == cfg2
//
// Different types are cached independently. A failed load is not cached.
package config
