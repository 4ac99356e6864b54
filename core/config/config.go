package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNilConfig is returned when Load receives a nil pointer.
var ErrNilConfig = errors.New("config: destination must be a non-nil pointer")

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> *entry
)

type entry struct {
	once  sync.Once
	value any
	err   error
}

// Load populates cfg from the environment. The first call for a given type parses the
// environment; later calls copy the cached value into cfg.
// A .env file in the working directory is loaded once per process when present.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}

	dotenvOnce.Do(func() {
		// A missing .env file is fine, real environment variables take over.
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()
	v, _ := cache.LoadOrStore(key, &entry{})
	e := v.(*entry)

	e.once.Do(func() {
		var parsed T
		if err := env.Parse(&parsed); err != nil {
			e.err = fmt.Errorf("config: parse %s: %w", key, err)
			return
		}
		e.value = parsed
	})

	if e.err != nil {
		// Drop the failed entry so a corrected environment can be retried.
		cache.CompareAndDelete(key, e)
		return e.err
	}

	*cfg = e.value.(T)
	return nil
}

// MustLoad is like Load but panics on failure. Intended for application startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
