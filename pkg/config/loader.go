package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is read on first Load when no files are given.
const DefaultEnvFile = ".env"

// Option configures a single Load call.
type Option func(*options)

type options struct {
	files       []string
	prefix      string
	environment map[string]string
}

// WithEnvFiles reads the given files instead of DefaultEnvFile. Missing files
// are an error.
func WithEnvFiles(files ...string) Option {
	return func(o *options) { o.files = append(o.files, files...) }
}

// WithPrefix prepends prefix to every variable name of the struct.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithEnvironment parses env instead of the process environment. No files
// are read and the result is not cached.
func WithEnvironment(environment map[string]string) Option {
	return func(o *options) { o.environment = environment }
}

type cacheKey struct {
	typ    reflect.Type
	prefix string
}

var (
	cacheMu sync.Mutex
	cache   = map[cacheKey]any{}

	defaultEnvOnce sync.Once
	filesMu        sync.Mutex
	filesLoaded    = map[string]bool{}
)

// Load parses the environment into v.
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.environment != nil {
		return parse(v, o)
	}

	if err := loadFiles(o.files); err != nil {
		return err
	}

	key := cacheKey{typ: reflect.TypeFor[T](), prefix: o.prefix}
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		return nil
	}
	if err := parse(v, o); err != nil {
		return err
	}
	cache[key] = *v
	return nil
}

// MustLoad is Load that panics on failure. Intended for main.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// Reset drops cached values so the next Load parses again.
func Reset() {
	cacheMu.Lock()
	clear(cache)
	cacheMu.Unlock()
}

func parse[T any](v *T, o options) error {
	err := env.ParseWithOptions(v, env.Options{
		Prefix:      o.prefix,
		Environment: o.environment,
	})
	if err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

func loadFiles(files []string) error {
	if len(files) == 0 {
		defaultEnvOnce.Do(func() {
			if _, err := os.Stat(DefaultEnvFile); err == nil {
				_ = godotenv.Load(DefaultEnvFile)
			}
		})
		return nil
	}

	filesMu.Lock()
	defer filesMu.Unlock()
	for _, f := range files {
		if filesLoaded[f] {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Join(ErrEnvFile, fmt.Errorf("%s: %w", f, err))
		}
		filesLoaded[f] = true
	}
	return nil
}
