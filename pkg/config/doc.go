// Package config loads typed configuration from the environment.
//
// Each package owns a Config struct tagged for github.com/caarlos0/env/v11;
// Load fills it after reading optional .env files with
// github.com/joho/godotenv. Files never override variables that are already
// set, so the process environment wins over .env.
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Results are cached per type and prefix for the life of the process.
// WithEnvironment parses a fixed map instead, bypasses the cache, and is
// what tests use.
package config
