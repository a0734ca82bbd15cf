// Package config loads typed configuration from environment variables.
//
// It combines github.com/joho/godotenv (optional .env file) with
// github.com/caarlos0/env/v11 (struct tag parsing). Load caches one parsed copy
// per struct type for the lifetime of the process; Parse skips the cache and
// accepts a variable prefix. A failed Load is cached as well, so call Reset in
// tests that change the environment between loads.
package config
