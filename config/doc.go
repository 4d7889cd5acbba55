// Package config holds the client configuration and loads it from the
// environment.
//
// A Config is a value built with New and refined with chained With*
// setters; it is validated once when a client is constructed.
//
// # Usage
//
//	cfg := config.New(apiKey).WithTimeout(10 * time.Second)
//
// FromEnvironment reads DEEPSEEK_* variables from the process environment,
// an optional .env file and an optional YAML file, using Viper:
//
//	cfg, err := config.FromEnvironment(config.WithEnvFile(".env.local"))
package config
