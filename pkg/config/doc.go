// Package config loads typed configuration structs from environment
// variables using github.com/caarlos0/env field tags. A local .env file is
// loaded once per process via github.com/joho/godotenv so development
// environments work without exporting variables manually.
//
// # Usage
//
//	type ServerConfig struct {
//	    Addr string `env:"SERVER_ADDR" envDefault:":8080"`
//	}
//
//	cfg, err := config.Load[ServerConfig]()
//	if err != nil {
//	    return err
//	}
//
// Missing required variables produce an error wrapping ErrParsingConfig so
// startup code can fail fast with a single errors.Is check.
package config
