// Package config loads typed configuration structs from environment
// variables, with an optional YAML file overlay.
//
// Each configuration type is parsed at most once per process and cached, so
// every component holding a Config struct sees the same validated values.
// Environment parsing is delegated to github.com/caarlos0/env; a `.env` file
// in the working directory is loaded once via github.com/joho/godotenv
// before the first parse.
//
//	type ClientConfig struct {
//	    BaseURL string        `env:"FLOWGRID_API_URL" envDefault:"http://localhost:8000"`
//	    Timeout time.Duration `env:"FLOWGRID_API_TIMEOUT" envDefault:"30s"`
//	}
//
//	var cfg ClientConfig
//	config.MustLoad(&cfg)
//
// YAML overlays let deployments override the endpoint path tables without
// rebuilding:
//
//	if err := config.ApplyFile("flowgrid.yaml", &cfg); err != nil { ... }
package config
