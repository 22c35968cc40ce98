// Package config provides configuration management for the inspection system.
//
// Configuration is loaded from environment variables using the env package.
// All configuration values have sensible defaults for development use.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("driver will run %d cycles\n", cfg.Driver.Cycles)
package config
