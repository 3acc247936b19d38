// Package config provides application configuration management.
//
// The config package handles loading and validation of the application's
// configuration from YAML files. It supports configuration for server
// settings, execution limits (timeout, maximum snippet size), the safety
// rule table, capability markers, and logging.
//
// Usage:
//
//	cfg, err := config.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Execution timeout: %s\n", cfg.Timeout())
package config
