// Package config handles loading and validating Hearth configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (HEARTH_*)
//   - Validation of required fields, reporting every problem at once
//   - Default value handling
//
// Hardware outputs default to the fake driver so a fresh install runs
// without GPIO access. Set hardware.<output>.driver to gpio, pwm or servo
// on the target board.
//
// Security Considerations:
//   - Sensitive values (MQTT password, API token, InfluxDB token) should be
//     set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/hearth.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Site.Name)
package config
