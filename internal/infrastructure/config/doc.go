// Package config handles loading and validating asset-desk configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with ASSETDESK_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Usage:
//
//	cfg, err := config.LoadOrDefault(config.DefaultPath)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Database.Path)
package config
