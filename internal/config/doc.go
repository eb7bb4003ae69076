// Package config loads and validates the configuration shared by every command.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority), optionally seeded from a .env file
//  2. A YAML file named by ODDS_CONFIG_FILE, or config.yaml / configs/config.yaml
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// Variables follow the pattern ODDS_<SECTION>_<FIELD>:
//
//	ODDS_LOGGING_LEVEL=debug
//	ODDS_PATHS_DATA_DIR=/srv/odds/data
//	ODDS_INGEST_SUM_TOLERANCE=0.01
//	ODDS_SCHEDULE_CRON="30 21 * * *"
//
// # Paths
//
// ResolvePaths turns the configured directories into absolute paths. Relative
// directories are taken from ODDS_PATHS_BASE_DIR, or the executable directory.
package config
