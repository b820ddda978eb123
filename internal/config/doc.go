// Package config handles project configuration loading and merging for dcd-action.
//
// # Configuration Precedence
//
// Configuration values are resolved in the following order (highest to lowest priority):
//
//  1. Action inputs and CLI flags (INPUT_API-URL, --debug, ...)
//  2. Environment variables (DCD_API_URL, DCD_VERSION, DCD_THEME, DCD_DEBUG, NO_COLOR)
//  3. YAML config file (.dcd.yaml in the workspace or one of its parents)
//  4. Hardcoded defaults
//
// Inputs are applied by package inputs on top of the ResolvedConfig returned here.
//
// # File Format
//
//	api_url: https://api.devicecloud.dev
//	dcd_version: 3.4.1
//	theme: orca
//	debug: false
//	max_buffer_size: 10485760
//	status:
//	  interval: 15s
//	  timeout: 45m
package config
