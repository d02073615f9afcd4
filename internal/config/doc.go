// Package config loads careerlens configuration.
//
// Values are layered, later layers winning:
//
//	1. Default()
//	2. YAML file (CAREERLENS_CONFIG_FILE, or ./careerlens.yaml when present)
//	3. CAREERLENS_* environment variables
//
// Environment names follow the struct nesting, for example:
//
//	CAREERLENS_SERVER_PORT=9000
//	CAREERLENS_UPLOAD_MAX_BYTES=10485760
//	CAREERLENS_ANALYSIS_WIDTHS=cgpa:0.25,salary:2
//	CAREERLENS_SECURITY_ALLOWED_ORIGINS=http://localhost:3000,http://localhost:8080
//
// A YAML file uses the same sections in snake_case:
//
//	upload:
//	  max_bytes: 10485760
//	  max_concurrent: 2
//	analysis:
//	  default_top_n: 5
package config
