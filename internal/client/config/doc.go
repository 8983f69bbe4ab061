// Package config loads runtime configuration for the dashboard CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c/-config or USERDASH_CONFIG.
//  3. USERDASH_* environment variables.
//  4. Command-line flags, which override everything else.
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://localhost:5000/api",
//	  "grpc_addr": "127.0.0.1:50051",
//	  "request_timeout": "10s",
//	  "refresh_timeout": "15s",
//	  "data_dir": "/home/me/.config/userdash",
//	  "encrypt_session": true,
//	  "log_level": "warn",
//	  "log_format": "text",
//	  "page_size": 10
//	}
package config
