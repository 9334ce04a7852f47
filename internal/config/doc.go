// Package config loads thumbq configuration and build information.
//
// Configuration is layered: built-in defaults, then an optional YAML file,
// then environment variables, then command-line flags (applied by the
// caller). [Load] performs the first three steps.
//
// # File
//
// The YAML file is read from THUMBQ_CONFIG when set, otherwise from
// $XDG_CONFIG_HOME/thumbq/config.yaml, falling back to
// $HOME/.config/thumbq/config.yaml. A missing file is not an error.
//
//	flavor: large
//	scheduler: background
//	engine: uring
//	workers: 8
//	metrics_file: /var/lib/node_exporter/thumbq.prom
//	log_level: info
//	timeout: 2s
//
// # Environment
//
//   - THUMBQ_FLAVOR: Thumbnail flavor (default: normal)
//   - THUMBQ_SCHEDULER: Thumbnailer scheduler (default: default)
//   - THUMBQ_ENGINE: I/O engine, uring or blocking (default: uring)
//   - THUMBQ_WORKERS: Classification worker count, 0 for automatic
//   - THUMBQ_METRICS_FILE: Prometheus textfile path (default: disabled)
//   - THUMBQ_RPC_TIMEOUT: Thumbnailer call timeout as Go duration (default: 1s)
//   - XDG_CACHE_HOME / HOME: Locate the thumbnail cache
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
package config
