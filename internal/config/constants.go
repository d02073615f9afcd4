package config

// Application constants
const (
	AppName    = "careerlens"
	AppVersion = "1.0.0"

	DefaultConfigFile = "careerlens.yaml"
	DefaultLogFile    = "logs/careerlens.log"

	DefaultMaxUploadBytes       = 20 << 20
	DefaultMaxRows              = 50000
	DefaultMaxConcurrentDecodes = 4

	// WebSocket endpoint
	WebSocketEndpoint = "/ws"
	MetricsEndpoint   = "/metrics"
)
