// Package app wires the careerlens service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML file, CAREERLENS_* environment)
//	2. Initialize the slog logger and OpenTelemetry providers
//	3. Create the websocket hub, analysis and health services
//	4. Build the chi router and middleware chain
//	5. Start the hub and the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Tests build an Application with New, passing a prepared config, logger
// and no-op telemetry providers, and serve Router through httptest.
//
// # Graceful Shutdown
//
// On SIGINT or SIGTERM the server stops accepting connections and drains
// in-flight requests, the hub closes every websocket client, and the
// telemetry providers are flushed.
package app
