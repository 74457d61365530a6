// Package http serves the rclone directory index over HTTP.
//
// Every GET request lists one directory of the composite namespace and
// renders it as an HTML page. Failures are reported as JSON.
//
// # Features
//
//   - HTML listing for any path under the composite remote
//   - Optional HTTP basic auth, enabled when USERNAME and PASSWORD are set
//   - Per-request settings read from a SettingsSource
//   - JSON error responses of the form {"error": code, "details": message}
//   - Configurable CORS support
//   - Optional token bucket rate limit on listings (RateLimitConfig)
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    CORS:     http.DefaultCORSConfig(),
//	    Settings: config.NewEnvSource(),
//	}
//	handler := http.NewHandler(&handlerCfg, service)
//	http.ListenAndServe(":8080", handler.Router())
//
// The service parameter must implement the Service interface, which
// *rcindex.IndexService does.
//
// # Routes
//
//	GET     /healthz  liveness probe, no auth
//	GET     /*        listing page
//	OPTIONS /*        200 with an empty body
//
// Other methods get 405 with a JSON body.
//
// # Error Codes
//
//	invalid_path      400  path rejected
//	unauthorized      401  missing or wrong credentials
//	rate_limited      429  no rate limit token within the wait window
//	timeout           500  rclone exceeded its deadline
//	fetch_failed      500  rclone download failed
//	binary_not_found  500  archive did not contain the binary
//	execution_failed  500  rclone could not start or exited non-zero
//	parse_failed      500  rclone output was malformed
//	config_failed     500  rclone config could not be prepared
//	internal_error    500  anything else
package http
