// Package rcindex provides a browsable directory index over one or more rclone
// remotes, aggregated into a single composite namespace.
//
// Storage access is delegated to the rclone binary running as a subprocess.
// The package holds the shared model and the control flow that ties the
// backend pieces together; each piece lives in its own package:
//
//   - provision: fetches and installs the rclone binary on first use
//   - namespace: writes the rclone config and appends the [combine] remote
//   - executor: runs rclone with a hard deadline and captures its output
//   - render: turns a listing into an HTML page
//   - http: router, CORS, basic auth and JSON error responses
//
// # Request Flow
//
// Every listing request goes through IndexService.List:
//
//  1. BinaryProvisioner.Ensure returns the binary handle
//  2. ConfigSynthesizer.Ensure returns the config handle
//  3. CommandRunner.Run executes "rclone lsjson combine:<path>"
//  4. Normalize converts the JSON records into ListingEntry values
//
// # Example Usage
//
//	service := rcindex.NewIndexService(provisioner, synthesizer, runner)
//
//	listing, err := service.List(ctx, rcindex.ListQuery{Path: "docs"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, e := range listing.Entries {
//	    fmt.Println(e.URL)
//	}
package rcindex
