// Package app wires configuration, logging, telemetry and storage into the executables.
//
// Every command starts with Bootstrap, which loads the configuration, resolves the paths,
// initializes the global logger and the OpenTelemetry providers, and returns a Runtime.
// Runtime.Close flushes the providers and, for short-lived commands, writes the metrics
// textfile.
//
// IngestWorkflow is the operator flow around one ingestion: spot check, early exit when the
// day is already recorded, collection or manual entry, confirmation, commit and a report of the
// latest rows. Application is the read-only HTTP server behind cmd/web.
//
// Usage:
//
//	rt, err := app.Bootstrap(app.Options{Component: "ingest", Console: os.Stderr})
//	if err != nil {
//	    fmt.Fprintln(os.Stderr, err)
//	    os.Exit(1)
//	}
//	defer rt.Close(context.Background())
package app
