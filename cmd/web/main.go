// Command web serves the stored series over a read-only JSON API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"oddscli/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	series := flag.String("series", "", "default series name (defaults to paths.series_name)")
	port := flag.Int("port", 0, "listen port (defaults to server.port)")
	flag.Parse()

	rt, err := app.Bootstrap(app.Options{Component: "web", SeriesName: *series})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer rt.Close(context.Background())

	if *port > 0 {
		rt.Config.Server.Port = *port
	}

	if err := app.NewApplication(rt).Run(context.Background()); err != nil {
		rt.Logger.Error("Server stopped with error", "error", err.Error())
		return 1
	}
	return 0
}
