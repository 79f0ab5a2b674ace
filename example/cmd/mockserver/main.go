// Standalone mock server for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/sitecheck serve -c example/config.yaml
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jpalmerr/sitecheck/example/mocksite"
)

func main() {
	fmt.Println("Mock site server starting on :9999")
	fmt.Println("Paths cycle through: 200 → 503 → 404 → 301")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	if err := http.ListenAndServe(":9999", mocksite.Handler()); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
