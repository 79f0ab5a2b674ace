package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/sitecheck"
	"github.com/jpalmerr/sitecheck/example/mocksite"
	"github.com/jpalmerr/sitecheck/registry"
)

func main() {
	// start mock sites (see mocksite)
	go func() {
		if err := http.ListenAndServe("127.0.0.1:9999", mocksite.Handler()); err != nil {
			slog.Error("mock server error", "error", err)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	sc, err := sitecheck.New(
		sitecheck.WithTitle("Site Status Demo"),
		sitecheck.WithGroups(
			registry.Group{Name: "Mock", URLs: []string{
				"http://127.0.0.1:9999/users",
				"http://127.0.0.1:9999/orders",
				"http://127.0.0.1:9999/404",
			}},
			registry.Group{Name: "Broken", URLs: []string{
				"http://doesnotexist.example.invalid",
				"http://127.0.0.1:9",
			}},
		),
		sitecheck.WithRefreshInterval(5*time.Second),
		sitecheck.WithCheckTimeout(2*time.Second),
		sitecheck.WithPort(8080),
		sitecheck.WithSweepCallback(func(r sitecheck.SweepResult) {
			up := 0
			for _, label := range r.Results {
				if sitecheck.IsUp(label) {
					up++
				}
			}
			slog.Info("sweep", "seq", r.Seq, "responding", up, "total", len(r.Results), "took", r.Duration())
		}),
	)
	if err != nil {
		slog.Error("failed to create sitecheck", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  sitecheck demo")
	fmt.Println()
	fmt.Println("  Status page: http://localhost:8080")
	fmt.Println("  JSON API:    http://localhost:8080/api")
	fmt.Println()
	fmt.Println("  Mock pages change status every 20-60s.")
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sc.Start(ctx); err != nil {
		slog.Error("sitecheck error", "error", err)
		os.Exit(1)
	}
}
