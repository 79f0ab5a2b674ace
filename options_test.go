package sitecheck

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/sitecheck/registry"
)

func bbcGroup() registry.Group {
	return registry.Group{Name: "BBC", URLs: []string{"https://www.bbc.co.uk", "https://www.bbc.co.uk/404"}}
}

func TestNew_Valid(t *testing.T) {
	sc, err := New(WithGroups(bbcGroup()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if sc.Registry().Len() != 2 {
		t.Errorf("Registry().Len() = %v, want %v", sc.Registry().Len(), 2)
	}
}

func TestNew_NoGroups(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Error("New() expected error for no groups, got nil")
	}
}

func TestNew_InvalidGroups(t *testing.T) {
	_, err := New(WithGroups(
		registry.Group{Name: "BBC", URLs: []string{"https://www.bbc.co.uk"}},
		registry.Group{Name: "BBC", URLs: []string{"https://www.bbc.com"}},
	))
	if err == nil {
		t.Fatal("New() expected error for duplicate group names, got nil")
	}
	if !strings.Contains(err.Error(), "duplicate group name") {
		t.Errorf("New() error = %v, want error containing 'duplicate group name'", err)
	}
}

func TestNew_RegistryAndGroups(t *testing.T) {
	reg, err := registry.New([]registry.Group{bbcGroup()})
	if err != nil {
		t.Fatal(err)
	}

	_, err = New(WithRegistry(reg), WithGroups(bbcGroup()))
	if err == nil {
		t.Error("New() expected error for WithRegistry combined with WithGroups, got nil")
	}
}

func TestNew_Defaults(t *testing.T) {
	sc, err := New(WithGroups(bbcGroup()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if sc.Port() != 8080 {
		t.Errorf("Port() = %v, want %v", sc.Port(), 8080)
	}
	if sc.RefreshInterval() != 60*time.Second {
		t.Errorf("RefreshInterval() = %v, want %v", sc.RefreshInterval(), 60*time.Second)
	}
	if sc.CheckTimeout() != 10*time.Second {
		t.Errorf("CheckTimeout() = %v, want %v", sc.CheckTimeout(), 10*time.Second)
	}
	if sc.MaxConcurrency() != 10 {
		t.Errorf("MaxConcurrency() = %v, want %v", sc.MaxConcurrency(), 10)
	}
	if sc.Title() != "Site Status" {
		t.Errorf("Title() = %q, want %q", sc.Title(), "Site Status")
	}
}

func TestWithRegistry(t *testing.T) {
	reg, err := registry.New([]registry.Group{bbcGroup()})
	if err != nil {
		t.Fatal(err)
	}

	sc, err := New(WithRegistry(reg))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sc.Registry() != reg {
		t.Error("Registry() did not return the registry passed to WithRegistry")
	}
}

func TestWithRegistry_Nil(t *testing.T) {
	_, err := New(WithRegistry(nil))
	if err == nil {
		t.Fatal("New() expected error for nil registry, got nil")
	}
	if !strings.Contains(err.Error(), "registry cannot be nil") {
		t.Errorf("New() error = %v, want error containing 'registry cannot be nil'", err)
	}
}

func TestWithGroups_KeepsOrderAcrossCalls(t *testing.T) {
	sc, err := New(
		WithGroups(registry.Group{Name: "Zeta", URLs: []string{"https://z.example"}}),
		WithGroups(registry.Group{Name: "Alpha", URLs: []string{"https://a.example"}}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	groups := sc.Registry().Groups()
	if len(groups) != 2 || groups[0].Name != "Zeta" || groups[1].Name != "Alpha" {
		t.Errorf("Groups() = %v, want [Zeta Alpha]", groups)
	}
}

func TestWithRefreshInterval(t *testing.T) {
	sc, err := New(WithGroups(bbcGroup()), WithRefreshInterval(30*time.Second))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if sc.RefreshInterval() != 30*time.Second {
		t.Errorf("RefreshInterval() = %v, want %v", sc.RefreshInterval(), 30*time.Second)
	}
}

func TestWithRefreshInterval_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
	}{
		{"zero", 0},
		{"negative", -time.Second},
		{"below minimum", 999 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithGroups(bbcGroup()), WithRefreshInterval(tt.interval))
			if err == nil {
				t.Errorf("New() expected error for interval %v, got nil", tt.interval)
			}
		})
	}
}

func TestWithCheckTimeout(t *testing.T) {
	sc, err := New(WithGroups(bbcGroup()), WithCheckTimeout(100*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if sc.CheckTimeout() != 100*time.Millisecond {
		t.Errorf("CheckTimeout() = %v, want %v", sc.CheckTimeout(), 100*time.Millisecond)
	}
}

func TestWithCheckTimeout_Invalid(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second, 99 * time.Millisecond} {
		if _, err := New(WithGroups(bbcGroup()), WithCheckTimeout(d)); err == nil {
			t.Errorf("New() expected error for check timeout %v, got nil", d)
		}
	}
}

func TestWithPort(t *testing.T) {
	sc, err := New(WithGroups(bbcGroup()), WithPort(9090))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if sc.Port() != 9090 {
		t.Errorf("Port() = %v, want %v", sc.Port(), 9090)
	}
}

func TestWithPort_Invalid(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"zero", 0},
		{"negative", -1},
		{"too high", 65536},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithGroups(bbcGroup()), WithPort(tt.port))
			if err == nil {
				t.Errorf("New() expected error for port %d, got nil", tt.port)
			}
		})
	}
}

func TestWithPort_ValidEdgeCases(t *testing.T) {
	for _, port := range []int{1, 65535} {
		sc, err := New(WithGroups(bbcGroup()), WithPort(port))
		if err != nil {
			t.Errorf("New() with port %d error = %v", port, err)
			continue
		}
		if sc.Port() != port {
			t.Errorf("Port() = %v, want %v", sc.Port(), port)
		}
	}
}

func TestWithMaxConcurrency(t *testing.T) {
	sc, err := New(WithGroups(bbcGroup()), WithMaxConcurrency(5))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if sc.MaxConcurrency() != 5 {
		t.Errorf("MaxConcurrency() = %v, want %v", sc.MaxConcurrency(), 5)
	}
}

func TestWithMaxConcurrency_Invalid(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := New(WithGroups(bbcGroup()), WithMaxConcurrency(n)); err == nil {
			t.Errorf("New() expected error for max concurrency %d, got nil", n)
		}
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	sc, err := New(WithGroups(bbcGroup()), WithLogger(logger))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sc.logger != logger {
		t.Error("logger was not applied")
	}
}

func TestWithLogger_Nil(t *testing.T) {
	_, err := New(WithGroups(bbcGroup()), WithLogger(nil))
	if err == nil {
		t.Fatal("New() expected error for nil logger, got nil")
	}
	if !strings.Contains(err.Error(), "logger cannot be nil") {
		t.Errorf("New() error = %v, want error containing 'logger cannot be nil'", err)
	}
}

func TestWithLogger_DefaultsToSlogDefault(t *testing.T) {
	sc, err := New(WithGroups(bbcGroup()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sc.logger != slog.Default() {
		t.Error("logger should default to slog.Default()")
	}
}

func TestWithTitle(t *testing.T) {
	sc, err := New(WithGroups(bbcGroup()), WithTitle("Video Channel Healthchecks"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if sc.Title() != "Video Channel Healthchecks" {
		t.Errorf("Title() = %q, want %q", sc.Title(), "Video Channel Healthchecks")
	}
}

func TestWithTitle_Empty(t *testing.T) {
	sc, err := New(WithGroups(bbcGroup()), WithTitle(""))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if sc.Title() != "Site Status" {
		t.Errorf("Title() = %q, want default", sc.Title())
	}
}

func TestWithSweepCallback_Nil(t *testing.T) {
	sc, err := New(WithGroups(bbcGroup()), WithSweepCallback(nil))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(sc.sweepCallbacks) != 0 {
		t.Errorf("len(sweepCallbacks) = %d, want 0", len(sc.sweepCallbacks))
	}
}
