// Package mocksite serves pages whose HTTP status changes over time, for
// trying sitecheck locally without depending on public sites.
package mocksite

import (
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// statuses is the cycle each path steps through.
var statuses = []int{
	http.StatusOK,
	http.StatusServiceUnavailable,
	http.StatusNotFound,
	http.StatusMovedPermanently,
}

// pageState tracks status and next change time for a single path.
type pageState struct {
	statusIdx    int
	nextChangeAt time.Time
}

// Handler returns a handler that answers every path with a status code that
// changes every 20-60 seconds. /404 always answers 404.
func Handler() http.Handler {
	var (
		states = make(map[string]*pageState)
		mu     sync.Mutex
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/404" {
			http.NotFound(w, r)
			return
		}

		// simulate small latency variance
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		mu.Lock()
		state, exists := states[r.URL.Path]
		if !exists {
			state = &pageState{nextChangeAt: nextChange()}
			states[r.URL.Path] = state
		}

		// change status when scheduled time is reached
		if time.Now().After(state.nextChangeAt) {
			from := statuses[state.statusIdx]
			state.statusIdx = (state.statusIdx + 1) % len(statuses)
			state.nextChangeAt = nextChange()
			slog.Info("status change", "path", r.URL.Path, "from", from, "to", statuses[state.statusIdx])
		}
		status := statuses[state.statusIdx]
		mu.Unlock()

		if status == http.StatusMovedPermanently {
			// checks follow this to / and report its status
			w.Header().Set("Location", "/")
		}
		w.WriteHeader(status)
	})
}

func nextChange() time.Time {
	return time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second)
}
