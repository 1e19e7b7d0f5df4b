package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/urlpop/internal/httpserver/deps"
)

type componentStatus struct {
	OK            bool   `json:"ok"`
	DomainsLoaded *int   `json:"domains_loaded,omitempty"`
	Dirty         *bool  `json:"dirty,omitempty"`
	LastLoad      string `json:"last_load,omitempty"`
	LastFlush     string `json:"last_flush,omitempty"`
	LastReload    string `json:"last_reload,omitempty"`
	Mode          string `json:"mode,omitempty"`
	Impact        string `json:"impact,omitempty"`
	Error         string `json:"error,omitempty"`
}

type infraResponse struct {
	PersistenceMode string                     `json:"persistence_mode"`
	Components      map[string]componentStatus `json:"components"`
}

// Infra reports the state of the index, the seed source and redis.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domains := d.Index.Count()
		dirty := d.Index.Dirty()

		components := map[string]componentStatus{
			"suggestions": {
				OK:            true,
				DomainsLoaded: &domains,
				Dirty:         &dirty,
				LastLoad:      formatTime(d.Index.GetLastLoad()),
				LastFlush:     formatTime(d.Index.GetLastFlush()),
			},
			"seed":  seedStatus(d),
			"redis": checkRedis(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			PersistenceMode: determinePersistenceMode(components),
			Components:      components,
		})
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("2006-01-02 15:04:05")
}

func seedStatus(d deps.Deps) componentStatus {
	if d.ReloadTrigger == nil {
		return componentStatus{OK: true, Mode: "disabled"}
	}
	return componentStatus{
		OK:         !d.Index.GetLastReload().IsZero(),
		Mode:       "file",
		LastReload: formatTime(d.Index.GetLastReload()),
	}
}

func determinePersistenceMode(components map[string]componentStatus) string {
	// Redis down = suggestions live in memory only until it comes back
	if redis, exists := components["redis"]; exists && !redis.OK {
		return "memory-only"
	}
	return "persistent"
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "suggestions-not-persisted",
			Error:  "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "suggestions-not-persisted",
			Error:  "timeout",
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "optimal",
		Impact: "suggestions-persisted",
	}
}
