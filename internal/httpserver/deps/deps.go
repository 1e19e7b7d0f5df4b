package deps

import (
	"time"

	"github.com/MrSnakeDoc/urlpop/internal/index"
	"github.com/MrSnakeDoc/urlpop/internal/logger"
	redisstore "github.com/MrSnakeDoc/urlpop/internal/store/redis"
)

type Deps struct {
	Logger             logger.Logger
	StartTime          time.Time
	Version            string
	Commit             string
	BuildDate          string
	GoVersion          string
	TimeNow            func() time.Time       // for testing, defaults to time.Now
	AllowedHosts       []string               // Host headers allowed to access the server
	AllowedCIDRS       []string               // IPs allowed to access admin endpoints
	TrustProxy         bool                   // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateLimitBurst     int                    // bucket size for mutating suggestion routes
	RateLimitPerMinute int                    // bucket refill per client IP
	Store              *redisstore.Store      // Suggestion persistence (nil when running without redis)
	Index              *index.SuggestionIndex // In-memory suggestions
	SnapshotTTL        time.Duration          // How long the snapshot taken before an import is kept
	ReloadTrigger      chan struct{}          // Channel to trigger a seed reload (nil if no seed file)
	MaxBodyBytes       int64                  // Request body limit for JSON endpoints
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
