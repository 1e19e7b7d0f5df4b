package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/urlpop/internal/logger"
	"github.com/MrSnakeDoc/urlpop/internal/utils"
)

// AllowOnlyCIDRS allows only specific IPs/CIDRs. If the list is empty, it does NOT filter (passthrough).
// A list made only of invalid entries rejects everyone.
// trustProxy should be true when running behind a trusted reverse proxy/tunnel (e.g., cloudflared).
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	set, invalid := utils.NewAddrSet(allowed)
	if len(invalid) > 0 {
		log.Warn("ignoring invalid allow-list entries", logger.Strings("entries", invalid))
	}
	if set.Len() == 0 && len(invalid) == 0 {
		log.Debug("AllowOnlyCIDRS: empty allow-list, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debugf("AllowOnlyCIDRS: initialized with %d rules, trustProxy=%v", set.Len(), trustProxy)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !set.Contains(ip) {
				log.Warn("rejected request from disallowed address",
					logger.String("ip", ip),
					logger.String("path", r.URL.Path))
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
