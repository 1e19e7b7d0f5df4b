package utils

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// proxyHeaders are consulted in order when the request came through a trusted proxy.
// X-Forwarded-For may hold a chain; its left-most entry is the original client.
var proxyHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// StripPort returns the host part of "host:port", "[v6]:port" or a bare host.
func StripPort(hostport string) string {
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	return hostport
}

// ClientIP resolves the address a request is attributed to for rate limits, allow-lists and logs.
// With trustProxy, the first proxy header holding a parseable address wins; malformed
// header values are skipped rather than trusted. Otherwise only RemoteAddr counts.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, name := range proxyHeaders {
			v, _, _ := strings.Cut(r.Header.Get(name), ",")
			if addr, ok := parseAddr(v); ok {
				return addr.String()
			}
		}
	}
	if addr, ok := parseAddr(r.RemoteAddr); ok {
		return addr.String()
	}
	return StripPort(r.RemoteAddr)
}

func parseAddr(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, false
	}
	addr, err := netip.ParseAddr(strings.Trim(StripPort(s), "[]"))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// AddrSet is an allow-list of prefixes. Single addresses are stored as full-length prefixes.
type AddrSet struct {
	prefixes []netip.Prefix
}

// NewAddrSet parses entries such as "10.0.0.0/8" or "192.168.1.10".
// Entries that are neither a CIDR nor an address are returned as invalid.
func NewAddrSet(entries []string) (*AddrSet, []string) {
	set := &AddrSet{}
	var invalid []string
	for _, raw := range entries {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if p, err := netip.ParsePrefix(s); err == nil {
			set.prefixes = append(set.prefixes, p.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(s); err == nil {
			addr = addr.Unmap()
			set.prefixes = append(set.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		invalid = append(invalid, s)
	}
	return set, invalid
}

// Len returns the number of usable entries.
func (s *AddrSet) Len() int {
	return len(s.prefixes)
}

// Contains reports whether ip falls in one of the prefixes. Unparseable input never matches.
func (s *AddrSet) Contains(ip string) bool {
	addr, ok := parseAddr(ip)
	if !ok {
		return false
	}
	for _, p := range s.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
