// Package urlmodel parses URLs into editable components and serializes them back.
//
// Parsing never fails: input that cannot be understood produces an empty Model,
// because callers always have some URL to show. A non-standard scheme prefix such as
// "view-source:" is kept apart from the underlying URL and only restored by URL().
package urlmodel

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// schemePrefixPattern detects "view-source:http..." style wrappers.
	schemePrefixPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+:http`)
	schemePattern       = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*$`)
)

// portSentinel is what the platform reports when no port is set.
const portSentinel = "0"

var defaultPorts = map[string]string{
	"http:":  "80",
	"https:": "443",
	"ws:":    "80",
	"wss:":   "443",
	"ftp:":   "21",
}

// special schemes always carry an authority component.
var specialSchemes = map[string]bool{
	"http:":  true,
	"https:": true,
	"ws:":    true,
	"wss:":   true,
	"ftp:":   true,
	"file:":  true,
}

// Model is a parsed, mutable URL.
type Model struct {
	prefix   string // "view-source:" etc.
	protocol string // lowercase scheme plus ':'
	userinfo string
	hostname string
	port     string // "" when absent
	pathname string
	search   string // raw, with leading '?'
	hash     string // raw, with leading '#'
	opaque   bool   // no "//" authority, e.g. mailto:, about:
}

// Components is a read-only snapshot of a Model.
type Components struct {
	SchemePrefix string `json:"scheme_prefix,omitempty"`
	Protocol     string `json:"protocol"`
	Host         string `json:"host"`
	Hostname     string `json:"hostname"`
	Port         *int   `json:"port,omitempty"`
	Pathname     string `json:"pathname"`
	Search       string `json:"search"`
	Hash         string `json:"hash"`
}

// Parse builds a Model from raw. It never fails.
func Parse(raw string) *Model {
	m := &Model{}
	m.SetURL(raw)
	return m
}

// URL returns the scheme prefix followed by the serialized URL.
func (m *Model) URL() string {
	return m.prefix + m.href()
}

// SetURL reparses the model from scratch.
func (m *Model) SetURL(raw string) {
	*m = Model{}
	raw = strings.TrimSpace(raw)

	var prefix string
	if loc := schemePrefixPattern.FindStringIndex(raw); loc != nil {
		cut := loc[1] - len("http")
		prefix, raw = raw[:cut], raw[cut:]
	}

	parsed, ok := parse(raw)
	if !ok {
		return
	}
	*m = parsed
	m.prefix = prefix
}

// Clone returns an independent copy.
func (m *Model) Clone() *Model {
	c := *m
	return &c
}

// Components returns a snapshot of every component.
func (m *Model) Components() Components {
	c := Components{
		SchemePrefix: m.prefix,
		Protocol:     m.protocol,
		Host:         m.Host(),
		Hostname:     m.hostname,
		Pathname:     m.pathname,
		Search:       m.search,
		Hash:         m.hash,
	}
	if p, ok := m.Port(); ok {
		c.Port = &p
	}
	return c
}

func (m *Model) SchemePrefix() string { return m.prefix }

func (m *Model) SetSchemePrefix(prefix string) { m.prefix = prefix }

// Protocol returns the scheme with its trailing colon, e.g. "https:".
func (m *Model) Protocol() string { return m.protocol }

// SetProtocol accepts "https" or "https:". Invalid schemes are ignored.
func (m *Model) SetProtocol(protocol string) {
	scheme := strings.TrimSuffix(protocol, ":")
	if !schemePattern.MatchString(scheme) {
		return
	}
	m.protocol = strings.ToLower(scheme) + ":"
}

// Host returns hostname plus ":port" when a non-default port is set.
// The sentinel "0" is not a port and is never shown.
func (m *Model) Host() string {
	if m.port == "" || m.port == portSentinel || m.isDefaultPort() {
		return m.hostname
	}
	return m.hostname + ":" + m.port
}

// SetHost sets hostname and, when host carries one, the port.
// Without a port the current port is kept, except for the platform sentinel "0":
// then ":80" is appended so that serialization can strip it as a default port.
func (m *Model) SetHost(host string) {
	if m.port == portSentinel && !hasPort(host) {
		host += ":80"
	}
	hostname, port, ok := splitHostPort(host)
	if !ok {
		return
	}
	m.hostname = hostname
	if port != "" {
		m.port = port
	}
}

func (m *Model) Hostname() string { return m.hostname }

// SetHostname replaces the hostname only. Values containing a port are ignored.
func (m *Model) SetHostname(hostname string) {
	h, port, ok := splitHostPort(hostname)
	if !ok || port != "" {
		return
	}
	m.hostname = h
}

// Port reports the explicit port. The sentinel "0" counts as no port.
func (m *Model) Port() (int, bool) {
	if m.port == "" || m.port == portSentinel {
		return 0, false
	}
	p, err := strconv.Atoi(m.port)
	if err != nil {
		return 0, false
	}
	return p, true
}

// SetPort records port as given; a default port is still dropped on serialization.
func (m *Model) SetPort(port int) {
	if port < 0 || port > 65535 {
		return
	}
	m.port = strconv.Itoa(port)
}

func (m *Model) ClearPort() { m.port = "" }

func (m *Model) Pathname() string { return m.pathname }

func (m *Model) SetPathname(pathname string) {
	if !m.opaque && !strings.HasPrefix(pathname, "/") {
		pathname = "/" + pathname
	}
	m.pathname = pathname
}

// Search returns the raw query component including '?'.
func (m *Model) Search() string { return m.search }

func (m *Model) SetSearch(search string) {
	if search != "" && !strings.HasPrefix(search, "?") {
		search = "?" + search
	}
	m.search = search
}

// Hash returns the raw fragment including '#'.
func (m *Model) Hash() string { return m.hash }

func (m *Model) SetHash(hash string) {
	if hash != "" && !strings.HasPrefix(hash, "#") {
		hash = "#" + hash
	}
	m.hash = hash
}

// Params parses the query component. The fragment is never consulted.
func (m *Model) Params() *Params {
	return ParseQuery(m.search)
}

// SetParams rewrites the query component from p. No percent-encoding is applied.
func (m *Model) SetParams(p *Params) {
	m.SetSearch(p.Encode())
}

func (m *Model) isDefaultPort() bool {
	def, ok := defaultPorts[m.protocol]
	return ok && def == m.port
}

func (m *Model) href() string {
	if m.protocol == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.protocol)
	if !m.opaque {
		b.WriteString("//")
		if m.userinfo != "" {
			b.WriteString(m.userinfo)
			b.WriteByte('@')
		}
		b.WriteString(m.Host())
	}
	b.WriteString(m.pathname)
	b.WriteString(m.search)
	b.WriteString(m.hash)
	return b.String()
}
