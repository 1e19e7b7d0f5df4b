package urlmodel

import (
	"strconv"
	"strings"
)

// parse splits raw into components: scheme ':' ['//' authority] path ['?' query] ['#' fragment].
// ok is false when raw has no usable scheme or a malformed authority.
func parse(raw string) (Model, bool) {
	var m Model
	if raw == "" {
		return m, false
	}

	rest := raw
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest, m.hash = rest[:i], rest[i:]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest, m.search = rest[:i], rest[i:]
	}

	colon := strings.IndexByte(rest, ':')
	if colon <= 0 || !schemePattern.MatchString(rest[:colon]) {
		return Model{}, false
	}
	m.protocol = strings.ToLower(rest[:colon]) + ":"
	rest = rest[colon+1:]

	special := specialSchemes[m.protocol]
	switch {
	case strings.HasPrefix(rest, "//"):
		rest = rest[2:]
	case special:
		// "http:example.com" and "http:/example.com" are read as "http://example.com".
		rest = strings.TrimLeft(rest, "/")
	default:
		m.opaque = true
		m.pathname = rest
		return m, true
	}

	authority := rest
	path := ""
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		authority, path = rest[:i], rest[i:]
	}

	if at := strings.LastIndexByte(authority, '@'); at >= 0 {
		m.userinfo, authority = authority[:at], authority[at+1:]
	}

	hostname, port, ok := splitHostPort(authority)
	if !ok {
		return Model{}, false
	}
	if hostname == "" && special && m.protocol != "file:" {
		return Model{}, false
	}
	m.hostname = hostname
	m.port = port
	if m.isDefaultPort() {
		m.port = ""
	}

	if path == "" && special {
		path = "/"
	}
	m.pathname = path
	return m, true
}

// splitHostPort separates "host", "host:port" and "[v6]:port".
// The hostname is lowercased; an empty port after ':' counts as no port.
func splitHostPort(hostport string) (hostname, port string, ok bool) {
	if strings.ContainsAny(hostport, " \t\r\n/?#@") {
		return "", "", false
	}

	if strings.HasPrefix(hostport, "[") {
		end := strings.IndexByte(hostport, ']')
		if end < 0 {
			return "", "", false
		}
		hostname = hostport[:end+1]
		rest := hostport[end+1:]
		switch {
		case rest == "":
		case strings.HasPrefix(rest, ":"):
			port = rest[1:]
		default:
			return "", "", false
		}
	} else if i := strings.LastIndexByte(hostport, ':'); i >= 0 {
		hostname, port = hostport[:i], hostport[i+1:]
	} else {
		hostname = hostport
	}

	if port != "" && !validPort(port) {
		return "", "", false
	}
	return strings.ToLower(hostname), port, true
}

func hasPort(host string) bool {
	_, port, ok := splitHostPort(host)
	return ok && port != ""
}

func validPort(port string) bool {
	for _, r := range port {
		if r < '0' || r > '9' {
			return false
		}
	}
	n, err := strconv.Atoi(port)
	return err == nil && n <= 65535
}
