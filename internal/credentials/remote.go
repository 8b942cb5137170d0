package credentials

import (
	"net/url"
	"strings"
)

// Scheme is the transport family of a remote URL.
type Scheme string

const (
	SchemeSSH     Scheme = "SSH"
	SchemeHTTPS   Scheme = "HTTPS"
	SchemeUnknown Scheme = "Unknown"
)

// Remote is a parsed remote URL.
type Remote struct {
	URL    string
	Scheme Scheme
	// Protocol is the URL scheme, "ssh" for scp-like addresses.
	Protocol string
	User     string
	Host     string
	Path     string
}

// ClassifyScheme reports whether url is an SSH or HTTP(S) remote.
func ClassifyScheme(raw string) Scheme {
	return ParseRemote(raw).Scheme
}

// ParseRemote parses URL and scp-like ("user@host:path") remote addresses.
func ParseRemote(raw string) Remote {
	raw = strings.TrimSpace(raw)
	r := Remote{URL: raw, Scheme: SchemeUnknown}

	if raw == "" {
		return r
	}

	if !strings.Contains(raw, "://") {
		// scp-like syntax: [user@]host:path, but not a Windows drive letter
		at := strings.Index(raw, "@")
		colon := strings.Index(raw, ":")
		if at >= 0 && colon > at {
			r.Scheme = SchemeSSH
			r.Protocol = "ssh"
			r.User = raw[:at]
			r.Host = raw[at+1 : colon]
			r.Path = raw[colon+1:]
		}
		return r
	}

	u, err := url.Parse(raw)
	if err != nil {
		return r
	}

	r.Protocol = u.Scheme
	r.Host = u.Host
	r.Path = strings.TrimPrefix(u.Path, "/")
	if u.User != nil {
		r.User = u.User.Username()
	}

	switch u.Scheme {
	case "ssh", "git+ssh", "ssh+git":
		r.Scheme = SchemeSSH
	case "http", "https":
		r.Scheme = SchemeHTTPS
	}

	return r
}
