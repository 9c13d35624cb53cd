package api

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultOrigin is where the dashboard itself is served from.
	DefaultOrigin = "http://localhost:3000"
	// DefaultAPIBase is used when no API base is configured. Relative values
	// resolve against the origin.
	DefaultAPIBase = "/api"
)

// Hosts holds the two base addresses a Client may talk to. Both are fixed for
// the lifetime of the Client.
type Hosts struct {
	Primary  *url.URL
	Fallback *url.URL
}

// target selects one of the two hosts for an attempt.
type target int

const (
	targetPrimary target = iota
	targetFallback
)

func (t target) String() string {
	switch t {
	case targetPrimary:
		return "primary"
	case targetFallback:
		return "fallback"
	default:
		return fmt.Sprintf("target(%d)", int(t))
	}
}

// ParseHosts derives the primary and fallback hosts. origin is the application's
// own root (the fallback host). apiBase may be absolute or a path relative to
// origin; empty values fall back to DefaultOrigin and DefaultAPIBase.
func ParseHosts(origin, apiBase string) (Hosts, error) {
	o := strings.TrimSpace(origin)
	if o == "" {
		o = DefaultOrigin
	}
	if !strings.Contains(o, "://") {
		o = "http://" + o
	}
	ou, err := url.Parse(o)
	if err != nil {
		return Hosts{}, fmt.Errorf("parse origin %q: %w", origin, err)
	}
	if ou.Host == "" {
		return Hosts{}, fmt.Errorf("origin %q has no host", origin)
	}
	fallback := &url.URL{Scheme: ou.Scheme, User: ou.User, Host: ou.Host, Path: "/"}

	b := strings.TrimSpace(apiBase)
	if b == "" {
		b = DefaultAPIBase
	}
	bu, err := url.Parse(b)
	if err != nil {
		return Hosts{}, fmt.Errorf("parse api base %q: %w", apiBase, err)
	}
	var primary *url.URL
	if bu.IsAbs() {
		if bu.Host == "" {
			return Hosts{}, fmt.Errorf("api base %q has no host", apiBase)
		}
		primary = &url.URL{Scheme: bu.Scheme, User: bu.User, Host: bu.Host, Path: bu.Path}
	} else {
		primary = fallback.ResolveReference(&url.URL{Path: bu.Path})
	}
	if !strings.HasSuffix(primary.Path, "/") {
		primary.Path += "/"
	}
	return Hosts{Primary: primary, Fallback: fallback}, nil
}

func (h Hosts) base(t target) *url.URL {
	if t == targetFallback {
		return h.Fallback
	}
	return h.Primary
}

// resolve joins a server-relative route onto the selected host. The host path
// acts as a prefix, so "/customers/42" against "http://x/api/" yields
// "http://x/api/customers/42".
func (h Hosts) resolve(t target, path string, query url.Values) (string, error) {
	base := h.base(t)
	if base == nil {
		return "", fmt.Errorf("%s host not configured", t)
	}
	p := strings.TrimSpace(path)
	if p == "" {
		return "", fmt.Errorf("empty path")
	}
	rel, err := url.Parse(p)
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", path, err)
	}
	if rel.IsAbs() || rel.Host != "" {
		return "", fmt.Errorf("path %q must be server-relative", path)
	}
	rel.Path = strings.TrimPrefix(rel.Path, "/")
	rel.RawPath = strings.TrimPrefix(rel.RawPath, "/")
	u := base.ResolveReference(rel)
	if len(query) > 0 {
		q := u.Query()
		for k, vv := range query {
			for _, v := range vv {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
