package http

import (
	"fmt"
	"net/url"
	"strings"
)

func normalizeOrigin(in string) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return ""
	}
	u, err := url.Parse(in)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s://%s", strings.ToLower(u.Scheme), strings.ToLower(u.Host))
}

func originHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// originPolicy decides which browser origins may call the API.
type originPolicy struct {
	allowAll bool
	allowed  map[string]struct{}
	suffixes []string
}

func newOriginPolicy(origins, previewSuffixes []string) originPolicy {
	p := originPolicy{allowed: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			p.allowAll = true
			continue
		}
		if n := normalizeOrigin(o); n != "" {
			p.allowed[n] = struct{}{}
		}
	}
	for _, s := range previewSuffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		p.suffixes = append(p.suffixes, s)
	}
	return p
}

func (p originPolicy) allows(origin string) bool {
	if p.allowAll {
		return true
	}
	n := normalizeOrigin(origin)
	if n == "" {
		return false
	}
	if _, ok := p.allowed[n]; ok {
		return true
	}
	host := originHost(n)
	for _, s := range p.suffixes {
		if strings.HasSuffix(host, s) {
			return true
		}
	}
	return false
}
