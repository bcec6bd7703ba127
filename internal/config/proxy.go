package config

import (
	"net/url"
	"strings"

	"git.home.luguber.info/inful/odata4gen/internal/foundation/errors"
)

// Proxy describes the web proxy used for metadata requests.
type Proxy struct {
	Host        string       `yaml:"host"`
	Credentials *Credentials `yaml:"credentials,omitempty"`
}

// Credentials authenticate against the proxy.
type Credentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Domain   string `yaml:"domain,omitempty"`
}

// ParseProxy parses "domain\user:password@host:port", "user:password@host:port"
// or a bare "host:port". A scheme prefix on the host is kept.
func ParseProxy(spec string) (*Proxy, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}

	at := strings.LastIndex(spec, "@")
	if at < 0 {
		return &Proxy{Host: spec}, nil
	}

	userinfo, host := spec[:at], spec[at+1:]
	if host == "" {
		return nil, errors.ConfigurationError("proxy host is missing").Build()
	}
	if i := strings.Index(userinfo, "://"); i >= 0 {
		host = userinfo[:i+3] + host
		userinfo = userinfo[i+3:]
	}

	user, password, ok := strings.Cut(userinfo, ":")
	if !ok {
		return nil, errors.ConfigurationError("proxy credentials must be user:password").Build()
	}

	creds := &Credentials{Username: user, Password: password}
	if domain, name, found := strings.Cut(user, `\`); found {
		creds.Domain = domain
		creds.Username = name
	}
	if creds.Username == "" {
		return nil, errors.ConfigurationError("proxy user name is missing").Build()
	}

	return &Proxy{Host: host, Credentials: creds}, nil
}

// URL renders the proxy as a URL. Credentials become the userinfo, with the
// domain joined to the user name by a backslash.
func (p *Proxy) URL() (*url.URL, error) {
	raw := p.Host
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.ConfigurationError("invalid proxy host").
			WithContext("host", p.Host).
			WithCause(err).
			Build()
	}
	if c := p.Credentials; c != nil {
		user := c.Username
		if c.Domain != "" {
			user = c.Domain + `\` + user
		}
		u.User = url.UserPassword(user, c.Password)
	}
	return u, nil
}

// String renders the proxy without its password.
func (p *Proxy) String() string {
	if p == nil {
		return ""
	}
	if p.Credentials == nil {
		return p.Host
	}
	user := p.Credentials.Username
	if p.Credentials.Domain != "" {
		user = p.Credentials.Domain + `\` + user
	}
	return user + ":***@" + p.Host
}
