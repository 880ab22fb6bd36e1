// Package config loads udoc settings from the environment.
package config

import (
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultTimeout bounds each network phase.
	DefaultTimeout = 5 * time.Second

	// DefaultMaxRedirects is the maximum number of redirects we follow.
	DefaultMaxRedirects = 10

	// DefaultBodyLimit is the maximum number of body bytes we read.
	DefaultBodyLimit = 32768

	// DefaultRepeat is the default number of runs.
	DefaultRepeat = 1

	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "warn"

	// DefaultResolvConf is where the "dns" resolver reads its nameservers.
	DefaultResolvConf = "/etc/resolv.conf"
)

// ResolverKind selects the DNS resolver implementation.
type ResolverKind string

const (
	// ResolverSystem uses the operating system resolver.
	ResolverSystem = ResolverKind("system")

	// ResolverResolvConf sends DNS queries to the first resolv.conf nameserver.
	ResolverResolvConf = ResolverKind("dns")

	// ResolverUDP sends DNS queries to an explicit endpoint.
	ResolverUDP = ResolverKind("udp")
)

// Resolver describes which resolver to use.
type Resolver struct {
	Kind ResolverKind

	// Endpoint is the host:port for ResolverUDP.
	Endpoint string
}

// String returns the configuration value that selects this resolver.
func (r Resolver) String() string {
	if r.Kind == ResolverUDP {
		return "udp://" + r.Endpoint
	}
	return string(r.Kind)
}

// Config contains the udoc settings.
type Config struct {
	Timeout      time.Duration
	MaxRedirects int
	BodyLimit    int
	Repeat       int
	JSON         bool
	Verbose      bool
	NoColor      bool
	LogLevel     string
	Resolver     Resolver
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Timeout:      DefaultTimeout,
		MaxRedirects: DefaultMaxRedirects,
		BodyLimit:    DefaultBodyLimit,
		Repeat:       DefaultRepeat,
		LogLevel:     DefaultLogLevel,
		Resolver:     Resolver{Kind: ResolverSystem},
	}
}

// FromEnv builds a Config using getenv, which is typically os.Getenv. Malformed
// numeric values fall back to their defaults. A malformed resolver or log level
// is an error.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	if d, ok := ParseTimeout(getenv("UDOC_TIMEOUT")); ok {
		cfg.Timeout = d
	}
	if v, ok := parseNonNegative(getenv("UDOC_MAX_REDIRS")); ok {
		cfg.MaxRedirects = v
	}
	if v, ok := parseNonNegative(getenv("UDOC_BODY_LIMIT")); ok {
		cfg.BodyLimit = v
	}
	if v, ok := parseNonNegative(getenv("UDOC_REPEAT")); ok && v >= 1 {
		cfg.Repeat = v
	}
	if value := getenv("UDOC_RESOLVER"); value != "" {
		reso, err := ParseResolver(value)
		if err != nil {
			return Config{}, errors.Wrap(err, "parsing UDOC_RESOLVER")
		}
		cfg.Resolver = reso
	}
	if value := getenv("UDOC_LOG_LEVEL"); value != "" {
		level, err := ParseLogLevel(value)
		if err != nil {
			return Config{}, errors.Wrap(err, "parsing UDOC_LOG_LEVEL")
		}
		cfg.LogLevel = level
	}
	// https://no-color.org: any non-empty value disables colors
	cfg.NoColor = getenv("NO_COLOR") != ""
	return cfg, nil
}

// WithJSON returns a copy of c with JSON output set to v.
func (c Config) WithJSON(v bool) Config {
	c.JSON = v
	return c
}

// WithVerbose returns a copy of c with verbose logging set to v. Verbose
// logging forces the debug level.
func (c Config) WithVerbose(v bool) Config {
	c.Verbose = v
	if v {
		c.LogLevel = "debug"
	}
	return c
}

// ParseTimeout parses values like "1500ms", "3s" and "2". The bool is false
// when the value is empty, malformed or not positive.
func ParseTimeout(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	unit := time.Second
	switch {
	case strings.HasSuffix(value, "ms"):
		value, unit = strings.TrimSuffix(value, "ms"), time.Millisecond
	case strings.HasSuffix(value, "s"):
		value = strings.TrimSuffix(value, "s")
	}
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return time.Duration(n) * unit, true
}

func parseNonNegative(value string) (int, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 31)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// ErrInvalidResolver indicates a malformed UDOC_RESOLVER value.
var ErrInvalidResolver = errors.New("expected system, dns or udp://host:port")

// ParseResolver parses a resolver selector.
func ParseResolver(value string) (Resolver, error) {
	switch value {
	case string(ResolverSystem):
		return Resolver{Kind: ResolverSystem}, nil
	case string(ResolverResolvConf):
		return Resolver{Kind: ResolverResolvConf}, nil
	}
	URL, err := url.Parse(value)
	if err != nil {
		return Resolver{}, errors.Wrapf(ErrInvalidResolver, "%q", value)
	}
	if URL.Scheme != "udp" || URL.Path != "" || URL.RawQuery != "" {
		return Resolver{}, errors.Wrapf(ErrInvalidResolver, "%q", value)
	}
	host, port, err := net.SplitHostPort(URL.Host)
	if err != nil || host == "" || port == "" {
		return Resolver{}, errors.Wrapf(ErrInvalidResolver, "%q", value)
	}
	return Resolver{Kind: ResolverUDP, Endpoint: URL.Host}, nil
}

// ErrInvalidLogLevel indicates a malformed UDOC_LOG_LEVEL value.
var ErrInvalidLogLevel = errors.New("expected debug, info, warn or error")

// ParseLogLevel normalizes a log level name.
func ParseLogLevel(value string) (string, error) {
	level := strings.ToLower(strings.TrimSpace(value))
	switch level {
	case "debug", "info", "warn", "error":
		return level, nil
	case "warning":
		return "warn", nil
	default:
		return "", errors.Wrapf(ErrInvalidLogLevel, "%q", value)
	}
}
