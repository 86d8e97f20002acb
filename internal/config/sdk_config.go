package config

// SDKConfig holds the settings the embeddable API client needs, independent of the CLI.
type SDKConfig struct {
	// ProxyURL is the URL of an optional proxy server to use for outbound requests.
	// Supports http, https and socks5 schemes.
	ProxyURL string `yaml:"proxy-url" json:"proxy-url"`

	// UserAgent overrides the User-Agent header sent with every request.
	UserAgent string `yaml:"user-agent,omitempty" json:"user-agent,omitempty"`

	// RequestLog enables debug logging of each request line and status (never bodies or tokens).
	RequestLog bool `yaml:"request-log" json:"request-log"`
}
