// Package config centralises runtime configuration for the futures connector.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Network selects which Binance futures deployment the connector targets.
type Network string

const (
	// NetworkProduction targets the live exchange.
	NetworkProduction Network = "production"
	// NetworkTestnet targets the Binance futures testnet.
	NetworkTestnet Network = "testnet"
)

const (
	productionRESTBaseURL   = "https://fapi.binance.com"
	productionWebsocketURL  = "wss://fstream.binance.com/ws"
	testnetRESTBaseURL      = "https://testnet.binancefuture.com"
	testnetWebsocketURL     = "wss://stream.binancefuture.com/ws"
	defaultHTTPTimeout      = 10 * time.Second
	defaultHandshakeTimeout = 10 * time.Second
	defaultReconnectDelay   = 2 * time.Second
	defaultRequestsPerSec   = 8.0
)

// Credentials captures the API key pair used for signed requests.
type Credentials struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
}

// Configured reports whether both halves of the key pair are present.
func (c Credentials) Configured() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.APISecret) != ""
}

// TelemetryConfig configures the OpenTelemetry metric exporter.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
}

// Settings contains the connector configuration tree.
type Settings struct {
	Network           Network         `yaml:"network"`
	RESTBaseURL       string          `yaml:"rest_base_url"`
	WebsocketURL      string          `yaml:"websocket_url"`
	Credentials       Credentials     `yaml:"credentials"`
	HTTPTimeout       time.Duration   `yaml:"http_timeout"`
	HandshakeTimeout  time.Duration   `yaml:"handshake_timeout"`
	ReconnectDelay    time.Duration   `yaml:"reconnect_delay"`
	RecvWindow        time.Duration   `yaml:"recv_window"`
	RequestsPerSecond float64         `yaml:"requests_per_second"`
	Telemetry         TelemetryConfig `yaml:"telemetry"`
}

// Default returns the production configuration with standard timeouts.
func Default() Settings {
	return Settings{
		Network:           NetworkProduction,
		RESTBaseURL:       productionRESTBaseURL,
		WebsocketURL:      productionWebsocketURL,
		Credentials:       Credentials{APIKey: "", APISecret: ""},
		HTTPTimeout:       defaultHTTPTimeout,
		HandshakeTimeout:  defaultHandshakeTimeout,
		ReconnectDelay:    defaultReconnectDelay,
		RecvWindow:        0,
		RequestsPerSecond: defaultRequestsPerSec,
		Telemetry:         TelemetryConfig{OTLPEndpoint: "", ServiceName: ""},
	}
}

// ForNetwork returns defaults with endpoint URLs resolved for the given network.
func ForNetwork(network Network) Settings {
	cfg := Default()
	cfg.Network = network
	cfg.RESTBaseURL, cfg.WebsocketURL = endpointsFor(network)
	return cfg
}

func endpointsFor(network Network) (rest, websocket string) {
	if network == NetworkTestnet {
		return testnetRESTBaseURL, testnetWebsocketURL
	}
	return productionRESTBaseURL, productionWebsocketURL
}

// FromEnv loads configuration from environment variables, overriding defaults.
func FromEnv() Settings {
	cfg := Default()
	if v := strings.TrimSpace(os.Getenv("BINANCE_FUTURES_NETWORK")); v != "" {
		cfg.Network = Network(strings.ToLower(v))
		cfg.RESTBaseURL, cfg.WebsocketURL = endpointsFor(cfg.Network)
	}
	if v := strings.TrimSpace(os.Getenv("BINANCE_FUTURES_REST_URL")); v != "" {
		cfg.RESTBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("BINANCE_FUTURES_WS_URL")); v != "" {
		cfg.WebsocketURL = v
	}
	if v := strings.TrimSpace(os.Getenv("BINANCE_API_KEY")); v != "" {
		cfg.Credentials.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("BINANCE_API_SECRET")); v != "" {
		cfg.Credentials.APISecret = v
	}
	if v := strings.TrimSpace(os.Getenv("BINANCE_HTTP_TIMEOUT")); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			cfg.HTTPTimeout = dur
		}
	}
	if v := strings.TrimSpace(os.Getenv("BINANCE_RECONNECT_DELAY")); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			cfg.ReconnectDelay = dur
		}
	}
	if v := strings.TrimSpace(os.Getenv("BINANCE_RECV_WINDOW")); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			cfg.RecvWindow = dur
		}
	}
	if v := strings.TrimSpace(os.Getenv("BINANCE_REQUESTS_PER_SECOND")); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil && rps > 0 {
			cfg.RequestsPerSecond = rps
		}
	}
	if v := strings.TrimSpace(os.Getenv("OTLP_ENDPOINT")); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("OTLP_SERVICE_NAME")); v != "" {
		cfg.Telemetry.ServiceName = v
	}
	return cfg
}

// Validate reports configuration mistakes that must abort construction.
func (s Settings) Validate() error {
	switch s.Network {
	case NetworkProduction, NetworkTestnet:
	default:
		return fmt.Errorf("config: unknown network %q", s.Network)
	}
	if strings.TrimSpace(s.RESTBaseURL) == "" {
		return fmt.Errorf("config: rest base url required")
	}
	if strings.TrimSpace(s.WebsocketURL) == "" {
		return fmt.Errorf("config: websocket url required")
	}
	if s.HTTPTimeout <= 0 {
		return fmt.Errorf("config: http timeout must be positive")
	}
	if s.ReconnectDelay <= 0 {
		return fmt.Errorf("config: reconnect delay must be positive")
	}
	if s.RequestsPerSecond <= 0 {
		return fmt.Errorf("config: requests per second must be positive")
	}
	return nil
}

// Option mutates Settings when applied via Apply.
type Option func(*Settings)

// Apply applies the provided Option set to a copy of the base Settings.
func Apply(base Settings, opts ...Option) Settings {
	cfg := base
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithNetwork switches the deployment target and re-resolves endpoint URLs.
func WithNetwork(network Network) Option {
	return func(s *Settings) {
		if network == "" {
			return
		}
		s.Network = network
		s.RESTBaseURL, s.WebsocketURL = endpointsFor(network)
	}
}

// WithCredentials sets the API key pair used for signed requests.
func WithCredentials(key, secret string) Option {
	key = strings.TrimSpace(key)
	secret = strings.TrimSpace(secret)
	return func(s *Settings) {
		if key != "" {
			s.Credentials.APIKey = key
		}
		if secret != "" {
			s.Credentials.APISecret = secret
		}
	}
}

// WithEndpoints overrides the resolved endpoint URLs directly.
func WithEndpoints(restBaseURL, websocketURL string) Option {
	restBaseURL = strings.TrimSpace(restBaseURL)
	websocketURL = strings.TrimSpace(websocketURL)
	return func(s *Settings) {
		if restBaseURL != "" {
			s.RESTBaseURL = restBaseURL
		}
		if websocketURL != "" {
			s.WebsocketURL = websocketURL
		}
	}
}

// WithHTTPTimeout overrides the REST request timeout.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(s *Settings) {
		if timeout > 0 {
			s.HTTPTimeout = timeout
		}
	}
}

// WithReconnectDelay overrides the fixed delay between stream reconnect attempts.
func WithReconnectDelay(delay time.Duration) Option {
	return func(s *Settings) {
		if delay > 0 {
			s.ReconnectDelay = delay
		}
	}
}

// WithRecvWindow sets the recvWindow attached to signed requests.
func WithRecvWindow(window time.Duration) Option {
	return func(s *Settings) {
		if window > 0 {
			s.RecvWindow = window
		}
	}
}
