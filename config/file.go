package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// fileSettings mirrors Settings with string durations for YAML parsing.
type fileSettings struct {
	Network           string          `yaml:"network"`
	RESTBaseURL       string          `yaml:"rest_base_url"`
	WebsocketURL      string          `yaml:"websocket_url"`
	Credentials       Credentials     `yaml:"credentials"`
	HTTPTimeout       string          `yaml:"http_timeout"`
	HandshakeTimeout  string          `yaml:"handshake_timeout"`
	ReconnectDelay    string          `yaml:"reconnect_delay"`
	RecvWindow        string          `yaml:"recv_window"`
	RequestsPerSecond float64         `yaml:"requests_per_second"`
	Telemetry         TelemetryConfig `yaml:"telemetry"`
}

// FromFile loads settings from a YAML file, starting from Default.
func FromFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return parseYAML(data)
}

func parseYAML(data []byte) (Settings, error) {
	var raw fileSettings
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Settings{}, fmt.Errorf("config: parse yaml: %w", err)
	}

	cfg := Default()
	if network := strings.TrimSpace(raw.Network); network != "" {
		cfg.Network = Network(strings.ToLower(network))
		cfg.RESTBaseURL, cfg.WebsocketURL = endpointsFor(cfg.Network)
	}
	if v := strings.TrimSpace(raw.RESTBaseURL); v != "" {
		cfg.RESTBaseURL = v
	}
	if v := strings.TrimSpace(raw.WebsocketURL); v != "" {
		cfg.WebsocketURL = v
	}
	if raw.Credentials.APIKey != "" {
		cfg.Credentials.APIKey = strings.TrimSpace(raw.Credentials.APIKey)
	}
	if raw.Credentials.APISecret != "" {
		cfg.Credentials.APISecret = strings.TrimSpace(raw.Credentials.APISecret)
	}
	if raw.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = raw.RequestsPerSecond
	}
	cfg.Telemetry = raw.Telemetry

	durations := []struct {
		value  string
		target *time.Duration
		name   string
	}{
		{raw.HTTPTimeout, &cfg.HTTPTimeout, "http_timeout"},
		{raw.HandshakeTimeout, &cfg.HandshakeTimeout, "handshake_timeout"},
		{raw.ReconnectDelay, &cfg.ReconnectDelay, "reconnect_delay"},
		{raw.RecvWindow, &cfg.RecvWindow, "recv_window"},
	}
	for _, d := range durations {
		value := strings.TrimSpace(d.value)
		if value == "" {
			continue
		}
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return Settings{}, fmt.Errorf("config: parse %s: %w", d.name, err)
		}
		*d.target = parsed
	}

	return cfg, nil
}
