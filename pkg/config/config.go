// Package config loads the logpanel.yaml file shared by the dashboard and
// the logs daemon.
package config

import (
	"time"

	"github.com/modoterra/logpanel/pkg/core"
)

// Default configuration values.
const (
	Version          = 1
	DefaultEndpoint  = "http://127.0.0.1:7070/logs"
	DefaultListen    = "127.0.0.1:7070"
	DefaultMaxRows   = 5000
	DefaultBacklog   = 2000
	DefaultTimeoutMs = 10000
	DefaultDelayMs   = 2000
	DefaultFileName  = "logpanel.yaml"
	EnvConfigPath    = "LOGPANEL_CONFIG"
)

// Config represents a logpanel.yaml file.
type Config struct {
	Version int    `yaml:"version"`
	Client  Client `yaml:"client"`
	Server  Server `yaml:"server"`
}

// Client configures the dashboard and CLI.
type Client struct {
	Endpoint      string   `yaml:"endpoint"`
	Instance      string   `yaml:"instance,omitempty"`
	Instances     []string `yaml:"instances,omitempty"` // used when the endpoint cannot list them
	Live          bool     `yaml:"live"`
	UpdateDelayMs int      `yaml:"update_delay_ms"`
	MaxRows       int      `yaml:"max_rows"`
	TimeoutMs     int      `yaml:"timeout_ms"`
}

// Server configures the logs daemon.
type Server struct {
	Listen    string              `yaml:"listen"`
	Backlog   int                 `yaml:"backlog"` // records kept per instance
	Instances map[string]Instance `yaml:"instances"`
}

// Instance is one log source served by the daemon. Exactly one of Files,
// Unit and Command is set.
type Instance struct {
	Files     []string `yaml:"files,omitempty"`
	Unit      string   `yaml:"unit,omitempty"`    // systemd unit, read through journalctl
	Command   string   `yaml:"command,omitempty"` // shell-quoted command line
	FromStart bool     `yaml:"from_start,omitempty"`
}

// Kind names the configured source type.
func (i Instance) Kind() string {
	switch {
	case len(i.Files) > 0:
		return "files"
	case i.Unit != "":
		return "unit"
	case i.Command != "":
		return "command"
	}
	return ""
}

// Defaults returns a config with every tunable set.
func Defaults() Config {
	return Config{
		Version: Version,
		Client: Client{
			Endpoint:      DefaultEndpoint,
			UpdateDelayMs: DefaultDelayMs,
			MaxRows:       DefaultMaxRows,
			TimeoutMs:     DefaultTimeoutMs,
		},
		Server: Server{
			Listen:    DefaultListen,
			Backlog:   DefaultBacklog,
			Instances: map[string]Instance{},
		},
	}
}

// Example returns the defaults plus one sample instance, as written by
// `logpanel config init`.
func Example() Config {
	c := Defaults()
	c.Client.Instance = "syslog"
	c.Server.Instances["syslog"] = Instance{Files: []string{"/var/log/syslog"}}
	return c
}

// Settings returns the initial dashboard settings.
func (c Client) Settings() core.Settings {
	return core.Settings{
		InstanceName: c.Instance,
		LiveUpdate:   c.Live,
		UpdateDelay:  time.Duration(c.UpdateDelayMs) * time.Millisecond,
	}
}

// Timeout returns the per-request timeout.
func (c Client) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return DefaultTimeoutMs * time.Millisecond
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}
