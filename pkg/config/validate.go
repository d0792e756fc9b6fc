package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/google/shlex"

	"github.com/modoterra/logpanel/pkg/core"
)

// Validate checks the config for structural correctness.
func Validate(c *Config) []error {
	var errs []error

	if c.Version != Version {
		errs = append(errs, fmt.Errorf("version must be %d, got %d", Version, c.Version))
	}

	errs = append(errs, validateClient(c.Client)...)
	errs = append(errs, validateServer(c.Server)...)
	return errs
}

func validateClient(cl Client) []error {
	var errs []error

	u, err := url.Parse(cl.Endpoint)
	switch {
	case cl.Endpoint == "":
		errs = append(errs, fmt.Errorf("client.endpoint is required"))
	case err != nil:
		errs = append(errs, fmt.Errorf("client.endpoint: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("client.endpoint must be an http or https URL, got %q", cl.Endpoint))
	case u.Host == "":
		errs = append(errs, fmt.Errorf("client.endpoint has no host: %q", cl.Endpoint))
	}

	if cl.UpdateDelayMs < 0 {
		errs = append(errs, fmt.Errorf("client.update_delay_ms must not be negative"))
	}
	if cl.MaxRows < 0 {
		errs = append(errs, fmt.Errorf("client.max_rows must not be negative"))
	}
	if cl.TimeoutMs < 0 {
		errs = append(errs, fmt.Errorf("client.timeout_ms must not be negative"))
	}
	return errs
}

func validateServer(s Server) []error {
	var errs []error

	if len(s.Instances) > 0 && s.Listen == "" {
		errs = append(errs, fmt.Errorf("server.listen is required when instances are defined"))
	}
	if s.Backlog < 0 {
		errs = append(errs, fmt.Errorf("server.backlog must not be negative"))
	}

	names := make([]string, 0, len(s.Instances))
	for name := range s.Instances {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		inst := s.Instances[name]
		if err := validateName(name); err != nil {
			errs = append(errs, err)
		}

		set := 0
		if len(inst.Files) > 0 {
			set++
		}
		if inst.Unit != "" {
			set++
		}
		if inst.Command != "" {
			set++
		}
		switch {
		case set == 0:
			errs = append(errs, fmt.Errorf("instance %q: one of files, unit or command is required", name))
		case set > 1:
			errs = append(errs, fmt.Errorf("instance %q: only one of files, unit or command may be set", name))
		}

		for _, f := range inst.Files {
			if strings.TrimSpace(f) == "" {
				errs = append(errs, fmt.Errorf("instance %q: empty file path", name))
			}
		}
		if inst.Command != "" {
			if args, err := shlex.Split(inst.Command); err != nil {
				errs = append(errs, fmt.Errorf("instance %q: command: %w", name, err))
			} else if len(args) == 0 {
				errs = append(errs, fmt.Errorf("instance %q: command is empty", name))
			}
		}
	}
	return errs
}

func validateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("instance name is required")
	case name == core.InstanceNone:
		return fmt.Errorf("instance name %q is reserved", name)
	case strings.ContainsAny(name, "/?#% "):
		return fmt.Errorf("instance %q: name must not contain '/', '?', '#', '%%' or spaces", name)
	}
	return nil
}
