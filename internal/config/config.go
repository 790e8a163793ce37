package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/policy"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Tickets     TicketConfig      `yaml:"tickets"`
	Tokens      TokenConfig       `yaml:"tokens"`
	Verifiers   []VerifierConfig  `yaml:"verifiers"`
	Authorizer  AuthorizerConfig  `yaml:"authorizer"`
	Audit       AuditConfig       `yaml:"audit"`
	Derivations map[string]string `yaml:"derivations"`

	// Rules feed the in-process policy decider. Validation and expression
	// compilation happen in the validation package at startup.
	Rules []policy.Rule `yaml:"rules"`

	// PolicySource optionally points at an external rule file that is
	// reloaded periodically, replacing the inline Rules.
	PolicySource PolicySourceConfig `yaml:"policy_source"`
}

type PolicySourceConfig struct {
	// Path to a YAML file with a top-level "rules" list.
	Path string `yaml:"path"`

	// ReloadInterval between refreshes. Default 1m.
	ReloadInterval time.Duration `yaml:"reload_interval"`
}

type ServerConfig struct {
	// Addr the HTTP server listens on.
	Addr string `yaml:"addr"`

	// BaseURL is this server's public identifier. It is the token issuer
	// and the audience OIDC tokens must carry.
	BaseURL string `yaml:"base_url"`

	// ResourceServerKey is the shared HMAC key resource servers use to
	// authenticate against the permission registration endpoint.
	ResourceServerKey string `yaml:"resource_server_key"`
}

type TicketConfig struct {
	// TTL bounds how long a ticket stays exchangeable. Default 30m.
	TTL time.Duration `yaml:"ttl"`

	// SweepInterval is how often expired tickets are purged from the store.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type TokenConfig struct {
	// TTL bounds issued access tokens. Default 10m.
	TTL time.Duration `yaml:"ttl"`
}

// VerifierConfig holds configuration for one claim token format.
type VerifierConfig struct {
	// Format is the claim token format IRI this verifier handles.
	Format string `yaml:"format"`

	// Type selects the implementation: "jwt", "oidc", "unsecured", "keyvalue".
	Type string `yaml:"type"`

	Config map[string]any `yaml:",inline"` // capture remaining fields
}

// AuthorizerConfig selects the base authorizer wrapped by the namespace
// shortcut.
type AuthorizerConfig struct {
	// Type is "policy" (default), "all" or "none".
	Type string `yaml:"type"`

	// PublicNamespaces overrides the namespaces granted without any policy
	// check. Default: profile, public.
	PublicNamespaces []string `yaml:"public_namespaces"`
}

// AuditConfig holds configuration for auditing.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Type    string `yaml:"type"` // e.g. "file", "memory"
}

// Load reads and parses the configuration file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":4000"
	}

	seen := make(map[string]struct{})
	for idx, v := range c.Verifiers {
		if v.Format == "" {
			return fmt.Errorf("verifier at index %d has empty format", idx)
		}
		if v.Type == "" {
			return fmt.Errorf("verifier %q has empty type", v.Format)
		}
		if _, ok := seen[v.Format]; ok {
			return fmt.Errorf("verifier format %q configured twice", v.Format)
		}
		seen[v.Format] = struct{}{}
	}

	switch c.Authorizer.Type {
	case "", "policy", "all", "none":
	default:
		return fmt.Errorf("unknown authorizer type %q", c.Authorizer.Type)
	}

	return nil
}
