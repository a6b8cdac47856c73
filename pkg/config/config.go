// Package config loads skillkit settings from defaults, YAML files,
// SKILLKIT_ environment variables and --set command line overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

const envPrefix = "SKILLKIT_"

type Config struct {
	Log        LogConfig        `koanf:"log"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	Executor   ExecutorConfig   `koanf:"executor"`
	Governance GovernanceConfig `koanf:"governance"`
	Audit      AuditConfig      `koanf:"audit"`
	MCP        MCPConfig        `koanf:"mcp"`
	Skills     SkillsConfig     `koanf:"skills"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type TelemetryConfig struct {
	Exporter           string `koanf:"exporter"` // none, stdout, otlp
	OTLPEndpoint       string `koanf:"otlp_endpoint"`
	OTLPInsecure       bool   `koanf:"otlp_insecure"`
	OTLPTimeoutSeconds int    `koanf:"otlp_timeout_seconds"`
}

// ExecutorConfig holds executor defaults. Validate may still be disabled per call.
type ExecutorConfig struct {
	Validate       bool `koanf:"validate"`
	TypeCheck      bool `koanf:"type_check"`
	TimeoutSeconds int  `koanf:"timeout_seconds"`
}

// GovernanceConfig holds allow/deny patterns and ordered policy rules.
type GovernanceConfig struct {
	Allow    []string           `koanf:"allow"`
	Deny     []string           `koanf:"deny"`
	Policies []PolicyRuleConfig `koanf:"policies"`
}

type PolicyRuleConfig struct {
	ID       string `koanf:"id"`
	Effect   string `koanf:"effect"` // allow, deny, pending
	Type     string `koanf:"type"`   // skill, mcp
	Name     string `koanf:"name"`
	Category string `koanf:"category"`
	Reason   string `koanf:"reason"`
}

type AuditConfig struct {
	Enabled bool   `koanf:"enabled"`
	Driver  string `koanf:"driver"` // memory, sqlite
	DSN     string `koanf:"dsn"`
}

type MCPConfig struct {
	Name    string `koanf:"name"`
	Version string `koanf:"version"`
}

type SkillsConfig struct {
	ManifestDir string `koanf:"manifest_dir"`
}

// Global k instance
var k = koanf.New(".")

func setDefaults() {
	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("telemetry.exporter", "none")
	k.Set("telemetry.otlp_insecure", true)
	k.Set("telemetry.otlp_timeout_seconds", 10)

	k.Set("executor.validate", true)
	k.Set("executor.type_check", false)
	k.Set("executor.timeout_seconds", 0)

	k.Set("audit.enabled", false)
	k.Set("audit.driver", "memory")
	k.Set("audit.dsn", "file:skillkit-audit.db")

	k.Set("mcp.name", "skillkit")
	k.Set("mcp.version", "1.0.0")
}

// Load reads configuration from defaults, the optional YAML file at path and
// the environment (SKILLKIT_AUDIT_DRIVER -> audit.driver).
func Load(path string) (*Config, error) {
	return LoadWithProfile(path, "")
}

// LoadWithProfile loads path and then merges config.<profile>.yaml next to it
// when that file exists.
func LoadWithProfile(path, profile string) (*Config, error) {
	k = koanf.New(".")
	if err := load(path, profile); err != nil {
		return nil, err
	}
	return unmarshal()
}

// LoadWithCLI loads configuration honouring --config, --profile/--env and
// repeated --set key=value arguments. Other arguments are ignored.
func LoadWithCLI(args []string) (*Config, error) {
	opts, err := parseCLIOverrides(args)
	if err != nil {
		return nil, err
	}
	k = koanf.New(".")
	if err := load(opts.path, opts.profile); err != nil {
		return nil, err
	}
	for _, set := range opts.sets {
		k.Set(set.key, set.value)
	}
	return unmarshal()
}

func load(path, profile string) error {
	setDefaults()

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return err
		}
		if profilePath := profileConfigPath(path, profile); profilePath != "" {
			if err := k.Load(file.Provider(profilePath), yaml.Parser()); err != nil {
				return err
			}
		}
	}

	return k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, envPrefix)), "_", ".", -1)
	}), nil)
}

func unmarshal() (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// profileConfigPath returns the profile overlay for base, or "" if absent.
func profileConfigPath(base, profile string) string {
	candidate := profileCandidate(base, profile)
	if candidate == "" {
		return ""
	}
	if _, err := os.Stat(candidate); err != nil {
		return ""
	}
	return candidate
}

// profileCandidate names the overlay for profile next to base, whether or
// not it exists: config.yaml + dev -> config.dev.yaml.
func profileCandidate(base, profile string) string {
	if base == "" || profile == "" {
		return ""
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "." + profile + ext
}

type cliOverride struct {
	key   string
	value any
}

type cliOptions struct {
	path    string
	profile string
	sets    []cliOverride
}

func parseCLIOverrides(args []string) (cliOptions, error) {
	var opts cliOptions
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")
		switch name {
		case "--config", "--profile", "--env", "--set":
		default:
			continue
		}
		if !hasValue {
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s requires a value", name)
			}
			i++
			value = args[i]
		}
		switch name {
		case "--config":
			opts.path = value
		case "--profile", "--env":
			opts.profile = value
		case "--set":
			key, raw, ok := strings.Cut(value, "=")
			key = strings.TrimSpace(key)
			if !ok || key == "" {
				return opts, fmt.Errorf("invalid --set value %q, expected key=value", value)
			}
			opts.sets = append(opts.sets, cliOverride{key: key, value: parseValue(raw)})
		}
	}
	return opts, nil
}

// parseValue decodes a --set value as YAML so that numbers, booleans, lists
// and maps keep their type. Unparseable input stays a plain string.
func parseValue(raw string) any {
	var out any
	if err := yamlv3.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return raw
	}
	return out
}
