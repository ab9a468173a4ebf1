package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pthm/csel/pkg/compiler"
	"github.com/pthm/csel/pkg/migrator"
	"github.com/pthm/csel/pkg/search"
)

const (
	maxWalkDepth = 25
)

// Config represents the csel configuration from csel.yaml.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Search   SearchConfig   `mapstructure:"search"`
	Compiler CompilerConfig `mapstructure:"compiler"`
	Log      LogConfig      `mapstructure:"log"`

	// Per-command configuration
	Migrate MigrateConfig `mapstructure:"migrate"`
	Doctor  DoctorConfig  `mapstructure:"doctor"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// SearchConfig holds search table settings.
type SearchConfig struct {
	Table string `mapstructure:"table"`
}

// CompilerConfig holds expression compilation settings.
type CompilerConfig struct {
	ParameterPrefix     string `mapstructure:"parameter_prefix"`
	ParameterNamePrefix string `mapstructure:"parameter_name_prefix"`
	PropertyPrefix      string `mapstructure:"property_prefix"`

	// Aliases are applied over the built-in search table aliases.
	// A list is used because viper lowercases map keys.
	Aliases []AliasConfig `mapstructure:"aliases"`

	// AllowedProperties restricts the properties an expression may reference.
	// Empty uses selector.DefaultAllowedProperties.
	AllowedProperties []string `mapstructure:"allowed_properties"`
}

// AliasConfig maps one logical property to a column.
type AliasConfig struct {
	Property string `mapstructure:"property"`
	Column   string `mapstructure:"column"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// MigrateConfig holds migration settings.
type MigrateConfig struct {
	DryRun bool `mapstructure:"dry_run"`
	Force  bool `mapstructure:"force"`
}

// DoctorConfig holds doctor command settings.
type DoctorConfig struct {
	Verbose bool `mapstructure:"verbose"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults.
//
// Returns the loaded config, the path to the config file (empty if none found),
// and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	// 1. Set defaults first (lowest precedence)
	setDefaults(v)

	// 2. Set up environment variable binding
	v.SetEnvPrefix("CSEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 3. Find and load config file
	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	// 4. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "prefer")

	// Search defaults
	v.SetDefault("search.table", migrator.DefaultTable)

	// Compiler defaults
	v.SetDefault("compiler.parameter_prefix", ":")
	v.SetDefault("compiler.parameter_name_prefix", "param_")
	v.SetDefault("compiler.property_prefix", "")

	// Log defaults
	v.SetDefault("log.level", "warn")

	// Migrate defaults
	v.SetDefault("migrate.dry_run", false)
	v.SetDefault("migrate.force", false)

	// Doctor defaults
	v.SetDefault("doctor.verbose", false)
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for csel.yaml or csel.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range []string{"csel.yaml", "csel.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		// Stop at repo root (.git file or directory)
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil // No config found, use defaults
}

// DSN returns the database connection string.
// If database.url is set, it's returned directly.
// Otherwise, builds a DSN from discrete fields.
func (c *Config) DSN() (string, error) {
	db := c.Database

	if db.URL != "" {
		return db.URL, nil
	}

	if db.Host == "" {
		return "", fmt.Errorf("database.host is required when database.url is not set")
	}
	if db.Name == "" {
		return "", fmt.Errorf("database.name is required when database.url is not set")
	}
	if db.User == "" {
		return "", fmt.Errorf("database.user is required when database.url is not set")
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   "/" + db.Name,
	}

	if db.Password != "" {
		u.User = url.UserPassword(db.User, db.Password)
	} else {
		u.User = url.User(db.User)
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// CompilerOptions returns the compiler options described by the config:
// the built-in search table aliases overlaid with configured ones.
func (c *Config) CompilerOptions() (compiler.Options, error) {
	opts := search.DefaultOptions()
	opts.ParameterPrefix = c.Compiler.ParameterPrefix
	opts.ParameterNamePrefix = c.Compiler.ParameterNamePrefix
	opts.PropertyPrefix = c.Compiler.PropertyPrefix

	for i, a := range c.Compiler.Aliases {
		if a.Property == "" || a.Column == "" {
			return compiler.Options{}, fmt.Errorf("compiler.aliases[%d]: property and column are required", i)
		}
		opts.Aliases[a.Property] = a.Column
	}
	return opts, nil
}

// Table returns the configured search table, or the default.
func (c *Config) Table() string {
	if c.Search.Table == "" {
		return migrator.DefaultTable
	}
	return c.Search.Table
}
