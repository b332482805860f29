package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/irjeyaraj/UGNasSync/internal/model"
)

type Config struct {
	NAS      NASConfig     `mapstructure:"nas"`
	Logging  LoggingConfig `mapstructure:"logging"`
	Daemon   DaemonConfig  `mapstructure:"daemon"`
	Profiles []SyncProfile `mapstructure:"sync_profiles"`
}

type NASConfig struct {
	Host     string    `mapstructure:"host"`
	Port     int       `mapstructure:"port"`
	Username string    `mapstructure:"username"`
	Password string    `mapstructure:"password"`
	KeyPath  string    `mapstructure:"key_path"`
	SMB      SMBConfig `mapstructure:"smb"`
}

type SMBConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	SharePath    string `mapstructure:"share_path"`
	MountPoint   string `mapstructure:"mount_point"`
	Domain       string `mapstructure:"domain"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	MountOptions string `mapstructure:"mount_options"`
	AutoUnmount  bool   `mapstructure:"auto_unmount"`
	MountTimeout int    `mapstructure:"mount_timeout"`
}

type LoggingConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	LogFile         string `mapstructure:"log_file"`
	LogLevel        string `mapstructure:"log_level"`
	ConsoleOutput   bool   `mapstructure:"console_output"`
	FileOutput      bool   `mapstructure:"file_output"`
	RotateEnabled   bool   `mapstructure:"rotate_enabled"`
	MaxFileSizeMB   int    `mapstructure:"max_file_size_mb"`
	MaxFiles        int    `mapstructure:"max_files"`
	CompressRotated bool   `mapstructure:"compress_rotated"`
}

// DaemonConfig configures the watch mode control server.
type DaemonConfig struct {
	Port int `mapstructure:"port"`
}

// SyncProfile describes one local directory paired with a remote one.
// Profiles are independent: each gets its own sync runs, watch session
// and conflict policy.
type SyncProfile struct {
	Name            string               `mapstructure:"name"`
	LocalPath       string               `mapstructure:"local_path"`
	RemotePath      string               `mapstructure:"remote_path"`
	Mode            model.SyncMode       `mapstructure:"sync_type"`
	Enabled         bool                 `mapstructure:"enabled"`
	Exclude         []string             `mapstructure:"exclude"`
	WatchMode       bool                 `mapstructure:"watch_mode"`
	DebounceSeconds int                  `mapstructure:"debounce_seconds"`
	ConflictPolicy  model.ConflictPolicy `mapstructure:"conflict_resolution"`
	UseSMBMount     bool                 `mapstructure:"use_smb_mount"`
}

// Load reads and validates the TOML configuration at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.SetDefault("nas.port", 22)
	v.SetDefault("nas.smb.auto_unmount", true)
	v.SetDefault("nas.smb.mount_timeout", 30)
	v.SetDefault("logging.enabled", true)
	v.SetDefault("logging.log_level", "info")
	v.SetDefault("logging.console_output", true)
	v.SetDefault("logging.rotate_enabled", true)
	v.SetDefault("logging.max_file_size_mb", 50)
	v.SetDefault("logging.max_files", 5)
	v.SetDefault("daemon.port", 9040)

	v.SetEnvPrefix("UGNASSYNC")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if ok := errors.As(err, &pathErr); ok {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for i := range cfg.Profiles {
		if cfg.Profiles[i].DebounceSeconds <= 0 {
			cfg.Profiles[i].DebounceSeconds = 5
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.NAS.Host == "" {
		return fmt.Errorf("nas.host is required")
	}
	if c.NAS.Username == "" {
		return fmt.Errorf("nas.username is required")
	}
	if c.NAS.Password == "" && c.NAS.KeyPath == "" {
		return fmt.Errorf("either nas.password or nas.key_path must be specified")
	}

	if c.NAS.SMB.Enabled {
		if c.NAS.SMB.SharePath == "" {
			return fmt.Errorf("nas.smb.share_path is required when SMB is enabled")
		}
		if c.NAS.SMB.MountPoint == "" {
			return fmt.Errorf("nas.smb.mount_point is required when SMB is enabled")
		}
		if c.NAS.SMB.Username == "" {
			return fmt.Errorf("nas.smb.username is required when SMB is enabled")
		}
	}

	if len(c.Profiles) == 0 {
		return fmt.Errorf("at least one sync profile must be defined")
	}

	seen := make(map[string]bool, len(c.Profiles))
	for _, p := range c.Profiles {
		if p.Name == "" {
			return fmt.Errorf("profile name is required")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate profile name: %s", p.Name)
		}
		seen[p.Name] = true

		if p.LocalPath == "" {
			return fmt.Errorf("profile %s: local_path is required", p.Name)
		}
		if p.RemotePath == "" {
			return fmt.Errorf("profile %s: remote_path is required", p.Name)
		}
		if p.Mode == "" {
			return fmt.Errorf("profile %s: sync_type is required", p.Name)
		}
		if !p.Mode.Valid() {
			return fmt.Errorf("profile %s: unknown sync_type %q", p.Name, p.Mode)
		}
		if p.ConflictPolicy != "" && !p.ConflictPolicy.Valid() {
			return fmt.Errorf("profile %s: unknown conflict_resolution %q", p.Name, p.ConflictPolicy)
		}
		if p.UseSMBMount && !c.NAS.SMB.Enabled {
			return fmt.Errorf("profile %s: use_smb_mount requires nas.smb to be enabled", p.Name)
		}
	}

	return nil
}

// Profile returns the profile with the given name.
func (c *Config) Profile(name string) (*SyncProfile, error) {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], nil
		}
	}

	return nil, fmt.Errorf("unknown profile: %s", name)
}

// EnabledProfiles returns the profiles that take part in batch syncs.
func (c *Config) EnabledProfiles() []SyncProfile {
	var out []SyncProfile
	for _, p := range c.Profiles {
		if p.Enabled {
			out = append(out, p)
		}
	}

	return out
}

// WatchProfiles returns the enabled profiles that take part in watch
// mode.
func (c *Config) WatchProfiles() []SyncProfile {
	var out []SyncProfile
	for _, p := range c.Profiles {
		if p.Enabled && p.WatchMode {
			out = append(out, p)
		}
	}

	return out
}

// Excluded reports whether path matches any exclude pattern of the
// profile. Patterns match by substring anywhere in the path.
func (p SyncProfile) Excluded(path string) bool {
	for _, pattern := range p.Exclude {
		if strings.Contains(path, pattern) {
			return true
		}
	}

	return false
}

// Debounce returns the quiet period between watch-triggered syncs.
func (p SyncProfile) Debounce() time.Duration {
	return time.Duration(p.DebounceSeconds) * time.Second
}
