// Package cncsettings manages the persistent configuration of the cncd
// controller process.
package cncsettings

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the settings file is absent or a field is unset.
const (
	DefaultDomainID     = "tsn-domain-0"
	DefaultNETCONFPort  = 830
	DefaultQueueDepth   = 16
	DefaultLogLevel     = "info"
	DefaultAuditMaxSizeMB  = 10
	DefaultAuditMaxBackups = 10
)

// Settings holds the controller's persistent configuration.
type Settings struct {
	// DomainID is the TSN domain this controller manages.
	DomainID string `yaml:"domain_id,omitempty"`

	// StorageDir is where the domain tree and per-node configs persist.
	StorageDir string `yaml:"storage_dir,omitempty"`

	// TopologyFile is the topology description served to the scheduler
	// and southbound.
	TopologyFile string `yaml:"topology_file,omitempty"`

	// RedisAddr, when set, selects the Redis storage backend instead of
	// the file backend.
	RedisAddr string `yaml:"redis_addr,omitempty"`

	// NETCONFUser and NETCONFPassword are the fallback credentials for
	// bridges whose topology entry does not carry its own.
	NETCONFUser     string `yaml:"netconf_user,omitempty"`
	NETCONFPassword string `yaml:"netconf_password,omitempty"`

	// NETCONFPort is the fallback NETCONF-over-SSH port (default 830).
	NETCONFPort int `yaml:"netconf_port,omitempty"`

	// ComputeQueueDepth bounds the compute request channel.
	ComputeQueueDepth int `yaml:"compute_queue_depth,omitempty"`

	// LogLevel is the logrus level name; LogJSON switches to JSON output.
	LogLevel string `yaml:"log_level,omitempty"`
	LogJSON  bool   `yaml:"log_json,omitempty"`

	// AuditLogPath overrides the default audit log path.
	AuditLogPath string `yaml:"audit_log_path,omitempty"`

	// AuditMaxSizeMB is the max audit log size in MB before rotation.
	AuditMaxSizeMB int `yaml:"audit_max_size_mb,omitempty"`

	// AuditMaxBackups is the max number of rotated audit log files.
	AuditMaxBackups int `yaml:"audit_max_backups,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file.
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/cnc_settings.yaml"
	}
	return filepath.Join(home, ".cnc", "settings.yaml")
}

// Load reads settings from the default location.
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path. A missing file yields
// empty settings, not an error; getters below apply defaults.
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Save writes settings to the default location.
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path.
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetDomainID returns the configured domain id with its default.
func (s *Settings) GetDomainID() string {
	if s.DomainID != "" {
		return s.DomainID
	}
	return DefaultDomainID
}

// GetStorageDir returns the storage directory, defaulting next to the
// settings file.
func (s *Settings) GetStorageDir() string {
	if s.StorageDir != "" {
		return s.StorageDir
	}
	return filepath.Join(filepath.Dir(DefaultSettingsPath()), "storage")
}

// GetNETCONFPort returns the NETCONF port with its default.
func (s *Settings) GetNETCONFPort() int {
	if s.NETCONFPort > 0 {
		return s.NETCONFPort
	}
	return DefaultNETCONFPort
}

// GetComputeQueueDepth returns the compute queue depth with its default.
func (s *Settings) GetComputeQueueDepth() int {
	if s.ComputeQueueDepth > 0 {
		return s.ComputeQueueDepth
	}
	return DefaultQueueDepth
}

// GetLogLevel returns the log level name with its default.
func (s *Settings) GetLogLevel() string {
	if s.LogLevel != "" {
		return s.LogLevel
	}
	return DefaultLogLevel
}

// GetAuditLogPath returns the audit log path, defaulting into the
// storage directory.
func (s *Settings) GetAuditLogPath() string {
	if s.AuditLogPath != "" {
		return s.AuditLogPath
	}
	return filepath.Join(s.GetStorageDir(), "audit.log")
}

// GetAuditMaxSizeMB returns the audit rotation size with its default.
func (s *Settings) GetAuditMaxSizeMB() int {
	if s.AuditMaxSizeMB > 0 {
		return s.AuditMaxSizeMB
	}
	return DefaultAuditMaxSizeMB
}

// GetAuditMaxBackups returns the audit backup count with its default.
func (s *Settings) GetAuditMaxBackups() int {
	if s.AuditMaxBackups > 0 {
		return s.AuditMaxBackups
	}
	return DefaultAuditMaxBackups
}

// Clear resets all settings to defaults.
func (s *Settings) Clear() {
	*s = Settings{}
}
