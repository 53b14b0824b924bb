package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/goran-ethernal/ScanKit/internal/common"
	"github.com/goran-ethernal/ScanKit/internal/logger"
	"github.com/goran-ethernal/ScanKit/internal/urlbuilder"
)

const (
	// HeightSourceProxy resolves the chain head through the explorer's eth_blockNumber proxy.
	HeightSourceProxy = "proxy"
	// HeightSourceRPC resolves the chain head through a JSON-RPC node.
	HeightSourceRPC = "rpc"
)

// Config represents the complete configuration for ScanKit.
type Config struct {
	// Client contains the explorer API client configuration
	Client ClientConfig `yaml:"client" json:"client" toml:"client"`

	// Scan contains the block range scanning defaults
	Scan ScanConfig `yaml:"scan" json:"scan" toml:"scan"`

	// Store contains the optional record store configuration used by sync
	Store *StoreConfig `yaml:"store,omitempty" json:"store,omitempty" toml:"store,omitempty"`

	// Logging contains logging configuration
	Logging *LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty" toml:"logging,omitempty"`

	// Metrics contains Prometheus metrics configuration
	Metrics *MetricsConfig `yaml:"metrics,omitempty" json:"metrics,omitempty" toml:"metrics,omitempty"`
}

// ClientConfig represents the configuration of the explorer API client.
type ClientConfig struct {
	// APIKeys are the explorer API keys. The first one is used until it gets rate limited,
	// then the client rotates through the rest.
	APIKeys []string `yaml:"api_keys" json:"api_keys" toml:"api_keys"`

	// APIKind selects the explorer: eth, bsc, avax, polygon, optimism, base, arbitrum, fantom, taiko
	APIKind string `yaml:"api_kind" json:"api_kind" toml:"api_kind"`

	// Network is the explorer network, "main" or a testnet name such as "sepolia"
	Network string `yaml:"network" json:"network" toml:"network"`

	// Timeout bounds a single HTTP request
	Timeout common.Duration `yaml:"timeout" json:"timeout" toml:"timeout"`

	// ProxyURL is an optional HTTP proxy for outgoing requests
	ProxyURL string `yaml:"proxy_url,omitempty" json:"proxy_url,omitempty" toml:"proxy_url,omitempty"`

	// RateLimit throttles outgoing requests
	RateLimit *RateLimitConfig `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty" toml:"rate_limit,omitempty"`

	// Retry contains transport retry configuration with exponential backoff
	Retry *RetryConfig `yaml:"retry,omitempty" json:"retry,omitempty" toml:"retry,omitempty"`
}

// ApplyDefaults sets default values for optional client configuration fields.
func (c *ClientConfig) ApplyDefaults() {
	if c.APIKind == "" {
		c.APIKind = urlbuilder.KindEth
	}
	if c.Network == "" {
		c.Network = urlbuilder.MainNetwork
	}
	if c.Timeout.Duration == 0 {
		c.Timeout = common.NewDuration(30 * time.Second) //nolint:mnd
	}
	if c.RateLimit == nil {
		c.RateLimit = &RateLimitConfig{}
	}
	c.RateLimit.ApplyDefaults()

	if c.Retry != nil {
		c.Retry.ApplyDefaults()
	}
}

// Validate checks if the client configuration is valid.
func (c *ClientConfig) Validate() error {
	if len(c.APIKeys) == 0 {
		return fmt.Errorf("client.api_keys: at least one api key is required")
	}

	for i, key := range c.APIKeys {
		if common.ToLowerWithTrim(key) == "" {
			return fmt.Errorf("client.api_keys[%d]: must not be empty", i)
		}
	}

	if !urlbuilder.IsKnownKind(c.APIKind) {
		return fmt.Errorf("client.api_kind: unknown kind '%s'", c.APIKind)
	}

	if c.RateLimit != nil {
		if err := c.RateLimit.Validate(); err != nil {
			return fmt.Errorf("client.rate_limit: %w", err)
		}
	}

	return nil
}

// RateLimitConfig configures the token bucket applied to outgoing requests.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained request rate (free tier allows 5)
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second" toml:"requests_per_second"`

	// Burst is the maximum number of requests sent back to back
	Burst int `yaml:"burst" json:"burst" toml:"burst"`
}

// ApplyDefaults sets default values for rate limit configuration.
func (r *RateLimitConfig) ApplyDefaults() {
	if r.RequestsPerSecond == 0 {
		r.RequestsPerSecond = 5
	}
	if r.Burst == 0 {
		r.Burst = 1
	}
}

// Validate checks if the rate limit configuration is valid.
func (r *RateLimitConfig) Validate() error {
	if r.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative")
	}
	if r.Burst < 0 {
		return fmt.Errorf("burst must not be negative")
	}
	return nil
}

// RetryConfig represents transport retry configuration with exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial request)
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts" toml:"max_attempts"`

	// InitialBackoff is the initial backoff duration before first retry
	InitialBackoff common.Duration `yaml:"initial_backoff" json:"initial_backoff" toml:"initial_backoff"`

	// MaxBackoff is the maximum backoff duration
	MaxBackoff common.Duration `yaml:"max_backoff" json:"max_backoff" toml:"max_backoff"`

	// BackoffMultiplier is the multiplier for exponential backoff
	BackoffMultiplier float64 `yaml:"backoff_multiplier" json:"backoff_multiplier" toml:"backoff_multiplier"`
}

// ApplyDefaults sets default values for retry configuration.
func (r *RetryConfig) ApplyDefaults() {
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 3
	}
	if r.InitialBackoff.Duration == 0 {
		r.InitialBackoff = common.NewDuration(500 * time.Millisecond) //nolint:mnd
	}
	if r.MaxBackoff.Duration == 0 {
		r.MaxBackoff = common.NewDuration(10 * time.Second) //nolint:mnd
	}
	if r.BackoffMultiplier == 0 {
		r.BackoffMultiplier = 2.0
	}
}

// ScanConfig holds the defaults of block range scans.
type ScanConfig struct {
	// StartBlock is the first block of a scan when the caller does not set one
	StartBlock uint64 `yaml:"start_block" json:"start_block" toml:"start_block"`

	// BlocksLimit is the initial window size in blocks
	BlocksLimit uint64 `yaml:"blocks_limit" json:"blocks_limit" toml:"blocks_limit"`

	// BlocksLimitDivider shrinks the window after a failed request
	BlocksLimitDivider uint64 `yaml:"blocks_limit_divider" json:"blocks_limit_divider" toml:"blocks_limit_divider"`

	// HeightSource resolves the end block of open ended scans: "proxy" or "rpc"
	HeightSource string `yaml:"height_source" json:"height_source" toml:"height_source"`

	// RPCURL is the JSON-RPC node used when HeightSource is "rpc"
	RPCURL string `yaml:"rpc_url,omitempty" json:"rpc_url,omitempty" toml:"rpc_url,omitempty"`
}

// ApplyDefaults sets default values for optional scan configuration fields.
func (s *ScanConfig) ApplyDefaults() {
	if s.BlocksLimit == 0 {
		s.BlocksLimit = 2048
	}
	if s.BlocksLimitDivider == 0 {
		s.BlocksLimitDivider = 2
	}
	if s.HeightSource == "" {
		s.HeightSource = HeightSourceProxy
	}
}

// Validate checks if the scan configuration is valid.
func (s *ScanConfig) Validate() error {
	if s.BlocksLimitDivider < 2 {
		return fmt.Errorf("scan.blocks_limit_divider: must be at least 2")
	}

	switch s.HeightSource {
	case HeightSourceProxy:
	case HeightSourceRPC:
		if s.RPCURL == "" {
			return fmt.Errorf("scan.rpc_url is required when height_source is 'rpc'")
		}
	default:
		return fmt.Errorf("scan.height_source: must be one of: proxy, rpc")
	}

	return nil
}

// StoreConfig configures the SQLite record store used by sync.
type StoreConfig struct {
	// DB contains database configuration for the record store
	DB DatabaseConfig `yaml:"db" json:"db" toml:"db"`

	// Maintenance contains optional database maintenance settings
	Maintenance *MaintenanceConfig `yaml:"maintenance,omitempty" json:"maintenance,omitempty" toml:"maintenance,omitempty"`
}

// ApplyDefaults sets default values for optional store configuration fields.
func (s *StoreConfig) ApplyDefaults() {
	s.DB.ApplyDefaults()

	if s.Maintenance != nil {
		s.Maintenance.ApplyDefaults()
	}
}

// Validate checks if the store configuration is valid.
func (s *StoreConfig) Validate() error {
	if s.DB.Path == "" {
		return fmt.Errorf("store.db.path is required")
	}

	if err := s.DB.Validate(); err != nil {
		return fmt.Errorf("store.db: %w", err)
	}

	if s.Maintenance != nil {
		if err := s.Maintenance.Validate(); err != nil {
			return fmt.Errorf("store.maintenance: %w", err)
		}
	}

	return nil
}

// DatabaseConfig represents database configuration.
type DatabaseConfig struct {
	// Path is the file path to the SQLite database
	Path string `yaml:"path" json:"path" toml:"path"`

	// JournalMode sets the SQLite journal mode (e.g., "WAL", "DELETE")
	JournalMode string `yaml:"journal_mode" json:"journal_mode" toml:"journal_mode"`

	// Synchronous sets the synchronization level ("FULL", "NORMAL", "OFF")
	Synchronous string `yaml:"synchronous" json:"synchronous" toml:"synchronous"`

	// BusyTimeout is the time in milliseconds to wait when the database is locked
	BusyTimeout int `yaml:"busy_timeout" json:"busy_timeout" toml:"busy_timeout"`

	// CacheSize is the size of the page cache (negative = KB, positive = pages)
	CacheSize int `yaml:"cache_size" json:"cache_size" toml:"cache_size"`

	// MaxOpenConnections is the maximum number of open database connections
	MaxOpenConnections int `yaml:"max_open_connections" json:"max_open_connections" toml:"max_open_connections"`

	// MaxIdleConnections is the maximum number of idle connections in the pool
	MaxIdleConnections int `yaml:"max_idle_connections" json:"max_idle_connections" toml:"max_idle_connections"`
}

// ApplyDefaults sets default values for optional database configuration fields.
func (d *DatabaseConfig) ApplyDefaults() {
	if d.JournalMode == "" {
		d.JournalMode = "WAL"
	}
	if d.Synchronous == "" {
		d.Synchronous = "NORMAL"
	}
	if d.BusyTimeout == 0 {
		d.BusyTimeout = 5000
	}
	if d.CacheSize == 0 {
		d.CacheSize = 10000
	}
	if d.MaxOpenConnections == 0 {
		d.MaxOpenConnections = 25
	}
	if d.MaxIdleConnections == 0 {
		d.MaxIdleConnections = 5
	}
}

// Validate checks the SQLite pragmas.
func (d *DatabaseConfig) Validate() error {
	if d.JournalMode != "" &&
		!slices.Contains([]string{"WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY"}, d.JournalMode) {
		return fmt.Errorf("journal_mode must be one of: WAL, DELETE, TRUNCATE, PERSIST, MEMORY")
	}

	if d.Synchronous != "" && !slices.Contains([]string{"FULL", "NORMAL", "OFF"}, d.Synchronous) {
		return fmt.Errorf("synchronous must be one of: FULL, NORMAL, OFF")
	}

	return nil
}

// MaintenanceConfig configures database maintenance behavior.
type MaintenanceConfig struct {
	// Enabled controls whether background maintenance runs
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// CheckInterval is how often to run maintenance (e.g., "30m", "1h")
	CheckInterval common.Duration `yaml:"check_interval" json:"check_interval" toml:"check_interval"`

	// WALCheckpointMode controls the WAL checkpoint aggressiveness
	// Options: PASSIVE, FULL, RESTART, TRUNCATE
	WALCheckpointMode string `yaml:"wal_checkpoint_mode" json:"wal_checkpoint_mode" toml:"wal_checkpoint_mode"`

	// VacuumOnStartup runs one maintenance pass before the first sync
	VacuumOnStartup bool `yaml:"vacuum_on_startup" json:"vacuum_on_startup" toml:"vacuum_on_startup"`
}

// ApplyDefaults sets default values for optional maintenance configuration fields.
func (m *MaintenanceConfig) ApplyDefaults() {
	if m.CheckInterval.Duration == 0 {
		m.CheckInterval = common.NewDuration(30 * time.Minute) //nolint:mnd
	}
	if m.WALCheckpointMode == "" {
		m.WALCheckpointMode = "TRUNCATE"
	}
}

// Validate checks if the maintenance configuration is valid.
func (m *MaintenanceConfig) Validate() error {
	if m.WALCheckpointMode != "" &&
		!slices.Contains([]string{"PASSIVE", "FULL", "RESTART", "TRUNCATE"}, m.WALCheckpointMode) {
		return fmt.Errorf("wal_checkpoint_mode: must be one of: PASSIVE, FULL, RESTART, TRUNCATE")
	}

	return nil
}

// LoggingConfig configures logging behavior with per-component log levels.
type LoggingConfig struct {
	// DefaultLevel is the default log level for all components
	// Options: "debug", "info", "warn", "error"
	DefaultLevel string `yaml:"default_level" json:"default_level" toml:"default_level"`

	// Development enables development mode (stack traces, console encoder)
	Development bool `yaml:"development" json:"development" toml:"development"`

	// ComponentLevels sets log levels for specific components
	// Available components:
	//   - network: HTTP transport, throttling and key rotation
	//   - blocks-parser: Adaptive block range scanning
	//   - generators: Paged and block ranged listings
	//   - record-store: SQLite record sink
	//   - height-source: Chain head resolution
	//   - cli: Command line entry points
	ComponentLevels map[string]string `yaml:"component_levels,omitempty" json:"component_levels,omitempty" toml:"component_levels,omitempty"` //nolint:lll
}

// ApplyDefaults sets default values for optional logging configuration fields.
func (l *LoggingConfig) ApplyDefaults() {
	if l.DefaultLevel == "" {
		l.DefaultLevel = "info"
	}
	if l.ComponentLevels == nil {
		l.ComponentLevels = make(map[string]string)
	}
}

// Validate checks if the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	if l.DefaultLevel != "" {
		if _, valid := logger.ValidLogLevels[common.ToLowerWithTrim(l.DefaultLevel)]; !valid {
			return fmt.Errorf("logging.default_level: must be one of: debug, info, warn, error")
		}
	}

	for component, level := range l.ComponentLevels {
		if _, validComponent := common.AllComponents[common.ToLowerWithTrim(component)]; !validComponent {
			return fmt.Errorf("logging.component_levels: unknown component '%s'", component)
		}

		if _, valid := logger.ValidLogLevels[common.ToLowerWithTrim(level)]; !valid {
			return fmt.Errorf("logging.component_levels[%s]: must be one of: debug, info, warn, error", component)
		}
	}

	return nil
}

// GetComponentLevel returns the log level for a specific component.
// Falls back to DefaultLevel if no component-specific level is set.
// A nil config yields "info".
func (l *LoggingConfig) GetComponentLevel(component string) string {
	if l == nil {
		return "info"
	}
	if level, ok := l.ComponentLevels[component]; ok {
		return common.ToLowerWithTrim(level)
	}
	return l.GetDefaultLevel()
}

// GetDefaultLevel returns the default log level.
func (l *LoggingConfig) GetDefaultLevel() string {
	if l == nil || l.DefaultLevel == "" {
		return "info"
	}
	return common.ToLowerWithTrim(l.DefaultLevel)
}

// IsDevelopment returns whether development mode is enabled.
func (l *LoggingConfig) IsDevelopment() bool {
	return l != nil && l.Development
}

// MetricsConfig configures Prometheus metrics exposition.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP endpoint are active
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address to bind the metrics HTTP server to
	// Format: "host:port" or ":port"
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	// Path is the HTTP path where metrics are exposed
	Path string `yaml:"path" json:"path" toml:"path"`
}

// ApplyDefaults sets default values for optional metrics configuration fields.
func (m *MetricsConfig) ApplyDefaults() {
	if m.ListenAddress == "" {
		m.ListenAddress = ":9090"
	}
	if m.Path == "" {
		m.Path = "/metrics"
	}
}

// Validate checks if the metrics configuration is valid.
func (m *MetricsConfig) Validate() error {
	if m.Enabled {
		if m.ListenAddress == "" {
			return fmt.Errorf("listen_address is required when metrics are enabled")
		}
		if m.Path == "" || m.Path[0] != '/' {
			return fmt.Errorf("path must start with '/'")
		}
	}
	return nil
}

// ApplyDefaults sets default values for optional configuration fields.
func (c *Config) ApplyDefaults() {
	c.Client.ApplyDefaults()
	c.Scan.ApplyDefaults()

	if c.Store != nil {
		c.Store.ApplyDefaults()
	}

	if c.Logging != nil {
		c.Logging.ApplyDefaults()
	}

	if c.Metrics != nil {
		c.Metrics.ApplyDefaults()
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Client.Validate(); err != nil {
		return err
	}

	if err := c.Scan.Validate(); err != nil {
		return err
	}

	if c.Store != nil {
		if err := c.Store.Validate(); err != nil {
			return err
		}
	}

	if c.Logging != nil {
		if err := c.Logging.Validate(); err != nil {
			return err
		}
	}

	if c.Metrics != nil {
		if err := c.Metrics.Validate(); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	return nil
}
