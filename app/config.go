package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/paw-chain/swap/app/telemetry"
	swaptypes "github.com/paw-chain/swap/x/swap/types"
	tokentypes "github.com/paw-chain/swap/x/token/types"
)

// EnvPrefix prefixes environment overrides, e.g. SWAP_API_ADDRESS.
const EnvPrefix = "SWAP"

// Config keys
const (
	FlagLogLevel  = "log.level"
	FlagLogFormat = "log.format"

	FlagDBBackend = "db.backend"
	FlagDBDir     = "db.dir"

	FlagAPIAddress         = "api.address"
	FlagAPIReadTimeout     = "api.read-timeout"
	FlagAPIWriteTimeout    = "api.write-timeout"
	FlagAPIShutdownTimeout = "api.shutdown-timeout"
	FlagAPICORSOrigins     = "api.cors-origins"
	FlagAPIRateLimitRPS    = "api.rate-limit-rps"
	FlagAPIRateLimitBurst  = "api.rate-limit-burst"

	FlagMetricsPort    = "telemetry.metrics-port"
	FlagHealthPort     = "telemetry.health-port"
	FlagTracingEnabled = "telemetry.tracing-enabled"
	FlagOTLPEndpoint   = "telemetry.otlp-endpoint"
	FlagSampleRate     = "telemetry.sample-rate"
	FlagEnvironment    = "telemetry.environment"

	FlagFeeNumerator   = "pool.fee-numerator"
	FlagFeeDenominator = "pool.fee-denominator"

	FlagTokens = "tokens"
)

const (
	LogFormatJSON  = "json"
	LogFormatPlain = "plain"

	BackendGoLevelDB = "goleveldb"
	BackendMemDB     = "memdb"
)

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string
	Format string
}

// DBConfig selects the state backend.
type DBConfig struct {
	Backend string
	// Dir is relative to the home directory unless absolute.
	Dir string
}

// APIConfig configures the HTTP API server.
type APIConfig struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	RateLimitRPS    float64
	RateLimitBurst  int
}

// TelemetryConfig configures metrics, health and tracing.
type TelemetryConfig struct {
	MetricsPort    int
	HealthPort     int
	TracingEnabled bool
	OTLPEndpoint   string
	SampleRate     float64
	Environment    string
}

// PoolConfig seeds the swap params written by `swapd init`.
type PoolConfig struct {
	FeeNumerator   uint64
	FeeDenominator uint64
}

// TokenConfig describes one of the two pool tokens. An empty Address is
// derived from the symbol.
type TokenConfig struct {
	Symbol   string
	Name     string
	Decimals uint8
	Address  string
}

// Config is the full application configuration.
type Config struct {
	Log       LogConfig
	DB        DBConfig
	API       APIConfig
	Telemetry TelemetryConfig
	Pool      PoolConfig
	Tokens    []TokenConfig
}

// DefaultTokens are the pair configured by a fresh `swapd init`.
func DefaultTokens() []TokenConfig {
	return []TokenConfig{
		{Symbol: "sBNB", Name: "Synthetic BNB", Decimals: 8},
		{Symbol: "sTSLA", Name: "Synthetic TSLA", Decimals: 8},
	}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	params := swaptypes.DefaultParams()
	return Config{
		Log: LogConfig{Level: "info", Format: LogFormatJSON},
		DB:  DBConfig{Backend: BackendGoLevelDB, Dir: "data"},
		API: APIConfig{
			Address:         "127.0.0.1:1317",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			CORSOrigins:     []string{"http://localhost:3000"},
			RateLimitRPS:    50,
			RateLimitBurst:  100,
		},
		Telemetry: TelemetryConfig{
			MetricsPort:  36660,
			HealthPort:   36661,
			OTLPEndpoint: "localhost:4318",
			SampleRate:   0.1,
			Environment:  "development",
		},
		Pool: PoolConfig{
			FeeNumerator:   params.FeeNumerator,
			FeeDenominator: params.FeeDenominator,
		},
		Tokens: DefaultTokens(),
	}
}

// ConfigPath returns the app.toml location under home.
func ConfigPath(home string) string {
	return filepath.Join(home, "config", "app.toml")
}

// NewViper returns a viper instance with defaults and environment overrides
// installed. flags, if non-nil, are bound by their long names.
func NewViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault(FlagLogLevel, cfg.Log.Level)
	v.SetDefault(FlagLogFormat, cfg.Log.Format)
	v.SetDefault(FlagDBBackend, cfg.DB.Backend)
	v.SetDefault(FlagDBDir, cfg.DB.Dir)
	v.SetDefault(FlagAPIAddress, cfg.API.Address)
	v.SetDefault(FlagAPIReadTimeout, cfg.API.ReadTimeout)
	v.SetDefault(FlagAPIWriteTimeout, cfg.API.WriteTimeout)
	v.SetDefault(FlagAPIShutdownTimeout, cfg.API.ShutdownTimeout)
	v.SetDefault(FlagAPICORSOrigins, cfg.API.CORSOrigins)
	v.SetDefault(FlagAPIRateLimitRPS, cfg.API.RateLimitRPS)
	v.SetDefault(FlagAPIRateLimitBurst, cfg.API.RateLimitBurst)
	v.SetDefault(FlagMetricsPort, cfg.Telemetry.MetricsPort)
	v.SetDefault(FlagHealthPort, cfg.Telemetry.HealthPort)
	v.SetDefault(FlagTracingEnabled, cfg.Telemetry.TracingEnabled)
	v.SetDefault(FlagOTLPEndpoint, cfg.Telemetry.OTLPEndpoint)
	v.SetDefault(FlagSampleRate, cfg.Telemetry.SampleRate)
	v.SetDefault(FlagEnvironment, cfg.Telemetry.Environment)
	v.SetDefault(FlagFeeNumerator, cfg.Pool.FeeNumerator)
	v.SetDefault(FlagFeeDenominator, cfg.Pool.FeeDenominator)
	v.SetDefault(FlagTokens, tokensToMaps(cfg.Tokens))
}

// LoadConfig reads home/config/app.toml, if present, on top of the defaults
// and environment held by v.
func LoadConfig(v *viper.Viper, home string) (Config, error) {
	path := ConfigPath(home)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	tokens, err := decodeTokens(v.Get(FlagTokens))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Log: LogConfig{
			Level:  v.GetString(FlagLogLevel),
			Format: v.GetString(FlagLogFormat),
		},
		DB: DBConfig{
			Backend: v.GetString(FlagDBBackend),
			Dir:     v.GetString(FlagDBDir),
		},
		API: APIConfig{
			Address:         v.GetString(FlagAPIAddress),
			ReadTimeout:     v.GetDuration(FlagAPIReadTimeout),
			WriteTimeout:    v.GetDuration(FlagAPIWriteTimeout),
			ShutdownTimeout: v.GetDuration(FlagAPIShutdownTimeout),
			CORSOrigins:     v.GetStringSlice(FlagAPICORSOrigins),
			RateLimitRPS:    v.GetFloat64(FlagAPIRateLimitRPS),
			RateLimitBurst:  v.GetInt(FlagAPIRateLimitBurst),
		},
		Telemetry: TelemetryConfig{
			MetricsPort:    v.GetInt(FlagMetricsPort),
			HealthPort:     v.GetInt(FlagHealthPort),
			TracingEnabled: v.GetBool(FlagTracingEnabled),
			OTLPEndpoint:   v.GetString(FlagOTLPEndpoint),
			SampleRate:     v.GetFloat64(FlagSampleRate),
			Environment:    v.GetString(FlagEnvironment),
		},
		Pool: PoolConfig{
			FeeNumerator:   v.GetUint64(FlagFeeNumerator),
			FeeDenominator: v.GetUint64(FlagFeeDenominator),
		},
		Tokens: tokens,
	}

	if !filepath.IsAbs(cfg.DB.Dir) {
		cfg.DB.Dir = filepath.Join(home, cfg.DB.Dir)
	}
	return cfg, cfg.Validate()
}

// WriteDefaultConfig writes the default app.toml under home. An existing file
// is left alone unless overwrite is set.
func WriteDefaultConfig(home string, overwrite bool) (string, error) {
	path := ConfigPath(home)
	if _, err := os.Stat(path); err == nil && !overwrite {
		return "", fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("failed to create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	cfg := DefaultConfig()
	setDefaults(v, cfg)
	// durations are written as strings so the file stays human editable
	v.Set(FlagAPIReadTimeout, cfg.API.ReadTimeout.String())
	v.Set(FlagAPIWriteTimeout, cfg.API.WriteTimeout.String())
	v.Set(FlagAPIShutdownTimeout, cfg.API.ShutdownTimeout.String())

	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

func tokensToMaps(tokens []TokenConfig) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(tokens))
	for _, t := range tokens {
		m := map[string]interface{}{
			"symbol":   t.Symbol,
			"name":     t.Name,
			"decimals": t.Decimals,
		}
		if t.Address != "" {
			m["address"] = t.Address
		}
		out = append(out, m)
	}
	return out
}

// decodeTokens accepts the shapes viper produces for [[tokens]]: typed maps
// from defaults and generic slices from TOML.
func decodeTokens(raw interface{}) ([]TokenConfig, error) {
	if typed, ok := raw.([]map[string]interface{}); ok {
		items := make([]interface{}, len(typed))
		for i := range typed {
			items[i] = typed[i]
		}
		raw = items
	}

	items, err := cast.ToSliceE(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FlagTokens, err)
	}

	tokens := make([]TokenConfig, 0, len(items))
	for i, item := range items {
		m, err := cast.ToStringMapE(item)
		if err != nil {
			return nil, fmt.Errorf("invalid %s[%d]: %w", FlagTokens, i, err)
		}
		decimals, err := cast.ToUint8E(m["decimals"])
		if err != nil {
			return nil, fmt.Errorf("invalid %s[%d].decimals: %w", FlagTokens, i, err)
		}
		tokens = append(tokens, TokenConfig{
			Symbol:   cast.ToString(m["symbol"]),
			Name:     cast.ToString(m["name"]),
			Decimals: decimals,
			Address:  cast.ToString(m["address"]),
		})
	}
	return tokens, nil
}

// Validate checks the configuration is complete and consistent.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid %s %q: %w", FlagLogLevel, c.Log.Level, err)
	}
	if c.Log.Format != LogFormatJSON && c.Log.Format != LogFormatPlain {
		return fmt.Errorf("invalid %s %q: must be %s or %s", FlagLogFormat, c.Log.Format, LogFormatJSON, LogFormatPlain)
	}

	switch c.DB.Backend {
	case BackendMemDB:
	case BackendGoLevelDB:
		if c.DB.Dir == "" {
			return fmt.Errorf("%s is required for %s", FlagDBDir, BackendGoLevelDB)
		}
	default:
		return fmt.Errorf("invalid %s %q", FlagDBBackend, c.DB.Backend)
	}

	if c.API.Address == "" {
		return fmt.Errorf("%s is required", FlagAPIAddress)
	}
	if c.API.ReadTimeout <= 0 || c.API.WriteTimeout <= 0 || c.API.ShutdownTimeout <= 0 {
		return fmt.Errorf("api timeouts must be positive")
	}
	if c.API.RateLimitRPS <= 0 || c.API.RateLimitBurst <= 0 {
		return fmt.Errorf("api rate limit must be positive")
	}

	for _, port := range []struct {
		key   string
		value int
	}{{FlagMetricsPort, c.Telemetry.MetricsPort}, {FlagHealthPort, c.Telemetry.HealthPort}} {
		if port.value <= 0 || port.value > 65535 {
			return fmt.Errorf("invalid %s %d", port.key, port.value)
		}
	}
	if c.Telemetry.MetricsPort == c.Telemetry.HealthPort {
		return fmt.Errorf("metrics and health ports must differ")
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("invalid %s %v: must be between 0 and 1", FlagSampleRate, c.Telemetry.SampleRate)
	}

	if err := c.SwapParams().Validate(); err != nil {
		return err
	}

	if len(c.Tokens) != 2 {
		return fmt.Errorf("exactly two tokens must be configured, got %d", len(c.Tokens))
	}
	for _, t := range c.Tokens {
		if t.Address != "" && !common.IsHexAddress(t.Address) {
			return fmt.Errorf("token %s: invalid address %q", t.Symbol, t.Address)
		}
		if err := t.Metadata().Validate(); err != nil {
			return err
		}
	}
	if c.Tokens[0].Metadata().Address == c.Tokens[1].Metadata().Address {
		return fmt.Errorf("pool tokens must differ")
	}
	return nil
}

// SwapParams returns the pool params seeded into a new genesis.
func (c Config) SwapParams() swaptypes.Params {
	return swaptypes.Params{
		FeeNumerator:   c.Pool.FeeNumerator,
		FeeDenominator: c.Pool.FeeDenominator,
	}
}

// TracingConfig returns the telemetry provider config.
func (c Config) TracingConfig() telemetry.Config {
	return telemetry.Config{
		Enabled:      c.Telemetry.TracingEnabled,
		OTLPEndpoint: c.Telemetry.OTLPEndpoint,
		SampleRate:   c.Telemetry.SampleRate,
		Environment:  c.Telemetry.Environment,
	}
}

// Metadata resolves the token's ledger metadata.
func (t TokenConfig) Metadata() tokentypes.Metadata {
	addr := tokentypes.DefaultAddress(t.Symbol)
	if t.Address != "" {
		addr = common.HexToAddress(t.Address)
	}
	name := t.Name
	if name == "" {
		name = t.Symbol
	}
	return tokentypes.Metadata{
		Address:  addr,
		Name:     name,
		Symbol:   t.Symbol,
		Decimals: t.Decimals,
	}
}
