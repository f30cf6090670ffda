package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "carver.cfg.json"

// AgentConfig holds decision-core tuning
type AgentConfig struct {
	Seed           uint64 `json:"seed" mapstructure:"seed"`
	MeleeThreshold int    `json:"meleeThreshold" mapstructure:"meleeThreshold"`
	SwitchToDuel   bool   `json:"switchToDuel" mapstructure:"switchToDuel"`
	PatrolRoute    string `json:"patrolRoute" mapstructure:"patrolRoute"`
	Radar          RadarConfig
	Gun            GunConfig
}

// RadarConfig holds target acquisition settings
type RadarConfig struct {
	Hysteresis      float64 `json:"hysteresis" mapstructure:"hysteresis"`
	ImpactMinEnergy float64 `json:"impactMinEnergy" mapstructure:"impactMinEnergy"`
}

// GunConfig holds fire control settings
type GunConfig struct {
	PowerScale     float64 `json:"powerScale" mapstructure:"powerScale"`
	MaxPower       float64 `json:"maxPower" mapstructure:"maxPower"`
	LowEnergy      float64 `json:"lowEnergy" mapstructure:"lowEnergy"`
	LowPower       float64 `json:"lowPower" mapstructure:"lowPower"`
	MeleeLowEnergy string  `json:"meleeLowEnergy" mapstructure:"meleeLowEnergy"`
	AlignDegrees   float64 `json:"alignDegrees" mapstructure:"alignDegrees"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// StorageConfig selects and configures the strategy store
type StorageConfig struct {
	Type       string       `json:"type" mapstructure:"type"`
	WriteQueue int          `json:"writeQueue" mapstructure:"writeQueue"`
	SQLite     SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// InfluxConfig holds engagement telemetry settings
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// MonitorConfig holds status file settings
type MonitorConfig struct {
	StatusDir string        `json:"statusDir" mapstructure:"statusDir"`
	Interval  time.Duration `json:"interval" mapstructure:"interval"`
}

// SetDefaults registers every default value.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("server.addr", "localhost:9090")

	viper.SetDefault("agent.seed", 0)
	viper.SetDefault("agent.meleeThreshold", 1)
	viper.SetDefault("agent.switchToDuel", false)
	viper.SetDefault("agent.patrolRoute", "[[60,60],[60,260],[160,160],[260,60]]")

	viper.SetDefault("radar.hysteresis", 70)
	viper.SetDefault("radar.impactMinEnergy", 30)

	viper.SetDefault("gun.powerScale", 500)
	viper.SetDefault("gun.maxPower", 3)
	viper.SetDefault("gun.lowEnergy", 20)
	viper.SetDefault("gun.lowPower", 1.2)
	viper.SetDefault("gun.meleeLowEnergy", "max")
	viper.SetDefault("gun.alignDegrees", 10)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.writeQueue", 256)
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.dumpPath", "")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "carver")
	viper.SetDefault("influx.bucket", "engagements")

	viper.SetDefault("monitor.statusDir", "")
	viper.SetDefault("monitor.interval", "1s")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "carver")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetAgentConfig returns the decision-core settings.
func GetAgentConfig() AgentConfig {
	return AgentConfig{
		Seed:           viper.GetUint64("agent.seed"),
		MeleeThreshold: viper.GetInt("agent.meleeThreshold"),
		SwitchToDuel:   viper.GetBool("agent.switchToDuel"),
		PatrolRoute:    viper.GetString("agent.patrolRoute"),
		Radar: RadarConfig{
			Hysteresis:      viper.GetFloat64("radar.hysteresis"),
			ImpactMinEnergy: viper.GetFloat64("radar.impactMinEnergy"),
		},
		Gun: GunConfig{
			PowerScale:     viper.GetFloat64("gun.powerScale"),
			MaxPower:       viper.GetFloat64("gun.maxPower"),
			LowEnergy:      viper.GetFloat64("gun.lowEnergy"),
			LowPower:       viper.GetFloat64("gun.lowPower"),
			MeleeLowEnergy: viper.GetString("gun.meleeLowEnergy"),
			AlignDegrees:   viper.GetFloat64("gun.alignDegrees"),
		},
	}
}

// GetStorageConfig returns the strategy store settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type:       viper.GetString("storage.type"),
		WriteQueue: viper.GetInt("storage.writeQueue"),
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the engagement telemetry settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetMonitorConfig returns the status file settings.
func GetMonitorConfig() MonitorConfig {
	return MonitorConfig{
		StatusDir: viper.GetString("monitor.statusDir"),
		Interval:  viper.GetDuration("monitor.interval"),
	}
}
