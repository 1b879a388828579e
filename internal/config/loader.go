package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/soltixdb/greenhouse/internal/analytics"
	"github.com/spf13/viper"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")               // Current directory
		v.AddConfigPath("./configs")       // Project configs directory
		v.AddConfigPath("/etc/greenhouse") // System-wide config
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides (GREENHOUSE_DATABASE_DSN -> database.dsn)
	v.SetEnvPrefix("GREENHOUSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	// Server defaults
	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.http_port", def.Server.HTTPPort)
	v.SetDefault("server.read_timeout", def.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", def.Server.WriteTimeout)

	// Database defaults
	v.SetDefault("database.driver", def.Database.Driver)
	v.SetDefault("database.table", def.Database.Table)
	v.SetDefault("database.max_open_conns", def.Database.MaxOpenConns)
	v.SetDefault("database.auto_migrate", def.Database.AutoMigrate)
	v.SetDefault("database.max_readings", def.Database.MaxReadings)

	// Cache defaults
	v.SetDefault("cache.enabled", def.Cache.Enabled)
	v.SetDefault("cache.redis_url", def.Cache.RedisURL)
	v.SetDefault("cache.ttl", def.Cache.TTL)
	v.SetDefault("cache.prefix", def.Cache.Prefix)

	// Queue defaults
	v.SetDefault("queue.type", def.Queue.Type)
	v.SetDefault("queue.url", def.Queue.URL)
	v.SetDefault("queue.readings_subject", def.Queue.ReadingsSubject)
	v.SetDefault("queue.alerts_subject", def.Queue.AlertsSubject)
	v.SetDefault("queue.stream_prefix", def.Queue.StreamPrefix)
	v.SetDefault("queue.redis_group", def.Queue.RedisGroup)
	v.SetDefault("queue.kafka_group_id", def.Queue.KafkaGroupID)

	// Analytics defaults
	v.SetDefault("analytics.history_limit", def.Analytics.HistoryLimit)
	v.SetDefault("analytics.forecast_horizon", def.Analytics.ForecastHorizon)
	v.SetDefault("analytics.rise_threshold", def.Analytics.RiseThreshold)
	v.SetDefault("analytics.soil_volume_liters", def.Analytics.SoilVolumeLiters)
	v.SetDefault("analytics.pump_flow_rate_lpm", def.Analytics.PumpFlowRateLPM)
	v.SetDefault("analytics.spike_threshold", def.Analytics.SpikeThreshold)

	// Monitor defaults
	v.SetDefault("monitor.enabled", def.Monitor.Enabled)
	v.SetDefault("monitor.interval", def.Monitor.Interval)
	v.SetDefault("monitor.timeout", def.Monitor.Timeout)
	v.SetDefault("monitor.demo_fallback", def.Monitor.DemoFallback)

	// Report defaults
	v.SetDefault("report.title", def.Report.Title)
	v.SetDefault("report.timezone", def.Report.Timezone)

	// Logging defaults
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.output_path", def.Logging.OutputPath)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			HTTPPort:     3000,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       "memory",
			Table:        "sensor_readings",
			MaxOpenConns: 10,
			AutoMigrate:  true,
			MaxReadings:  100000,
		},
		Cache: CacheConfig{
			Enabled:  false,
			RedisURL: "redis://localhost:6379/0",
			TTL:      15 * time.Second,
			Prefix:   "greenhouse",
		},
		Queue: QueueConfig{
			Type:            "none",
			URL:             "nats://localhost:4222",
			ReadingsSubject: "greenhouse.readings",
			AlertsSubject:   "greenhouse.alerts",
			StreamPrefix:    "greenhouse",
			RedisGroup:      "greenhouse-group",
			KafkaGroupID:    "greenhouse",
		},
		Analytics: AnalyticsConfig{
			HistoryLimit:     100,
			ForecastHorizon:  12,
			RiseThreshold:    5,
			SoilVolumeLiters: 20,
			PumpFlowRateLPM:  2.5,
			SpikeThreshold:   3,
		},
		Monitor: MonitorConfig{
			Enabled:      true,
			Interval:     30 * time.Second,
			Timeout:      10 * time.Second,
			DemoFallback: false,
		},
		Report: ReportConfig{
			Title:    "Greenhouse Analysis Report",
			Timezone: "UTC",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}

// SensorSpecs returns the default optimal ranges with configured overrides applied,
// in sensor enumeration order.
func (c *AnalyticsConfig) SensorSpecs() []analytics.SensorSpec {
	specs := analytics.DefaultSensorSpecs()
	for name, th := range c.Thresholds {
		sensor, ok := analytics.ParseSensor(name)
		if !ok {
			continue
		}
		for i := range specs {
			if specs[i].Sensor == sensor {
				specs[i].Threshold = th
			}
		}
	}
	return specs
}
