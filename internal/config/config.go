package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"lightsensord/internal/sensor"
)

const envPrefix = "ALS"

// Config is the daemon configuration (configs/config.yml + ALS_* env).
type Config struct {
	Port string `mapstructure:"port"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	DB struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"db"`

	Auth struct {
		SigningKey string        `mapstructure:"signing_key"`
		TokenTTL   time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"auth"`

	Sensor      SensorConfig      `mapstructure:"sensor"`
	Calibration CalibrationConfig `mapstructure:"calibration"`
}

type SensorConfig struct {
	InputDevice    string        `mapstructure:"input_device"`
	EventSize      int           `mapstructure:"event_size"`
	ReaderCapacity int           `mapstructure:"reader_capacity"`
	PollBatch      int           `mapstructure:"poll_batch"`
	PollTimeout    time.Duration `mapstructure:"poll_timeout"`
	EnableOnStart  bool          `mapstructure:"enable_on_start"`
	InitialReading bool          `mapstructure:"initial_reading"`
	SysfsDir       string        `mapstructure:"sysfs_dir"`
	EnableAttr     string        `mapstructure:"enable_attr"`
	Channels       struct {
		Ambient uint16 `mapstructure:"ambient"`
		White   uint16 `mapstructure:"white"`
	} `mapstructure:"channels"`
}

type CalibrationConfig struct {
	File             string `mapstructure:"file"`
	ValidateEndpoint string `mapstructure:"validate_endpoint"`
	FactorEndpoint   string `mapstructure:"factor_endpoint"`
}

const defaultSysfsDir = "/sys/bus/i2c/devices/i2c-5/5-0029/"

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "lightsensor.db")
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", time.Hour)

	v.SetDefault("sensor.input_device", "/dev/input/event4")
	v.SetDefault("sensor.event_size", sensor.EventSize64)
	v.SetDefault("sensor.reader_capacity", 4)
	v.SetDefault("sensor.poll_batch", 16)
	v.SetDefault("sensor.poll_timeout", 500*time.Millisecond)
	v.SetDefault("sensor.enable_on_start", true)
	v.SetDefault("sensor.initial_reading", false)
	v.SetDefault("sensor.sysfs_dir", defaultSysfsDir)
	v.SetDefault("sensor.enable_attr", "enable")
	v.SetDefault("sensor.channels.ambient", sensor.DefaultChannels.Ambient)
	v.SetDefault("sensor.channels.white", sensor.DefaultChannels.White)

	v.SetDefault("calibration.file", defaultSysfsDir+"cal")
	v.SetDefault("calibration.validate_endpoint", defaultSysfsDir+"calibration")
	v.SetDefault("calibration.factor_endpoint", defaultSysfsDir+"calibration")
}

// Load reads config.yml from dir (a missing file is fine, defaults apply),
// an optional .env from the working directory, then ALS_* overrides.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the sensor cannot run with.
func (c *Config) Validate() error {
	if c.Sensor.PollBatch < 1 {
		return fmt.Errorf("sensor.poll_batch must be >= 1, got %d", c.Sensor.PollBatch)
	}
	if c.Sensor.ReaderCapacity < 1 {
		return fmt.Errorf("sensor.reader_capacity must be >= 1, got %d", c.Sensor.ReaderCapacity)
	}
	if c.Sensor.EventSize != sensor.EventSize64 && c.Sensor.EventSize != sensor.EventSize32 {
		return fmt.Errorf("sensor.event_size must be %d or %d, got %d", sensor.EventSize64, sensor.EventSize32, c.Sensor.EventSize)
	}
	if c.Sensor.Channels.Ambient == c.Sensor.Channels.White {
		return fmt.Errorf("sensor.channels: %w", sensor.ErrChannelConflict)
	}
	if c.Auth.SigningKey == "" {
		return errors.New("auth.signing_key is required")
	}
	return nil
}

// SensorDriverConfig maps the file layout onto sensor.Config.
func (c *Config) SensorDriverConfig() sensor.Config {
	return sensor.Config{
		Calibration: sensor.CalibrationPaths{
			File:             c.Calibration.File,
			ValidateEndpoint: c.Calibration.ValidateEndpoint,
			FactorEndpoint:   c.Calibration.FactorEndpoint,
		},
		EnablePath: strings.TrimRight(c.Sensor.SysfsDir, "/") + "/" + c.Sensor.EnableAttr,
		Channels: sensor.ChannelMap{
			Ambient: c.Sensor.Channels.Ambient,
			White:   c.Sensor.Channels.White,
		},
		EnableOnStart:  c.Sensor.EnableOnStart,
		InitialReading: c.Sensor.InitialReading,
	}
}
