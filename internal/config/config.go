package config

import (
	"os"
	"strings"

	"codeberg.org/mutker/pulsemon/internal/errors"
	"codeberg.org/mutker/pulsemon/internal/pulse"
	"codeberg.org/mutker/pulsemon/internal/sensor"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultConfigPath = "/etc/pulsemon.conf"
	DefaultEnvPrefix  = "PULSEMON"
	configPathEnv     = "PULSEMON_CONFIG"

	DefaultSamplingRate = pulse.DefaultSamplingRate
	DefaultMinAmplitude = pulse.DefaultMinAmplitude
	DefaultSource       = string(sensor.KindSimulator)
	DefaultI2CBus       = "/dev/i2c-1"
	DefaultI2CAddress   = 0x48
	DefaultSimBPM       = 72
	DefaultSimSeed      = 1
	DefaultListen       = ":5000"
	DefaultNATSSubject  = "pulse.reading"
	DefaultMQTTTopic    = "pulsemon/reading"
	DefaultPublishEvery = 1
	DefaultLogLevel     = string(LogLevelInfo)
)

type Config struct {
	SamplingRate int     `mapstructure:"sampling_rate"`
	MinAmplitude float64 `mapstructure:"min_amplitude"`

	Source     string  `mapstructure:"source"`
	I2CBus     string  `mapstructure:"i2c_bus"`
	I2CAddress int     `mapstructure:"i2c_address"`
	ReplayDB   string  `mapstructure:"replay_db"`
	SimBPM     float64 `mapstructure:"sim_bpm"`
	SimNoise   float64 `mapstructure:"sim_noise"`
	SimSeed    int64   `mapstructure:"sim_seed"`

	// CaptureDB records every raw sample for later replay; empty disables it
	CaptureDB string `mapstructure:"capture_db"`

	// Listen is the HTTP address; empty disables the server
	Listen string `mapstructure:"listen"`

	NATSURL      string `mapstructure:"nats_url"`
	NATSSubject  string `mapstructure:"nats_subject"`
	MQTTBroker   string `mapstructure:"mqtt_broker"`
	MQTTTopic    string `mapstructure:"mqtt_topic"`
	PublishEvery int    `mapstructure:"publish_every"`

	LogLevel string `mapstructure:"log_level"`
}

// flagKeys maps command-line flag names to config keys
var flagKeys = map[string]string{
	"sampling-rate": "sampling_rate",
	"min-amplitude": "min_amplitude",
	"source":        "source",
	"i2c-bus":       "i2c_bus",
	"i2c-address":   "i2c_address",
	"replay-db":     "replay_db",
	"sim-bpm":       "sim_bpm",
	"sim-noise":     "sim_noise",
	"sim-seed":      "sim_seed",
	"capture-db":    "capture_db",
	"listen":        "listen",
	"nats-url":      "nats_url",
	"nats-subject":  "nats_subject",
	"mqtt-broker":   "mqtt_broker",
	"mqtt-topic":    "mqtt_topic",
	"publish-every": "publish_every",
	"log-level":     "log_level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sampling_rate", DefaultSamplingRate)
	v.SetDefault("min_amplitude", DefaultMinAmplitude)
	v.SetDefault("source", DefaultSource)
	v.SetDefault("i2c_bus", DefaultI2CBus)
	v.SetDefault("i2c_address", DefaultI2CAddress)
	v.SetDefault("replay_db", "")
	v.SetDefault("sim_bpm", DefaultSimBPM)
	v.SetDefault("sim_noise", 0.0)
	v.SetDefault("sim_seed", DefaultSimSeed)
	v.SetDefault("capture_db", "")
	v.SetDefault("listen", DefaultListen)
	v.SetDefault("nats_url", "")
	v.SetDefault("nats_subject", DefaultNATSSubject)
	v.SetDefault("mqtt_broker", "")
	v.SetDefault("mqtt_topic", DefaultMQTTTopic)
	v.SetDefault("publish_every", DefaultPublishEvery)
	v.SetDefault("log_level", DefaultLogLevel)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("pulsemon", pflag.ContinueOnError)

	fs.Int("sampling-rate", DefaultSamplingRate, "Sensor sampling rate in Hz")
	fs.Float64("min-amplitude", DefaultMinAmplitude, "Minimum peak-to-peak amplitude for finger contact")
	fs.String("source", DefaultSource, "Sample source: ads1115, simulator or replay")
	fs.String("i2c-bus", DefaultI2CBus, "I2C bus device for the ADS1115")
	fs.Int("i2c-address", DefaultI2CAddress, "I2C address of the ADS1115")
	fs.String("replay-db", "", "SQLite capture to replay")
	fs.Float64("sim-bpm", DefaultSimBPM, "Simulated heart rate")
	fs.Float64("sim-noise", 0, "Standard deviation of simulated noise")
	fs.Int64("sim-seed", DefaultSimSeed, "Seed for simulated noise")
	fs.String("capture-db", "", "Record raw samples to this SQLite capture file")
	fs.String("listen", DefaultListen, "HTTP listen address, empty to disable")
	fs.String("nats-url", "", "NATS server URL, empty to disable")
	fs.String("nats-subject", DefaultNATSSubject, "NATS subject for readings")
	fs.String("mqtt-broker", "", "MQTT broker address, empty to disable")
	fs.String("mqtt-topic", DefaultMQTTTopic, "MQTT topic for readings")
	fs.Int("publish-every", DefaultPublishEvery, "Publish every N ticks")
	fs.String("log-level", DefaultLogLevel, "Log level: debug, info, warning or error")

	return fs
}

// Load reads the configuration from, in increasing precedence, defaults,
// the TOML config file, environment variables and command-line flags.
func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(o)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, o.configPath); err != nil {
		return nil, err
	}

	fs := newFlagSet()
	if err := fs.Parse(o.args); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidArgument, err)
	}
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	errFactory := errors.New()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path == "" {
		if _, err := os.Stat(DefaultConfigPath); err != nil {
			return nil
		}
		path = DefaultConfigPath
	}

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return errFactory.Wrap(errors.ErrReadConfig, err)
	}

	return nil
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.SamplingRate <= 0 {
		return errFactory.WithData(errors.ErrInvalidSamplingRate, c.SamplingRate)
	}
	if c.MinAmplitude < 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, struct {
			Key   string
			Value float64
		}{"min_amplitude", c.MinAmplitude})
	}
	if !sensor.Kind(c.Source).IsValid() {
		return errFactory.WithData(errors.ErrInvalidSource, c.Source)
	}
	if sensor.Kind(c.Source) == sensor.KindReplay && c.ReplayDB == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "replay_db is required for the replay source")
	}
	if c.PublishEvery < 1 {
		return errFactory.WithData(errors.ErrInvalidConfig, struct {
			Key   string
			Value int
		}{"publish_every", c.PublishEvery})
	}
	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

// Params returns the signal-processing tuning for this configuration
func (c *Config) Params() pulse.Params {
	p := pulse.DefaultParams(c.SamplingRate)
	p.MinAmplitude = c.MinAmplitude

	return p
}

// SensorConfig returns the sample source configuration
func (c *Config) SensorConfig() sensor.Config {
	sc := sensor.DefaultConfig()
	sc.Kind = sensor.Kind(c.Source)
	sc.Bus = c.I2CBus
	sc.Address = c.I2CAddress
	sc.SamplingRate = c.SamplingRate
	sc.BPM = c.SimBPM
	sc.Noise = c.SimNoise
	sc.Seed = c.SimSeed
	sc.ReplayPath = c.ReplayDB
	sc.CapturePath = c.CaptureDB

	return sc
}
