package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/fystack/keno-odds/pkg/common/constant"
	"github.com/fystack/keno-odds/pkg/common/enum"
)

var validate = validator.New()

const (
	DefaultPrecision       = 10
	DefaultReportDirectory = "Data"
	DefaultBadgerDir       = "data/badger"
	DefaultBadgerPrefix    = "keno"
	DefaultSubjectPrefix   = "keno"
	DefaultStream          = "KENO"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML config, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("struct validation failed: %w", err)
	}
	if cfg.HasSink(enum.SinkNATS) && cfg.NATS.URL == "" && cfg.Environment == constant.EnvProduction {
		return nil, errors.New("nats sink requires nats.url in production")
	}

	return &cfg, nil
}

// Default returns a development config that prints to the console.
func Default() *Config {
	cfg := &Config{
		Environment: constant.EnvDevelopment,
		Report:      ReportCfg{Sinks: []enum.SinkType{enum.SinkConsole}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = constant.EnvDevelopment
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Report.Precision == nil {
		precision := int32(DefaultPrecision)
		c.Report.Precision = &precision
	}
	if c.Report.CSV.Directory == "" {
		c.Report.CSV.Directory = DefaultReportDirectory
	}
	if c.Report.XLSX.Directory == "" {
		c.Report.XLSX.Directory = DefaultReportDirectory
	}
	if c.KVStore.Type == "" {
		c.KVStore.Type = enum.KVStoreTypeBadger
	}
	if c.KVStore.Badger.Directory == "" {
		c.KVStore.Badger.Directory = DefaultBadgerDir
	}
	if c.KVStore.Badger.Prefix == "" {
		c.KVStore.Badger.Prefix = DefaultBadgerPrefix
	}
	if c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = DefaultSubjectPrefix
	}
	if c.NATS.Stream == "" {
		c.NATS.Stream = DefaultStream
	}
}
