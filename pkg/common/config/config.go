package config

import (
	"github.com/fystack/keno-odds/pkg/common/enum"
)

type Config struct {
	Environment string     `yaml:"environment" validate:"required,oneof=production development"`
	Logging     LoggingCfg `yaml:"logging"`
	Compute     ComputeCfg `yaml:"compute"`
	Payout      PayoutCfg  `yaml:"payout"`
	Report      ReportCfg  `yaml:"report"`
	KVStore     KVStoreCfg `yaml:"kvstore"`
	NATS        NatsConfig `yaml:"nats"`
}

type LoggingCfg struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	// File receives the log stream instead of stdout (the debug trace file).
	File string `yaml:"file"`
}

type ComputeCfg struct {
	Workers int `yaml:"workers" validate:"gte=0,lte=20"`
}

type PayoutCfg struct {
	// File is a YAML payout schedule; empty uses the reference table.
	File string `yaml:"file"`
}

type ReportCfg struct {
	Sinks []enum.SinkType `yaml:"sinks" validate:"required,min=1,dive,oneof=console csv xlsx kvstore nats"`
	// Precision is the number of decimals shown; unset means DefaultPrecision.
	Precision *int32  `yaml:"precision" validate:"omitempty,gte=0,lte=20"`
	CSV       CSVCfg  `yaml:"csv"`
	XLSX      XLSXCfg `yaml:"xlsx"`
}

type CSVCfg struct {
	Directory string `yaml:"directory"`
}

type XLSXCfg struct {
	Directory string `yaml:"directory"`
}

// Decimals returns the display precision.
func (r ReportCfg) Decimals() int32 {
	if r.Precision == nil {
		return DefaultPrecision
	}
	return *r.Precision
}

type KVStoreCfg struct {
	Type   enum.KVStoreType `yaml:"type" validate:"omitempty,oneof=badger"`
	Badger BadgerConfig     `yaml:"badger"`
}

type BadgerConfig struct {
	Directory string `yaml:"directory"`
	Prefix    string `yaml:"prefix"`
	Codec     string `yaml:"codec" validate:"omitempty,oneof=json gob"`
	InMemory  bool   `yaml:"in_memory"`
}

type NatsConfig struct {
	URL           string        `yaml:"url" validate:"omitempty,url"`
	SubjectPrefix string        `yaml:"subject_prefix"`
	Stream        string        `yaml:"stream"`
	Username      string        `yaml:"username"`
	Password      string        `yaml:"password"`
	TLS           NatsTLSConfig `yaml:"tls"`
}

type NatsTLSConfig struct {
	ClientCert string `yaml:"client_cert"`
	ClientKey  string `yaml:"client_key"`
	CACert     string `yaml:"ca_cert"`
}

// HasSink reports whether s is listed in report.sinks.
func (c *Config) HasSink(s enum.SinkType) bool {
	for _, sink := range c.Report.Sinks {
		if sink == s {
			return true
		}
	}
	return false
}
