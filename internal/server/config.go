package server

import (
	"time"
)

type Config struct {
	Port            int           `yaml:"port"`
	Host            string        `yaml:"host"`
	CertFile        string        `yaml:"certFile"`
	KeyFile         string        `yaml:"keyFile"`
	TLSReload       time.Duration `yaml:"tlsReload"`
	AntidosBuckets  int           `yaml:"antidosBuckets"`
	AntidosPeriod   time.Duration `yaml:"antidosPeriod"`
	MaxConcurrent   int           `yaml:"maxConcurrent"`
	MaxMessageBytes int64         `yaml:"maxMessageBytes"`
	AdminKey        string        `yaml:"adminKey"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}
