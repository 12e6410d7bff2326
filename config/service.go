package config

import "github.com/kbukum/longscribe/logger"

// ServiceConfig holds the process identity and logging settings. It is
// squashed into Config, so its keys sit at the top level of the file.
type ServiceConfig struct {
	Name string `yaml:"name" mapstructure:"name" validate:"required"`
	// Environment tags exported telemetry.
	Environment string `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	// Debug lowers the default log level to debug.
	Debug   bool          `yaml:"debug" mapstructure:"debug"`
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
}

func (c *ServiceConfig) applyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}
