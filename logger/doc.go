// Package logger provides structured logging for longscribe using zerolog.
//
// It supports console and JSON output, level configuration, and
// component-scoped loggers carrying run and segment fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.New(&cfg.Logging, "longscribe").WithComponent("rewrite")
//	log.Info("segment done", logger.Fields("segment", 3, "total", 6))
package logger
