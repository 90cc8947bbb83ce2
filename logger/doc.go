// Package logger provides structured logging for apiwrap using zerolog.
//
// It supports multiple output formats (JSON, console), log level
// configuration, and component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("wrapper")
//	log.Debug("request sent", logger.Fields("method", "GET", "status", 200))
package logger
