// Package logger provides structured logging on top of zerolog.
//
// Loggers are created from a Config (level, json/console format, output)
// and scoped per component:
//
//	log := logger.New(&cfg.Logging, "predict-gateway").WithComponent("dispatch")
//	log.Info("dispatched", logger.Fields("model", "all"))
//
// The request id set by the server middleware travels in the context and
// is attached with WithContext.
package logger
