// Package logger builds configured *slog.Logger instances.
//
// Production services use the JSON format for log aggregation; development
// uses the text format with debug level. Static attributes (service name,
// version) can be attached to every record.
//
//	log := logger.New(
//	    logger.WithFormat(logger.FormatJSON),
//	    logger.WithLevel(slog.LevelInfo),
//	    logger.WithAttr(slog.String("service", "dashboard")),
//	)
package logger
