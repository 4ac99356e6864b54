// Package logger builds structured loggers on top of log/slog and provides attribute
// helpers with consistent key names.
//
// # Basic Usage
//
//	log := logger.New(logger.WithDevelopment("sportsfeed"))
//	log.Info("feed started", logger.Component("feed"))
//
// Environment presets:
//
//	logger.New(logger.WithDevelopment("app")) // text, debug
//	logger.New(logger.WithStaging("app"))     // JSON, info
//	logger.New(logger.WithProduction("app"))  // JSON, info
//	logger.New(logger.WithEnvironment(cfg.Env, cfg.AppName))
//
// # Context Extractors
//
// Extractors add attributes from the context of every *Context call:
//
//	log := logger.New(
//		logger.WithProduction("app"),
//		logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
//			id := event.EventID(ctx)
//			return logger.EventID(id), id != ""
//		}),
//	)
//
// # Attribute Helpers
//
//	log.Error("event handler failed",
//		logger.Subscription("ResultError"),
//		logger.EventID(id),
//		logger.Event("ResultError"),
//		logger.Duration(time.Since(start)),
//		logger.Error(err),
//	)
//
// Helpers return an empty attribute for nil errors and empty identifiers, so they can be
// passed unconditionally.
package logger
