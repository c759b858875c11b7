// Package logging provides a process-wide structured logger for the query
// engine.
//
// The package wraps [github.com/rs/zerolog] and exposes a single global
// logger instance that is initialized once and then retrieved via GetLogger.
// All subsystems should obtain a logger through this package rather than
// constructing their own zerolog.Logger values, so that log level and output
// destination are controlled from a single place.
//
// # Initialisation
//
// Call Init (or InitDefault for sensible defaults) once at program startup,
// before any goroutines that might call GetLogger are spawned:
//
//	if err := logging.Init(logging.Config{Level: logging.LevelDebug}); err != nil {
//	    log.Fatal(err)
//	}
//
// InitDefault writes INFO-level JSON logs to stdout.
//
// # Retrieving the logger
//
//	logger := logging.GetLogger()
//	logger.Info().Str("graph", graphName).Msg("plan constructed")
//
// If GetLogger is called before Init, a default stdout logger is created
// lazily (via sync.Once) so that packages that log during init are safe.
//
// # Context helpers
//
// Several helpers return child loggers pre-populated with structured fields,
// reducing repetition in hot paths:
//
//	log := logging.WithPlan(planID)          // adds plan_id field
//	log := logging.WithComponent("planner")  // adds component field
//	log := logging.WithOperator(t, modifies) // adds op_type/modifies fields
package logging
