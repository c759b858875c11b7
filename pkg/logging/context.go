package logging

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WithPlan creates a logger scoped to a single execution plan.
// Use this to automatically include the plan ID in all logs emitted during
// planning, optimization, and execution.
//
// Example:
//
//	log := logging.WithPlan(planID)
//	log.Debug().Str("pass", "filter-pushdown").Msg("inserted filter")
func WithPlan(planID uuid.UUID) zerolog.Logger {
	return GetLogger().With().Str("plan_id", planID.String()).Logger()
}

// WithComponent creates a logger with component/subsystem context.
//
// Example:
//
//	log := logging.WithComponent("optimizer")
//	log.Info().Msg("entry-point selection complete")
func WithComponent(component string) zerolog.Logger {
	return GetLogger().With().Str("component", component).Logger()
}

// WithOperator creates a logger scoped to a single operator instance,
// identified by its type tag and the alias(es) it modifies.
//
// Example:
//
//	log := logging.WithOperator("EXPAND_ALL", "y")
//	log.Debug().Msg("refresh requested")
func WithOperator(opType, modifies string) zerolog.Logger {
	return GetLogger().With().Str("op_type", opType).Str("modifies", modifies).Logger()
}

// WithError creates a logger with error context.
// Use this when logging errors to include the error in structured format.
func WithError(err error) zerolog.Logger {
	return GetLogger().With().Err(err).Logger()
}
