package auth

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventSignup           ActivityEventType = "auth.signup"
	ActivityEventLoginSuccess     ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure     ActivityEventType = "auth.login.failure"
	ActivityEventPasswordChanged  ActivityEventType = "auth.password.changed"
	ActivityEventProfileUpdated   ActivityEventType = "principal.profile.updated"
	ActivityEventPrincipalDeleted ActivityEventType = "principal.deleted"
)

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType   ActivityEventType
	ActorID     string
	PrincipalID string
	Metadata    map[string]any
	OccurredAt  time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// LoggerActivitySink writes every event to a Logger
func LoggerActivitySink(logger Logger) ActivitySink {
	logger = resolveLogger(logger)
	return ActivitySinkFunc(func(_ context.Context, event ActivityEvent) error {
		logger.Info("activity",
			"event", string(event.EventType),
			"actor", event.ActorID,
			"principal", event.PrincipalID,
			"metadata", event.Metadata,
		)
		return nil
	})
}
