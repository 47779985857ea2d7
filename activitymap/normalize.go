// Package activitymap flattens auth activity events into records that
// audit logs and feeds can store without knowing the auth types.
package activitymap

import (
	"context"
	"maps"
	"strings"
	"time"

	auth "github.com/goliatone/go-blog-auth"
)

const (
	// MetadataKeySelfService is set when the actor acted on its own account.
	MetadataKeySelfService = "self_service"
	// MetadataKeyOutcome stores "failure" for rejected attempts.
	MetadataKeyOutcome = "outcome"

	// Redacted replaces the values of redacted metadata keys.
	Redacted = "[redacted]"
)

// Normalized is the flattened activity record
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type mapper struct {
	channel    string
	objectType string
	anonymous  string
	objectID   func(auth.ActivityEvent) string
	redact     map[string]struct{}
}

// Option configures Normalize and Sink
type Option func(*mapper)

func newMapper(opts []Option) *mapper {
	m := &mapper{
		channel:    "auth",
		objectType: "principal",
		anonymous:  "anonymous",
		objectID: func(e auth.ActivityEvent) string {
			return e.PrincipalID
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// WithDefaultChannel sets the channel of every record
func WithDefaultChannel(channel string) Option {
	return func(m *mapper) { m.channel = strings.TrimSpace(channel) }
}

// WithDefaultObjectType sets the object type of every record
func WithDefaultObjectType(objectType string) Option {
	return func(m *mapper) { m.objectType = strings.TrimSpace(objectType) }
}

// WithObjectIDResolver derives the object id from the event instead of
// using the principal id.
func WithObjectIDResolver(resolver func(auth.ActivityEvent) string) Option {
	return func(m *mapper) {
		if resolver != nil {
			m.objectID = resolver
		}
	}
}

// WithActorFallback names the actor of events that carry none, e.g. a
// login attempt for an unknown email.
func WithActorFallback(actorID string) Option {
	return func(m *mapper) { m.anonymous = strings.TrimSpace(actorID) }
}

// WithRedactedKeys masks the values stored under keys in the record metadata
func WithRedactedKeys(keys ...string) Option {
	return func(m *mapper) {
		if m.redact == nil {
			m.redact = make(map[string]struct{}, len(keys))
		}
		for _, k := range keys {
			m.redact[k] = struct{}{}
		}
	}
}

// Normalize flattens event. The event metadata is copied, never mutated.
func Normalize(event auth.ActivityEvent, opts ...Option) Normalized {
	return newMapper(opts).normalize(event)
}

// Sink adapts a record consumer to auth.ActivitySink. A nil consumer drops
// every event.
func Sink(consume func(ctx context.Context, record Normalized) error, opts ...Option) auth.ActivitySink {
	m := newMapper(opts)
	return auth.ActivitySinkFunc(func(ctx context.Context, event auth.ActivityEvent) error {
		if consume == nil {
			return nil
		}
		return consume(ctx, m.normalize(event))
	})
}

func (m *mapper) normalize(event auth.ActivityEvent) Normalized {
	actor := strings.TrimSpace(event.ActorID)
	if actor == "" {
		actor = m.anonymous
	}

	at := event.OccurredAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	return Normalized{
		ActorID:    actor,
		Verb:       string(event.EventType),
		ObjectType: m.objectType,
		ObjectID:   strings.TrimSpace(m.objectID(event)),
		Channel:    m.channel,
		Metadata:   m.metadata(event),
		OccurredAt: at,
	}
}

func (m *mapper) metadata(event auth.ActivityEvent) map[string]any {
	var out map[string]any
	if len(event.Metadata) > 0 {
		out = maps.Clone(event.Metadata)
	}

	derived := map[string]any{}
	if event.ActorID != "" && event.ActorID == event.PrincipalID {
		derived[MetadataKeySelfService] = true
	}
	if event.EventType == auth.ActivityEventLoginFailure {
		derived[MetadataKeyOutcome] = "failure"
	}

	for k, v := range derived {
		if out == nil {
			out = map[string]any{}
		}
		// values supplied by the emitter win
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}

	for k := range m.redact {
		if _, ok := out[k]; ok {
			out[k] = Redacted
		}
	}

	return out
}
