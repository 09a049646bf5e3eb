package automod

import (
	"context"
	"log/slog"
	"time"
)

// BaseContext is shared state for rule execution against a single event.
type BaseContext struct {
	// actual golang "context.Context", for timeouts etc
	Ctx context.Context

	// slog logger handle, with event fields pre-bound
	Logger *slog.Logger

	engine  *Engine
	effects *Effects
}

// EventContext is the rule execution context for one normalized event under
// one guild policy.
type EventContext struct {
	BaseContext

	Event  Event
	Policy GuildPolicy
}

// MessageContext is passed to message rules.
type MessageContext struct {
	EventContext
}

// JoinContext is passed to join rules.
type JoinContext struct {
	EventContext
}

func (eng *Engine) newEventContext(ctx context.Context, evt Event, policy GuildPolicy) EventContext {
	logger := eng.Logger.With(
		"eventKind", evt.Kind,
		"guildID", evt.GuildID,
		"userID", evt.UserID,
	)
	return EventContext{
		BaseContext: BaseContext{
			Ctx:     ctx,
			Logger:  logger,
			engine:  eng,
			effects: &Effects{},
		},
		Event:  evt,
		Policy: policy,
	}
}

// Record appends the event's timestamp to a per-subject counter series.
func (c *EventContext) Record(name string) error {
	return c.engine.Timelines.Record(c.Ctx, name, c.Event.SubjectKey(), c.Event.Timestamp)
}

// RecordGuild appends the event's timestamp to a guild-wide counter series.
func (c *EventContext) RecordGuild(name string) error {
	return c.engine.Timelines.Record(c.Ctx, name, c.Event.GuildID, c.Event.Timestamp)
}

// CountWithin returns how many entries the per-subject series has inside the
// trailing window, measured from the event timestamp.
func (c *EventContext) CountWithin(name string, window time.Duration) (int, error) {
	return c.engine.Timelines.CountWithin(c.Ctx, name, c.Event.SubjectKey(), c.Event.Timestamp, window)
}

// CountWithinGuild is CountWithin over a guild-wide series.
func (c *EventContext) CountWithinGuild(name string, window time.Duration) (int, error) {
	return c.engine.Timelines.CountWithin(c.Ctx, name, c.Event.GuildID, c.Event.Timestamp, window)
}

// RecentContent appends the lower-cased message body to the subject's short
// content history and returns the trailing window, newest last.
func (c *EventContext) RecentContent(keep int) []string {
	return c.engine.Recent.Append(c.Event.SubjectKey(), c.Event.Content, keep)
}

// Classifier returns the engine's content classifier, or nil when none is
// configured.
func (c *BaseContext) Classifier() ContentClassifier {
	return c.engine.Classifier
}

// AddVerdict reports a violation from a rule. The engine selects a single
// verdict per event after all rules have run.
func (c *EventContext) AddVerdict(v Verdict) {
	c.effects.AddVerdict(v)
}
