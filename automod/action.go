package automod

import (
	"context"
	"time"
)

// ActionKind is a moderation action the engine can take against a subject,
// channel, or guild.
type ActionKind string

const (
	ActionNone     = ActionKind("")
	ActionWarn     = ActionKind("warn")
	ActionDelete   = ActionKind("delete")
	ActionTimeout  = ActionKind("timeout")
	ActionKick     = ActionKind("kick")
	ActionBan      = ActionKind("ban")
	ActionLockdown = ActionKind("lockdown")
	ActionUnlock   = ActionKind("unlock")
	ActionAlert    = ActionKind("alert")
)

// strictness orders user-directed actions for escalation floors. Lockdown,
// unlock, and alert are guild-level and sit outside the ladder.
var actionStrictness = map[ActionKind]int{
	ActionWarn:    1,
	ActionDelete:  2,
	ActionTimeout: 3,
	ActionKick:    4,
	ActionBan:     5,
}

// StricterAction returns whichever of a and b ranks higher on the user action
// ladder, preferring a on ties. Non-ladder kinds rank below everything.
func StricterAction(a, b ActionKind) ActionKind {
	if actionStrictness[b] > actionStrictness[a] {
		return b
	}
	return a
}

// Action is a fully resolved moderation action ready for execution.
type Action struct {
	Kind      ActionKind
	GuildID   string
	UserID    string
	ChannelID string
	MessageID string
	Reason    string
	Duration  time.Duration
}

// ActionSink executes resolved actions against the platform. Implementations
// must be safe for concurrent use.
type ActionSink interface {
	Execute(ctx context.Context, act Action) error
}

// AuditSink records moderation outcomes for later review. Recording is
// best-effort; failures never affect enforcement.
type AuditSink interface {
	Record(ctx context.Context, evt Event, verdict Verdict, act Action) error
}

// ContentClassifier scores message text across abuse categories, returning a
// probability per category name.
type ContentClassifier interface {
	Classify(ctx context.Context, text string) (map[string]float64, error)
}
