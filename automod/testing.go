package automod

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/menchan-Rub/Shard-Bot-sub001/automod/timeline"
)

// CapturingSink records every action it is asked to execute. For tests.
type CapturingSink struct {
	mu      sync.Mutex
	Actions []Action

	// when set, Execute returns this error after recording
	Err error
}

func (s *CapturingSink) Execute(ctx context.Context, act Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Actions = append(s.Actions, act)
	return s.Err
}

// Captured returns a snapshot of executed actions.
func (s *CapturingSink) Captured() []Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Action, len(s.Actions))
	copy(out, s.Actions)
	return out
}

// ByKind returns captured actions of one kind.
func (s *CapturingSink) ByKind(kind ActionKind) []Action {
	var out []Action
	for _, act := range s.Captured() {
		if act.Kind == kind {
			out = append(out, act)
		}
	}
	return out
}

// EngineTestFixture returns an engine with in-memory stores, a capturing
// action sink, and no rules. Tests attach the rules under test.
func EngineTestFixture() (*Engine, *CapturingSink) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	sink := &CapturingSink{}
	eng := &Engine{
		Logger:        logger,
		Timelines:     timeline.NewMemTimelineStore(),
		Recent:        NewRecentContentStore(128, time.Minute*10),
		Actions:       sink,
		Notifications: NewNotificationThrottle(DefaultNotifyCooldown),
	}
	return eng, sink
}

// MessageEvent builds a message event with sane defaults for tests.
func MessageEvent(guildID, userID, content string, at time.Time) Event {
	return Event{
		Kind:      EventMessage,
		GuildID:   guildID,
		UserID:    userID,
		Timestamp: at,
		MessageID: "msg-1",
		ChannelID: "chan-1",
		Content:   content,
	}
}

// JoinEvent builds a join event with sane defaults for tests.
func JoinEvent(guildID, userID string, createdAt, at time.Time) Event {
	return Event{
		Kind:             EventJoin,
		GuildID:          guildID,
		UserID:           userID,
		Timestamp:        at,
		AccountCreatedAt: createdAt,
		Username:         "somebody",
	}
}
