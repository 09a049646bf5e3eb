package automod

import (
	"time"
)

type EventKind string

const (
	// EventMessage is a message created in a guild channel.
	EventMessage = EventKind("message")
	// EventJoin is a member joining a guild.
	EventJoin = EventKind("join")
)

// Event is a normalized gateway event, carrying only the fields the rules
// inspect. The discord adapter translates raw gateway payloads to this form.
type Event struct {
	Kind      EventKind
	GuildID   string
	UserID    string
	Timestamp time.Time

	// message events
	MessageID    string
	ChannelID    string
	Content      string
	MentionCount int

	// join events
	AccountCreatedAt time.Time
	Username         string
	Nickname         string

	// set when the subject holds the administrator permission. Administrators
	// skip spam checks entirely and never receive automatic kick or ban.
	IsAdministrator bool
}

// AccountAge is the age of the subject account at the time of the event.
func (e *Event) AccountAge() time.Duration {
	if e.AccountCreatedAt.IsZero() {
		return 0
	}
	return e.Timestamp.Sub(e.AccountCreatedAt)
}

// SubjectKey scopes per-user counter series to a single guild.
func (e *Event) SubjectKey() string {
	return e.GuildID + "/" + e.UserID
}
