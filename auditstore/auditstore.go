// Package auditstore persists moderation outcomes to sqlite so moderators
// can review what the engine did and why.
package auditstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/menchan-Rub/Shard-Bot-sub001/automod"
)

const schema = `
CREATE TABLE IF NOT EXISTS moderation_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	guild_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	event_kind TEXT NOT NULL,
	source TEXT NOT NULL,
	category TEXT NOT NULL,
	severity TEXT NOT NULL,
	action TEXT NOT NULL,
	reason TEXT NOT NULL,
	content TEXT NOT NULL,
	evidence TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_moderation_log_guild ON moderation_log (guild_id, created_at);
`

// Entry is one recorded moderation outcome.
type Entry struct {
	ID        int64     `db:"id"`
	GuildID   string    `db:"guild_id"`
	UserID    string    `db:"user_id"`
	EventKind string    `db:"event_kind"`
	Source    string    `db:"source"`
	Category  string    `db:"category"`
	Severity  string    `db:"severity"`
	Action    string    `db:"action"`
	Reason    string    `db:"reason"`
	Content   string    `db:"content"`
	Evidence  string    `db:"evidence"`
	CreatedAt time.Time `db:"created_at"`
}

type Store struct {
	db *sqlx.DB
}

// New opens (creating if needed) the sqlite database at path.
func New(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record implements automod.AuditSink.
func (s *Store) Record(ctx context.Context, evt automod.Event, verdict automod.Verdict, act automod.Action) error {
	var evidence string
	if len(verdict.Evidence) > 0 {
		if raw, err := json.Marshal(verdict.Evidence); err == nil {
			evidence = string(raw)
		}
	}
	entry := Entry{
		GuildID:   evt.GuildID,
		UserID:    evt.UserID,
		EventKind: string(evt.Kind),
		Source:    string(verdict.Source),
		Category:  verdict.Category,
		Severity:  verdict.Severity.String(),
		Action:    string(act.Kind),
		Reason:    act.Reason,
		Content:   evt.Content,
		Evidence:  evidence,
		CreatedAt: evt.Timestamp.UTC(),
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO moderation_log (guild_id, user_id, event_kind, source, category, severity, action, reason, content, evidence, created_at)
		VALUES (:guild_id, :user_id, :event_kind, :source, :category, :severity, :action, :reason, :content, :evidence, :created_at)`,
		entry)
	return err
}

// RecentByGuild returns the newest entries for a guild, newest first.
func (s *Store) RecentByGuild(ctx context.Context, guildID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []Entry
	err := s.db.SelectContext(ctx, &out, `
		SELECT * FROM moderation_log
		WHERE guild_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		guildID, limit)
	return out, err
}

// CountByUser returns how many entries exist for a subject since the cutoff.
func (s *Store) CountByUser(ctx context.Context, guildID, userID string, since time.Time) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM moderation_log
		WHERE guild_id = ? AND user_id = ? AND created_at >= ?`,
		guildID, userID, since.UTC())
	return count, err
}
