package automod

import (
	"sort"
	"time"
)

// EscalationStep maps a rolling offense count to the action taken once the
// count reaches the threshold. Steps apply as floors: the step with the
// highest threshold at or below the count wins.
type EscalationStep struct {
	Threshold int        `json:"threshold"`
	Action    ActionKind `json:"action"`
}

// GuildPolicy is the per-guild moderation configuration. Zero values are not
// meaningful; construct with DefaultPolicy and override fields as needed.
type GuildPolicy struct {
	GuildID string `json:"guild_id,omitempty"`

	SpamProtection bool `json:"spam_protection"`
	RaidProtection bool `json:"raid_protection"`
	AIModeration   bool `json:"ai_moderation"`

	// message rate: more than MessageRateCount messages inside
	// MessageRateWindow is a violation
	MessageRateCount  int           `json:"message_rate_count"`
	MessageRateWindow time.Duration `json:"message_rate_window"`

	// DuplicateThreshold consecutive identical messages is a violation
	DuplicateThreshold int `json:"duplicate_threshold"`

	// caps: ratio of upper-case letters among letters, ignored below
	// CapsMinLength runes
	CapsRatio     float64 `json:"caps_ratio"`
	CapsMinLength int     `json:"caps_min_length"`

	EmojiLimit   int `json:"emoji_limit"`
	MentionLimit int `json:"mention_limit"`

	// raid detection
	NewAccountAge      time.Duration `json:"new_account_age"`
	JoinRateLimit      int           `json:"join_rate_limit"`
	JoinRateWindow     time.Duration `json:"join_rate_window"`
	SuspiciousPatterns []string      `json:"suspicious_patterns,omitempty"`
	LockdownDuration   time.Duration `json:"lockdown_duration"`

	// content moderation
	BannedWords        []string           `json:"banned_words,omitempty"`
	BlockInvites       bool               `json:"block_invites"`
	BlockLinks         bool               `json:"block_links"`
	AllowedDomains     []string           `json:"allowed_domains,omitempty"`
	CategoryThresholds map[string]float64 `json:"category_thresholds,omitempty"`

	// escalation
	Escalation      []EscalationStep `json:"escalation,omitempty"`
	TimeoutDuration time.Duration    `json:"timeout_duration"`

	// moderator notifications
	NotifyModerators bool   `json:"notify_moderators"`
	AlertChannelID   string `json:"alert_channel_id,omitempty"`
}

// DefaultPolicy returns the baseline policy applied to guilds with no stored
// override.
func DefaultPolicy() GuildPolicy {
	return GuildPolicy{
		SpamProtection: true,
		RaidProtection: true,
		AIModeration:   true,

		MessageRateCount:   5,
		MessageRateWindow:  5 * time.Second,
		DuplicateThreshold: 3,
		CapsRatio:          0.70,
		CapsMinLength:      10,
		EmojiLimit:         20,
		MentionLimit:       5,

		NewAccountAge:    7 * 24 * time.Hour,
		JoinRateLimit:    10,
		JoinRateWindow:   60 * time.Second,
		LockdownDuration: 30 * time.Minute,

		BlockInvites: true,
		CategoryThresholds: map[string]float64{
			"toxicity":        0.8,
			"identity_attack": 0.8,
			"insult":          0.8,
			"threat":          0.9,
			"sexual":          0.9,
		},

		Escalation: []EscalationStep{
			{Threshold: 1, Action: ActionWarn},
			{Threshold: 3, Action: ActionTimeout},
			{Threshold: 5, Action: ActionKick},
			{Threshold: 7, Action: ActionBan},
		},
		TimeoutDuration: 10 * time.Minute,

		NotifyModerators: true,
	}
}

// ActionForOffenseCount resolves the escalation step for a rolling offense
// count. Returns ActionNone when the count is below every step.
func (p *GuildPolicy) ActionForOffenseCount(count int) ActionKind {
	steps := make([]EscalationStep, len(p.Escalation))
	copy(steps, p.Escalation)
	sort.Slice(steps, func(i, j int) bool { return steps[i].Threshold < steps[j].Threshold })
	out := ActionNone
	for _, s := range steps {
		if count >= s.Threshold {
			out = s.Action
		}
	}
	return out
}
