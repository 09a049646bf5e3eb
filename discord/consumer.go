package discord

import (
	"context"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/menchan-Rub/Shard-Bot-sub001/automod"
)

// GatewayIntents covers everything the consumer subscribes to.
const GatewayIntents = discordgo.IntentGuilds |
	discordgo.IntentGuildMessages |
	discordgo.IntentGuildMembers |
	discordgo.IntentMessageContent

// per-event processing deadline
const defaultEventTimeout = time.Second * 30

// Consumer receives gateway events, normalizes them, and feeds them to the
// engine under the guild's policy.
type Consumer struct {
	Engine   *automod.Engine
	Policies *PolicyStore
	Logger   *slog.Logger
}

// Bind registers the gateway handlers on a session.
func (c *Consumer) Bind(s *discordgo.Session) {
	s.AddHandler(c.handleMessageCreate)
	s.AddHandler(c.handleGuildMemberAdd)
}

func (c *Consumer) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// DMs and other bots are out of scope
	if m.GuildID == "" || m.Author == nil || m.Author.Bot {
		return
	}

	isAdmin, err := c.isAdministrator(s, m.Message)
	if err != nil {
		c.Logger.Warn("permission lookup failed, treating author as regular member", "guildID", m.GuildID, "userID", m.Author.ID, "err", err)
	}
	evt := messageEvent(m, isAdmin)

	ctx, cancel := context.WithTimeout(context.Background(), defaultEventTimeout)
	defer cancel()
	if err := c.Engine.ProcessMessage(ctx, evt, c.Policies.Get(m.GuildID)); err != nil {
		c.Logger.Error("message processing failed", "guildID", m.GuildID, "userID", m.Author.ID, "err", err)
	}
}

func (c *Consumer) handleGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil || m.User.Bot {
		return
	}

	evt := joinEvent(m)

	ctx, cancel := context.WithTimeout(context.Background(), defaultEventTimeout)
	defer cancel()
	if err := c.Engine.ProcessJoin(ctx, evt, c.Policies.Get(m.GuildID)); err != nil {
		c.Logger.Error("join processing failed", "guildID", m.GuildID, "userID", m.User.ID, "err", err)
	}
}

func (c *Consumer) isAdministrator(s *discordgo.Session, m *discordgo.Message) (bool, error) {
	perms, err := s.State.MessagePermissions(m)
	if err != nil {
		return false, err
	}
	return perms&discordgo.PermissionAdministrator != 0, nil
}

func messageEvent(m *discordgo.MessageCreate, isAdmin bool) automod.Event {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return automod.Event{
		Kind:            automod.EventMessage,
		GuildID:         m.GuildID,
		UserID:          m.Author.ID,
		Timestamp:       ts,
		MessageID:       m.ID,
		ChannelID:       m.ChannelID,
		Content:         m.Content,
		MentionCount:    len(m.Mentions) + len(m.MentionRoles),
		IsAdministrator: isAdmin,
	}
}

func joinEvent(m *discordgo.GuildMemberAdd) automod.Event {
	ts := m.JoinedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	// account creation time is embedded in the user ID snowflake
	createdAt, err := discordgo.SnowflakeTimestamp(m.User.ID)
	if err != nil {
		createdAt = time.Time{}
	}
	return automod.Event{
		Kind:             automod.EventJoin,
		GuildID:          m.GuildID,
		UserID:           m.User.ID,
		Timestamp:        ts,
		AccountCreatedAt: createdAt,
		Username:         m.User.Username,
		Nickname:         m.Nick,
	}
}
