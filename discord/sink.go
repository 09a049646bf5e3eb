// Package discord adapts the moderation engine to the Discord gateway and
// REST API: it normalizes inbound events, executes actions, and resolves
// per-guild policies.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/menchan-Rub/Shard-Bot-sub001/automod"
)

// session is the slice of the discordgo API the sink needs. *discordgo.Session
// satisfies it; tests substitute a fake.
type session interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID string, messageID string, options ...discordgo.RequestOption) error
	GuildMemberTimeout(guildID string, userID string, until *time.Time, options ...discordgo.RequestOption) error
	GuildMemberDeleteWithReason(guildID string, userID string, reason string, options ...discordgo.RequestOption) error
	GuildBanCreateWithReason(guildID string, userID string, reason string, days int, options ...discordgo.RequestOption) error
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildRoleEdit(guildID string, roleID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
}

// lockdown removes these permissions from the default role
const lockdownPerms = discordgo.PermissionSendMessages | discordgo.PermissionVoiceSpeak

// Sink executes engine actions against the Discord API. It implements
// automod.ActionSink.
type Sink struct {
	Session session
	Logger  *slog.Logger

	// default-role permissions saved at lockdown, restored at unlock
	mu        sync.Mutex
	prevPerms map[string]int64
}

func NewSink(s session, logger *slog.Logger) *Sink {
	return &Sink{
		Session:   s,
		Logger:    logger.With("subsystem", "sink"),
		prevPerms: make(map[string]int64),
	}
}

func (s *Sink) Execute(ctx context.Context, act automod.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch act.Kind {
	case automod.ActionWarn:
		return s.warn(act)
	case automod.ActionDelete:
		return s.Session.ChannelMessageDelete(act.ChannelID, act.MessageID)
	case automod.ActionTimeout:
		until := time.Now().Add(act.Duration)
		return s.Session.GuildMemberTimeout(act.GuildID, act.UserID, &until)
	case automod.ActionKick:
		return s.Session.GuildMemberDeleteWithReason(act.GuildID, act.UserID, act.Reason)
	case automod.ActionBan:
		return s.Session.GuildBanCreateWithReason(act.GuildID, act.UserID, act.Reason, 0)
	case automod.ActionLockdown:
		return s.lockdown(act.GuildID)
	case automod.ActionUnlock:
		return s.unlock(act.GuildID)
	case automod.ActionAlert:
		return s.alert(act)
	}
	return fmt.Errorf("discord: unhandled action kind: %q", act.Kind)
}

func (s *Sink) warn(act automod.Action) error {
	ch, err := s.Session.UserChannelCreate(act.UserID)
	if err != nil {
		return fmt.Errorf("opening DM channel: %w", err)
	}
	msg := fmt.Sprintf("You have received a moderation warning: %s. Further violations will be escalated.", act.Reason)
	_, err = s.Session.ChannelMessageSend(ch.ID, msg)
	return err
}

// lockdown strips send and speak from the guild's default role. The default
// role always shares the guild's ID.
func (s *Sink) lockdown(guildID string) error {
	roles, err := s.Session.GuildRoles(guildID)
	if err != nil {
		return fmt.Errorf("listing roles: %w", err)
	}
	for _, role := range roles {
		if role.ID != guildID {
			continue
		}
		s.mu.Lock()
		if _, saved := s.prevPerms[guildID]; !saved {
			s.prevPerms[guildID] = role.Permissions
		}
		s.mu.Unlock()
		perms := role.Permissions &^ lockdownPerms
		_, err = s.Session.GuildRoleEdit(guildID, role.ID, &discordgo.RoleParams{Permissions: &perms})
		if err != nil {
			return fmt.Errorf("editing default role: %w", err)
		}
		s.Logger.Warn("guild locked down", "guildID", guildID)
		return nil
	}
	return fmt.Errorf("default role not found for guild %s", guildID)
}

func (s *Sink) unlock(guildID string) error {
	s.mu.Lock()
	perms, saved := s.prevPerms[guildID]
	delete(s.prevPerms, guildID)
	s.mu.Unlock()
	if !saved {
		// nothing recorded locally, restore the standard permissions
		roles, err := s.Session.GuildRoles(guildID)
		if err != nil {
			return fmt.Errorf("listing roles: %w", err)
		}
		for _, role := range roles {
			if role.ID == guildID {
				perms = role.Permissions | lockdownPerms
				break
			}
		}
	}
	_, err := s.Session.GuildRoleEdit(guildID, guildID, &discordgo.RoleParams{Permissions: &perms})
	if err != nil {
		return fmt.Errorf("editing default role: %w", err)
	}
	s.Logger.Info("guild lockdown released", "guildID", guildID)
	return nil
}

func (s *Sink) alert(act automod.Action) error {
	if act.ChannelID == "" {
		s.Logger.Debug("no alert channel configured, skipping alert", "guildID", act.GuildID)
		return nil
	}
	embed := &discordgo.MessageEmbed{
		Title:       "Moderation action taken",
		Description: act.Reason,
		Color:       0xED4245,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	_, err := s.Session.ChannelMessageSendEmbed(act.ChannelID, embed)
	return err
}
