package automod

import (
	"context"
	"fmt"
	"time"

	"github.com/menchan-Rub/Shard-Bot-sub001/automod/timeline"
)

// escalate turns the selected verdict into a concrete action. Every verdict
// (except lockdown) appends to the subject's rolling offense ledger; the
// offense count picks an escalation step, and the detector recommendation
// acts as a floor so a high-severity first offense is not reduced to a warn.
func (eng *Engine) escalate(ctx context.Context, evt Event, policy GuildPolicy, verdict *Verdict) (Action, error) {
	if verdict.Recommended == ActionLockdown {
		// guild-level response, not attributed to any one subject
		return Action{
			Kind:    ActionLockdown,
			GuildID: evt.GuildID,
			Reason:  escalationReason(verdict, 0),
		}, nil
	}

	if err := eng.Timelines.Record(ctx, timeline.SeriesOffense, evt.SubjectKey(), evt.Timestamp); err != nil {
		return Action{}, fmt.Errorf("recording offense: %w", err)
	}
	count, err := eng.Timelines.CountWithin(ctx, timeline.SeriesOffense, evt.SubjectKey(), evt.Timestamp, offenseWindow)
	if err != nil {
		return Action{}, fmt.Errorf("counting offenses: %w", err)
	}

	kind := StricterAction(policy.ActionForOffenseCount(count), verdict.Recommended)

	// administrators are never automatically removed
	if evt.IsAdministrator && (kind == ActionKick || kind == ActionBan) {
		kind = ActionWarn
	}

	act := Action{
		Kind:    kind,
		GuildID: evt.GuildID,
		UserID:  evt.UserID,
		Reason:  escalationReason(verdict, count),
	}
	switch kind {
	case ActionDelete:
		act.ChannelID = evt.ChannelID
		act.MessageID = evt.MessageID
	case ActionTimeout:
		act.Duration = policy.TimeoutDuration
		if act.Duration <= 0 {
			act.Duration = 10 * time.Minute
		}
	}
	return act, nil
}

func escalationReason(v *Verdict, offenseCount int) string {
	if offenseCount > 0 {
		return fmt.Sprintf("automod: %s/%s (offense %d in 24h)", v.Source, v.Category, offenseCount)
	}
	return fmt.Sprintf("automod: %s/%s", v.Source, v.Category)
}
