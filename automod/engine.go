package automod

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/menchan-Rub/Shard-Bot-sub001/automod/timeline"
)

const (
	// hard deadline for a single action sink call
	actionTimeout = time.Second * 5

	// hard deadline for a best-effort audit write
	auditTimeout = time.Second * 10

	// rolling window for offense counting during escalation
	offenseWindow = time.Hour * 24
)

// Engine runs every inbound guild event through the rule set, picks one
// verdict, escalates it to a concrete action, and executes it. All fields
// must be set before any Process call; the engine itself is stateless apart
// from active lockdowns.
type Engine struct {
	Logger    *slog.Logger
	Rules     RuleSet
	Timelines timeline.TimelineStore
	Recent    *RecentContentStore

	// scores message text for abuse categories. Optional; content rules
	// fall back to word lists when nil or failing.
	Classifier ContentClassifier

	// executes resolved actions against the platform
	Actions ActionSink

	// optional best-effort persistence of outcomes
	Audit AuditSink

	Notifications *NotificationThrottle

	lockMu    sync.Mutex
	lockdowns map[string]time.Time
}

// Evaluate runs all rules for one event and resolves the resulting action,
// without executing anything. The offense ledger is still incremented when a
// verdict is raised; the caller decides whether the action reaches the sink.
// Individual rule failures are logged and skipped, never returned.
func (eng *Engine) Evaluate(ctx context.Context, evt Event, policy GuildPolicy) (act Action, verdict *Verdict, outErr error) {
	defer func() {
		if r := recover(); r != nil {
			eng.Logger.Error("automod event execution exception", "err", r, "guildID", evt.GuildID, "userID", evt.UserID)
			outErr = fmt.Errorf("automod: panic evaluating %s event: %v", evt.Kind, r)
		}
	}()

	c := eng.newEventContext(ctx, evt, policy)
	switch evt.Kind {
	case EventMessage:
		eng.Rules.CallMessageRules(&MessageContext{EventContext: c})
	case EventJoin:
		eng.Rules.CallJoinRules(&JoinContext{EventContext: c})
	default:
		return Action{}, nil, fmt.Errorf("automod: unhandled event kind: %q", evt.Kind)
	}

	for _, v := range c.effects.Verdicts {
		verdictCount.WithLabelValues(string(v.Source), v.Category).Inc()
	}

	verdict = PickVerdict(c.effects.Verdicts)
	if verdict == nil {
		return Action{Kind: ActionNone}, nil, nil
	}
	act, err := eng.escalate(ctx, evt, policy, verdict)
	if err != nil {
		return Action{}, nil, err
	}
	return act, verdict, nil
}

// ProcessMessage evaluates one message event and carries any resulting action
// through execution, moderator notification, and audit. Sink and notification
// failures are contained here; an error return means the event could not be
// evaluated at all.
func (eng *Engine) ProcessMessage(ctx context.Context, evt Event, policy GuildPolicy) error {
	if evt.Kind != EventMessage {
		return fmt.Errorf("automod: expected message event, got %q", evt.Kind)
	}
	return eng.process(ctx, evt, policy)
}

// ProcessJoin evaluates one member-join event end to end.
func (eng *Engine) ProcessJoin(ctx context.Context, evt Event, policy GuildPolicy) error {
	if evt.Kind != EventJoin {
		return fmt.Errorf("automod: expected join event, got %q", evt.Kind)
	}
	return eng.process(ctx, evt, policy)
}

// ProcessEvent dispatches on the event kind.
func (eng *Engine) ProcessEvent(ctx context.Context, evt Event, policy GuildPolicy) error {
	switch evt.Kind {
	case EventMessage:
		return eng.ProcessMessage(ctx, evt, policy)
	case EventJoin:
		return eng.ProcessJoin(ctx, evt, policy)
	default:
		return fmt.Errorf("automod: unhandled event kind: %q", evt.Kind)
	}
}

func (eng *Engine) process(ctx context.Context, evt Event, policy GuildPolicy) error {
	eventProcessCount.WithLabelValues(string(evt.Kind)).Inc()
	start := time.Now()
	defer func() {
		duration := time.Since(start)
		eventProcessDuration.WithLabelValues(string(evt.Kind)).Observe(duration.Seconds())
	}()

	act, verdict, err := eng.Evaluate(ctx, evt, policy)
	if err != nil {
		return err
	}
	if act.Kind == ActionNone {
		return nil
	}

	logger := eng.Logger.With("eventKind", evt.Kind, "guildID", evt.GuildID, "userID", evt.UserID)
	logger.Info("taking moderation action",
		"action", act.Kind,
		"source", verdict.Source,
		"category", verdict.Category,
		"severity", verdict.Severity.String(),
	)
	eng.executeAction(ctx, logger, act)

	if act.Kind == ActionLockdown {
		eng.markLockdown(evt.GuildID, evt.Timestamp.Add(policy.LockdownDuration))
	}

	if policy.NotifyModerators && eng.Notifications != nil {
		if eng.Notifications.ShouldNotify(evt.GuildID, evt.Timestamp) {
			notificationSentCount.Inc()
			eng.executeAction(ctx, logger, Action{
				Kind:      ActionAlert,
				GuildID:   evt.GuildID,
				UserID:    evt.UserID,
				ChannelID: policy.AlertChannelID,
				Reason:    alertReason(verdict, act),
			})
		} else {
			notificationSuppressedCount.Inc()
		}
	}

	if eng.Audit != nil {
		v, a := *verdict, act
		go func() {
			actx, cancel := context.WithTimeout(context.Background(), auditTimeout)
			defer cancel()
			if err := eng.Audit.Record(actx, evt, v, a); err != nil {
				logger.Warn("audit record failed", "err", err)
			}
		}()
	}
	return nil
}

// executeAction hands one action to the sink under a bounded deadline.
// Failures are logged and counted, never propagated; there is no rollback of
// ledger state already written.
func (eng *Engine) executeAction(ctx context.Context, logger *slog.Logger, act Action) {
	actionExecutedCount.WithLabelValues(string(act.Kind)).Inc()
	actx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()
	if err := eng.Actions.Execute(actx, act); err != nil {
		actionErrorCount.WithLabelValues(string(act.Kind)).Inc()
		logger.Error("action execution failed", "action", act.Kind, "err", err)
	}
}

func alertReason(v *Verdict, act Action) string {
	// guild-scoped actions like lockdown carry no user
	if act.UserID == "" {
		return fmt.Sprintf("%s violation (%s, severity %s): %s applied guild-wide",
			v.Source, v.Category, v.Severity.String(), act.Kind)
	}
	return fmt.Sprintf("%s violation (%s, severity %s): %s applied to <@%s>",
		v.Source, v.Category, v.Severity.String(), act.Kind, act.UserID)
}

func (eng *Engine) markLockdown(guildID string, until time.Time) {
	eng.lockMu.Lock()
	defer eng.lockMu.Unlock()
	if eng.lockdowns == nil {
		eng.lockdowns = make(map[string]time.Time)
	}
	// extend, never shorten, an active lockdown
	if cur, ok := eng.lockdowns[guildID]; ok && cur.After(until) {
		return
	}
	eng.lockdowns[guildID] = until
}

// expiredLockdowns removes and returns guilds whose lockdown window has
// passed.
func (eng *Engine) expiredLockdowns(now time.Time) []string {
	eng.lockMu.Lock()
	defer eng.lockMu.Unlock()
	var out []string
	for guildID, until := range eng.lockdowns {
		if !now.Before(until) {
			out = append(out, guildID)
			delete(eng.lockdowns, guildID)
		}
	}
	return out
}
