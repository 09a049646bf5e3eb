package automod

import (
	"errors"
	"log/slog"
)

// MessageRuleFunc inspects one message event and raises verdicts via the
// context. Errors are logged and do not stop the remaining rules.
type MessageRuleFunc = func(c *MessageContext) error

// JoinRuleFunc inspects one member-join event.
type JoinRuleFunc = func(c *JoinContext) error

// RuleSet is the group of detectors the engine runs against each event.
type RuleSet struct {
	MessageRules []MessageRuleFunc
	JoinRules    []JoinRuleFunc
}

// CallMessageRules runs all message rules. A failing rule is logged and
// skipped so one broken detector cannot mask the others.
func (r *RuleSet) CallMessageRules(c *MessageContext) {
	for _, rule := range r.MessageRules {
		if err := rule(c); err != nil {
			logRuleFailure(c.Logger, EventMessage, err)
		}
	}
}

// CallJoinRules runs all join rules, continuing past failures.
func (r *RuleSet) CallJoinRules(c *JoinContext) {
	for _, rule := range r.JoinRules {
		if err := rule(c); err != nil {
			logRuleFailure(c.Logger, EventJoin, err)
		}
	}
}

// degraded detectors (expected unavailability, failed open) log as warnings,
// genuine rule faults as errors
func logRuleFailure(logger *slog.Logger, kind EventKind, err error) {
	var degraded *DegradedError
	if errors.As(err, &degraded) {
		logger.Warn("rule degraded", "err", err)
	} else {
		logger.Error("rule failed", "err", err)
	}
	ruleErrorCount.WithLabelValues(string(kind)).Inc()
}
