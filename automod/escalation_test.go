package automod

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEscalationTiers(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, _ := EngineTestFixture()
	policy := DefaultPolicy()
	verdict := &Verdict{Source: SourceSpam, Category: "message_rate", Severity: SeverityLow, Recommended: ActionWarn}

	now := time.Now()
	expect := []ActionKind{
		ActionWarn,    // offense 1
		ActionWarn,    // 2
		ActionTimeout, // 3
		ActionTimeout, // 4
		ActionKick,    // 5
		ActionKick,    // 6
		ActionBan,     // 7
		ActionBan,     // 8
	}
	for i, want := range expect {
		evt := MessageEvent("guild1", "user1", "hello", now.Add(time.Duration(i)*time.Second))
		act, err := eng.escalate(ctx, evt, policy, verdict)
		assert.NoError(err)
		assert.Equal(want, act.Kind, "offense %d", i+1)
	}
}

func TestEscalationWindowExpiry(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, _ := EngineTestFixture()
	policy := DefaultPolicy()
	verdict := &Verdict{Source: SourceSpam, Category: "message_rate", Severity: SeverityLow, Recommended: ActionWarn}

	now := time.Now()
	for i := 0; i < 4; i++ {
		evt := MessageEvent("guild1", "user1", "hello", now.Add(time.Duration(i)*time.Second))
		_, err := eng.escalate(ctx, evt, policy, verdict)
		assert.NoError(err)
	}

	// a day later the ledger only sees the new offense
	evt := MessageEvent("guild1", "user1", "hello", now.Add(25*time.Hour))
	act, err := eng.escalate(ctx, evt, policy, verdict)
	assert.NoError(err)
	assert.Equal(ActionWarn, act.Kind)
}

func TestEscalationRecommendationFloor(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, _ := EngineTestFixture()
	policy := DefaultPolicy()

	// first offense, but the detector already wants a timeout
	evt := MessageEvent("guild1", "user1", "@everyone "+"x", time.Now())
	act, err := eng.escalate(ctx, evt, policy, &Verdict{
		Source: SourceSpam, Category: "mention_spam", Severity: SeverityHigh, Recommended: ActionTimeout,
	})
	assert.NoError(err)
	assert.Equal(ActionTimeout, act.Kind)
	assert.Equal(policy.TimeoutDuration, act.Duration)
}

func TestEscalationAdminNeverRemoved(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, _ := EngineTestFixture()
	policy := DefaultPolicy()

	evt := JoinEvent("guild1", "admin1", time.Now().Add(-time.Hour), time.Now())
	evt.IsAdministrator = true
	act, err := eng.escalate(ctx, evt, policy, &Verdict{
		Source: SourceRaid, Category: "suspicious_pattern", Severity: SeverityHigh, Recommended: ActionBan,
	})
	assert.NoError(err)
	assert.Equal(ActionWarn, act.Kind)
}

func TestEscalationLockdownBypassesLedger(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, _ := EngineTestFixture()
	policy := DefaultPolicy()

	evt := JoinEvent("guild1", "user1", time.Now().Add(-time.Hour), time.Now())
	act, err := eng.escalate(ctx, evt, policy, &Verdict{
		Source: SourceRaid, Category: "mass_join", Severity: SeverityHigh, Recommended: ActionLockdown,
	})
	assert.NoError(err)
	assert.Equal(ActionLockdown, act.Kind)
	assert.Equal("guild1", act.GuildID)
	assert.Empty(act.UserID)

	// a later plain offense is still the subject's first
	mevt := MessageEvent("guild1", "user1", "hello", time.Now())
	act, err = eng.escalate(ctx, mevt, policy, &Verdict{
		Source: SourceSpam, Category: "message_rate", Severity: SeverityLow, Recommended: ActionWarn,
	})
	assert.NoError(err)
	assert.Equal(ActionWarn, act.Kind)
}

func TestEscalationDeleteCarriesMessageRef(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, _ := EngineTestFixture()
	policy := DefaultPolicy()

	evt := MessageEvent("guild1", "user1", "AAAA", time.Now())
	act, err := eng.escalate(ctx, evt, policy, &Verdict{
		Source: SourceSpam, Category: "duplicate_message", Severity: SeverityLow, Recommended: ActionDelete,
	})
	assert.NoError(err)
	assert.Equal(ActionDelete, act.Kind)
	assert.Equal(evt.ChannelID, act.ChannelID)
	assert.Equal(evt.MessageID, act.MessageID)
}

func TestActionForOffenseCount(t *testing.T) {
	assert := assert.New(t)
	policy := DefaultPolicy()

	assert.Equal(ActionNone, policy.ActionForOffenseCount(0))
	assert.Equal(ActionWarn, policy.ActionForOffenseCount(1))
	assert.Equal(ActionWarn, policy.ActionForOffenseCount(2))
	assert.Equal(ActionTimeout, policy.ActionForOffenseCount(3))
	assert.Equal(ActionKick, policy.ActionForOffenseCount(5))
	assert.Equal(ActionBan, policy.ActionForOffenseCount(7))
	assert.Equal(ActionBan, policy.ActionForOffenseCount(50))
}
