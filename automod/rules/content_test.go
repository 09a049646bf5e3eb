package rules

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/menchan-Rub/Shard-Bot-sub001/automod"
)

type stubClassifier struct {
	scores map[string]float64
	err    error

	calls int
}

func (s *stubClassifier) Classify(ctx context.Context, text string) (map[string]float64, error) {
	s.calls++
	return s.scores, s.err
}

func TestBannedWordDeleted(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, sink := fixtureWithRules()
	policy := automod.DefaultPolicy()
	policy.BannedWords = []string{"slur1", "slur2"}

	evt := automod.MessageEvent("guild1", "user1", "you absolute SLUR1 head", time.Now())
	assert.NoError(eng.ProcessMessage(ctx, evt, policy))

	acts := enforcement(sink)
	assert.Len(acts, 1)
	assert.Equal(automod.ActionDelete, acts[0].Kind)
}

func TestBannedWordObfuscationCaught(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, sink := fixtureWithRules()
	policy := automod.DefaultPolicy()
	policy.BannedWords = []string{"slur1"}

	// punctuation and spacing must not defeat the word list
	evt := automod.MessageEvent("guild1", "user1", "you s.l.u.r.1 head", time.Now())
	assert.NoError(eng.ProcessMessage(ctx, evt, policy))

	acts := enforcement(sink)
	assert.Len(acts, 1)
	assert.Equal(automod.ActionDelete, acts[0].Kind)
}

func TestInviteLinkDeleted(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, sink := fixtureWithRules()
	policy := automod.DefaultPolicy()

	evt := automod.MessageEvent("guild1", "user1", "join us at discord.gg/abc123", time.Now())
	assert.NoError(eng.ProcessMessage(ctx, evt, policy))

	acts := enforcement(sink)
	assert.Len(acts, 1)
	assert.Equal(automod.ActionDelete, acts[0].Kind)
}

func TestInviteAllowedWhenDisabled(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, sink := fixtureWithRules()
	policy := automod.DefaultPolicy()
	policy.BlockInvites = false

	evt := automod.MessageEvent("guild1", "user1", "join us at discord.gg/abc123", time.Now())
	assert.NoError(eng.ProcessMessage(ctx, evt, policy))
	assert.Empty(enforcement(sink))
}

func TestUnapprovedLinkDeleted(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, sink := fixtureWithRules()
	policy := automod.DefaultPolicy()
	policy.BlockLinks = true
	policy.AllowedDomains = []string{"example.com"}

	evt := automod.MessageEvent("guild1", "user1", "see https://docs.example.com/page ok", time.Now())
	assert.NoError(eng.ProcessMessage(ctx, evt, policy))
	assert.Empty(enforcement(sink))

	evt = automod.MessageEvent("guild1", "user2", "see https://phish.example.net/page ok", time.Now())
	assert.NoError(eng.ProcessMessage(ctx, evt, policy))

	acts := enforcement(sink)
	assert.Len(acts, 1)
	assert.Equal(automod.ActionDelete, acts[0].Kind)
}

func TestClassifierFlagsToxicity(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, sink := fixtureWithRules()
	eng.Classifier = &stubClassifier{scores: map[string]float64{
		"toxicity": 0.95,
		"insult":   0.40,
	}}
	policy := automod.DefaultPolicy()

	evt := automod.MessageEvent("guild1", "user1", "some toxic nonsense", time.Now())
	assert.NoError(eng.ProcessMessage(ctx, evt, policy))

	acts := enforcement(sink)
	assert.Len(acts, 1)
	assert.Equal(automod.ActionDelete, acts[0].Kind)
}

func TestClassifierThreatTimesOut(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, sink := fixtureWithRules()
	eng.Classifier = &stubClassifier{scores: map[string]float64{
		"threat": 0.95,
	}}
	policy := automod.DefaultPolicy()

	evt := automod.MessageEvent("guild1", "user1", "a very explicit threat", time.Now())
	assert.NoError(eng.ProcessMessage(ctx, evt, policy))

	acts := enforcement(sink)
	assert.Len(acts, 1)
	assert.Equal(automod.ActionTimeout, acts[0].Kind)
}

func TestClassifierBelowThresholdPasses(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, sink := fixtureWithRules()
	eng.Classifier = &stubClassifier{scores: map[string]float64{
		"toxicity": 0.79,
		"threat":   0.85,
	}}
	policy := automod.DefaultPolicy()

	evt := automod.MessageEvent("guild1", "user1", "a borderline message", time.Now())
	assert.NoError(eng.ProcessMessage(ctx, evt, policy))
	assert.Empty(enforcement(sink))
}

func TestClassifierSkipsShortMessages(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, sink := fixtureWithRules()
	stub := &stubClassifier{scores: map[string]float64{"toxicity": 0.99}}
	eng.Classifier = stub
	policy := automod.DefaultPolicy()

	evt := automod.MessageEvent("guild1", "user1", "ok", time.Now())
	assert.NoError(eng.ProcessMessage(ctx, evt, policy))
	assert.Zero(stub.calls)
	assert.Empty(enforcement(sink))
}

func TestClassifierFailsOpen(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, sink := fixtureWithRules()
	eng.Classifier = &stubClassifier{err: errors.New("scoring api down")}
	policy := automod.DefaultPolicy()

	evt := automod.MessageEvent("guild1", "user1", "a perfectly fine message", time.Now())
	assert.NoError(eng.ProcessMessage(ctx, evt, policy))
	assert.Empty(enforcement(sink))
}

func TestClassifierFailureLogsWarning(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, _ := fixtureWithRules()
	eng.Classifier = &stubClassifier{err: errors.New("scoring api down")}

	var buf bytes.Buffer
	eng.Logger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	evt := automod.MessageEvent("guild1", "user1", "a perfectly fine message", time.Now())
	assert.NoError(eng.ProcessMessage(ctx, evt, automod.DefaultPolicy()))

	// expected unavailability degrades with a warning, never an error
	logged := buf.String()
	assert.Contains(logged, `"level":"WARN"`)
	assert.Contains(logged, "rule degraded")
	assert.NotContains(logged, `"level":"ERROR"`)
}

func TestClassifierDisabledByPolicy(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, _ := fixtureWithRules()
	stub := &stubClassifier{scores: map[string]float64{"toxicity": 0.99}}
	eng.Classifier = stub
	policy := automod.DefaultPolicy()
	policy.AIModeration = false

	evt := automod.MessageEvent("guild1", "user1", "a long enough message", time.Now())
	assert.NoError(eng.ProcessMessage(ctx, evt, policy))
	assert.Zero(stub.calls)
}
