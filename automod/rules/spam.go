package rules

import (
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/menchan-Rub/Shard-Bot-sub001/automod"
	"github.com/menchan-Rub/Shard-Bot-sub001/automod/keyword"
	"github.com/menchan-Rub/Shard-Bot-sub001/automod/timeline"
)

// caps and emoji violations need a small burst before they act, so one
// excited message never draws a sanction
const (
	burstCount  = 3
	burstWindow = time.Minute * 5
)

// SpamMessageRule runs the per-message spam checks in fixed order and raises
// at most one verdict: message rate, then duplicates, then caps, then emoji,
// then mentions. Administrators are exempt from all of them.
func SpamMessageRule(c *automod.MessageContext) error {
	if c.Event.IsAdministrator || !c.Policy.SpamProtection {
		return nil
	}

	if hit, err := checkMessageRate(c); err != nil || hit {
		return err
	}
	if checkDuplicates(c) {
		return nil
	}
	if hit, err := checkCaps(c); err != nil || hit {
		return err
	}
	if hit, err := checkEmoji(c); err != nil || hit {
		return err
	}
	checkMentions(c)
	return nil
}

func checkMessageRate(c *automod.MessageContext) (bool, error) {
	if c.Policy.MessageRateCount <= 0 {
		return false, nil
	}
	if err := c.Record(timeline.SeriesMessage); err != nil {
		return false, err
	}
	count, err := c.CountWithin(timeline.SeriesMessage, c.Policy.MessageRateWindow)
	if err != nil {
		return false, err
	}
	if count <= c.Policy.MessageRateCount {
		return false, nil
	}
	c.AddVerdict(automod.Verdict{
		Source:      automod.SourceSpam,
		Category:    "message_rate",
		Severity:    automod.SeverityMedium,
		Recommended: automod.ActionTimeout,
		Evidence: map[string]interface{}{
			"count":  count,
			"window": c.Policy.MessageRateWindow.String(),
		},
	})
	return true, nil
}

func checkDuplicates(c *automod.MessageContext) bool {
	threshold := c.Policy.DuplicateThreshold
	if threshold <= 0 || c.Event.Content == "" {
		return false
	}
	history := c.RecentContent(threshold)
	if len(history) < threshold {
		return false
	}
	for _, body := range history[1:] {
		if body != history[0] {
			return false
		}
	}
	c.AddVerdict(automod.Verdict{
		Source:      automod.SourceSpam,
		Category:    "duplicate_message",
		Severity:    automod.SeverityLow,
		Recommended: automod.ActionDelete,
		Evidence: map[string]interface{}{
			"repeats": threshold,
		},
	})
	return true
}

func checkCaps(c *automod.MessageContext) (bool, error) {
	if !isShouting(c.Event.Content, c.Policy.CapsMinLength, c.Policy.CapsRatio) {
		return false, nil
	}
	if err := c.Record(timeline.SeriesCaps); err != nil {
		return false, err
	}
	count, err := c.CountWithin(timeline.SeriesCaps, burstWindow)
	if err != nil {
		return false, err
	}
	if count < burstCount {
		return false, nil
	}
	c.AddVerdict(automod.Verdict{
		Source:      automod.SourceSpam,
		Category:    "excessive_caps",
		Severity:    automod.SeverityLow,
		Recommended: automod.ActionDelete,
		Evidence: map[string]interface{}{
			"burst": count,
		},
	})
	return true, nil
}

// isShouting reports whether the upper-case share of the letters exceeds
// ratio. Short messages and messages without letters never qualify.
func isShouting(content string, minLength int, ratio float64) bool {
	if utf8.RuneCountInString(content) < minLength || ratio <= 0 {
		return false
	}
	var letters, upper int
	for _, r := range content {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return false
	}
	return float64(upper)/float64(letters) > ratio
}

func checkEmoji(c *automod.MessageContext) (bool, error) {
	limit := c.Policy.EmojiLimit
	if limit <= 0 || keyword.CountEmoji(c.Event.Content) <= limit {
		return false, nil
	}
	if err := c.Record(timeline.SeriesEmoji); err != nil {
		return false, err
	}
	count, err := c.CountWithin(timeline.SeriesEmoji, burstWindow)
	if err != nil {
		return false, err
	}
	if count < burstCount {
		return false, nil
	}
	c.AddVerdict(automod.Verdict{
		Source:      automod.SourceSpam,
		Category:    "excessive_emoji",
		Severity:    automod.SeverityLow,
		Recommended: automod.ActionDelete,
		Evidence: map[string]interface{}{
			"burst": count,
		},
	})
	return true, nil
}

func checkMentions(c *automod.MessageContext) {
	limit := c.Policy.MentionLimit
	if limit <= 0 || c.Event.MentionCount <= limit {
		return
	}
	c.AddVerdict(automod.Verdict{
		Source:      automod.SourceSpam,
		Category:    "mention_spam",
		Severity:    automod.SeverityHigh,
		Recommended: automod.ActionTimeout,
		Evidence: map[string]interface{}{
			"mentions": c.Event.MentionCount,
		},
	})
}
