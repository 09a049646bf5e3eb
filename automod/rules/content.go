package rules

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/menchan-Rub/Shard-Bot-sub001/automod"
	"github.com/menchan-Rub/Shard-Bot-sub001/automod/keyword"
)

// messages shorter than this never reach the classifier; there is nothing to
// score and the API call is pure waste
const classifierMinLength = 5

// BannedWordRule flags messages containing configured banned words or
// blocked link types. Word matching is case-insensitive substring matching,
// with a slugified second pass so spacing and punctuation tricks do not
// slip past the list.
func BannedWordRule(c *automod.MessageContext) error {
	word := keyword.ContainsWord(c.Event.Content, c.Policy.BannedWords)
	if word == "" {
		word = keyword.ContainsSlug(c.Event.Content, c.Policy.BannedWords)
	}
	if word != "" {
		c.AddVerdict(automod.Verdict{
			Source:      automod.SourceKeyword,
			Category:    "banned_word",
			Severity:    automod.SeverityMedium,
			Recommended: automod.ActionDelete,
			Evidence: map[string]interface{}{
				"word": word,
			},
		})
		return nil
	}

	if c.Policy.BlockInvites && keyword.InvitePattern.MatchString(c.Event.Content) {
		c.AddVerdict(automod.Verdict{
			Source:      automod.SourceKeyword,
			Category:    "invite_link",
			Severity:    automod.SeverityLow,
			Recommended: automod.ActionDelete,
		})
		return nil
	}

	if c.Policy.BlockLinks {
		if raw, ok := firstUnapprovedURL(c.Event.Content, c.Policy.AllowedDomains); ok {
			c.AddVerdict(automod.Verdict{
				Source:      automod.SourceKeyword,
				Category:    "unapproved_link",
				Severity:    automod.SeverityLow,
				Recommended: automod.ActionDelete,
				Evidence: map[string]interface{}{
					"url": raw,
				},
			})
		}
	}
	return nil
}

func firstUnapprovedURL(content string, allowed []string) (string, bool) {
	for _, raw := range keyword.URLPattern.FindAllString(content, -1) {
		u, err := url.Parse(raw)
		if err != nil {
			return raw, true
		}
		if !domainAllowed(u.Hostname(), allowed) {
			return raw, true
		}
	}
	return "", false
}

func domainAllowed(host string, allowed []string) bool {
	host = strings.ToLower(host)
	for _, d := range allowed {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// ClassifierRule scores message text with the configured content classifier
// and flags the highest category over its policy threshold. Classifier
// failures fail open: the error is surfaced for logging and the message
// passes.
func ClassifierRule(c *automod.MessageContext) error {
	if !c.Policy.AIModeration {
		return nil
	}
	classifier := c.Classifier()
	if classifier == nil {
		return nil
	}
	if utf8.RuneCountInString(strings.TrimSpace(c.Event.Content)) < classifierMinLength {
		return nil
	}

	scores, err := classifier.Classify(c.Ctx, c.Event.Content)
	if err != nil {
		// fail open: the message passes without a score
		return automod.Degraded(fmt.Errorf("content scoring failed: %w", err))
	}

	var topCategory string
	var topScore float64
	for category, threshold := range c.Policy.CategoryThresholds {
		score, ok := scores[category]
		if !ok || score < threshold {
			continue
		}
		if score > topScore {
			topCategory, topScore = category, score
		}
	}
	if topCategory == "" {
		return nil
	}

	severity := automod.SeverityMedium
	recommended := automod.ActionDelete
	if topCategory == "threat" {
		severity = automod.SeverityHigh
		recommended = automod.ActionTimeout
	}
	c.AddVerdict(automod.Verdict{
		Source:      automod.SourceToxicity,
		Category:    topCategory,
		Severity:    severity,
		Recommended: recommended,
		Evidence: map[string]interface{}{
			"score": topScore,
		},
	})
	return nil
}
