package rules

import (
	"regexp"

	"github.com/menchan-Rub/Shard-Bot-sub001/automod"
	"github.com/menchan-Rub/Shard-Bot-sub001/automod/keyword"
	"github.com/menchan-Rub/Shard-Bot-sub001/automod/timeline"
)

var defaultSuspiciousPatterns []*regexp.Regexp

func init() {
	var err error
	defaultSuspiciousPatterns, err = keyword.CompilePatterns(keyword.DefaultSuspiciousPatterns)
	if err != nil {
		panic(err)
	}
}

// RaidJoinRule watches member joins for the three raid signals: brand-new
// accounts, join-rate floods, and bot-style display names. Unlike the spam
// checks, every matching signal becomes a verdict so the flood signal can
// still win even when the first joiner also trips the account-age check.
func RaidJoinRule(c *automod.JoinContext) error {
	if !c.Policy.RaidProtection {
		return nil
	}

	if err := c.RecordGuild(timeline.SeriesJoin); err != nil {
		return err
	}

	if !c.Event.AccountCreatedAt.IsZero() && c.Event.AccountAge() < c.Policy.NewAccountAge {
		c.AddVerdict(automod.Verdict{
			Source:      automod.SourceRaid,
			Category:    "new_account",
			Severity:    automod.SeverityMedium,
			Recommended: automod.ActionWarn,
			Evidence: map[string]interface{}{
				"accountAge": c.Event.AccountAge().String(),
			},
		})
	}

	count, err := c.CountWithinGuild(timeline.SeriesJoin, c.Policy.JoinRateWindow)
	if err != nil {
		return err
	}
	if c.Policy.JoinRateLimit > 0 && count > c.Policy.JoinRateLimit {
		c.AddVerdict(automod.Verdict{
			Source:      automod.SourceRaid,
			Category:    "mass_join",
			Severity:    automod.SeverityHigh,
			Recommended: automod.ActionLockdown,
			Evidence: map[string]interface{}{
				"joins":  count,
				"window": c.Policy.JoinRateWindow.String(),
			},
		})
	}

	patterns := defaultSuspiciousPatterns
	if len(c.Policy.SuspiciousPatterns) > 0 {
		patterns, err = keyword.CompilePatterns(c.Policy.SuspiciousPatterns)
		if err != nil {
			return err
		}
	}
	if keyword.MatchesAny(c.Event.Username, patterns) || keyword.MatchesAny(c.Event.Nickname, patterns) {
		c.AddVerdict(automod.Verdict{
			Source:      automod.SourceRaid,
			Category:    "suspicious_pattern",
			Severity:    automod.SeverityHigh,
			Recommended: automod.ActionBan,
			Evidence: map[string]interface{}{
				"username": c.Event.Username,
			},
		})
	}
	return nil
}
