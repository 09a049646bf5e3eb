package rules

import (
	"github.com/menchan-Rub/Shard-Bot-sub001/automod"
)

// DefaultRules is the standard detector set in evaluation order.
func DefaultRules() automod.RuleSet {
	return automod.RuleSet{
		MessageRules: []automod.MessageRuleFunc{
			SpamMessageRule,
			BannedWordRule,
			ClassifierRule,
		},
		JoinRules: []automod.JoinRuleFunc{
			RaidJoinRule,
		},
	}
}
