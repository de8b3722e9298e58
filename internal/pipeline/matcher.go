// Package pipeline implements the inbound-message resolution pipeline:
// keyword matching, AI fallback, delivery and history recording.
package pipeline

import (
	"strings"

	"github.com/replyloop-ai/messenger-platform/internal/model"
)

// MatchKeyword evaluates rules in the order given and returns the first rule
// whose keyword appears in the message text, case-insensitively. The rule
// list is expected to already be in evaluation order (priority descending,
// creation order as tiebreak), so the result is deterministic for a fixed
// list and message.
func MatchKeyword(text string, rules []model.KeywordRule) (model.KeywordRule, bool) {
	lowered := strings.ToLower(text)
	for _, rule := range rules {
		keyword := strings.ToLower(rule.Keyword)
		if keyword == "" {
			continue
		}
		if strings.Contains(lowered, keyword) {
			return rule, true
		}
	}
	return model.KeywordRule{}, false
}
