package classifier

import (
	"strings"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// OverrideRule picks a sub-related issue when similarity matching finds none.
type OverrideRule interface {
	Apply(description string, candidates []domain.IssueNode) (domain.IssueNode, bool)
}

// KeywordRule selects the candidate named SubRelatedName when the description
// contains Keyword. Both comparisons ignore case.
type KeywordRule struct {
	Keyword        string
	SubRelatedName string
}

// Apply implements OverrideRule.
func (r KeywordRule) Apply(description string, candidates []domain.IssueNode) (domain.IssueNode, bool) {
	if !strings.Contains(strings.ToLower(description), strings.ToLower(r.Keyword)) {
		return domain.IssueNode{}, false
	}
	for _, candidate := range candidates {
		if strings.EqualFold(strings.TrimSpace(candidate.Name), r.SubRelatedName) {
			return candidate, true
		}
	}
	return domain.IssueNode{}, false
}

// DefaultRules is the override list used when none is configured.
func DefaultRules() []OverrideRule {
	return []OverrideRule{
		KeywordRule{Keyword: "keyboard", SubRelatedName: "key not working"},
	}
}

func applyRules(rules []OverrideRule, description string, candidates []domain.IssueNode) (domain.IssueNode, bool) {
	for _, rule := range rules {
		if node, ok := rule.Apply(description, candidates); ok {
			return node, true
		}
	}
	return domain.IssueNode{}, false
}
