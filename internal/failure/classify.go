package failure

import (
	"strings"

	"github.com/samber/lo"
)

// Rule maps any of its substrings to a category.
type Rule struct {
	Substrings []string
	Category   Category
}

// DefaultRules is a best-effort heuristic over tool and library diagnostics.
// Order matters: the first rule with a matching substring wins. Diagnostics
// quote paths and URLs, so the authentication patterns are whole phrases and
// come after the rules that name a specific condition.
var DefaultRules = []Rule{
	{
		Substrings: []string{"not a working copy", "e155007"},
		Category:   CategoryNotAWorkingCopy,
	},
	{
		Substrings: []string{"not a git repository", "repository does not exist", "repository not found"},
		Category:   CategoryNotARepository,
	},
	{
		Substrings: []string{"non-fast-forward", "diverged", "[rejected]", "updates were rejected"},
		Category:   CategoryDivergence,
	},
	{
		Substrings: []string{"executable file not found", "command not found"},
		Category:   CategoryEnvironment,
	},
	{
		Substrings: []string{
			"could not read username",
			"authentication failed",
			"authentication required",
			"authorization failed",
			"unable to authenticate",
			"permission denied (publickey)",
			"returned error: 401",
			"returned error: 403",
			"401 unauthorized",
			"403 forbidden",
			"e170001",
			"e215004",
		},
		Category: CategoryAuthentication,
	},
}

// Classifier turns an opaque diagnostic string into a category.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier. With no rules, DefaultRules are used.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Classify returns the category of the first matching rule, or CategoryUnknown.
func (c *Classifier) Classify(text string) Category {
	lower := strings.ToLower(text)
	for _, rule := range c.rules {
		if lo.SomeBy(rule.Substrings, func(s string) bool { return strings.Contains(lower, s) }) {
			return rule.Category
		}
	}
	return CategoryUnknown
}

// Classify uses DefaultRules.
func Classify(text string) Category {
	return defaultClassifier.Classify(text)
}

var defaultClassifier = NewClassifier()

// FromText builds a classified error from raw diagnostic text.
func FromText(op, message, text string) *Error {
	return &Error{
		Category: Classify(text),
		Op:       op,
		Message:  message,
		Detail:   strings.TrimSpace(text),
	}
}
