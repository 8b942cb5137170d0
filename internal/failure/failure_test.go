package failure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The classifier is a heuristic over free-form text; these cases pin the
// current rule order, not an authoritative mapping.
func TestClassify_BestEffort(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Category
	}{
		{"http 401", "fatal: unable to access 'https://x/': The requested URL returned error: 401", CategoryAuthentication},
		{"missing username", "fatal: could not read Username for 'https://github.com': terminal prompts disabled", CategoryAuthentication},
		{"ssh publickey", "git@github.com: Permission denied (publickey).", CategoryAuthentication},
		{"svn authorization", "svn: E170001: Authorization failed", CategoryAuthentication},
		{"svn not a working copy", "svn: E155007: '/tmp/x' is not a working copy", CategoryNotAWorkingCopy},
		{"git not a repo", "fatal: not a git repository (or any of the parent directories): .git", CategoryNotARepository},
		{"non fast forward", "! [rejected]        main -> main (non-fast-forward)", CategoryDivergence},
		{"missing binary", "exec: \"svn\": executable file not found in $PATH", CategoryEnvironment},
		{"http 403", "fatal: unable to access 'https://x/': The requested URL returned error: 403", CategoryAuthentication},
		{"library auth required", "authentication required", CategoryAuthentication},
		{"auth in working copy path", "svn: E155007: '/home/oauth-svc/wc' is not a working copy", CategoryNotAWorkingCopy},
		{"auth in repository path", "fatal: not a git repository: /src/author-tools/.git", CategoryNotARepository},
		{"auth in remote url", "repository not found: https://example.com/team/oauth-service.git", CategoryNotARepository},
		{"numbers in paths", "fatal: could not open '/tmp/build-401/x': No such file", CategoryUnknown},
		{"anything else", "fatal: something odd happened", CategoryUnknown},
		{"empty", "", CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassifier_CustomRulesOrder(t *testing.T) {
	c := NewClassifier(
		Rule{Substrings: []string{"boom"}, Category: CategoryDivergence},
		Rule{Substrings: []string{"boom"}, Category: CategoryAuthentication},
	)
	assert.Equal(t, CategoryDivergence, c.Classify("BOOM happened"))
	assert.Equal(t, CategoryUnknown, c.Classify("quiet"))
}

func TestError_IsMatchesCategorySentinel(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New(CategoryNoChanges, "git commit", "nothing to commit"))

	assert.True(t, errors.Is(err, ErrNoChanges))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, CategoryNoChanges, CategoryOf(err))
	assert.Equal(t, CategoryUnknown, CategoryOf(errors.New("plain")))
	assert.Equal(t, Category(""), CategoryOf(nil))
}

func TestError_Message(t *testing.T) {
	cause := errors.New("exit status 1")
	err := Wrap(CategoryUnknown, "svn update", cause).WithDetail("svn: E000000: boom")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "svn update: exit status 1\n\nsvn: E000000: boom", err.Error())

	v := Validation("svn add", "no files to add")
	assert.Equal(t, "svn add: no files to add", v.Error())
	assert.ErrorIs(t, v, ErrValidation)
}

func TestFromText(t *testing.T) {
	err := FromText("git clone", "clone failed", "  fatal: Authentication failed for 'https://x'\n")

	assert.Equal(t, CategoryAuthentication, err.Category)
	assert.Equal(t, "fatal: Authentication failed for 'https://x'", err.Detail)
}
