package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIssues_Format(t *testing.T) {
	issues := Issues{
		{Path: []string{"id"}, Code: "invalid_type", Message: "Expected integer, received string"},
		{Path: []string{"user", "name"}, Code: "required", Message: "Required"},
		{Message: "Expected object"},
	}

	assert.Equal(t,
		"id: Expected integer, received string; user.name: Required; Expected object",
		issues.Format())
}

func TestIssues_FormatEmpty(t *testing.T) {
	assert.Equal(t, "", Issues(nil).Format())
}

func TestResultHelpers(t *testing.T) {
	ok := Ok(42)
	assert.True(t, ok.Success)
	assert.Equal(t, 42, ok.Data)

	fail := Fail(Issue{Message: "bad"})
	assert.False(t, fail.Success)
	assert.Len(t, fail.Issues, 1)
}

func TestBagOf(t *testing.T) {
	assert.Equal(t, StringBag{"id": "1"}, BagOf(map[string]string{"id": "1"}))
	assert.Equal(t, StringBag{"tag": []string{"a", "b"}}, BagOf(map[string][]string{"tag": {"a", "b"}}))
	assert.Empty(t, BagOf(map[string]string(nil)))
}
