package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	oldCommit, oldBuild := Commit, BuildTime
	t.Cleanup(func() { Commit, BuildTime = oldCommit, oldBuild })

	Commit = "0123456789abcdef"
	BuildTime = "2025-03-01T00:00:00Z"
	assert.Equal(t, "printfarmd dev (commit: 0123456, built: 2025-03-01T00:00:00Z)", String())

	Commit = "abc"
	assert.Contains(t, String(), "commit: abc,")
}
