package exec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wormwatch/wormwatch-cli/exec"
)

func TestRun(t *testing.T) {
	stdout, _, err := exec.Run(exec.Cmd{Name: "echo", Argv: []string{"hello"}})
	assert.NoError(t, err)
	assert.Equal(t, "hello", strings.TrimSpace(stdout))
}

func TestRunMissingCommand(t *testing.T) {
	_, _, err := exec.Run(exec.Cmd{Name: "definitely-not-a-command-xyz"})
	assert.Error(t, err)
}
