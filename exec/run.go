// Package exec runs external commands and captures their output.
package exec

import (
	"bytes"
	"os"
	"os/exec"

	"github.com/apex/log"
)

// Cmd represents a single executable invocation.
type Cmd struct {
	Name string   // Executable name.
	Argv []string // Executable arguments.

	Dir string // The command's working directory.
}

// Run executes a `Cmd` and returns its captured output.
func Run(cmd Cmd) (stdout, stderr string, err error) {
	log.WithField("cmd", append([]string{cmd.Name}, cmd.Argv...)).Debug("running command")

	var stderrBuffer bytes.Buffer
	xc := exec.Command(cmd.Name, cmd.Argv...)
	xc.Stderr = &stderrBuffer
	xc.Env = os.Environ()

	if cmd.Dir != "" {
		xc.Dir = cmd.Dir
	}

	stdoutBuffer, err := xc.Output()
	stdout = string(stdoutBuffer)
	stderr = stderrBuffer.String()

	log.WithFields(log.Fields{
		"stdout": stdout,
		"stderr": stderr,
	}).Debug("done running")

	return stdout, stderr, err
}
