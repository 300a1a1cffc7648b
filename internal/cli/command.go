package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/cczw2010/chromedevtools/internal/config"
)

// InspectFlag makes node pause before the first line and listen on a random
// loopback port. The chosen URL is printed on stderr.
const InspectFlag = "--inspect-brk=127.0.0.1:0"

// BuildArgs constructs the node arguments for launching options.Script.
//
// Layout: inspect flag, NodeArgs, script, ScriptArgs. Caller-supplied inspect
// flags in NodeArgs replace the default one.
func BuildArgs(options *config.Options) []string {
	args := make([]string, 0, 2+len(options.NodeArgs)+len(options.ScriptArgs))

	if !hasInspectFlag(options.NodeArgs) {
		args = append(args, InspectFlag)
	}

	args = append(args, options.NodeArgs...)
	args = append(args, options.Script)
	args = append(args, options.ScriptArgs...)

	return args
}

func hasInspectFlag(args []string) bool {
	for _, a := range args {
		name, _, _ := strings.Cut(a, "=")
		switch name {
		case "--inspect", "--inspect-brk", "--inspect-wait":
			return true
		}
	}

	return false
}

// BuildEnvironment constructs the environment for the node process.
func BuildEnvironment(options *config.Options) []string {
	env := os.Environ()

	// A NODE_OPTIONS --inspect inherited from the parent would open a second
	// inspector on a fixed port.
	env = append(env, "NODE_OPTIONS=")

	for key, value := range options.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	return env
}
