// File: hostloop/process.go
// Author: momentics <momentics@gmail.com>
//
// External process runner. Follows the WeeChat hook_process convention:
// "url:<url>" descriptors become curl transfers configured from the options
// map, anything else runs through the shell. Exactly one ProcessResult is
// delivered per hook, even when the command is killed on timeout.

package hostloop

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/momentics/chatloop/api"
)

// HookProcess spawns the command and posts its ProcessResult when done.
func (l *Loop) HookProcess(command string, options map[string]string, timeout time.Duration, callbackID string) {
	go func() {
		l.post(callbackID, runProcess(command, options, timeout))
	}()
}

func runProcess(command string, options map[string]string, timeout time.Duration) (res api.ProcessResult) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var cmd *exec.Cmd
	if url, ok := strings.CutPrefix(command, "url:"); ok {
		cmd = exec.CommandContext(ctx, "curl", curlArgs(url, options, timeout)...)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	switch {
	case err == nil:
		res.ReturnCode = 0
	case ctx.Err() != nil:
		res.ReturnCode = -1
		if res.Stderr == "" {
			res.Stderr = fmt.Sprintf("killed after %s", timeout)
		}
	default:
		if exitErr, ok := err.(*exec.ExitError); ok {
			res.ReturnCode = exitErr.ExitCode()
		} else {
			res.ReturnCode = -1
			if res.Stderr == "" {
				res.Stderr = err.Error()
			}
		}
	}
	return res
}

// curlArgs translates the transfer options the core uses into curl flags.
func curlArgs(url string, options map[string]string, timeout time.Duration) []string {
	args := []string{"-sS"}
	if options["header"] == "1" {
		args = append(args, "-i")
	}
	if options["followlocation"] == "1" {
		args = append(args, "-L")
	}
	if v, ok := options["postfields"]; ok {
		args = append(args, "-d", v)
	}
	if v, ok := options["useragent"]; ok {
		args = append(args, "-A", v)
	}
	if v, ok := options["httpheader"]; ok {
		for _, h := range strings.Split(v, "\n") {
			if h != "" {
				args = append(args, "-H", h)
			}
		}
	}
	if timeout > 0 {
		args = append(args, "--max-time", fmt.Sprintf("%d", int(timeout/time.Second)))
	}
	return append(args, url)
}
