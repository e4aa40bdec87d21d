// File: task/process.go
// Author: momentics <momentics@gmail.com>
//
// Process primitive built on the host's process-completion hook.

package task

import (
	"fmt"
	"time"

	"github.com/momentics/chatloop/api"
)

// Run spawns an external command through the host and suspends t until the
// command completes or the host kills it after timeout. The host delivers
// captured stdout, the return code, and captured stderr in one shot.
func Run(t *Task, command string, options map[string]string, timeout time.Duration) (api.ProcessResult, error) {
	f := NewFuture[api.ProcessResult]()
	s := t.sched
	s.register(f.ID(), func(payload any) {
		res, ok := payload.(api.ProcessResult)
		if !ok {
			f.Fail(fmt.Errorf("task: process callback %s: unexpected payload type %T", f.ID(), payload))
			return
		}
		f.Resolve(res)
	})
	s.host.HookProcess(command, options, timeout, f.ID())
	return f.Await(t)
}
