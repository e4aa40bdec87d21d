// File: hostloop/process_test.go
// Author: momentics <momentics@gmail.com>

package hostloop

import (
	"strings"
	"testing"
	"time"
)

func TestRunProcessCapturesStdoutAndStderr(t *testing.T) {
	res := runProcess("printf out; printf err >&2", nil, 5*time.Second)
	if res.ReturnCode != 0 || res.Stdout != "out" || res.Stderr != "err" {
		t.Errorf("result = %+v", res)
	}
}

func TestRunProcessReportsExitCode(t *testing.T) {
	res := runProcess("exit 3", nil, 5*time.Second)
	if res.ReturnCode != 3 {
		t.Errorf("ReturnCode = %d, want 3", res.ReturnCode)
	}
}

func TestRunProcessKillsOnTimeout(t *testing.T) {
	start := time.Now()
	res := runProcess("sleep 10", nil, 100*time.Millisecond)
	if time.Since(start) > 5*time.Second {
		t.Fatal("timeout was not enforced")
	}
	if res.ReturnCode != -1 {
		t.Errorf("ReturnCode = %d, want -1", res.ReturnCode)
	}
	if !strings.Contains(res.Stderr, "killed after") {
		t.Errorf("Stderr = %q", res.Stderr)
	}
}

func TestCurlArgsTranslateTransferOptions(t *testing.T) {
	args := curlArgs("https://example.com/api", map[string]string{
		"header":         "1",
		"followlocation": "1",
		"postfields":     "a=b&c=d",
		"useragent":      "chatloop",
		"httpheader":     "Authorization: Bearer x\nAccept: application/json",
	}, 30*time.Second)

	joined := " " + strings.Join(args, " ") + " "
	for _, want := range []string{
		" -sS ", " -i ", " -L ",
		" -d a=b&c=d ",
		" -A chatloop ",
		" -H Authorization: Bearer x ",
		" -H Accept: application/json ",
		" --max-time 30 ",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %v", strings.TrimSpace(want), args)
		}
	}
	if args[len(args)-1] != "https://example.com/api" {
		t.Errorf("url not last: %v", args)
	}
}

func TestCurlArgsMinimal(t *testing.T) {
	args := curlArgs("http://h", nil, 0)
	want := []string{"-sS", "http://h"}
	if len(args) != len(want) {
		t.Fatalf("args = %v", args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args = %v, want %v", args, want)
		}
	}
}
