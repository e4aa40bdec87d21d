// File: hostloop/loop_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package hostloop_test

import (
	"testing"
	"time"

	"github.com/momentics/chatloop/hostloop"
	"github.com/momentics/chatloop/task"
)

// startLoop builds a running loop+scheduler pair and returns a stop function.
func startLoop(t *testing.T) (*hostloop.Loop, *task.Scheduler, func()) {
	t.Helper()
	loop, err := hostloop.New()
	if err != nil {
		t.Fatal(err)
	}
	sched := task.NewScheduler(loop)
	loop.SetDispatcher(sched)
	done := make(chan struct{})
	go func() {
		loop.Run()
		close(done)
	}()
	return loop, sched, func() {
		loop.Stop()
		<-done
	}
}

func TestSubmitRunsOnLoopGoroutine(t *testing.T) {
	loop, _, stop := startLoop(t)
	defer stop()

	ran := make(chan struct{})
	loop.Submit(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("submitted closure never ran")
	}
}

func TestSubmitOrderingIsFIFO(t *testing.T) {
	loop, _, stop := startLoop(t)
	defer stop()

	var order []int
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		loop.Submit(func() { order = append(order, i) })
	}
	loop.Submit(func() { close(done) })

	<-done
	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v", order)
		}
	}
}

func TestTimerDrivesSleepingTask(t *testing.T) {
	loop, sched, stop := startLoop(t)
	defer stop()

	woke := make(chan struct{})
	loop.Submit(func() {
		task.Spawn(sched, func(tk *task.Task) (any, error) {
			task.Sleep(tk, 10*time.Millisecond)
			close(woke)
			return nil, nil
		})
	})

	select {
	case <-woke:
	case <-time.After(2 * time.Second):
		t.Fatal("sleeping task never resumed")
	}
}

func TestProcessCompletionReachesTask(t *testing.T) {
	loop, sched, stop := startLoop(t)
	defer stop()

	type outcome struct {
		stdout string
		rc     int
	}
	got := make(chan outcome, 1)
	loop.Submit(func() {
		task.Spawn(sched, func(tk *task.Task) (any, error) {
			res, err := task.Run(tk, "printf hello", nil, 5*time.Second)
			if err != nil {
				t.Error(err)
			}
			got <- outcome{res.Stdout, res.ReturnCode}
			return nil, nil
		})
	})

	select {
	case o := <-got:
		if o.stdout != "hello" || o.rc != 0 {
			t.Errorf("outcome = %+v", o)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("process result never delivered")
	}
}

func TestStopDrainsPendingDeliveries(t *testing.T) {
	loop, err := hostloop.New()
	if err != nil {
		t.Fatal(err)
	}

	ran := 0
	for i := 0; i < 3; i++ {
		loop.Submit(func() { ran++ })
	}
	loop.Stop()
	loop.Run() // stop already requested; Run drains and returns

	if ran != 3 {
		t.Errorf("ran = %d, want 3", ran)
	}
}
