package testutil

import (
	"context"
	"strings"
	"sync"
)

// ExecCall is one recorded command invocation.
type ExecCall struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

// String renders the call as a shell-like line for assertion messages.
func (c ExecCall) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// ExecRecorder is a command runner double that records every invocation.
// The Script hook, when set, decides each call's output and error; the
// nil default reports success with no output.
type ExecRecorder struct {
	mu     sync.Mutex
	calls  []ExecCall
	Script func(call ExecCall) ([]byte, error)
}

// Run records the call and consults the Script hook. A cancelled context
// wins over the script result.
func (r *ExecRecorder) Run(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	call := ExecCall{
		Name: name,
		Args: append([]string(nil), args...),
		Dir:  dir,
		Env:  append([]string(nil), env...),
	}
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Script != nil {
		return r.Script(call)
	}
	return nil, nil
}

// Calls returns a copy of the recorded invocations in call order.
func (r *ExecRecorder) Calls() []ExecCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ExecCall(nil), r.calls...)
}

// CallCount reports how many invocations were recorded.
func (r *ExecRecorder) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}
