package util

import (
	"context"
	"fmt"
)

// MockRunner implements CommandRunner for tests. It records every
// invocation and replays pre-configured results keyed by command name.
// Results queued for the same name are consumed in order; the last one
// is replayed once the queue drains.
type MockRunner struct {
	results map[string][]mockResult

	// Calls records all invocations in order.
	Calls []CommandCall
}

type mockResult struct {
	stdout []byte
	stderr []byte
	err    error
}

// CommandCall records a single command invocation.
type CommandCall struct {
	Name string
	Args []string
}

func NewMockRunner() *MockRunner {
	return &MockRunner{results: make(map[string][]mockResult)}
}

// Expect queues a result for invocations of name.
func (m *MockRunner) Expect(name string, stdout, stderr []byte, err error) *MockRunner {
	m.results[name] = append(m.results[name], mockResult{stdout: stdout, stderr: stderr, err: err})
	return m
}

// Run implements CommandRunner.
func (m *MockRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	m.Calls = append(m.Calls, CommandCall{Name: name, Args: args})

	queue := m.results[name]
	if len(queue) == 0 {
		return nil, nil, fmt.Errorf("unexpected command: %s", name)
	}

	res := queue[0]
	if len(queue) > 1 {
		m.results[name] = queue[1:]
	}

	return res.stdout, res.stderr, res.err
}

// LastCall returns the most recent invocation of name, or nil.
func (m *MockRunner) LastCall(name string) *CommandCall {
	for i := len(m.Calls) - 1; i >= 0; i-- {
		if m.Calls[i].Name == name {
			return &m.Calls[i]
		}
	}

	return nil
}

// CallCount returns how many times name was invoked.
func (m *MockRunner) CallCount(name string) int {
	n := 0
	for _, call := range m.Calls {
		if call.Name == name {
			n++
		}
	}

	return n
}
