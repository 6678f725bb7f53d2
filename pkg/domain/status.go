package domain

// TestStatus represents the execution behavior of a test node.
// It is derived from the node's modifiers and never stored separately.
type TestStatus string

const (
	// TestStatusActive indicates a normal test that runs and expects success.
	TestStatusActive TestStatus = "active"
	// TestStatusSkipped indicates a test intentionally excluded from execution.
	TestStatusSkipped TestStatus = "skipped"
	// TestStatusTodo indicates a test not yet implemented.
	TestStatusTodo TestStatus = "todo"
	// TestStatusFocused indicates a debugging-only test (.only, fit).
	TestStatusFocused TestStatus = "focused"
	// TestStatusXfail indicates a test expected to fail (.failing).
	TestStatusXfail TestStatus = "xfail"
)
