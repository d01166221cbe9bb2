package core

import "context"

// BaseNode is the contract every step of the query loop implements, split
// into three phases: Prep reads state and builds the work (a planner request,
// a tool call), Exec performs it against the outside world, Post commits the
// outcome back to state and picks the route.
//
// Type parameters:
//   - State: the per-query state shared by all nodes of a flow
//   - PrepResult: what Prep emits and Exec consumes
//   - ExecResults: what Exec emits and Post consumes
type BaseNode[State any, PrepResult any, ExecResults any] interface {
	// Prep reads the query state and produces the work items for Exec.
	// An empty slice skips Exec; Post still runs and routes.
	Prep(state *State) []PrepResult

	// Exec performs one work item. Only Exec touches external systems, so
	// it alone is retried.
	Exec(ctx context.Context, prepResult PrepResult) (ExecResults, error)

	// Post commits results to the query state and chooses the next action.
	Post(state *State, prepRes []PrepResult, execResults ...ExecResults) Action

	// ExecFallback supplies a substitute result after retries are spent,
	// keeping one failed call from killing the whole query.
	ExecFallback(err error) ExecResults
}

// Workflow is anything runnable inside a flow graph. Node and Flow both
// implement it, so flows nest.
type Workflow[State any] interface {
	// Run executes the workflow and returns the action to route on.
	Run(ctx context.Context, state *State) Action

	// GetSuccessor returns the successor registered for an action.
	GetSuccessor(action Action) Workflow[State]

	// AddSuccessor registers a successor for an action (ActionDefault when
	// omitted) and returns it for chaining.
	AddSuccessor(successor Workflow[State], action ...Action) Workflow[State]
}
