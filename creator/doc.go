// Package creator implements the agent that creates agents.
//
// A Creator receives a file name hint. When the hint's base name starts with
// "creator" and carries the artifact extension it performs meta-creation:
// it rewrites its own specification into a new Creator, registers it and asks
// it to create a plain agent. Any other hint produces a plain agent from the
// generic template, which is registered and probed with "Give me an idea".
//
// Each request walks the same stages in order (classify, synthesize,
// register, probe, reply) and a failure aborts with a *StageError naming
// the stage that failed.
package creator
