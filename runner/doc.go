// Package runner drives batches of creation hints against a Creator.
//
// A Runner sends each hint to a target address through any core.Sender (the
// in-process engine or a remote transport client), collects one Result per
// hint without stopping at the first failure, and stores every successful
// reply as a markdown artifact named "<type>_result.md".
//
// Hints are processed one at a time by default so that runs read like a
// story; raise Options.Concurrency to fan out.
package runner
