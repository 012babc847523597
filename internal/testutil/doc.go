// Package testutil contains helper builders and fakes used across tests to
// reduce boilerplate: echo agents with stop accounting, scripted
// synthesizers, canned specifications and an event builder. They are not
// intended for production usage.
package testutil
