// Package session houses concrete implementations of core.SessionStore.
// The interface itself (and the Session struct) live in the core package;
// keeping only implementations here prevents the engine from depending on
// concrete storage.
package session
