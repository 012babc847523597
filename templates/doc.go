// Package templates supplies the specification templates Creators start from:
// the generic agent template (plain creation) and the root Creator
// specification. Defaults are embedded in the binary; a directory can
// override them and be watched for changes with fsnotify.
package templates
