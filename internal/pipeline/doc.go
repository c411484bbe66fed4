// Package pipeline holds the state of one analysis session: Refresh builds an
// immutable Snapshot from the provider chain and Apply derives filtered Views
// from it. A snapshot is never changed after creation; a new refresh replaces
// it.
package pipeline
