// Package narrative turns insight sets into readable text.
//
// Composer is deterministic and always available. AINarrator is an optional
// collaborator backed by an OpenAI compatible chat completion endpoint; it is
// skipped without an API key and degrades to a message on failure.
package narrative
