// Package types defines the shared vocabulary of the framework: message
// roles, parsed LLM response states, and the structured error model.
package types
