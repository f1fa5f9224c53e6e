// Package llm provides the provider abstraction and the OpenAI-compatible
// HTTP client used for every model endpoint in the system. Providers double
// as operators so the dispatcher can call them by name.
package llm
