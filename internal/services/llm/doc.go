// Package llm provides a chat client for OpenAI-compatible completion APIs.
//
// It works against OpenAI, OpenRouter, and local servers exposing the same
// /chat/completions shape; base_url selects the endpoint.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send system/user prompts, receive the model's text.
// Client.HealthCheck: verify API key and model availability.
//
// # Failure Behaviour
//
// Each call makes exactly one HTTP request. Non-2xx statuses, transport
// errors, and responses without content are returned as errors; callers
// decide whether and when to try again.
package llm
