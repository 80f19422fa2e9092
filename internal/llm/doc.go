// Package llm is a minimal client for OpenAI-compatible chat completion APIs.
//
// Only blocking completions are supported. The default endpoint is the
// Hugging Face inference router, which speaks the OpenAI wire format and
// routes "model:provider" names to third-party inference providers.
//
// Authentication is a bearer API key. The key is never logged.
package llm
