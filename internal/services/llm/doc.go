// Package llm wraps the OpenRouter chat completion API for storyboard
// generation.
//
// The client asks the model for a strict JSON storyboard (scene names,
// narration scripts, visual code, durations) and decodes it into the
// storyboard package's types. Responses are requested with the JSON
// response format, but the decoder still tolerates the usual model
// quirks: code fences around the payload and leading prose before the
// opening brace.
//
// Transient failures (HTTP 408/429/5xx, timeouts, empty completions)
// are retried with exponential backoff, honoring Retry-After when the
// provider sends one.
package llm
