// Package transcribe turns a video into caption segments through an external
// speech model and narrates text through a text-to-speech model.
//
// Pipeline is the entry point: it resolves the language selector, bounds the
// request with a timeout, performs exactly one provider call, and validates
// every returned segment before minting caption IDs. Providers are pluggable;
// GeminiProvider (default) sends the whole video inline, WhisperProvider uses
// an OpenAI-compatible transcription endpoint.
//
// Outcomes are explicit: a well-formed empty list is a success with zero
// captions, a missing or malformed payload is ErrMalformedResponse, and
// transport or quota failures are ErrRequestFailed. Nothing is retried.
package transcribe
