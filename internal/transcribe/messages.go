package transcribe

import (
	"context"
	"errors"
	"fmt"

	"capgenius/internal/language"
	"capgenius/internal/services"
)

// UserMessage renders err as the single sentence shown to the user when
// caption generation fails.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "generation was cancelled"
	case errors.Is(err, services.ErrTimeout):
		return "the AI service did not respond in time, try a 30-60 second clip first"
	case errors.Is(err, language.ErrUnsupported):
		return "the selected language is not supported"
	case errors.Is(err, ErrEmptyVideo):
		return "no video is loaded"
	case errors.Is(err, ErrMalformedResponse):
		return "the AI service returned an unreadable response"
	case errors.Is(err, ErrRequestFailed):
		if code := StatusCode(err); code != 0 {
			return fmt.Sprintf("the AI service rejected the request (HTTP %d)", code)
		}
		return "the AI service could not be reached"
	default:
		return "the AI engine was overwhelmed"
	}
}
