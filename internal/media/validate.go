package media

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"capgenius/internal/services"
)

// InvalidVideoMessage is shown to the user when an upload is not a video.
const InvalidVideoMessage = "Please upload a valid video file."

var (
	// ErrNotVideo marks uploads that are not videos: a non video/* MIME type or
	// a file ffprobe finds no video stream in.
	ErrNotVideo = errors.New("not a video file")
	// ErrTooLarge marks uploads above the configured size limit.
	ErrTooLarge = errors.New("video exceeds size limit")
	// ErrReleased is returned when reading a video that was already released.
	ErrReleased = errors.New("video already released")
)

// ValidateMIME accepts any video/* media type, parameters allowed.
func ValidateMIME(value string) error {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(value))
	if err != nil || !strings.HasPrefix(mediaType, "video/") || len(mediaType) == len("video/") {
		return services.Wrap(services.ErrValidation, "media", "validate mime", InvalidVideoMessage, ErrNotVideo)
	}
	return nil
}

var videoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
}

// DetectMIME guesses the media type of a local file from its extension, then
// from its leading bytes.
func DetectMIME(name string, head []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	if known, ok := videoExtensions[ext]; ok {
		return known
	}
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		return byExt
	}
	return http.DetectContentType(head)
}
