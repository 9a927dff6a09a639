package transcribe

import (
	"fmt"
	"strings"
)

// Voice is a prebuilt text-to-speech voice name.
type Voice string

const (
	VoiceKore   Voice = "Kore"
	VoicePuck   Voice = "Puck"
	VoiceCharon Voice = "Charon"
	VoiceFenrir Voice = "Fenrir"
	VoiceZephyr Voice = "Zephyr"
)

// VoiceInfo describes a selectable voice.
type VoiceInfo struct {
	Name        Voice  `json:"name"`
	Description string `json:"description"`
}

// Voices lists the narration voices in display order.
func Voices() []VoiceInfo {
	return []VoiceInfo{
		{VoiceKore, "Professional & Direct"},
		{VoicePuck, "Friendly & Casual"},
		{VoiceCharon, "Deep & Authoritative"},
		{VoiceFenrir, "Warm & Calming"},
		{VoiceZephyr, "Fast & Energetic"},
	}
}

// ParseVoice resolves a voice name case-insensitively. Empty input selects Kore.
func ParseVoice(value string) (Voice, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return VoiceKore, nil
	}
	for _, v := range Voices() {
		if strings.EqualFold(string(v.Name), value) {
			return v.Name, nil
		}
	}
	return "", fmt.Errorf("unknown voice %q", value)
}

// Audio is synthesized speech.
type Audio struct {
	Data     []byte
	MimeType string
}
