package language

import (
	"errors"
	"fmt"
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Hinglish is the pseudo-code for Hindi written in Roman script.
const Hinglish = "hi-en"

// HinglishInstruction replaces the Hinglish code in transcription requests.
const HinglishInstruction = "Hinglish (Hindi written in Roman script). Use trendy, conversational Hinglish " +
	"(e.g., 'Gazab content hai bhai!', 'Check out karo'). Suitable for Instagram Reels."

// ErrUnsupported reports a language outside the supported list.
var ErrUnsupported = errors.New("unsupported language")

// Language is one selectable caption language.
type Language struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Native string `json:"native,omitempty"`
	ISO3   string `json:"iso3"`
}

type entry struct {
	code  string   // selector sent to the transcription backend
	name  string   // label shown to users
	code3 string   // ISO 639-2
	words []string // accepted word forms
}

var languages = []entry{
	{"en", "English", "eng", []string{"english"}},
	{Hinglish, "Hinglish (Roman Script)", "hin", []string{"hinglish"}},
	{"hi", "Hindi (हिंदी)", "hin", []string{"hindi"}},
	{"es", "Spanish", "spa", []string{"spanish"}},
	{"fr", "French", "fra", []string{"french", "fre"}},
	{"de", "German", "deu", []string{"german", "ger"}},
	{"it", "Italian", "ita", []string{"italian"}},
	{"pt", "Portuguese", "por", []string{"portuguese"}},
	{"ja", "Japanese", "jpn", []string{"japanese"}},
	{"ko", "Korean", "kor", []string{"korean"}},
	{"zh", "Chinese", "zho", []string{"chinese", "chi"}},
}

var byKey map[string]*entry

func init() {
	byKey = make(map[string]*entry, len(languages)*4)
	for i := range languages {
		e := &languages[i]
		byKey[e.code] = e
		for _, w := range e.words {
			byKey[w] = e
		}
	}
	// ISO 639-2 codes map to the first entry that declares them, so "hin" is Hindi.
	for i := len(languages) - 1; i >= 0; i-- {
		if languages[i].code != Hinglish {
			byKey[languages[i].code3] = &languages[i]
		}
	}
}

// Supported returns every selectable language in display order.
func Supported() []Language {
	out := make([]Language, 0, len(languages))
	for i := range languages {
		out = append(out, languages[i].public())
	}
	return out
}

// Lookup resolves a code, ISO 639-2 code or English word.
func Lookup(value string) (Language, bool) {
	key := strings.ToLower(strings.TrimSpace(value))
	key = strings.ReplaceAll(key, "_", "-")
	if e, ok := byKey[key]; ok {
		return e.public(), true
	}
	// Region variants such as "pt-BR" fall back to their base language.
	if key != Hinglish {
		if tag, err := xlanguage.Parse(key); err == nil {
			base, _ := tag.Base()
			if e, ok := byKey[base.String()]; ok {
				return e.public(), true
			}
		}
	}
	return Language{}, false
}

// Normalize returns the canonical code for value or ErrUnsupported.
func Normalize(value string) (string, error) {
	lang, ok := Lookup(value)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, value)
	}
	return lang.Code, nil
}

// Instruction returns the language selector sent to the transcription
// backend: the Hinglish instruction for "hi-en", the code itself otherwise.
func Instruction(code string) string {
	if code == Hinglish {
		return HinglishInstruction
	}
	return code
}

// ISO2 returns the ISO 639-1 code used by speech-to-text APIs, "hi" for Hinglish.
func ISO2(code string) string {
	if code == Hinglish {
		return "hi"
	}
	tag, err := xlanguage.Parse(code)
	if err != nil {
		return code
	}
	base, _ := tag.Base()
	return base.String()
}

// DisplayName returns the user label for a code, or the code uppercased when unknown.
func DisplayName(code string) string {
	if lang, ok := Lookup(code); ok {
		return lang.Name
	}
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

func (e *entry) public() Language {
	lang := Language{Code: e.code, Name: e.name, ISO3: e.code3}
	if e.code != Hinglish {
		if tag, err := xlanguage.Parse(e.code); err == nil {
			lang.Native = display.Self.Name(tag)
		}
	}
	return lang
}
