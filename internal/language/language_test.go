package language

import (
	"errors"
	"testing"
)

func TestSupportedOrderAndCodes(t *testing.T) {
	want := []string{"en", "hi-en", "hi", "es", "fr", "de", "it", "pt", "ja", "ko", "zh"}
	got := Supported()
	if len(got) != len(want) {
		t.Fatalf("expected %d languages, got %d", len(want), len(got))
	}
	for i, lang := range got {
		if lang.Code != want[i] {
			t.Fatalf("position %d: got %q want %q", i, lang.Code, want[i])
		}
	}
	if got[1].Name != "Hinglish (Roman Script)" || got[1].Native != "" {
		t.Fatalf("unexpected Hinglish entry: %+v", got[1])
	}
	if got[3].Native == "" {
		t.Fatalf("expected native name for Spanish, got %+v", got[3])
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"hi-en", "hi-en"},
		{"HI_EN", "hi-en"},
		{"hinglish", "hi-en"},
		{"hin", "hi"},
		{"Hindi", "hi"},
		{"fre", "fr"},
		{"deu", "de"},
		{"pt-BR", "pt"},
		{"zh-Hant", "zh"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeRejectsUnsupported(t *testing.T) {
	for _, input := range []string{"", "ru", "klingon", "xx-yy"} {
		if _, err := Normalize(input); !errors.Is(err, ErrUnsupported) {
			t.Errorf("Normalize(%q): expected ErrUnsupported, got %v", input, err)
		}
	}
}

func TestInstruction(t *testing.T) {
	if got := Instruction("hi-en"); got != HinglishInstruction {
		t.Fatalf("expected Hinglish instruction, got %q", got)
	}
	for _, code := range []string{"en", "hi", "ja"} {
		if got := Instruction(code); got != code {
			t.Fatalf("expected %q passed verbatim, got %q", code, got)
		}
	}
}

func TestISO2(t *testing.T) {
	if got := ISO2("hi-en"); got != "hi" {
		t.Fatalf("ISO2(hi-en) = %q", got)
	}
	if got := ISO2("pt"); got != "pt" {
		t.Fatalf("ISO2(pt) = %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("hi"); got != "Hindi (हिंदी)" {
		t.Fatalf("unexpected name: %q", got)
	}
	if got := DisplayName("ru"); got != "RU" {
		t.Fatalf("unexpected fallback: %q", got)
	}
	if got := DisplayName(""); got != "Unknown" {
		t.Fatalf("unexpected empty name: %q", got)
	}
}
