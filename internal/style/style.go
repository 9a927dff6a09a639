package style

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// ErrInvalidStyle reports a style value outside its allowed range.
var ErrInvalidStyle = errors.New("invalid caption style")

// Transparent is the background colour sentinel for "no background".
const Transparent = "transparent"

// Font weights accepted by Style.FontWeight.
const (
	WeightNormal    = "normal"
	WeightBold      = "bold"
	WeightExtraBold = "extra-bold"
)

// Text alignments accepted by Style.TextAlign.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Fonts lists the font families offered to users.
var Fonts = []string{
	"system-ui",
	"Inter",
	"Bebas Neue",
	"Impact",
	"Arial Black",
	"Helvetica",
	"Georgia",
	"Courier New",
	"Roboto Mono",
	"Lexend",
	"Montserrat",
}

// Style is the caption presentation shared by every caption in a session.
type Style struct {
	FontSize          float64 `json:"font_size" yaml:"font_size"`
	Color             string  `json:"color" yaml:"color"`
	BackgroundColor   string  `json:"background_color" yaml:"background_color"`
	BackgroundOpacity float64 `json:"background_opacity" yaml:"background_opacity"`
	BorderRadius      float64 `json:"border_radius" yaml:"border_radius"`
	Padding           float64 `json:"padding" yaml:"padding"`
	PositionY         float64 `json:"position_y" yaml:"position_y"`
	FontWeight        string  `json:"font_weight" yaml:"font_weight"`
	FontFamily        string  `json:"font_family" yaml:"font_family"`
	TextAlign         string  `json:"text_align" yaml:"text_align"`
	Shadow            bool    `json:"shadow" yaml:"shadow"`
	Border            bool    `json:"border" yaml:"border"`
	Uppercase         bool    `json:"uppercase" yaml:"uppercase"`
	LetterSpacing     float64 `json:"letter_spacing" yaml:"letter_spacing"`
	LineHeight        float64 `json:"line_height" yaml:"line_height"`
	Glow              bool    `json:"glow" yaml:"glow"`
	MaxWordsPerLine   int     `json:"max_words_per_line" yaml:"max_words_per_line"`
	MultiLine         bool    `json:"multi_line" yaml:"multi_line"`
}

// Default returns the style a new session starts with.
func Default() Style {
	return Style{
		FontSize:          28,
		Color:             "#ffffff",
		BackgroundColor:   "#000000",
		BackgroundOpacity: 0.6,
		BorderRadius:      8,
		Padding:           12,
		PositionY:         85,
		FontWeight:        WeightBold,
		FontFamily:        "system-ui",
		TextAlign:         AlignCenter,
		Shadow:            true,
		Border:            false,
		Uppercase:         false,
		LetterSpacing:     0,
		LineHeight:        1.2,
		Glow:              false,
		MaxWordsPerLine:   5,
		MultiLine:         true,
	}
}

// Validate checks every field against its allowed range.
func (s Style) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}
	check(finite(s.FontSize) && s.FontSize > 0, "font_size must be positive")
	check(hexColor.MatchString(s.Color), "color must be #rrggbb, got %q", s.Color)
	check(s.BackgroundColor == Transparent || hexColor.MatchString(s.BackgroundColor),
		"background_color must be #rrggbb or %q, got %q", Transparent, s.BackgroundColor)
	check(finite(s.BackgroundOpacity) && s.BackgroundOpacity >= 0 && s.BackgroundOpacity <= 1, "background_opacity must be within 0..1")
	check(finite(s.BorderRadius) && s.BorderRadius >= 0, "border_radius must not be negative")
	check(finite(s.Padding) && s.Padding >= 0, "padding must not be negative")
	check(finite(s.PositionY) && s.PositionY >= 0 && s.PositionY <= 100, "position_y must be within 0..100")
	switch s.FontWeight {
	case WeightNormal, WeightBold, WeightExtraBold:
	default:
		problems = append(problems, fmt.Sprintf("font_weight %q is not one of normal, bold, extra-bold", s.FontWeight))
	}
	check(strings.TrimSpace(s.FontFamily) != "", "font_family must be set")
	switch s.TextAlign {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		problems = append(problems, fmt.Sprintf("text_align %q is not one of left, center, right", s.TextAlign))
	}
	check(finite(s.LetterSpacing), "letter_spacing must be finite")
	check(finite(s.LineHeight) && s.LineHeight > 0, "line_height must be positive")
	check(s.MaxWordsPerLine > 0, "max_words_per_line must be positive")

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidStyle, strings.Join(problems, "; "))
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
