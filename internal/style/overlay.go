package style

import (
	"fmt"
	"strconv"
	"strings"
)

// Overlay is the resolved presentation of the active caption, expressed in
// CSS terms so any player front-end can draw it.
type Overlay struct {
	Text          string   `json:"text"`
	Lines         []string `json:"lines"`
	FontSize      string   `json:"font_size"`
	Color         string   `json:"color"`
	Background    string   `json:"background_color"`
	Top           string   `json:"top"`
	FontWeight    string   `json:"font_weight"`
	FontFamily    string   `json:"font_family"`
	TextAlign     string   `json:"text_align"`
	TextShadow    string   `json:"text_shadow"`
	Border        string   `json:"border"`
	TextTransform string   `json:"text_transform"`
	LetterSpacing string   `json:"letter_spacing"`
	LineHeight    string   `json:"line_height"`
	Padding       string   `json:"padding"`
	BorderRadius  string   `json:"border_radius"`
}

// Resolve renders text with style s.
func Resolve(s Style, text string) Overlay {
	return Overlay{
		Text:          text,
		Lines:         WrapLines(text, s.MaxWordsPerLine, s.MultiLine),
		FontSize:      px(s.FontSize),
		Color:         s.Color,
		Background:    backgroundCSS(s.BackgroundColor, s.BackgroundOpacity),
		Top:           num(s.PositionY) + "%",
		FontWeight:    fontWeightCSS(s.FontWeight),
		FontFamily:    s.FontFamily,
		TextAlign:     s.TextAlign,
		TextShadow:    textShadowCSS(s),
		Border:        borderCSS(s),
		TextTransform: textTransformCSS(s.Uppercase),
		LetterSpacing: px(s.LetterSpacing),
		LineHeight:    num(s.LineHeight),
		Padding:       px(s.Padding),
		BorderRadius:  px(s.BorderRadius),
	}
}

// WrapLines splits text into lines of at most maxWords words. With multiLine
// off, or maxWords not positive, the text is a single line.
func WrapLines(text string, maxWords int, multiLine bool) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if !multiLine || maxWords <= 0 {
		return []string{strings.Join(words, " ")}
	}
	lines := make([]string, 0, (len(words)+maxWords-1)/maxWords)
	for start := 0; start < len(words); start += maxWords {
		end := min(start+maxWords, len(words))
		lines = append(lines, strings.Join(words[start:end], " "))
	}
	return lines
}

func backgroundCSS(color string, opacity float64) string {
	if !hexColor.MatchString(color) {
		return Transparent
	}
	r, _ := strconv.ParseUint(color[1:3], 16, 8)
	g, _ := strconv.ParseUint(color[3:5], 16, 8)
	b, _ := strconv.ParseUint(color[5:7], 16, 8)
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, num(opacity))
}

func fontWeightCSS(weight string) string {
	if weight == WeightExtraBold {
		return "900"
	}
	return weight
}

func textShadowCSS(s Style) string {
	switch {
	case s.Shadow && s.Glow:
		return "2px 2px 4px rgba(0,0,0,0.8), 0 0 20px " + s.Color
	case s.Shadow:
		return "2px 2px 4px rgba(0,0,0,0.8)"
	case s.Glow:
		return "0 0 15px " + s.Color
	default:
		return "none"
	}
}

func borderCSS(s Style) string {
	if s.Border {
		return "2px solid " + s.Color
	}
	return "none"
}

func textTransformCSS(uppercase bool) string {
	if uppercase {
		return "uppercase"
	}
	return "none"
}

func px(v float64) string {
	return num(v) + "px"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
