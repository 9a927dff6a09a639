package style

// Patch is a partial style. Nil fields keep the current value when applied.
type Patch struct {
	FontSize          *float64 `json:"font_size,omitempty" yaml:"font_size,omitempty"`
	Color             *string  `json:"color,omitempty" yaml:"color,omitempty"`
	BackgroundColor   *string  `json:"background_color,omitempty" yaml:"background_color,omitempty"`
	BackgroundOpacity *float64 `json:"background_opacity,omitempty" yaml:"background_opacity,omitempty"`
	BorderRadius      *float64 `json:"border_radius,omitempty" yaml:"border_radius,omitempty"`
	Padding           *float64 `json:"padding,omitempty" yaml:"padding,omitempty"`
	PositionY         *float64 `json:"position_y,omitempty" yaml:"position_y,omitempty"`
	FontWeight        *string  `json:"font_weight,omitempty" yaml:"font_weight,omitempty"`
	FontFamily        *string  `json:"font_family,omitempty" yaml:"font_family,omitempty"`
	TextAlign         *string  `json:"text_align,omitempty" yaml:"text_align,omitempty"`
	Shadow            *bool    `json:"shadow,omitempty" yaml:"shadow,omitempty"`
	Border            *bool    `json:"border,omitempty" yaml:"border,omitempty"`
	Uppercase         *bool    `json:"uppercase,omitempty" yaml:"uppercase,omitempty"`
	LetterSpacing     *float64 `json:"letter_spacing,omitempty" yaml:"letter_spacing,omitempty"`
	LineHeight        *float64 `json:"line_height,omitempty" yaml:"line_height,omitempty"`
	Glow              *bool    `json:"glow,omitempty" yaml:"glow,omitempty"`
	MaxWordsPerLine   *int     `json:"max_words_per_line,omitempty" yaml:"max_words_per_line,omitempty"`
	MultiLine         *bool    `json:"multi_line,omitempty" yaml:"multi_line,omitempty"`
}

// Apply returns s with every set field of p overriding it. s is not modified.
func (s Style) Apply(p Patch) Style {
	setFloat(&s.FontSize, p.FontSize)
	setString(&s.Color, p.Color)
	setString(&s.BackgroundColor, p.BackgroundColor)
	setFloat(&s.BackgroundOpacity, p.BackgroundOpacity)
	setFloat(&s.BorderRadius, p.BorderRadius)
	setFloat(&s.Padding, p.Padding)
	setFloat(&s.PositionY, p.PositionY)
	setString(&s.FontWeight, p.FontWeight)
	setString(&s.FontFamily, p.FontFamily)
	setString(&s.TextAlign, p.TextAlign)
	setBool(&s.Shadow, p.Shadow)
	setBool(&s.Border, p.Border)
	setBool(&s.Uppercase, p.Uppercase)
	setFloat(&s.LetterSpacing, p.LetterSpacing)
	setFloat(&s.LineHeight, p.LineHeight)
	setBool(&s.Glow, p.Glow)
	if p.MaxWordsPerLine != nil {
		s.MaxWordsPerLine = *p.MaxWordsPerLine
	}
	setBool(&s.MultiLine, p.MultiLine)
	return s
}

// IsEmpty reports whether the patch sets nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
