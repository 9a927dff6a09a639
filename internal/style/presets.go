package style

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownPreset reports a preset name that is not registered.
var ErrUnknownPreset = errors.New("unknown style preset")

// Preset is a named partial style applied on top of the current style.
type Preset struct {
	Name    string `json:"name" yaml:"name"`
	Patch   Patch  `json:"style" yaml:"style"`
	BuiltIn bool   `json:"built_in" yaml:"-"`
}

func ptr[T any](v T) *T { return &v }

// BuiltInPresets returns the presets shipped with capgenius.
func BuiltInPresets() []Preset {
	return []Preset{
		{Name: "Cinematic", BuiltIn: true, Patch: Patch{
			FontFamily:      ptr("Georgia"),
			FontWeight:      ptr(WeightNormal),
			Uppercase:       ptr(true),
			LetterSpacing:   ptr(2.0),
			BackgroundColor: ptr(Transparent),
			Shadow:          ptr(true),
			FontSize:        ptr(22.0),
			PositionY:       ptr(90.0),
		}},
		{Name: "Modern Bold", BuiltIn: true, Patch: Patch{
			FontFamily:        ptr("Impact"),
			FontWeight:        ptr(WeightBold),
			Uppercase:         ptr(true),
			FontSize:          ptr(42.0),
			BackgroundColor:   ptr("#ffcc00"),
			Color:             ptr("#000000"),
			BackgroundOpacity: ptr(1.0),
			BorderRadius:      ptr(4.0),
			Padding:           ptr(16.0),
			PositionY:         ptr(80.0),
		}},
		{Name: "Minimalist", BuiltIn: true, Patch: Patch{
			FontFamily:      ptr("Helvetica"),
			FontWeight:      ptr(WeightNormal),
			FontSize:        ptr(24.0),
			BackgroundColor: ptr(Transparent),
			Color:           ptr("#ffffff"),
			Shadow:          ptr(false),
			Border:          ptr(false),
			PositionY:       ptr(85.0),
		}},
		{Name: "Reels Pro", BuiltIn: true, Patch: Patch{
			FontFamily:        ptr("Arial Black"),
			FontWeight:        ptr(WeightExtraBold),
			FontSize:          ptr(36.0),
			Color:             ptr("#ffffff"),
			BackgroundColor:   ptr("#6366f1"),
			BackgroundOpacity: ptr(1.0),
			BorderRadius:      ptr(16.0),
			Padding:           ptr(20.0),
			Glow:              ptr(true),
			PositionY:         ptr(75.0),
		}},
	}
}

// Registry holds presets in display order. Lookups are case-insensitive.
type Registry struct {
	presets []Preset
}

// NewRegistry returns a registry seeded with the built-in presets.
func NewRegistry() *Registry {
	return &Registry{presets: BuiltInPresets()}
}

// List returns the presets in display order.
func (r *Registry) List() []Preset {
	return slices.Clone(r.presets)
}

// Names returns the preset names in display order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.presets))
	for _, p := range r.presets {
		names = append(names, p.Name)
	}
	return names
}

// Get returns the preset called name.
func (r *Registry) Get(name string) (Preset, error) {
	key := strings.TrimSpace(name)
	for _, p := range r.presets {
		if strings.EqualFold(p.Name, key) {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// Add registers a preset. A preset with the same name replaces the existing
// entry in place.
func (r *Registry) Add(p Preset) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: preset name is required", ErrInvalidStyle)
	}
	if p.Patch.IsEmpty() {
		return fmt.Errorf("%w: preset %q sets no fields", ErrInvalidStyle, p.Name)
	}
	if err := Default().Apply(p.Patch).Validate(); err != nil {
		return fmt.Errorf("preset %q: %w", p.Name, err)
	}
	for i := range r.presets {
		if strings.EqualFold(r.presets[i].Name, p.Name) {
			r.presets[i] = p
			return nil
		}
	}
	r.presets = append(r.presets, p)
	return nil
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// LoadFile adds the presets defined in a YAML file:
//
//	presets:
//	  - name: Podcast
//	    style:
//	      font_size: 30
//	      background_color: "#1f2937"
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read presets file: %w", err)
	}
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse presets file %s: %w", path, err)
	}
	for _, p := range file.Presets {
		p.BuiltIn = false
		if err := r.Add(p); err != nil {
			return fmt.Errorf("presets file %s: %w", path, err)
		}
	}
	return nil
}

// LoadRegistry returns the built-in presets plus those in path, when set.
func LoadRegistry(path string) (*Registry, error) {
	registry := NewRegistry()
	if strings.TrimSpace(path) == "" {
		return registry, nil
	}
	if err := registry.LoadFile(path); err != nil {
		return nil, err
	}
	return registry, nil
}
