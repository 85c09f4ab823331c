package render

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Style holds every colour and size the pipeline draws with. Colours are hex
// strings ("#RRGGBB" or "#RRGGBBAA") so canvas clients can use them as-is.
type Style struct {
	Background string `yaml:"background"`

	GridColor   string  `yaml:"grid_color"`
	GridAlpha   float64 `yaml:"grid_alpha"`
	GridSpacing float64 `yaml:"grid_spacing"`  // world units
	GridMinStep float64 `yaml:"grid_min_step"` // screen px below which the grid is hidden

	ShapeFill      string  `yaml:"shape_fill"`
	ShapeStroke    string  `yaml:"shape_stroke"`
	ShapeAlpha     float64 `yaml:"shape_alpha"`
	SelectedStroke string  `yaml:"selected_stroke"`
	SelectionInset float64 `yaml:"selection_inset"` // px the outline sits outside the shape

	HUD      bool    `yaml:"hud"`
	HUDColor string  `yaml:"hud_color"`
	HUDAlpha float64 `yaml:"hud_alpha"`
	HUDSize  float64 `yaml:"hud_size"`
}

func DefaultStyle() Style {
	return Style{
		Background:     "#0b0c10",
		GridColor:      "#ffffff",
		GridAlpha:      0.12,
		GridSpacing:    80,
		GridMinStep:    25,
		ShapeFill:      "#ffffff2e",
		ShapeStroke:    "#ffffff59",
		ShapeAlpha:     0.9,
		SelectedStroke: "#8ab4fff2",
		SelectionInset: 2,
		HUD:            true,
		HUDColor:       "#ffffffcc",
		HUDAlpha:       0.75,
		HUDSize:        12,
	}
}

func (s Style) Validate() error {
	if s.GridSpacing <= 0 {
		return errors.New("grid_spacing must be positive")
	}
	if s.GridMinStep < 0 {
		return errors.New("grid_min_step must not be negative")
	}
	return nil
}

// LoadStyle reads a YAML style file. Keys missing from the file keep their
// DefaultStyle values.
func LoadStyle(path string) (Style, error) {
	st := DefaultStyle()
	data, err := os.ReadFile(path)
	if err != nil {
		return st, fmt.Errorf("read style: %w", err)
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("parse style: %w", err)
	}
	if err := st.Validate(); err != nil {
		return st, fmt.Errorf("invalid style: %w", err)
	}
	return st, nil
}
