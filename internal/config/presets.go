package config

// Presets holds the special points recognized by default per quantity.
var Presets = map[string][]PointConfig{
	"pressure": {
		{Name: "ed", Derivative: 0, Kinds: []string{"MINIMUM"}},
		{Name: "eivc", Derivative: 1, Kinds: []string{"MAXIMUM"}, After: []string{"ed"}},
		{Name: "peak", Derivative: 0, Kinds: []string{"MAXIMUM"}, After: []string{"eivc"}},
		{Name: "eivr", Derivative: 1, Kinds: []string{"MINIMUM"}, After: []string{"peak"}},
	},
	"volume": {
		{Name: "ed", Derivative: 0, Kinds: []string{"MAXIMUM"}},
		{Name: "es", Derivative: 0, Kinds: []string{"MINIMUM"}, After: []string{"ed"}},
	},
}

// GetPreset returns a copy of the preset points for quantity, or nil.
func GetPreset(quantity string) []PointConfig {
	preset, ok := Presets[quantity]
	if !ok {
		return nil
	}
	out := make([]PointConfig, len(preset))
	copy(out, preset)
	return out
}
