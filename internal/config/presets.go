package config

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/toml"
)

// Presets hold published parameter sets, in SI. A model naming a preset
// takes every field it does not set itself from there.
var Presets = map[string]map[string]any{
	// Venus cloud layer, mode 1 (Kawabata et al.).
	"venus2012": {
		"Wavelength":      6.173e-7,
		"RefractiveIndex": 1.44,
		"MeanRadius":      0.49e-6,
		"Sigma":           0.22e-6,
	},
	"venusMode2": {
		"Wavelength":      6.173e-7,
		"RefractiveIndex": 1.44,
		"MeanRadius":      1.05e-6,
		"Sigma":           0.26e-6,
	},
	"venusMode3": {
		"Wavelength":      6.173e-7,
		"RefractiveIndex": 1.44,
		"MeanRadius":      3.40e-6,
		"Sigma":           1.109e-6,
	},
	// Hansen & Travis (1974) water cloud.
	"hansenTravis": {
		"Wavelength":        5.5e-7,
		"RefractiveIndex":   1.33,
		"EffectiveRadius":   1e-6,
		"EffectiveVariance": 0.25,
	},
}

func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// PresetModel builds a standalone model from a preset, as if a configuration
// file held a single model table naming it.
func PresetModel(name string, units []string) (ModelParameters, error) {
	config := Config{
		Models:       map[string]ModelParameters{name: {Preset: name}},
		isDefinedMap: map[string]struct{}{"Models#" + name + "#Preset": {}},
	}
	config.InputUnits = slices.Clone(defaultUnits)
	var conflicts []string
	config.OutputUnits, conflicts = checkUnits(units)
	if len(conflicts) > 0 {
		return ModelParameters{}, fmt.Errorf("%w: output unit conflict %v", ErrConfig, conflicts)
	}
	model := config.Models[name]
	err := model.CheckAndUnify(name, &config, &toml.MetaData{})
	return model, err
}
