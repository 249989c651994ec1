package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const layered = `
InputUnits = ["mkm"]
Wavelength = 0.55
RefractiveIndex = 1.33
MeanRadius = 1.0
Sigma = 0.2

[Models.inherit]

[Models.override]
MeanRadius = 2.0

[Models.effective]
EffectiveRadius = 1.5
EffectiveVariance = 0.1
NAngles = 19

[Models.listed]
Angles = [0.0, 45.0, 90.0]
`

func unify(t *testing.T, text, model string) (ModelParameters, error) {
	t.Helper()
	config, meta, err := DecodeConfig(text)
	require.NoError(t, err)
	parameters, ok := config.Models[model]
	require.True(t, ok, "model %s not decoded", model)
	err = parameters.CheckAndUnify(model, &config, &meta)
	return parameters, err
}

func TestCheckAndUnifyPrecedence(t *testing.T) {
	inherit, err := unify(t, layered, "inherit")
	require.NoError(t, err)
	assert.InDelta(t, 5.5e-7, inherit.Wavelength, 1e-18)
	assert.InDelta(t, 1e-6, inherit.MeanRadius, 1e-18)
	assert.InDelta(t, 2e-7, inherit.Sigma, 1e-18)
	assert.Equal(t, 1.33, inherit.RefractiveIndex)
	assert.Equal(t, 361, inherit.NAngles)
	assert.Equal(t, 1000, inherit.SizeSteps)
	assert.Equal(t, "reference", inherit.Truncation)
	assert.Equal(t, "upward", inherit.LogDerivative)
	assert.False(t, inherit.UsesEffective())
	assert.Equal(t, []string{"mkm"}, inherit.OutputUnits())

	override, err := unify(t, layered, "override")
	require.NoError(t, err)
	assert.InDelta(t, 2e-6, override.MeanRadius, 1e-18)
	assert.InDelta(t, 2e-7, override.Sigma, 1e-18)

	effective, err := unify(t, layered, "effective")
	require.NoError(t, err)
	assert.InDelta(t, 1.5e-6, effective.EffectiveRadius, 1e-18)
	assert.Equal(t, 0.1, effective.EffectiveVariance)
	assert.Zero(t, effective.MeanRadius)
	assert.Zero(t, effective.Sigma)
	assert.Equal(t, 19, effective.NAngles)
	assert.True(t, effective.UsesEffective())

	listed, err := unify(t, layered, "listed")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 45, 90}, listed.Angles)
	assert.Zero(t, listed.NAngles)
}

func TestCheckAndUnifyPresets(t *testing.T) {
	const text = `
[Models.venus]
Preset = "venus2012"

[Models.tuned]
Preset = "hansenTravis"
EffectiveVariance = 0.1

[Models.resized]
Preset = "hansenTravis"
MeanRadius = 1.0
Sigma = 0.2

[Models.unknown]
Preset = "mars"
`
	venus, err := unify(t, text, "venus")
	require.NoError(t, err)
	assert.Equal(t, 6.173e-7, venus.Wavelength)
	assert.Equal(t, 1.44, venus.RefractiveIndex)
	assert.Equal(t, 0.49e-6, venus.MeanRadius)
	assert.Equal(t, 0.22e-6, venus.Sigma)

	tuned, err := unify(t, text, "tuned")
	require.NoError(t, err)
	assert.Equal(t, 1e-6, tuned.EffectiveRadius)
	assert.Equal(t, 0.1, tuned.EffectiveVariance)
	assert.Equal(t, 5.5e-7, tuned.Wavelength)

	resized, err := unify(t, text, "resized")
	require.NoError(t, err)
	assert.InDelta(t, 1e-6, resized.MeanRadius, 1e-18)
	assert.Zero(t, resized.EffectiveRadius)
	assert.Zero(t, resized.EffectiveVariance)

	_, err = unify(t, text, "unknown")
	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorContains(t, err, "mars")
}

func TestCheckAndUnifyRejects(t *testing.T) {
	cases := map[string]struct {
		text    string
		message string
	}{
		"ambiguous size": {
			text: `
Wavelength = 0.55
RefractiveIndex = 1.33
[Models.m]
MeanRadius = 1.0
Sigma = 0.2
EffectiveRadius = 1.0
`,
			message: "ambiguities",
		},
		"ambiguous angles": {
			text: `
Wavelength = 0.55
RefractiveIndex = 1.33
MeanRadius = 1.0
Sigma = 0.2
NAngles = 10
Angles = [0.0, 180.0]
[Models.m]
`,
			message: "global ambiguities",
		},
		"missing wavelength": {
			text: `
[Models.m]
RefractiveIndex = 1.33
MeanRadius = 1.0
Sigma = 0.2
`,
			message: "Wavelength",
		},
		"missing size": {
			text: `
[Models.m]
Wavelength = 0.55
RefractiveIndex = 1.33
`,
			message: "EffectiveRadius",
		},
		"half a pair": {
			text: `
[Models.m]
Wavelength = 0.55
RefractiveIndex = 1.33
MeanRadius = 1.0
`,
			message: "Sigma",
		},
		"emitting particle": {
			text: `
[Models.m]
Wavelength = 0.55
RefractiveIndex = 1.33
RefractiveIndexImag = -0.1
MeanRadius = 1.0
Sigma = 0.2
`,
			message: "imaginary",
		},
		"single angle": {
			text: `
[Models.m]
Wavelength = 0.55
RefractiveIndex = 1.33
MeanRadius = 1.0
Sigma = 0.2
NAngles = 1
`,
			message: "NAngles",
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := unify(t, c.text, "m")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)
			assert.ErrorContains(t, err, c.message)
		})
	}
}

func TestDecodeConfigRejects(t *testing.T) {
	_, _, err := DecodeConfig(`Wavelength = 0.55`)
	assert.ErrorIs(t, err, ErrConfig)

	_, _, err = DecodeConfig("InputUnits = [\"mkm\", \"nm\"]\n[Models.m]\n")
	assert.ErrorIs(t, err, ErrConfig)

	_, _, err = DecodeConfig("Wavelength = ")
	assert.ErrorIs(t, err, ErrConfig)
}

func TestModelNamesNaturalOrder(t *testing.T) {
	config, _, err := DecodeConfig("[Models.run10]\n[Models.run2]\n[Models.run1]\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"run1", "run2", "run10"}, config.ModelNames())
}

func TestSizeSweep(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sizes.txt")
	require.NoError(t, os.WriteFile(path, []byte("0.5 0.1\n\n1.0 0.2\n"), 0o600))

	text := fmt.Sprintf("SizeSweep = %q\nWavelength = 0.55\nRefractiveIndex = 1.33\n", path)
	config, meta, err := DecodeConfig(text)
	require.NoError(t, err)
	assert.Equal(t, []string{"sizes_l1", "sizes_l2"}, config.ModelNames())

	second := config.Models["sizes_l2"]
	require.NoError(t, second.CheckAndUnify("sizes_l2", &config, &meta))
	assert.InDelta(t, 1e-6, second.MeanRadius, 1e-18)
	assert.InDelta(t, 2e-7, second.Sigma, 1e-18)
	assert.InDelta(t, 5.5e-7, second.Wavelength, 1e-18)

	_, _, err = DecodeConfig(text + "[Models.extra]\n")
	assert.ErrorIs(t, err, ErrConfig)
}

func TestPresetModel(t *testing.T) {
	for _, name := range PresetNames() {
		model, err := PresetModel(name, []string{"nm"})
		require.NoError(t, err, name)
		assert.Equal(t, name, model.Preset)
		assert.Equal(t, []string{"nm"}, model.OutputUnits())
	}

	ht, err := PresetModel("hansenTravis", nil)
	require.NoError(t, err)
	assert.Equal(t, 0.25, ht.EffectiveVariance)
	assert.Equal(t, 1e-6, ht.EffectiveRadius)
	assert.Equal(t, 361, ht.NAngles)
	assert.Equal(t, complex(1.33, 0), ht.RefractiveIndexRatio())

	_, err = PresetModel("jupiter", nil)
	assert.ErrorIs(t, err, ErrConfig)
}
