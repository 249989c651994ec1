package config

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/facette/natsort"

	"github.com/wildstyl3r/polmie/internal/angles"
	"github.com/wildstyl3r/polmie/internal/utils"
)

var ErrConfig = errors.New("invalid configuration")

type Config struct {
	OutputDir string
	Models    map[string]ModelParameters
	ModelParameters
	SizeSweep    string
	isDefinedMap map[string]struct{}

	InputUnits  []string
	OutputUnits []string
}

func (c *Config) isDefined(path []string, meta *toml.MetaData) bool {
	if _, sureDefined := c.isDefinedMap[strings.Join(path, "#")]; sureDefined {
		return true
	}
	return meta.IsDefined(path...)
}

func LoadConfig(configFileName string) (Config, toml.MetaData, error) {
	var config Config
	meta, err := toml.DecodeFile(strings.TrimSuffix(configFileName, ".toml")+".toml", &config)
	if err != nil {
		return config, meta, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return config, meta, config.prepare()
}

// DecodeConfig parses configuration text, mostly for tests and embedded defaults.
func DecodeConfig(data string) (Config, toml.MetaData, error) {
	var config Config
	meta, err := toml.Decode(data, &config)
	if err != nil {
		return config, meta, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return config, meta, config.prepare()
}

func (config *Config) prepare() error {
	config.isDefinedMap = map[string]struct{}{}

	var unitsConflict []string
	config.InputUnits, unitsConflict = checkUnits(config.InputUnits)
	if len(unitsConflict) > 0 {
		return fmt.Errorf("%w: input unit conflict %v", ErrConfig, unitsConflict)
	}
	if len(config.OutputUnits) == 0 {
		config.OutputUnits = config.InputUnits
	}
	config.OutputUnits, unitsConflict = checkUnits(config.OutputUnits)
	if len(unitsConflict) > 0 {
		return fmt.Errorf("%w: output unit conflict %v", ErrConfig, unitsConflict)
	}

	if len(config.SizeSweep) > 0 {
		if len(config.Models) > 0 {
			return fmt.Errorf("%w: a size sweep file and direct model specification cannot be combined", ErrConfig)
		}
		sweep, err := utils.ReadFloatPairs(config.SizeSweep)
		if err != nil {
			return fmt.Errorf("%w: size sweep: %w", ErrConfig, err)
		}
		filename := utils.GetFilename(config.SizeSweep)
		config.Models = make(map[string]ModelParameters, len(sweep))
		for line := range sweep {
			modelName := filename + "_l" + strconv.Itoa(line+1)
			config.Models[modelName] = ModelParameters{
				MeanRadius: sweep[line][0],
				Sigma:      sweep[line][1],
			}
			config.isDefinedMap[strings.Join([]string{"Models", modelName, "MeanRadius"}, "#")] = struct{}{}
			config.isDefinedMap[strings.Join([]string{"Models", modelName, "Sigma"}, "#")] = struct{}{}
		}
	}
	if len(config.Models) == 0 {
		return fmt.Errorf("%w: no models provided", ErrConfig)
	}
	return nil
}

// ModelNames lists the models in natural order, so "run2" precedes "run10".
func (c *Config) ModelNames() []string {
	names := make([]string, 0, len(c.Models))
	for name := range c.Models {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return natsort.Compare(names[i], names[j])
	})
	return names
}

type ModelParameters struct {
	Preset              string
	Wavelength          float64 // [m]
	RefractiveIndex     float64 // real part of the particle to medium ratio
	RefractiveIndexImag float64 // absorption, >= 0
	MeanRadius          float64 // [m]
	Sigma               float64 // [m]
	EffectiveRadius     float64 // [m]
	EffectiveVariance   float64

	NAngles       int
	Angles        []float64 // [deg]
	SizeSteps     int
	GridCenter    float64 // [aeff]
	GridHalfWidth float64 // [aeff]

	Truncation    string
	LogDerivative string
	GrowthLimit   float64

	MakeDir bool

	_outputUnits []string
	_verbose     bool
	_threads     int
}

func (p *ModelParameters) OutputUnits() []string {
	return p._outputUnits
}

func (p *ModelParameters) SetOutputUnits(u []string) {
	p._outputUnits = u
}

func (p *ModelParameters) Verbose() bool {
	return p._verbose
}

func (p *ModelParameters) SetVerbosity(verbose bool) {
	p._verbose = verbose
}

func (p *ModelParameters) Threads() int {
	return p._threads
}

func (p *ModelParameters) SetThreads(threads int) {
	p._threads = threads
}

// RefractiveIndexRatio combines both parts as n + ik.
func (p *ModelParameters) RefractiveIndexRatio() complex128 {
	return complex(p.RefractiveIndex, p.RefractiveIndexImag)
}

// UsesEffective tells whether the size distribution is given as effective
// radius and variance rather than mean radius and deviation.
func (p *ModelParameters) UsesEffective() bool {
	return p.EffectiveRadius != 0 || p.EffectiveVariance != 0
}

var defaultValues = map[string]any{ // in SI
	"RefractiveIndexImag": 0.,
	"NAngles":             angles.DefaultCount,
	"SizeSteps":           1000,
	"GridCenter":          2.01,
	"GridHalfWidth":       2.,
	"Truncation":          "reference",
	"LogDerivative":       "upward",
	"GrowthLimit":         1e12,
	"MakeDir":             false,
}

var defaultUnits = []string{"mkm"}

var requiredFields = []string{"Wavelength", "RefractiveIndex"}

var fieldsXor = map[string][]string{
	"MeanRadius":        {"EffectiveRadius", "EffectiveVariance"},
	"Sigma":             {"EffectiveRadius", "EffectiveVariance"},
	"EffectiveRadius":   {"MeanRadius", "Sigma"},
	"EffectiveVariance": {"MeanRadius", "Sigma"},
	"NAngles":           {"Angles"},
	"Angles":            {"NAngles"},
}

var fieldsAnd = map[string][]string{
	"MeanRadius":        {"Sigma"},
	"Sigma":             {"MeanRadius"},
	"EffectiveRadius":   {"EffectiveVariance"},
	"EffectiveVariance": {"EffectiveRadius"},
}

var valueUnits = map[string][]UnitElement{
	"Wavelength": {
		{Class: Length, Power: 1},
	},
	"MeanRadius": {
		{Class: Length, Power: 1},
	},
	"Sigma": {
		{Class: Length, Power: 1},
	},
	"EffectiveRadius": {
		{Class: Length, Power: 1},
	},
}

func (modelConfig *ModelParameters) toSI(parameterNames, units []string) {
	modelConfigReflect := reflect.ValueOf(modelConfig).Elem()
	for name := range parameterNames {
		field := modelConfigReflect.FieldByName(parameterNames[name])
		if field.CanFloat() {
			field.SetFloat(SI(field.Float(), valueUnits[parameterNames[name]], units, true))
		}
	}
}

func (modelConfig *ModelParameters) checkFieldProblems(path []string, meta *toml.MetaData, globalConfig *Config) (ambiguities [][]string) {
	for field := range fieldsXor {
		if globalConfig.isDefined(appendPath(path, field), meta) {
			var foundAlternatives []string
			for _, alternative := range fieldsXor[field] {
				if globalConfig.isDefined(appendPath(path, alternative), meta) {
					foundAlternatives = append(foundAlternatives, alternative)
				}
			}
			if len(foundAlternatives) > 0 {
				ambiguities = append(ambiguities, append([]string{field}, foundAlternatives...))
			}
		}
	}
	return
}

func appendPath(path []string, field string) []string {
	return append(slices.Clip(path), field)
}

/*
field value priority:
1. model table
2. global
3. preset named by the model or, failing that, globally
4. default

A field defined at some level hides its alternatives (fieldsXor) on every
lower level, so a model giving EffectiveRadius never inherits a preset's
MeanRadius.
*/

func (modelConfig *ModelParameters) CheckAndUnify(modelName string, config *Config, meta *toml.MetaData) error {
	if ambiguities := config.checkFieldProblems(nil, meta, config); len(ambiguities) > 0 {
		return fmt.Errorf("%w: global ambiguities %v", ErrConfig, ambiguities)
	}
	localPath := []string{"Models", modelName}
	if ambiguities := modelConfig.checkFieldProblems(localPath, meta, config); len(ambiguities) > 0 {
		return fmt.Errorf("%w: ambiguities in model %s %v", ErrConfig, modelName, ambiguities)
	}

	var discoveredParameters []string
	excludeFromLoadingOuter := map[string]struct{}{}
	discover := func(fieldName string) {
		discoveredParameters = append(discoveredParameters, fieldName)
		for _, alternative := range fieldsXor[fieldName] {
			excludeFromLoadingOuter[alternative] = struct{}{}
		}
	}
	skip := func(fieldName string) bool {
		_, excluded := excludeFromLoadingOuter[fieldName]
		return excluded || slices.Contains(discoveredParameters, fieldName)
	}

	modelConfigReflect := reflect.ValueOf(modelConfig).Elem()
	globalConfigReflect := reflect.ValueOf(&config.ModelParameters).Elem()
	parametersType := modelConfigReflect.Type()
	for i := range parametersType.NumField() {
		field := parametersType.Field(i)
		if field.IsExported() && config.isDefined(appendPath(localPath, field.Name), meta) {
			discover(field.Name)
		}
	}
	for i := range parametersType.NumField() {
		field := parametersType.Field(i)
		if !field.IsExported() || skip(field.Name) || !config.isDefined([]string{field.Name}, meta) {
			continue
		}
		modelConfigReflect.Field(i).Set(globalConfigReflect.Field(i))
		discover(field.Name)
	}

	modelConfig.toSI(discoveredParameters, config.InputUnits)

	if modelConfig.Preset != "" {
		preset, known := Presets[modelConfig.Preset]
		if !known {
			return fmt.Errorf("%w: model %s: unknown preset %q (known: %s)", ErrConfig, modelName, modelConfig.Preset, strings.Join(PresetNames(), ", "))
		}
		for _, fieldName := range sortedKeys(preset) {
			if !skip(fieldName) {
				modelConfigReflect.FieldByName(fieldName).Set(reflect.ValueOf(preset[fieldName]))
				discover(fieldName)
			}
		}
	}

	for _, fieldName := range sortedKeys(defaultValues) {
		if !skip(fieldName) {
			modelConfigReflect.FieldByName(fieldName).Set(reflect.ValueOf(defaultValues[fieldName]))
			discover(fieldName)
		}
	}

	var missing []string
	for _, fieldName := range requiredFields {
		if !slices.Contains(discoveredParameters, fieldName) {
			missing = append(missing, fieldName)
		}
	}
	if !slices.Contains(discoveredParameters, "MeanRadius") &&
		!slices.Contains(discoveredParameters, "Sigma") &&
		!slices.Contains(discoveredParameters, "EffectiveRadius") &&
		!slices.Contains(discoveredParameters, "EffectiveVariance") {
		missing = append(missing, "MeanRadius and Sigma, or EffectiveRadius and EffectiveVariance")
	}
	for _, fieldName := range discoveredParameters {
		for _, requirement := range fieldsAnd[fieldName] {
			if !slices.Contains(discoveredParameters, requirement) && !slices.Contains(missing, requirement) {
				missing = append(missing, requirement)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: model %s lacks %s", ErrConfig, modelName, strings.Join(missing, ", "))
	}

	modelConfig.SetOutputUnits(config.OutputUnits)
	if err := modelConfig.Validate(); err != nil {
		return fmt.Errorf("model %s: %w", modelName, err)
	}
	return nil
}

// Validate checks the ranges that do not depend on the size distribution;
// distribution parameters are checked when the grid is built.
func (p *ModelParameters) Validate() error {
	var problems []string
	if !(p.Wavelength > 0) || math.IsInf(p.Wavelength, 0) {
		problems = append(problems, fmt.Sprintf("wavelength %v must be positive", p.Wavelength))
	}
	if !(p.RefractiveIndex > 0) || math.IsInf(p.RefractiveIndex, 0) {
		problems = append(problems, fmt.Sprintf("refractive index %v must be positive", p.RefractiveIndex))
	}
	if p.RefractiveIndexImag < 0 || math.IsNaN(p.RefractiveIndexImag) {
		problems = append(problems, fmt.Sprintf("imaginary refractive index %v must be non-negative", p.RefractiveIndexImag))
	}
	if len(p.Angles) == 0 && p.NAngles < 2 {
		problems = append(problems, fmt.Sprintf("NAngles %d must be at least 2", p.NAngles))
	}
	if p.SizeSteps < 0 {
		problems = append(problems, fmt.Sprintf("SizeSteps %d must be non-negative", p.SizeSteps))
	}
	if !(p.GrowthLimit > 0) {
		problems = append(problems, fmt.Sprintf("GrowthLimit %v must be positive", p.GrowthLimit))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfig, strings.Join(problems, "; "))
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
