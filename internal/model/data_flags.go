package model

import (
	"github.com/spf13/pflag"

	"github.com/wildstyl3r/polmie/internal/config"
)

type DataItem struct {
	saveFlag   *bool
	fileSuffix string
}

type SequentialDataItem struct {
	DataItem
	columnNames []string
	values      func(*DataExtractor) (args []float64, values [][]float64)
	xUnit       []config.UnitElement
	yUnit       []config.UnitElement
}

type DataFlags struct {
	all         *bool
	summary     *bool
	sequentials map[string]SequentialDataItem
	outputPath  string
}

// NewDataFlags registers one switch per output file on fs.
func NewDataFlags(fs *pflag.FlagSet) DataFlags {
	return DataFlags{
		all:     fs.Bool("all", false, "save every available output"),
		summary: fs.BoolP("summary", "q", false, "save efficiencies and curve diagnostics of all models in one table"),
		sequentials: map[string]SequentialDataItem{
			"Polarization": {
				DataItem: DataItem{
					saveFlag:   fs.BoolP("polarization", "p", true, "save degree of linear polarization"),
					fileSuffix: "P",
				},
				columnNames: []string{"angle (deg)", "P (%)"},
				values: func(de *DataExtractor) (args []float64, values [][]float64) {
					for i := range de.result.Curve.Len() {
						args = append(args, de.result.Curve.Degrees[i])
						values = append(values, []float64{de.result.Curve.Polarization[i]})
					}
					return args, values
				},
			},
			"Phase matrix": {
				DataItem: DataItem{
					saveFlag:   fs.BoolP("phase-matrix", "f", false, "save size averaged F11 and F21"),
					fileSuffix: "F",
				},
				columnNames: []string{"angle (deg)", "F11", "F21"},
				values: func(de *DataExtractor) (args []float64, values [][]float64) {
					for i := range de.result.Angles.Len() {
						args = append(args, de.result.Angles.Degree(i))
						values = append(values, []float64{de.result.F11[i], de.result.F21[i]})
					}
					return args, values
				},
			},
			"Size distribution": {
				DataItem: DataItem{
					saveFlag:   fs.BoolP("distribution", "d", false, "save normalized size distribution"),
					fileSuffix: "n",
				},
				columnNames: []string{"r", "n(r)"},
				values: func(de *DataExtractor) (args []float64, values [][]float64) {
					d := de.model.Distribution
					for i, weight := range d.Normalized() {
						args = append(args, d.Radii[i])
						values = append(values, []float64{weight})
					}
					return args, values
				},
				xUnit: []config.UnitElement{{Class: config.Length, Power: 1}},
			},
			"Skipped cells": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("failures", false, "save cells skipped after numerical failures"),
					fileSuffix: "skipped",
				},
				columnNames: []string{"angle (deg)", "r"},
				values: func(de *DataExtractor) (args []float64, values [][]float64) {
					for _, failure := range de.result.Failures {
						args = append(args, failure.AngleDeg)
						values = append(values, []float64{failure.Radius})
					}
					return args, values
				},
				yUnit: []config.UnitElement{{Class: config.Length, Power: 1}},
			},
		},
	}
}

func (df *DataFlags) SetOutputPath(path string) {
	df.outputPath = path
}

func (df *DataFlags) GetOutputPath() string {
	return df.outputPath
}

// SummaryRequested reports whether the cross-model table should be written.
func (df *DataFlags) SummaryRequested() bool {
	return *df.summary || *df.all
}

var summaryColumns = []string{
	"model",
	"Qext", "Qsca", "Qabs", "albedo",
	"Pmax (%)", "angle of Pmax (deg)",
	"Pmin (%)", "angle of Pmin (deg)",
	"neutral points (deg)",
	"mean P (%)", "skipped cells",
}

func SummaryColumns() []string {
	return append([]string(nil), summaryColumns...)
}
