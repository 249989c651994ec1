package model

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wildstyl3r/polmie/internal/config"
	"github.com/wildstyl3r/polmie/internal/utils"
)

type DataExtractor struct {
	model  *Model
	result *Result
}

func NewDataExtractor(model *Model, result *Result) *DataExtractor {
	return &DataExtractor{model: model, result: result}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (de *DataExtractor) header(output SequentialDataItem) []string {
	units := de.model.Parameters.OutputUnits()
	columns := slices.Clone(output.columnNames)
	for i := range columns {
		classes := output.yUnit
		if i == 0 {
			classes = output.xUnit
		}
		if label := config.UnitLabel(classes, units); label != "" {
			columns[i] += " (" + label + ")"
		}
	}
	return columns
}

// Save writes every requested output of one model, one file per output.
func (de *DataExtractor) Save(modelName string, df DataFlags) error {
	names := make([]string, 0, len(df.sequentials))
	for name := range df.sequentials {
		names = append(names, name)
	}
	slices.Sort(names)

	var errs []error
	for _, name := range names {
		output := df.sequentials[name]
		if !*output.saveFlag && !*df.all {
			continue
		}
		file, err := utils.OpenFile(de.model.Parameters.MakeDir, df.GetOutputPath(), output.fileSuffix, modelName)
		if err != nil {
			errs = append(errs, fmt.Errorf("unable to save %s: %w", strings.ToLower(name), err))
			continue
		}
		rows := [][]string{de.header(output)}
		xColumnValue, yColumnValues := output.values(de)
		units := de.model.Parameters.OutputUnits()
		for x := range xColumnValue {
			row := []string{formatFloat(config.SI(xColumnValue[x], output.xUnit, units, false))}
			for i := range yColumnValues[x] {
				row = append(row, formatFloat(config.SI(yColumnValues[x][i], output.yUnit, units, false)))
			}
			rows = append(rows, row)
		}
		w := csv.NewWriter(file)
		if err := w.WriteAll(rows); err != nil {
			errs = append(errs, fmt.Errorf("error writing csv: %w", err))
		}
		if err := file.Close(); err != nil {
			errs = append(errs, err)
		}
		de.model.Log.WithFields(logrus.Fields{"model": modelName, "file": file.Name()}).Debug(name + " saved")
	}
	return errors.Join(errs...)
}

// SummaryRow lines up with SummaryColumns.
func (de *DataExtractor) SummaryRow(modelName string) []string {
	e := de.result.Efficiencies
	row := []string{
		modelName,
		formatFloat(e.Extinction), formatFloat(e.Scattering), formatFloat(e.Absorption), formatFloat(e.Albedo),
	}
	d, err := de.result.Curve.Diagnose()
	if err != nil {
		de.model.Log.WithField("model", modelName).WithError(err).Warn("curve diagnostics unavailable")
		nan := formatFloat(math.NaN())
		return append(row, nan, nan, nan, nan, "", nan, strconv.Itoa(len(de.result.Failures)))
	}
	neutral := make([]string, len(d.NeutralPoints))
	for i, angle := range d.NeutralPoints {
		neutral[i] = strconv.FormatFloat(angle, 'f', 3, 64)
	}
	return append(row,
		formatFloat(d.Maximum.Polarization), formatFloat(d.Maximum.AngleDeg),
		formatFloat(d.Minimum.Polarization), formatFloat(d.Minimum.AngleDeg),
		strings.Join(neutral, " "),
		formatFloat(d.Summary.Mean),
		strconv.Itoa(len(de.result.Failures)),
	)
}
