package config

import (
	"strconv"
	"strings"

	"github.com/wildstyl3r/polmie/internal/utils"
)

var unitToSI = map[string]float64{
	"m":   1,    // [m]
	"cm":  1e-2, // [m]
	"mm":  1e-3, // [m]
	"mkm": 1e-6, // [m]
	"um":  1e-6, // [m]
	"nm":  1e-9, // [m]
}

type UnitClass int

const (
	Length UnitClass = iota
)

var unitsInClass = map[UnitClass][]string{
	Length: {"nm", "mkm", "um", "mm", "cm", "m"},
}

var classesOfUnits = map[string]UnitClass{
	"m":   Length,
	"cm":  Length,
	"mm":  Length,
	"mkm": Length,
	"um":  Length,
	"nm":  Length,
}

type UnitElement = struct {
	Class UnitClass
	Power int
}

// checkUnits reports unknown units and units sharing a class, and fills
// classes nobody asked for from defaultUnits.
func checkUnits(units []string) (extended, conflicts []string) {
	classes := map[UnitClass]struct{}{}
	for _, unit := range units {
		class, known := classesOfUnits[unit]
		if !known {
			conflicts = append(conflicts, unit)
			continue
		}
		if _, some := classes[class]; some {
			conflicts = append(conflicts, unit)
		} else {
			classes[class] = struct{}{}
		}
	}
	extended = append([]string(nil), units...)
	for _, unit := range defaultUnits {
		if _, some := classes[classesOfUnits[unit]]; !some {
			extended = append(extended, unit)
		}
	}
	return
}

// SI converts v expressed in units to SI when direct is set, and from SI otherwise.
func SI(v float64, classes []UnitElement, units []string, direct bool) float64 {
	for i := range classes {
		uc := classes[i]
		unit := utils.Intersect(unitsInClass[uc.Class], units)
		if unit == nil {
			continue
		}
		absPower := utils.IntAbs(uc.Power)
		if direct == (uc.Power > 0) {
			for range absPower {
				v *= unitToSI[*unit]
			}
		} else {
			for range absPower {
				v /= unitToSI[*unit]
			}
		}
	}
	return v
}

// UnitLabel spells the unit a value is expressed in, e.g. "mkm" or "nm^-2".
func UnitLabel(classes []UnitElement, units []string) string {
	var parts []string
	for _, uc := range classes {
		unit := utils.Intersect(unitsInClass[uc.Class], units)
		if unit == nil {
			continue
		}
		if uc.Power == 1 {
			parts = append(parts, *unit)
		} else {
			parts = append(parts, *unit+"^"+strconv.Itoa(uc.Power))
		}
	}
	return strings.Join(parts, " ")
}
