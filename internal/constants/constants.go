package constants

const Percent float64 = 100.

const NoContrastTolerance = 1e-12       // |m - 1| below which a particle does not scatter
const TinyDenominator float64 = 1e-300  // recursion denominators below this are treated as zero
const DefaultGrowthLimit float64 = 1e12 // |rn| above this marks the upward recursion unstable

const NeutralPointTolerance float64 = 1e-9 // [%] polarization treated as zero when locating neutral points
