package satellite

import (
	"fmt"
)

// ConstellationSpec describes a Walker-like synthetic constellation: evenly
// spaced orbital planes, evenly spaced satellites within each plane, with an
// optional inter-plane phase offset on odd-indexed planes.
type ConstellationSpec struct {
	Name                string
	NumOrbits           int
	SatsPerOrbit        int
	PhaseDiff           bool
	InclinationDeg      float64
	Eccentricity        float64
	ArgOfPerigeeDeg     float64
	MeanMotionRevPerDay float64
}

// GenerateTLEs produces one TLE per satellite, ordered orbit by orbit. All
// satellites share the fixed epoch 2000-001 00:00:00 (TLE representation
// "00001.00000000") so that generated constellations are reproducible
// byte-for-byte.
func GenerateTLEs(spec ConstellationSpec) ([]*TLE, error) {
	if spec.NumOrbits <= 0 || spec.SatsPerOrbit <= 0 {
		return nil, fmt.Errorf("satellite: num_orbits and sats_per_orbit must be positive")
	}

	tles := make([]*TLE, 0, spec.NumOrbits*spec.SatsPerOrbit)
	satelliteCounter := 0
	for orbit := 0; orbit < spec.NumOrbits; orbit++ {
		raanDeg := float64(orbit) * 360.0 / float64(spec.NumOrbits)
		orbitWiseShiftDeg := 0.0
		if orbit%2 == 1 && spec.PhaseDiff {
			orbitWiseShiftDeg = 360.0 / (float64(spec.SatsPerOrbit) * 2.0)
		}

		for nSat := 0; nSat < spec.SatsPerOrbit; nSat++ {
			meanAnomalyDeg := orbitWiseShiftDeg + float64(nSat)*360.0/float64(spec.SatsPerOrbit)

			satNum := satelliteCounter + 1
			line1, line2 := formatManualTLE(satNum, spec.InclinationDeg, raanDeg, spec.Eccentricity,
				spec.ArgOfPerigeeDeg, meanAnomalyDeg, spec.MeanMotionRevPerDay)

			globalID := orbit*spec.SatsPerOrbit + nSat
			tle, err := ParseTLE(fmt.Sprintf("%s %d", spec.Name, globalID), line1, line2)
			if err != nil {
				return nil, fmt.Errorf("satellite: generated TLE for satellite %d failed validation: %w", globalID, err)
			}
			tles = append(tles, tle)
			satelliteCounter++
		}
	}
	return tles, nil
}

// formatManualTLE renders TLE line 1/2 text directly from orbital elements,
// without going through SGP4 re-initialization. The epoch is the fixed
// 2000-01-01T00:00:00Z value "00001.00000000".
func formatManualTLE(satNum int, inclinationDeg, raanDeg, eccentricity, argPerigeeDeg, meanAnomalyDeg, meanMotionRevPerDay float64) (string, string) {
	line1Body := fmt.Sprintf("1 %05dU 00000ABC 00001.00000000  .00000000  00000-0  00000+0 0    0", satNum)
	eccStr := fmt.Sprintf("%0.7f", eccentricity)
	if len(eccStr) >= 2 {
		eccStr = eccStr[2:] // drop leading "0."
	}
	line2Body := fmt.Sprintf("2 %05d %s %s %s %s %s %s    0",
		satNum,
		rjust(fmt.Sprintf("%3.4f", inclinationDeg), 8),
		rjust(fmt.Sprintf("%3.4f", raanDeg), 8),
		eccStr,
		rjust(fmt.Sprintf("%3.4f", argPerigeeDeg), 8),
		rjust(fmt.Sprintf("%3.4f", meanAnomalyDeg), 8),
		rjust(fmt.Sprintf("%2.8f", meanMotionRevPerDay), 11),
	)

	line1 := line1Body + fmt.Sprintf("%d", ChecksumOf(line1Body))
	line2 := line2Body + fmt.Sprintf("%d", ChecksumOf(line2Body))
	return line1, line2
}

func rjust(s string, width int) string {
	for len(s) < width {
		s = " " + s
	}
	return s
}
