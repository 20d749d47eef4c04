// Package satellite wraps SGP4 orbital propagation for the satellite-network
// core: TLE parsing, epoch bookkeeping, and Cartesian position queries.
package satellite

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	gosat "github.com/joshuaferrara/go-satellite"
)

// Epoch is the absolute reference time against which time_since_epoch_ns is
// measured. All satellites parsed from one tles.txt file must share one.
type Epoch struct {
	t time.Time
}

// NewEpoch builds an Epoch from a TLE epoch year (two digits, already
// resolved to 19xx/20xx) and fractional day-of-year.
func NewEpoch(fullYear int, dayOfYear float64) Epoch {
	base := time.Date(fullYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	return Epoch{t: base.Add(time.Duration((dayOfYear - 1.0) * float64(24*time.Hour)))}
}

// Time returns the epoch as an absolute wall-clock time.
func (e Epoch) Time() time.Time { return e.t }

// At returns the absolute time offsetNs nanoseconds after the epoch.
func (e Epoch) At(offsetNs int64) time.Time {
	return e.t.Add(time.Duration(offsetNs))
}

// Equal reports whether two epochs refer to the same instant.
func (e Epoch) Equal(o Epoch) bool { return e.t.Equal(o.t) }

// TLE holds a parsed two-line element set plus the raw lines (go-satellite's
// SGP4 init consumes the verbatim text, not decomposed fields).
type TLE struct {
	SatNum int
	Name   string
	Line1  string
	Line2  string
	Epoch  Epoch
}

// ParseTLE extracts the satellite catalog number and epoch from a TLE's two
// fixed-format lines without re-deriving the orbital elements: SGP4
// initialization itself is delegated to go-satellite, which parses the lines
// directly. This function exists to expose the epoch for the shared-epoch
// invariant check performed while reading tles.txt.
func ParseTLE(name, line1, line2 string) (*TLE, error) {
	if len(line1) < 69 || len(line2) < 69 {
		return nil, fmt.Errorf("satellite: TLE line too short for %q", name)
	}
	if line1[0] != '1' || line2[0] != '2' {
		return nil, fmt.Errorf("satellite: malformed TLE lines for %q", name)
	}
	if err := verifyChecksum(line1); err != nil {
		return nil, fmt.Errorf("satellite: line 1 checksum for %q: %w", name, err)
	}
	if err := verifyChecksum(line2); err != nil {
		return nil, fmt.Errorf("satellite: line 2 checksum for %q: %w", name, err)
	}

	satNum, err := strconv.Atoi(strings.TrimSpace(line1[2:7]))
	if err != nil {
		return nil, fmt.Errorf("satellite: satellite number for %q: %w", name, err)
	}

	epochYear, err := strconv.Atoi(line1[18:20])
	if err != nil {
		return nil, fmt.Errorf("satellite: epoch year for %q: %w", name, err)
	}
	epochDay, err := strconv.ParseFloat(strings.TrimSpace(line1[20:32]), 64)
	if err != nil {
		return nil, fmt.Errorf("satellite: epoch day for %q: %w", name, err)
	}
	fullYear := 1900 + epochYear
	if epochYear < 57 {
		fullYear = 2000 + epochYear
	}

	return &TLE{
		SatNum: satNum,
		Name:   name,
		Line1:  line1,
		Line2:  line2,
		Epoch:  NewEpoch(fullYear, epochDay),
	}, nil
}

// verifyChecksum recomputes a TLE line's trailing checksum digit: the sum of
// all numeric digits (dashes count as 1) over the first 68 columns, mod 10.
func verifyChecksum(line string) error {
	if len(line) < 69 {
		return fmt.Errorf("line too short")
	}
	want, err := strconv.Atoi(string(line[68]))
	if err != nil {
		return fmt.Errorf("trailing checksum digit: %w", err)
	}
	if got := ChecksumOf(line[:68]); got != want {
		return fmt.Errorf("checksum mismatch: computed %d, line says %d", got, want)
	}
	return nil
}

// ChecksumOf computes the standard TLE line checksum (digits sum, '-' counts
// as 1, mod 10) over a 68-column line body.
func ChecksumOf(lineBody string) int {
	sum := 0
	for _, r := range lineBody {
		switch {
		case r >= '0' && r <= '9':
			sum += int(r - '0')
		case r == '-':
			sum++
		}
	}
	return sum % 10
}

// Propagator evaluates SGP4 for one satellite at arbitrary absolute times.
// It wraps go-satellite's Satellite record; construction is pure and the
// resulting Propagator is safe for concurrent Propagate calls (go-satellite's
// Propagate takes the record by value).
type Propagator struct {
	tle *TLE
	sat gosat.Satellite
}

// NewPropagator initializes SGP4 state from a TLE using the WGS72 gravity
// model, matching the constellation generator's and the core geometry
// layer's reference ellipsoid.
func NewPropagator(tle *TLE) (*Propagator, error) {
	if tle == nil {
		return nil, fmt.Errorf("satellite: nil TLE")
	}
	sat := gosat.TLEToSat(tle.Line1, tle.Line2, gosat.GravityWGS72)
	return &Propagator{tle: tle, sat: sat}, nil
}

// PositionECEF returns the satellite's geocentric Cartesian position in
// meters, in the Earth-fixed (ECEF) frame, at absolute time t. SGP4 itself
// produces TEME/ECI coordinates; this rotates by Greenwich Mean Sidereal
// Time to align with the WGS72 Earth-fixed frame the geometry layer uses
// for every other distance computation.
func (p *Propagator) PositionECEF(t time.Time) (x, y, z float64, err error) {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	posKm, _ := gosat.Propagate(p.sat, year, int(month), day, hour, minute, sec)
	if math.IsNaN(posKm.X) || math.IsNaN(posKm.Y) || math.IsNaN(posKm.Z) {
		return 0, 0, 0, fmt.Errorf("satellite: SGP4 propagation produced NaN for %q at %s (decayed or invalid TLE)", p.tle.Name, t)
	}

	gmst := gosat.GSTimeFromDate(year, int(month), day, hour, minute, sec)
	cosG, sinG := math.Cos(gmst), math.Sin(gmst)

	xEcef := posKm.X*cosG + posKm.Y*sinG
	yEcef := -posKm.X*sinG + posKm.Y*cosG
	zEcef := posKm.Z

	const kmToM = 1000.0
	return xEcef * kmToM, yEcef * kmToM, zEcef * kmToM, nil
}

// TLE returns the orbital elements this propagator was built from.
func (p *Propagator) TLE() *TLE { return p.tle }
