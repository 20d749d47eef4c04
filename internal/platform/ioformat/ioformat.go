// Package ioformat parses the plain-text input files the driver and
// analysis tools consume: ground stations, TLEs, ISLs, and per-node GSL
// interface information. Each reader validates its file's structural
// invariants (monotonic ids, fixed column counts) and returns an
// apierrors.InvalidInputError on violation.
package ioformat

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/asgard/satnet/internal/platform/apierrors"
	"github.com/asgard/satnet/internal/platform/geometry"
	"github.com/asgard/satnet/internal/platform/satellite"
	"github.com/asgard/satnet/internal/platform/topology"
)

// GroundStationRecord is one parsed line of ground_stations.txt.
type GroundStationRecord struct {
	GID    int
	Name   string
	LatDeg float64
	LonDeg float64
	ElevM  float64
}

// ReadGroundStations parses the basic 5-column ground station file:
// gid,name,latitude_degrees,longitude_degrees,elevation_m
func ReadGroundStations(path string) ([]GroundStationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apierrors.NewIoFailure(path, err)
	}
	defer f.Close()

	var out []GroundStationRecord
	gid := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		split := strings.Split(line, ",")
		if len(split) != 5 {
			return nil, apierrors.NewInvalidInput("ground_stations", fmt.Errorf("line %q must have 5 columns", line))
		}
		id, err := strconv.Atoi(strings.TrimSpace(split[0]))
		if err != nil || id != gid {
			return nil, apierrors.NewInvalidInput("ground_stations", fmt.Errorf("ground station id must increment each line, got %q expected %d", split[0], gid))
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(split[2]), 64)
		if err != nil {
			return nil, apierrors.NewInvalidInput("ground_stations", fmt.Errorf("invalid latitude %q", split[2]))
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(split[3]), 64)
		if err != nil {
			return nil, apierrors.NewInvalidInput("ground_stations", fmt.Errorf("invalid longitude %q", split[3]))
		}
		elev, err := strconv.ParseFloat(strings.TrimSpace(split[4]), 64)
		if err != nil {
			return nil, apierrors.NewInvalidInput("ground_stations", fmt.Errorf("invalid elevation %q", split[4]))
		}
		out = append(out, GroundStationRecord{GID: gid, Name: strings.TrimSpace(split[1]), LatDeg: lat, LonDeg: lon, ElevM: elev})
		gid++
	}
	if err := scanner.Err(); err != nil {
		return nil, apierrors.NewIoFailure(path, err)
	}
	return out, nil
}

// ToTopologyGroundStations converts parsed records into topology.GroundStation
// values, deriving ECEF once from lat/lon/elevation.
func ToTopologyGroundStations(records []GroundStationRecord) []topology.GroundStation {
	out := make([]topology.GroundStation, len(records))
	for i, r := range records {
		out[i] = topology.GroundStation{
			ID:     topology.GroundId(r.GID),
			Name:   r.Name,
			LatDeg: r.LatDeg,
			LonDeg: r.LonDeg,
			ElevM:  r.ElevM,
			ECEF:   geometry.GeodeticToECEF(r.LatDeg, r.LonDeg, r.ElevM),
		}
	}
	return out
}

// ParsedTLEs is the result of reading tles.txt: the declared constellation
// shape plus every satellite's parsed TLE, in ascending satellite-id order.
type ParsedTLEs struct {
	NumOrbits    int
	SatsPerOrbit int
	Satellites   []*satellite.TLE
}

// ReadTLEs parses tles.txt: a header line "<n_orbits> <n_sats_per_orbit>"
// followed by a name line and two TLE body lines per satellite. Every
// satellite must share the same epoch.
func ReadTLEs(path string) (*ParsedTLEs, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apierrors.NewIoFailure(path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, apierrors.NewInvalidInput("tles", fmt.Errorf("missing header line"))
	}
	header := strings.Fields(scanner.Text())
	if len(header) != 2 {
		return nil, apierrors.NewInvalidInput("tles", fmt.Errorf("header must have exactly 2 fields: %q", scanner.Text()))
	}
	numOrbits, err1 := strconv.Atoi(header[0])
	satsPerOrbit, err2 := strconv.Atoi(header[1])
	if err1 != nil || err2 != nil {
		return nil, apierrors.NewInvalidInput("tles", fmt.Errorf("invalid header %q", scanner.Text()))
	}

	var sats []*satellite.TLE
	var universalEpoch *satellite.Epoch
	i := 0
	for scanner.Scan() {
		nameLine := scanner.Text()
		if !scanner.Scan() {
			return nil, apierrors.NewInvalidInput("tles", fmt.Errorf("truncated TLE body for %q", nameLine))
		}
		line1 := scanner.Text()
		if !scanner.Scan() {
			return nil, apierrors.NewInvalidInput("tles", fmt.Errorf("truncated TLE body for %q", nameLine))
		}
		line2 := scanner.Text()

		fields := strings.Fields(nameLine)
		if len(fields) < 2 {
			return nil, apierrors.NewInvalidInput("tles", fmt.Errorf("name line %q missing satellite id", nameLine))
		}
		sid, err := strconv.Atoi(fields[1])
		if err != nil || sid != i {
			return nil, apierrors.NewInvalidInput("tles", fmt.Errorf("satellite identifier must increase by one each entry, got %q expected %d", fields[1], i))
		}

		tle, err := satellite.ParseTLE(strings.TrimSpace(nameLine), line1, line2)
		if err != nil {
			return nil, apierrors.NewInvalidInput("tles", err)
		}
		if universalEpoch == nil {
			e := tle.Epoch
			universalEpoch = &e
		} else if !universalEpoch.Equal(tle.Epoch) {
			return nil, apierrors.NewInvalidInput("tles", fmt.Errorf("epoch of all TLEs must be the same"))
		}
		sats = append(sats, tle)
		i++
	}
	if err := scanner.Err(); err != nil {
		return nil, apierrors.NewIoFailure(path, err)
	}
	return &ParsedTLEs{NumOrbits: numOrbits, SatsPerOrbit: satsPerOrbit, Satellites: sats}, nil
}

// ToTopologySatellites builds propagator-backed topology.Satellite values
// from parsed TLEs, using the name from each TLE.
func ToTopologySatellites(parsed *ParsedTLEs) ([]topology.Satellite, error) {
	out := make([]topology.Satellite, len(parsed.Satellites))
	for i, tle := range parsed.Satellites {
		prop, err := satellite.NewPropagator(tle)
		if err != nil {
			return nil, apierrors.NewInvalidInput("tles", fmt.Errorf("building propagator for satellite %d: %w", i, err))
		}
		out[i] = topology.Satellite{ID: topology.SatId(i), Name: tle.Name, Propagator: prop}
	}
	return out, nil
}

// ReadISLs parses isls.txt: one "<a> <b>" pair per line, a<b, no duplicates,
// both referencing satellites in [0, numSatellites).
func ReadISLs(path string, numSatellites int) ([]topology.ISL, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apierrors.NewIoFailure(path, err)
	}
	defer f.Close()

	var out []topology.ISL
	seen := make(map[[2]int]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, apierrors.NewInvalidInput("isls", fmt.Errorf("line %q must have 2 fields", line))
		}
		a, err1 := strconv.Atoi(fields[0])
		b, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			return nil, apierrors.NewInvalidInput("isls", fmt.Errorf("invalid ISL line %q", line))
		}
		if a < 0 || a >= numSatellites || b < 0 || b >= numSatellites {
			return nil, apierrors.NewInvalidInput("isls", fmt.Errorf("satellite does not exist: %d or %d", a, b))
		}
		if b <= a {
			return nil, apierrors.NewInvalidInput("isls", fmt.Errorf("second satellite index must be strictly larger than the first: (%d,%d)", a, b))
		}
		key := [2]int{a, b}
		if seen[key] {
			return nil, apierrors.NewInvalidInput("isls", fmt.Errorf("duplicate ISL: (%d,%d)", a, b))
		}
		seen[key] = true
		out = append(out, topology.ISL{A: topology.SatId(a), B: topology.SatId(b)})
	}
	if err := scanner.Err(); err != nil {
		return nil, apierrors.NewIoFailure(path, err)
	}
	return out, nil
}

// ReadGSLInterfacesInfo parses gsl_interfaces_info.txt:
// <node id>,<number of interfaces>,<aggregate max bandwidth>
// one line per node, satellites first then ground stations, in id order.
func ReadGSLInterfacesInfo(path string, numSatellites, numGroundStations int) ([]topology.IfaceInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apierrors.NewIoFailure(path, err)
	}
	defer f.Close()

	var out []topology.IfaceInfo
	nodeID := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		split := strings.Split(line, ",")
		if len(split) != 3 {
			return nil, apierrors.NewInvalidInput("gsl_interfaces_info", fmt.Errorf("line %q must have 3 columns", line))
		}
		id, err := strconv.Atoi(strings.TrimSpace(split[0]))
		if err != nil || id != nodeID {
			return nil, apierrors.NewInvalidInput("gsl_interfaces_info", fmt.Errorf("node id must increment each line, got %q expected %d", split[0], nodeID))
		}
		numIfaces, err := strconv.Atoi(strings.TrimSpace(split[1]))
		if err != nil || numIfaces <= 0 {
			return nil, apierrors.NewInvalidInput("gsl_interfaces_info", fmt.Errorf("node must have at least one interface, got %q", split[1]))
		}
		bw, err := strconv.ParseFloat(strings.TrimSpace(split[2]), 64)
		if err != nil || bw <= 0 {
			return nil, apierrors.NewInvalidInput("gsl_interfaces_info", fmt.Errorf("aggregate max bandwidth must be positive, got %q", split[2]))
		}
		out = append(out, topology.IfaceInfo{InterfaceCount: uint32(numIfaces), AggregateMaxBandwidth: bw})
		nodeID++
	}
	if err := scanner.Err(); err != nil {
		return nil, apierrors.NewIoFailure(path, err)
	}
	if nodeID != numSatellites+numGroundStations {
		return nil, apierrors.NewInvalidInput("gsl_interfaces_info", fmt.Errorf("number of nodes defined (%d) does not match satellites+ground stations (%d)", nodeID, numSatellites+numGroundStations))
	}
	return out, nil
}

// ReadDescription parses description.txt: a flat "key=value" file holding
// max_isl_length_m and max_gsl_length_m.
func ReadDescription(path string) (maxIslLengthM, maxGslLengthM float64, err error) {
	f, ferr := os.Open(path)
	if ferr != nil {
		return 0, 0, apierrors.NewIoFailure(path, ferr)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	found := map[string]float64{}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return 0, 0, apierrors.NewInvalidInput("description", fmt.Errorf("malformed line %q", line))
		}
		key := strings.TrimSpace(parts[0])
		val, verr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if verr != nil {
			return 0, 0, apierrors.NewInvalidInput("description", fmt.Errorf("invalid value for %q: %q", key, parts[1]))
		}
		found[key] = val
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, apierrors.NewIoFailure(path, err)
	}
	return found["max_isl_length_m"], found["max_gsl_length_m"], nil
}
