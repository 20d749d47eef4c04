package ioformat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/asgard/satnet/internal/platform/satellite"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", path, err)
	}
	return path
}

func TestReadGroundStationsValid(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "ground_stations.txt",
		"0,NewYork,40.7128,-74.0060,10\n1,London,51.5074,-0.1278,20\n")

	records, err := ReadGroundStations(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Name != "NewYork" || records[0].LatDeg != 40.7128 {
		t.Errorf("record0 = %+v", records[0])
	}
	if records[1].GID != 1 {
		t.Errorf("record1.GID = %d, want 1", records[1].GID)
	}
}

func TestReadGroundStationsRejectsNonMonotonicIds(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "ground_stations.txt", "0,A,0,0,0\n2,B,0,0,0\n")
	if _, err := ReadGroundStations(path); err == nil {
		t.Fatal("expected error for non-monotonic ground station ids")
	}
}

func TestReadGroundStationsRejectsWrongColumnCount(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "ground_stations.txt", "0,A,0,0\n")
	if _, err := ReadGroundStations(path); err == nil {
		t.Fatal("expected error for wrong column count")
	}
}

func TestReadGroundStationsMissingFile(t *testing.T) {
	if _, err := ReadGroundStations(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestToTopologyGroundStationsDerivesECEF(t *testing.T) {
	records := []GroundStationRecord{{GID: 0, Name: "X", LatDeg: 0, LonDeg: 0, ElevM: 0}}
	out := ToTopologyGroundStations(records)
	if out[0].ECEF.X <= 0 {
		t.Errorf("expected positive X for (0,0) ECEF, got %+v", out[0].ECEF)
	}
}

func TestReadISLsValid(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "isls.txt", "0 1\n1 2\n")
	isls, err := ReadISLs(path, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(isls) != 2 {
		t.Fatalf("got %d isls, want 2", len(isls))
	}
}

func TestReadISLsRejectsOutOfRange(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "isls.txt", "0 5\n")
	if _, err := ReadISLs(path, 3); err == nil {
		t.Fatal("expected error for out-of-range satellite id")
	}
}

func TestReadISLsRejectsBNotGreaterThanA(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "isls.txt", "1 0\n")
	if _, err := ReadISLs(path, 3); err == nil {
		t.Fatal("expected error when b <= a")
	}
}

func TestReadISLsRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "isls.txt", "0 1\n0 1\n")
	if _, err := ReadISLs(path, 3); err == nil {
		t.Fatal("expected error for duplicate ISL")
	}
}

func TestReadGSLInterfacesInfoValid(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "gsl_interfaces_info.txt", "0,2,2.0\n1,2,2.0\n2,1,1.0\n")
	info, err := ReadGSLInterfacesInfo(path, 2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info) != 3 {
		t.Fatalf("got %d entries, want 3", len(info))
	}
	if info[2].InterfaceCount != 1 || info[2].AggregateMaxBandwidth != 1.0 {
		t.Errorf("ground station entry = %+v", info[2])
	}
}

func TestReadGSLInterfacesInfoRejectsCountMismatch(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "gsl_interfaces_info.txt", "0,2,2.0\n")
	if _, err := ReadGSLInterfacesInfo(path, 2, 1); err == nil {
		t.Fatal("expected error when node count does not match numSat+numGs")
	}
}

func TestReadGSLInterfacesInfoRejectsNonPositiveBandwidth(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "gsl_interfaces_info.txt", "0,1,0\n")
	if _, err := ReadGSLInterfacesInfo(path, 1, 0); err == nil {
		t.Fatal("expected error for non-positive bandwidth")
	}
}

func TestReadDescriptionValid(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "description.txt",
		"# comment\nmax_isl_length_m=5016000\nmax_gsl_length_m=1089686\n")
	maxIsl, maxGsl, err := ReadDescription(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if maxIsl != 5016000 || maxGsl != 1089686 {
		t.Errorf("got (%v,%v), want (5016000,1089686)", maxIsl, maxGsl)
	}
}

func TestReadDescriptionRejectsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "description.txt", "max_isl_length_m\n")
	if _, _, err := ReadDescription(path); err == nil {
		t.Fatal("expected error for a line without '='")
	}
}

func TestReadTLEsHeaderAndEpochConsistency(t *testing.T) {
	tles, err := satellite.GenerateTLEs(satellite.ConstellationSpec{
		NumOrbits: 1, SatsPerOrbit: 2, InclinationDeg: 53.0, MeanMotionRevPerDay: 15.19,
	})
	if err != nil {
		t.Fatalf("unexpected error generating fixture TLEs: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "1 2\n")
	for i, tle := range tles {
		fmt.Fprintf(&b, "sat %d\n%s\n%s\n", i, tle.Line1, tle.Line2)
	}

	dir := t.TempDir()
	path := writeTestFile(t, dir, "tles.txt", b.String())

	parsed, err := ReadTLEs(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.NumOrbits != 1 || parsed.SatsPerOrbit != 2 {
		t.Errorf("got NumOrbits=%d SatsPerOrbit=%d, want 1,2", parsed.NumOrbits, parsed.SatsPerOrbit)
	}
	if len(parsed.Satellites) != 2 {
		t.Fatalf("got %d satellites, want 2", len(parsed.Satellites))
	}

	sats, err := ToTopologySatellites(parsed)
	if err != nil {
		t.Fatalf("unexpected error building propagators: %v", err)
	}
	if len(sats) != 2 {
		t.Fatalf("got %d topology satellites, want 2", len(sats))
	}
}
