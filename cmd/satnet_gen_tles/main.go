// Package main generates a synthetic Walker-like satellite constellation and
// writes it to a tles.txt file in the same format the driver and analysis
// tools consume.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/asgard/satnet/internal/platform/satellite"
)

func main() {
	log.SetFlags(0)

	args := os.Args[1:]
	if len(args) != 9 {
		log.Fatalf("usage: satnet_gen_tles <out_file> <constellation_name> <num_orbits> <sats_per_orbit> "+
			"<inclination_deg> <eccentricity> <arg_of_perigee_deg> <mean_motion_rev_per_day> <phase_diff>\ngot %d args", len(args))
	}

	outFile := args[0]
	name := args[1]
	numOrbits, err := strconv.Atoi(args[2])
	if err != nil {
		log.Fatalf("invalid num_orbits %q: %v", args[2], err)
	}
	satsPerOrbit, err := strconv.Atoi(args[3])
	if err != nil {
		log.Fatalf("invalid sats_per_orbit %q: %v", args[3], err)
	}
	inclinationDeg, err := strconv.ParseFloat(args[4], 64)
	if err != nil {
		log.Fatalf("invalid inclination_deg %q: %v", args[4], err)
	}
	eccentricity, err := strconv.ParseFloat(args[5], 64)
	if err != nil {
		log.Fatalf("invalid eccentricity %q: %v", args[5], err)
	}
	argOfPerigeeDeg, err := strconv.ParseFloat(args[6], 64)
	if err != nil {
		log.Fatalf("invalid arg_of_perigee_deg %q: %v", args[6], err)
	}
	meanMotionRevPerDay, err := strconv.ParseFloat(args[7], 64)
	if err != nil {
		log.Fatalf("invalid mean_motion_rev_per_day %q: %v", args[7], err)
	}
	phaseDiff, err := strconv.ParseBool(args[8])
	if err != nil {
		log.Fatalf("invalid phase_diff %q: %v", args[8], err)
	}

	spec := satellite.ConstellationSpec{
		Name:                name,
		NumOrbits:           numOrbits,
		SatsPerOrbit:        satsPerOrbit,
		PhaseDiff:           phaseDiff,
		InclinationDeg:      inclinationDeg,
		Eccentricity:        eccentricity,
		ArgOfPerigeeDeg:     argOfPerigeeDeg,
		MeanMotionRevPerDay: meanMotionRevPerDay,
	}

	log.Printf("generating %d orbits x %d satellites per orbit for %q", numOrbits, satsPerOrbit, name)
	tles, err := satellite.GenerateTLEs(spec)
	if err != nil {
		log.Fatalf("failed to generate TLEs: %v", err)
	}

	f, err := os.Create(outFile)
	if err != nil {
		log.Fatalf("failed to create %s: %v", outFile, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%d %d\n", numOrbits, satsPerOrbit); err != nil {
		log.Fatalf("failed writing header to %s: %v", outFile, err)
	}
	for i, tle := range tles {
		if _, err := fmt.Fprintf(f, "%s %d\n%s\n%s\n", name, i, tle.Line1, tle.Line2); err != nil {
			log.Fatalf("failed writing satellite %d to %s: %v", i, outFile, err)
		}
	}

	log.Printf("wrote %d satellites to %s", len(tles), outFile)
}
