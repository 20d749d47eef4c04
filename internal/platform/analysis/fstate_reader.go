// Package analysis replays the forwarding-state delta stream together with
// live geometry to reconstruct routes, measure RTTs, and aggregate
// ECDF/top-k statistics across ground-station pairs.
package analysis

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/asgard/satnet/internal/platform/apierrors"
)

// Fstate is the accumulated (current, destination) -> next_hop table, keyed
// by the unified NodeId pair exactly as dynamicstate's output files encode
// it. Only the next-hop column is retained: post-analysis only ever walks
// next-hop pointers, never interface indices.
type Fstate map[[2]int]int

// ApplyDeltaFile reads one fstate_<t_ns>.txt delta file and applies it to
// fstate in place: every line read simply overwrites the
// (current,destination) entry.
func ApplyDeltaFile(fstate Fstate, stateDir string, tNs int64) (linesApplied int, err error) {
	path := filepath.Join(stateDir, fmt.Sprintf("fstate_%d.txt", tNs))
	f, ferr := os.Open(path)
	if ferr != nil {
		return 0, apierrors.NewIoFailure(path, ferr)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 5 {
			return linesApplied, apierrors.NewInvalidInput("fstate", fmt.Errorf("line %q must have 5 columns", line))
		}
		current, err1 := strconv.Atoi(fields[0])
		dst, err2 := strconv.Atoi(fields[1])
		nextHop, err3 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return linesApplied, apierrors.NewInvalidInput("fstate", fmt.Errorf("malformed line %q", line))
		}
		fstate[[2]int{current, dst}] = nextHop
		linesApplied++
	}
	if err := scanner.Err(); err != nil {
		return linesApplied, apierrors.NewIoFailure(path, err)
	}
	return linesApplied, nil
}

// NewFstate allocates an empty accumulator, ready for ApplyDeltaFile calls
// starting at t=0.
func NewFstate() Fstate { return make(Fstate) }
