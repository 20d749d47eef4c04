// Package dynamicstate implements the driver loop: folding forwarding-state
// algorithm invocations across a simulation's time axis, sharded across a
// bounded worker pool, writing delta files per step.
package dynamicstate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/asgard/satnet/internal/platform/apierrors"
	"github.com/asgard/satnet/internal/platform/fstate"
	"github.com/asgard/satnet/internal/platform/observability"
	"github.com/asgard/satnet/internal/platform/topology"
)

// RunParams bundles everything one driver invocation needs.
type RunParams struct {
	OutputDir       string
	Epoch           time.Time
	SimulationEndNs int64
	TimeStepNs      int64
	OffsetNs        int64
	Satellites      []topology.Satellite
	GroundStations  []topology.GroundStation
	ISLs            []topology.ISL
	IfaceInfo       []topology.IfaceInfo
	MaxGslLengthM   float64
	MaxIslLengthM   float64
	Algorithm       fstate.Algorithm
	ShardCount      int
}

// shard is one contiguous, independently-processed slice of the time axis.
// Each shard starts with prev == nil, so its first step emits a full
// snapshot rather than a delta — this is what makes the shards parallel-safe
// without any cross-shard synchronization.
type shard struct {
	index   int
	startNs int64
	endNs   int64 // exclusive
}

// Run builds the static topology inputs once, partitions
// [offset_ns, simulation_end_time_ns) into shards, and processes each shard
// concurrently through a bounded worker pool. Cancellation is checked
// between steps via ctx.
func Run(ctx context.Context, p RunParams) error {
	if p.OffsetNs%p.TimeStepNs != 0 {
		return apierrors.NewInvalidInput("dynamicstate", fmt.Errorf("offset must be a multiple of time_step_ns"))
	}
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return apierrors.NewIoFailure(p.OutputDir, err)
	}

	numSat := len(p.Satellites)
	ifmap, err := topology.NewInterfaceMap(numSat, p.ISLs)
	if err != nil {
		return apierrors.NewInvalidInput("dynamicstate", err)
	}

	shardCount := p.ShardCount
	if shardCount < 1 {
		shardCount = 1
	}
	shards := partitionShards(p.OffsetNs, p.SimulationEndNs, p.TimeStepNs, shardCount)
	observability.RecordISLEdgeCount(len(p.ISLs))

	var wg sync.WaitGroup
	errs := make([]error, len(shards))
	sem := make(chan struct{}, shardCount)

	for _, sh := range shards {
		sh := sh
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			errs[sh.index] = runShard(ctx, p, ifmap, sh)
		}()
	}
	wg.Wait()

	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

func partitionShards(offsetNs, endNs, stepNs int64, shardCount int) []shard {
	numSteps := (endNs - offsetNs) / stepNs
	if numSteps <= 0 {
		return nil
	}
	if int64(shardCount) > numSteps {
		shardCount = int(numSteps)
	}
	stepsPerShard := numSteps / int64(shardCount)
	remainder := numSteps % int64(shardCount)

	shards := make([]shard, 0, shardCount)
	cursor := offsetNs
	for i := 0; i < shardCount; i++ {
		n := stepsPerShard
		if int64(i) < remainder {
			n++
		}
		if n == 0 {
			continue
		}
		start := cursor
		end := start + n*stepNs
		shards = append(shards, shard{index: len(shards), startNs: start, endNs: end})
		cursor = end
	}
	return shards
}

// runShard processes one contiguous time range sequentially, starting from a
// clean (nil, nil) previous-state pair so the first step writes a full
// snapshot.
func runShard(ctx context.Context, p RunParams, ifmap *topology.InterfaceMap, sh shard) error {
	shardLabel := fmt.Sprintf("%d", sh.index)

	var prevFState *fstate.Table
	var prevBw *fstate.BwTable

	for t := sh.startNs; t < sh.endNs; t += p.TimeStepNs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		instant := p.Epoch.Add(time.Duration(t))
		snap, err := topology.BuildSnapshot(instant, p.Satellites, p.GroundStations, p.ISLs, p.MaxIslLengthM, p.MaxGslLengthM)
		if err != nil {
			return apierrors.NewGeometryViolation(t, err.Error())
		}
		gslEdges := 0
		for _, inRange := range snap.InRangeSats {
			gslEdges += len(inRange)
		}
		observability.RecordGSLEdgeCount(gslEdges)

		start := time.Now()
		in := fstate.Inputs{
			NumSat: numSat(p), NumGs: numGs(p), Snapshot: snap, IfaceMap: ifmap,
			IfaceInfo: p.IfaceInfo, TimeNs: t, NumISLs: len(p.ISLs),
		}
		out, err := fstate.RunStep(p.Algorithm, in, prevFState, prevBw)
		if err != nil {
			return err
		}
		observability.RecordShortestPathDuration(string(p.Algorithm), time.Since(start))
		observability.RecordAlgorithmDispatch(string(p.Algorithm))
		observability.RecordStep(shardLabel)
		observability.RecordFstateDeltaLines(shardLabel, len(out.FstateDeltas))
		observability.RecordBwDeltaLines(shardLabel, len(out.BwDeltas))
		observability.RecordUnreachablePairs(shardLabel, out.FState.CountUnreachable())

		if err := writeFstateFile(p.OutputDir, t, out.FstateDeltas); err != nil {
			return err
		}
		if err := writeBwFile(p.OutputDir, t, out.BwDeltas); err != nil {
			return err
		}

		prevFState = out.FState
		prevBw = out.Bw
	}
	return nil
}

func numSat(p RunParams) int { return len(p.Satellites) }
func numGs(p RunParams) int  { return len(p.GroundStations) }

func writeFstateFile(dir string, t int64, lines []fstate.FstateLine) error {
	path := filepath.Join(dir, fmt.Sprintf("fstate_%d.txt", t))
	f, err := os.Create(path)
	if err != nil {
		return apierrors.NewIoFailure(path, err)
	}
	defer f.Close()
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Current != lines[j].Current {
			return lines[i].Current < lines[j].Current
		}
		return lines[i].Dst < lines[j].Dst
	})
	for _, l := range lines {
		if _, err := fmt.Fprintf(f, "%d,%d,%d,%d,%d\n", l.Current, l.Dst, l.NextHop, l.OutIface, l.InIface); err != nil {
			return apierrors.NewIoFailure(path, err)
		}
	}
	return nil
}

func writeBwFile(dir string, t int64, lines []fstate.BwLine) error {
	path := filepath.Join(dir, fmt.Sprintf("gsl_if_bandwidth_%d.txt", t))
	f, err := os.Create(path)
	if err != nil {
		return apierrors.NewIoFailure(path, err)
	}
	defer f.Close()
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Node != lines[j].Node {
			return lines[i].Node < lines[j].Node
		}
		return lines[i].Iface < lines[j].Iface
	})
	for _, l := range lines {
		if _, err := fmt.Fprintf(f, "%d,%d,%f\n", l.Node, l.Iface, l.Bandwidth); err != nil {
			return apierrors.NewIoFailure(path, err)
		}
	}
	return nil
}
