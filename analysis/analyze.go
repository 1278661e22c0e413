package analysis

import (
	"log"
	"math"
	"sort"
	"time"

	"gw2_isac/eilog"

	"github.com/pkg/errors"
)

var (
	ErrNoLogs      = errors.New("no logs to analyze")
	ErrNoTargetDps = errors.New("no target dps")
)

// SourceLog is one downloaded pull and the link it came from.
type SourceLog struct {
	Link string
	Log  *eilog.Log
}

type instance struct {
	ctx Context

	pulls []*Pull

	players    []*PlayerAnalysis
	playersMap map[string]*PlayerAnalysis
	groupDps   []int
	downtime   time.Duration
	totalPulls int
}

// Analyze aggregates the logs of one run. Logs may come in any order.
// It performs no I/O and may be called concurrently for independent runs.
func Analyze(ctx Context, logs []SourceLog) (*RunAnalysis, error) {
	if len(logs) == 0 {
		return nil, errors.WithStack(ErrNoLogs)
	}
	if ctx.Refs == nil {
		return nil, errors.New("analysis: missing reference data")
	}
	if ctx.Thresholds == (Thresholds{}) {
		ctx.Thresholds = DefaultThresholds
	}

	sorted := make([]SourceLog, len(logs))
	copy(sorted, logs)
	for _, src := range sorted {
		if src.Log == nil {
			return nil, errors.Errorf("analysis: %s has no log", src.Link)
		}
	}
	sort.SliceStable(
		sorted,
		func(i, k int) bool {
			return sorted[i].Log.Start().Before(sorted[k].Log.Start())
		},
	)

	log.Printf("%s: Starting analysis for %d logs...", ctx.InteractionID, len(sorted))

	inst := instance{
		ctx:        ctx,
		pulls:      make([]*Pull, 0, len(sorted)),
		playersMap: make(map[string]*PlayerAnalysis, 10),
		totalPulls: len(sorted),
	}

	err := inst.updatePulls(sorted)
	if err != nil {
		return nil, err
	}

	inst.fillAttendance()

	log.Printf("%s: Finished analysis.", ctx.InteractionID)

	return inst.buildRun(sorted), nil
}

func (inst *instance) player(account string) *PlayerAnalysis {
	pa, ok := inst.playersMap[account]
	if !ok {
		pa = &PlayerAnalysis{
			Account: account,
			Pulls:   make([]*PlayerPull, inst.totalPulls),
		}
		inst.players = append(inst.players, pa)
		inst.playersMap[account] = pa
	}
	return pa
}

// fillAttendance gives every player an entry for every pull.
func (inst *instance) fillAttendance() {
	for _, pa := range inst.players {
		for i, pull := range inst.pulls {
			if pa.Pulls[i] != nil {
				continue
			}
			if pull.Analyzed {
				pa.Pulls[i] = Absent()
			} else {
				pa.Pulls[i] = skipped()
			}
		}
	}
}

func (inst *instance) buildRun(sorted []SourceLog) *RunAnalysis {
	r := &RunAnalysis{
		Start:    sorted[0].Log.Start(),
		End:      sorted[len(sorted)-1].Log.End(),
		Downtime: inst.downtime,
		Pulls:    inst.pulls,
		Players:  inst.players,
	}
	r.Duration = r.End.Sub(r.Start)

	if len(inst.groupDps) > 0 {
		var sum int
		for _, dps := range inst.groupDps {
			sum += dps
		}
		r.GroupDps = int(math.Round(float64(sum) / float64(len(inst.groupDps))))
	}

	return r
}
