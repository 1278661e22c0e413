package analysis

import (
	"sort"
)

type TopStatKind string

const (
	TopStatDps          TopStatKind = "dps"
	TopStatBreakbar     TopStatKind = "cc"
	TopStatResTime      TopStatKind = "res_time"
	TopStatCondiCleanse TopStatKind = "condi_cleanse"
	TopStatBoonStrips   TopStatKind = "boon_strips"
	TopStatHeal         TopStatKind = "hps"
	TopStatBarrier      TopStatKind = "bps"
	TopStatDamageTaken  TopStatKind = "damage_taken"
	TopStatDownstates   TopStatKind = "downstates"
)

type TopStatEntry struct {
	Account string  `json:"account"`
	Value   float64 `json:"value"`
}

type TopStat struct {
	Kind    TopStatKind     `json:"kind"`
	Entries []*TopStatEntry `json:"entries"`
}

type topStatDef struct {
	kind      TopStatKind
	sortBy    func(pa *PlayerAnalysis) float64
	extract   func(pa *PlayerAnalysis) float64
	ascending bool
}

// TopStats lists, per category, the players tied at the best value (place 0) or at the
// next distinct value (place 1). Hps and bps are only listed withHeal and when anyone healed.
func TopStats(run *RunAnalysis, place int, withHeal bool) []*TopStat {
	defs := []topStatDef{
		{
			kind:      TopStatDps,
			sortBy:    (*PlayerAnalysis).AvgDpsPos,
			extract:   (*PlayerAnalysis).AvgDps,
			ascending: true,
		},
		{kind: TopStatBreakbar, sortBy: func(pa *PlayerAnalysis) float64 { return float64(pa.Breakbar()) }},
		{kind: TopStatResTime, sortBy: (*PlayerAnalysis).ResTime},
		{kind: TopStatCondiCleanse, sortBy: func(pa *PlayerAnalysis) float64 { return float64(pa.CondiCleanse()) }},
		{kind: TopStatBoonStrips, sortBy: func(pa *PlayerAnalysis) float64 { return float64(pa.BoonStrips()) }},
	}

	if withHeal {
		healed := false
		for _, pa := range run.Players {
			if pa.AvgHeal() > 0 {
				healed = true
				break
			}
		}
		if healed {
			defs = append(defs,
				topStatDef{kind: TopStatHeal, sortBy: (*PlayerAnalysis).AvgHeal},
				topStatDef{kind: TopStatBarrier, sortBy: (*PlayerAnalysis).AvgBarrier},
			)
		}
	}

	defs = append(defs,
		topStatDef{kind: TopStatDamageTaken, sortBy: func(pa *PlayerAnalysis) float64 { return float64(pa.DamageTaken()) }},
		topStatDef{kind: TopStatDownstates, sortBy: func(pa *PlayerAnalysis) float64 { return float64(pa.Downstates()) }},
	)

	res := make([]*TopStat, 0, len(defs))
	for _, def := range defs {
		res = append(res, &TopStat{
			Kind:    def.kind,
			Entries: topStat(run.Players, def, place),
		})
	}
	return res
}

func topStat(players []*PlayerAnalysis, def topStatDef, place int) []*TopStatEntry {
	if len(players) == 0 {
		return nil
	}

	sorted := make([]*PlayerAnalysis, len(players))
	copy(sorted, players)
	sort.SliceStable(
		sorted,
		func(i, k int) bool {
			if def.ascending {
				return def.sortBy(sorted[i]) < def.sortBy(sorted[k])
			}
			return def.sortBy(sorted[i]) > def.sortBy(sorted[k])
		},
	)

	extract := def.extract
	if extract == nil {
		extract = def.sortBy
	}

	values := make([]float64, len(sorted))
	for i, pa := range sorted {
		values[i] = extract(pa)
	}

	start := startOf(values, place)
	if start >= len(values) {
		return nil
	}

	res := make([]*TopStatEntry, 0, 2)
	for i := start; i < len(values) && values[i] == values[start]; i++ {
		res = append(res, &TopStatEntry{
			Account: sorted[i].Account,
			Value:   values[i],
		})
	}
	return res
}

// startOf is the index of the first value of the given place.
func startOf(values []float64, place int) int {
	start := 0
	for p := 0; p < place; p++ {
		first := values[start]
		for start < len(values) && values[start] == first {
			start++
		}
		if start >= len(values) {
			return len(values)
		}
	}
	return start
}
