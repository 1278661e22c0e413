package analysis

import (
	"gw2_isac/eilog"
)

// primaryBoon picks the strongest primary boon the player generated for their group,
// nil when no candidate clears the role threshold.
func (inst *instance) primaryBoon(encounterID int64, stats eilog.PlayerStats, isKite bool) *BoonSupport {
	refs := inst.ctx.Refs
	th := inst.ctx.Thresholds

	threshold := th.BoonGeneration
	switch {
	case isKite:
		threshold = th.BoonGenerationKite
	case refs.IsIgnoredForBoonAnalysis(encounterID):
		threshold = th.BoonGenerationIgnoredEncounter
	}

	var best *BoonSupport
	for _, gen := range stats.GroupBuffsGen {
		if !refs.IsPrimaryBoon(gen.ID) || gen.Generation <= threshold {
			continue
		}
		if best == nil || gen.Generation > best.Generation {
			best = &BoonSupport{
				Boon:       gen.ID,
				Generation: gen.Generation,
			}
		}
	}
	return best
}

// boonUptimes keeps the uptimes of buffs listed in the boon table.
func (inst *instance) boonUptimes(stats eilog.PlayerStats) map[int64]float64 {
	res := make(map[int64]float64, len(stats.BuffUptimes))
	for id, uptime := range stats.BuffUptimes {
		if _, ok := inst.ctx.Refs.Boon(id); ok {
			res[id] = uptime
		}
	}
	return res
}

func averageSamples(samples map[int]map[int64][]float64) map[int]map[int64]float64 {
	res := make(map[int]map[int64]float64, len(samples))
	for group, boons := range samples {
		avg := make(map[int64]float64, len(boons))
		for id, values := range boons {
			if len(values) == 0 {
				continue
			}
			var sum float64
			for _, v := range values {
				sum += v
			}
			avg[id] = sum / float64(len(values))
		}
		res[group] = avg
	}
	return res
}
