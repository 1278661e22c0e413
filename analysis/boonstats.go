package analysis

import (
	"math"
	"sort"

	"gw2_isac/gw2"
)

type BoonStat struct {
	Boon    gw2.Boon `json:"boon"`
	Average float64  `json:"average"`
	Lowest  float64  `json:"lowest"`
	Highest float64  `json:"highest"`
	// LowestLink is the pull with the lowest uptime.
	LowestLink string `json:"lowest_link"`
}

type GroupBoonStats struct {
	Group int         `json:"group"`
	Boons []*BoonStat `json:"boons"`
}

type boonSample struct {
	uptime float64
	link   string
}

// BoonStats summarizes the per-pull group uptimes across the run, for pulls valid for boon analysis.
// Groups are ascending; boons follow the reference table order.
func BoonStats(run *RunAnalysis, refs ReferenceData) []*GroupBoonStats {
	samples := make(map[int]map[int64][]boonSample)

	for _, pull := range run.Pulls {
		if !pull.Success || !pull.Analyzed || refs.IsIgnoredForBoonAnalysis(pull.EncounterID) {
			continue
		}
		for group, uptimes := range pull.BoonUptimes {
			g, ok := samples[group]
			if !ok {
				g = make(map[int64][]boonSample)
				samples[group] = g
			}
			for id, uptime := range uptimes {
				if math.IsNaN(uptime) {
					uptime = 0
				}
				g[id] = append(g[id], boonSample{uptime: uptime, link: pull.Link})
			}
		}
	}

	groups := make([]int, 0, len(samples))
	for group := range samples {
		groups = append(groups, group)
	}
	sort.Ints(groups)

	boons := refs.Boons()

	res := make([]*GroupBoonStats, 0, len(groups))
	for _, group := range groups {
		gs := &GroupBoonStats{Group: group}

		for _, boon := range boons {
			values := samples[group][boon.ID]
			if len(values) == 0 {
				continue
			}

			sort.SliceStable(values, func(i, k int) bool { return values[i].uptime < values[k].uptime })

			var sum float64
			for _, v := range values {
				sum += v.uptime
			}

			gs.Boons = append(gs.Boons, &BoonStat{
				Boon:       boon,
				Average:    sum / float64(len(values)),
				Lowest:     values[0].uptime,
				Highest:    values[len(values)-1].uptime,
				LowestLink: values[0].link,
			})
		}

		res = append(res, gs)
	}

	return res
}
