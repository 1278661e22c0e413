package analysis

import (
	"log"
	"sort"

	"gw2_isac/wingman"
)

// BenchSource resolves wingman benchmarks by signed trigger id.
type BenchSource interface {
	HasData() bool
	Lookup(id int64) (*wingman.BossBench, bool)
}

type ComparisonState string

const (
	ComparisonStateNormal ComparisonState = "normal"
	ComparisonStateNoData ComparisonState = "nodata"
)

type DpsComparison struct {
	EncounterID int64   `json:"encounter_id"`
	IsCM        bool    `json:"is_cm"`
	Profession  string  `json:"profession"`
	IsCondi     *bool   `json:"is_condi,omitempty"`
	Log         string  `json:"log"`
	Percent     float64 `json:"percent"`
	Dps         float64 `json:"dps"`
	Bench       float64 `json:"bench"`
	BenchLog    string  `json:"bench_log"`
	BoonEmote   string  `json:"boon_emote"`
}

type WingmanComparison struct {
	Account string         `json:"account"`
	Average *DpsComparison `json:"average"`
	Lowest  *DpsComparison `json:"lowest"`
	Highest *DpsComparison `json:"highest"`
}

type ComparisonResult struct {
	State       ComparisonState      `json:"state"`
	Supports    bool                 `json:"supports"`
	Comparisons []*WingmanComparison `json:"comparisons"`
}

// CompareToBenchmarks rates each player's pulls against the wingman benchmark of
// their profession, in the support role or the dps role.
func CompareToBenchmarks(ctx Context, bench BenchSource, pulls []*Pull, players []*PlayerAnalysis, supports bool) *ComparisonResult {
	r := &ComparisonResult{
		State:       ComparisonStateNormal,
		Supports:    supports,
		Comparisons: make([]*WingmanComparison, 0, len(players)),
	}
	if bench == nil || !bench.HasData() {
		r.State = ComparisonStateNoData
		return r
	}
	if ctx.Thresholds == (Thresholds{}) {
		ctx.Thresholds = DefaultThresholds
	}

	log.Printf("%s: Starting wingman analysis for %d players...", ctx.InteractionID, len(players))

	for _, player := range players {
		comparisons := compareToBench(ctx, bench, pulls, player, supports)
		if len(comparisons) == 0 {
			continue
		}

		var dpsSum, benchSum float64
		emotes := make(map[string]int)
		emoteOrder := make([]string, 0, 2)
		for _, c := range comparisons {
			dpsSum += c.Dps
			benchSum += c.Bench

			if c.BoonEmote != "" {
				if _, ok := emotes[c.BoonEmote]; !ok {
					emoteOrder = append(emoteOrder, c.BoonEmote)
				}
				emotes[c.BoonEmote]++
			}
		}

		avg := &DpsComparison{
			Percent: dpsSum / benchSum,
			Dps:     dpsSum / float64(len(comparisons)),
			Bench:   benchSum / float64(len(comparisons)),
		}
		best := 0
		for _, e := range emoteOrder {
			if emotes[e] > best {
				avg.BoonEmote = e
				best = emotes[e]
			}
		}

		r.Comparisons = append(r.Comparisons, &WingmanComparison{
			Account: player.Account,
			Average: avg,
			Lowest:  comparisons[0],
			Highest: comparisons[len(comparisons)-1],
		})
	}

	sort.SliceStable(
		r.Comparisons,
		func(i, k int) bool {
			return r.Comparisons[i].Average.Dps > r.Comparisons[k].Average.Dps
		},
	)

	log.Printf("%s: Finished wingman analysis.", ctx.InteractionID)

	return r
}

func compareToBench(ctx Context, bench BenchSource, pulls []*Pull, player *PlayerAnalysis, supports bool) []*DpsComparison {
	refs := ctx.Refs

	res := make([]*DpsComparison, 0, len(pulls))
	for i, pull := range pulls {
		if !pull.Success || refs.IsIgnoredForTopStats(pull.EncounterID) || pull.IsEmbo {
			continue
		}
		if i >= len(player.Pulls) {
			continue
		}

		pp := player.Pulls[i]
		if pp == nil || pp.Skipped || pp.IsSentinel() {
			continue
		}
		if pp.MaybeHealer || pp.IsSupport() != supports {
			continue
		}

		bossBench, ok := lookupBench(refs, bench, pull)
		if !ok {
			continue
		}

		var (
			figure float64
			link   string
		)
		switch {
		case supports:
			figure, link, ok = bossBench.SupportBench(pp.Profession.Name)
		case pp.Profession.IsCondi:
			figure, link, ok = bossBench.CondiBench(pp.Profession.Name)
		default:
			figure, link, ok = bossBench.PowerBench(pp.Profession.Name)
		}
		if !ok || figure == 0 {
			continue
		}

		dps := comparisonDps(ctx.Thresholds, pull, pp)

		isCondi := pp.Profession.IsCondi
		c := &DpsComparison{
			EncounterID: pull.EncounterID,
			IsCM:        pull.IsCM,
			Profession:  pp.Profession.Name,
			IsCondi:     &isCondi,
			Log:         pull.Link,
			Percent:     dps / figure,
			Dps:         dps,
			Bench:       figure,
			BenchLog:    link,
		}
		if pp.BoonSupport != nil {
			if boon, ok := refs.Boon(pp.BoonSupport.Boon); ok {
				c.BoonEmote = boon.Emote
			}
		}
		res = append(res, c)
	}

	sort.SliceStable(
		res,
		func(i, k int) bool {
			return res[i].Percent < res[k].Percent
		},
	)

	return res
}

func lookupBench(refs ReferenceData, bench BenchSource, pull *Pull) (*wingman.BossBench, bool) {
	if b, ok := bench.Lookup(pull.SignedTriggerID()); ok {
		return b, true
	}

	id, ok := refs.WingmanTriggerID(pull.EncounterID, pull.IsCM)
	if !ok {
		return nil, false
	}
	return bench.Lookup(id)
}

// comparisonDps scales a boon supporter's target dps by how much of the boon they provided.
func comparisonDps(th Thresholds, pull *Pull, pp *PlayerPull) float64 {
	raw := float64(pp.TargetDps)
	if pp.BoonSupport == nil {
		return raw
	}

	if pp.BoonSupport.Generation < th.ScaleByGeneration {
		return raw * pp.BoonSupport.Generation / 100
	}

	uptime, ok := pull.BoonUptimes[pp.Group][pp.BoonSupport.Boon]
	if !ok {
		return raw
	}
	return raw * uptime / 100
}
