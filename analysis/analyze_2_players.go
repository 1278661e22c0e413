package analysis

import (
	"log"
	"sort"

	"gw2_isac/eilog"
)

type participant struct {
	stats   eilog.PlayerStats
	dps     int
	isCondi bool
}

func (inst *instance) updatePlayers(pullIndex int, pull *Pull, src SourceLog) error {
	l := src.Log
	th := inst.ctx.Thresholds

	kite, _ := l.MostAffected(mechanicKite, mechanicKiteFullName)

	groupSizes := make(map[int]int, 10)
	for i := range l.Players {
		if l.Players[i].Group != nil {
			groupSizes[*l.Players[i].Group]++
		}
	}

	participants := make([]participant, 0, len(l.Players))
	for i := range l.Players {
		p := &l.Players[i]
		if !p.HasAccount() {
			continue
		}

		stats := p.Stats()
		if stats.FriendlyNPC || stats.IsFake {
			continue
		}
		if isProbablyHandKiter(pull.EncounterID, p, groupSizes) {
			continue
		}

		dps, isCondi, err := inst.fetchDps(pull.EncounterID, stats)
		if err != nil {
			return err
		}

		participants = append(participants, participant{
			stats:   stats,
			dps:     dps,
			isCondi: isCondi,
		})
	}

	sort.SliceStable(
		participants,
		func(i, k int) bool {
			return participants[i].dps < participants[k].dps
		},
	)

	groupSamples := make(map[int]map[int64][]float64, 5)

	for i, pt := range participants {
		pa := inst.player(pt.stats.Account)
		if pa.Pulls[pullIndex] != nil {
			log.Printf("%s: %s appears twice in %s, keeping the first.", inst.ctx.InteractionID, pt.stats.Account, src.Link)
			continue
		}

		isKite := kite != "" && (kite == pt.stats.Name || kite == pt.stats.Account)
		boon := inst.primaryBoon(pull.EncounterID, pt.stats, isKite)

		pp := &PlayerPull{
			Profession:   Profession{Name: pt.stats.Profession, IsCondi: pt.isCondi},
			Group:        pt.stats.Group,
			Dps:          pt.dps,
			DpsPos:       len(participants) - i - 1,
			Heal:         pt.stats.Heal,
			Barrier:      pt.stats.Barrier,
			Breakbar:     pt.stats.Breakbar,
			ResTime:      pt.stats.ResurrectTime,
			CondiCleanse: pt.stats.CondiCleanse,
			BoonStrips:   pt.stats.BoonStrips,
			DamageTaken:  pt.stats.DamageTaken,
			Downstates:   pt.stats.Downstates,
			BoonSupport:  boon,
			MaybeHealer:  (boon != nil && pt.dps < th.HealerDps) || pt.stats.HealScore > th.HealerScore,
			BoonUptimes:  inst.boonUptimes(pt.stats),
			TargetDps:    pt.stats.TargetDps,
		}
		pa.Pulls[pullIndex] = pp

		samples, ok := groupSamples[pp.Group]
		if !ok {
			samples = make(map[int64][]float64, len(pp.BoonUptimes))
			groupSamples[pp.Group] = samples
		}
		for boonID, uptime := range pp.BoonUptimes {
			samples[boonID] = append(samples[boonID], uptime)
		}
	}

	pull.BoonUptimes = averageSamples(groupSamples)

	return nil
}

// isProbablyHandKiter drops the lone player some Deimos logs report in a group of their own.
func isProbablyHandKiter(encounterID int64, p *eilog.Player, groupSizes map[int]int) bool {
	if encounterID != encounterDeimos || p.Group == nil {
		return false
	}

	size, ok := groupSizes[*p.Group]
	if !ok {
		size = 5
	}
	return size < 2
}
