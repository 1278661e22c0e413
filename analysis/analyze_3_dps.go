package analysis

import (
	"gw2_isac/eilog"

	"github.com/pkg/errors"
)

// fetchDps sums power and condition dps over the boss targets of the encounter.
func (inst *instance) fetchDps(encounterID int64, stats eilog.PlayerStats) (total int, isCondi bool, err error) {
	return targetDps(inst.ctx.Refs.TargetIndices(encounterID), stats)
}

func targetDps(configured []int, stats eilog.PlayerStats) (total int, isCondi bool, err error) {
	if len(configured) == 0 {
		configured = []int{0}
	}

	targets := make([]int, 0, len(configured))
	for _, idx := range configured {
		if idx >= 0 && idx < len(stats.TargetBreakdown) {
			targets = append(targets, idx)
		}
	}
	if len(targets) == 0 {
		for idx := range stats.TargetBreakdown {
			targets = append(targets, idx)
		}
	}

	var power, condi int
	found := false
	for _, idx := range targets {
		t := stats.TargetBreakdown[idx]
		if !t.Valid {
			continue
		}
		power += t.Power
		condi += t.Condi
		found = true
	}

	if !found {
		return 0, false, errors.Wrapf(ErrNoTargetDps, "%s (%s)", stats.Account, stats.Profession)
	}

	return power + condi, condi > power, nil
}

// groupDpsOf is the squad's summed boss dps for one pull.
func (inst *instance) groupDpsOf(src SourceLog) (int, error) {
	l := src.Log

	var sum int
	for i := range l.Players {
		if !l.Players[i].HasAccount() {
			continue
		}

		dps, _, err := inst.fetchDps(l.EncounterID(), l.Players[i].Stats())
		if err != nil {
			return 0, errors.Wrap(err, src.Link)
		}
		sum += dps
	}
	return sum, nil
}
