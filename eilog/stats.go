package eilog

import "math"

// PlayerStats is a player actor with every optional field resolved to its default.
type PlayerStats struct {
	Account     string
	Name        string
	Profession  string
	Group       int
	FriendlyNPC bool
	IsFake      bool
	HealScore   int

	Heal            int
	Barrier         int
	Breakbar        int
	ResurrectTime   float64
	CondiCleanse    int
	BoonStrips      int
	DamageTaken     int64
	Downstates      int
	TargetDps       int
	BuffUptimes     map[int64]float64
	GroupBuffsGen   []BuffGeneration
	TargetBreakdown []TargetDps
}

type BuffGeneration struct {
	ID         int64
	Generation float64
}

// TargetDps is the first phase of one target's dps; Valid is false when either half is absent.
type TargetDps struct {
	Power int
	Condi int
	Valid bool
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefString(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func derefBool(v *bool) bool {
	return v != nil && *v
}

// HasAccount reports whether the actor belongs to a real account.
func (p *Player) HasAccount() bool {
	return p.Account != nil && *p.Account != ""
}

func (p *Player) GroupOr(def int) int {
	if p.Group == nil {
		return def
	}
	return *p.Group
}

// Stats resolves the player's optional fields. Absent numbers are 0, absent
// flags false, a missing group -1 and a missing profession "*".
func (p *Player) Stats() PlayerStats {
	s := PlayerStats{
		Account:     derefString(p.Account, ""),
		Name:        derefString(p.Name, ""),
		Profession:  derefString(p.Profession, "*"),
		Group:       p.GroupOr(-1),
		FriendlyNPC: derefBool(p.FriendlyNPC),
		IsFake:      derefBool(p.IsFake),
		HealScore:   derefInt(p.Healing),
		BuffUptimes: make(map[int64]float64, len(p.BuffUptimes)),
	}

	if p.ExtHealingStats != nil && len(p.ExtHealingStats.OutgoingHealing) > 0 {
		s.Heal = derefInt(p.ExtHealingStats.OutgoingHealing[0].Hps)
	}
	if p.ExtBarrierStats != nil && len(p.ExtBarrierStats.OutgoingBarrier) > 0 {
		s.Barrier = derefInt(p.ExtBarrierStats.OutgoingBarrier[0].Bps)
	}
	if len(p.DpsAll) > 0 {
		s.Breakbar = int(math.Round(derefFloat(p.DpsAll[0].BreakbarDamage)))
	}
	if len(p.Support) > 0 {
		s.ResurrectTime = derefFloat(p.Support[0].ResurrectTime)
		s.CondiCleanse = int(derefInt64(p.Support[0].CondiCleanse))
		s.BoonStrips = int(derefInt64(p.Support[0].BoonStrips))
	}
	if len(p.TotalDamageTaken) > 0 {
		for _, d := range p.TotalDamageTaken[0] {
			s.DamageTaken += derefInt64(d.TotalDamage)
		}
	}
	if p.CombatReplayData != nil {
		s.Downstates = len(p.CombatReplayData.Down)
	}
	if len(p.DpsTargets) > 0 && len(p.DpsTargets[0]) > 0 {
		s.TargetDps = derefInt(p.DpsTargets[0][0].Dps)
	}

	s.TargetBreakdown = make([]TargetDps, len(p.DpsTargets))
	for i, phases := range p.DpsTargets {
		if len(phases) == 0 || phases[0].PowerDps == nil || phases[0].CondiDps == nil {
			continue
		}
		s.TargetBreakdown[i] = TargetDps{
			Power: *phases[0].PowerDps,
			Condi: *phases[0].CondiDps,
			Valid: true,
		}
	}

	for _, b := range p.BuffUptimes {
		if b.ID == nil || len(b.BuffData) == 0 || b.BuffData[0].Uptime == nil {
			continue
		}
		s.BuffUptimes[*b.ID] = *b.BuffData[0].Uptime
	}

	for _, b := range p.GroupBuffs {
		if b.ID == nil || len(b.BuffData) == 0 || b.BuffData[0].Generation == nil {
			continue
		}
		s.GroupBuffsGen = append(s.GroupBuffsGen, BuffGeneration{ID: *b.ID, Generation: *b.BuffData[0].Generation})
	}

	return s
}
