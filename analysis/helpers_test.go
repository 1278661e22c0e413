package analysis

import (
	"time"

	"gw2_isac/eilog"
	"gw2_isac/gw2"
	"gw2_isac/wingman"
)

const (
	encVale     = 131329
	encIgnored  = 131330
	encNoBoons  = 132358
	encMulti    = 131844
	encUnknown  = 999
	triggerVale = 15438

	boonQuickness = 1187
	boonAlacrity  = 30328
	boonMight     = 740
)

var base = time.Date(2024, 3, 1, 20, 0, 0, 0, time.FixedZone("CET", 3600))

func ptr[T any](v T) *T { return &v }

func testRefs() *gw2.ReferenceData {
	return gw2.New(
		[]gw2.Boss{
			{EncounterID: encVale, ShortName: "vg", ValidForTopStat: true, ValidForBoons: true, EmoteNormal: ":vg:", Targets: []int{0}, WingmanID: triggerVale},
			{EncounterID: encIgnored, ShortName: "woods", EmoteNormal: ":woods:"},
			{EncounterID: encNoBoons, ShortName: "dhuum", ValidForTopStat: true, WingmanID: 19450},
			{EncounterID: encMulti, ShortName: "xera", ValidForTopStat: true, ValidForBoons: true, Targets: []int{0, 1}},
			{EncounterID: encounterDeimos, ShortName: "dei", ValidForTopStat: true, ValidForBoons: true, Targets: []int{0}, WingmanID: 17154},
		},
		[]gw2.Boon{
			{ID: boonQuickness, Name: "Quickness", Emote: ":quickness:", IsPrimary: true},
			{ID: boonAlacrity, Name: "Alacrity", Emote: ":alacrity:", IsPrimary: true},
			{ID: boonMight, Name: "Might", Emote: ":might:", IsStacks: true},
		},
	)
}

func testContext() Context {
	return Context{
		Refs:          testRefs(),
		Thresholds:    DefaultThresholds,
		InteractionID: "test",
	}
}

type playerOpts struct {
	account    string
	name       string
	profession string
	group      int
	power      int
	condi      int
	heal       int
	healScore  int
	cc         float64
	res        float64
	cleanse    int64
	strips     int64
	taken      []int64
	downs      int
	npc        bool
	fake       bool
	noAccount  bool
	boonGen    map[int64]float64
	uptimes    map[int64]float64
	extraTargs []eilog.DpsTarget
}

func mkPlayer(s playerOpts) eilog.Player {
	prof := s.profession
	if prof == "" {
		prof = "Weaver"
	}
	group := s.group
	if group == 0 {
		group = 1
	}

	p := eilog.Player{
		Name:        ptr(s.name),
		Profession:  ptr(prof),
		Group:       ptr(group),
		FriendlyNPC: ptr(s.npc),
		IsFake:      ptr(s.fake),
		Healing:     ptr(s.healScore),
		DpsAll:      []eilog.DpsAll{{Dps: ptr(s.power + s.condi), BreakbarDamage: ptr(s.cc)}},
		DpsTargets: [][]eilog.DpsTarget{
			{{Dps: ptr(s.power + s.condi), PowerDps: ptr(s.power), CondiDps: ptr(s.condi)}},
		},
		Support:         []eilog.Support{{ResurrectTime: ptr(s.res), CondiCleanse: ptr(s.cleanse), BoonStrips: ptr(s.strips)}},
		ExtHealingStats: &eilog.ExtHealingStats{},
		ExtBarrierStats: &eilog.ExtBarrierStats{},
	}
	if !s.noAccount {
		p.Account = ptr(s.account)
	}
	for _, t := range s.extraTargs {
		p.DpsTargets = append(p.DpsTargets, []eilog.DpsTarget{t})
	}

	p.ExtHealingStats.OutgoingHealing = append(p.ExtHealingStats.OutgoingHealing, struct {
		Hps *int `json:"hps"`
	}{Hps: ptr(s.heal)})

	taken := make([]eilog.DamageTaken, 0, len(s.taken))
	for _, d := range s.taken {
		taken = append(taken, eilog.DamageTaken{TotalDamage: ptr(d)})
	}
	p.TotalDamageTaken = [][]eilog.DamageTaken{taken}

	if s.downs > 0 {
		p.CombatReplayData = &eilog.CombatReplay{}
		for i := 0; i < s.downs; i++ {
			p.CombatReplayData.Down = append(p.CombatReplayData.Down, []int64{int64(i), int64(i + 1)})
		}
	}

	for id, gen := range s.boonGen {
		p.GroupBuffs = append(p.GroupBuffs, eilog.Buff{ID: ptr(id), BuffData: []eilog.BuffData{{Generation: ptr(gen)}}})
	}
	for id, uptime := range s.uptimes {
		p.BuffUptimes = append(p.BuffUptimes, eilog.Buff{ID: ptr(id), BuffData: []eilog.BuffData{{Uptime: ptr(uptime)}}})
	}

	return p
}

func mkLog(start time.Time, duration time.Duration, encounter int64, success bool, players ...eilog.Player) *eilog.Log {
	return &eilog.Log{
		TimeStartStd:  ptr(start.Format(eilog.TimeLayout)),
		TimeEndStd:    ptr(start.Add(duration).Format(eilog.TimeLayout)),
		EIEncounterID: ptr(encounter),
		TriggerID:     ptr(int64(triggerVale)),
		FightName:     ptr("Fight"),
		Success:       success,
		Targets:       []eilog.Target{{FinalHealth: ptr(int64(0)), TotalHealth: ptr(int64(100))}},
		Players:       players,
	}
}

func src(link string, l *eilog.Log) SourceLog {
	return SourceLog{Link: link, Log: l}
}

type fakeBench struct {
	benches map[int64]*wingman.BossBench
}

func (f *fakeBench) HasData() bool { return len(f.benches) > 0 }

func (f *fakeBench) Lookup(id int64) (*wingman.BossBench, bool) {
	b, ok := f.benches[id]
	return b, ok
}

func benchFor(power, condi, support map[string]int) *wingman.BossBench {
	return &wingman.BossBench{
		ProfessionsTopSupport:      support,
		ProfessionsTopLinks:        map[string]string{"Weaver": "top-weaver"},
		ProfessionsTopSupportLinks: map[string]string{},
		PowerDPS:                   &wingman.DpsBenches{ProfessionsTop: power},
		ConditionDPS:               &wingman.DpsBenches{ProfessionsTop: condi},
	}
}
