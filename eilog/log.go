package eilog

import (
	"time"
)

// SchemaVersion changes whenever Log changes shape, invalidating cached documents.
const SchemaVersion = "eilog-1"

const TimeLayout = "2006-01-02 15:04:05 -07:00"

// Log is the subset of an Elite Insights JSON document the analysis reads.
// Optional fields are pointers, use Stats for defaulted player values.
type Log struct {
	TimeStartStd         *string    `json:"timeStartStd"`
	TimeEndStd           *string    `json:"timeEndStd"`
	EIEncounterID        *int64     `json:"eiEncounterID"`
	TriggerID            *int64     `json:"triggerID"`
	FightName            *string    `json:"fightName"`
	Success              bool       `json:"success"`
	IsCM                 bool       `json:"isCM"`
	Targets              []Target   `json:"targets"`
	Players              []Player   `json:"players"`
	Mechanics            []Mechanic `json:"mechanics"`
	PresentInstanceBuffs [][]int64  `json:"presentInstanceBuffs"`
}

type Target struct {
	Name        *string `json:"name"`
	FinalHealth *int64  `json:"finalHealth"`
	TotalHealth *int64  `json:"totalHealth"`
}

type Player struct {
	Account     *string `json:"account"`
	Name        *string `json:"name"`
	Profession  *string `json:"profession"`
	Group       *int    `json:"group"`
	FriendlyNPC *bool   `json:"friendlyNPC"`
	IsFake      *bool   `json:"isFake"`
	Healing     *int    `json:"healing"`

	DpsAll           []DpsAll         `json:"dpsAll"`
	DpsTargets       [][]DpsTarget    `json:"dpsTargets"`
	Support          []Support        `json:"support"`
	TotalDamageTaken [][]DamageTaken  `json:"totalDamageTaken"`
	CombatReplayData *CombatReplay    `json:"combatReplayData"`
	ExtHealingStats  *ExtHealingStats `json:"extHealingStats"`
	ExtBarrierStats  *ExtBarrierStats `json:"extBarrierStats"`
	BuffUptimes      []Buff           `json:"buffUptimes"`
	GroupBuffs       []Buff           `json:"groupBuffs"`
}

type DpsAll struct {
	Dps            *int     `json:"dps"`
	BreakbarDamage *float64 `json:"breakbarDamage"`
}

type DpsTarget struct {
	Dps      *int `json:"dps"`
	PowerDps *int `json:"powerDps"`
	CondiDps *int `json:"condiDps"`
}

type Support struct {
	ResurrectTime *float64 `json:"resurrectTime"`
	CondiCleanse  *int64   `json:"condiCleanse"`
	BoonStrips    *int64   `json:"boonStrips"`
}

type DamageTaken struct {
	TotalDamage *int64 `json:"totalDamage"`
}

type CombatReplay struct {
	Down [][]int64 `json:"down"`
}

type ExtHealingStats struct {
	OutgoingHealing []struct {
		Hps *int `json:"hps"`
	} `json:"outgoingHealing"`
}

type ExtBarrierStats struct {
	OutgoingBarrier []struct {
		Bps *int `json:"bps"`
	} `json:"outgoingBarrier"`
}

type Buff struct {
	ID       *int64     `json:"id"`
	BuffData []BuffData `json:"buffData"`
}

type BuffData struct {
	Uptime     *float64 `json:"uptime"`
	Generation *float64 `json:"generation"`
}

type Mechanic struct {
	Name          string `json:"name"`
	FullName      string `json:"fullName"`
	MechanicsData []struct {
		Time  int64  `json:"time"`
		Actor string `json:"actor"`
	} `json:"mechanicsData"`
}

////////////////////////////////////////////////////////////////////////////////////////////////////

func parseTime(s *string) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(TimeLayout, *s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Start falls back to the end time when the start is missing or malformed.
func (l *Log) Start() time.Time {
	if t, ok := parseTime(l.TimeStartStd); ok {
		return t
	}
	t, _ := parseTime(l.TimeEndStd)
	return t
}

func (l *Log) End() time.Time {
	if t, ok := parseTime(l.TimeEndStd); ok {
		return t
	}
	t, _ := parseTime(l.TimeStartStd)
	return t
}

func (l *Log) EncounterID() int64 {
	if l.EIEncounterID == nil {
		return -1
	}
	return *l.EIEncounterID
}

func (l *Log) Trigger() int64 {
	if l.TriggerID == nil {
		return -1
	}
	return *l.TriggerID
}

func (l *Log) Name() string {
	if l.FightName == nil {
		return "Unknown"
	}
	return *l.FightName
}

// RemainingHealth is the remaining health percentage of the first target left alive,
// 0 when every target died.
func (l *Log) RemainingHealth() float64 {
	for _, t := range l.Targets {
		if t.FinalHealth == nil || *t.FinalHealth == 0 {
			continue
		}

		var total int64 = 1
		if t.TotalHealth != nil && *t.TotalHealth != 0 {
			total = *t.TotalHealth
		}
		return float64(*t.FinalHealth) / float64(total) * 100
	}
	return 0
}

// HasInstanceBuff reports whether the raid-wide buff id is present with a positive stack value.
func (l *Log) HasInstanceBuff(id int64) bool {
	for _, b := range l.PresentInstanceBuffs {
		if len(b) > 0 && b[0] == id {
			return len(b) > 1 && b[1] > 0
		}
	}
	return false
}

// MostAffected returns the actor with the most occurrences of the named mechanic.
func (l *Log) MostAffected(name, fullName string) (string, bool) {
	counts := make(map[string]int)
	order := make([]string, 0, 4)
	for _, m := range l.Mechanics {
		if m.Name != name && m.FullName != fullName {
			continue
		}
		for _, d := range m.MechanicsData {
			if _, ok := counts[d.Actor]; !ok {
				order = append(order, d.Actor)
			}
			counts[d.Actor]++
		}
	}

	var best string
	bestCount := 0
	for _, actor := range order {
		if counts[actor] > bestCount {
			best = actor
			bestCount = counts[actor]
		}
	}
	return best, bestCount > 0
}
