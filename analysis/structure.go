package analysis

import (
	"time"

	"gw2_isac/gw2"
)

// ReferenceData is the static boss and boon lookup the engine reads.
type ReferenceData interface {
	IsIgnoredForTopStats(encounterID int64) bool
	IsIgnoredForBoonAnalysis(encounterID int64) bool
	TargetIndices(encounterID int64) []int
	IsPrimaryBoon(boonID int64) bool
	Boon(boonID int64) (gw2.Boon, bool)
	Boons() []gw2.Boon
	WingmanTriggerID(encounterID int64, cm bool) (int64, bool)
	Emote(encounterID int64, cm bool) string
}

type RunAnalysis struct {
	Start    time.Time         `json:"start"`
	End      time.Time         `json:"end"`
	Downtime time.Duration     `json:"downtime"`
	Duration time.Duration     `json:"duration"`
	Pulls    []*Pull           `json:"pulls"`
	GroupDps int               `json:"group_dps"`
	Players  []*PlayerAnalysis `json:"players"`
}

type Pull struct {
	EncounterID     int64         `json:"encounter_id"`
	TriggerID       int64         `json:"trigger_id"`
	Name            string        `json:"name"`
	Link            string        `json:"link"`
	Success         bool          `json:"success"`
	IsCM            bool          `json:"is_cm"`
	IsEmbo          bool          `json:"is_embo"`
	Start           time.Time     `json:"start"`
	Duration        time.Duration `json:"duration"`
	RemainingHealth float64       `json:"remaining_health"`

	// BoonUptimes maps sub-group to boon id to the average uptime of that boon in the group.
	// Only boons with at least one sample are present.
	BoonUptimes map[int]map[int64]float64 `json:"boon_uptimes"`

	// Analyzed is set when player stats were collected for the pull.
	Analyzed bool `json:"analyzed"`
}

// SignedTriggerID is the trigger id, negated for challenge mode.
func (p *Pull) SignedTriggerID() int64 {
	if p.IsCM {
		return -p.TriggerID
	}
	return p.TriggerID
}

type Profession struct {
	Name    string `json:"name"`
	IsCondi bool   `json:"is_condi"`
}

type BoonSupport struct {
	Boon       int64   `json:"boon"`
	Generation float64 `json:"generation"`
}

type PlayerPull struct {
	Profession   Profession        `json:"profession"`
	Group        int               `json:"group"`
	Dps          int               `json:"dps"`
	DpsPos       int               `json:"dps_pos"`
	Heal         int               `json:"heal"`
	Barrier      int               `json:"barrier"`
	Breakbar     int               `json:"cc"`
	ResTime      float64           `json:"res_time"`
	CondiCleanse int               `json:"condi_cleanse"`
	BoonStrips   int               `json:"boon_strips"`
	DamageTaken  int64             `json:"damage_taken"`
	Downstates   int               `json:"downstates"`
	BoonSupport  *BoonSupport      `json:"boon_support,omitempty"`
	MaybeHealer  bool              `json:"maybe_healer"`
	BoonUptimes  map[int64]float64 `json:"boon_uptimes,omitempty"`
	TargetDps    int               `json:"target_dps"`

	// Skipped marks a pull without player stats (a wipe or an ignored encounter).
	Skipped bool `json:"skipped,omitempty"`
}

const (
	sentinelProfession = "*"
	sentinelDpsPos     = 11
)

// Absent is the entry of a player who missed a pull the rest of the squad was analyzed on.
func Absent() *PlayerPull {
	return &PlayerPull{
		Profession: Profession{Name: sentinelProfession},
		Group:      -1,
		DpsPos:     sentinelDpsPos,
	}
}

func skipped() *PlayerPull {
	p := Absent()
	p.Skipped = true
	return p
}

func (p *PlayerPull) IsSentinel() bool {
	return p.Profession.Name == sentinelProfession
}

func (p *PlayerPull) IsSupport() bool {
	return p.BoonSupport != nil
}

// PlayerAnalysis holds one entry per pull of the run, in pull order.
type PlayerAnalysis struct {
	Account string        `json:"account"`
	Pulls   []*PlayerPull `json:"pulls"`
}

func (pa *PlayerAnalysis) counted() []*PlayerPull {
	res := make([]*PlayerPull, 0, len(pa.Pulls))
	for _, p := range pa.Pulls {
		if p != nil && !p.Skipped {
			res = append(res, p)
		}
	}
	return res
}

func average(pulls []*PlayerPull, f func(p *PlayerPull) float64) float64 {
	if len(pulls) == 0 {
		return 0
	}
	var sum float64
	for _, p := range pulls {
		sum += f(p)
	}
	return sum / float64(len(pulls))
}

func (pa *PlayerAnalysis) AvgDps() float64 {
	return average(pa.counted(), func(p *PlayerPull) float64 { return float64(p.Dps) })
}

func (pa *PlayerAnalysis) AvgDpsPos() float64 {
	return average(pa.counted(), func(p *PlayerPull) float64 { return float64(p.DpsPos) })
}

func (pa *PlayerAnalysis) AvgHeal() float64 {
	return average(pa.counted(), func(p *PlayerPull) float64 { return float64(p.Heal) })
}

func (pa *PlayerAnalysis) AvgBarrier() float64 {
	return average(pa.counted(), func(p *PlayerPull) float64 { return float64(p.Barrier) })
}

// AvgDpsExcluding averages dps over pulls not played as support or healer, as requested.
// It reports false when no pull remains.
func (pa *PlayerAnalysis) AvgDpsExcluding(supports, heals bool) (float64, bool) {
	pulls := make([]*PlayerPull, 0, len(pa.Pulls))
	for _, p := range pa.counted() {
		if supports && p.IsSupport() {
			continue
		}
		if heals && p.MaybeHealer {
			continue
		}
		pulls = append(pulls, p)
	}
	if len(pulls) == 0 {
		return 0, false
	}
	return average(pulls, func(p *PlayerPull) float64 { return float64(p.Dps) }), true
}

func (pa *PlayerAnalysis) Breakbar() (r int) {
	for _, p := range pa.counted() {
		r += p.Breakbar
	}
	return
}

func (pa *PlayerAnalysis) ResTime() (r float64) {
	for _, p := range pa.counted() {
		r += p.ResTime
	}
	return
}

func (pa *PlayerAnalysis) CondiCleanse() (r int) {
	for _, p := range pa.counted() {
		r += p.CondiCleanse
	}
	return
}

func (pa *PlayerAnalysis) BoonStrips() (r int) {
	for _, p := range pa.counted() {
		r += p.BoonStrips
	}
	return
}

func (pa *PlayerAnalysis) DamageTaken() (r int64) {
	for _, p := range pa.counted() {
		r += p.DamageTaken
	}
	return
}

func (pa *PlayerAnalysis) Downstates() (r int) {
	for _, p := range pa.counted() {
		r += p.Downstates
	}
	return
}

// MostPlayed is the most frequent profession among the pulls matching the role, "*" when none does.
// Ties go to the profession played first.
func (pa *PlayerAnalysis) MostPlayed(support, healer bool) string {
	counts := make(map[string]int)
	order := make([]string, 0, 4)
	for _, p := range pa.counted() {
		if p.IsSentinel() || p.IsSupport() != support || p.MaybeHealer != healer {
			continue
		}
		if _, ok := counts[p.Profession.Name]; !ok {
			order = append(order, p.Profession.Name)
		}
		counts[p.Profession.Name]++
	}

	res := sentinelProfession
	best := 0
	for _, name := range order {
		if counts[name] > best {
			res = name
			best = counts[name]
		}
	}
	return res
}

// Professions lists every profession the player played, in order of first appearance.
func (pa *PlayerAnalysis) Professions() []string {
	seen := make(map[string]struct{})
	var res []string
	for _, p := range pa.counted() {
		if p.IsSentinel() {
			continue
		}
		if _, ok := seen[p.Profession.Name]; ok {
			continue
		}
		seen[p.Profession.Name] = struct{}{}
		res = append(res, p.Profession.Name)
	}
	return res
}
