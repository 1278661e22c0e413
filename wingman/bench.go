package wingman

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const LogPrefix = "https://gw2wingman.nevermindcreations.de/log/"

// BossBench is the wingman benchmark of one boss in one mode.
type BossBench struct {
	BossID                     string            `json:"bossID"`
	ProfessionsTop             map[string]int    `json:"professions_top"`
	ProfessionsTopLinks        map[string]string `json:"professions_top_Links"`
	ProfessionsTopSupport      map[string]int    `json:"professions_topSupport"`
	ProfessionsTopSupportLinks map[string]string `json:"professions_topSupport_Links"`
	ConditionDPS               *DpsBenches       `json:"conditionDPS"`
	PowerDPS                   *DpsBenches       `json:"powerDPS"`
	DurationTop                *int              `json:"duration_top"`
}

type DpsBenches struct {
	ProfessionsTop map[string]int `json:"professions_top"`
}

// ID parses BossID; challenge mode benches carry a negative id.
func (b *BossBench) ID() (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(b.BossID), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func lookup(bench map[string]int, links map[string]string, profession string) (float64, string, bool) {
	key := capitalize(profession)

	v, ok := bench[key]
	if !ok || v <= 0 {
		return 0, "", false
	}

	var link string
	if l, ok := links[key]; ok && l != "" {
		link = LogPrefix + l
	}
	return float64(v), link, true
}

func (b *BossBench) PowerBench(profession string) (float64, string, bool) {
	if b.PowerDPS == nil {
		return 0, "", false
	}
	return lookup(b.PowerDPS.ProfessionsTop, b.ProfessionsTopLinks, profession)
}

func (b *BossBench) CondiBench(profession string) (float64, string, bool) {
	if b.ConditionDPS == nil {
		return 0, "", false
	}
	return lookup(b.ConditionDPS.ProfessionsTop, b.ProfessionsTopLinks, profession)
}

func (b *BossBench) SupportBench(profession string) (float64, string, bool) {
	return lookup(b.ProfessionsTopSupport, b.ProfessionsTopSupportLinks, profession)
}
