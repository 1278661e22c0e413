package render

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"time"

	"gw2_isac/analysis"
	"gw2_isac/share"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// Emotes resolves the emote of a boss.
type Emotes interface {
	Emote(encounterID int64, cm bool) string
}

var (
	//go:embed resources/report.tmpl.md
	resources embed.FS

	tmplReport = template.Must(
		template.New("report.tmpl.md").
			Funcs(share.TemplateFuncMap).
			ParseFS(resources, "resources/report.tmpl.md"),
	)

	tmplReportPool = sync.Pool{
		New: func() interface{} {
			b := new(bytes.Buffer)
			b.Grow(16 * 1024)

			return b
		},
	}
)

type reportView struct {
	*analysis.Report

	Pulls  []*pullView
	Gold   []*statView
	NoData bool

	Dps     *comparisonView
	Support *comparisonView
	Boons   []*groupBoonView
}

type pullView struct {
	*analysis.Pull
	Emote string
}

type statView struct {
	Label    string
	Accounts string
	Value    string
	Silver   *statView
}

type comparisonView struct {
	Entries []*comparisonEntry
}

type comparisonEntry struct {
	Account   string
	BoonEmote string
	Percent   string
	Dps       string
	Bench     string
	Lowest    string
	Highest   string
}

type groupBoonView struct {
	Group int
	Boons []*boonView
}

type boonView struct {
	Emote      string
	Name       string
	Average    string
	Lowest     string
	Highest    string
	LowestLink string
}

// Markdown renders the report as a chat message.
func Markdown(r *analysis.Report, emotes Emotes) (string, error) {
	v := newView(r, emotes)

	buf := tmplReportPool.Get().(*bytes.Buffer)
	defer tmplReportPool.Put(buf)
	buf.Reset()

	if err := tmplReport.Execute(buf, v); err != nil {
		return "", errors.WithStack(err)
	}

	return buf.String(), nil
}

func newView(r *analysis.Report, emotes Emotes) *reportView {
	v := &reportView{
		Report: r,
		Pulls:  make([]*pullView, 0, len(r.Run.Pulls)),
	}

	for _, p := range r.Run.Pulls {
		v.Pulls = append(v.Pulls, &pullView{Pull: p, Emote: spaced(emotes.Emote(p.EncounterID, p.IsCM))})
	}

	silver := make(map[analysis.TopStatKind]*analysis.TopStat, len(r.Silver))
	for _, s := range r.Silver {
		silver[s.Kind] = s
	}
	for _, g := range r.Gold {
		if len(g.Entries) == 0 {
			continue
		}
		sv := newStatView(g)
		if s, ok := silver[g.Kind]; ok && len(s.Entries) > 0 {
			sv.Silver = newStatView(s)
		}
		v.Gold = append(v.Gold, sv)
	}

	for _, c := range []*analysis.ComparisonResult{r.Dps, r.Support} {
		if c != nil && c.State == analysis.ComparisonStateNoData {
			v.NoData = true
		}
	}
	if !v.NoData {
		v.Dps = newComparisonView(r.Dps, emotes)
		v.Support = newComparisonView(r.Support, emotes)
	}

	for _, g := range r.Boons {
		gv := &groupBoonView{Group: g.Group}
		for _, b := range g.Boons {
			format := func(value float64) string {
				if b.Boon.IsStacks {
					return fmt.Sprintf("%.1f", value)
				}
				return fmt.Sprintf("%.1f%%", value)
			}
			gv.Boons = append(gv.Boons, &boonView{
				Emote:      b.Boon.Emote,
				Name:       b.Boon.Name,
				Average:    format(b.Average),
				Lowest:     format(b.Lowest),
				Highest:    format(b.Highest),
				LowestLink: b.LowestLink,
			})
		}
		v.Boons = append(v.Boons, gv)
	}

	return v
}

func spaced(s string) string {
	if s == "" {
		return ""
	}
	return s + " "
}

////////////////////////////////////////////////////////////////////////////////////////////////////

var statLabels = map[analysis.TopStatKind]string{
	analysis.TopStatDps:          "DPS",
	analysis.TopStatBreakbar:     "CC",
	analysis.TopStatResTime:      "Res time",
	analysis.TopStatCondiCleanse: "Condi cleanse",
	analysis.TopStatBoonStrips:   "Boon strips",
	analysis.TopStatHeal:         "Healing",
	analysis.TopStatBarrier:      "Barrier",
	analysis.TopStatDamageTaken:  "Damage taken",
	analysis.TopStatDownstates:   "Downstates",
}

func newStatView(s *analysis.TopStat) *statView {
	accounts := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		accounts[i] = e.Account
	}

	value := s.Entries[0].Value
	var formatted string
	switch s.Kind {
	case analysis.TopStatResTime:
		formatted = share.FormatDuration(time.Duration(value * float64(time.Second)))
	case analysis.TopStatDps, analysis.TopStatHeal, analysis.TopStatBarrier:
		formatted = humanize.Comma(int64(value)) + "/s"
	default:
		formatted = humanize.Comma(int64(value))
	}

	return &statView{
		Label:    statLabels[s.Kind],
		Accounts: strings.Join(accounts, ", "),
		Value:    formatted,
	}
}

func newComparisonView(c *analysis.ComparisonResult, emotes Emotes) *comparisonView {
	if c == nil || len(c.Comparisons) == 0 {
		return nil
	}

	v := &comparisonView{Entries: make([]*comparisonEntry, 0, len(c.Comparisons))}
	for _, wc := range c.Comparisons {
		v.Entries = append(v.Entries, &comparisonEntry{
			Account:   wc.Account,
			BoonEmote: spaced(wc.Average.BoonEmote),
			Percent:   percent(wc.Average.Percent),
			Dps:       humanize.Comma(int64(wc.Average.Dps)),
			Bench:     humanize.Comma(int64(wc.Average.Bench)),
			Lowest:    pullComparison(wc.Lowest, emotes),
			Highest:   pullComparison(wc.Highest, emotes),
		})
	}
	return v
}

func pullComparison(c *analysis.DpsComparison, emotes Emotes) string {
	return fmt.Sprintf(
		"%s%s%s %s [log](%s) vs [bench](%s)",
		spaced(emotes.Emote(c.EncounterID, c.IsCM)),
		spaced(c.BoonEmote),
		c.Profession,
		percent(c.Percent),
		c.Log,
		c.BenchLog,
	)
}

func percent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}
