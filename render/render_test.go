package render

import (
	"testing"
	"time"

	"gw2_isac/analysis"
	"gw2_isac/gw2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmotes map[int64]string

func (f fakeEmotes) Emote(encounterID int64, cm bool) string {
	if cm {
		return f[-encounterID]
	}
	return f[encounterID]
}

var emotes = fakeEmotes{131329: ":vg:", -131329: ":vgcm:"}

func testReport() *analysis.Report {
	start := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	return &analysis.Report{
		ID:   "r1",
		Name: "Wing 1",
		Run: &analysis.RunAnalysis{
			Start:    start,
			Duration: 62*time.Minute + 3*time.Second,
			Downtime: 12 * time.Minute,
			GroupDps: 123456,
			Pulls: []*analysis.Pull{
				{EncounterID: 131329, Name: "Vale Guardian", Link: "https://dps.report/a", Success: true, Duration: 3 * time.Minute},
				{EncounterID: 131329, Name: "Vale Guardian", Link: "https://dps.report/b", IsCM: true, RemainingHealth: 12.5, Duration: 90 * time.Second},
			},
		},
		Gold: []*analysis.TopStat{
			{Kind: analysis.TopStatDps, Entries: []*analysis.TopStatEntry{{Account: "a.1234", Value: 31234.5}}},
			{Kind: analysis.TopStatResTime, Entries: []*analysis.TopStatEntry{{Account: "b.5678", Value: 65}, {Account: "c.9012", Value: 65}}},
			{Kind: analysis.TopStatBreakbar, Entries: nil},
		},
		Silver: []*analysis.TopStat{
			{Kind: analysis.TopStatDps, Entries: []*analysis.TopStatEntry{{Account: "b.5678", Value: 29000}}},
		},
	}
}

func TestMarkdownOverview(t *testing.T) {
	md, err := Markdown(testReport(), emotes)
	require.NoError(t, err)

	assert.Contains(t, md, "# Wing 1\n")
	assert.Contains(t, md, "**Start:** 2024-03-01 20:00")
	assert.Contains(t, md, "**Duration:** 1h 02m 03s")
	assert.Contains(t, md, "**In fight:** 4m 30s")
	assert.Contains(t, md, "**Downtime:** 12m 00s")
	assert.Contains(t, md, "**Group DPS:** 123,456")
	assert.Contains(t, md, "1. :vg: [Vale Guardian](https://dps.report/a) kill in 3m 00s\n")
	assert.Contains(t, md, "2. :vgcm: [Vale Guardian CM](https://dps.report/b) wipe at 12.5% in 1m 30s\n")
}

func TestMarkdownTopStats(t *testing.T) {
	md, err := Markdown(testReport(), emotes)
	require.NoError(t, err)

	assert.Contains(t, md, "## Top stats")
	assert.Contains(t, md, "- DPS: :first_place: a.1234 (31,234/s) :second_place: b.5678 (29,000/s)\n")
	assert.Contains(t, md, "- Res time: :first_place: b.5678, c.9012 (1m 05s)\n")
	assert.NotContains(t, md, "- CC:")
	assert.NotContains(t, md, "## Wingman")
	assert.NotContains(t, md, "## Boon uptimes")
}

func TestMarkdownWingman(t *testing.T) {
	r := testReport()
	r.Dps = &analysis.ComparisonResult{
		State: analysis.ComparisonStateNormal,
		Comparisons: []*analysis.WingmanComparison{
			{
				Account: "a.1234",
				Average: &analysis.DpsComparison{Percent: 0.9, Dps: 27000, Bench: 30000},
				Lowest:  &analysis.DpsComparison{EncounterID: 131329, Profession: "Weaver", Percent: 0.8, Log: "https://dps.report/a", BenchLog: "https://gw2wingman.nevermindcreations.de/log/x"},
				Highest: &analysis.DpsComparison{EncounterID: 131329, IsCM: true, Profession: "Weaver", Percent: 1, Log: "https://dps.report/b", BenchLog: "https://gw2wingman.nevermindcreations.de/log/y"},
			},
		},
	}
	r.Support = &analysis.ComparisonResult{State: analysis.ComparisonStateNormal, Supports: true}

	md, err := Markdown(r, emotes)
	require.NoError(t, err)

	assert.Contains(t, md, "## Wingman DPS")
	assert.Contains(t, md, "- **a.1234** 90.0% (27,000 / 30,000)\n")
	assert.Contains(t, md, "  - lowest: :vg: Weaver 80.0% [log](https://dps.report/a) vs [bench](https://gw2wingman.nevermindcreations.de/log/x)\n")
	assert.Contains(t, md, "  - highest: :vgcm: Weaver 100.0% [log](https://dps.report/b)")
	assert.NotContains(t, md, "## Wingman support")
}

func TestMarkdownWingmanNoData(t *testing.T) {
	r := testReport()
	r.Dps = &analysis.ComparisonResult{State: analysis.ComparisonStateNoData}
	r.Support = &analysis.ComparisonResult{State: analysis.ComparisonStateNoData, Supports: true}

	md, err := Markdown(r, emotes)
	require.NoError(t, err)

	assert.Contains(t, md, "## Wingman\nWingman benchmarks are not available yet")
	assert.NotContains(t, md, "## Wingman DPS")
}

func TestMarkdownBoons(t *testing.T) {
	r := testReport()
	r.Boons = []*analysis.GroupBoonStats{
		{
			Group: 1,
			Boons: []*analysis.BoonStat{
				{Boon: gw2.Boon{ID: 1187, Name: "Quickness", Emote: ":quickness:", IsPrimary: true}, Average: 95, Lowest: 90, Highest: 100, LowestLink: "https://dps.report/a"},
				{Boon: gw2.Boon{ID: 740, Name: "Might", Emote: ":might:", IsStacks: true}, Average: 24.3, Lowest: 22, Highest: 25, LowestLink: "https://dps.report/a"},
			},
		},
	}

	md, err := Markdown(r, emotes)
	require.NoError(t, err)

	assert.Contains(t, md, "## Boon uptimes")
	assert.Contains(t, md, "### Group 1\n")
	assert.Contains(t, md, "- :quickness: Quickness: 95.0% (lowest 90.0% [log](https://dps.report/a), highest 100.0%)\n")
	assert.Contains(t, md, "- :might: Might: 24.3 (lowest 22.0")
}
