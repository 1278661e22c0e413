package gw2

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadShippedTables(t *testing.T) {
	r, err := Load(".")
	require.NoError(t, err)

	assert.False(t, r.IsIgnoredForTopStats(131329))
	assert.True(t, r.IsIgnoredForTopStats(131330))
	assert.False(t, r.IsIgnoredForTopStats(999999))

	assert.True(t, r.IsIgnoredForBoonAnalysis(132358))
	assert.False(t, r.IsIgnoredForBoonAnalysis(132100))

	assert.Equal(t, []int{0, 1}, r.TargetIndices(131844))
	assert.Nil(t, r.TargetIndices(999999))

	assert.True(t, r.IsPrimaryBoon(1187))
	assert.True(t, r.IsPrimaryBoon(30328))
	assert.False(t, r.IsPrimaryBoon(740))

	might, ok := r.Boon(740)
	require.True(t, ok)
	assert.Equal(t, "Might", might.Name)
	assert.True(t, might.IsStacks)
}

func TestWingmanTriggerID(t *testing.T) {
	r, err := Load(".")
	require.NoError(t, err)

	id, ok := r.WingmanTriggerID(132100, false)
	require.True(t, ok)
	assert.EqualValues(t, 17154, id)

	id, ok = r.WingmanTriggerID(132100, true)
	require.True(t, ok)
	assert.EqualValues(t, -17154, id)

	_, ok = r.WingmanTriggerID(131330, false)
	assert.False(t, ok)
}

func TestBoonOrder(t *testing.T) {
	r := New(nil, []Boon{
		{ID: 740, Name: "Might"},
		{ID: 30328, Name: "Alacrity", IsPrimary: true},
		{ID: 725, Name: "Fury"},
		{ID: 1187, Name: "Quickness", IsPrimary: true},
	})

	var names []string
	for _, b := range r.Boons() {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"Alacrity", "Quickness", "Fury", "Might"}, names)
}

func TestEmoteFallsBackToNormal(t *testing.T) {
	r := New([]Boss{{EncounterID: 1, EmoteNormal: ":n:"}, {EncounterID: 2, EmoteNormal: ":n:", EmoteChallenge: ":c:"}}, nil)

	assert.Equal(t, ":n:", r.Emote(1, true))
	assert.Equal(t, ":c:", r.Emote(2, true))
	assert.Equal(t, ":n:", r.Emote(2, false))
	assert.Equal(t, "", r.Emote(3, false))
}

func TestLoadWithBOMAndBadRow(t *testing.T) {
	dir := t.TempDir()

	bosses := "\xEF\xBB\xBFencounter_id,name,short_name,valid_for_top_stat,valid_for_boons,emote_normal,emote_challenge,targets,wingman_id\n" +
		"42,Test,t,1,1,:t:,,0;2,7\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bosses.csv"), []byte(bosses), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "boons.csv"), []byte("id,name,emote,stacks,primary\n1187,Quickness,:q:,0,1\n"), 0600))

	r, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, r.TargetIndices(42))
	assert.Equal(t, "t", r.ShortName(42))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "boons.csv"), []byte("id,name,emote,stacks,primary\nxx,Quickness,:q:,0,1\n"), 0600))
	_, err = Load(dir)
	assert.Error(t, err)
}
