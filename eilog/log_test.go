package eilog

import (
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `{
	"timeStartStd": "2024-03-01 20:00:00 +01:00",
	"timeEndStd": "2024-03-01 20:05:30 +01:00",
	"eiEncounterID": 132100,
	"triggerID": 17154,
	"fightName": "Deimos",
	"success": false,
	"isCM": true,
	"targets": [
		{"name": "Deimos", "finalHealth": 0, "totalHealth": 100},
		{"name": "Saul", "finalHealth": 250, "totalHealth": 1000}
	],
	"presentInstanceBuffs": [[68087, 2]],
	"mechanics": [
		{"name": "Mess Fix", "fullName": "Messenger Fixation", "mechanicsData": [{"time": 1, "actor": "Kiter"}, {"time": 2, "actor": "Kiter"}, {"time": 3, "actor": "Other"}]}
	],
	"players": [{
		"account": "Some.1234",
		"name": "Some Char",
		"profession": "Firebrand",
		"group": 2,
		"healing": 8,
		"dpsAll": [{"dps": 5000, "breakbarDamage": 123.6}],
		"dpsTargets": [[{"dps": 4000, "powerDps": 3000, "condiDps": 1000}], [{"dps": 100}]],
		"support": [{"resurrectTime": 1.5, "condiCleanse": 12, "boonStrips": 3}],
		"totalDamageTaken": [[{"totalDamage": 100}, {"totalDamage": 50}, {}]],
		"combatReplayData": {"down": [[1, 2], [5, 6]]},
		"extHealingStats": {"outgoingHealing": [{"hps": 900}]},
		"extBarrierStats": {"outgoingBarrier": [{"bps": 120}]},
		"buffUptimes": [{"id": 1187, "buffData": [{"uptime": 99.5}]}, {"id": 740, "buffData": [{}]}],
		"groupBuffs": [{"id": 1187, "buffData": [{"generation": 60.2}]}]
	}]
}`

func decode(t *testing.T, s string) *Log {
	var l Log
	require.NoError(t, jsoniter.UnmarshalFromString(s, &l))
	return &l
}

func TestLogAccessors(t *testing.T) {
	l := decode(t, sampleLog)

	assert.Equal(t, 5*time.Minute+30*time.Second, l.End().Sub(l.Start()))
	assert.EqualValues(t, 132100, l.EncounterID())
	assert.EqualValues(t, 17154, l.Trigger())
	assert.Equal(t, "Deimos", l.Name())
	assert.InDelta(t, 25.0, l.RemainingHealth(), 1e-9)
	assert.True(t, l.HasInstanceBuff(68087))
	assert.False(t, l.HasInstanceBuff(1))

	actor, ok := l.MostAffected("Mess Fix", "Messenger Fixation")
	require.True(t, ok)
	assert.Equal(t, "Kiter", actor)
}

func TestLogDefaults(t *testing.T) {
	l := decode(t, `{"timeEndStd": "2024-03-01 20:05:30 +01:00", "targets": [{"finalHealth": 10}]}`)

	assert.Equal(t, l.End(), l.Start())
	assert.EqualValues(t, -1, l.EncounterID())
	assert.EqualValues(t, -1, l.Trigger())
	assert.Equal(t, "Unknown", l.Name())
	assert.InDelta(t, 1000.0, l.RemainingHealth(), 1e-9)

	_, ok := l.MostAffected("Mess Fix", "Messenger Fixation")
	assert.False(t, ok)

	empty := decode(t, `{}`)
	assert.True(t, empty.Start().IsZero())
	assert.True(t, empty.End().IsZero())
	assert.Zero(t, empty.RemainingHealth())
}

func TestPlayerStats(t *testing.T) {
	l := decode(t, sampleLog)
	s := l.Players[0].Stats()

	assert.Equal(t, "Some.1234", s.Account)
	assert.Equal(t, "Firebrand", s.Profession)
	assert.Equal(t, 2, s.Group)
	assert.Equal(t, 8, s.HealScore)
	assert.Equal(t, 900, s.Heal)
	assert.Equal(t, 120, s.Barrier)
	assert.Equal(t, 124, s.Breakbar)
	assert.Equal(t, 1.5, s.ResurrectTime)
	assert.Equal(t, 12, s.CondiCleanse)
	assert.Equal(t, 3, s.BoonStrips)
	assert.EqualValues(t, 150, s.DamageTaken)
	assert.Equal(t, 2, s.Downstates)
	assert.Equal(t, 4000, s.TargetDps)
	assert.Equal(t, map[int64]float64{1187: 99.5}, s.BuffUptimes)
	assert.Equal(t, []BuffGeneration{{ID: 1187, Generation: 60.2}}, s.GroupBuffsGen)
	assert.Equal(t, []TargetDps{{Power: 3000, Condi: 1000, Valid: true}, {}}, s.TargetBreakdown)
}

func TestPlayerStatsEmpty(t *testing.T) {
	var p Player
	s := p.Stats()

	assert.False(t, p.HasAccount())
	assert.Equal(t, "*", s.Profession)
	assert.Equal(t, -1, s.Group)
	assert.False(t, s.FriendlyNPC)
	assert.False(t, s.IsFake)
	assert.Zero(t, s.Heal)
	assert.Zero(t, s.Barrier)
	assert.Zero(t, s.Breakbar)
	assert.Zero(t, s.DamageTaken)
	assert.Zero(t, s.Downstates)
	assert.Zero(t, s.TargetDps)
	assert.Empty(t, s.BuffUptimes)
	assert.Empty(t, s.TargetBreakdown)
}
