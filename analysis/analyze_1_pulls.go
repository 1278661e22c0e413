package analysis

import (
	"log"
	"time"
)

func (inst *instance) updatePulls(logs []SourceLog) error {
	refs := inst.ctx.Refs

	var prevEnd time.Time
	for i, src := range logs {
		l := src.Log

		log.Printf("%s: Analyzing %s...", inst.ctx.InteractionID, src.Link)

		start, end := l.Start(), l.End()
		if i > 0 {
			inst.downtime += start.Sub(prevEnd)
		}
		prevEnd = end

		pull := &Pull{
			EncounterID:     l.EncounterID(),
			TriggerID:       l.Trigger(),
			Name:            l.Name(),
			Link:            src.Link,
			Success:         l.Success,
			IsCM:            l.IsCM,
			IsEmbo:          l.HasInstanceBuff(buffEmboldened),
			Start:           start,
			Duration:        end.Sub(start),
			RemainingHealth: l.RemainingHealth(),
			BoonUptimes:     map[int]map[int64]float64{},
		}
		inst.pulls = append(inst.pulls, pull)

		if !l.Success {
			log.Printf("%s: %s wasn't successful, skipping player analysis.", inst.ctx.InteractionID, src.Link)
			inst.downtime += pull.Duration
			continue
		}
		if refs.IsIgnoredForTopStats(pull.EncounterID) {
			log.Printf("%s: %s contains an ignored encounter, skipping player analysis.", inst.ctx.InteractionID, src.Link)
			continue
		}

		groupDps, err := inst.groupDpsOf(src)
		if err != nil {
			return err
		}
		inst.groupDps = append(inst.groupDps, groupDps)

		err = inst.updatePlayers(i, pull, src)
		if err != nil {
			return err
		}
		pull.Analyzed = true
	}

	return nil
}
