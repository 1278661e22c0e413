package analysis

// Thresholds are the tunable heuristics of the engine.
type Thresholds struct {
	// Group generation a primary boon must exceed to count as boon support.
	BoonGeneration float64 `json:"boon_generation"`
	// Same, for encounters ignored for boon analysis.
	BoonGenerationIgnoredEncounter float64 `json:"boon_generation_ignored_encounter"`
	// Same, for the kiter of the messenger mechanic.
	BoonGenerationKite float64 `json:"boon_generation_kite"`

	// A boon supporter below this dps may be a healer.
	HealerDps int `json:"healer_dps"`
	// A heal score above this marks a healer.
	HealerScore int `json:"healer_score"`

	// Comparison scales target dps by generation instead of uptime below this generation.
	ScaleByGeneration float64 `json:"scale_by_generation"`
}

var DefaultThresholds = Thresholds{
	BoonGeneration:                 50,
	BoonGenerationIgnoredEncounter: 20,
	BoonGenerationKite:             3,
	HealerDps:                      4000,
	HealerScore:                    7,
	ScaleByGeneration:              50,
}

const (
	encounterDeimos = 132100
	buffEmboldened  = 68087

	mechanicKite         = "Mess Fix"
	mechanicKiteFullName = "Messenger Fixation"
)

// Context carries what an analysis needs besides the logs.
type Context struct {
	Refs          ReferenceData
	Thresholds    Thresholds
	InteractionID string
}
