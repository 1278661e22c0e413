package analysis

import (
	"time"
)

// Report is the finished document of one analysis request, as rendered, stored and archived.
type Report struct {
	ID       string    `json:"id"`
	Channel  string    `json:"channel"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	WithHeal bool      `json:"with_heal"`

	Run *RunAnalysis `json:"run"`

	Gold   []*TopStat `json:"gold"`
	Silver []*TopStat `json:"silver"`

	// nil when the comparison was not requested.
	Dps     *ComparisonResult `json:"dps,omitempty"`
	Support *ComparisonResult `json:"support,omitempty"`

	// nil when boon analysis was not requested.
	Boons []*GroupBoonStats `json:"boons,omitempty"`
}

// InFight is the summed duration of all pulls.
func (r *RunAnalysis) InFight() (d time.Duration) {
	for _, p := range r.Pulls {
		d += p.Duration
	}
	return
}
