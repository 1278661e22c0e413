package analysispool

import (
	"fmt"
	"hash/fnv"
	"strings"

	"gw2_isac/eilog"
	"gw2_isac/history"
)

const (
	maxLinks      = 100
	maxNameLength = 64
)

// Request is one analysis request. Unset options fall back to the channel settings.
type Request struct {
	Channel string `json:"channel"`
	Logs    string `json:"logs"`

	Name           *string `json:"name,omitempty"`
	WithHeal       *bool   `json:"with_heal,omitempty"`
	CompareWingman *bool   `json:"compare_wingman,omitempty"`
	AnalyzeBoons   *bool   `json:"analyze_boons,omitempty"`
}

func (r *Request) settings(base history.Settings) history.Settings {
	if r.Name != nil && strings.TrimSpace(*r.Name) != "" {
		base.Name = strings.TrimSpace(*r.Name)
	}
	if r.WithHeal != nil {
		base.WithHeal = *r.WithHeal
	}
	if r.CompareWingman != nil {
		base.CompareWingman = *r.CompareWingman
	}
	if r.AnalyzeBoons != nil {
		base.AnalyzeBoons = *r.AnalyzeBoons
	}
	return base
}

func checkRequestValidation(r *Request) bool {
	r.Channel = strings.TrimSpace(r.Channel)

	switch {
	case len(r.Channel) > 100:
	case r.Name != nil && len(*r.Name) > maxNameLength:
	case len(eilog.ExtractPermalinks(r.Logs)) > maxLinks:
	default:
		return true
	}

	return false
}

// requestKey identifies the result of a request: same links and same effective settings.
func requestKey(channel string, links []string, st history.Settings) string {
	h := fnv.New128a()
	fmt.Fprint(
		h,
		channel, "|||",
		st.Name, "|||",
		st.WithHeal, "|||",
		st.CompareWingman, "|||",
		st.AnalyzeBoons, "|||",
		links, "|||",
	)

	return fmt.Sprintf("%x", h.Sum(nil))
}
