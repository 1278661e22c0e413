package share

import (
	"fmt"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
)

var (
	TemplateFuncMap = template.FuncMap{
		"fn": func(value interface{}) string {
			switch e := value.(type) {
			case float32:
				return humanize.CommafWithDigits(float64(e), 1)
			case float64:
				return humanize.CommafWithDigits(e, 1)
			case int:
				return humanize.Comma(int64(e))
			case int64:
				return humanize.Comma(e)
			}
			return ""
		},
		"pct": func(value float64) string {
			return fmt.Sprintf("%.1f%%", value)
		},
		"dur":  FormatDuration,
		"time": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
		"inc":  func(i int) int { return i + 1 },
	}
)

// FormatDuration renders d as 1h 02m 03s, dropping leading zero units.
func FormatDuration(d time.Duration) string {
	neg := d < 0
	if neg {
		d = -d
	}
	d = d.Round(time.Second)

	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)

	var r string
	switch {
	case h > 0:
		r = fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		r = fmt.Sprintf("%dm %02ds", m, s)
	default:
		r = fmt.Sprintf("%ds", s)
	}
	if neg {
		r = "-" + r
	}
	return r
}
