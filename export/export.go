package export

import (
	"fmt"
	"strings"

	"gw2_isac/analysis"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	SheetPulls   = "Pulls"
	SheetPlayers = "Players"
)

var (
	pullHeaders = []string{
		"#", "Boss", "Link", "CM", "Success", "Start", "Duration (s)", "Remaining HP (%)", "Group DPS",
	}
	playerHeaders = []string{
		"Account", "Avg DPS", "Avg Rank", "Professions", "CC", "Res Time (s)",
		"Condi Cleanse", "Boon Strips", "Damage Taken", "Downstates",
	}
)

// Workbook lays the run out as two sheets: one row per pull and one row per player,
// with the player's dps on every pull appended as columns.
func Workbook(run *analysis.RunAnalysis) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetPulls); err != nil {
		f.Close()
		return nil, errors.WithStack(err)
	}
	if _, err := f.NewSheet(SheetPlayers); err != nil {
		f.Close()
		return nil, errors.WithStack(err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, errors.WithStack(err)
	}

	if err := writePulls(f, headerStyle, run); err != nil {
		f.Close()
		return nil, err
	}
	if err := writePlayers(f, headerStyle, run); err != nil {
		f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return errors.WithStack(err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func writeHeaders(f *excelize.File, sheet string, style int, headers []string) error {
	values := make([]interface{}, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := writeRow(f, sheet, 1, values); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return errors.WithStack(err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(f.SetColWidth(sheet, "A", lastCol, 15))
}

func writePulls(f *excelize.File, style int, run *analysis.RunAnalysis) error {
	if err := writeHeaders(f, SheetPulls, style, pullHeaders); err != nil {
		return err
	}

	for i, p := range run.Pulls {
		err := writeRow(f, SheetPulls, i+2, []interface{}{
			i + 1,
			p.Name,
			p.Link,
			p.IsCM,
			p.Success,
			p.Start.Format("2006-01-02 15:04:05"),
			int(p.Duration.Seconds()),
			p.RemainingHealth,
			pullGroupDps(run, i),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func pullGroupDps(run *analysis.RunAnalysis, pull int) (r int) {
	for _, pa := range run.Players {
		if pull < len(pa.Pulls) && pa.Pulls[pull] != nil {
			r += pa.Pulls[pull].Dps
		}
	}
	return
}

func writePlayers(f *excelize.File, style int, run *analysis.RunAnalysis) error {
	headers := append([]string(nil), playerHeaders...)
	for i, p := range run.Pulls {
		headers = append(headers, fmt.Sprintf("%d. %s", i+1, p.Name))
	}
	if err := writeHeaders(f, SheetPlayers, style, headers); err != nil {
		return err
	}

	for i, pa := range run.Players {
		values := []interface{}{
			pa.Account,
			int(pa.AvgDps()),
			pa.AvgDpsPos() + 1,
			strings.Join(pa.Professions(), ", "),
			pa.Breakbar(),
			pa.ResTime(),
			pa.CondiCleanse(),
			pa.BoonStrips(),
			pa.DamageTaken(),
			pa.Downstates(),
		}
		for _, pp := range pa.Pulls {
			if pp == nil || pp.Skipped || pp.IsSentinel() {
				values = append(values, "")
				continue
			}
			values = append(values, pp.Dps)
		}

		if err := writeRow(f, SheetPlayers, i+2, values); err != nil {
			return err
		}
	}
	return nil
}
