package gw2

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dimchansky/utfbom"
	"github.com/pkg/errors"
)

type Boss struct {
	EncounterID     int64
	Name            string
	ShortName       string
	ValidForTopStat bool
	ValidForBoons   bool
	EmoteNormal     string
	EmoteChallenge  string
	Targets         []int
	WingmanID       int64
}

type Boon struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Emote     string `json:"emote"`
	IsStacks  bool   `json:"is_stacks"`
	IsPrimary bool   `json:"is_primary"`
}

// ReferenceData is read-only after Load and safe for concurrent use.
type ReferenceData struct {
	bosses map[int64]*Boss
	boons  map[int64]*Boon

	boonsSorted []*Boon
}

func Load(dir string) (*ReferenceData, error) {
	bosses, err := loadBosses(filepath.Join(dir, "bosses.csv"))
	if err != nil {
		return nil, err
	}

	boons, err := loadBoons(filepath.Join(dir, "boons.csv"))
	if err != nil {
		return nil, err
	}

	return New(bosses, boons), nil
}

func New(bosses []Boss, boons []Boon) *ReferenceData {
	r := &ReferenceData{
		bosses:      make(map[int64]*Boss, len(bosses)),
		boons:       make(map[int64]*Boon, len(boons)),
		boonsSorted: make([]*Boon, 0, len(boons)),
	}

	for i := range bosses {
		r.bosses[bosses[i].EncounterID] = &bosses[i]
	}
	for i := range boons {
		b := &boons[i]
		r.boons[b.ID] = b
		r.boonsSorted = append(r.boonsSorted, b)
	}

	sort.SliceStable(
		r.boonsSorted,
		func(i, k int) bool {
			a, b := r.boonsSorted[i], r.boonsSorted[k]
			if a.IsPrimary != b.IsPrimary {
				return a.IsPrimary
			}
			return a.Name < b.Name
		},
	)

	return r
}

func readCSV(path string, fn func(d []string) error) error {
	fs, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer fs.Close()

	sr, _ := utfbom.Skip(fs)

	cr := csv.NewReader(sr)
	cr.FieldsPerRecord = -1

	header := true
	for {
		d, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, path)
		}

		if header {
			header = false
			continue
		}

		err = fn(d)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return errors.Wrapf(err, "%s:%d", path, line)
		}
	}

	return nil
}

func loadBosses(path string) (r []Boss, err error) {
	err = readCSV(
		path,
		func(d []string) error {
			if len(d) < 9 {
				return errors.Errorf("expected 9 columns, got %d", len(d))
			}

			id, err := strconv.ParseInt(d[0], 10, 64)
			if err != nil {
				return errors.WithStack(err)
			}

			var targets []int
			if d[7] != "" {
				for _, s := range strings.Split(d[7], ";") {
					t, err := strconv.Atoi(s)
					if err != nil {
						return errors.WithStack(err)
					}
					targets = append(targets, t)
				}
			}

			wingmanID, _ := strconv.ParseInt(d[8], 10, 64)

			r = append(r, Boss{
				EncounterID:     id,
				Name:            d[1],
				ShortName:       d[2],
				ValidForTopStat: d[3] == "1",
				ValidForBoons:   d[4] == "1",
				EmoteNormal:     d[5],
				EmoteChallenge:  d[6],
				Targets:         targets,
				WingmanID:       wingmanID,
			})
			return nil
		},
	)
	return
}

func loadBoons(path string) (r []Boon, err error) {
	err = readCSV(
		path,
		func(d []string) error {
			if len(d) < 5 {
				return errors.Errorf("expected 5 columns, got %d", len(d))
			}

			id, err := strconv.ParseInt(d[0], 10, 64)
			if err != nil {
				return errors.WithStack(err)
			}

			r = append(r, Boon{
				ID:        id,
				Name:      d[1],
				Emote:     d[2],
				IsStacks:  d[3] == "1",
				IsPrimary: d[4] == "1",
			})
			return nil
		},
	)
	return
}

////////////////////////////////////////////////////////////////////////////////////////////////////

// IsIgnoredForTopStats reports whether pulls of the encounter skip player aggregation.
// Unknown encounters are analyzed.
func (r *ReferenceData) IsIgnoredForTopStats(encounterID int64) bool {
	b, ok := r.bosses[encounterID]
	return ok && !b.ValidForTopStat
}

func (r *ReferenceData) IsIgnoredForBoonAnalysis(encounterID int64) bool {
	b, ok := r.bosses[encounterID]
	return ok && !b.ValidForBoons
}

// TargetIndices returns the configured boss targets, nil when none are configured.
func (r *ReferenceData) TargetIndices(encounterID int64) []int {
	if b, ok := r.bosses[encounterID]; ok {
		return b.Targets
	}
	return nil
}

func (r *ReferenceData) IsPrimaryBoon(boonID int64) bool {
	b, ok := r.boons[boonID]
	return ok && b.IsPrimary
}

func (r *ReferenceData) Boon(boonID int64) (Boon, bool) {
	b, ok := r.boons[boonID]
	if !ok {
		return Boon{}, false
	}
	return *b, true
}

// Boons returns the boon table, primary boons first then by name.
func (r *ReferenceData) Boons() []Boon {
	res := make([]Boon, len(r.boonsSorted))
	for i, b := range r.boonsSorted {
		res[i] = *b
	}
	return res
}

// WingmanTriggerID returns the fallback benchmark id, negated in challenge mode.
func (r *ReferenceData) WingmanTriggerID(encounterID int64, cm bool) (int64, bool) {
	b, ok := r.bosses[encounterID]
	if !ok || b.WingmanID == 0 {
		return 0, false
	}
	if cm {
		return -b.WingmanID, true
	}
	return b.WingmanID, true
}

func (r *ReferenceData) Emote(encounterID int64, cm bool) string {
	b, ok := r.bosses[encounterID]
	if !ok {
		return ""
	}
	if cm && b.EmoteChallenge != "" {
		return b.EmoteChallenge
	}
	return b.EmoteNormal
}

func (r *ReferenceData) ShortName(encounterID int64) string {
	if b, ok := r.bosses[encounterID]; ok {
		return b.ShortName
	}
	return ""
}
