package history

import (
	"context"
	"database/sql"
	"time"

	"gw2_isac/analysis"

	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("run not found")

const DefaultLimit = 10

type Store struct {
	db *sql.DB
}

// Settings are the per-channel defaults of an analysis request.
type Settings struct {
	Name           string `json:"name"`
	WithHeal       bool   `json:"with_heal"`
	CompareWingman bool   `json:"compare_wingman"`
	AnalyzeBoons   bool   `json:"analyze_boons"`
}

var DefaultSettings = Settings{
	Name:           "Run Analysis",
	WithHeal:       false,
	CompareWingman: true,
	AnalyzeBoons:   false,
}

type GroupPoint struct {
	RunID    string        `json:"run_id"`
	Start    time.Time     `json:"start"`
	GroupDps int           `json:"group_dps"`
	Duration time.Duration `json:"duration"`
	Downtime time.Duration `json:"downtime"`
}

type PlayerPoint struct {
	RunID      string    `json:"run_id"`
	Start      time.Time `json:"start"`
	AvgDps     float64   `json:"avg_dps"`
	Profession string    `json:"profession"`
}

func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		channel TEXT NOT NULL,
		name TEXT NOT NULL,
		start INTEGER NOT NULL,
		duration INTEGER NOT NULL,
		downtime INTEGER NOT NULL,
		group_dps INTEGER NOT NULL,
		document TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_players (
		run_id TEXT NOT NULL,
		account TEXT NOT NULL,
		avg_dps REAL NOT NULL,
		profession TEXT NOT NULL,
		PRIMARY KEY (run_id, account),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS settings (
		channel TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		with_heal BOOLEAN NOT NULL,
		compare_wingman BOOLEAN NOT NULL,
		analyze_boons BOOLEAN NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_channel_name ON runs(channel, name, start);
	CREATE INDEX IF NOT EXISTS idx_run_players_account ON run_players(account);
	`

	_, err := s.db.Exec(schema)
	return errors.WithStack(err)
}

////////////////////////////////////////////////////////////////////////////////////////////////////

// SaveRun stores the report and the per-player rows the evolution queries read.
// Saving the same id again replaces the previous document.
func (s *Store) SaveRun(ctx context.Context, r *analysis.Report) error {
	document, err := jsoniter.MarshalToString(r)
	if err != nil {
		return errors.WithStack(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO runs (id, channel, name, start, duration, downtime, group_dps, document, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.Channel,
		r.Name,
		r.Run.Start.Unix(),
		int64(r.Run.Duration),
		int64(r.Run.Downtime),
		r.Run.GroupDps,
		document,
		r.Created.Unix(),
	)
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM run_players WHERE run_id = ?`, r.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_players (run_id, account, avg_dps, profession) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errors.WithStack(err)
	}
	defer stmt.Close()

	for _, p := range r.Run.Players {
		_, err = stmt.ExecContext(ctx, r.ID, p.Account, p.AvgDps(), mostPlayed(p))
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return errors.WithStack(tx.Commit())
}

func (s *Store) Run(ctx context.Context, id string) (*analysis.Report, error) {
	var document string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM runs WHERE id = ?`, id).Scan(&document)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var r analysis.Report
	if err := jsoniter.UnmarshalFromString(document, &r); err != nil {
		return nil, errors.WithStack(err)
	}
	return &r, nil
}

// GroupEvolution returns the last limit runs of the channel with that name, oldest first.
func (s *Store) GroupEvolution(ctx context.Context, channel, name string, limit int) ([]*GroupPoint, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, start, group_dps, duration, downtime FROM runs
		WHERE channel = ? AND name = ?
		ORDER BY start DESC, created_at DESC
		LIMIT ?`,
		channel, name, limit,
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	res := make([]*GroupPoint, 0, limit)
	for rows.Next() {
		var (
			p                  GroupPoint
			start              int64
			duration, downtime int64
		)
		if err := rows.Scan(&p.RunID, &start, &p.GroupDps, &duration, &downtime); err != nil {
			return nil, errors.WithStack(err)
		}
		p.Start = time.Unix(start, 0)
		p.Duration = time.Duration(duration)
		p.Downtime = time.Duration(downtime)
		res = append(res, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	reverse(res)
	return res, nil
}

// PlayerEvolution returns the last limit runs of the channel with that name the account took part in, oldest first.
func (s *Store) PlayerEvolution(ctx context.Context, channel, name, account string, limit int) ([]*PlayerPoint, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT r.id, r.start, p.avg_dps, p.profession FROM run_players p
		JOIN runs r ON r.id = p.run_id
		WHERE r.channel = ? AND r.name = ? AND p.account = ?
		ORDER BY r.start DESC, r.created_at DESC
		LIMIT ?`,
		channel, name, account, limit,
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	res := make([]*PlayerPoint, 0, limit)
	for rows.Next() {
		var (
			p     PlayerPoint
			start int64
		)
		if err := rows.Scan(&p.RunID, &start, &p.AvgDps, &p.Profession); err != nil {
			return nil, errors.WithStack(err)
		}
		p.Start = time.Unix(start, 0)
		res = append(res, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	reverse(res)
	return res, nil
}

// mostPlayed is the most frequent profession of the player, whatever the role.
func mostPlayed(pa *analysis.PlayerAnalysis) string {
	counts := make(map[string]int)
	res, best := "*", 0
	for _, p := range pa.Pulls {
		if p == nil || p.Skipped || p.IsSentinel() {
			continue
		}
		counts[p.Profession.Name]++
		if counts[p.Profession.Name] > best {
			res = p.Profession.Name
			best = counts[p.Profession.Name]
		}
	}
	return res
}

func reverse[T any](s []T) {
	for i, k := 0, len(s)-1; i < k; i, k = i+1, k-1 {
		s[i], s[k] = s[k], s[i]
	}
}

////////////////////////////////////////////////////////////////////////////////////////////////////

// Settings returns the stored settings of the channel, or DefaultSettings.
func (s *Store) Settings(ctx context.Context, channel string) (Settings, error) {
	st := DefaultSettings
	err := s.db.QueryRowContext(
		ctx,
		`SELECT name, with_heal, compare_wingman, analyze_boons FROM settings WHERE channel = ?`,
		channel,
	).Scan(&st.Name, &st.WithHeal, &st.CompareWingman, &st.AnalyzeBoons)
	if err == sql.ErrNoRows {
		return DefaultSettings, nil
	}
	if err != nil {
		return DefaultSettings, errors.WithStack(err)
	}
	return st, nil
}

func (s *Store) SaveSettings(ctx context.Context, channel string, st Settings) error {
	if st.Name == "" {
		st.Name = DefaultSettings.Name
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO settings (channel, name, with_heal, compare_wingman, analyze_boons) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(channel) DO UPDATE SET
			name = excluded.name,
			with_heal = excluded.with_heal,
			compare_wingman = excluded.compare_wingman,
			analyze_boons = excluded.analyze_boons`,
		channel, st.Name, st.WithHeal, st.CompareWingman, st.AnalyzeBoons,
	)
	return errors.WithStack(err)
}
