package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/scorekeep/scorekeep/internal/scoring"
)

// SQLiteStore persists the match tree and templates in SQLite. Matches are
// saved whole: every mutation rewrites the match's sets, games, and score
// events inside one transaction, so the stored graph always matches the
// in-memory one.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func fmtNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: fmtTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *SQLiteStore) CreateMatch(ctx context.Context, m *scoring.Match) (string, error) {
	scoringJSON, err := json.Marshal(m.Scoring)
	if err != nil {
		return "", fmt.Errorf("encoding rules: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	templateID := sql.NullString{String: m.TemplateID, Valid: m.TemplateID != ""}

	var id string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO matches (template_id, sport, environment, scoring, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`, templateID, m.Sport, m.Environment, string(scoringJSON), fmtTime(m.StartedAt), fmtNullTime(m.EndedAt)).Scan(&id)
	if err != nil {
		return "", err
	}

	if err := insertTree(ctx, tx, id, m); err != nil {
		return "", err
	}

	return id, tx.Commit()
}

func (s *SQLiteStore) SaveMatch(ctx context.Context, id string, m *scoring.Match) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE matches SET ended_at = ? WHERE id = ?
	`, fmtNullTime(m.EndedAt), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	// Replace the owned tree wholesale; foreign keys cascade the deletes
	// down to games and score events.
	if _, err := tx.ExecContext(ctx, `DELETE FROM match_sets WHERE match_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM warmups WHERE match_id = ?`, id); err != nil {
		return err
	}

	if err := insertTree(ctx, tx, id, m); err != nil {
		return err
	}

	return tx.Commit()
}

func insertTree(ctx context.Context, tx *sql.Tx, id string, m *scoring.Match) error {
	if w := m.Warmup; w != nil {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO warmups (match_id, started_at, ended_at)
			VALUES (?, ?, ?)
		`, id, fmtTime(w.StartedAt), fmtNullTime(w.EndedAt))
		if err != nil {
			return err
		}
	}

	for _, set := range m.Sets {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO match_sets (match_id, number, started_at, ended_at)
			VALUES (?, ?, ?, ?)
		`, id, set.Number, fmtTime(set.StartedAt), fmtNullTime(set.EndedAt))
		if err != nil {
			return err
		}

		for _, game := range set.Games {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO games (match_id, set_number, number, score_us, score_them, initial_serve, started_at, ended_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, id, set.Number, game.Number, game.ScoreUs, game.ScoreThem, string(game.InitialServe), fmtTime(game.StartedAt), fmtNullTime(game.EndedAt))
			if err != nil {
				return err
			}

			for _, ev := range game.Scores {
				_, err := tx.ExecContext(ctx, `
					INSERT INTO game_scores (match_id, set_number, game_number, team, change, total, scored_at)
					VALUES (?, ?, ?, ?, ?, ?, ?)
				`, id, set.Number, game.Number, ev.Team, ev.Change, ev.Total, fmtTime(ev.Timestamp))
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *SQLiteStore) GetMatch(ctx context.Context, id string) (*scoring.Match, error) {
	var (
		templateID  sql.NullString
		scoringJSON string
		startedAt   string
		endedAt     sql.NullString
		m           scoring.Match
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT template_id, sport, environment, scoring, started_at, ended_at
		FROM matches WHERE id = ?
	`, id).Scan(&templateID, &m.Sport, &m.Environment, &scoringJSON, &startedAt, &endedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(scoringJSON), &m.Scoring); err != nil {
		return nil, fmt.Errorf("decoding rules for match %s: %w", id, err)
	}
	m.TemplateID = templateID.String
	if m.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if m.EndedAt, err = parseNullTime(endedAt); err != nil {
		return nil, err
	}

	if err := s.loadWarmup(ctx, id, &m); err != nil {
		return nil, err
	}
	if err := s.loadSets(ctx, id, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *SQLiteStore) loadWarmup(ctx context.Context, id string, m *scoring.Match) error {
	var startedAt string
	var endedAt sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT started_at, ended_at FROM warmups WHERE match_id = ?
	`, id).Scan(&startedAt, &endedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	w := &scoring.Warmup{}
	if w.StartedAt, err = parseTime(startedAt); err != nil {
		return err
	}
	if w.EndedAt, err = parseNullTime(endedAt); err != nil {
		return err
	}
	m.Warmup = w
	return nil
}

func (s *SQLiteStore) loadSets(ctx context.Context, id string, m *scoring.Match) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT number, started_at, ended_at FROM match_sets
		WHERE match_id = ? ORDER BY number
	`, id)
	if err != nil {
		return err
	}
	defer rows.Close()

	sets := map[int]*scoring.Set{}
	for rows.Next() {
		var (
			set       scoring.Set
			startedAt string
			endedAt   sql.NullString
		)
		if err := rows.Scan(&set.Number, &startedAt, &endedAt); err != nil {
			return err
		}
		if set.StartedAt, err = parseTime(startedAt); err != nil {
			return err
		}
		if set.EndedAt, err = parseNullTime(endedAt); err != nil {
			return err
		}
		sets[set.Number] = &set
		m.Sets = append(m.Sets, &set)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	games := map[[2]int]*scoring.Game{}
	gameRows, err := s.db.QueryContext(ctx, `
		SELECT set_number, number, score_us, score_them, initial_serve, started_at, ended_at
		FROM games WHERE match_id = ? ORDER BY set_number, number
	`, id)
	if err != nil {
		return err
	}
	defer gameRows.Close()

	for gameRows.Next() {
		var (
			setNumber int
			game      scoring.Game
			startedAt string
			endedAt   sql.NullString
		)
		if err := gameRows.Scan(&setNumber, &game.Number, &game.ScoreUs, &game.ScoreThem, &game.InitialServe, &startedAt, &endedAt); err != nil {
			return err
		}
		if game.StartedAt, err = parseTime(startedAt); err != nil {
			return err
		}
		if game.EndedAt, err = parseNullTime(endedAt); err != nil {
			return err
		}
		set, ok := sets[setNumber]
		if !ok {
			return fmt.Errorf("match %s: game %d references missing set %d", id, game.Number, setNumber)
		}
		set.Games = append(set.Games, &game)
		games[[2]int{setNumber, game.Number}] = &game
	}
	if err := gameRows.Err(); err != nil {
		return err
	}

	// Score events in insertion order, which is their time order.
	scoreRows, err := s.db.QueryContext(ctx, `
		SELECT set_number, game_number, team, change, total, scored_at
		FROM game_scores WHERE match_id = ? ORDER BY id
	`, id)
	if err != nil {
		return err
	}
	defer scoreRows.Close()

	for scoreRows.Next() {
		var (
			setNumber, gameNumber int
			ev                    scoring.GameScore
			scoredAt              string
		)
		if err := scoreRows.Scan(&setNumber, &gameNumber, &ev.Team, &ev.Change, &ev.Total, &scoredAt); err != nil {
			return err
		}
		if ev.Timestamp, err = parseTime(scoredAt); err != nil {
			return err
		}
		game, ok := games[[2]int{setNumber, gameNumber}]
		if !ok {
			return fmt.Errorf("match %s: score event references missing game %d.%d", id, setNumber, gameNumber)
		}
		game.Scores = append(game.Scores, ev)
	}
	return scoreRows.Err()
}

func (s *SQLiteStore) DeleteMatch(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListMatches(ctx context.Context) ([]MatchSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, template_id, sport, environment, started_at, ended_at
		FROM matches ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchSummary
	for rows.Next() {
		var (
			sum        MatchSummary
			templateID sql.NullString
			startedAt  string
			endedAt    sql.NullString
		)
		if err := rows.Scan(&sum.ID, &templateID, &sum.Sport, &sum.Environment, &startedAt, &endedAt); err != nil {
			return nil, err
		}
		sum.TemplateID = templateID.String
		if sum.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if sum.EndedAt, err = parseNullTime(endedAt); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) scanTemplate(scan func(dest ...any) error) (*scoring.Template, error) {
	var (
		t           scoring.Template
		scoringJSON string
		createdAt   string
		lastUsedAt  sql.NullString
	)
	err := scan(&t.ID, &t.Sport, &t.Name, &t.Color, &t.Environment, &scoringJSON, &t.Warmup, &t.StartWorkout, &createdAt, &lastUsedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(scoringJSON), &t.Scoring); err != nil {
		return nil, fmt.Errorf("decoding rules for template %s: %w", t.ID, err)
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.LastUsedAt, err = parseNullTime(lastUsedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

const templateColumns = `id, sport, name, color, environment, scoring, warmup_rule, start_workout, created_at, last_used_at`

func (s *SQLiteStore) ListTemplates(ctx context.Context) ([]*scoring.Template, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*scoring.Template
	for rows.Next() {
		t, err := s.scanTemplate(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetTemplate(ctx context.Context, id string) (*scoring.Template, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = ?`, id)
	t, err := s.scanTemplate(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (s *SQLiteStore) CreateTemplate(ctx context.Context, t *scoring.Template) (string, error) {
	scoringJSON, err := json.Marshal(t.Scoring)
	if err != nil {
		return "", fmt.Errorf("encoding rules: %w", err)
	}

	var id string
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO templates (sport, name, color, environment, scoring, warmup_rule, start_workout, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, t.Sport, t.Name, t.Color, t.Environment, string(scoringJSON), t.Warmup, t.StartWorkout, fmtTime(t.CreatedAt)).Scan(&id)
	if err != nil {
		return "", err
	}
	t.ID = id
	return id, nil
}

func (s *SQLiteStore) UpdateTemplate(ctx context.Context, t *scoring.Template) error {
	scoringJSON, err := json.Marshal(t.Scoring)
	if err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE templates
		SET sport = ?, name = ?, color = ?, environment = ?, scoring = ?, warmup_rule = ?, start_workout = ?
		WHERE id = ?
	`, t.Sport, t.Name, t.Color, t.Environment, string(scoringJSON), t.Warmup, t.StartWorkout, t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteTemplate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) TouchTemplate(ctx context.Context, id string, usedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE templates SET last_used_at = ? WHERE id = ?
	`, fmtTime(usedAt), id)
	return err
}

func (s *SQLiteStore) CountTemplates(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM templates`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) AdminByEmail(ctx context.Context, email string) (string, string, error) {
	var id, hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM admins WHERE email = ?
	`, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return id, hash, err
}

func (s *SQLiteStore) CreateAdmin(ctx context.Context, email, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (email, password_hash) VALUES (?, ?)
		ON CONFLICT (email) DO NOTHING
	`, email, passwordHash)
	return err
}

func (s *SQLiteStore) CreateAdminSession(ctx context.Context, adminID string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO admin_sessions (admin_id) VALUES (?)
		RETURNING id
	`, adminID).Scan(&id)
	return id, err
}

func (s *SQLiteStore) AdminFromSession(ctx context.Context, sessionID string) (adminSession, error) {
	var sess adminSession
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.email
		FROM admin_sessions s
		JOIN admins a ON a.id = s.admin_id
		WHERE s.id = ?
	`, sessionID).Scan(&sess.AdminID, &sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return adminSession{}, ErrNotFound
	}
	return sess, err
}

func (s *SQLiteStore) DeleteAdminSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = ?`, sessionID)
	return err
}
