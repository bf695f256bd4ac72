// Package sqlite provides a SQLite implementation of the metric/assessment store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cogmem/cogmem-go/pkg/assessment"
	"github.com/cogmem/cogmem-go/pkg/graph"
	"github.com/cogmem/cogmem-go/pkg/metricstore"
)

// Store implements metricstore.Store using SQLite as the backend.
type Store struct {
	db *sql.DB
}

// Config contains configuration for creating a SQLite metric store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string
}

// NewStore creates a new SQLite metric store.
func NewStore(cfg *Config) (*Store, error) {
	dbDir := filepath.Dir(cfg.DBPath)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("NewMetricStore: failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_foreign_keys=1&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("NewMetricStore: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewMetricStore: %w", err)
	}

	store := &Store{db: db}

	if err := store.initTables(context.Background()); err != nil {
		return nil, err
	}

	return store, nil
}

// initTables initializes the database table structure.
func (s *Store) initTables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS goal_assessments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tenant_id TEXT NOT NULL,
			agent_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			goal_text TEXT NOT NULL,
			category TEXT NOT NULL,
			gas_current INTEGER NOT NULL,
			gas_expected INTEGER NOT NULL,
			gas_target INTEGER NOT NULL,
			ideal_rating INTEGER NOT NULL,
			actual_rating INTEGER NOT NULL,
			gap INTEGER NOT NULL,
			attempt_count INTEGER NOT NULL DEFAULT 0,
			success_count INTEGER NOT NULL DEFAULT 0,
			confidence REAL NOT NULL,
			motivation REAL NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assessments_scope
			ON goal_assessments(tenant_id, agent_id, user_id)`,
		`CREATE TABLE IF NOT EXISTS belief_graphs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tenant_id TEXT NOT NULL,
			agent_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			version INTEGER NOT NULL,
			graph_json TEXT NOT NULL,
			conflict_score REAL NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_graphs_scope
			ON belief_graphs(tenant_id, agent_id, user_id, version)`,
		`CREATE TABLE IF NOT EXISTS cognitive_metrics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tenant_id TEXT NOT NULL,
			agent_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			metric_type TEXT NOT NULL,
			value REAL NOT NULL,
			context TEXT,
			threshold REAL,
			threshold_exceeded INTEGER NOT NULL DEFAULT 0,
			measured_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_metrics_scope_type
			ON cognitive_metrics(tenant_id, agent_id, user_id, metric_type)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("initTables: %w", err)
		}
	}

	return nil
}

// SaveAssessment persists a new goal assessment and returns its ID.
func (s *Store) SaveAssessment(ctx context.Context, scope metricstore.Scope, a *assessment.GoalAssessment) (int64, error) {
	query := `
		INSERT INTO goal_assessments
		(tenant_id, agent_id, user_id, goal_text, category,
		 gas_current, gas_expected, gas_target, ideal_rating, actual_rating, gap,
		 attempt_count, success_count, confidence, motivation, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	result, err := s.db.ExecContext(ctx, query,
		scope.TenantID, scope.AgentID, scope.UserID,
		a.GoalText, string(a.Category),
		a.GASCurrent, a.GASExpected, a.GASTarget,
		a.IdealRating, a.ActualRating, a.Gap,
		a.AttemptCount, a.SuccessCount,
		a.Confidence, a.Motivation,
		createdAt, now,
	)
	if err != nil {
		return 0, fmt.Errorf("SaveAssessment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("SaveAssessment: %w", err)
	}

	a.ID = id
	return id, nil
}

// GetAssessment retrieves an assessment by ID within a scope.
func (s *Store) GetAssessment(ctx context.Context, scope metricstore.Scope, id int64) (*assessment.GoalAssessment, error) {
	query := `
		SELECT id, goal_text, category, gas_current, gas_expected, gas_target,
		       ideal_rating, actual_rating, gap, attempt_count, success_count,
		       confidence, motivation, created_at, updated_at
		FROM goal_assessments
		WHERE id = ? AND tenant_id = ? AND agent_id = ? AND user_id = ?
	`

	row := s.db.QueryRowContext(ctx, query, id, scope.TenantID, scope.AgentID, scope.UserID)

	a, err := scanAssessment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetAssessment: %w", err)
	}

	return a, nil
}

// ListAssessments returns assessments whose counters were last updated at or
// after since, newest first. A zero since returns all assessments in scope.
func (s *Store) ListAssessments(ctx context.Context, scope metricstore.Scope, since time.Time) ([]*assessment.GoalAssessment, error) {
	query := `
		SELECT id, goal_text, category, gas_current, gas_expected, gas_target,
		       ideal_rating, actual_rating, gap, attempt_count, success_count,
		       confidence, motivation, created_at, updated_at
		FROM goal_assessments
		WHERE tenant_id = ? AND agent_id = ? AND user_id = ? AND updated_at >= ?
		ORDER BY updated_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, scope.TenantID, scope.AgentID, scope.UserID, since)
	if err != nil {
		return nil, fmt.Errorf("ListAssessments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var assessments []*assessment.GoalAssessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("ListAssessments: %w", err)
		}
		assessments = append(assessments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assessments, nil
}

// TrackAttempt increments the attempt counter, and the success counter when
// success is true. The assessment itself is never deleted or rewritten.
func (s *Store) TrackAttempt(ctx context.Context, scope metricstore.Scope, goalID int64, success bool) error {
	successDelta := 0
	if success {
		successDelta = 1
	}

	query := `
		UPDATE goal_assessments
		SET attempt_count = attempt_count + 1,
		    success_count = success_count + ?,
		    updated_at = ?
		WHERE id = ? AND tenant_id = ? AND agent_id = ? AND user_id = ?
	`

	result, err := s.db.ExecContext(ctx, query, successDelta, time.Now(), goalID,
		scope.TenantID, scope.AgentID, scope.UserID)
	if err != nil {
		return fmt.Errorf("TrackAttempt: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("TrackAttempt: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("TrackAttempt: assessment %d not found in scope", goalID)
	}

	return nil
}

// SaveGraph persists a belief-graph snapshot with the next version number
// for the scope.
//
// Version assignment and insert happen in one transaction so concurrent
// rebuilds cannot claim the same version.
func (s *Store) SaveGraph(ctx context.Context, scope metricstore.Scope, g *graph.BeliefGraph) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("SaveGraph: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var version int64
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0) + 1
		FROM belief_graphs
		WHERE tenant_id = ? AND agent_id = ? AND user_id = ?
	`, scope.TenantID, scope.AgentID, scope.UserID).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("SaveGraph: %w", err)
	}

	g.Version = version

	graphJSON, err := json.Marshal(g)
	if err != nil {
		return 0, fmt.Errorf("SaveGraph: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO belief_graphs
		(tenant_id, agent_id, user_id, version, graph_json, conflict_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, scope.TenantID, scope.AgentID, scope.UserID, version, string(graphJSON), g.ConflictScore, time.Now())
	if err != nil {
		return 0, fmt.Errorf("SaveGraph: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("SaveGraph: %w", err)
	}

	return version, nil
}

// LatestGraph returns the highest-version graph snapshot for the scope.
func (s *Store) LatestGraph(ctx context.Context, scope metricstore.Scope) (*graph.BeliefGraph, error) {
	var graphJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT graph_json
		FROM belief_graphs
		WHERE tenant_id = ? AND agent_id = ? AND user_id = ?
		ORDER BY version DESC
		LIMIT 1
	`, scope.TenantID, scope.AgentID, scope.UserID).Scan(&graphJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LatestGraph: %w", err)
	}

	var g graph.BeliefGraph
	if err := json.Unmarshal([]byte(graphJSON), &g); err != nil {
		return nil, fmt.Errorf("LatestGraph: parse graph: %w", err)
	}

	return &g, nil
}

// AppendMetric appends a metric sample and returns its ID.
func (s *Store) AppendMetric(ctx context.Context, scope metricstore.Scope, m *metricstore.CognitiveMetric) (int64, error) {
	contextJSON, err := json.Marshal(m.Context)
	if err != nil {
		return 0, fmt.Errorf("AppendMetric: %w", err)
	}

	measuredAt := m.MeasuredAt
	if measuredAt.IsZero() {
		measuredAt = time.Now()
	}

	var threshold interface{}
	if m.Threshold != nil {
		threshold = *m.Threshold
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO cognitive_metrics
		(tenant_id, agent_id, user_id, metric_type, value, context, threshold, threshold_exceeded, measured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, scope.TenantID, scope.AgentID, scope.UserID,
		string(m.Type), m.Value, string(contextJSON), threshold, m.ThresholdExceeded, measuredAt)
	if err != nil {
		return 0, fmt.Errorf("AppendMetric: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("AppendMetric: %w", err)
	}

	m.ID = id
	return id, nil
}

// LatestMetric returns the most recent metric of the given type for the scope.
func (s *Store) LatestMetric(ctx context.Context, scope metricstore.Scope, metricType metricstore.MetricType) (*metricstore.CognitiveMetric, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, metric_type, value, context, threshold, threshold_exceeded, measured_at
		FROM cognitive_metrics
		WHERE tenant_id = ? AND agent_id = ? AND user_id = ? AND metric_type = ?
		ORDER BY measured_at DESC, id DESC
		LIMIT 1
	`, scope.TenantID, scope.AgentID, scope.UserID, string(metricType))

	var m metricstore.CognitiveMetric
	var typeStr string
	var contextStr sql.NullString
	var threshold sql.NullFloat64

	err := row.Scan(&m.ID, &typeStr, &m.Value, &contextStr, &threshold, &m.ThresholdExceeded, &m.MeasuredAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LatestMetric: %w", err)
	}

	m.Type = metricstore.MetricType(typeStr)

	if contextStr.Valid && contextStr.String != "" {
		if err := json.Unmarshal([]byte(contextStr.String), &m.Context); err != nil {
			return nil, fmt.Errorf("LatestMetric: parse context: %w", err)
		}
	}

	if threshold.Valid {
		m.Threshold = &threshold.Float64
	}

	return &m, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// scanAssessment scans an assessment from a row or rows.
func scanAssessment(scanner interface{ Scan(...interface{}) error }) (*assessment.GoalAssessment, error) {
	var a assessment.GoalAssessment
	var category string

	err := scanner.Scan(
		&a.ID, &a.GoalText, &category,
		&a.GASCurrent, &a.GASExpected, &a.GASTarget,
		&a.IdealRating, &a.ActualRating, &a.Gap,
		&a.AttemptCount, &a.SuccessCount,
		&a.Confidence, &a.Motivation,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Category = assessment.Category(category)
	return &a, nil
}
