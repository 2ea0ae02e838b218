package db

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"flight-analysis/models"
	"flight-analysis/utils"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
)

// SQLiteStore persists analysis records in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and initializes) the analyses database.
func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	dbPath := dataSourceName
	if idx := strings.Index(dataSourceName, "?"); idx != -1 {
		dbPath = dataSourceName[:idx]
	}

	dbDir := filepath.Dir(dbPath)
	if dbDir != "." && dbDir != "" {
		if err := utils.CreateFolder(dbDir); err != nil {
			return nil, fmt.Errorf("error creating database directory: %s", err)
		}
	}

	// busy timeout keeps concurrent writers from failing immediately
	if !strings.Contains(dataSourceName, "_busy_timeout") {
		if strings.Contains(dataSourceName, "?") {
			dataSourceName += "&_busy_timeout=5000"
		} else {
			dataSourceName += "?_busy_timeout=5000"
		}
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("error connecting to SQLite: %s", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("error creating tables: %s", err)
	}

	return &SQLiteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	createAnalysesTable := `
    CREATE TABLE IF NOT EXISTS analyses (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        source TEXT,
        aircraft_type TEXT NOT NULL,
        confidence REAL NOT NULL DEFAULT 0,
        risk_score REAL NOT NULL DEFAULT 0,
        risk_level TEXT NOT NULL,
        anomaly_count INTEGER NOT NULL DEFAULT 0,
        rows INTEGER NOT NULL DEFAULT 0,
        latency_ms REAL NOT NULL DEFAULT 0,
        result TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_analyses_timestamp ON analyses(timestamp);
    CREATE INDEX IF NOT EXISTS idx_analyses_risk ON analyses(risk_level, risk_score);
    `

	if _, err := db.Exec(createAnalysesTable); err != nil {
		return fmt.Errorf("error creating analyses table: %s", err)
	}
	return nil
}

// SaveAnalysis inserts one record and returns its row id.
func (s *SQLiteStore) SaveAnalysis(record *models.AnalysisRecord) (int64, error) {
	res, err := s.db.Exec(`
        INSERT INTO analyses (timestamp, source, aircraft_type, confidence, risk_score, risk_level, anomaly_count, rows, latency_ms, result)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Timestamp, record.Source, record.AircraftType, record.Confidence,
		record.RiskScore, record.RiskLevel, record.AnomalyCount, record.Rows,
		record.LatencyMs, string(record.Result),
	)
	if err != nil {
		return 0, fmt.Errorf("error inserting analysis: %s", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error reading insert id: %s", err)
	}
	record.ID = id
	return id, nil
}

// RecentAnalyses returns the newest records, newest first.
func (s *SQLiteStore) RecentAnalyses(limit int) ([]models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
        SELECT id, timestamp, source, aircraft_type, confidence, risk_score, risk_level, anomaly_count, rows, latency_ms, result
        FROM analyses ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying analyses: %s", err)
	}
	defer rows.Close()

	var records []models.AnalysisRecord
	for rows.Next() {
		var rec models.AnalysisRecord
		var result string
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.Source, &rec.AircraftType,
			&rec.Confidence, &rec.RiskScore, &rec.RiskLevel, &rec.AnomalyCount,
			&rec.Rows, &rec.LatencyMs, &result); err != nil {
			return nil, fmt.Errorf("error scanning analysis row: %s", err)
		}
		rec.Result = []byte(result)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
