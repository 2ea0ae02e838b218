package db

import (
	"fmt"
	"strings"

	"flight-analysis/models"
	"flight-analysis/utils"
)

// AnalysisStore persists analysis records. The analysis core never writes
// here itself; the service layer owns persistence.
type AnalysisStore interface {
	SaveAnalysis(record *models.AnalysisRecord) (int64, error)
	RecentAnalyses(limit int) ([]models.AnalysisRecord, error)
	Close() error
}

// NewAnalysisStore builds the store selected by the DB_TYPE environment
// variable ("sqlite" or "mongo"), defaulting to SQLite.
func NewAnalysisStore() (AnalysisStore, error) {
	dbType := strings.ToLower(utils.GetEnv("DB_TYPE", "sqlite"))
	switch dbType {
	case "sqlite", "":
		return NewSQLiteStore(utils.GetEnv("SQLITE_DB_PATH", "data/analyses.db"))
	case "mongo", "mongodb":
		return NewMongoStore(utils.GetEnv("MONGO_URI", "mongodb://localhost:27017"), utils.GetEnv("MONGO_DB", "flight_analysis"))
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}
}
