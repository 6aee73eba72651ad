package record

import (
	"database/sql"

	"github.com/tom1484/cmg-10m-thermal/internal/errors"
	"github.com/tom1484/cmg-10m-thermal/internal/logger"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS readings (
	       id          INTEGER PRIMARY KEY AUTOINCREMENT,
	       session     TEXT NOT NULL,
	       timestamp   INTEGER NOT NULL,
	       key         TEXT NOT NULL,
	       address     INTEGER NOT NULL,
	       channel     INTEGER NOT NULL,
	       temperature REAL,
	       adc_voltage REAL,
	       cjc_temp    REAL
	   );
	   CREATE INDEX IF NOT EXISTS idx_readings_session
	       ON readings (session, timestamp);`

	insertReadingSQL = `
    INSERT INTO readings (
        session, timestamp, key, address, channel,
        temperature, adc_voltage, cjc_temp
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
)

// ValidateAndUpdateSchema brings a fresh or current database to the current
// schema version. A database written by a newer build is refused rather than
// migrated downward.
func ValidateAndUpdateSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	version, err := GetSchemaVersion(db)
	if err != nil {
		return err
	}

	switch {
	case version == SchemaVersion:
		return nil
	case version > SchemaVersion:
		return errFactory.WithData(ErrSchemaTooNew, version)
	}

	return InitSchema(db, log)
}

// InitSchema creates the schema and records the current version.
func InitSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				log.Debug().Err(err).Msg("Failed to rollback transaction")
			}
		}
	}()

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	if _, err := tx.Exec(`
        INSERT OR IGNORE INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, SchemaVersion); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	log.Info().Int("version", SchemaVersion).Msg("Logbook schema initialized")

	return nil
}

// GetSchemaVersion returns the version recorded in the database, or 0 for a
// fresh database.
func GetSchemaVersion(db *sql.DB) (int, error) {
	errFactory := errors.New()

	exists, err := tableExists(db, "schema_versions")
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = db.QueryRow(`
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.Wrap(ErrSchemaValidationFailed, err)
	}

	return version, nil
}

func tableExists(db *sql.DB, tableName string) (bool, error) {
	var exists bool
	err := db.QueryRow(`
        SELECT EXISTS (
            SELECT 1 FROM sqlite_master
            WHERE type='table' AND name=?
        )
    `, tableName).Scan(&exists)
	if err != nil {
		return false, errors.New().Wrap(ErrSchemaValidationFailed, err)
	}

	return exists, nil
}
