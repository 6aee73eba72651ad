// Package record persists collected readings into a SQLite logbook. Each
// invocation gets a fresh session identifier so overlapping runs against the
// same file stay distinguishable.
package record

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/tom1484/cmg-10m-thermal/internal/collect"
	"github.com/tom1484/cmg-10m-thermal/internal/config"
	"github.com/tom1484/cmg-10m-thermal/internal/errors"
	"github.com/tom1484/cmg-10m-thermal/internal/logger"
)

const defaultDirPerm = 0o755

type entry struct {
	timestamp time.Time
	key       string
	address   uint8
	channel   uint8
	temp      *float64
	adc       *float64
	cjc       *float64
}

// Repository buffers reading entries and flushes them to SQLite in batches.
type Repository struct {
	db            *sql.DB
	log           logger.Logger
	cfg           Config
	session       string
	mu            sync.Mutex
	buffer        []entry
	flushTicker   *time.Ticker
	shutdownChan  chan struct{}
	flushDoneChan chan struct{}
}

func NewRepository(cfg Config, log logger.Logger) (*Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
			return nil, errFactory.Wrap(ErrStorageInit, err)
		}
	}

	dsn := cfg.DBPath + "?_journal=WAL&_auto_vacuum=2"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := ValidateAndUpdateSchema(db, log); err != nil {
		db.Close()
		return nil, err
	}

	repo := &Repository{
		db:            db,
		log:           log,
		cfg:           cfg,
		session:       ulid.Make().String(),
		buffer:        make([]entry, 0, cfg.BatchSize),
		shutdownChan:  make(chan struct{}),
		flushDoneChan: make(chan struct{}),
	}

	log.Info().
		Str("path", cfg.DBPath).
		Str("session", repo.session).
		Int("schema_version", SchemaVersion).
		Msg("Reading logbook opened")

	if cfg.BatchSize > 0 && cfg.BatchTimeout > 0 {
		repo.flushTicker = time.NewTicker(time.Duration(cfg.BatchTimeout) * time.Second)
		go repo.flusher()
	} else {
		close(repo.flushDoneChan)
	}

	return repo, nil
}

// Session returns the identifier under which this run's entries are stored.
func (r *Repository) Session() string {
	return r.session
}

// RecordResult appends every reading of one collection pass, stamped with ts.
func (r *Repository) RecordResult(res *collect.Result, sources []config.Source, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, reading := range res.Readings {
		var key string
		if i < len(sources) {
			key = sources[i].Key
		}
		r.buffer = append(r.buffer, entry{
			timestamp: ts,
			key:       key,
			address:   reading.Address,
			channel:   reading.Channel,
			temp:      reading.Temperature,
			adc:       reading.ADCVoltage,
			cjc:       reading.CJCTemp,
		})
	}

	if len(r.buffer) >= r.cfg.BatchSize {
		return r.flush()
	}

	return nil
}

// Close flushes the remaining buffer, checkpoints the WAL, and closes the
// database.
func (r *Repository) Close() error {
	errFactory := errors.New()

	if r.flushTicker != nil {
		close(r.shutdownChan)
		r.flushTicker.Stop()
		<-r.flushDoneChan
	} else {
		r.mu.Lock()
		r.flush()
		r.mu.Unlock()
	}

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}

	if err := r.db.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}

	r.log.Info().Msg("Reading logbook closed")

	return nil
}

func (r *Repository) flusher() {
	defer close(r.flushDoneChan)

	for {
		select {
		case <-r.flushTicker.C:
			r.mu.Lock()
			r.flush()
			r.mu.Unlock()
		case <-r.shutdownChan:
			r.mu.Lock()
			r.flush()
			r.mu.Unlock()
			return
		}
	}
}

func (r *Repository) flush() error {
	if len(r.buffer) == 0 {
		return nil
	}

	errFactory := errors.New()

	tx, err := r.db.Begin()
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to begin transaction")
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	stmt, err := tx.Prepare(insertReadingSQL)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to prepare statement")
		if err := tx.Rollback(); err != nil {
			r.log.Error().Err(err).Msg("Failed to roll back transaction")
		}
		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	defer stmt.Close()

	for _, e := range r.buffer {
		if _, err := stmt.Exec(
			r.session,
			e.timestamp.UnixMicro(),
			e.key,
			int64(e.address),
			int64(e.channel),
			nullable(e.temp),
			nullable(e.adc),
			nullable(e.cjc),
		); err != nil {
			r.log.Error().Err(err).Msg("Failed to execute insert")
			if err := tx.Rollback(); err != nil {
				r.log.Error().Err(err).Msg("Failed to roll back transaction")
			}
			return errFactory.Wrap(ErrTransactionFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		r.log.Error().Err(err).Msg("Failed to commit transaction")
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	r.log.Debug().Int("records", len(r.buffer)).Msg("Flushed readings to logbook")
	r.buffer = r.buffer[:0]

	return nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}

	return *v
}
