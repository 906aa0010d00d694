// Package gormstore implements the snapshot store on a device-local sqlite
// database via GORM.
package gormstore

import (
	"context"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-faster/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/xenking/scentcart/internal/snapshot"
)

// CartSnapshot is the cart_snapshots table: one serialized snapshot payload
// per session.
type CartSnapshot struct {
	SessionID string    `gorm:"primaryKey"`
	Payload   []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (CartSnapshot) TableName() string { return "cart_snapshots" }

// Store implements snapshot.Store backed by gorm.DB.
type Store struct {
	db *gorm.DB
}

var _ snapshot.Store = (*Store)(nil)

// Open opens (or creates) the sqlite database at path and migrates the
// snapshot table.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open snapshot db")
	}
	if err := db.AutoMigrate(&CartSnapshot{}); err != nil {
		return nil, errors.Wrap(err, "migrate snapshot table")
	}
	return &Store{db: db}, nil
}

// New wraps an already opened gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Load(ctx context.Context, sessionID string) (*snapshot.Snapshot, error) {
	var row CartSnapshot
	err := s.db.WithContext(ctx).First(&row, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, snapshot.ErrNoSnapshot
	}
	if err != nil {
		return nil, errors.Wrap(err, "load snapshot")
	}
	snap, err := snapshot.Decode(row.Payload)
	if err != nil {
		// A corrupt snapshot is treated as absent; the authoritative
		// hydration will rebuild it.
		return nil, snapshot.ErrNoSnapshot
	}
	return snap, nil
}

func (s *Store) Save(ctx context.Context, sessionID string, snap *snapshot.Snapshot) error {
	row := CartSnapshot{
		SessionID: sessionID,
		Payload:   snapshot.Encode(snap),
		UpdatedAt: time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&row).Error
	return errors.Wrap(err, "save snapshot")
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	err := s.db.WithContext(ctx).
		Delete(&CartSnapshot{}, "session_id = ?", sessionID).Error
	return errors.Wrap(err, "delete snapshot")
}

// Ping reports whether the underlying database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "snapshot db")
	}
	return db.PingContext(ctx)
}
