// Package storage is the Postgres persistence layer: the durable message
// archive, avatar profiles, user preferences, and the safety audit log.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/avamind/ava-core/agent/contract"
)

// Config is the database configuration, populated from the environment.
type Config struct {
	DSN          string        `envconfig:"DSN" required:"true"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" default:"8"`
	ConnTimeout  time.Duration `envconfig:"CONN_TIMEOUT" default:"5s"`
}

// Open builds a bun DB over the Postgres driver.
func Open(cfg Config) *bun.DB {
	connector := pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithTimeout(cfg.ConnTimeout),
	)
	sqldb := sql.OpenDB(connector)
	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	return bun.NewDB(sqldb, pgdialect.New())
}

// Store exposes the CRUD surface the orchestration core consumes. It
// implements ProfileSource, MessageArchive, and AuditSink.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

var (
	_ contractx.ProfileSource  = (*Store)(nil)
	_ contractx.MessageArchive = (*Store)(nil)
	_ contractx.AuditSink      = (*Store)(nil)
)

// CreateSchema creates all tables if they do not exist. Intended for startup
// in development and for tests; production schemas are managed externally.
func (s *Store) CreateSchema(ctx context.Context) error {
	models := []any{
		(*MessageRecord)(nil),
		(*AvatarRecord)(nil),
		(*PreferenceRecord)(nil),
		(*WhatsAppLink)(nil),
		(*AuditRecord)(nil),
	}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// ProfileFor resolves a user's companion profile from the avatars table.
func (s *Store) ProfileFor(ctx context.Context, userID string) (contractx.Profile, bool, error) {
	var record AvatarRecord
	err := s.db.NewSelect().
		Model(&record).
		Where("user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return contractx.Profile{}, false, nil
	}
	if err != nil {
		return contractx.Profile{}, false, fmt.Errorf("avatar lookup: %w", err)
	}
	return contractx.Profile{
		Name:     record.Name,
		Persona:  record.Personality,
		Timezone: record.Timezone,
	}, true, nil
}

// SaveProfile upserts the avatar row. Called by the onboarding surface; the
// caller is responsible for invalidating any cached session copy.
func (s *Store) SaveProfile(ctx context.Context, userID string, profile contractx.Profile) error {
	record := AvatarRecord{
		UserID:      userID,
		Name:        profile.Name,
		Personality: profile.Persona,
		Timezone:    profile.Timezone,
		UpdatedAt:   time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(&record).
		On("CONFLICT (user_id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("personality = EXCLUDED.personality").
		Set("timezone = EXCLUDED.timezone").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("avatar upsert: %w", err)
	}
	return nil
}

// ArchiveTurn appends one turn to the durable archive.
func (s *Store) ArchiveTurn(ctx context.Context, userID string, mode contractx.Mode, turn contractx.Turn) error {
	record := MessageRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Mode:      mode,
		Role:      turn.Role,
		Content:   turn.Content,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(&record).Exec(ctx); err != nil {
		return fmt.Errorf("message insert: %w", err)
	}
	return nil
}

// RecentTurns returns the newest limit turns for one user and mode in
// chronological order, for rebuilding a session buffer after restart.
func (s *Store) RecentTurns(ctx context.Context, userID string, mode contractx.Mode, limit int) ([]contractx.Turn, error) {
	var records []MessageRecord
	err := s.db.NewSelect().
		Model(&records).
		Where("user_id = ?", userID).
		Where("mode = ?", mode).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("message select: %w", err)
	}

	turns := make([]contractx.Turn, len(records))
	for i, record := range records {
		turns[len(records)-1-i] = contractx.Turn{Role: record.Role, Content: record.Content}
	}
	return turns, nil
}

// Append records a safety-gate event.
func (s *Store) Append(ctx context.Context, event contractx.AuditEvent) error {
	record := AuditRecord{
		ID:        event.ID,
		UserID:    event.UserID,
		Kind:      event.Kind,
		Mode:      event.Mode,
		Category:  event.Category,
		Phrases:   event.Phrases,
		CreatedAt: event.At,
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.NewInsert().Model(&record).Exec(ctx); err != nil {
		return fmt.Errorf("audit insert: %w", err)
	}
	return nil
}

// UserIDForPhone resolves a linked WhatsApp number to its account.
func (s *Store) UserIDForPhone(ctx context.Context, phone string) (string, bool, error) {
	var link WhatsAppLink
	err := s.db.NewSelect().
		Model(&link).
		Where("phone = ?", phone).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("whatsapp link lookup: %w", err)
	}
	return link.UserID, true, nil
}

// LinkPhone binds a WhatsApp number to an account, replacing any prior link
// for that number.
func (s *Store) LinkPhone(ctx context.Context, phone, userID string) error {
	link := WhatsAppLink{
		Phone:     phone,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(&link).
		On("CONFLICT (phone) DO UPDATE").
		Set("user_id = EXCLUDED.user_id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("whatsapp link upsert: %w", err)
	}
	return nil
}

// PreferredPlatform returns the user's preferred channel, empty when unset.
func (s *Store) PreferredPlatform(ctx context.Context, userID string) (string, error) {
	var record PreferenceRecord
	err := s.db.NewSelect().
		Model(&record).
		Where("user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("preference lookup: %w", err)
	}
	return record.PreferredPlatform, nil
}

// SavePreferredPlatform upserts the user's preferred channel.
func (s *Store) SavePreferredPlatform(ctx context.Context, userID, platform string) error {
	record := PreferenceRecord{
		UserID:            userID,
		PreferredPlatform: platform,
		UpdatedAt:         time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(&record).
		On("CONFLICT (user_id) DO UPDATE").
		Set("preferred_platform = EXCLUDED.preferred_platform").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("preference upsert: %w", err)
	}
	return nil
}
