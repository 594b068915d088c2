package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/aatumaykin/janitor/internal/constants"
	"github.com/aatumaykin/janitor/internal/logger"
)

const channelsTable = "channels"

type channelRow struct {
	ChannelID     string `db:"channel_id"`
	GuildID       string `db:"guild_id"`
	MaxAgeMinutes int    `db:"max_age_minutes"`
	CreatedAt     int64  `db:"created_at"`
}

func (r channelRow) toConfig() ChannelConfig {
	return ChannelConfig{
		ChannelID:        r.ChannelID,
		GuildID:          r.GuildID,
		RetentionMinutes: r.MaxAgeMinutes,
		CreatedAt:        time.Unix(r.CreatedAt, 0).UTC(),
	}
}

// SQLiteStore is a Repository backed by a single SQLite file.
// Reads run concurrently; writes are serialized and each runs in its own transaction.
type SQLiteStore struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
	mu      sync.RWMutex
	log     *logger.Logger

	defaultRetention int
	now              func() time.Time
	version          uint
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets the store logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *SQLiteStore) { s.log = log }
}

// WithDefaultRetention overrides the retention given to newly added channels.
func WithDefaultRetention(minutes int) Option {
	return func(s *SQLiteStore) {
		if minutes >= constants.MinRetentionMinutes {
			s.defaultRetention = minutes
		}
	}
}

// WithClock overrides the time source used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) { s.now = now }
}

// Open opens (or creates) the database at path and applies migrations.
func Open(path string, opts ...Option) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", dir, err)
		}
	}

	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &SQLiteStore{
		db:               db,
		builder:          sq.StatementBuilder.PlaceholderFormat(sq.Question),
		log:              logger.Nop(),
		defaultRetention: constants.DefaultRetentionMinutes,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	version, err := Migrate(db.DB)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	s.version = version

	s.log.Info("store opened",
		logger.Field{Key: "path", Value: path},
		logger.Field{Key: "schema_version", Value: version})
	return s, nil
}

// SchemaVersion returns the migration version applied at open.
func (s *SQLiteStore) SchemaVersion() uint {
	return s.version
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Add(ctx context.Context, guildID, channelID string) error {
	return s.write(ctx, func(tx *sqlx.Tx) error {
		query, args, err := s.builder.
			Insert(channelsTable).
			Columns("channel_id", "guild_id", "max_age_minutes", "created_at").
			Values(channelID, guildID, s.defaultRetention, s.now().Unix()).
			Suffix("ON CONFLICT(channel_id) DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("insert channel %s: %w", channelID, err)
		}
		return requireAffected(res, ErrAlreadyExists)
	})
}

func (s *SQLiteStore) Remove(ctx context.Context, channelID string) error {
	return s.write(ctx, func(tx *sqlx.Tx) error {
		query, args, err := s.builder.
			Delete(channelsTable).
			Where(sq.Eq{"channel_id": channelID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("delete channel %s: %w", channelID, err)
		}
		return requireAffected(res, ErrNotFound)
	})
}

func (s *SQLiteStore) Exists(ctx context.Context, channelID string) (bool, error) {
	_, err := s.Get(ctx, channelID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLiteStore) Get(ctx context.Context, channelID string) (ChannelConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args, err := s.selectChannels().Where(sq.Eq{"channel_id": channelID}).ToSql()
	if err != nil {
		return ChannelConfig{}, fmt.Errorf("build select: %w", err)
	}

	var row channelRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ChannelConfig{}, ErrNotFound
		}
		return ChannelConfig{}, fmt.Errorf("get channel %s: %w", channelID, err)
	}
	return row.toConfig(), nil
}

func (s *SQLiteStore) ListByGuild(ctx context.Context, guildID string) ([]ChannelConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args, err := s.selectChannels().
		Where(sq.Eq{"guild_id": guildID}).
		OrderBy("created_at", "channel_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []channelRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list channels of guild %s: %w", guildID, err)
	}

	configs := make([]ChannelConfig, 0, len(rows))
	for _, row := range rows {
		configs = append(configs, row.toConfig())
	}
	return configs, nil
}

func (s *SQLiteStore) SetRetention(ctx context.Context, channelID string, minutes int) (int, error) {
	minutes = max(minutes, constants.MinRetentionMinutes)

	err := s.write(ctx, func(tx *sqlx.Tx) error {
		query, args, err := s.builder.
			Update(channelsTable).
			Set("max_age_minutes", minutes).
			Where(sq.Eq{"channel_id": channelID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update retention of %s: %w", channelID, err)
		}
		return requireAffected(res, ErrNotFound)
	})
	if err != nil {
		return 0, err
	}
	return minutes, nil
}

func (s *SQLiteStore) Retention(ctx context.Context, channelID string) (int, error) {
	cfg, err := s.Get(ctx, channelID)
	if errors.Is(err, ErrNotFound) {
		return s.defaultRetention, nil
	}
	if err != nil {
		return 0, err
	}
	return cfg.RetentionMinutes, nil
}

func (s *SQLiteStore) selectChannels() sq.SelectBuilder {
	return s.builder.
		Select("channel_id", "guild_id", "max_age_minutes", "created_at").
		From(channelsTable)
}

// write runs fn in a transaction under the write lock. The deferred rollback
// is a no-op once the transaction has committed.
func (s *SQLiteStore) write(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func requireAffected(res sql.Result, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return none
	}
	return nil
}

var _ Repository = (*SQLiteStore)(nil)
