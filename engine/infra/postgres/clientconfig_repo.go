package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/floworx/floworx/engine/clientconfig"
	"github.com/floworx/floworx/pkg/logger"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	configTable  = "client_configurations"
	historyTable = "client_configuration_history"
)

var recordColumns = []string{"client_id", "version", "data", "updated_at", "updated_by"}

// DB is the subset of pgxpool.Pool used by the repositories.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ClientConfigRepo implements clientconfig.Store on PostgreSQL.
type ClientConfigRepo struct {
	db    DB
	ping  func(context.Context) error
	close func() error
}

type RepoOption func(*ClientConfigRepo)

// WithHealthCheck overrides the default "SELECT 1" ping.
func WithHealthCheck(fn func(context.Context) error) RepoOption {
	return func(r *ClientConfigRepo) { r.ping = fn }
}

// WithCloser releases the underlying pool when the repository is closed.
func WithCloser(fn func() error) RepoOption {
	return func(r *ClientConfigRepo) { r.close = fn }
}

func NewClientConfigRepo(db DB, opts ...RepoOption) *ClientConfigRepo {
	r := &ClientConfigRepo{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ clientconfig.Store = (*ClientConfigRepo)(nil)

func (r *ClientConfigRepo) Load(ctx context.Context, clientID string) (*clientconfig.Record, error) {
	query, args, err := squirrel.Select(recordColumns...).
		From(configTable).
		Where(squirrel.Eq{"client_id": clientID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var rec clientconfig.Record
	if err := pgxscan.Get(ctx, r.db, &rec, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, clientconfig.ErrNotFound
		}
		return nil, fmt.Errorf("scanning client configuration: %w", err)
	}
	return &rec, nil
}

// CompareAndSwap writes the new version and its history row in one transaction.
// The version guard lives in the WHERE clause, so concurrent writers that read
// the same version cannot both succeed.
func (r *ClientConfigRepo) CompareAndSwap(
	ctx context.Context,
	rec clientconfig.Record,
	expected int,
) (int, error) {
	next := expected + 1
	rec.Version = next
	err := r.withTransaction(ctx, func(tx pgx.Tx) error {
		applied, err := r.swap(ctx, tx, rec, expected)
		if err != nil {
			return err
		}
		if !applied {
			current, err := r.currentVersion(ctx, tx, rec.ClientID)
			if err != nil {
				return err
			}
			return &clientconfig.ConflictError{ClientID: rec.ClientID, Expected: expected, Current: current}
		}
		return r.appendHistory(ctx, tx, rec)
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *ClientConfigRepo) swap(
	ctx context.Context,
	tx pgx.Tx,
	rec clientconfig.Record,
	expected int,
) (bool, error) {
	var (
		query string
		args  []any
		err   error
	)
	if expected == clientconfig.InitialVersion {
		query, args, err = squirrel.Insert(configTable).
			Columns(recordColumns...).
			Values(rec.ClientID, rec.Version, rec.Data, rec.UpdatedAt, rec.UpdatedBy).
			Suffix("ON CONFLICT (client_id) DO NOTHING").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
	} else {
		query, args, err = squirrel.Update(configTable).
			Set("version", rec.Version).
			Set("data", rec.Data).
			Set("updated_at", rec.UpdatedAt).
			Set("updated_by", rec.UpdatedBy).
			Where(squirrel.Eq{"client_id": rec.ClientID}).
			Where(squirrel.Eq{"version": expected}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
	}
	if err != nil {
		return false, fmt.Errorf("building swap query: %w", err)
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("writing client configuration: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ClientConfigRepo) currentVersion(ctx context.Context, tx pgx.Tx, clientID string) (int, error) {
	query, args, err := squirrel.Select("version").
		From(configTable).
		Where(squirrel.Eq{"client_id": clientID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building version query: %w", err)
	}
	var version int
	if err := pgxscan.Get(ctx, tx, &version, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return clientconfig.InitialVersion, nil
		}
		return 0, fmt.Errorf("reading current version: %w", err)
	}
	return version, nil
}

func (r *ClientConfigRepo) appendHistory(ctx context.Context, tx pgx.Tx, rec clientconfig.Record) error {
	query, args, err := squirrel.Insert(historyTable).
		Columns(recordColumns...).
		Values(rec.ClientID, rec.Version, rec.Data, rec.UpdatedAt, rec.UpdatedBy).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building history insert: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

func (r *ClientConfigRepo) History(
	ctx context.Context,
	clientID string,
	limit int,
) ([]clientconfig.Record, error) {
	qb := squirrel.Select(recordColumns...).
		From(historyTable).
		Where(squirrel.Eq{"client_id": clientID}).
		OrderBy("version DESC").
		PlaceholderFormat(squirrel.Dollar)
	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building history query: %w", err)
	}
	var records []clientconfig.Record
	if err := pgxscan.Select(ctx, r.db, &records, query, args...); err != nil {
		return nil, fmt.Errorf("scanning history: %w", err)
	}
	return records, nil
}

func (r *ClientConfigRepo) Ping(ctx context.Context) error {
	if r.ping != nil {
		return r.ping(ctx)
	}
	if _, err := r.db.Exec(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

func (r *ClientConfigRepo) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

func (r *ClientConfigRepo) withTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.FromContext(ctx).Warn("Transaction rollback failed after panic", "error", rbErr)
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.FromContext(ctx).Warn("Transaction rollback failed", "error", rbErr)
			}
		} else if cErr := tx.Commit(ctx); cErr != nil {
			err = fmt.Errorf("committing transaction: %w", cErr)
		}
	}()
	return fn(tx)
}
