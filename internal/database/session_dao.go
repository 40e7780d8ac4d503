package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/control-horario/jornada-tracker/internal/model"
)

type SessionDAO struct {
	Logger *slog.Logger
	*DB
}

func NewSessionDAO(logger *slog.Logger, db *DB) *SessionDAO {
	return &SessionDAO{
		Logger: logger.With("dao", "session"),
		DB:     db,
	}
}

type InsertSessionDTO struct {
	Token     string
	User      model.ID
	ExpiresAt time.Time
}

func (dao *SessionDAO) Insert(ctx context.Context, dto InsertSessionDTO) (model.ID, error) {
	logger := dao.Logger.With("query", "insert")

	query, args, err := dao.Builder.
		Insert("sessions").
		Columns("token", "user_id", "expires_at").
		Values(dto.Token, dto.User, dto.ExpiresAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var id model.ID
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&id); err != nil {
		logger.Warn("failed query execute", "error", err)

		if IsUniqueViolation(err) {
			return 0, model.NewError("session", model.ErrExists)
		}

		return 0, err
	}

	return id, nil
}

func (dao *SessionDAO) GetByToken(ctx context.Context, token string) (model.Session, error) {
	logger := dao.Logger.With("query", "getByToken")

	query, args, err := dao.Builder.
		Select("*").
		From("sessions").
		Where(squirrel.Eq{"token": token}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Session{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var session model.Session
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&session); err != nil {
		if IsNoRows(err) {
			return model.Session{}, model.NewError("session", model.ErrNotFound)
		}

		logger.Warn("failed query execute", "error", err)

		return model.Session{}, err
	}

	return session, nil
}

func (dao *SessionDAO) DeleteByToken(ctx context.Context, token string) error {
	logger := dao.Logger.With("query", "deleteByToken")

	query, args, err := dao.Builder.
		Delete("sessions").
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return err
	}

	logger.Debug("build query", "sql", query, "args", args)

	if _, err = dao.ExecContext(ctx, query, args...); err != nil {
		logger.Warn("failed query execute", "error", err)

		return err
	}

	return nil
}

// DeleteExpired removes sessions whose expiry is in the past.
func (dao *SessionDAO) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	logger := dao.Logger.With("query", "deleteExpired")

	query, args, err := dao.Builder.
		Delete("sessions").
		Where(squirrel.Lt{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	res, err := dao.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Warn("failed query execute", "error", err)

		return 0, err
	}

	count, _ := res.RowsAffected()

	logger.Debug("success query execute", "countDeleted", count)

	return count, nil
}
