package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/control-horario/jornada-tracker/internal/model"
)

type PauseDAO struct {
	Logger *slog.Logger
	*DB
}

func NewPauseDAO(logger *slog.Logger, db *DB) *PauseDAO {
	return &PauseDAO{
		Logger: logger.With("dao", "pause"),
		DB:     db,
	}
}

type InsertPauseDTO struct {
	Workday model.ID
	Start   time.Time
}

func (dao *PauseDAO) Insert(ctx context.Context, dto InsertPauseDTO) (model.ID, error) {
	logger := dao.Logger.With("query", "insert")

	query, args, err := dao.Builder.
		Insert("pausas").
		Columns("jornada_id", "inicio").
		Values(dto.Workday, dto.Start).
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
			return 0, model.NewError("pause", model.ErrExists)
		}
		if IsUndefinedTable(err) {
			return 0, model.NewError("pause", model.ErrSchemaMissing)
		}

		return 0, err
	}

	logger.Debug("success query execute", "insertId", id)

	return id, nil
}

func (dao *PauseDAO) Get(ctx context.Context, id model.ID) (model.Pause, error) {
	logger := dao.Logger.With("query", "get")

	query, args, err := dao.Builder.
		Select("*").
		From("pausas").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Pause{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var pause model.Pause
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&pause); err != nil {
		logger.Warn("failed query execute", "error", err)

		if IsNoRows(err) {
			return model.Pause{}, model.NewError("pause", model.ErrNotFound)
		}

		return model.Pause{}, err
	}

	return pause, nil
}

// FindOpen returns the workday's pause that has no end time, if any.
// A miss is reported as model.ErrNotFound.
func (dao *PauseDAO) FindOpen(ctx context.Context, workday model.ID) (model.Pause, error) {
	logger := dao.Logger.With("query", "findOpen")

	query, args, err := dao.Builder.
		Select("*").
		From("pausas").
		Where(squirrel.Eq{"jornada_id": workday}).
		Where("fin IS NULL").
		Limit(1).
		ToSql()
	if err != nil {
		return model.Pause{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var pause model.Pause
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&pause); err != nil {
		if IsNoRows(err) {
			return model.Pause{}, model.NewError("pause", model.ErrNotFound)
		}
		if IsUndefinedTable(err) {
			return model.Pause{}, model.NewError("pause", model.ErrSchemaMissing)
		}

		logger.Warn("failed query execute", "error", err)

		return model.Pause{}, err
	}

	return pause, nil
}

type UpdatePauseDTO struct {
	End time.Time
}

func (dao *PauseDAO) Update(ctx context.Context, id model.ID, dto UpdatePauseDTO) error {
	logger := dao.Logger.With("query", "update")

	query, args, err := dao.Builder.
		Update("pausas").
		SetMap(map[string]any{
			"fin":        dto.End,
			"updated_at": time.Now(),
		}).
		Where(squirrel.Eq{"id": id}).
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

// ListByWorkday returns all pauses of a workday, oldest first.
func (dao *PauseDAO) ListByWorkday(ctx context.Context, workday model.ID) ([]model.Pause, error) {
	logger := dao.Logger.With("query", "listByWorkday")

	query, args, err := dao.Builder.
		Select("*").
		From("pausas").
		Where(squirrel.Eq{"jornada_id": workday}).
		OrderBy("inicio ASC").
		ToSql()
	if err != nil {
		return []model.Pause{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	pauses := []model.Pause{}
	if err := dao.SelectContext(ctx, &pauses, query, args...); err != nil {
		if IsUndefinedTable(err) {
			return []model.Pause{}, model.NewError("pause", model.ErrSchemaMissing)
		}

		logger.Warn("failed query execute", "error", err)

		return []model.Pause{}, err
	}

	return pauses, nil
}
