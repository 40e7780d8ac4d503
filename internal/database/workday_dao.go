package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/control-horario/jornada-tracker/internal/model"
)

type WorkdayDAO struct {
	Logger *slog.Logger
	*DB
}

func NewWorkdayDAO(logger *slog.Logger, db *DB) *WorkdayDAO {
	return &WorkdayDAO{
		Logger: logger.With("dao", "workday"),
		DB:     db,
	}
}

type InsertWorkdayDTO struct {
	User  model.ID
	Start time.Time
}

func (dao *WorkdayDAO) Insert(ctx context.Context, dto InsertWorkdayDTO) (model.ID, error) {
	logger := dao.Logger.With("query", "insert")

	query, args, err := dao.Builder.
		Insert("jornadas").
		Columns("user_id", "fecha_inicio", "estado").
		Values(dto.User, dto.Start, model.StatusActive).
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
			return 0, model.NewError("workday", model.ErrWorkdayActive)
		}
		if IsUndefinedTable(err) {
			return 0, model.NewError("workday", model.ErrSchemaMissing)
		}

		return 0, err
	}

	logger.Debug("success query execute", "insertId", id)

	return id, nil
}

func (dao *WorkdayDAO) Get(ctx context.Context, id model.ID) (model.Workday, error) {
	logger := dao.Logger.With("query", "get")

	query, args, err := dao.Builder.
		Select("*").
		From("jornadas").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Workday{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var workday model.Workday
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&workday); err != nil {
		logger.Warn("failed query execute", "error", err)

		if IsNoRows(err) {
			return model.Workday{}, model.NewError("workday", model.ErrNotFound)
		}

		return model.Workday{}, err
	}

	return workday, nil
}

// FindOpen returns the most recent workday of the user that has no end
// time. A miss is reported as model.ErrNotFound.
func (dao *WorkdayDAO) FindOpen(ctx context.Context, user model.ID) (model.Workday, error) {
	logger := dao.Logger.With("query", "findOpen")

	query, args, err := dao.Builder.
		Select("*").
		From("jornadas").
		Where(squirrel.Eq{"user_id": user}).
		Where("fecha_fin IS NULL").
		OrderBy("fecha_inicio DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return model.Workday{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var workday model.Workday
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&workday); err != nil {
		if IsNoRows(err) {
			return model.Workday{}, model.NewError("workday", model.ErrNotFound)
		}
		if IsUndefinedTable(err) {
			return model.Workday{}, model.NewError("workday", model.ErrSchemaMissing)
		}

		logger.Warn("failed query execute", "error", err)

		return model.Workday{}, err
	}

	return workday, nil
}

type UpdateWorkdayDTO struct {
	End    *time.Time
	Status *string
}

func (dao *WorkdayDAO) Update(ctx context.Context, id model.ID, dto UpdateWorkdayDTO) error {
	logger := dao.Logger.With("query", "update")

	data := make(map[string]any, 3)
	data["updated_at"] = time.Now()
	if dto.End != nil {
		data["fecha_fin"] = *dto.End
	}
	if dto.Status != nil {
		data["estado"] = *dto.Status
	}

	query, args, err := dao.Builder.
		Update("jornadas").
		SetMap(data).
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

	logger.Debug("success query execute", "updateId", id, "countUpdatedFields", len(data))

	return nil
}

// List returns the user's workdays newest first.
func (dao *WorkdayDAO) List(ctx context.Context, user model.ID, limit int) ([]model.Workday, error) {
	logger := dao.Logger.With("query", "list")

	query, args, err := dao.Builder.
		Select("*").
		From("jornadas").
		Where(squirrel.Eq{"user_id": user}).
		OrderBy("fecha_inicio DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return []model.Workday{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	workdays := make([]model.Workday, 0, limit)
	if err := dao.SelectContext(ctx, &workdays, query, args...); err != nil {
		if IsUndefinedTable(err) {
			return []model.Workday{}, model.NewError("workday", model.ErrSchemaMissing)
		}

		logger.Warn("failed query execute", "error", err)

		return []model.Workday{}, err
	}

	logger.Debug("success query execute", "countWorkdays", len(workdays))

	return workdays, nil
}

// ListInRange returns workdays whose start time falls inside [from, to],
// oldest last, optionally restricted to completed ones.
func (dao *WorkdayDAO) ListInRange(ctx context.Context, user model.ID, from, to time.Time, onlyCompleted bool) ([]model.Workday, error) {
	logger := dao.Logger.With("query", "listInRange")

	builder := dao.Builder.
		Select("*").
		From("jornadas").
		Where(squirrel.Eq{"user_id": user}).
		Where(squirrel.GtOrEq{"fecha_inicio": from}).
		Where(squirrel.LtOrEq{"fecha_inicio": to}).
		OrderBy("fecha_inicio DESC")

	if onlyCompleted {
		builder = builder.Where("fecha_fin IS NOT NULL")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return []model.Workday{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	workdays := []model.Workday{}
	if err := dao.SelectContext(ctx, &workdays, query, args...); err != nil {
		if IsUndefinedTable(err) {
			return []model.Workday{}, model.NewError("workday", model.ErrSchemaMissing)
		}

		logger.Warn("failed query execute", "error", err)

		return []model.Workday{}, err
	}

	logger.Debug("success query execute", "countWorkdays", len(workdays))

	return workdays, nil
}
