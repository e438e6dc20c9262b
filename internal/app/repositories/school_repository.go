package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/schooldir/internal/app/models"
	"github.com/yigit/schooldir/internal/pkg/apperrors"
	"github.com/yigit/schooldir/internal/pkg/dberrors"
	"github.com/yigit/schooldir/internal/pkg/helpers"
	"github.com/yigit/schooldir/internal/pkg/logger"
)

// EmailConstraint is the unique constraint guarding schools.email_id.
const EmailConstraint = "schools_email_id_key"

var schoolColumns = []string{
	"id", "name", "address", "city", "state", "contact", "email_id", "image", "created_at",
}

// SchoolRepository handles school database operations
type SchoolRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSchoolRepository creates a new SchoolRepository
func NewSchoolRepository(db *pgxpool.Pool) *SchoolRepository {
	return &SchoolRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// filterCondition is shared by the page and count queries so both always
// describe the same set of rows.
func filterCondition(f models.SchoolFilter) squirrel.And {
	where := squirrel.And{}
	if f.Search != "" {
		like := helpers.ContainsPattern(f.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"name": like},
			squirrel.ILike{"city": like},
			squirrel.ILike{"address": like},
		})
	}
	if f.City != "" {
		where = append(where, squirrel.Eq{"city": f.City})
	}
	return where
}

func orderBy(sort models.SchoolSort) []string {
	switch sort {
	case models.SortFeesLow:
		return []string{"name ASC", "id DESC"}
	case models.SortFeesHigh:
		return []string{"name DESC", "id DESC"}
	default:
		return []string{"id DESC"}
	}
}

// List returns one page of schools matching the filter and the total number
// of matching rows. Both queries run in one read-only snapshot.
func (r *SchoolRepository) List(ctx context.Context, f models.SchoolFilter) ([]models.School, int64, error) {
	where := filterCondition(f)
	offset, limit := helpers.CalculateOffsetLimit(f.Page, f.Limit)

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("schools").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count schools query: %w", err)
	}

	pageSQL, pageArgs, err := r.sb.Select(schoolColumns...).
		From("schools").
		Where(where).
		OrderBy(orderBy(f.Sort)...).
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list schools query: %w", err)
	}

	var (
		total   int64
		schools []models.School
	)
	txOpts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err = pgx.BeginTxFunc(ctx, r.db, txOpts, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count schools: %w", err)
		}
		if total == 0 {
			return nil
		}

		rows, err := tx.Query(ctx, pageSQL, pageArgs...)
		if err != nil {
			return fmt.Errorf("failed to query schools: %w", err)
		}
		schools, err = pgx.CollectRows(rows, pgx.RowToStructByName[models.School])
		if err != nil {
			return fmt.Errorf("failed to scan school rows: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("Error listing schools")
		return nil, 0, err
	}

	if schools == nil {
		schools = []models.School{}
	}
	return schools, total, nil
}

// ExistsByEmail reports whether a school already uses the email.
func (r *SchoolRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schools WHERE email_id = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check school email: %w", err)
	}
	return exists, nil
}

// Create inserts the school and sets its ID and CreatedAt. A concurrent insert
// with the same email is reported as apperrors.ErrEmailAlreadyExists by the
// unique constraint, not by a prior lookup.
func (r *SchoolRepository) Create(ctx context.Context, school *models.School) error {
	query, args, err := r.sb.Insert("schools").
		Columns("name", "address", "city", "state", "contact", "email_id", "image").
		Values(school.Name, school.Address, school.City, school.State, school.Contact, school.EmailID, school.Image).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert school query: %w", err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&school.ID, &school.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, EmailConstraint) {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to insert school: %w", err)
	}
	return nil
}

// Count returns the number of stored schools.
func (r *SchoolRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM schools`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count schools: %w", err)
	}
	return n, nil
}

// ImagePaths returns every image path referenced by a row.
func (r *SchoolRepository) ImagePaths(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT image FROM schools`)
	if err != nil {
		return nil, fmt.Errorf("failed to query school images: %w", err)
	}
	paths, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan school images: %w", err)
	}
	return paths, nil
}
