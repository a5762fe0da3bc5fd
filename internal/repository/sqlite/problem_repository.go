package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
	"github.com/vytor/codedrill/internal/repository"
)

var problemColumns = []string{
	"id", "slug", "title", "difficulty", "category", "tags", "description", "initial_code",
	"examples", "constraints", "test_cases", "total_submissions", "accepted_submissions",
	"schema_version", "created_at", "updated_at",
}

type problemRepository struct {
	db *sql.DB
}

// NewProblemRepository creates a new ProblemRepository implementation
func NewProblemRepository(db *sql.DB) repository.ProblemRepository {
	return &problemRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProblem(row rowScanner) (*models.Problem, error) {
	var p models.Problem
	var difficulty, tags, examples, constraints, testCases string
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &difficulty, &p.Category, &tags, &p.Description, &p.InitialCode,
		&examples, &constraints, &testCases, &p.TotalSubmissions, &p.AcceptedSubmissions,
		&p.SchemaVersion, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Difficulty = models.Difficulty(difficulty)
	if err := scanJSONColumn(tags, &p.Tags); err != nil {
		return nil, fmt.Errorf("problem %d tags: %w", p.ID, err)
	}
	if err := scanJSONColumn(examples, &p.Examples); err != nil {
		return nil, fmt.Errorf("problem %d examples: %w", p.ID, err)
	}
	if err := scanJSONColumn(constraints, &p.Constraints); err != nil {
		return nil, fmt.Errorf("problem %d constraints: %w", p.ID, err)
	}
	if err := scanJSONColumn(testCases, &p.TestCases); err != nil {
		return nil, fmt.Errorf("problem %d test cases: %w", p.ID, err)
	}
	return &p, nil
}

type problemValues struct {
	tags, examples, constraints, testCases string
}

func encodeProblem(p models.Problem) (problemValues, error) {
	var v problemValues
	var err error
	if v.tags, err = jsonColumn(p.Tags); err != nil {
		return v, err
	}
	if v.examples, err = jsonColumn(p.Examples); err != nil {
		return v, err
	}
	if v.constraints, err = jsonColumn(p.Constraints); err != nil {
		return v, err
	}
	if v.testCases, err = jsonColumn(p.TestCases); err != nil {
		return v, err
	}
	return v, nil
}

func applyProblemFilter(query squirrel.SelectBuilder, filter models.ProblemFilter) squirrel.SelectBuilder {
	if len(filter.IDs) > 0 {
		query = query.Where(squirrel.Eq{"id": filter.IDs})
	}
	if filter.Category != "" && filter.Category != models.CategoryAll && filter.Category != models.CategoryAllAlias {
		query = query.Where(squirrel.Eq{"category": filter.Category})
	}
	if len(filter.Difficulties) > 0 {
		diffs := make([]string, 0, len(filter.Difficulties))
		for _, d := range filter.Difficulties {
			diffs = append(diffs, string(d))
		}
		query = query.Where(squirrel.Eq{"difficulty": diffs})
	}
	return query
}

func (r *problemRepository) Get(ctx context.Context, id int64) (*models.Problem, error) {
	log := logger.FromContext(ctx).WithPrefix("problem_repo")
	log.Debug("getting problem: id=%d", id)

	query, args, err := sqlBuilder.Select(problemColumns...).From("problems").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	p, err := scanProblem(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("problem not found: id=%d", id)
		} else {
			log.Error("failed to get problem: %v", err)
		}
		return nil, err
	}
	log.Debug("problem found: title=%s", p.Title)
	return p, nil
}

func (r *problemRepository) List(ctx context.Context, filter models.ProblemFilter) ([]models.Problem, error) {
	log := logger.FromContext(ctx).WithPrefix("problem_repo")
	log.Debug("listing problems with filter: ids=%v, category=%s, difficulties=%v", filter.IDs, filter.Category, filter.Difficulties)

	query, args, err := applyProblemFilter(sqlBuilder.Select(problemColumns...).From("problems"), filter).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list problems: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.Problem
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			log.Error("failed to scan problem row: %v", err)
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	log.Debug("listed %d problems", len(out))
	return out, nil
}

func (r *problemRepository) Count(ctx context.Context, filter models.ProblemFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("problem_repo")

	query, args, err := applyProblemFilter(sqlBuilder.Select("COUNT(*)").From("problems"), filter).ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Error("failed to count problems: %v", err)
		return 0, err
	}
	return count, nil
}

// Insert stores problem under a fresh id when problem.ID is zero.
func (r *problemRepository) Insert(ctx context.Context, problem models.Problem) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("problem_repo")
	log.Debug("inserting problem: title=%s", problem.Title)

	v, err := encodeProblem(problem)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()

	columns := problemColumns[1:]
	values := []any{problem.Slug, problem.Title, string(problem.Difficulty), problem.Category, v.tags,
		problem.Description, problem.InitialCode, v.examples, v.constraints, v.testCases,
		problem.TotalSubmissions, problem.AcceptedSubmissions, models.SchemaVersion, now, now}
	if problem.ID != 0 {
		columns = problemColumns
		values = append([]any{problem.ID}, values...)
	}

	query, args, err := sqlBuilder.Insert("problems").Columns(columns...).Values(values...).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to insert problem: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	log.Debug("problem inserted: id=%d", id)
	return id, nil
}

func upsertProblem(ctx context.Context, exec interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, p models.Problem, now time.Time) error {
	v, err := encodeProblem(p)
	if err != nil {
		return err
	}
	query, args, err := sqlBuilder.Insert("problems").
		Columns(problemColumns...).
		Values(p.ID, p.Slug, p.Title, string(p.Difficulty), p.Category, v.tags, p.Description, p.InitialCode,
			v.examples, v.constraints, v.testCases, p.TotalSubmissions, p.AcceptedSubmissions,
			models.SchemaVersion, now, now).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
	slug = excluded.slug,
	title = excluded.title,
	difficulty = excluded.difficulty,
	category = excluded.category,
	tags = excluded.tags,
	description = excluded.description,
	initial_code = excluded.initial_code,
	examples = excluded.examples,
	constraints = excluded.constraints,
	test_cases = excluded.test_cases,
	total_submissions = excluded.total_submissions,
	accepted_submissions = excluded.accepted_submissions,
	schema_version = excluded.schema_version,
	updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return err
	}
	_, err = exec.ExecContext(ctx, query, args...)
	return err
}

func (r *problemRepository) Upsert(ctx context.Context, problem models.Problem) error {
	log := logger.FromContext(ctx).WithPrefix("problem_repo")
	log.Debug("upserting problem: id=%d", problem.ID)

	if err := upsertProblem(ctx, r.db, problem, time.Now().UTC()); err != nil {
		log.Error("failed to upsert problem: %v", err)
		return err
	}
	return nil
}

func (r *problemRepository) ReplaceAll(ctx context.Context, problems []models.Problem) error {
	log := logger.FromContext(ctx).WithPrefix("problem_repo")
	log.Info("replacing catalog: count=%d", len(problems))

	now := time.Now().UTC()
	ids := make([]int64, 0, len(problems))
	return tx(ctx, r.db, func(tx *sql.Tx) error {
		for _, p := range problems {
			if err := upsertProblem(ctx, tx, p, now); err != nil {
				log.Error("failed to upsert problem %d: %v", p.ID, err)
				return err
			}
			ids = append(ids, p.ID)
		}

		del := sqlBuilder.Delete("problems")
		if len(ids) > 0 {
			del = del.Where(squirrel.NotEq{"id": ids})
		}
		query, args, err := del.ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			log.Error("failed to prune stale problems: %v", err)
			return err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			log.Info("pruned %d problems no longer in catalog", n)
		}
		return nil
	})
}
