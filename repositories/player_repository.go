package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Dosada05/academy-system/sensitive"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerInvalidValue = errors.New("player value rejected by database")
	ErrPlayerColumn       = errors.New("column is not part of the player schema")
	ErrAcademyNotFound    = errors.New("academy not found")
)

// PlayerRepository reads and writes raw player rows. Rows carry sensitive
// columns in their at-rest form; callers are responsible for encoding.
type PlayerRepository interface {
	Create(ctx context.Context, academyID int, row sensitive.Row) (sensitive.Row, error)
	GetByID(ctx context.Context, academyID, id int) (sensitive.Row, error)
	List(ctx context.Context, academyID, limit, offset int) ([]sensitive.Row, error)
	Count(ctx context.Context, academyID int) (int, error)
	Update(ctx context.Context, academyID, id int, row sensitive.Row) (sensitive.Row, error)
	Delete(ctx context.Context, academyID, id int) error
}

type postgresPlayerRepository struct {
	db         *sql.DB
	columns    []string
	selectList string
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	columns := sensitive.StorageColumns()
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	return &postgresPlayerRepository{
		db:         db,
		columns:    columns,
		selectList: strings.Join(quoted, ", "),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *postgresPlayerRepository) scanRow(s rowScanner) (sensitive.Row, error) {
	values := make([]any, len(r.columns))
	dest := make([]any, len(r.columns))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	row := make(sensitive.Row, len(r.columns))
	for i, c := range r.columns {
		row[c] = values[i]
	}
	return row, nil
}

// writableColumns returns the row's columns in a stable order, rejecting
// anything outside the player schema so that no caller-provided name ever
// reaches the SQL text unchecked.
func writableColumns(row sensitive.Row) ([]string, error) {
	cols := make([]string, 0, len(row))
	for c := range row {
		if !sensitive.IsKnownColumn(c) {
			return nil, fmt.Errorf("%w: %q", ErrPlayerColumn, c)
		}
		switch c {
		case "id", "academy_id", "created_at", "updated_at":
			return nil, fmt.Errorf("%w: %q is managed by the database", ErrPlayerColumn, c)
		}
		cols = append(cols, c)
	}
	slices.Sort(cols)
	return cols, nil
}

func (r *postgresPlayerRepository) Create(ctx context.Context, academyID int, row sensitive.Row) (sensitive.Row, error) {
	cols, err := writableColumns(row)
	if err != nil {
		return nil, err
	}

	names := []string{"academy_id"}
	placeholders := []string{"$1"}
	args := []any{academyID}
	for _, c := range cols {
		args = append(args, row[c])
		names = append(names, pq.QuoteIdentifier(c))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	query := fmt.Sprintf(`
		INSERT INTO players (%s)
		VALUES (%s)
		RETURNING %s`,
		strings.Join(names, ", "), strings.Join(placeholders, ", "), r.selectList)

	created, err := r.scanRow(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translatePlayerError(err)
	}
	return created, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, academyID, id int) (sensitive.Row, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM players
		WHERE id = $1 AND academy_id = $2`, r.selectList)

	row, err := r.scanRow(r.db.QueryRowContext(ctx, query, id, academyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player %d: %w", id, err)
	}
	return row, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context, academyID, limit, offset int) ([]sensitive.Row, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM players
		WHERE academy_id = $1
		ORDER BY id ASC
		LIMIT $2 OFFSET $3`, r.selectList)

	rows, err := r.db.QueryContext(ctx, query, academyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]sensitive.Row, 0, limit)
	for rows.Next() {
		row, scanErr := r.scanRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		players = append(players, row)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return players, nil
}

func (r *postgresPlayerRepository) Count(ctx context.Context, academyID int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players WHERE academy_id = $1`, academyID).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, academyID, id int, row sensitive.Row) (sensitive.Row, error) {
	cols, err := writableColumns(row)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return r.GetByID(ctx, academyID, id)
	}

	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+2)
	for _, c := range cols {
		args = append(args, row[c])
		sets = append(sets, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(c), len(args)))
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id, academyID)

	query := fmt.Sprintf(`
		UPDATE players SET %s
		WHERE id = $%d AND academy_id = $%d
		RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), r.selectList)

	updated, err := r.scanRow(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, translatePlayerError(err)
	}
	return updated, nil
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, academyID, id int) error {
	query := `DELETE FROM players WHERE id = $1 AND academy_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, academyID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func translatePlayerError(err error) error {
	pqErr, ok := asPQError(err)
	if !ok {
		return err
	}
	switch pqErr.Code {
	case pqForeignKeyViolation:
		return ErrAcademyNotFound
	case pqNotNullViolation, pqInvalidTextRepr, pqInvalidDatetimeFormat, pqDatetimeFieldOverflow, pqNumericOutOfRange:
		return fmt.Errorf("%w: %s", ErrPlayerInvalidValue, pqErr.Message)
	}
	return err
}
