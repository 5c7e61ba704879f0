package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/addressbook/internal/common"
	"github.com/dmitrijs2005/addressbook/internal/dbx"
	"github.com/dmitrijs2005/addressbook/internal/server/models"
)

const contactColumns = `id, user_id, first_name, last_name, email, phone, birthday, notes, created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*models.Contact, error) {
	c := &models.Contact{}
	err := row.Scan(&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Email,
		&c.Phone, &c.Birthday, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	query :=
		`INSERT INTO contacts (user_id, first_name, last_name, email, phone, birthday, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING ` + contactColumns

	created, err := scanContact(r.db.QueryRowContext(ctx, query,
		c.UserID, c.FirstName, c.LastName, c.Email, c.Phone, c.Birthday, c.Notes))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string, id int64) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts
		 WHERE id = $1 AND user_id = $2
		 `
	return scanContact(r.db.QueryRowContext(ctx, query, id, userID))
}

func (r *PostgresRepository) Update(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	query :=
		`UPDATE contacts
		 SET first_name = $3, last_name = $4, email = $5, phone = $6, birthday = $7, notes = $8, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + contactColumns

	updated, err := scanContact(r.db.QueryRowContext(ctx, query,
		c.ID, c.UserID, c.FirstName, c.LastName, c.Email, c.Phone, c.Birthday, c.Notes))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, err
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string, id int64) error {
	query := `DELETE FROM contacts
		 WHERE id = $1 AND user_id = $2
		 `
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string, filter models.ContactFilter) ([]*models.Contact, error) {
	query, args := buildListQuery(userID, filter)
	return r.query(ctx, query, args...)
}

func (r *PostgresRepository) ListAll(ctx context.Context, userID string) ([]*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts
		 WHERE user_id = $1
		 ORDER BY id
		 `
	return r.query(ctx, query, userID)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Contact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// buildListQuery assembles the filtered listing. Filter values are bound as
// parameters; only the placeholder numbers are formatted into the SQL.
func buildListQuery(userID string, filter models.ContactFilter) (string, []any) {
	var sb strings.Builder
	args := []any{userID}

	sb.WriteString(`SELECT ` + contactColumns + ` FROM contacts WHERE user_id = $1`)

	like := func(column, value string) {
		args = append(args, "%"+escapeLike(value)+"%")
		fmt.Fprintf(&sb, ` AND %s ILIKE $%d`, column, len(args))
	}

	if filter.FirstName != "" {
		like("first_name", filter.FirstName)
	}
	if filter.LastName != "" {
		like("last_name", filter.LastName)
	}
	if filter.Email != "" {
		like("email", filter.Email)
	}
	if filter.Name != "" {
		args = append(args, "%"+escapeLike(filter.Name)+"%")
		n := len(args)
		fmt.Fprintf(&sb, ` AND (first_name ILIKE $%d OR last_name ILIKE $%d)`, n, n)
	}

	args = append(args, filter.Limit, filter.Offset)
	fmt.Fprintf(&sb, ` ORDER BY id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	return sb.String(), args
}

// escapeLike makes user input match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
