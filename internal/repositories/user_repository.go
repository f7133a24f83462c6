package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "bookmybus/internal/config"
	intdb "bookmybus/internal/db"
	"bookmybus/internal/domain"
	"bookmybus/internal/domain/models"
)

const userColumns = `id, name, email, phone, password_hash, role, is_verified, created_at`

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &role, &u.IsVerified, &u.CreatedAt); err != nil {
		return models.User{}, err
	}
	u.Role = domain.Role(role)
	return u, nil
}

func (r UserRepository) Create(ctx context.Context, u models.User) (models.User, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO users (name, email, phone, password_hash, role, is_verified, created_at)
		VALUES (?,?,?,?,?,?,?)
	`, u.Name, strings.ToLower(u.Email), u.Phone, u.PasswordHash, string(u.Role), u.IsVerified, u.CreatedAt)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return models.User{}, domain.ConflictError{Resource: "user", Msg: "User already exists", Err: err}
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("insert user id: %w", err)
	}
	u.ID = id
	u.Email = strings.ToLower(u.Email)
	return u, nil
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=? LIMIT 1`, id)
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email=? LIMIT 1`, strings.ToLower(strings.TrimSpace(email)))
}

func (r UserRepository) getOne(ctx context.Context, query string, arg any) (models.User, error) {
	u, err := scanUser(r.db().QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "User", Err: err}
		}
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// List returns all users, newest first.
func (r UserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r UserRepository) UpdateProfile(ctx context.Context, id int64, name, phone *string) (models.User, error) {
	sets := []string{}
	args := []any{}
	if name != nil {
		sets = append(sets, "name=?")
		args = append(args, *name)
	}
	if phone != nil {
		sets = append(sets, "phone=?")
		args = append(args, *phone)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if err := r.exec(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id=?`, args...); err != nil {
			return models.User{}, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r UserRepository) UpdateRole(ctx context.Context, id int64, role domain.Role) (models.User, error) {
	if err := r.exec(ctx, `UPDATE users SET role=? WHERE id=?`, string(role), id); err != nil {
		return models.User{}, err
	}
	return r.GetByID(ctx, id)
}

func (r UserRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, `DELETE FROM users WHERE id=?`, id)
}

func (r UserRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db().ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update users: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFoundError{Resource: "User"}
	}
	return nil
}

func (r UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
