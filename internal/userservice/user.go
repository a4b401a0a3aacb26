package userservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sushihentaime/blogauth/internal/common"
)

var (
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrUserNotFound   = errors.New("user not found")
)

func newUserModel(db *sql.DB) *DBModel {
	return &DBModel{db: db}
}

func (m *DBModel) insertUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (name, email, password, phone_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	args := []any{
		u.Name,
		u.Email,
		u.Password.hash,
		u.PhoneNumber,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		switch {
		case common.UniqueViolation(err, "users_email_key"):
			return ErrDuplicateEmail
		default:
			return err
		}
	}

	return nil
}

func (m *DBModel) getUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, password, phone_number, created_at, updated_at
		FROM users
		WHERE email = $1`

	return m.scanUser(m.db.QueryRowContext(ctx, query, email))
}

func (m *DBModel) getUserByID(ctx context.Context, id int) (*User, error) {
	query := `
		SELECT id, name, email, password, phone_number, created_at, updated_at
		FROM users
		WHERE id = $1`

	return m.scanUser(m.db.QueryRowContext(ctx, query, id))
}

func (m *DBModel) scanUser(row *sql.Row) (*User, error) {
	var u User

	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password.hash, &u.PhoneNumber, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrUserNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}
