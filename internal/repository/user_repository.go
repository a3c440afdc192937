package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"stockify/internal/models"
)

type UserRepo struct {
	db DBTX
}

const userColumns = `id, name, email, mobile, password_hash, role, active_status, banned_user,
	brand_id, avatar_key, avatar_url, device_count, last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Mobile,
		&user.PasswordHash,
		&user.Role,
		&user.ActiveStatus,
		&user.Banned,
		&user.BrandID,
		&user.AvatarKey,
		&user.AvatarURL,
		&user.DeviceCount,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	const query = `
		INSERT INTO users (name, email, mobile, password_hash, role, active_status, banned_user, avatar_key, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.Mobile,
		user.PasswordHash,
		user.Role,
		user.ActiveStatus,
		user.AvatarKey,
		user.AvatarURL,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if constraint, ok := uniqueConstraint(err); ok {
		if constraint == "users_mobile_key" {
			return ErrDuplicateMobile
		}
		return ErrDuplicateEmail
	}
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepo) LockByID(ctx context.Context, id int64) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepo) FindByEmailOrMobile(ctx context.Context, value string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR mobile = $1 ORDER BY id LIMIT 1`
	return scanUser(r.db.QueryRow(ctx, query, value))
}

func (r *UserRepo) ConflictingField(ctx context.Context, email, mobile string, excludeID int64) (string, error) {
	const query = `
		SELECT email = $1, mobile = $2
		FROM users
		WHERE (email = $1 OR mobile = $2) AND id <> $3
		LIMIT 1
	`

	var emailTaken, mobileTaken bool
	err := r.db.QueryRow(ctx, query, email, mobile, excludeID).Scan(&emailTaken, &mobileTaken)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if emailTaken {
		return "email", nil
	}
	return "mobile", nil
}

func (r *UserRepo) Update(ctx context.Context, id int64, patch models.UserPatch) (models.User, error) {
	var b updateBuilder
	if patch.Name != nil {
		b.set("name", *patch.Name)
	}
	if patch.Mobile != nil {
		b.set("mobile", *patch.Mobile)
	}
	if patch.AvatarKey != nil {
		b.set("avatar_key", *patch.AvatarKey)
	}
	if patch.AvatarURL != nil {
		b.set("avatar_url", *patch.AvatarURL)
	}
	if b.empty() {
		return r.GetByID(ctx, id)
	}
	b.setRaw("updated_at = NOW()")

	query, args := b.build("users", "id = {1}", id)
	user, err := scanUser(r.db.QueryRow(ctx, query+" RETURNING "+userColumns, args...))
	if _, ok := uniqueConstraint(err); ok {
		return models.User{}, ErrDuplicateMobile
	}
	return user, err
}

func (r *UserRepo) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) SetActiveStatus(ctx context.Context, id int64, status models.ActiveStatus) error {
	return r.exec(ctx, `UPDATE users SET active_status = $2, updated_at = NOW() WHERE id = $1`, id, status)
}

func (r *UserRepo) SetBanned(ctx context.Context, id int64, banned bool) error {
	return r.exec(ctx, `UPDATE users SET banned_user = $2, updated_at = NOW() WHERE id = $1`, id, banned)
}

func (r *UserRepo) SetBrand(ctx context.Context, id int64, brandID int64) error {
	err := r.exec(ctx, `UPDATE users SET brand_id = $2, updated_at = NOW() WHERE id = $1`, id, brandID)
	if _, ok := uniqueConstraint(err); ok {
		return ErrBrandExists
	}
	return err
}

func (r *UserRepo) SetDeviceCount(ctx context.Context, id int64, count int) error {
	return r.exec(ctx, `UPDATE users SET device_count = $2 WHERE id = $1`, id, count)
}

func (r *UserRepo) MarkLogin(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
}

func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]models.User, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY id DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]models.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}
