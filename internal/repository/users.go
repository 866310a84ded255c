package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/domain"
)

const userColumns = `id, username, password_hash, full_name, email, phone, role, is_active, created_at, version`

func scanUser(row interface{ Scan(dest ...any) error }) (*domain.User, error) {
	user := &domain.User{}
	dst := []any{
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.FullName,
		&user.Email,
		&user.Phone,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanUser(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanUser(r.dbpool.QueryRowContext(ctx, query, username))
}

func (r *Repository) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO users (username, password_hash, full_name, email, phone, role, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, version
	`

	user.IsActive = true
	user.CreatedAt = time.Now().UTC()

	args := []any{user.Username, user.PasswordHash, user.FullName, user.Email, user.Phone, user.Role, user.IsActive, user.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.Version); err != nil {
		if uniqueViolation(err, usersUsernameConstraint, "users.username") {
			return ErrDuplicateUsername
		}
		return err
	}

	return nil
}

func (r *Repository) UpdateUser(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET
			password_hash = $1,
			email = $2,
			phone = $3,
			role = $4,
			is_active = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{user.PasswordHash, user.Email, user.Phone, user.Role, user.IsActive, user.ID, user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.Version); err != nil {
		return err
	}

	return nil
}

// IsAdministrator 用户不存在时视为没有管理员权限
func (r *Repository) IsAdministrator(ctx context.Context, userID int64) (bool, error) {
	user, err := r.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	return user.IsActive && user.IsAdministrator(), nil
}

// ResolveOwners 批量查询用户，返回 id -> 用户，不存在的 id 不会出现在结果中
func (r *Repository) ResolveOwners(ctx context.Context, ids []int64) (map[int64]*domain.User, error) {
	owners := make(map[int64]*domain.User, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id IN (` + placeholders(1, len(ids)) + `)`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		owners[user.ID] = user
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return owners, nil
}

// SearchUserIDs 按姓名或手机号模糊搜索
func (r *Repository) SearchUserIDs(ctx context.Context, keyword string) ([]int64, error) {
	query := `
		SELECT id FROM users
		WHERE LOWER(full_name) LIKE $1 ESCAPE '\' OR phone LIKE $1 ESCAPE '\'
		ORDER BY id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(keyword))) + "%"
	rows, err := r.dbpool.QueryContext(ctx, query, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike 使关键字中的 %、_ 和反斜杠按字面匹配
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
