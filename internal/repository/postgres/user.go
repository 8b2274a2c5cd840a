package postgres

import (
	"context"
	"fmt"

	"github.com/tduarte/shorts-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db querier
}

func NewUserRepository(db querier) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) Insert(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (user_id, pwd, email, display_name)
			  VALUES ($1, $2, $3, $4)
			  RETURNING user_id, pwd, email, display_name`

	var saved model.User
	err := r.db.QueryRow(ctx, query,
		user.ID, user.Password, user.Email, user.DisplayName,
	).Scan(&saved.ID, &saved.Password, &saved.Email, &saved.DisplayName)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return model.User{}, mapped
		}
		return model.User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) GetOne(ctx context.Context, id string) (model.User, error) {
	var user model.User
	query := `SELECT user_id, pwd, email, display_name FROM users WHERE user_id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Password, &user.Email, &user.DisplayName,
	)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return model.User{}, mapped
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) UpdateOne(ctx context.Context, user model.User) (model.User, error) {
	query := `UPDATE users SET pwd = $2, email = $3, display_name = $4
			  WHERE user_id = $1
			  RETURNING user_id, pwd, email, display_name`

	var saved model.User
	err := r.db.QueryRow(ctx, query,
		user.ID, user.Password, user.Email, user.DisplayName,
	).Scan(&saved.ID, &saved.Password, &saved.Email, &saved.DisplayName)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return model.User{}, mapped
		}
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) DeleteOne(ctx context.Context, id string) error {
	// Deleting an absent user is a no-op so cascade retries stay idempotent.
	const query = `DELETE FROM users WHERE user_id = $1`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (r *UserRepository) Search(ctx context.Context, pattern string) ([]model.User, error) {
	query := `SELECT user_id, pwd, email, display_name FROM users
			  WHERE UPPER(user_id) LIKE '%' || UPPER($1) || '%'
			  ORDER BY user_id`

	rows, err := r.db.Query(ctx, query, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var user model.User
		if err := rows.Scan(&user.ID, &user.Password, &user.Email, &user.DisplayName); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}
