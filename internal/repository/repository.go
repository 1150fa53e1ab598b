package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Dan9191/payplan-service/internal/models"
	"github.com/lib/pq"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO payplan.users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM payplan.users
		WHERE email = $1`
	err := r.db.QueryRow(query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// SavePaydays replaces the user's stored payday dates
func (r *Repository) SavePaydays(userID int64, dates []string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM payplan.paydays WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear paydays: %w", err)
	}
	query := `
		INSERT INTO payplan.paydays (user_id, payday_date)
		SELECT $1, unnest($2::date[])`
	if _, err := tx.Exec(query, userID, pq.Array(dates)); err != nil {
		return fmt.Errorf("failed to store paydays: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit paydays: %w", err)
	}
	return nil
}

// FindPaydays retrieves the user's stored payday dates, ascending
func (r *Repository) FindPaydays(userID int64) ([]string, error) {
	query := `
		SELECT to_char(payday_date, 'YYYY-MM-DD')
		FROM payplan.paydays
		WHERE user_id = $1
		ORDER BY payday_date`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load paydays: %w", err)
	}
	defer rows.Close()

	dates := make([]string, 0)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan payday: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read paydays: %w", err)
	}
	return dates, nil
}

// SavePlanConfig upserts the user's saved plan request
func (r *Repository) SavePlanConfig(userID int64, cfg *models.PlanRequest) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal plan config: %w", err)
	}
	query := `
		INSERT INTO payplan.plan_configs (user_id, config, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET config = $2, updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.Exec(query, userID, raw); err != nil {
		return fmt.Errorf("failed to save plan config: %w", err)
	}
	return nil
}

// ListPlanConfigs retrieves every saved plan config with its owner
func (r *Repository) ListPlanConfigs() ([]models.StoredPlanConfig, error) {
	query := `
		SELECT c.user_id, u.username, u.email, c.config
		FROM payplan.plan_configs c
		JOIN payplan.users u ON u.id = c.user_id
		ORDER BY c.user_id`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan configs: %w", err)
	}
	defer rows.Close()

	configs := make([]models.StoredPlanConfig, 0)
	for rows.Next() {
		var stored models.StoredPlanConfig
		var raw []byte
		if err := rows.Scan(&stored.UserID, &stored.Username, &stored.Email, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan plan config: %w", err)
		}
		if err := json.Unmarshal(raw, &stored.Config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan config for user %d: %w", stored.UserID, err)
		}
		configs = append(configs, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read plan configs: %w", err)
	}
	return configs, nil
}
