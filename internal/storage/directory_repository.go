package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tipbase-server/internal/models"
)

// DirectoryRepository handles the user-management directory rows
type DirectoryRepository struct {
	db *PostgresDB
}

// NewDirectoryRepository creates a new directory repository
func NewDirectoryRepository(db *PostgresDB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// DirectoryPage is one server-side page of directory rows
type DirectoryPage struct {
	Users     []*models.DirectoryUser `json:"users"`
	PageIndex int                     `json:"pageIndex"`
	PageSize  int                     `json:"pageSize"`
	TotalRows int64                   `json:"totalRows"`
	TotalPages int                    `json:"totalPages"`
}

// Create inserts a directory row, assigning an id when missing
func (r *DirectoryRepository) Create(ctx context.Context, user *models.DirectoryUser) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.JoinedDate.IsZero() {
		user.JoinedDate = time.Now()
	}

	query := `
		INSERT INTO directory_users (id, name, email, role, status, joined_date, two_factor_auth, login_type, avatar)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Role,
		user.Status,
		user.JoinedDate,
		user.TwoFactorAuth,
		user.LoginType,
		user.Avatar,
	)
	if err != nil {
		return fmt.Errorf("failed to create directory user: %w", err)
	}

	return nil
}

// Search returns one page of rows, optionally filtered by a case-insensitive
// substring match on name or email. This is the caller side of the grid's
// server pagination mode.
func (r *DirectoryRepository) Search(ctx context.Context, search string, pageIndex, pageSize int) (*DirectoryPage, error) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	if pageIndex < 0 {
		pageIndex = 0
	}

	where := ""
	args := []interface{}{}
	if q := strings.TrimSpace(search); q != "" {
		where = "WHERE name ILIKE $1 OR email ILIKE $1"
		args = append(args, "%"+q+"%")
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM directory_users %s", where)
	if err := r.db.Pool().QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count directory users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, email, role, status, joined_date, two_factor_auth, login_type, avatar
		FROM directory_users
		%s
		ORDER BY joined_date DESC, id
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, pageIndex*pageSize)

	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query directory users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.DirectoryUser, 0, pageSize)
	for rows.Next() {
		var u models.DirectoryUser
		if err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.Role,
			&u.Status,
			&u.JoinedDate,
			&u.TwoFactorAuth,
			&u.LoginType,
			&u.Avatar,
		); err != nil {
			return nil, fmt.Errorf("failed to scan directory user: %w", err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read directory users: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}

	return &DirectoryPage{
		Users:      users,
		PageIndex:  pageIndex,
		PageSize:   pageSize,
		TotalRows:  total,
		TotalPages: totalPages,
	}, nil
}

// All returns every directory row, used by exports
func (r *DirectoryRepository) All(ctx context.Context) ([]*models.DirectoryUser, error) {
	page, err := r.Search(ctx, "", 0, 100)
	if err != nil {
		return nil, err
	}
	users := page.Users
	for int64(len(users)) < page.TotalRows {
		next, err := r.Search(ctx, "", len(users)/100, 100)
		if err != nil {
			return nil, err
		}
		if len(next.Users) == 0 {
			break
		}
		users = append(users, next.Users...)
	}
	return users, nil
}

// Delete removes a directory row
func (r *DirectoryRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Pool().Exec(ctx, "DELETE FROM directory_users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete directory user: %w", err)
	}
	return nil
}
