package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/pinhub-core/internal/pin"
)

// Repository defines the persistence operations the registry needs.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// LoadProfiles retrieves every user with their projects and widgets.
	LoadProfiles(ctx context.Context) ([]Profile, error)

	// LoadTokens retrieves the token table as a map from token string to
	// its (user, project) binding. A binding with ProjectID 0 means the
	// token has no project mapped yet.
	LoadTokens(ctx context.Context) (map[string]Binding, error)

	// UpdateWidgetValues persists the stored values of a single widget.
	UpdateWidgetValues(ctx context.Context, widgetID int64, values []string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// LoadProfiles retrieves every user with their projects and widgets.
// Widgets are returned in stored position order, which the locator relies
// on for deterministic first-match lookup.
func (r *SQLiteRepository) LoadProfiles(ctx context.Context) ([]Profile, error) {
	users, err := r.loadUsers(ctx)
	if err != nil {
		return nil, err
	}

	projectsByUser, projectsByID, err := r.loadProjects(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.loadWidgets(ctx, projectsByID); err != nil {
		return nil, err
	}

	profiles := make([]Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, Profile{
			User:     u,
			Projects: projectsByUser[u.ID],
		})
	}
	return profiles, nil
}

// loadUsers returns all users ordered by id.
func (r *SQLiteRepository) loadUsers(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, email FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

// loadProjects returns all projects grouped by owner and indexed by id.
func (r *SQLiteRepository) loadProjects(ctx context.Context) (map[string][]*Project, map[int64]*Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, is_active FROM projects ORDER BY id`)
	if err != nil {
		return nil, nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	byUser := make(map[string][]*Project)
	byID := make(map[int64]*Project)
	for rows.Next() {
		var p Project
		var userID string
		if err := rows.Scan(&p.ID, &userID, &p.Name, &p.IsActive); err != nil {
			return nil, nil, fmt.Errorf("scanning project: %w", err)
		}
		byUser[userID] = append(byUser[userID], &p)
		byID[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating projects: %w", err)
	}
	return byUser, byID, nil
}

// loadWidgets attaches widgets to their projects in position order.
func (r *SQLiteRepository) loadWidgets(ctx context.Context, projects map[int64]*Project) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, name, kind, pin, value_list, device_tokens
		FROM widgets
		ORDER BY project_id, position, id`)
	if err != nil {
		return fmt.Errorf("querying widgets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var w Widget
		var projectID int64
		var pinStr sql.NullString
		var valuesJSON, tokensJSON string
		if err := rows.Scan(&w.ID, &projectID, &w.Name, &w.Kind, &pinStr, &valuesJSON, &tokensJSON); err != nil {
			return fmt.Errorf("scanning widget: %w", err)
		}

		if pinStr.Valid && pinStr.String != "" {
			addr, parseErr := pin.Parse(pinStr.String)
			if parseErr != nil {
				return fmt.Errorf("widget %d has unparseable pin %q: %w", w.ID, pinStr.String, parseErr)
			}
			w.Pin = &addr
		}
		if err := json.Unmarshal([]byte(valuesJSON), &w.Values); err != nil {
			return fmt.Errorf("widget %d values: %w", w.ID, err)
		}
		if err := json.Unmarshal([]byte(tokensJSON), &w.DeviceTokens); err != nil {
			return fmt.Errorf("widget %d device tokens: %w", w.ID, err)
		}

		p, ok := projects[projectID]
		if !ok {
			// Orphaned widget row; skip rather than fail the whole load.
			continue
		}
		p.Widgets = append(p.Widgets, &w)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating widgets: %w", err)
	}
	return nil
}

// LoadTokens retrieves all token bindings.
func (r *SQLiteRepository) LoadTokens(ctx context.Context) (map[string]Binding, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT token, user_id, project_id FROM tokens`)
	if err != nil {
		return nil, fmt.Errorf("querying tokens: %w", err)
	}
	defer rows.Close()

	bindings := make(map[string]Binding)
	for rows.Next() {
		var token, userID string
		var projectID sql.NullInt64
		if err := rows.Scan(&token, &userID, &projectID); err != nil {
			return nil, fmt.Errorf("scanning token: %w", err)
		}
		b := Binding{UserID: userID}
		if projectID.Valid {
			b.ProjectID = projectID.Int64
		}
		bindings[token] = b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tokens: %w", err)
	}
	return bindings, nil
}

// UpdateWidgetValues persists the stored values of a single widget.
func (r *SQLiteRepository) UpdateWidgetValues(ctx context.Context, widgetID int64, values []string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding widget values: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE widgets SET value_list = ? WHERE id = ?`, string(data), widgetID)
	if err != nil {
		return fmt.Errorf("updating widget values: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrWidgetNotFound
	}
	return nil
}
