package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/shared"
)

const ThemeKey = "theme"

var _ models.Repository[*models.Preference] = (*PreferenceRepository)(nil)

// PreferenceRepository implements [models.Repository] for [models.Preference].
type PreferenceRepository struct {
	db *sql.DB
}

// NewPreferenceRepository creates a new [PreferenceRepository] with the given database connection
func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

const preferenceColumns = "id, scope, key, value, created_at, updated_at"

func scanPreference(row interface{ Scan(...any) error }) (*models.Preference, error) {
	var p models.Preference
	if err := row.Scan(&p.PrefID, &p.Scope, &p.Key, &p.Value, &p.Created, &p.Updated); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a preference with a generated ID.
func (r *PreferenceRepository) Create(p *models.Preference) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	p.PrefID = shared.GenerateID()
	p.Created, p.Updated = now, now

	query := `INSERT INTO preferences (` + preferenceColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.Exec(query, p.PrefID, p.Scope, p.Key, p.Value, p.Created, p.Updated); err != nil {
		return fmt.Errorf("failed to insert preference: %w", err)
	}
	return nil
}

// Get retrieves a preference by ID.
func (r *PreferenceRepository) Get(id string) (*models.Preference, error) {
	row := r.db.QueryRow(`SELECT `+preferenceColumns+` FROM preferences WHERE id = ?`, id)
	p, err := scanPreference(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: preference %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query preference: %w", err)
	}
	return p, nil
}

// Update changes the value of an existing preference.
func (r *PreferenceRepository) Update(p *models.Preference) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	p.Updated = time.Now().UTC()
	result, err := r.db.Exec(`UPDATE preferences SET value = ?, updated_at = ? WHERE id = ?`, p.Value, p.Updated, p.PrefID)
	if err != nil {
		return fmt.Errorf("failed to update preference: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: preference %s", shared.ErrNotFound, p.PrefID)
	}
	return nil
}

// Delete removes a preference by ID.
func (r *PreferenceRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM preferences WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete preference: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: preference %s", shared.ErrNotFound, id)
	}
	return nil
}

// List returns preferences, optionally filtered by "scope" and "key" criteria.
func (r *PreferenceRepository) List(criteria map[string]any) ([]*models.Preference, error) {
	query := `SELECT ` + preferenceColumns + ` FROM preferences WHERE 1 = 1`
	args := []any{}

	for _, col := range []string{"scope", "key"} {
		if v, ok := criteria[col].(string); ok && v != "" {
			query += " AND " + col + " = ?"
			args = append(args, v)
		}
	}
	query += " ORDER BY scope, key"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	var prefs []*models.Preference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs = append(prefs, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return prefs, nil
}

// Lookup returns the value stored for scope and key.
func (r *PreferenceRepository) Lookup(scope, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM preferences WHERE scope = ? AND key = ?`, scope, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query preference: %w", err)
	}
	return value, true, nil
}

// Set stores value for scope and key, creating or updating the row.
func (r *PreferenceRepository) Set(scope, key, value string) error {
	prefs, err := r.List(map[string]any{"scope": scope, "key": key})
	if err != nil {
		return err
	}
	if len(prefs) == 0 {
		return r.Create(&models.Preference{Scope: scope, Key: key, Value: value})
	}
	prefs[0].Value = value
	return r.Update(prefs[0])
}

// Theme returns the stored theme for scope, light when unset or unreadable.
func (r *PreferenceRepository) Theme(scope string) models.Theme {
	value, ok, err := r.Lookup(scope, ThemeKey)
	if err != nil || !ok {
		return models.ThemeLight
	}
	theme, err := models.ParseTheme(value)
	if err != nil {
		return models.ThemeLight
	}
	return theme
}

// SetTheme stores the theme for scope.
func (r *PreferenceRepository) SetTheme(scope string, theme models.Theme) error {
	return r.Set(scope, ThemeKey, string(theme))
}
