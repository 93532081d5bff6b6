package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/robostage/backend/models"
)

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamNumberConflict = errors.New("team number is already registered")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (number, name, school)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		team.Number,
		team.Name,
		team.School,
	).Scan(&team.ID, &team.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, "teams_number_key") {
			return ErrTeamNumberConflict
		}
		return fmt.Errorf("failed to insert team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, number, name, school, logo_key, created_at
		FROM teams WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.Number,
		&team.Name,
		&team.School,
		&team.LogoKey,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team %d: %w", id, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT id, number, name, school, logo_key, created_at
		FROM teams ORDER BY number ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team := &models.Team{}
		if err := rows.Scan(
			&team.ID,
			&team.Number,
			&team.Name,
			&team.School,
			&team.LogoKey,
			&team.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update team %d logo: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
