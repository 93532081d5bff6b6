package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/robostage/backend/models"
)

var ErrStageNotFound = errors.New("stage not found")

type StageRepository interface {
	Create(ctx context.Context, exec SQLExecutor, stage *models.Stage) error
	GetByID(ctx context.Context, id string) (*models.Stage, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Stage, error)
	UpdateStructure(ctx context.Context, exec SQLExecutor, id string, structureJSON *string) error
}

type postgresStageRepository struct {
	db *sql.DB
}

func NewPostgresStageRepository(db *sql.DB) StageRepository {
	return &postgresStageRepository{db: db}
}

func (r *postgresStageRepository) Create(ctx context.Context, exec SQLExecutor, stage *models.Stage) error {
	query := `
		INSERT INTO stages (id, tournament_id, name, kind, teams_per_alliance, structure_json)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := exec.QueryRowContext(ctx, query,
		stage.ID,
		stage.TournamentID,
		stage.Name,
		stage.Kind,
		stage.TeamsPerAlliance,
		stage.StructureJSON,
	).Scan(&stage.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert stage: %w", err)
	}
	return nil
}

func (r *postgresStageRepository) GetByID(ctx context.Context, id string) (*models.Stage, error) {
	query := `
		SELECT id, tournament_id, name, kind, teams_per_alliance, structure_json, created_at
		FROM stages WHERE id = $1`

	stage := &models.Stage{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&stage.ID,
		&stage.TournamentID,
		&stage.Name,
		&stage.Kind,
		&stage.TeamsPerAlliance,
		&stage.StructureJSON,
		&stage.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to scan stage %s: %w", id, err)
	}
	return stage, nil
}

func (r *postgresStageRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Stage, error) {
	query := `
		SELECT id, tournament_id, name, kind, teams_per_alliance, structure_json, created_at
		FROM stages WHERE tournament_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stages for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	stages := make([]*models.Stage, 0)
	for rows.Next() {
		stage := &models.Stage{}
		if err := rows.Scan(
			&stage.ID,
			&stage.TournamentID,
			&stage.Name,
			&stage.Kind,
			&stage.TeamsPerAlliance,
			&stage.StructureJSON,
			&stage.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stage row: %w", err)
		}
		stages = append(stages, stage)
	}
	return stages, rows.Err()
}

func (r *postgresStageRepository) UpdateStructure(ctx context.Context, exec SQLExecutor, id string, structureJSON *string) error {
	result, err := exec.ExecContext(ctx, `UPDATE stages SET structure_json = $1 WHERE id = $2`, structureJSON, id)
	if err != nil {
		return fmt.Errorf("failed to update stage %s structure: %w", id, err)
	}
	return checkAffectedRows(result, ErrStageNotFound)
}
