package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/robostage/backend/models"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrAllianceNotFound = errors.New("alliance not found")
)

type MatchRepository interface {
	CreateMatch(ctx context.Context, exec SQLExecutor, match *models.StageMatch) error
	CreateAlliance(ctx context.Context, exec SQLExecutor, alliance *models.StageAlliance) error
	AddAllianceTeam(ctx context.Context, exec SQLExecutor, seat *models.AllianceTeam) error
	GetMatch(ctx context.Context, id string) (*models.StageMatch, error)
	ListByStage(ctx context.Context, stageID string) ([]*models.StageMatch, error)
	ListAlliancesByStage(ctx context.Context, stageID string) ([]*models.StageAlliance, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, matchID string, status string, winningAlliance *string) error
	UpdateAllianceScores(ctx context.Context, exec SQLExecutor, allianceID string, score, autoScore, driveScore *int) error
	ReplaceAllianceTeams(ctx context.Context, exec SQLExecutor, allianceID string, seats []models.AllianceTeam) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) CreateMatch(ctx context.Context, exec SQLExecutor, match *models.StageMatch) error {
	query := `
		INSERT INTO stage_matches
			(id, stage_id, match_number, status, round_number, bracket_slot,
			 record_bucket, winning_alliance, feeds_into_match_id, loser_feeds_into_match_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	err := exec.QueryRowContext(ctx, query,
		match.ID,
		match.StageID,
		match.MatchNumber,
		match.Status,
		match.RoundNumber,
		match.BracketSlot,
		match.RecordBucket,
		match.WinningAlliance,
		match.FeedsInto,
		match.LoserFeedsInto,
	).Scan(&match.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) CreateAlliance(ctx context.Context, exec SQLExecutor, alliance *models.StageAlliance) error {
	query := `
		INSERT INTO stage_alliances (id, match_id, color, score, auto_score, drive_score)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := exec.ExecContext(ctx, query,
		alliance.ID,
		alliance.MatchID,
		alliance.Color,
		alliance.Score,
		alliance.AutoScore,
		alliance.DriveScore,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alliance: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) AddAllianceTeam(ctx context.Context, exec SQLExecutor, seat *models.AllianceTeam) error {
	query := `
		INSERT INTO alliance_teams (alliance_id, team_id, station_position, is_surrogate)
		VALUES ($1, $2, $3, $4)`

	_, err := exec.ExecContext(ctx, query,
		seat.AllianceID,
		seat.TeamID,
		seat.StationPosition,
		seat.Surrogate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alliance team: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetMatch(ctx context.Context, id string) (*models.StageMatch, error) {
	query := `
		SELECT id, stage_id, match_number, status, round_number, bracket_slot,
		       record_bucket, winning_alliance, feeds_into_match_id, loser_feeds_into_match_id, created_at
		FROM stage_matches WHERE id = $1`

	match := &models.StageMatch{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&match.ID,
		&match.StageID,
		&match.MatchNumber,
		&match.Status,
		&match.RoundNumber,
		&match.BracketSlot,
		&match.RecordBucket,
		&match.WinningAlliance,
		&match.FeedsInto,
		&match.LoserFeedsInto,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %s: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByStage(ctx context.Context, stageID string) ([]*models.StageMatch, error) {
	query := `
		SELECT id, stage_id, match_number, status, round_number, bracket_slot,
		       record_bucket, winning_alliance, feeds_into_match_id, loser_feeds_into_match_id, created_at
		FROM stage_matches WHERE stage_id = $1
		ORDER BY round_number ASC NULLS LAST, match_number ASC NULLS LAST, id ASC`

	rows, err := r.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for stage %s: %w", stageID, err)
	}
	defer rows.Close()

	matches := make([]*models.StageMatch, 0)
	for rows.Next() {
		match := &models.StageMatch{}
		if err := rows.Scan(
			&match.ID,
			&match.StageID,
			&match.MatchNumber,
			&match.Status,
			&match.RoundNumber,
			&match.BracketSlot,
			&match.RecordBucket,
			&match.WinningAlliance,
			&match.FeedsInto,
			&match.LoserFeedsInto,
			&match.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

// ListAlliancesByStage loads every alliance of a stage with its seated teams,
// joining team number and name for display.
func (r *postgresMatchRepository) ListAlliancesByStage(ctx context.Context, stageID string) ([]*models.StageAlliance, error) {
	query := `
		SELECT a.id, a.match_id, a.color, a.score, a.auto_score, a.drive_score
		FROM stage_alliances a
		JOIN stage_matches m ON m.id = a.match_id
		WHERE m.stage_id = $1
		ORDER BY a.match_id ASC, a.color DESC`

	rows, err := r.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alliances for stage %s: %w", stageID, err)
	}
	defer rows.Close()

	alliances := make([]*models.StageAlliance, 0)
	byID := make(map[string]*models.StageAlliance)
	for rows.Next() {
		alliance := &models.StageAlliance{Teams: make([]models.AllianceTeam, 0, 2)}
		if err := rows.Scan(
			&alliance.ID,
			&alliance.MatchID,
			&alliance.Color,
			&alliance.Score,
			&alliance.AutoScore,
			&alliance.DriveScore,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alliance row: %w", err)
		}
		alliances = append(alliances, alliance)
		byID[alliance.ID] = alliance
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	seatQuery := `
		SELECT at.alliance_id, at.team_id, at.station_position, at.is_surrogate, t.number, t.name
		FROM alliance_teams at
		JOIN stage_alliances a ON a.id = at.alliance_id
		JOIN stage_matches m ON m.id = a.match_id
		JOIN teams t ON t.id = at.team_id
		WHERE m.stage_id = $1
		ORDER BY at.alliance_id ASC, at.station_position ASC`

	seatRows, err := r.db.QueryContext(ctx, seatQuery, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alliance teams for stage %s: %w", stageID, err)
	}
	defer seatRows.Close()

	for seatRows.Next() {
		var seat models.AllianceTeam
		var number int
		var name string
		if err := seatRows.Scan(
			&seat.AllianceID,
			&seat.TeamID,
			&seat.StationPosition,
			&seat.Surrogate,
			&number,
			&name,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alliance team row: %w", err)
		}
		seat.TeamNumber = &number
		seat.TeamName = &name
		if alliance, ok := byID[seat.AllianceID]; ok {
			alliance.Teams = append(alliance.Teams, seat)
		}
	}
	return alliances, seatRows.Err()
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, matchID string, status string, winningAlliance *string) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE stage_matches SET status = $1, winning_alliance = $2 WHERE id = $3`,
		status, winningAlliance, matchID)
	if err != nil {
		return fmt.Errorf("failed to update result for match %s: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateAllianceScores(ctx context.Context, exec SQLExecutor, allianceID string, score, autoScore, driveScore *int) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE stage_alliances SET score = $1, auto_score = $2, drive_score = $3 WHERE id = $4`,
		score, autoScore, driveScore, allianceID)
	if err != nil {
		return fmt.Errorf("failed to update scores for alliance %s: %w", allianceID, err)
	}
	return checkAffectedRows(result, ErrAllianceNotFound)
}

// ReplaceAllianceTeams swaps an alliance's roster, used when an upstream
// result advances its winner into a downstream slot.
func (r *postgresMatchRepository) ReplaceAllianceTeams(ctx context.Context, exec SQLExecutor, allianceID string, seats []models.AllianceTeam) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM alliance_teams WHERE alliance_id = $1`, allianceID); err != nil {
		return fmt.Errorf("failed to clear alliance %s teams: %w", allianceID, err)
	}
	for i := range seats {
		seats[i].AllianceID = allianceID
		if err := r.AddAllianceTeam(ctx, exec, &seats[i]); err != nil {
			return err
		}
	}
	return nil
}
