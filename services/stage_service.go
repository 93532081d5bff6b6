package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/robostage/backend/bracket"
	"github.com/robostage/backend/live"
	"github.com/robostage/backend/models"
	"github.com/robostage/backend/repositories"
)

// SeedInput is one seeded alliance for elimination bracket generation.
type SeedInput struct {
	Seed    int   `json:"seed"`
	TeamIDs []int `json:"team_ids"`
}

type CreateStageInput struct {
	TournamentID     int              `json:"tournament_id"`
	Name             string           `json:"name"`
	Kind             models.StageKind `json:"kind"`
	TeamsPerAlliance int              `json:"teams_per_alliance"`
}

type RecordResultInput struct {
	WinningAlliance string `json:"winning_alliance"`
	RedScore        *int   `json:"red_score"`
	BlueScore       *int   `json:"blue_score"`
}

// StageService owns the stage lifecycle: creation, elimination bracket
// generation, and result recording with winner/loser advancement along the
// bracket's links. Every mutation ends with a BRACKET_UPDATED broadcast to
// the stage's room.
type StageService interface {
	CreateStage(ctx context.Context, input CreateStageInput) (*models.Stage, error)
	GetStage(ctx context.Context, stageID string) (*models.Stage, error)
	ListStages(ctx context.Context, tournamentID int) ([]*models.Stage, error)
	GenerateEliminationBracket(ctx context.Context, stageID string, seeds []SeedInput) (*bracket.Snapshot, error)
	PairNextSwissRound(ctx context.Context, stageID string) (*bracket.Snapshot, error)
	RecordResult(ctx context.Context, stageID, matchID string, input RecordResultInput) error
}

type stageService struct {
	db             *sql.DB
	stageRepo      repositories.StageRepository
	matchRepo      repositories.MatchRepository
	bracketService BracketService
	hub            *live.Hub
	logger         *slog.Logger
}

func NewStageService(
	db *sql.DB,
	stageRepo repositories.StageRepository,
	matchRepo repositories.MatchRepository,
	bracketService BracketService,
	hub *live.Hub,
	logger *slog.Logger,
) StageService {
	return &stageService{
		db:             db,
		stageRepo:      stageRepo,
		matchRepo:      matchRepo,
		bracketService: bracketService,
		hub:            hub,
		logger:         logger,
	}
}

func (s *stageService) CreateStage(ctx context.Context, input CreateStageInput) (*models.Stage, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: stage name is required", ErrValidationFailed)
	}
	switch input.Kind {
	case models.StageElimination, models.StageSwiss, models.StageStandard:
	default:
		return nil, fmt.Errorf("%w: unknown stage kind %q", ErrValidationFailed, input.Kind)
	}
	if input.TeamsPerAlliance < 1 {
		return nil, fmt.Errorf("%w: teams per alliance must be at least 1", ErrValidationFailed)
	}

	stage := &models.Stage{
		ID:               uuid.NewString(),
		TournamentID:     input.TournamentID,
		Name:             input.Name,
		Kind:             input.Kind,
		TeamsPerAlliance: input.TeamsPerAlliance,
	}
	if err := s.stageRepo.Create(ctx, s.db, stage); err != nil {
		return nil, err
	}
	return stage, nil
}

func (s *stageService) GetStage(ctx context.Context, stageID string) (*models.Stage, error) {
	stage, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, err
	}
	return stage, nil
}

func (s *stageService) ListStages(ctx context.Context, tournamentID int) ([]*models.Stage, error) {
	return s.stageRepo.ListByTournament(ctx, tournamentID)
}

// GenerateEliminationBracket builds the stage's single-elimination skeleton
// from the seeded alliances and persists it in one transaction: the round
// structure on the stage, and a match plus two alliances (with seats where
// already resolved) per generated match.
func (s *stageService) GenerateEliminationBracket(ctx context.Context, stageID string, seeds []SeedInput) (*bracket.Snapshot, error) {
	stage, err := s.GetStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if stage.Kind != models.StageElimination {
		return nil, ErrStageNotElimination
	}

	existing, err := s.matchRepo.ListByStage(ctx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing matches for stage %s: %w", stageID, err)
	}
	if len(existing) > 0 {
		return nil, ErrStageAlreadySeeded
	}

	alliances := make([]bracket.SeededAlliance, 0, len(seeds))
	for _, seed := range seeds {
		teams := make([]bracket.TeamSlot, 0, len(seed.TeamIDs))
		for i, teamID := range seed.TeamIDs {
			teams = append(teams, bracket.TeamSlot{
				TeamID:          strconv.Itoa(teamID),
				StationPosition: i + 1,
			})
		}
		alliances = append(alliances, bracket.SeededAlliance{Seed: seed.Seed, Teams: teams})
	}

	snap, err := bracket.GenerateElimination(alliances, stage.TeamsPerAlliance, uuid.NewString)
	if err != nil {
		if errors.Is(err, bracket.ErrNotEnoughAlliances) {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		return nil, err
	}

	structureJSON, err := encodeStructure(snap.Structure)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.stageRepo.UpdateStructure(ctx, tx, stageID, &structureJSON); err != nil {
		return nil, err
	}
	for i := range snap.Matches {
		if err := s.persistGeneratedMatch(ctx, tx, stageID, &snap.Matches[i]); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bracket for stage %s: %w", stageID, err)
	}

	s.logger.Info("elimination bracket generated",
		slog.String("stage_id", stageID),
		slog.Int("matches", len(snap.Matches)))
	s.broadcast(ctx, stageID)
	return snap, nil
}

func (s *stageService) persistGeneratedMatch(ctx context.Context, exec repositories.SQLExecutor, stageID string, m *bracket.Match) error {
	row := &models.StageMatch{
		ID:             m.ID,
		StageID:        stageID,
		MatchNumber:    m.MatchNumber,
		Status:         string(m.Status),
		RoundNumber:    m.RoundNumber,
		BracketSlot:    m.BracketSlot,
		FeedsInto:      m.FeedsInto,
		LoserFeedsInto: m.LoserFeedsInto,
	}
	if err := s.matchRepo.CreateMatch(ctx, exec, row); err != nil {
		return err
	}

	for i := range m.Alliances {
		a := &m.Alliances[i]
		allianceRow := &models.StageAlliance{
			ID:      a.ID,
			MatchID: m.ID,
			Color:   string(a.Color),
		}
		if err := s.matchRepo.CreateAlliance(ctx, exec, allianceRow); err != nil {
			return err
		}
		for _, slot := range a.Teams {
			teamID, err := strconv.Atoi(slot.TeamID)
			if err != nil {
				return fmt.Errorf("%w: team id %q is not numeric", ErrValidationFailed, slot.TeamID)
			}
			seat := &models.AllianceTeam{
				AllianceID:      a.ID,
				TeamID:          teamID,
				StationPosition: slot.StationPosition,
				Surrogate:       slot.Surrogate,
			}
			if err := s.matchRepo.AddAllianceTeam(ctx, exec, seat); err != nil {
				return err
			}
		}
	}
	return nil
}

// PairNextSwissRound extends a Swiss stage with its next round, pairing
// rosters by their win-loss record so far. The engine produces the extended
// snapshot; only the delta is persisted.
func (s *stageService) PairNextSwissRound(ctx context.Context, stageID string) (*bracket.Snapshot, error) {
	stage, err := s.GetStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if stage.Kind != models.StageSwiss {
		return nil, ErrStageNotSwiss
	}

	snap, err := s.bracketService.BuildSnapshot(ctx, stageID)
	if err != nil {
		return nil, err
	}

	paired, err := bracket.PairSwissRound(snap, uuid.NewString)
	if err != nil {
		if errors.Is(err, bracket.ErrNotEnoughAlliances) {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		return nil, err
	}

	structureJSON, err := encodeStructure(paired.Structure)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.stageRepo.UpdateStructure(ctx, tx, stageID, &structureJSON); err != nil {
		return nil, err
	}
	for i := len(snap.Matches); i < len(paired.Matches); i++ {
		if err := s.persistGeneratedMatch(ctx, tx, stageID, &paired.Matches[i]); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit swiss round for stage %s: %w", stageID, err)
	}

	s.logger.Info("swiss round paired",
		slog.String("stage_id", stageID),
		slog.Int("new_matches", len(paired.Matches)-len(snap.Matches)))
	s.broadcast(ctx, stageID)
	return paired, nil
}

// RecordResult stores a match outcome, then advances the winning (and, for
// double elimination, losing) alliance into the downstream slot determined by
// the advancement graph's feeder ordering.
func (s *stageService) RecordResult(ctx context.Context, stageID, matchID string, input RecordResultInput) error {
	winner := bracket.Winner(input.WinningAlliance)
	switch winner {
	case bracket.WinnerRed, bracket.WinnerBlue, bracket.WinnerTie:
	default:
		return ErrInvalidWinner
	}

	match, err := s.matchRepo.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return err
	}
	if match.StageID != stageID {
		return ErrMatchNotFound
	}
	if match.Status == string(bracket.StatusCompleted) {
		return ErrMatchAlreadyFinished
	}

	alliances, err := s.stageAlliances(ctx, stageID, matchID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	winnerStr := string(winner)
	if err := s.matchRepo.UpdateResult(ctx, tx, matchID, string(bracket.StatusCompleted), &winnerStr); err != nil {
		return err
	}
	for _, a := range alliances {
		var score *int
		switch bracket.AllianceColor(a.Color) {
		case bracket.ColorRed:
			score = input.RedScore
		case bracket.ColorBlue:
			score = input.BlueScore
		}
		if score != nil {
			if err := s.matchRepo.UpdateAllianceScores(ctx, tx, a.ID, score, a.AutoScore, a.DriveScore); err != nil {
				return err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit result for match %s: %w", matchID, err)
	}

	if err := s.advance(ctx, stageID, matchID, winner); err != nil {
		// The result itself is committed; a failed advancement leaves
		// unresolved downstream slots that the next recording retries.
		s.logger.Error("failed to advance alliances",
			slog.String("stage_id", stageID),
			slog.String("match_id", matchID),
			slog.Any("error", err))
	}

	s.broadcast(ctx, stageID)
	return nil
}

// advance copies the deciding match's alliances into the downstream slots
// the advancement graph assigns to them. The slot choice reuses the engine's
// feeder ordering so display and persistence can never disagree.
func (s *stageService) advance(ctx context.Context, stageID, matchID string, winner bracket.Winner) error {
	if winner == bracket.WinnerTie {
		return nil
	}

	snap, err := s.bracketService.BuildSnapshot(ctx, stageID)
	if err != nil {
		return err
	}
	match := snap.MatchByID(matchID)
	if match == nil {
		return ErrMatchNotFound
	}

	winnerColor := bracket.ColorRed
	loserColor := bracket.ColorBlue
	if winner == bracket.WinnerBlue {
		winnerColor, loserColor = loserColor, winnerColor
	}

	alliances, err := s.stageAlliances(ctx, stageID, matchID)
	if err != nil {
		return err
	}
	seatsByColor := make(map[bracket.AllianceColor][]models.AllianceTeam, 2)
	for _, a := range alliances {
		seatsByColor[bracket.AllianceColor(a.Color)] = a.Teams
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if match.FeedsInto != nil {
		if err := s.fillSlot(ctx, tx, snap, *match.FeedsInto, matchID, seatsByColor[winnerColor]); err != nil {
			return err
		}
	}
	if match.LoserFeedsInto != nil && bracket.Analyze(snap).DoubleElimination {
		if err := s.fillSlot(ctx, tx, snap, *match.LoserFeedsInto, matchID, seatsByColor[loserColor]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// fillSlot seats the advancing roster in whichever color slot of the target
// match the feeder ordering assigns to the source match. When the target has
// a single feeder (a bye carried the other side in at generation time), the
// feeder ordering is undefined and the roster takes the open slot instead.
func (s *stageService) fillSlot(ctx context.Context, exec repositories.SQLExecutor, snap *bracket.Snapshot, targetID, sourceID string, seats []models.AllianceTeam) error {
	target := snap.MatchByID(targetID)
	if target == nil {
		// Dangling link; the validator reports it, nothing to fill.
		return nil
	}

	if bracket.FindSourceMatch(snap, targetID, bracket.ColorRed) == nil {
		for _, color := range []bracket.AllianceColor{bracket.ColorRed, bracket.ColorBlue} {
			alliance := target.Alliance(color)
			if alliance == nil || alliance.ID == "" || alliance.Resolved() {
				continue
			}
			return s.matchRepo.ReplaceAllianceTeams(ctx, exec, alliance.ID, seats)
		}
		return nil
	}

	for _, color := range []bracket.AllianceColor{bracket.ColorRed, bracket.ColorBlue} {
		source := bracket.FindSourceMatch(snap, targetID, color)
		if source == nil || source.ID != sourceID {
			continue
		}
		alliance := target.Alliance(color)
		if alliance == nil || alliance.ID == "" {
			continue
		}
		return s.matchRepo.ReplaceAllianceTeams(ctx, exec, alliance.ID, seats)
	}
	return nil
}

func (s *stageService) stageAlliances(ctx context.Context, stageID, matchID string) ([]*models.StageAlliance, error) {
	all, err := s.matchRepo.ListAlliancesByStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	matchAlliances := make([]*models.StageAlliance, 0, 2)
	for _, a := range all {
		if a.MatchID == matchID {
			matchAlliances = append(matchAlliances, a)
		}
	}
	return matchAlliances, nil
}

// broadcast pushes the stage's freshly rendered bracket to its room. Best
// effort: a failed rebuild is logged and clients simply refetch.
func (s *stageService) broadcast(ctx context.Context, stageID string) {
	rendered, err := s.bracketService.RenderFormat(ctx, stageID)
	if err != nil {
		s.logger.Error("failed to render bracket for broadcast",
			slog.String("stage_id", stageID), slog.Any("error", err))
		return
	}
	s.hub.BroadcastToRoom(stageID, live.Message{
		Type:    "BRACKET_UPDATED",
		Payload: rendered,
	})
}

func encodeStructure(structure bracket.Structure) (string, error) {
	doc := storedStructure{}
	switch st := structure.(type) {
	case bracket.EliminationStructure:
		doc.Rounds = st.Rounds
	case bracket.SwissStructure:
		doc.Rounds = st.Rounds
		doc.Buckets = st.Buckets
	case bracket.StandardStructure:
		doc.Rounds = st.Rounds
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode stage structure: %w", err)
	}
	return string(raw), nil
}
