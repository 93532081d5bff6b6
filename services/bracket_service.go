package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/robostage/backend/bracket"
	"github.com/robostage/backend/models"
	"github.com/robostage/backend/repositories"
	"golang.org/x/sync/errgroup"
)

// BracketService assembles immutable engine snapshots from backend state and
// exposes the engine's analyses over them. It owns retrieval only; all
// bracket semantics live in the bracket package.
type BracketService interface {
	BuildSnapshot(ctx context.Context, stageID string) (*bracket.Snapshot, error)
	Validation(ctx context.Context, stageID string) (bracket.ValidationResult, error)
	Stats(ctx context.Context, stageID string) (bracket.Stats, error)
	Normalized(ctx context.Context, stageID string) (*bracket.NormalizedBracket, error)
	RenderFormat(ctx context.Context, stageID string) ([]bracket.RenderMatch, error)
}

type bracketService struct {
	stageRepo repositories.StageRepository
	matchRepo repositories.MatchRepository
}

func NewBracketService(stageRepo repositories.StageRepository, matchRepo repositories.MatchRepository) BracketService {
	return &bracketService{stageRepo: stageRepo, matchRepo: matchRepo}
}

// storedStructure is the JSON document held in stages.structure_json. The
// stage kind selects which engine structure variant it decodes into.
type storedStructure struct {
	Rounds  []bracket.Round  `json:"rounds"`
	Buckets []bracket.Bucket `json:"buckets,omitempty"`
}

func (s *bracketService) BuildSnapshot(ctx context.Context, stageID string) (*bracket.Snapshot, error) {
	var (
		stage     *models.Stage
		matches   []*models.StageMatch
		alliances []*models.StageAlliance
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loaded, err := s.stageRepo.GetByID(gCtx, stageID)
		if err != nil {
			if errors.Is(err, repositories.ErrStageNotFound) {
				return ErrStageNotFound
			}
			return fmt.Errorf("failed to load stage %s: %w", stageID, err)
		}
		stage = loaded
		return nil
	})
	g.Go(func() error {
		loaded, err := s.matchRepo.ListByStage(gCtx, stageID)
		if err != nil {
			return fmt.Errorf("failed to load matches for stage %s: %w", stageID, err)
		}
		matches = loaded
		return nil
	})
	g.Go(func() error {
		loaded, err := s.matchRepo.ListAlliancesByStage(gCtx, stageID)
		if err != nil {
			return fmt.Errorf("failed to load alliances for stage %s: %w", stageID, err)
		}
		alliances = loaded
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byMatch := make(map[string][]bracket.Alliance, len(matches))
	for _, a := range alliances {
		byMatch[a.MatchID] = append(byMatch[a.MatchID], toEngineAlliance(a))
	}

	snap := &bracket.Snapshot{
		Matches:          make([]bracket.Match, 0, len(matches)),
		TeamsPerAlliance: stage.TeamsPerAlliance,
	}
	for _, m := range matches {
		snap.Matches = append(snap.Matches, toEngineMatch(m, byMatch[m.ID]))
	}
	snap.Structure = decodeStructure(stage, snap)
	return snap, nil
}

func (s *bracketService) Validation(ctx context.Context, stageID string) (bracket.ValidationResult, error) {
	snap, err := s.BuildSnapshot(ctx, stageID)
	if err != nil {
		return bracket.ValidationResult{}, err
	}
	return bracket.Validate(snap), nil
}

func (s *bracketService) Stats(ctx context.Context, stageID string) (bracket.Stats, error) {
	snap, err := s.BuildSnapshot(ctx, stageID)
	if err != nil {
		return bracket.Stats{}, err
	}
	return bracket.Analyze(snap), nil
}

func (s *bracketService) Normalized(ctx context.Context, stageID string) (*bracket.NormalizedBracket, error) {
	snap, err := s.BuildSnapshot(ctx, stageID)
	if err != nil {
		return nil, err
	}
	return bracket.Normalize(snap), nil
}

func (s *bracketService) RenderFormat(ctx context.Context, stageID string) ([]bracket.RenderMatch, error) {
	snap, err := s.BuildSnapshot(ctx, stageID)
	if err != nil {
		return nil, err
	}
	return bracket.ToRenderFormat(snap), nil
}

// decodeStructure turns the stage's stored structure document into the
// engine's tagged variant. A malformed or missing document degrades to an
// empty structure of the stage's kind; the engine treats that as valid input
// and the validator surfaces any resulting oddities.
func decodeStructure(stage *models.Stage, snap *bracket.Snapshot) bracket.Structure {
	var doc storedStructure
	if stage.StructureJSON != nil && *stage.StructureJSON != "" {
		_ = json.Unmarshal([]byte(*stage.StructureJSON), &doc)
	}

	switch stage.Kind {
	case models.StageElimination:
		return bracket.EliminationStructure{Rounds: doc.Rounds}
	case models.StageSwiss:
		buckets := doc.Buckets
		if len(buckets) == 0 {
			// Older stages stored only the round view; rebuild the
			// record buckets from the matches themselves.
			buckets = bracket.DeriveSwissBuckets(snap)
		}
		return bracket.SwissStructure{Rounds: doc.Rounds, Buckets: buckets}
	default:
		return bracket.StandardStructure{Rounds: doc.Rounds}
	}
}

func toEngineAlliance(a *models.StageAlliance) bracket.Alliance {
	teams := make([]bracket.TeamSlot, 0, len(a.Teams))
	for _, seat := range a.Teams {
		teams = append(teams, bracket.TeamSlot{
			TeamID:          strconv.Itoa(seat.TeamID),
			TeamNumber:      seat.TeamNumber,
			TeamName:        seat.TeamName,
			StationPosition: seat.StationPosition,
			Surrogate:       seat.Surrogate,
		})
	}
	return bracket.Alliance{
		ID:         a.ID,
		Color:      bracket.AllianceColor(a.Color),
		Score:      a.Score,
		AutoScore:  a.AutoScore,
		DriveScore: a.DriveScore,
		Teams:      teams,
	}
}

func toEngineMatch(m *models.StageMatch, alliances []bracket.Alliance) bracket.Match {
	var winner *bracket.Winner
	if m.WinningAlliance != nil {
		w := bracket.Winner(*m.WinningAlliance)
		winner = &w
	}
	return bracket.Match{
		ID:              m.ID,
		MatchNumber:     m.MatchNumber,
		Status:          bracket.MatchStatus(m.Status),
		RoundNumber:     m.RoundNumber,
		BracketSlot:     m.BracketSlot,
		RecordBucket:    m.RecordBucket,
		WinningAlliance: winner,
		Alliances:       alliances,
		FeedsInto:       m.FeedsInto,
		LoserFeedsInto:  m.LoserFeedsInto,
	}
}
