package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/robostage/backend/bracket"
	"github.com/robostage/backend/live"
	"github.com/robostage/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStageServiceForTest(stageRepo *fakeStageRepo, matchRepo *fakeMatchRepo) *stageService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bracketService := NewBracketService(stageRepo, matchRepo)
	return NewStageService(nil, stageRepo, matchRepo, bracketService, live.NewHub(logger), logger).(*stageService)
}

// generateAndPersist builds an elimination bracket for the given number of
// seeded alliances and stores it through the fakes, the way the generation
// endpoint does. Team IDs are numeric strings so persistence can seat them.
func generateAndPersist(t *testing.T, svc *stageService, stageID string, allianceCount, teamsPer int) *bracket.Snapshot {
	t.Helper()

	seeded := make([]bracket.SeededAlliance, 0, allianceCount)
	for seed := 1; seed <= allianceCount; seed++ {
		teams := make([]bracket.TeamSlot, 0, teamsPer)
		for i := 0; i < teamsPer; i++ {
			teams = append(teams, bracket.TeamSlot{
				TeamID:          strconv.Itoa(seed*10 + i),
				StationPosition: i + 1,
			})
		}
		seeded = append(seeded, bracket.SeededAlliance{Seed: seed, Teams: teams})
	}

	n := 0
	newID := func() string {
		n++
		return fmt.Sprintf("m-%d", n)
	}
	snap, err := bracket.GenerateElimination(seeded, teamsPer, newID)
	require.NoError(t, err)

	for i := range snap.Matches {
		require.NoError(t, svc.persistGeneratedMatch(context.Background(), nil, stageID, &snap.Matches[i]))
	}
	return snap
}

func storedAllianceByID(t *testing.T, matchRepo *fakeMatchRepo, id string) *models.StageAlliance {
	t.Helper()
	for _, alliance := range matchRepo.alliances {
		if alliance.ID == id {
			return alliance
		}
	}
	t.Fatalf("alliance %s not stored", id)
	return nil
}

func TestCreateStage(t *testing.T) {
	stageRepo := newFakeStageRepo()
	svc := newStageServiceForTest(stageRepo, &fakeMatchRepo{})

	stage, err := svc.CreateStage(context.Background(), CreateStageInput{
		TournamentID:     1,
		Name:             "Qualification",
		Kind:             models.StageSwiss,
		TeamsPerAlliance: 2,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, stage.ID)
	assert.Len(t, stageRepo.created, 1)
}

func TestCreateStageValidation(t *testing.T) {
	svc := newStageServiceForTest(newFakeStageRepo(), &fakeMatchRepo{})
	ctx := context.Background()

	_, err := svc.CreateStage(ctx, CreateStageInput{Kind: models.StageSwiss, TeamsPerAlliance: 2})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.CreateStage(ctx, CreateStageInput{Name: "Quals", Kind: "ladder", TeamsPerAlliance: 2})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.CreateStage(ctx, CreateStageInput{Name: "Quals", Kind: models.StageStandard, TeamsPerAlliance: 0})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestGenerateBracketRejectsWrongKind(t *testing.T) {
	stage := &models.Stage{ID: "st-1", Name: "Quals", Kind: models.StageSwiss, TeamsPerAlliance: 2}
	svc := newStageServiceForTest(newFakeStageRepo(stage), &fakeMatchRepo{})

	_, err := svc.GenerateEliminationBracket(context.Background(), "st-1", nil)
	assert.ErrorIs(t, err, ErrStageNotElimination)
}

func TestGenerateBracketRejectsSeededStage(t *testing.T) {
	stage := &models.Stage{ID: "st-1", Name: "Playoffs", Kind: models.StageElimination, TeamsPerAlliance: 2}
	matchRepo := &fakeMatchRepo{
		matches: []*models.StageMatch{{ID: "m-1", StageID: "st-1", Status: "PENDING"}},
	}
	svc := newStageServiceForTest(newFakeStageRepo(stage), matchRepo)

	_, err := svc.GenerateEliminationBracket(context.Background(), "st-1", []SeedInput{
		{Seed: 1, TeamIDs: []int{1, 2}},
		{Seed: 2, TeamIDs: []int{3, 4}},
	})
	assert.ErrorIs(t, err, ErrStageAlreadySeeded)
}

func TestGenerateBracketUnknownStage(t *testing.T) {
	svc := newStageServiceForTest(newFakeStageRepo(), &fakeMatchRepo{})

	_, err := svc.GenerateEliminationBracket(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, ErrStageNotFound)
}

func TestFillSlotSeatsFeedersByOrder(t *testing.T) {
	matchRepo := &fakeMatchRepo{}
	svc := newStageServiceForTest(newFakeStageRepo(), matchRepo)
	ctx := context.Background()

	// Four alliances: m-1 and m-2 both feed the final m-3, first feeder by
	// match number takes RED, second takes BLUE.
	snap := generateAndPersist(t, svc, "st-1", 4, 2)
	require.Len(t, snap.Matches, 3)

	firstWinner := []models.AllianceTeam{
		{TeamID: 10, StationPosition: 1},
		{TeamID: 11, StationPosition: 2},
	}
	require.NoError(t, svc.fillSlot(ctx, nil, snap, "m-3", "m-1", firstWinner))
	assert.Equal(t, firstWinner, storedAllianceByID(t, matchRepo, "m-3-red").Teams)

	secondWinner := []models.AllianceTeam{
		{TeamID: 30, StationPosition: 1},
		{TeamID: 31, StationPosition: 2},
	}
	require.NoError(t, svc.fillSlot(ctx, nil, snap, "m-3", "m-2", secondWinner))
	assert.Equal(t, secondWinner, storedAllianceByID(t, matchRepo, "m-3-blue").Teams)
}

func TestFillSlotSeatsWinnerAfterBye(t *testing.T) {
	matchRepo := &fakeMatchRepo{}
	svc := newStageServiceForTest(newFakeStageRepo(), matchRepo)
	ctx := context.Background()

	// Three alliances: the third draws a bye into the final m-2, so m-1 is
	// the final's only feeder and its winner takes the open slot.
	snap := generateAndPersist(t, svc, "st-1", 3, 2)
	require.Len(t, snap.Matches, 2)

	final := snap.MatchByID("m-2")
	require.NotNil(t, final)
	assert.False(t, final.Alliances[0].Resolved())
	assert.True(t, final.Alliances[1].Resolved())

	winner := []models.AllianceTeam{
		{TeamID: 10, StationPosition: 1},
		{TeamID: 11, StationPosition: 2},
	}
	require.NoError(t, svc.fillSlot(ctx, nil, snap, "m-2", "m-1", winner))

	assert.Equal(t, winner, storedAllianceByID(t, matchRepo, "m-2-red").Teams)
	// The bye side seated at generation time is untouched.
	blue := storedAllianceByID(t, matchRepo, "m-2-blue")
	require.Len(t, blue.Teams, 2)
	assert.Equal(t, 30, blue.Teams[0].TeamID)
}

func TestPairSwissRoundRejectsWrongKind(t *testing.T) {
	stage := &models.Stage{ID: "st-1", Name: "Playoffs", Kind: models.StageElimination, TeamsPerAlliance: 2}
	svc := newStageServiceForTest(newFakeStageRepo(stage), &fakeMatchRepo{})

	_, err := svc.PairNextSwissRound(context.Background(), "st-1")
	assert.ErrorIs(t, err, ErrStageNotSwiss)
}

func TestPairSwissRoundNeedsRosters(t *testing.T) {
	stage := &models.Stage{ID: "st-1", Name: "Quals", Kind: models.StageSwiss, TeamsPerAlliance: 2}
	svc := newStageServiceForTest(newFakeStageRepo(stage), &fakeMatchRepo{})

	_, err := svc.PairNextSwissRound(context.Background(), "st-1")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestRecordResultRejectsInvalidWinner(t *testing.T) {
	svc := newStageServiceForTest(newFakeStageRepo(), &fakeMatchRepo{})

	err := svc.RecordResult(context.Background(), "st-1", "m-1", RecordResultInput{WinningAlliance: "GREEN"})
	assert.ErrorIs(t, err, ErrInvalidWinner)
}

func TestRecordResultRejectsFinishedMatch(t *testing.T) {
	stage := &models.Stage{ID: "st-1", Kind: models.StageElimination, TeamsPerAlliance: 2}
	winner := "RED"
	matchRepo := &fakeMatchRepo{
		matches: []*models.StageMatch{{
			ID:              "m-1",
			StageID:         "st-1",
			Status:          "COMPLETED",
			WinningAlliance: &winner,
		}},
	}
	svc := newStageServiceForTest(newFakeStageRepo(stage), matchRepo)

	err := svc.RecordResult(context.Background(), "st-1", "m-1", RecordResultInput{WinningAlliance: "BLUE"})
	assert.ErrorIs(t, err, ErrMatchAlreadyFinished)
}

func TestRecordResultRejectsForeignMatch(t *testing.T) {
	matchRepo := &fakeMatchRepo{
		matches: []*models.StageMatch{{ID: "m-1", StageID: "other", Status: "PENDING"}},
	}
	svc := newStageServiceForTest(newFakeStageRepo(), matchRepo)

	err := svc.RecordResult(context.Background(), "st-1", "m-1", RecordResultInput{WinningAlliance: "RED"})
	assert.ErrorIs(t, err, ErrMatchNotFound)
}
