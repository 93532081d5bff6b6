package services

import (
	"context"
	"testing"

	"github.com/robostage/backend/bracket"
	"github.com/robostage/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func eliminationStage(id string) *models.Stage {
	return &models.Stage{
		ID:               id,
		TournamentID:     1,
		Name:             "Playoffs",
		Kind:             models.StageElimination,
		TeamsPerAlliance: 2,
		StructureJSON: strPtr(`{"rounds":[
			{"roundNumber":1,"label":"Semifinals","matches":["sf-1","sf-2"]},
			{"roundNumber":2,"label":"Finals","matches":["f-1"]}
		]}`),
	}
}

func storedMatch(id, stageID string, number int) *models.StageMatch {
	return &models.StageMatch{
		ID:          id,
		StageID:     stageID,
		MatchNumber: intPtr(number),
		Status:      "PENDING",
		RoundNumber: intPtr(1),
	}
}

func storedAlliance(id, matchID, color string, teamIDs ...int) *models.StageAlliance {
	alliance := &models.StageAlliance{ID: id, MatchID: matchID, Color: color}
	for i, teamID := range teamIDs {
		number := 1000 + teamID
		alliance.Teams = append(alliance.Teams, models.AllianceTeam{
			AllianceID:      id,
			TeamID:          teamID,
			StationPosition: i + 1,
			TeamNumber:      &number,
			TeamName:        strPtr("Team"),
		})
	}
	return alliance
}

func TestBuildSnapshotMapsStoredRows(t *testing.T) {
	stageRepo := newFakeStageRepo(eliminationStage("st-1"))
	matchRepo := &fakeMatchRepo{
		matches: []*models.StageMatch{
			storedMatch("sf-1", "st-1", 1),
			storedMatch("sf-2", "st-1", 2),
		},
		alliances: []*models.StageAlliance{
			storedAlliance("a-red", "sf-1", "RED", 7, 8),
			storedAlliance("a-blue", "sf-1", "BLUE", 9, 10),
		},
	}
	svc := NewBracketService(stageRepo, matchRepo)

	snap, err := svc.BuildSnapshot(context.Background(), "st-1")
	require.NoError(t, err)

	assert.Len(t, snap.Matches, 2)
	assert.Equal(t, 2, snap.TeamsPerAlliance)

	m := snap.MatchByID("sf-1")
	require.NotNil(t, m)
	require.Len(t, m.Alliances, 2)

	red := m.Alliance(bracket.ColorRed)
	require.NotNil(t, red)
	assert.Equal(t, "a-red", red.ID)
	require.Len(t, red.Teams, 2)
	assert.Equal(t, "7", red.Teams[0].TeamID)
	assert.Equal(t, 1007, *red.Teams[0].TeamNumber)

	st, ok := snap.Structure.(bracket.EliminationStructure)
	require.True(t, ok)
	require.Len(t, st.Rounds, 2)
	assert.Equal(t, "Finals", st.Rounds[1].Label)
}

func TestBuildSnapshotUnknownStage(t *testing.T) {
	svc := NewBracketService(newFakeStageRepo(), &fakeMatchRepo{})

	_, err := svc.BuildSnapshot(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrStageNotFound)
}

func TestBuildSnapshotDerivesSwissBuckets(t *testing.T) {
	stage := &models.Stage{
		ID:               "sw-1",
		Kind:             models.StageSwiss,
		TeamsPerAlliance: 2,
		StructureJSON:    strPtr(`{"rounds":[{"roundNumber":1,"label":"Round 1","matches":["m-1","m-2"]}]}`),
	}
	m1 := storedMatch("m-1", "sw-1", 1)
	m1.RecordBucket = strPtr("1-0")
	m2 := storedMatch("m-2", "sw-1", 2)
	m2.RecordBucket = strPtr("0-1")

	svc := NewBracketService(newFakeStageRepo(stage), &fakeMatchRepo{
		matches: []*models.StageMatch{m1, m2},
	})

	snap, err := svc.BuildSnapshot(context.Background(), "sw-1")
	require.NoError(t, err)

	st, ok := snap.Structure.(bracket.SwissStructure)
	require.True(t, ok)
	require.Len(t, st.Buckets, 2)
	assert.Equal(t, "1-0", st.Buckets[0].Record)
	assert.Equal(t, []string{"m-1"}, st.Buckets[0].MatchIDs)
}

func TestAnalysesRunOverAssembledSnapshot(t *testing.T) {
	stageRepo := newFakeStageRepo(eliminationStage("st-1"))
	matchRepo := &fakeMatchRepo{
		matches: []*models.StageMatch{
			storedMatch("sf-1", "st-1", 1),
		},
		alliances: []*models.StageAlliance{
			storedAlliance("a-red", "sf-1", "RED", 1, 2),
			storedAlliance("a-blue", "sf-1", "BLUE", 3, 4),
		},
	}
	svc := NewBracketService(stageRepo, matchRepo)
	ctx := context.Background()

	validation, err := svc.Validation(ctx, "st-1")
	require.NoError(t, err)
	assert.True(t, validation.Valid)

	stats, err := svc.Stats(ctx, "st-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalMatches)
	assert.Equal(t, 2, stats.RoundCount)

	normalized, err := svc.Normalized(ctx, "st-1")
	require.NoError(t, err)
	require.NotNil(t, normalized)
	assert.Len(t, normalized.Columns, 2)

	rendered, err := svc.RenderFormat(ctx, "st-1")
	require.NoError(t, err)
	assert.Len(t, rendered, 1)
}
