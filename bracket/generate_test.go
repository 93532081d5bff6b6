package bracket

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(count, teamsPer int) []SeededAlliance {
	alliances := make([]SeededAlliance, 0, count)
	for i := 0; i < count; i++ {
		teams := make([]TeamSlot, 0, teamsPer)
		for j := 0; j < teamsPer; j++ {
			number := (i+1)*10 + j
			teams = append(teams, TeamSlot{
				TeamID:          fmt.Sprintf("t-%d", number),
				TeamNumber:      intPtr(number),
				StationPosition: j + 1,
			})
		}
		alliances = append(alliances, SeededAlliance{Seed: i + 1, Teams: teams})
	}
	return alliances
}

func TestGenerateEliminationFourAlliances(t *testing.T) {
	snap, err := GenerateElimination(seeded(4, 2), 2, nil)
	require.NoError(t, err)

	require.Len(t, snap.Matches, 3)
	st, ok := snap.Structure.(EliminationStructure)
	require.True(t, ok)
	require.Len(t, st.Rounds, 2)
	assert.Len(t, st.Rounds[0].MatchIDs, 2)
	assert.Len(t, st.Rounds[1].MatchIDs, 1)
	assert.Equal(t, "Semifinals", st.Rounds[0].Label)
	assert.Equal(t, "Finals", st.Rounds[1].Label)

	finalID := st.Rounds[1].MatchIDs[0]
	for _, id := range st.Rounds[0].MatchIDs {
		m := snap.MatchByID(id)
		require.NotNil(t, m)
		require.NotNil(t, m.FeedsInto)
		assert.Equal(t, finalID, *m.FeedsInto)
	}

	// The final's slots are unresolved but both upstream sources resolve.
	final := snap.MatchByID(finalID)
	assert.False(t, final.Alliance(ColorRed).Resolved())
	assert.NotNil(t, FindSourceMatch(snap, finalID, ColorRed))
	assert.NotNil(t, FindSourceMatch(snap, finalID, ColorBlue))

	// A freshly generated bracket is always internally consistent.
	result := Validate(snap)
	assert.True(t, result.Valid, result.Issues)
}

func TestGenerateEliminationWithByes(t *testing.T) {
	// Three alliances pad to a four slot bracket: one semifinal plus a bye,
	// so only two matches are created and the bye seed waits in the final.
	snap, err := GenerateElimination(seeded(3, 2), 2, nil)
	require.NoError(t, err)

	require.Len(t, snap.Matches, 2)
	st := snap.Structure.(EliminationStructure)
	require.Len(t, st.Rounds, 2)

	final := snap.MatchByID(st.Rounds[1].MatchIDs[0])
	require.NotNil(t, final)

	resolvedSides := 0
	for _, color := range []AllianceColor{ColorRed, ColorBlue} {
		if final.Alliance(color).Resolved() {
			resolvedSides++
		}
	}
	assert.Equal(t, 1, resolvedSides)
	assert.True(t, Validate(snap).Valid)
}

func TestGenerateEliminationCustomIDs(t *testing.T) {
	counter := 0
	newID := func() string {
		counter++
		return fmt.Sprintf("match-%03d", counter)
	}

	snap, err := GenerateElimination(seeded(4, 2), 2, newID)
	require.NoError(t, err)
	require.Len(t, snap.Matches, 3)
	assert.Equal(t, "match-001", snap.Matches[0].ID)
	assert.True(t, Validate(snap).Valid)
}

func TestGenerateEliminationTooFewAlliances(t *testing.T) {
	_, err := GenerateElimination(seeded(1, 2), 2, nil)
	assert.ErrorIs(t, err, ErrNotEnoughAlliances)
}

func TestDeriveSwissBuckets(t *testing.T) {
	m1 := playedMatch("m1", 1, 2, WinnerRed)
	m1.RecordBucket = strPtr("1-0")
	m2 := playedMatch("m2", 2, 2, WinnerBlue)
	m2.RecordBucket = strPtr("0-1")
	m3 := pendingMatch("m3", 3)
	m3.RecordBucket = strPtr("1-0")
	m4 := pendingMatch("m4", 4) // no record, excluded from buckets

	snap := &Snapshot{
		TeamsPerAlliance: 2,
		Structure:        SwissStructure{},
		Matches:          []Match{m1, m2, m3, m4},
	}

	buckets := DeriveSwissBuckets(snap)
	require.Len(t, buckets, 2)
	assert.Equal(t, "1-0", buckets[0].Record)
	assert.Equal(t, []string{"m1", "m3"}, buckets[0].MatchIDs)
	assert.Equal(t, "0-1", buckets[1].Record)
	assert.Equal(t, []string{"m2"}, buckets[1].MatchIDs)
}
