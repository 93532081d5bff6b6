package bracket

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roster(teamID string) []TeamSlot {
	return []TeamSlot{{TeamID: teamID, StationPosition: 1}}
}

func swissPlayed(id string, number, round int, red, blue []TeamSlot, winner Winner) Match {
	return Match{
		ID:              id,
		MatchNumber:     intPtr(number),
		Status:          StatusCompleted,
		RoundNumber:     intPtr(round),
		WinningAlliance: winnerPtr(winner),
		Alliances: []Alliance{
			{ID: id + "-red", Color: ColorRed, Teams: red},
			{ID: id + "-blue", Color: ColorBlue, Teams: blue},
		},
	}
}

func swissRoundOne() *Snapshot {
	return &Snapshot{
		Matches: []Match{
			swissPlayed("q-1", 1, 1, roster("a"), roster("b"), WinnerRed),
			swissPlayed("q-2", 2, 1, roster("c"), roster("d"), WinnerRed),
		},
		Structure: SwissStructure{
			Rounds: []Round{{Number: 1, Label: "Round 1", MatchIDs: []string{"q-1", "q-2"}}},
		},
		TeamsPerAlliance: 1,
	}
}

func TestPairSwissRoundPairsByRecord(t *testing.T) {
	snap := swissRoundOne()

	next, err := PairSwissRound(snap, nil)
	require.NoError(t, err)
	require.Len(t, next.Matches, 4)

	winners := next.Matches[2]
	assert.Equal(t, "1-0", *winners.RecordBucket)
	assert.Equal(t, "a", winners.Alliances[0].Teams[0].TeamID)
	assert.Equal(t, "c", winners.Alliances[1].Teams[0].TeamID)
	assert.Equal(t, StatusPending, winners.Status)
	assert.Equal(t, 2, *winners.RoundNumber)
	assert.Equal(t, 3, *winners.MatchNumber)

	losers := next.Matches[3]
	assert.Equal(t, "0-1", *losers.RecordBucket)
	assert.Equal(t, "b", losers.Alliances[0].Teams[0].TeamID)
	assert.Equal(t, "d", losers.Alliances[1].Teams[0].TeamID)

	st, ok := next.Structure.(SwissStructure)
	require.True(t, ok)
	require.Len(t, st.Rounds, 2)
	assert.Equal(t, "Round 2", st.Rounds[1].Label)
	assert.Len(t, st.Rounds[1].MatchIDs, 2)
}

func TestPairSwissRoundLeavesInputUntouched(t *testing.T) {
	snap := swissRoundOne()

	_, err := PairSwissRound(snap, nil)
	require.NoError(t, err)

	assert.Len(t, snap.Matches, 2)
	st := snap.Structure.(SwissStructure)
	assert.Len(t, st.Rounds, 1)
}

func TestPairSwissRoundOddRosterSitsOut(t *testing.T) {
	snap := &Snapshot{
		Matches: []Match{
			swissPlayed("q-1", 1, 1, roster("a"), roster("b"), WinnerRed),
			{
				ID:              "q-2",
				MatchNumber:     intPtr(2),
				Status:          StatusCompleted,
				RoundNumber:     intPtr(1),
				WinningAlliance: winnerPtr(WinnerRed),
				Alliances: []Alliance{
					{ID: "q-2-red", Color: ColorRed, Teams: roster("c")},
					{ID: "q-2-blue", Color: ColorBlue},
				},
			},
		},
		TeamsPerAlliance: 1,
	}

	next, err := PairSwissRound(snap, nil)
	require.NoError(t, err)

	// a and c are 1-0 and pair up; b at 0-1 has no opponent this round.
	require.Len(t, next.Matches, 3)
	paired := next.Matches[2]
	assert.Equal(t, "a", paired.Alliances[0].Teams[0].TeamID)
	assert.Equal(t, "c", paired.Alliances[1].Teams[0].TeamID)
}

func TestPairSwissRoundRebuildsBuckets(t *testing.T) {
	next, err := PairSwissRound(swissRoundOne(), nil)
	require.NoError(t, err)

	st := next.Structure.(SwissStructure)
	records := make([]string, 0, len(st.Buckets))
	for _, b := range st.Buckets {
		records = append(records, b.Record)
	}
	assert.Equal(t, []string{"1-0", "0-1"}, records)
}

func TestPairSwissRoundCustomIDs(t *testing.T) {
	n := 0
	newID := func() string {
		n++
		return fmt.Sprintf("uuid-%d", n)
	}

	next, err := PairSwissRound(swissRoundOne(), newID)
	require.NoError(t, err)
	assert.Equal(t, "uuid-1", next.Matches[2].ID)
	assert.Equal(t, "uuid-2", next.Matches[3].ID)
}

func TestPairSwissRoundNeedsTwoRosters(t *testing.T) {
	_, err := PairSwissRound(nil, nil)
	assert.ErrorIs(t, err, ErrNotEnoughAlliances)

	snap := &Snapshot{Matches: []Match{pendingMatch("m-1", 1)}}
	_, err = PairSwissRound(snap, nil)
	assert.ErrorIs(t, err, ErrNotEnoughAlliances)
}
