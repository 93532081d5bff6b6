package bracket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feederSnapshot(feeders ...Match) *Snapshot {
	matches := append([]Match{}, feeders...)
	matches = append(matches, pendingMatch("final", 99))
	return &Snapshot{TeamsPerAlliance: 2, Structure: EliminationStructure{}, Matches: matches}
}

func TestFindSourceMatchTwoFeeders(t *testing.T) {
	a := playedMatch("a", 1, 2, WinnerRed)
	a.FeedsInto = strPtr("final")
	b := playedMatch("b", 2, 2, WinnerBlue)
	b.FeedsInto = strPtr("final")

	snap := feederSnapshot(a, b)

	red := FindSourceMatch(snap, "final", ColorRed)
	require.NotNil(t, red)
	assert.Equal(t, "a", red.ID)

	blue := FindSourceMatch(snap, "final", ColorBlue)
	require.NotNil(t, blue)
	assert.Equal(t, "b", blue.ID)
}

func TestFindSourceMatchOrderIndependentOfListing(t *testing.T) {
	// Same bracket, feeders listed in reverse: the slot assignment must not
	// change, since it follows match numbers, not snapshot order.
	a := playedMatch("a", 1, 2, WinnerRed)
	a.FeedsInto = strPtr("final")
	b := playedMatch("b", 2, 2, WinnerBlue)
	b.FeedsInto = strPtr("final")

	snap := feederSnapshot(b, a)

	assert.Equal(t, "a", FindSourceMatch(snap, "final", ColorRed).ID)
	assert.Equal(t, "b", FindSourceMatch(snap, "final", ColorBlue).ID)
}

func TestFindSourceMatchSingleFeeder(t *testing.T) {
	a := playedMatch("a", 1, 2, WinnerRed)
	a.FeedsInto = strPtr("final")

	snap := feederSnapshot(a)

	assert.Nil(t, FindSourceMatch(snap, "final", ColorRed))
	assert.Nil(t, FindSourceMatch(snap, "final", ColorBlue))
}

func TestFindSourceMatchLexicalFallback(t *testing.T) {
	// Without match numbers the total order falls back to match IDs.
	a := Match{ID: "qual-10", Status: StatusCompleted, FeedsInto: strPtr("final"),
		Alliances: []Alliance{emptyAlliance("qual-10", ColorRed), emptyAlliance("qual-10", ColorBlue)}}
	b := Match{ID: "qual-03", Status: StatusCompleted, FeedsInto: strPtr("final"),
		Alliances: []Alliance{emptyAlliance("qual-03", ColorRed), emptyAlliance("qual-03", ColorBlue)}}

	snap := feederSnapshot(a, b)

	assert.Equal(t, "qual-03", FindSourceMatch(snap, "final", ColorRed).ID)
	assert.Equal(t, "qual-10", FindSourceMatch(snap, "final", ColorBlue).ID)
}

func TestFindSourceMatchEqualNumbersBreakOnID(t *testing.T) {
	a := playedMatch("z", 5, 2, WinnerRed)
	a.FeedsInto = strPtr("final")
	b := playedMatch("y", 5, 2, WinnerBlue)
	b.FeedsInto = strPtr("final")

	snap := feederSnapshot(a, b)

	assert.Equal(t, "y", FindSourceMatch(snap, "final", ColorRed).ID)
	assert.Equal(t, "z", FindSourceMatch(snap, "final", ColorBlue).ID)
}

func TestFindSourceMatchNilSnapshot(t *testing.T) {
	assert.Nil(t, FindSourceMatch(nil, "final", ColorRed))
}
