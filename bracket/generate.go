package bracket

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrNotEnoughAlliances is returned when a bracket is requested for fewer
// than two seeded alliances.
var ErrNotEnoughAlliances = errors.New("at least 2 alliances are required to generate a bracket")

// SeededAlliance is a bracket generation input: a fully rostered alliance and
// its seed position.
type SeededAlliance struct {
	Seed  int
	Teams []TeamSlot
}

// eliminationNode is one slot in the round currently being paired: either a
// resolved alliance, a reference to the match whose winner fills the slot, or
// a bye placeholder used to pad the field to a power of two.
type eliminationNode struct {
	teams      []TeamSlot
	srcMatchID *string
	bye        bool
}

// GenerateElimination builds a single-elimination snapshot skeleton for the
// given seeded alliances: pending matches round by round, winner advancement
// links between them, and the elimination round structure. Alliances that
// draw a bye are carried directly into the next round without a match being
// created for the bye.
//
// newID produces match IDs; passing nil falls back to positional R<round>M<n>
// identifiers, which are unique within the generated snapshot.
func GenerateElimination(alliances []SeededAlliance, teamsPerAlliance int, newID func() string) (*Snapshot, error) {
	n := len(alliances)
	if n < 2 {
		return nil, ErrNotEnoughAlliances
	}

	seeded := make([]SeededAlliance, n)
	copy(seeded, alliances)
	sort.Slice(seeded, func(i, j int) bool { return seeded[i].Seed < seeded[j].Seed })

	numRounds := int(math.Ceil(math.Log2(float64(n))))
	bracketSize := 1 << uint(numRounds)

	current := make([]*eliminationNode, bracketSize)
	for i := 0; i < n; i++ {
		current[i] = &eliminationNode{teams: seeded[i].Teams}
	}
	for i := n; i < bracketSize; i++ {
		current[i] = &eliminationNode{bye: true}
	}

	snap := &Snapshot{
		Matches:          make([]Match, 0, bracketSize-1),
		TeamsPerAlliance: teamsPerAlliance,
	}
	matchIdx := make(map[string]int)
	rounds := make([]Round, 0, numRounds)
	matchNumber := 0

	for r := 1; r <= numRounds; r++ {
		next := make([]*eliminationNode, 0, len(current)/2)
		round := Round{Number: r, Label: roundLabel(r, numRounds)}

		for i := 0; i < len(current); i += 2 {
			node1, node2 := current[i], current[i+1]

			switch {
			case node1.bye && node2.bye:
				next = append(next, &eliminationNode{bye: true})
				continue
			case node1.teams != nil && node2.bye:
				next = append(next, &eliminationNode{teams: node1.teams})
				continue
			case node2.teams != nil && node1.bye:
				next = append(next, &eliminationNode{teams: node2.teams})
				continue
			case node1.bye || node2.bye:
				// A placeholder slot paired against a bye: the pending
				// upstream winner advances without playing.
				if node1.bye {
					node1 = node2
				}
				next = append(next, node1)
				continue
			}

			matchNumber++
			id := ""
			if newID != nil {
				id = newID()
			} else {
				id = fmt.Sprintf("R%dM%d", r, len(round.MatchIDs)+1)
			}

			num := matchNumber
			slot := len(round.MatchIDs) + 1
			roundNum := r
			m := Match{
				ID:          id,
				MatchNumber: &num,
				Status:      StatusPending,
				RoundNumber: &roundNum,
				BracketSlot: &slot,
				Alliances: []Alliance{
					{ID: id + "-red", Color: ColorRed, Teams: node1.teams},
					{ID: id + "-blue", Color: ColorBlue, Teams: node2.teams},
				},
			}

			if node1.srcMatchID != nil {
				snap.Matches[matchIdx[*node1.srcMatchID]].FeedsInto = &m.ID
			}
			if node2.srcMatchID != nil {
				snap.Matches[matchIdx[*node2.srcMatchID]].FeedsInto = &m.ID
			}

			matchIdx[id] = len(snap.Matches)
			snap.Matches = append(snap.Matches, m)
			round.MatchIDs = append(round.MatchIDs, id)
			next = append(next, &eliminationNode{srcMatchID: &id})
		}

		if len(round.MatchIDs) > 0 {
			rounds = append(rounds, round)
		}
		current = next
	}

	snap.Structure = EliminationStructure{Rounds: rounds}
	return snap, nil
}

// roundLabel names elimination rounds from the end of the bracket backwards.
func roundLabel(round, total int) string {
	switch total - round {
	case 0:
		return "Finals"
	case 1:
		return "Semifinals"
	case 2:
		return "Quarterfinals"
	default:
		return fmt.Sprintf("Round %d", round)
	}
}

// DeriveSwissBuckets rebuilds the record-bucket view of a Swiss stage from
// the recordBucket carried on each match, for snapshots whose structure
// arrived without one. Buckets come out in order of first appearance, which
// follows match order and is therefore stable.
func DeriveSwissBuckets(snap *Snapshot) []Bucket {
	if snap == nil {
		return nil
	}

	order := make([]string, 0)
	grouped := make(map[string][]string)
	for i := range snap.Matches {
		m := &snap.Matches[i]
		if m.RecordBucket == nil || *m.RecordBucket == "" {
			continue
		}
		if _, ok := grouped[*m.RecordBucket]; !ok {
			order = append(order, *m.RecordBucket)
		}
		grouped[*m.RecordBucket] = append(grouped[*m.RecordBucket], m.ID)
	}

	buckets := make([]Bucket, 0, len(order))
	for _, record := range order {
		buckets = append(buckets, Bucket{Record: record, MatchIDs: grouped[record]})
	}
	return buckets
}
