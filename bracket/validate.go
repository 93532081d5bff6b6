package bracket

import (
	"fmt"
	"sort"
	"strconv"
)

// ValidationResult is the advisory outcome of a consistency scan. Valid is
// true iff Issues is empty.
type ValidationResult struct {
	Valid  bool     `json:"isValid"`
	Issues []string `json:"issues"`
}

// Validate checks the snapshot's structural invariants and reports every
// violation as a human-readable issue. It never aborts the scan: all problems
// are collected, and downstream analysis keeps working on the same snapshot
// regardless of the outcome.
//
// Issue order follows match iteration order, then check order (alliance
// count, team counts, station positions, advancement references), so output
// is stable for identical input.
func Validate(snap *Snapshot) ValidationResult {
	issues := make([]string, 0)
	if snap == nil {
		return ValidationResult{Valid: true, Issues: issues}
	}

	idx := snap.matchIndex()
	checkLinks := snap.Structure != nil && snap.Structure.Type() == StructureElimination

	for i := range snap.Matches {
		m := &snap.Matches[i]
		label := matchLabel(m, i)

		if len(m.Alliances) != 2 {
			issues = append(issues, fmt.Sprintf("Match %s does not have exactly 2 alliances", label))
		} else {
			for j := range m.Alliances {
				a := &m.Alliances[j]
				if !a.Resolved() {
					continue
				}
				if len(a.Teams) != snap.TeamsPerAlliance {
					issues = append(issues, fmt.Sprintf(
						"Match %s: %s alliance has %d teams, expected %d",
						label, a.Color, len(a.Teams), snap.TeamsPerAlliance))
				}
				if !contiguousStations(a.Teams) {
					issues = append(issues, fmt.Sprintf(
						"Match %s: %s alliance has invalid station positions %v",
						label, a.Color, stationPositions(a.Teams)))
				}
			}
		}

		// Dangling advancement references only carry meaning for
		// elimination stages; other formats may reuse the fields freely.
		if checkLinks {
			if m.FeedsInto != nil {
				if _, ok := idx[*m.FeedsInto]; !ok {
					issues = append(issues, fmt.Sprintf(
						"Match %s advances its winner to unknown match %q", label, *m.FeedsInto))
				}
			}
			if m.LoserFeedsInto != nil {
				if _, ok := idx[*m.LoserFeedsInto]; !ok {
					issues = append(issues, fmt.Sprintf(
						"Match %s advances its loser to unknown match %q", label, *m.LoserFeedsInto))
				}
			}
		}
	}

	return ValidationResult{Valid: len(issues) == 0, Issues: issues}
}

// matchLabel names a match in issue text: its match number when present,
// otherwise its 1-based position in the snapshot's match list.
func matchLabel(m *Match, index int) string {
	if m.MatchNumber != nil {
		return strconv.Itoa(*m.MatchNumber)
	}
	return "#" + strconv.Itoa(index+1)
}

func stationPositions(teams []TeamSlot) []int {
	positions := make([]int, len(teams))
	for i, t := range teams {
		positions[i] = t.StationPosition
	}
	return positions
}

// contiguousStations reports whether the alliance's station positions, taken
// as a set, are exactly 1..len(teams). Order does not matter; duplicates or
// out-of-range values fail.
func contiguousStations(teams []TeamSlot) bool {
	positions := stationPositions(teams)
	sort.Ints(positions)
	for i, p := range positions {
		if p != i+1 {
			return false
		}
	}
	return true
}
