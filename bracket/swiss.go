package bracket

import (
	"fmt"
	"sort"
	"strings"
)

// swissEntry is one competing roster in a Swiss stage with its running
// win-loss record. Rosters are identified by their team IDs, so the same
// alliance keeps one record across matches even though each match stores its
// own alliance rows.
type swissEntry struct {
	key    string
	teams  []TeamSlot
	wins   int
	losses int
}

func (e *swissEntry) record() string {
	return fmt.Sprintf("%d-%d", e.wins, e.losses)
}

// PairSwissRound derives the next Swiss round from the results recorded so
// far: rosters are ranked by record and paired top-down within it, so each
// new match meets opponents of equal or adjacent standing. The input snapshot
// is not modified; the returned snapshot carries the existing matches plus
// the new pending round, with the Swiss structure's rounds and buckets
// extended to match. With an odd roster count the lowest-ranked roster sits
// the round out.
//
// newID produces match IDs; passing nil falls back to positional S<round>M<n>
// identifiers. At least two distinct rosters are required.
func PairSwissRound(snap *Snapshot, newID func() string) (*Snapshot, error) {
	if snap == nil {
		return nil, ErrNotEnoughAlliances
	}

	entries := collectSwissEntries(snap)
	if len(entries) < 2 {
		return nil, ErrNotEnoughAlliances
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].wins != entries[j].wins {
			return entries[i].wins > entries[j].wins
		}
		if entries[i].losses != entries[j].losses {
			return entries[i].losses < entries[j].losses
		}
		return entries[i].key < entries[j].key
	})

	roundNumber := nextRoundNumber(snap)
	matchNumber := maxMatchNumber(snap)

	out := &Snapshot{
		Matches:          append([]Match(nil), snap.Matches...),
		TeamsPerAlliance: snap.TeamsPerAlliance,
	}

	round := Round{Number: roundNumber, Label: fmt.Sprintf("Round %d", roundNumber)}
	for i := 0; i+1 < len(entries); i += 2 {
		matchNumber++
		id := ""
		if newID != nil {
			id = newID()
		} else {
			id = fmt.Sprintf("S%dM%d", roundNumber, len(round.MatchIDs)+1)
		}

		num := matchNumber
		rn := roundNumber
		record := entries[i].record()
		out.Matches = append(out.Matches, Match{
			ID:           id,
			MatchNumber:  &num,
			Status:       StatusPending,
			RoundNumber:  &rn,
			RecordBucket: &record,
			Alliances: []Alliance{
				{ID: id + "-red", Color: ColorRed, Teams: entries[i].teams},
				{ID: id + "-blue", Color: ColorBlue, Teams: entries[i+1].teams},
			},
		})
		round.MatchIDs = append(round.MatchIDs, id)
	}

	rounds := existingRounds(snap)
	rounds = append(rounds, round)
	out.Structure = SwissStructure{Rounds: rounds, Buckets: DeriveSwissBuckets(out)}
	return out, nil
}

// collectSwissEntries walks every alliance in the snapshot, keeping one entry
// per distinct roster and tallying its record from completed matches. Ties
// count toward neither side.
func collectSwissEntries(snap *Snapshot) []*swissEntry {
	order := make([]string, 0)
	byKey := make(map[string]*swissEntry)

	for i := range snap.Matches {
		m := &snap.Matches[i]
		for j := range m.Alliances {
			a := &m.Alliances[j]
			if !a.Resolved() {
				continue
			}
			key := rosterKey(a.Teams)
			entry, ok := byKey[key]
			if !ok {
				entry = &swissEntry{key: key, teams: a.Teams}
				byKey[key] = entry
				order = append(order, key)
			}

			if m.Status != StatusCompleted || m.WinningAlliance == nil {
				continue
			}
			switch *m.WinningAlliance {
			case WinnerRed:
				if a.Color == ColorRed {
					entry.wins++
				} else {
					entry.losses++
				}
			case WinnerBlue:
				if a.Color == ColorBlue {
					entry.wins++
				} else {
					entry.losses++
				}
			}
		}
	}

	entries := make([]*swissEntry, 0, len(order))
	for _, key := range order {
		entries = append(entries, byKey[key])
	}
	return entries
}

func rosterKey(teams []TeamSlot) string {
	ids := make([]string, 0, len(teams))
	for _, slot := range teams {
		ids = append(ids, slot.TeamID)
	}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

func existingRounds(snap *Snapshot) []Round {
	switch st := snap.Structure.(type) {
	case SwissStructure:
		return append([]Round(nil), st.Rounds...)
	case EliminationStructure:
		return append([]Round(nil), st.Rounds...)
	case StandardStructure:
		return append([]Round(nil), st.Rounds...)
	default:
		return nil
	}
}

func nextRoundNumber(snap *Snapshot) int {
	max := 0
	for _, r := range existingRounds(snap) {
		if r.Number > max {
			max = r.Number
		}
	}
	for i := range snap.Matches {
		if rn := snap.Matches[i].RoundNumber; rn != nil && *rn > max {
			max = *rn
		}
	}
	return max + 1
}

func maxMatchNumber(snap *Snapshot) int {
	max := 0
	for i := range snap.Matches {
		if n := snap.Matches[i].MatchNumber; n != nil && *n > max {
			max = *n
		}
	}
	return max
}
