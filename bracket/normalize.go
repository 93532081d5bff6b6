package bracket

import (
	"fmt"
	"sort"
)

// Column is one renderer-neutral vertical slice of a bracket: the matches of
// a single round, in round order.
type Column struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Matches []Match `json:"matches"`
}

// RecordBucket is the Swiss-format alternative grouping: the matches of a
// single win-loss record, resolved the same way as columns.
type RecordBucket struct {
	Record  string  `json:"record"`
	Matches []Match `json:"matches"`
}

// NormalizedBracket is the single renderer-agnostic shape all three stage
// formats reduce to. Buckets is populated only for Swiss stages; Columns is
// always populated. For Swiss the two views cover the same match set.
type NormalizedBracket struct {
	Type    StructureType  `json:"type"`
	Columns []Column       `json:"columns"`
	Buckets []RecordBucket `json:"buckets,omitempty"`
}

// Normalize converts a snapshot's structure into the column/bucket layout.
// It returns nil only for a nil snapshot; malformed input never causes a
// failure here. Match IDs referenced by a round or bucket that do not exist
// in the snapshot are dropped from the output; the validator already flags
// them, and normalization stays best-effort.
func Normalize(snap *Snapshot) *NormalizedBracket {
	if snap == nil {
		return nil
	}

	idx := snap.matchIndex()

	switch st := snap.Structure.(type) {
	case EliminationStructure:
		return &NormalizedBracket{
			Type:    StructureElimination,
			Columns: columnsFromRounds(snap, st.Rounds, idx),
		}
	case SwissStructure:
		return &NormalizedBracket{
			Type:    StructureSwiss,
			Columns: columnsFromRounds(snap, st.Rounds, idx),
			Buckets: bucketsFromRecords(snap, st.Buckets, idx),
		}
	case StandardStructure:
		rounds := st.Rounds
		if len(rounds) == 0 {
			rounds = roundsFromMatchNumbers(snap.Matches)
		}
		return &NormalizedBracket{
			Type:    StructureStandard,
			Columns: columnsFromRounds(snap, rounds, idx),
		}
	default:
		// A snapshot with no structure at all is treated as standard
		// staging grouped by each match's round number.
		return &NormalizedBracket{
			Type:    StructureStandard,
			Columns: columnsFromRounds(snap, roundsFromMatchNumbers(snap.Matches), idx),
		}
	}
}

func columnsFromRounds(snap *Snapshot, rounds []Round, idx map[string]int) []Column {
	columns := make([]Column, 0, len(rounds))
	for _, r := range rounds {
		label := r.Label
		if label == "" {
			label = fmt.Sprintf("Round %d", r.Number)
		}
		col := Column{
			Key:     fmt.Sprintf("round-%d", r.Number),
			Label:   label,
			Matches: resolveMatches(snap, r.MatchIDs, idx),
		}
		columns = append(columns, col)
	}
	return columns
}

func bucketsFromRecords(snap *Snapshot, buckets []Bucket, idx map[string]int) []RecordBucket {
	out := make([]RecordBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, RecordBucket{
			Record:  b.Record,
			Matches: resolveMatches(snap, b.MatchIDs, idx),
		})
	}
	return out
}

func resolveMatches(snap *Snapshot, ids []string, idx map[string]int) []Match {
	matches := make([]Match, 0, len(ids))
	for _, id := range ids {
		if i, ok := idx[id]; ok {
			matches = append(matches, snap.Matches[i])
		}
	}
	return matches
}

// roundsFromMatchNumbers derives a round list for stages that only carry
// round numbers on individual matches. Matches without a round number belong
// to round 1. Rounds come out in ascending numeric order, matches within a
// round in snapshot order.
func roundsFromMatchNumbers(matches []Match) []Round {
	grouped := make(map[int][]string)
	for i := range matches {
		round := 1
		if matches[i].RoundNumber != nil {
			round = *matches[i].RoundNumber
		}
		grouped[round] = append(grouped[round], matches[i].ID)
	}

	numbers := make([]int, 0, len(grouped))
	for n := range grouped {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	rounds := make([]Round, 0, len(numbers))
	for _, n := range numbers {
		rounds = append(rounds, Round{Number: n, MatchIDs: grouped[n]})
	}
	return rounds
}
