package bracket

import "sort"

// FindSourceMatch resolves which upstream match populates the given alliance
// slot of the target match: the match whose winner advances into that slot.
// It is used to label unresolved slots ("Winner of Match N") before an
// outcome exists.
//
// The feeder set is collected by scanning for matches whose winner path leads
// to the target. With fewer than two feeders no deterministic assignment can
// be inferred and the result is nil; that is a normal early-bracket state,
// not a failure. With two feeders, the lower-ordered one fills the RED slot
// and the other fills BLUE. Behavior with more than two feeders is undefined
// upstream; the same positional convention is applied without further
// interpretation.
func FindSourceMatch(snap *Snapshot, targetMatchID string, color AllianceColor) *Match {
	if snap == nil {
		return nil
	}

	sources := make([]*Match, 0, 2)
	for i := range snap.Matches {
		m := &snap.Matches[i]
		if m.FeedsInto != nil && *m.FeedsInto == targetMatchID {
			sources = append(sources, m)
		}
	}
	if len(sources) < 2 {
		return nil
	}

	sort.Slice(sources, func(i, j int) bool {
		return feederBefore(sources[i], sources[j])
	})

	switch color {
	case ColorRed:
		return sources[0]
	case ColorBlue:
		return sources[1]
	}
	return nil
}

// feederBefore is the total order over feeder matches: numeric match number
// when both sides have one, match ID otherwise. The ID comparison also breaks
// equal match numbers so the order is total and reproducible.
func feederBefore(a, b *Match) bool {
	if a.MatchNumber != nil && b.MatchNumber != nil {
		if *a.MatchNumber != *b.MatchNumber {
			return *a.MatchNumber < *b.MatchNumber
		}
	}
	return a.ID < b.ID
}
