package bracket

// Stats holds derived aggregate statistics over a snapshot. They are advisory
// metadata for layout sizing decisions and never affect validation outcomes.
type Stats struct {
	TotalMatches      int  `json:"totalMatches"`
	CompletedMatches  int  `json:"completedMatches"`
	TeamsPerAlliance  int  `json:"teamsPerAlliance"`
	MaxTeamsInMatch   int  `json:"maxTeamsInMatch"`
	DoubleElimination bool `json:"hasDoubleElimination"`
	RoundCount        int  `json:"roundCount"`
}

// Analyze computes the snapshot's aggregate statistics in a single pass over
// its matches.
func Analyze(snap *Snapshot) Stats {
	if snap == nil {
		return Stats{}
	}

	stats := Stats{
		TotalMatches:     len(snap.Matches),
		TeamsPerAlliance: snap.TeamsPerAlliance,
	}

	isElimination := snap.Structure != nil && snap.Structure.Type() == StructureElimination

	maxMatchRound := 0
	for i := range snap.Matches {
		m := &snap.Matches[i]
		if m.Status == StatusCompleted {
			stats.CompletedMatches++
		}

		teams := 0
		for j := range m.Alliances {
			teams += len(m.Alliances[j].Teams)
		}
		if teams > stats.MaxTeamsInMatch {
			stats.MaxTeamsInMatch = teams
		}

		if isElimination && m.LoserFeedsInto != nil {
			stats.DoubleElimination = true
		}

		round := 1
		if m.RoundNumber != nil {
			round = *m.RoundNumber
		}
		if round > maxMatchRound {
			maxMatchRound = round
		}
	}

	switch st := snap.Structure.(type) {
	case EliminationStructure:
		stats.RoundCount = len(st.Rounds)
	case SwissStructure:
		stats.RoundCount = len(st.Rounds)
	default:
		// Standard staging carries no authoritative round list; the
		// highest round number observed on a match stands in for it.
		if len(snap.Matches) > 0 {
			stats.RoundCount = maxMatchRound
		}
	}

	return stats
}
