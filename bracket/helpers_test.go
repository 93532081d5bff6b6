package bracket

import "fmt"

func intPtr(v int) *int          { return &v }
func strPtr(v string) *string    { return &v }
func winnerPtr(w Winner) *Winner { return &w }

// fullAlliance builds a resolved alliance with count teams at contiguous
// station positions.
func fullAlliance(matchID string, color AllianceColor, count int, firstNumber int) Alliance {
	teams := make([]TeamSlot, 0, count)
	for i := 0; i < count; i++ {
		number := firstNumber + i
		name := fmt.Sprintf("Team %d", number)
		teams = append(teams, TeamSlot{
			TeamID:          fmt.Sprintf("t-%d", number),
			TeamNumber:      intPtr(number),
			TeamName:        strPtr(name),
			StationPosition: i + 1,
		})
	}
	return Alliance{
		ID:    fmt.Sprintf("%s-%s", matchID, color),
		Color: color,
		Teams: teams,
	}
}

func emptyAlliance(matchID string, color AllianceColor) Alliance {
	return Alliance{
		ID:    fmt.Sprintf("%s-%s", matchID, color),
		Color: color,
	}
}

// playedMatch builds a completed two-alliance match with both sides fully
// rostered.
func playedMatch(id string, number int, teamsPer int, winner Winner) Match {
	return Match{
		ID:              id,
		MatchNumber:     intPtr(number),
		Status:          StatusCompleted,
		WinningAlliance: winnerPtr(winner),
		Alliances: []Alliance{
			fullAlliance(id, ColorRed, teamsPer, number*100),
			fullAlliance(id, ColorBlue, teamsPer, number*100+50),
		},
	}
}

func pendingMatch(id string, number int) Match {
	return Match{
		ID:          id,
		MatchNumber: intPtr(number),
		Status:      StatusPending,
		Alliances: []Alliance{
			emptyAlliance(id, ColorRed),
			emptyAlliance(id, ColorBlue),
		},
	}
}
