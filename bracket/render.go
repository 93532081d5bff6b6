package bracket

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderState is the participant/match state vocabulary of the external
// bracket visualization component. The mapping from backend match statuses is
// fixed; anything unrecognized renders as a match that has not started.
type RenderState string

const (
	RenderDone      RenderState = "DONE"
	RenderScoreDone RenderState = "SCORE_DONE"
	RenderNoParty   RenderState = "NO_PARTY"
	RenderNoShow    RenderState = "NO_SHOW"
)

var renderStateByStatus = map[MatchStatus]RenderState{
	StatusCompleted:  RenderDone,
	StatusInProgress: RenderScoreDone,
	StatusPending:    RenderNoParty,
	StatusCancelled:  RenderNoShow,
}

// RenderParticipant is one alliance of a match in the visualization
// component's participant shape.
type RenderParticipant struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	IsWinner   bool        `json:"isWinner"`
	Status     RenderState `json:"status"`
	ResultText *string     `json:"resultText,omitempty"`
}

// RenderMatch is one match descriptor in the visualization component's input
// format. NextLoserMatchID is present only for double-elimination brackets;
// consumers branch on its presence, so for every other format the field is
// omitted rather than carried as null.
type RenderMatch struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	RoundText        string              `json:"tournamentRoundText"`
	State            RenderState         `json:"state"`
	Participants     []RenderParticipant `json:"participants"`
	NextMatchID      *string             `json:"nextMatchId"`
	NextLoserMatchID *string             `json:"nextLooserMatchId,omitempty"`
}

// ToRenderFormat maps every match of the snapshot into the visualization
// component's match/participant shape, independent of column or bucket
// grouping. Round grouping is reattached by the renderer from the round label
// carried on each descriptor.
func ToRenderFormat(snap *Snapshot) []RenderMatch {
	if snap == nil {
		return nil
	}

	doubleElim := Analyze(snap).DoubleElimination
	roundLabels := roundLabelsByMatch(snap)

	out := make([]RenderMatch, 0, len(snap.Matches))
	for i := range snap.Matches {
		m := &snap.Matches[i]

		state, ok := renderStateByStatus[m.Status]
		if !ok {
			state = RenderNoParty
		}

		rm := RenderMatch{
			ID:           m.ID,
			Name:         matchTitle(m),
			RoundText:    roundLabels[m.ID],
			State:        state,
			Participants: make([]RenderParticipant, 0, 2),
			NextMatchID:  m.FeedsInto,
		}
		if doubleElim {
			rm.NextLoserMatchID = m.LoserFeedsInto
		}

		for _, color := range []AllianceColor{ColorRed, ColorBlue} {
			rm.Participants = append(rm.Participants, renderParticipant(snap, m, color, state))
		}

		out = append(out, rm)
	}
	return out
}

func renderParticipant(snap *Snapshot, m *Match, color AllianceColor, state RenderState) RenderParticipant {
	p := RenderParticipant{
		ID:     m.ID + "-" + strings.ToLower(string(color)),
		Name:   allianceDisplayName(snap, m, color),
		Status: state,
	}

	alliance := m.Alliance(color)
	if alliance != nil {
		if alliance.ID != "" {
			p.ID = alliance.ID
		}
		if alliance.Score != nil {
			text := strconv.Itoa(*alliance.Score)
			p.ResultText = &text
		}
	}

	if m.WinningAlliance != nil && string(*m.WinningAlliance) == string(color) {
		p.IsWinner = true
	}
	return p
}

// allianceDisplayName builds the human-readable side label. Resolved
// alliances list their teams, truncated past three entries for large
// alliances. Unresolved slots are labeled after the upstream match whose
// winner will fill them, falling back to a generic color placeholder when no
// source can be determined yet.
func allianceDisplayName(snap *Snapshot, m *Match, color AllianceColor) string {
	alliance := m.Alliance(color)
	if alliance != nil && alliance.Resolved() {
		names := make([]string, 0, len(alliance.Teams))
		for _, t := range alliance.Teams {
			names = append(names, teamDisplayName(t))
		}
		if len(names) > 3 && snap.TeamsPerAlliance > 2 {
			remainder := len(names) - 3
			return strings.Join(names[:3], ", ") + fmt.Sprintf(" +%d more", remainder)
		}
		return strings.Join(names, ", ")
	}

	if source := FindSourceMatch(snap, m.ID, color); source != nil {
		return "Winner of Match " + matchRef(source)
	}

	if color == ColorBlue {
		return "Blue Alliance"
	}
	return "Red Alliance"
}

func teamDisplayName(t TeamSlot) string {
	switch {
	case t.TeamNumber != nil && t.TeamName != nil:
		return fmt.Sprintf("%d %s", *t.TeamNumber, *t.TeamName)
	case t.TeamNumber != nil:
		return strconv.Itoa(*t.TeamNumber)
	case t.TeamName != nil:
		return *t.TeamName
	default:
		return "Team " + t.TeamID
	}
}

// matchRef names a match for display: its number when present, its ID
// otherwise.
func matchRef(m *Match) string {
	if m.MatchNumber != nil {
		return strconv.Itoa(*m.MatchNumber)
	}
	return m.ID
}

// matchTitle is the overall human-readable heading for a match. A Swiss
// record bucket takes precedence as a prefix when the match carries one.
func matchTitle(m *Match) string {
	base := "Match " + matchRef(m)
	if m.RecordBucket != nil && *m.RecordBucket != "" {
		return *m.RecordBucket + " - " + base
	}
	return base
}

// roundLabelsByMatch resolves each match's round label from the stage
// structure. Elimination stages use the owning round's label; Swiss and
// standard stages label from the match's own round number.
func roundLabelsByMatch(snap *Snapshot) map[string]string {
	labels := make(map[string]string, len(snap.Matches))

	if st, ok := snap.Structure.(EliminationStructure); ok {
		for _, r := range st.Rounds {
			label := r.Label
			if label == "" {
				label = fmt.Sprintf("Round %d", r.Number)
			}
			for _, id := range r.MatchIDs {
				labels[id] = label
			}
		}
	}

	for i := range snap.Matches {
		m := &snap.Matches[i]
		if _, ok := labels[m.ID]; ok {
			continue
		}
		round := 1
		if m.RoundNumber != nil {
			round = *m.RoundNumber
		}
		labels[m.ID] = fmt.Sprintf("Round %d", round)
	}
	return labels
}
