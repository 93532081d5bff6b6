package services

import (
	"context"

	"github.com/robostage/backend/models"
	"github.com/robostage/backend/repositories"
)

// In-memory repository fakes. Each embeds the error to return, so tests can
// flip a single field to exercise failure paths.

type fakeStageRepo struct {
	stages  map[string]*models.Stage
	created []*models.Stage
	err     error
}

func newFakeStageRepo(stages ...*models.Stage) *fakeStageRepo {
	repo := &fakeStageRepo{stages: make(map[string]*models.Stage)}
	for _, stage := range stages {
		repo.stages[stage.ID] = stage
	}
	return repo
}

func (r *fakeStageRepo) Create(ctx context.Context, exec repositories.SQLExecutor, stage *models.Stage) error {
	if r.err != nil {
		return r.err
	}
	r.stages[stage.ID] = stage
	r.created = append(r.created, stage)
	return nil
}

func (r *fakeStageRepo) GetByID(ctx context.Context, id string) (*models.Stage, error) {
	if r.err != nil {
		return nil, r.err
	}
	stage, ok := r.stages[id]
	if !ok {
		return nil, repositories.ErrStageNotFound
	}
	return stage, nil
}

func (r *fakeStageRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Stage, error) {
	if r.err != nil {
		return nil, r.err
	}
	stages := make([]*models.Stage, 0)
	for _, stage := range r.stages {
		if stage.TournamentID == tournamentID {
			stages = append(stages, stage)
		}
	}
	return stages, nil
}

func (r *fakeStageRepo) UpdateStructure(ctx context.Context, exec repositories.SQLExecutor, id string, structureJSON *string) error {
	if r.err != nil {
		return r.err
	}
	stage, ok := r.stages[id]
	if !ok {
		return repositories.ErrStageNotFound
	}
	stage.StructureJSON = structureJSON
	return nil
}

type fakeMatchRepo struct {
	matches   []*models.StageMatch
	alliances []*models.StageAlliance
	err       error
}

func (r *fakeMatchRepo) CreateMatch(ctx context.Context, exec repositories.SQLExecutor, match *models.StageMatch) error {
	if r.err != nil {
		return r.err
	}
	r.matches = append(r.matches, match)
	return nil
}

func (r *fakeMatchRepo) CreateAlliance(ctx context.Context, exec repositories.SQLExecutor, alliance *models.StageAlliance) error {
	if r.err != nil {
		return r.err
	}
	r.alliances = append(r.alliances, alliance)
	return nil
}

func (r *fakeMatchRepo) AddAllianceTeam(ctx context.Context, exec repositories.SQLExecutor, seat *models.AllianceTeam) error {
	if r.err != nil {
		return r.err
	}
	for _, alliance := range r.alliances {
		if alliance.ID == seat.AllianceID {
			alliance.Teams = append(alliance.Teams, *seat)
			return nil
		}
	}
	return repositories.ErrAllianceNotFound
}

func (r *fakeMatchRepo) GetMatch(ctx context.Context, id string) (*models.StageMatch, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, match := range r.matches {
		if match.ID == id {
			return match, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) ListByStage(ctx context.Context, stageID string) ([]*models.StageMatch, error) {
	if r.err != nil {
		return nil, r.err
	}
	matches := make([]*models.StageMatch, 0)
	for _, match := range r.matches {
		if match.StageID == stageID {
			matches = append(matches, match)
		}
	}
	return matches, nil
}

func (r *fakeMatchRepo) ListAlliancesByStage(ctx context.Context, stageID string) ([]*models.StageAlliance, error) {
	if r.err != nil {
		return nil, r.err
	}
	byMatch := make(map[string]bool)
	for _, match := range r.matches {
		if match.StageID == stageID {
			byMatch[match.ID] = true
		}
	}
	alliances := make([]*models.StageAlliance, 0)
	for _, alliance := range r.alliances {
		if byMatch[alliance.MatchID] {
			alliances = append(alliances, alliance)
		}
	}
	return alliances, nil
}

func (r *fakeMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, matchID string, status string, winningAlliance *string) error {
	if r.err != nil {
		return r.err
	}
	for _, match := range r.matches {
		if match.ID == matchID {
			match.Status = status
			match.WinningAlliance = winningAlliance
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) UpdateAllianceScores(ctx context.Context, exec repositories.SQLExecutor, allianceID string, score, autoScore, driveScore *int) error {
	if r.err != nil {
		return r.err
	}
	for _, alliance := range r.alliances {
		if alliance.ID == allianceID {
			alliance.Score = score
			alliance.AutoScore = autoScore
			alliance.DriveScore = driveScore
			return nil
		}
	}
	return repositories.ErrAllianceNotFound
}

func (r *fakeMatchRepo) ReplaceAllianceTeams(ctx context.Context, exec repositories.SQLExecutor, allianceID string, seats []models.AllianceTeam) error {
	if r.err != nil {
		return r.err
	}
	for _, alliance := range r.alliances {
		if alliance.ID == allianceID {
			alliance.Teams = append([]models.AllianceTeam(nil), seats...)
			return nil
		}
	}
	return repositories.ErrAllianceNotFound
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	nextID      int
	err         error
}

func newFakeTournamentRepo(tournaments ...*models.Tournament) *fakeTournamentRepo {
	repo := &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament), nextID: 1}
	for _, tournament := range tournaments {
		repo.tournaments[tournament.ID] = tournament
		if tournament.ID >= repo.nextID {
			repo.nextID = tournament.ID + 1
		}
	}
	return repo
}

func (r *fakeTournamentRepo) Create(ctx context.Context, tournament *models.Tournament) error {
	if r.err != nil {
		return r.err
	}
	tournament.ID = r.nextID
	r.nextID++
	r.tournaments[tournament.ID] = tournament
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	if r.err != nil {
		return nil, r.err
	}
	tournament, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return tournament, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context) ([]*models.Tournament, error) {
	if r.err != nil {
		return nil, r.err
	}
	tournaments := make([]*models.Tournament, 0, len(r.tournaments))
	for _, tournament := range r.tournaments {
		tournaments = append(tournaments, tournament)
	}
	return tournaments, nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error {
	if r.err != nil {
		return r.err
	}
	tournament, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	tournament.Status = status
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, id int) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}
