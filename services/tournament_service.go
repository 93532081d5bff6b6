package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robostage/backend/models"
	"github.com/robostage/backend/repositories"
)

type CreateTournamentInput struct {
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	OrganizerID int       `json:"organizer_id"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error)
	Delete(ctx context.Context, id int) error
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	stageRepo      repositories.StageRepository
}

func NewTournamentService(tournamentRepo repositories.TournamentRepository, stageRepo repositories.StageRepository) TournamentService {
	return &tournamentService{tournamentRepo: tournamentRepo, stageRepo: stageRepo}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", ErrValidationFailed)
	}

	tournament := &models.Tournament{
		Name:        input.Name,
		Description: input.Description,
		OrganizerID: input.OrganizerID,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      models.TournamentUpcoming,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

// GetByID loads a tournament with its stages attached, oldest stage first.
func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	stages, err := s.stageRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load stages for tournament %d: %w", id, err)
	}
	tournament.Stages = make([]models.Stage, 0, len(stages))
	for _, stage := range stages {
		tournament.Stages = append(tournament.Stages, *stage)
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context) ([]*models.Tournament, error) {
	return s.tournamentRepo.List(ctx)
}

// validStatusTransitions encodes the tournament lifecycle. Canceled and
// completed are terminal.
var validStatusTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.TournamentUpcoming: {models.TournamentActive, models.TournamentCanceled},
	models.TournamentActive:   {models.TournamentCompleted, models.TournamentCanceled},
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range validStatusTransitions[tournament.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: cannot move tournament from %s to %s",
			ErrInvalidStatusTransition, tournament.Status, status)
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	tournament.Status = status
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	return nil
}
