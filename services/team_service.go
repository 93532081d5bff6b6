package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/robostage/backend/models"
	"github.com/robostage/backend/repositories"
	"github.com/robostage/backend/storage"
)

type CreateTeamInput struct {
	Number int     `json:"number"`
	Name   string  `json:"name"`
	School *string `json:"school"`
}

type TeamService interface {
	Create(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	UploadLogo(ctx context.Context, teamID int, file io.Reader, filename, contentType string) (*models.Team, error)
	Delete(ctx context.Context, id int) error
}

type teamService struct {
	teamRepo repositories.TeamRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

// NewTeamService accepts a nil uploader; logo uploads then fail with
// ErrStorageDisabled while the rest of the service keeps working.
func NewTeamService(teamRepo repositories.TeamRepository, uploader storage.FileUploader, logger *slog.Logger) TeamService {
	return &teamService{teamRepo: teamRepo, uploader: uploader, logger: logger}
}

func (s *teamService) Create(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	if input.Number <= 0 {
		return nil, fmt.Errorf("%w: team number must be positive", ErrValidationFailed)
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: team name is required", ErrValidationFailed)
	}

	team := &models.Team{
		Number: input.Number,
		Name:   input.Name,
		School: input.School,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNumberConflict) {
			return nil, ErrTeamNumberConflict
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	s.attachLogoURL(team)
	return team, nil
}

func (s *teamService) List(ctx context.Context) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		s.attachLogoURL(team)
	}
	return teams, nil
}

func (s *teamService) UploadLogo(ctx context.Context, teamID int, file io.Reader, filename, contentType string) (*models.Team, error) {
	if s.uploader == nil {
		return nil, ErrStorageDisabled
	}

	team, err := s.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("team-logos/%d/%s%s", teamID, uuid.NewString(), strings.ToLower(path.Ext(filename)))
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload logo for team %d: %w", teamID, err)
	}

	oldKey := team.LogoKey
	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &result.Key); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != result.Key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete replaced team logo",
				slog.Int("team_id", teamID),
				slog.String("key", *oldKey),
				slog.Any("error", err))
		}
	}

	team.LogoKey = &result.Key
	s.attachLogoURL(team)
	return team, nil
}

func (s *teamService) Delete(ctx context.Context, id int) error {
	team, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.teamRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}
	if s.uploader != nil && team.LogoKey != nil {
		if err := s.uploader.Delete(ctx, *team.LogoKey); err != nil {
			s.logger.Warn("failed to delete team logo",
				slog.Int("team_id", id),
				slog.String("key", *team.LogoKey),
				slog.Any("error", err))
		}
	}
	return nil
}

func (s *teamService) attachLogoURL(team *models.Team) {
	if s.uploader == nil || team.LogoKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*team.LogoKey)
	team.LogoURL = &url
}
