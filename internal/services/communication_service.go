package services

import (
	"context"
	"strings"

	"github.com/peritasorg/eventis-sub000/internal/config"
	"github.com/peritasorg/eventis-sub000/internal/models"
	"github.com/peritasorg/eventis-sub000/internal/repositories"
)

type CommunicationService struct {
	repo *repositories.Repository
	cfg  *config.Config
}

func NewCommunicationService(repo *repositories.Repository, cfg *config.Config) *CommunicationService {
	return &CommunicationService{repo: repo, cfg: cfg}
}

type AddNoteRequest struct {
	Summary string `json:"summary" validate:"required,max=4000"`
}

func (s *CommunicationService) ListEntries(ctx context.Context, tenantID, eventID string, page, pageSize int) ([]models.CommunicationLog, int64, int, error) {
	if _, err := requireEvent(ctx, s.repo, tenantID, eventID); err != nil {
		return nil, 0, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	entries, total, err := s.repo.CommunicationRepo.ListCommunicationLogs(ctx, tenantID, eventID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, 0, dbError("failed to list communications", err)
	}
	totalPages := (int(total) + pageSize - 1) / pageSize
	return entries, total, totalPages, nil
}

func (s *CommunicationService) AddNote(ctx context.Context, tenantID, eventID, userID string, req AddNoteRequest) (*models.CommunicationLog, error) {
	event, err := requireEvent(ctx, s.repo, tenantID, eventID)
	if err != nil {
		return nil, err
	}
	summary := strings.TrimSpace(req.Summary)
	if summary == "" {
		return nil, invalid("note cannot be empty")
	}

	entry := &models.CommunicationLog{
		TenantID:   event.TenantID,
		EventID:    event.ID,
		CustomerID: event.CustomerID,
		Kind:       models.CommunicationNote,
		Summary:    summary,
		CreatedBy:  optionalUserID(userID),
	}
	if err := s.repo.CommunicationRepo.CreateCommunicationLog(ctx, entry); err != nil {
		return nil, dbError("failed to add note", err)
	}
	return entry, nil
}
