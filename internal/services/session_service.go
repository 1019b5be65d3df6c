package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/interviewpro/backend/internal/models"
	mongorepo "github.com/interviewpro/backend/internal/repositories/mongo"
	"github.com/interviewpro/backend/internal/utils"
)

type SessionService interface {
	Start(ctx context.Context, name string) (*models.Session, error)
	Continue(ctx context.Context, uniqueID string) (*models.Session, error)
	Profile(ctx context.Context, uniqueID string) (*models.Session, error)
	UpdateName(ctx context.Context, uniqueID, name string) error
}

type sessionService struct {
	sessions mongorepo.SessionRepository
}

func NewSessionService(sessions mongorepo.SessionRepository) SessionService {
	return &sessionService{sessions: sessions}
}

func (s *sessionService) Start(ctx context.Context, name string) (*models.Session, error) {
	const op = "SessionService.Start"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "name is required", nil)
	}

	uniqueID, err := utils.NewUniqueID()
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to generate session id", err)
	}

	now := time.Now().UTC()
	session := &models.Session{
		UniqueID:   uniqueID,
		Name:       name,
		LastActive: now,
		CreatedAt:  now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}
	return session, nil
}

func (s *sessionService) Continue(ctx context.Context, uniqueID string) (*models.Session, error) {
	const op = "SessionService.Continue"

	uniqueID = strings.TrimSpace(uniqueID)
	if uniqueID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session id is required", nil)
	}

	sess, err := s.sessions.GetByUniqueID(ctx, uniqueID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to find session", err)
	}

	if err := s.sessions.TouchLastActive(ctx, uniqueID, time.Now().UTC()); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update session", err)
	}
	return sess, nil
}

func (s *sessionService) Profile(ctx context.Context, uniqueID string) (*models.Session, error) {
	const op = "SessionService.Profile"

	if uniqueID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session id is required", nil)
	}

	sess, err := s.sessions.GetByUniqueID(ctx, uniqueID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get session", err)
	}
	return sess, nil
}

func (s *sessionService) UpdateName(ctx context.Context, uniqueID, name string) error {
	const op = "SessionService.UpdateName"

	name = strings.TrimSpace(name)
	if uniqueID == "" || name == "" {
		return utils.E(utils.CodeInvalidArgument, op, "name is required", nil)
	}

	if err := s.sessions.UpdateName(ctx, uniqueID, name); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to update profile", err)
	}
	return nil
}
