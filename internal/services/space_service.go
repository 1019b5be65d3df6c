package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/interviewpro/backend/internal/cache"
	"github.com/interviewpro/backend/internal/models"
	"github.com/interviewpro/backend/internal/providers/extract"
	"github.com/interviewpro/backend/internal/providers/llm"
	mongorepo "github.com/interviewpro/backend/internal/repositories/mongo"
	"github.com/interviewpro/backend/internal/storage"
	"github.com/interviewpro/backend/internal/utils"
)

// Job descriptions at or under this length are treated as absent and the
// generic resume-summary prompt is used instead.
const minJobDescriptionLen = 20

type CreateSpaceInput struct {
	CompanyName    string
	JobPosition    string
	JobDescription string
	Rounds         []string

	ResumeFileName string
	ResumeMimeType string
	Resume         io.Reader
}

type SpaceService interface {
	Create(ctx context.Context, studentID string, in CreateSpaceInput) (*models.Space, error)
	List(ctx context.Context, studentID string) ([]models.Space, error)
	Get(ctx context.Context, studentID string, spaceID primitive.ObjectID) (*models.Space, error)
	OpenResume(ctx context.Context, studentID string, spaceID primitive.ObjectID) (io.ReadCloser, string, error)
}

type spaceService struct {
	spaces    mongorepo.SpaceRepository
	sessions  mongorepo.SessionRepository
	llm       llm.Provider
	extractor extract.Provider
	store     storage.Store
	cache     cache.Cache
}

func NewSpaceService(
	spaces mongorepo.SpaceRepository,
	sessions mongorepo.SessionRepository,
	llmp llm.Provider,
	extractor extract.Provider,
	store storage.Store,
	c cache.Cache,
) SpaceService {
	return &spaceService{
		spaces:    spaces,
		sessions:  sessions,
		llm:       llmp,
		extractor: extractor,
		store:     store,
		cache:     c,
	}
}

func (s *spaceService) Create(ctx context.Context, studentID string, in CreateSpaceInput) (*models.Space, error) {
	const op = "SpaceService.Create"

	if studentID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "unauthorized", nil)
	}
	if in.CompanyName == "" || in.JobPosition == "" || len(in.Rounds) == 0 || in.Resume == nil {
		return nil, utils.E(utils.CodeInvalidArgument, op,
			"company name, job position, interview rounds, and resume are required", nil)
	}
	if in.ResumeMimeType != extract.MimePDF && in.ResumeMimeType != extract.MimeDOCX {
		return nil, utils.E(utils.CodeInvalidArgument, op, "only PDF and DOCX file types are supported", nil)
	}

	raw, err := io.ReadAll(in.Resume)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to read resume upload", err)
	}

	resumeText, err := s.extractor.Extract(ctx, raw, in.ResumeMimeType)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to extract resume text", err)
	}

	jobDescription := strings.TrimSpace(in.JobDescription)
	validDescription := len(jobDescription) > minJobDescriptionLen
	promptDescription := ""
	if validDescription {
		promptDescription = jobDescription
	}

	purified, err := s.llm.GenerateText(ctx, purifyPrompt(resumeText, promptDescription))
	if err != nil {
		// keep the upload usable: a failed summary is recoverable by re-upload
		purified = "There was an error generating the resume summary. Please try uploading your resume again."
	}

	objectName := "resumes/" + studentID + "/" + uuid.NewString() + strings.ToLower(ext(in.ResumeFileName))
	storedPath, err := s.store.Upload(ctx, objectName, in.ResumeMimeType, strings.NewReader(string(raw)))
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to store resume", err)
	}

	rounds := make([]models.InterviewRound, 0, len(in.Rounds))
	for _, name := range in.Rounds {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		rounds = append(rounds, models.InterviewRound{Name: name, Status: models.RoundNotCompleted})
	}
	if len(rounds) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "at least one interview round is required", nil)
	}

	if !validDescription {
		jobDescription = "N/A"
	}

	sp := &models.Space{
		StudentID:       studentID,
		CompanyName:     in.CompanyName,
		JobPosition:     in.JobPosition,
		JobDescription:  jobDescription,
		ResumePath:      storedPath,
		ResumeText:      resumeText,
		PurifiedSummary: purified,
		InterviewRounds: rounds,
	}

	if err := s.spaces.Create(ctx, sp); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create space", err)
	}
	if err := s.sessions.PushSpace(ctx, studentID, sp.ID); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to link space to session", err)
	}

	_ = s.cache.Del(ctx, cache.SpacesKey(studentID))
	return sp, nil
}

func (s *spaceService) List(ctx context.Context, studentID string) ([]models.Space, error) {
	const op = "SpaceService.List"

	if studentID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "unauthorized", nil)
	}

	var cached []models.Space
	if hit, err := s.cache.GetJSON(ctx, cache.SpacesKey(studentID), &cached); err == nil && hit {
		return cached, nil
	}

	out, err := s.spaces.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list spaces", err)
	}

	_ = s.cache.SetJSON(ctx, cache.SpacesKey(studentID), out, cache.SpacesTTL)
	return out, nil
}

func (s *spaceService) Get(ctx context.Context, studentID string, spaceID primitive.ObjectID) (*models.Space, error) {
	const op = "SpaceService.Get"

	sp, err := s.authorizedSpace(ctx, op, studentID, spaceID)
	if err != nil {
		return nil, err
	}

	// sanitized HTML renditions for the SPA
	if sp.JobDescription != "" && sp.JobDescription != "N/A" {
		sp.JobDescription = utils.RenderMarkdown(sp.JobDescription)
	}
	if sp.PurifiedSummary != "" {
		sp.PurifiedSummary = utils.RenderMarkdown(sp.PurifiedSummary)
	}
	for i := range sp.InterviewRounds {
		r := &sp.InterviewRounds[i]
		if r.Summary != "" && r.Status != models.RoundNotCompleted {
			r.SummaryHTML = utils.RenderMarkdown(r.Summary)
		}
	}
	return sp, nil
}

func (s *spaceService) OpenResume(ctx context.Context, studentID string, spaceID primitive.ObjectID) (io.ReadCloser, string, error) {
	const op = "SpaceService.OpenResume"

	sp, err := s.authorizedSpace(ctx, op, studentID, spaceID)
	if err != nil {
		return nil, "", err
	}

	rc, err := s.store.Open(ctx, sp.ResumePath)
	if err != nil {
		return nil, "", utils.E(utils.CodeNotFound, op, "resume file not found", err)
	}
	return rc, sp.ResumePath, nil
}

func (s *spaceService) authorizedSpace(ctx context.Context, op, studentID string, spaceID primitive.ObjectID) (*models.Space, error) {
	if studentID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "unauthorized", nil)
	}

	sp, err := s.spaces.GetByID(ctx, spaceID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "space not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get space", err)
	}
	if sp.StudentID != studentID {
		return nil, utils.E(utils.CodeForbidden, op, "not authorized to access this space", nil)
	}
	return sp, nil
}

func ext(fileName string) string {
	if i := strings.LastIndex(fileName, "."); i >= 0 {
		return fileName[i:]
	}
	return ""
}
