package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/interviewpro/backend/internal/cache"
	"github.com/interviewpro/backend/internal/models"
	"github.com/interviewpro/backend/internal/providers/llm"
	mongorepo "github.com/interviewpro/backend/internal/repositories/mongo"
	"github.com/interviewpro/backend/internal/utils"
)

// SummaryEnqueuer hands a finished round to the async summary pipeline.
type SummaryEnqueuer interface {
	EnqueueSummary(ctx context.Context, spaceID primitive.ObjectID, roundName string) error
}

// Answer pairs a question with the answer given to it, in question order.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type InterviewService interface {
	// StartRound marks the round in progress (unless completed) and returns
	// the generated question list, in order.
	StartRound(ctx context.Context, studentID string, spaceID primitive.ObjectID, roundName string) ([]string, error)

	// FinishRound stores the non-empty answers and enqueues summary
	// generation. The round stays in_progress until the worker completes it.
	FinishRound(ctx context.Context, studentID string, spaceID primitive.ObjectID, roundName string, answers []Answer) error

	// ListQuestionAnswers returns the stored pairs for a finished round.
	ListQuestionAnswers(ctx context.Context, studentID string, spaceID primitive.ObjectID, roundName string) ([]models.QuestionAnswer, error)

	// CompleteRound generates the evaluation summary from the stored answers
	// and marks the round completed. Called by the summary worker.
	CompleteRound(ctx context.Context, spaceID primitive.ObjectID, roundName string) error
}

type interviewService struct {
	spaces mongorepo.SpaceRepository
	qas    mongorepo.QuestionAnswerRepository
	llm    llm.Provider
	queue  SummaryEnqueuer
	cache  cache.Cache
}

func NewInterviewService(
	spaces mongorepo.SpaceRepository,
	qas mongorepo.QuestionAnswerRepository,
	llmp llm.Provider,
	queue SummaryEnqueuer,
	c cache.Cache,
) InterviewService {
	return &interviewService{spaces: spaces, qas: qas, llm: llmp, queue: queue, cache: c}
}

func (s *interviewService) StartRound(ctx context.Context, studentID string, spaceID primitive.ObjectID, roundName string) ([]string, error) {
	const op = "InterviewService.StartRound"

	sp, round, err := s.authorizedRound(ctx, op, studentID, spaceID, roundName)
	if err != nil {
		return nil, err
	}

	// completed rounds keep their status; everything else becomes in_progress
	if round.Status != models.RoundCompleted {
		if err := s.spaces.SetRoundStatus(ctx, spaceID, roundName, models.RoundInProgress); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to update round status", err)
		}
		_ = s.cache.Del(ctx, cache.SpacesKey(studentID))
	}

	prompt := questionsPrompt(sp.JobPosition, sp.CompanyName, sp.JobDescription, sp.PurifiedSummary, roundName)
	content, err := s.llm.GenerateText(ctx, prompt)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "error generating interview questions", err)
	}

	questions := ParseQuestions(content)
	if len(questions) == 0 {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to generate interview questions", nil)
	}
	return questions, nil
}

func (s *interviewService) FinishRound(ctx context.Context, studentID string, spaceID primitive.ObjectID, roundName string, answers []Answer) error {
	const op = "InterviewService.FinishRound"

	kept := make([]Answer, 0, len(answers))
	for _, a := range answers {
		if strings.TrimSpace(a.Answer) != "" {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		return utils.E(utils.CodeInvalidArgument, op, "no answers provided", nil)
	}

	if _, _, err := s.authorizedRound(ctx, op, studentID, spaceID, roundName); err != nil {
		return err
	}

	qas := make([]models.QuestionAnswer, 0, len(kept))
	for _, a := range kept {
		qas = append(qas, models.QuestionAnswer{
			SpaceID:   spaceID,
			RoundName: roundName,
			Question:  a.Question,
			Answer:    a.Answer,
		})
	}
	if err := s.qas.InsertMany(ctx, qas); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to save answers", err)
	}

	if err := s.queue.EnqueueSummary(ctx, spaceID, roundName); err != nil {
		return utils.E(utils.CodeUnavailable, op, "failed to schedule summary generation", err)
	}
	return nil
}

func (s *interviewService) ListQuestionAnswers(ctx context.Context, studentID string, spaceID primitive.ObjectID, roundName string) ([]models.QuestionAnswer, error) {
	const op = "InterviewService.ListQuestionAnswers"

	if _, _, err := s.authorizedRound(ctx, op, studentID, spaceID, roundName); err != nil {
		return nil, err
	}

	out, err := s.qas.ListByRound(ctx, spaceID, roundName)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list questions and answers", err)
	}
	return out, nil
}

func (s *interviewService) CompleteRound(ctx context.Context, spaceID primitive.ObjectID, roundName string) error {
	const op = "InterviewService.CompleteRound"

	sp, err := s.spaces.GetByID(ctx, spaceID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "space not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to get space", err)
	}
	if sp.Round(roundName) == nil {
		return utils.E(utils.CodeNotFound, op, "round not found", nil)
	}

	stored, err := s.qas.ListByRound(ctx, spaceID, roundName)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to load answers", err)
	}
	if len(stored) == 0 {
		return utils.E(utils.CodeInvalidArgument, op, "no answers stored for round", nil)
	}

	questions := make([]string, 0, len(stored))
	answers := make([]string, 0, len(stored))
	for _, qa := range stored {
		questions = append(questions, qa.Question)
		answers = append(answers, qa.Answer)
	}

	summary, err := s.llm.GenerateText(ctx, summaryPrompt(roundName, sp.CompanyName, sp.JobPosition, questions, answers))
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "error generating summary", err)
	}

	if err := s.spaces.SetRoundSummary(ctx, spaceID, roundName, summary, models.RoundCompleted); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to store summary", err)
	}

	_ = s.cache.Del(ctx, cache.SpacesKey(sp.StudentID))
	return nil
}

func (s *interviewService) authorizedRound(ctx context.Context, op, studentID string, spaceID primitive.ObjectID, roundName string) (*models.Space, *models.InterviewRound, error) {
	if studentID == "" {
		return nil, nil, utils.E(utils.CodeUnauthorized, op, "unauthorized", nil)
	}

	sp, err := s.spaces.GetByID(ctx, spaceID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, nil, utils.E(utils.CodeNotFound, op, "space not found", err)
		}
		return nil, nil, utils.E(utils.CodeInternal, op, "failed to get space", err)
	}
	if sp.StudentID != studentID {
		return nil, nil, utils.E(utils.CodeForbidden, op, "not authorized to access this space", nil)
	}

	round := sp.Round(roundName)
	if round == nil {
		return nil, nil, utils.E(utils.CodeNotFound, op, "round not found", nil)
	}
	return sp, round, nil
}

var questionLine = regexp.MustCompile(`^\d+\.\s*`)

// ParseQuestions extracts the numbered lines from model output, stripping
// the numbering. Lines that are not numbered are preamble and ignored.
func ParseQuestions(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !questionLine.MatchString(line) {
			continue
		}
		q := strings.TrimSpace(questionLine.ReplaceAllString(line, ""))
		if q != "" {
			out = append(out, q)
		}
	}
	return out
}
