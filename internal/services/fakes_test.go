package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/interviewpro/backend/internal/models"
	"github.com/interviewpro/backend/internal/utils"
)

type fakeSessionRepo struct {
	sessions map[string]*models.Session
	pushed   []primitive.ObjectID
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*models.Session{}}
}

func (f *fakeSessionRepo) Create(ctx context.Context, s *models.Session) error {
	s.ID = primitive.NewObjectID()
	f.sessions[s.UniqueID] = s
	return nil
}

func (f *fakeSessionRepo) GetByUniqueID(ctx context.Context, uniqueID string) (*models.Session, error) {
	s, ok := f.sessions[uniqueID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionRepo) UpdateName(ctx context.Context, uniqueID, name string) error {
	s, ok := f.sessions[uniqueID]
	if !ok {
		return utils.ErrNotFound
	}
	s.Name = name
	return nil
}

func (f *fakeSessionRepo) TouchLastActive(ctx context.Context, uniqueID string, at time.Time) error {
	s, ok := f.sessions[uniqueID]
	if !ok {
		return utils.ErrNotFound
	}
	s.LastActive = at
	return nil
}

func (f *fakeSessionRepo) PushSpace(ctx context.Context, uniqueID string, spaceID primitive.ObjectID) error {
	s, ok := f.sessions[uniqueID]
	if !ok {
		return utils.ErrNotFound
	}
	s.Spaces = append(s.Spaces, spaceID)
	f.pushed = append(f.pushed, spaceID)
	return nil
}

type fakeSpaceRepo struct {
	spaces map[primitive.ObjectID]*models.Space

	statusCalls  []string // "round=status"
	summaryCalls []string
}

func newFakeSpaceRepo() *fakeSpaceRepo {
	return &fakeSpaceRepo{spaces: map[primitive.ObjectID]*models.Space{}}
}

func (f *fakeSpaceRepo) Create(ctx context.Context, sp *models.Space) error {
	sp.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	sp.CreatedAt = now
	sp.UpdatedAt = now
	for i := range sp.InterviewRounds {
		sp.InterviewRounds[i].ID = primitive.NewObjectID()
	}
	f.spaces[sp.ID] = sp
	return nil
}

func (f *fakeSpaceRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Space, error) {
	sp, ok := f.spaces[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *sp
	cp.InterviewRounds = append([]models.InterviewRound(nil), sp.InterviewRounds...)
	return &cp, nil
}

func (f *fakeSpaceRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Space, error) {
	var out []models.Space
	for _, sp := range f.spaces {
		if sp.StudentID == studentID {
			out = append(out, *sp)
		}
	}
	return out, nil
}

func (f *fakeSpaceRepo) SetRoundStatus(ctx context.Context, spaceID primitive.ObjectID, roundName string, status models.RoundStatus) error {
	sp, ok := f.spaces[spaceID]
	if !ok {
		return utils.ErrNotFound
	}
	r := sp.Round(roundName)
	if r == nil {
		return utils.ErrNotFound
	}
	r.Status = status
	f.statusCalls = append(f.statusCalls, roundName+"="+string(status))
	return nil
}

func (f *fakeSpaceRepo) SetRoundSummary(ctx context.Context, spaceID primitive.ObjectID, roundName, summary string, status models.RoundStatus) error {
	sp, ok := f.spaces[spaceID]
	if !ok {
		return utils.ErrNotFound
	}
	r := sp.Round(roundName)
	if r == nil {
		return utils.ErrNotFound
	}
	r.Summary = summary
	r.Status = status
	f.summaryCalls = append(f.summaryCalls, roundName)
	return nil
}

type fakeQARepo struct {
	stored []models.QuestionAnswer
}

func (f *fakeQARepo) InsertMany(ctx context.Context, qas []models.QuestionAnswer) error {
	f.stored = append(f.stored, qas...)
	return nil
}

func (f *fakeQARepo) ListByRound(ctx context.Context, spaceID primitive.ObjectID, roundName string) ([]models.QuestionAnswer, error) {
	var out []models.QuestionAnswer
	for _, qa := range f.stored {
		if qa.SpaceID == spaceID && qa.RoundName == roundName {
			out = append(out, qa)
		}
	}
	return out, nil
}

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) Close() error { return nil }

type fakeCache struct {
	data    map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (f *fakeCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	return false, nil
}

func (f *fakeCache) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error {
	f.data[key] = []byte("set")
	return nil
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys...)
	return nil
}

type fakeEnqueuer struct {
	enqueued []string // spaceID.Hex()+"/"+round
	err      error
}

func (f *fakeEnqueuer) EnqueueSummary(ctx context.Context, spaceID primitive.ObjectID, roundName string) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, spaceID.Hex()+"/"+roundName)
	return nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(ctx context.Context, data []byte, mimeType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeExtractor) Close() error { return nil }

type fakeStore struct {
	objects map[string][]byte
	err     error
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string][]byte{}} }

func (f *fakeStore) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(r)
	f.objects[objectName] = b
	return objectName, nil
}

func (f *fakeStore) Open(ctx context.Context, objectName string) (io.ReadCloser, error) {
	b, ok := f.objects[objectName]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func resumeReader() io.Reader {
	return strings.NewReader("%PDF-1.4 resume bytes")
}
