package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RoundStatus string

const (
	RoundNotCompleted RoundStatus = "not completed"
	RoundInProgress   RoundStatus = "in_progress"
	RoundCompleted    RoundStatus = "completed"
)

// InterviewRound is embedded in Space. Status only ever moves forward:
// not completed -> in_progress (question fetch) -> completed (summary written).
type InterviewRound struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name    string             `bson:"name" json:"name"`
	Status  RoundStatus        `bson:"status" json:"status"`
	Summary string             `bson:"summary" json:"summary"`

	// Sanitized HTML rendition, computed on read, never persisted.
	SummaryHTML string `bson:"-" json:"summary_html,omitempty"`
}

// Space is one interview-preparation engagement (company + role + resume),
// owned exclusively by the session whose UniqueID equals StudentID.
type Space struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID string             `bson:"student_id" json:"student_id"`

	CompanyName    string `bson:"company_name" json:"company_name"`
	JobPosition    string `bson:"job_position" json:"job_position"`
	JobDescription string `bson:"job_description" json:"job_description"`

	ResumePath      string `bson:"resume_path" json:"resume_path"`
	ResumeText      string `bson:"resume_text" json:"-"`
	PurifiedSummary string `bson:"purified_summary" json:"purified_summary"`

	InterviewRounds []InterviewRound `bson:"interview_rounds" json:"interview_rounds"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Round returns the embedded round by name, or nil.
func (s *Space) Round(name string) *InterviewRound {
	for i := range s.InterviewRounds {
		if s.InterviewRounds[i].Name == name {
			return &s.InterviewRounds[i]
		}
	}
	return nil
}
