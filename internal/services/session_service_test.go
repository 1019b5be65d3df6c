package services

import (
	"context"
	"testing"
	"time"

	"github.com/interviewpro/backend/internal/utils"
)

func TestStartSession(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo)

	sess, err := svc.Start(context.Background(), "  Dana  ")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.Name != "Dana" {
		t.Errorf("name = %q, want trimmed", sess.Name)
	}
	if len(sess.UniqueID) != 8 {
		t.Errorf("unique id = %q, want 8 hex chars", sess.UniqueID)
	}
	if _, ok := repo.sessions[sess.UniqueID]; !ok {
		t.Error("session not persisted")
	}

	if _, err := svc.Start(context.Background(), "   "); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("blank name: err = %v, want INVALID_ARGUMENT", err)
	}
}

func TestContinueSession(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo)

	created, err := svc.Start(context.Background(), "Dana")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	before := repo.sessions[created.UniqueID].LastActive

	time.Sleep(2 * time.Millisecond)
	got, err := svc.Continue(context.Background(), created.UniqueID)
	if err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if got.Name != "Dana" {
		t.Errorf("name = %q", got.Name)
	}
	if !repo.sessions[created.UniqueID].LastActive.After(before) {
		t.Error("Continue should bump last_active")
	}

	if _, err := svc.Continue(context.Background(), "ffffffff"); !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("unknown id: err = %v, want NOT_FOUND", err)
	}
	if _, err := svc.Continue(context.Background(), ""); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("blank id: err = %v, want INVALID_ARGUMENT", err)
	}
}

func TestUpdateName(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo)

	created, _ := svc.Start(context.Background(), "Dana")
	if err := svc.UpdateName(context.Background(), created.UniqueID, "Dana K"); err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	if repo.sessions[created.UniqueID].Name != "Dana K" {
		t.Error("name not updated")
	}

	if err := svc.UpdateName(context.Background(), "ffffffff", "X"); !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("unknown id: err = %v, want NOT_FOUND", err)
	}
	if err := svc.UpdateName(context.Background(), created.UniqueID, "  "); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("blank name: err = %v, want INVALID_ARGUMENT", err)
	}
}
