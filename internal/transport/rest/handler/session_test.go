package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chudo9991/more.tech.2025-sub000/internal/model"
)

type fakeSessionRepo struct {
	sessions map[string]*model.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*model.Session{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *model.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	r.sessions[session.ID] = session
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	return r.sessions[id], nil
}

func (r *fakeSessionRepo) SetStatus(_ context.Context, id string, status model.SessionStatus) error {
	if s, ok := r.sessions[id]; ok {
		s.Status = status
	}
	return nil
}

func TestSessionCreateMintsID(t *testing.T) {
	repo := newFakeSessionRepo()
	h := NewSessionHandler(repo, nil)

	body := bytes.NewBufferString(`{"vacancyId": "v1", "candidateId": "c1"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", body)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.SessionCreated, created.Status)

	stored, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "v1", stored.VacancyID)
	assert.Equal(t, "c1", stored.CandidateID)
}

func TestSessionCreateRequiresVacancy(t *testing.T) {
	h := NewSessionHandler(newFakeSessionRepo(), nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
