package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NomadCrew/feedback-backend/internal/store"
	"github.com/NomadCrew/feedback-backend/logger"
	"github.com/NomadCrew/feedback-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Prefer string
	APIKey string
	Body   string
}

func newTestStore(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*FeedbackStore, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Prefer: r.Header.Get("Prefer"),
			APIKey: r.Header.Get("apikey"),
			Body:   string(body),
		})
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, "test-key")
	require.NoError(t, err)
	return NewFeedbackStore(client, ""), &requests
}

func TestNewClient_RequiresURLAndKey(t *testing.T) {
	_, err := NewClient("", "")
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
}

func TestInitialize_NilClient(t *testing.T) {
	s := NewFeedbackStore(nil, "")
	assert.ErrorIs(t, s.Initialize(context.Background()), store.ErrStorageUnavailable)
}

func TestListFeedback(t *testing.T) {
	s, requests := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"id":"b","full_name":"Bob","email":"bob@x.com","message":"later","rating":0,"created_at":"2024-05-01T10:00:01.5+00:00"},
			{"id":"a","full_name":"Ann","email":"ann@x.com","message":"first","rating":5,"created_at":"2024-05-01T10:00:00.123456+00:00"}
		]`)
	})

	feedbacks, err := s.ListFeedback(context.Background())
	require.NoError(t, err)
	require.Len(t, feedbacks, 2)
	assert.Equal(t, types.FeedbackID("a"), feedbacks[0].ID)
	assert.Equal(t, "2024-05-01T10:00:00.123Z", feedbacks[0].CreatedAt)
	assert.Equal(t, 5, feedbacks[0].Rating)
	assert.Equal(t, "2024-05-01T10:00:01.500Z", feedbacks[1].CreatedAt)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/rest/v1/feedbacks", req.Path)
	assert.Contains(t, req.Query, "select=")
	assert.Equal(t, "test-key", req.APIKey)
}

func TestListFeedback_Empty(t *testing.T) {
	s, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})

	feedbacks, err := s.ListFeedback(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, feedbacks)
	assert.Empty(t, feedbacks)
}

func TestCreateFeedback(t *testing.T) {
	s, requests := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `[{"id":"0b8f6c1e-7d0c-4a55-9b7e-2f3c9d1a6e21","full_name":"Ann","email":"ann@x.com","message":"hi","rating":5,"created_at":"2024-05-01T10:00:00+00:00"}]`)
	})

	created, err := s.CreateFeedback(context.Background(), &types.Feedback{
		FullName: "Ann",
		Email:    "ann@x.com",
		Message:  "hi",
		Rating:   5,
	})
	require.NoError(t, err)
	assert.Equal(t, types.FeedbackID("0b8f6c1e-7d0c-4a55-9b7e-2f3c9d1a6e21"), created.ID)
	assert.Equal(t, "2024-05-01T10:00:00.000Z", created.CreatedAt)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Contains(t, req.Prefer, "return=representation")

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(req.Body), &sent))
	assert.Equal(t, "Ann", sent["full_name"])
	assert.NotContains(t, sent, "id")
	assert.NotContains(t, sent, "created_at")
}

func TestCreateFeedback_ServerError(t *testing.T) {
	s, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"code":"XX000","message":"boom"}`)
	})

	_, err := s.CreateFeedback(context.Background(), &types.Feedback{FullName: "Ann", Email: "ann@x.com", Message: "hi"})
	assert.ErrorIs(t, err, store.ErrStorageWrite)
}

func TestDeleteFeedback(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		s, requests := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `[{"id":"a","full_name":"Ann","email":"ann@x.com","message":"hi","rating":5,"created_at":"2024-05-01T10:00:00+00:00"}]`)
		})

		require.NoError(t, s.DeleteFeedback(context.Background(), "a"))
		req := (*requests)[0]
		assert.Equal(t, http.MethodDelete, req.Method)
		assert.Contains(t, req.Query, "id=eq.a")
	})

	t.Run("not found", func(t *testing.T) {
		s, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `[]`)
		})
		assert.ErrorIs(t, s.DeleteFeedback(context.Background(), "missing"), store.ErrNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		s, requests := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {})
		assert.Error(t, s.DeleteFeedback(context.Background(), ""))
		assert.Empty(t, *requests)
	})
}

func TestPing(t *testing.T) {
	s, requests := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})

	require.NoError(t, s.Ping(context.Background()))
	assert.Contains(t, (*requests)[0].Query, "id=eq."+pingID)
}

func TestNormalizeTimestamp(t *testing.T) {
	assert.Equal(t, "2024-05-01T08:00:00.000Z", normalizeTimestamp("2024-05-01T10:00:00+02:00"))
	assert.Equal(t, "not a time", normalizeTimestamp("not a time"))
}
