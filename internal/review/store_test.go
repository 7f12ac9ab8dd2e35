package review

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/hireflow/hireflow/internal/directory"
	"github.com/hireflow/hireflow/internal/recruit"
	"github.com/hireflow/hireflow/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/me" {
			w.Write([]byte(`{"data": {"_id": "u1", "role": "recruiter"}}`))
			return
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	api := recruit.New(zap.NewNop(), server.URL, "")
	sess := session.NewManager(api, zap.NewNop())
	require.Equal(t, session.StateAuthenticated, sess.CheckSession(context.Background()))

	return New(api, directory.New(api, sess, zap.NewNop()), zap.NewNop())
}

func TestLoadPendingFiltersJobAndStatus(t *testing.T) {
	s := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/applications", r.URL.Path)
		w.Write([]byte(`[
			{"_id": "a1", "jobId": "j1", "candidateId": {"_id": "c1", "name": "Omar"}, "status": "pending"},
			{"_id": "a2", "jobId": "j1", "candidateId": "c2", "status": "shortlisted"},
			{"_id": "a3", "jobId": "j2", "candidateId": "c3", "status": "pending"}
		]`))
	})

	pending, err := s.LoadPending(context.Background(), "j1")

	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "a1", pending[0].ID)
	assert.Equal(t, "Omar", pending[0].Candidate.Name)

	assert.Len(t, s.Pending("j1"), 1)
	assert.Empty(t, s.Pending("j2"), "only loaded partitions are retained")
}

func TestDispositionRequiresApplicationID(t *testing.T) {
	var calls atomic.Int32
	s := newStore(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{}`))
	})

	_, err := s.Shortlist(context.Background(), "   ")

	require.Error(t, err)
	assert.True(t, recruit.IsValidation(err))
	assert.Equal(t, MissingApplicationMessage, recruit.Reason(err, "other"))
	assert.Zero(t, calls.Load(), "a missing id must not reach the server")
}

func TestShortlistDropsPendingAndRefreshesPartitions(t *testing.T) {
	var partitionReads atomic.Int32
	s := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/applications":
			w.Write([]byte(`[
				{"_id": "a1", "jobId": "j1", "candidateId": "c1", "status": "pending"},
				{"_id": "a2", "jobId": "j1", "candidateId": "c2", "status": "pending"}
			]`))
		case "/api/applications/a1/shortlist":
			w.Write([]byte(`{"message": "Application shortlisted successfully"}`))
		case "/api/applications/shortlisted", "/api/applications/rejected":
			partitionReads.Add(1)
			w.Write([]byte(`[]`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	})

	_, err := s.LoadPending(context.Background(), "j1")
	require.NoError(t, err)

	msg, err := s.Shortlist(context.Background(), "a1")

	require.NoError(t, err)
	assert.Equal(t, "Application shortlisted successfully", msg)

	pending := s.Pending("j1")
	require.Len(t, pending, 1)
	assert.Equal(t, "a2", pending[0].ID)

	assert.Equal(t, int32(2), partitionReads.Load(), "both reviewed partitions are re-read in full")
}

func TestRejectSurfacesServerMessageVerbatim(t *testing.T) {
	s := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/applications/a9/reject":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": "Application not found"}`))
		case "/api/applications/shortlisted", "/api/applications/rejected":
			w.Write([]byte(`[]`))
		}
	})

	_, err := s.Reject(context.Background(), "a9")

	require.Error(t, err)
	assert.Equal(t, "Application not found", recruit.Reason(err, "other"))
}
