package recruit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func newTestClient(url string) *Client {
	return New(zap.NewNop(), url, "")
}

func TestLoginParsesIdentityAndToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user": {"_id": "u1", "name": "Rita", "email": "rita@example.com", "role": "recruiter"}, "token": "tok-123"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	identity, token, err := client.Login(context.Background(), "rita@example.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.ID != "u1" || identity.Role != RoleRecruiter {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if token != "tok-123" {
		t.Fatalf("expected token tok-123, got %q", token)
	}
	if client.Token() != "tok-123" {
		t.Fatalf("token not retained on client: %q", client.Token())
	}
}

func TestLoginFallsBackToCookieToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "cookie-tok"})
		w.Write([]byte(`{"user": {"_id": "u1", "name": "Rita", "email": "rita@example.com", "role": "recruiter"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, token, err := client.Login(context.Background(), "rita@example.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "cookie-tok" {
		t.Fatalf("expected cookie token, got %q", token)
	}
}

func TestServerErrorCarriesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "Invalid credentials"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, _, err := client.Login(context.Background(), "rita@example.com", "wrong")
	if err == nil {
		t.Fatal("expected an error")
	}

	if kind, ok := KindOf(err); !ok || kind != KindServer {
		t.Fatalf("expected server kind, got %v", err)
	}
	if got := Reason(err, "fallback"); got != "Invalid credentials" {
		t.Fatalf("expected server message verbatim, got %q", got)
	}
}

func TestReasonFallsBackWhenServerSilent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, _, err := client.Login(context.Background(), "rita@example.com", "secret")
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := Reason(err, "Login failed"); got != "Login failed" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestUnauthorizedFiresHookOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "Not authorized"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	var fired int
	client.OnUnauthorized(func() { fired++ })

	_, err := client.GetJobs(context.Background())
	if !IsAuthorization(err) {
		t.Fatalf("expected authorization failure, got %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected the hook to fire once, fired %d times", fired)
	}
}

func TestNetworkFailureIsNetworkKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL)

	_, err := client.GetJobs(context.Background())
	if kind, ok := KindOf(err); !ok || kind != KindNetwork {
		t.Fatalf("expected network kind, got %v", err)
	}
}

func TestRequestsCarryAuthHeaders(t *testing.T) {
	var gotAuth, gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if c, err := r.Cookie("token"); err == nil {
			gotCookie = c.Value
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := New(zap.NewNop(), server.URL, "tok-9")

	if _, err := client.GetJobs(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-9" {
		t.Fatalf("unexpected Authorization header: %q", gotAuth)
	}
	if gotCookie != "tok-9" {
		t.Fatalf("unexpected token cookie: %q", gotCookie)
	}
}

func TestDispositionReturnsServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/applications/app1/shortlist" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"message": "Application shortlisted successfully"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	msg, err := client.ShortlistApplication(context.Background(), "app1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != "Application shortlisted successfully" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestGetApplicationsDecodesPopulatedAndBareRefs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[
			{"_id": "a1", "jobId": {"_id": "j1", "title": "Go Dev"}, "candidateId": {"_id": "c1", "name": "Omar"}, "status": "pending"},
			{"_id": "a2", "jobId": "j2", "candidateId": "c2", "status": "shortlisted", "matchScore": 82}
		]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	apps, err := client.GetApplications(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if apps.Len() != 2 {
		t.Fatalf("expected 2 applications, got %d", apps.Len())
	}

	populated := apps.FindByID("a1")
	if populated.Job.Title != "Go Dev" || populated.Candidate.Name != "Omar" {
		t.Fatalf("populated refs not decoded: %+v", populated)
	}

	bare := apps.FindByID("a2")
	if bare.Job.ID != "j2" || bare.Candidate.ID != "c2" {
		t.Fatalf("bare refs not decoded: %+v", bare)
	}
	if bare.MatchScore == nil || *bare.MatchScore != 82 {
		t.Fatalf("match score not decoded: %+v", bare.MatchScore)
	}
}

func TestPendingForJobFiltersStatusAndJob(t *testing.T) {
	apps := &Applications{Items: []*Application{
		{ID: "a1", Job: JobRef{ID: "j1"}, Status: StatusPending},
		{ID: "a2", Job: JobRef{ID: "j1"}, Status: StatusShortlisted},
		{ID: "a3", Job: JobRef{ID: "j2"}, Status: StatusPending},
	}}

	pending := apps.PendingForJob("j1")
	if len(pending) != 1 || pending[0].ID != "a1" {
		t.Fatalf("unexpected pending set: %+v", pending)
	}
}

func TestValidationErrorsSkipRemoteCall(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	if _, err := client.ShortlistApplication(context.Background(), ""); !IsValidation(err) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if _, err := client.ComputeMatch(context.Background(), "", "c1"); !IsValidation(err) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no remote calls, got %d", calls)
	}
}
