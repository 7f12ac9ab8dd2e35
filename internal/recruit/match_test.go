package recruit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestBandClassification(t *testing.T) {
	cases := []struct {
		name    string
		score   int
		isMatch bool
		want    Band
	}{
		{"no match flag wins over high score", 85, false, BandNone},
		{"below thirty", 29, true, BandNone},
		{"weak", 35, true, BandWeak},
		{"good lower bound", 50, true, BandGood},
		{"good", 69, true, BandGood},
		{"excellent lower bound", 70, true, BandExcellent},
		{"excellent", 95, true, BandExcellent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &MatchResult{Score: tc.score, IsMatch: tc.isMatch}
			if got := r.Band(); got != tc.want {
				t.Fatalf("score %d isMatch %v: expected %q, got %q", tc.score, tc.isMatch, tc.want, got)
			}
		})
	}
}

func TestAnalysisPrefersSummary(t *testing.T) {
	r := &MatchResult{Summary: "direct", AISummary: "listed"}
	if got := r.Analysis(); got != "direct" {
		t.Fatalf("expected summary field, got %q", got)
	}

	r = &MatchResult{AISummary: "listed"}
	if got := r.Analysis(); got != "listed" {
		t.Fatalf("expected aiSummary fallback, got %q", got)
	}
}

func TestEmptyDetectsAcknowledgementBody(t *testing.T) {
	if !(&MatchResult{}).Empty() {
		t.Fatal("zero result should be empty")
	}

	full := &MatchResult{ID: "m1", Score: 75, Summary: "good fit"}
	if full.Empty() {
		t.Fatal("populated result should not be empty")
	}
}

func TestGetMatchResultsDecodesCandidateRefs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/match/j1" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("showRejected"); got != "true" {
			t.Fatalf("expected showRejected=true, got %q", got)
		}

		w.Write([]byte(`[
			{"_id": "m1", "score": 80, "isMatch": true, "candidateId": {"_id": "c1", "name": "Omar"}, "aiSummary": "strong"},
			{"_id": "m2", "score": 20, "isMatch": false, "candidateId": "c2"}
		]`))
	}))
	defer server.Close()

	client := New(zap.NewNop(), server.URL, "")

	results, err := client.GetMatchResults(context.Background(), "j1", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Candidate == nil || results[0].Candidate.Name != "Omar" {
		t.Fatalf("populated candidate ref not decoded: %+v", results[0].Candidate)
	}
	if results[1].Candidate == nil || results[1].Candidate.ID != "c2" {
		t.Fatalf("bare candidate ref not decoded: %+v", results[1].Candidate)
	}
}
