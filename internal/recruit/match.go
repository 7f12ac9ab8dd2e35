package recruit

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// Band labels mirror how the platform dashboard classifies scores.
type Band string

const (
	BandNone      Band = "Not a Match"
	BandWeak      Band = "Weak Match"
	BandGood      Band = "Good Match"
	BandExcellent Band = "Excellent Match"
)

// MatchResult is produced fresh by every scoring pass. The compute endpoint
// returns the analysis under "summary"; the per-job listing stores it as
// "aiSummary", hence the two fields.
type MatchResult struct {
	ID              string          `json:"_id"`
	ApplicationID   string          `json:"applicationId"`
	Score           int             `json:"score"`
	IsMatch         bool            `json:"isMatch"`
	MatchedSkills   []string        `json:"matchedSkills"`
	MissingSkills   []string        `json:"missingSkills"`
	ConfidenceLevel ConfidenceLevel `json:"confidenceLevel"`
	Summary         string          `json:"summary"`
	AISummary       string          `json:"aiSummary"`
	Feedback        string          `json:"feedback"`
	Candidate       *CandidateRef   `json:"candidateId"`
}

// ComputeMatch triggers one scoring pass for the (job, candidate) pair and
// returns the freshly computed result. Some server versions acknowledge with
// a bare message instead of the full document; callers detect that with Empty
// and confirm via GetMatchResults.
func (c *Client) ComputeMatch(ctx context.Context, jobID, candidateID string) (*MatchResult, error) {
	if jobID == "" || candidateID == "" {
		return nil, ValidationError("compute match", "Job ID and candidate ID are required")
	}

	var result MatchResult
	url := fmt.Sprintf("%s/api/match/%s/%s", c.APIURL, jobID, candidateID)
	if err := c.postJSON(ctx, "compute match", url, nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetMatchResults fetches the full result list for a job, with candidate
// references populated.
func (c *Client) GetMatchResults(ctx context.Context, jobID string, showRejected bool) ([]*MatchResult, error) {
	if jobID == "" {
		return nil, ValidationError("match results", "Job ID is required")
	}

	q := url.Values{}
	q.Set("showRejected", strconv.FormatBool(showRejected))

	items, err := c.getItems(ctx, "match results", fmt.Sprintf("%s/api/match/%s", c.APIURL, jobID), q)
	if err != nil {
		return nil, err
	}

	var results []*MatchResult
	cfg := &mapstructure.DecoderConfig{
		Result:     &results,
		TagName:    "json",
		DecodeHook: mapstructure.DecodeHookFunc(refDecodeHook),
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("match results: decode: %w", err)
	}

	return results, nil
}

// SendMatchFeedback attaches recruiter feedback text to a match result.
func (c *Client) SendMatchFeedback(ctx context.Context, resultID, text string) error {
	if resultID == "" {
		return ValidationError("match feedback", "Match result ID is required")
	}

	payload := map[string]string{"feedback": text}
	url := fmt.Sprintf("%s/api/match/feedback/%s", c.APIURL, resultID)

	return c.putJSON(ctx, "match feedback", url, payload, nil)
}

// Empty reports whether the result carries no usable payload, which happens
// when the compute endpoint only acknowledged the request.
func (r *MatchResult) Empty() bool {
	if r == nil {
		return true
	}

	return r.ID == "" && r.ApplicationID == "" && r.Score == 0 &&
		len(r.MatchedSkills) == 0 && len(r.MissingSkills) == 0 &&
		r.Summary == "" && r.AISummary == ""
}

// Analysis returns the AI summary regardless of which field the server used.
func (r *MatchResult) Analysis() string {
	if s := strings.TrimSpace(r.Summary); s != "" {
		return s
	}

	return strings.TrimSpace(r.AISummary)
}

// Band classifies the score: below 30 (or not a match at all) is a miss,
// 70 and up is excellent, 50 and up is good, the rest is weak.
func (r *MatchResult) Band() Band {
	switch {
	case !r.IsMatch || r.Score < 30:
		return BandNone
	case r.Score >= 70:
		return BandExcellent
	case r.Score >= 50:
		return BandGood
	default:
		return BandWeak
	}
}
