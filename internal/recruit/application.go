package recruit

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "pending"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusRejected    ApplicationStatus = "rejected"
)

type Applications struct {
	Items []*Application
}

// Application documents come back with their job and candidate references
// populated by the server.
type Application struct {
	ID         string            `json:"_id"`
	Job        JobRef            `json:"jobId"`
	Candidate  CandidateRef      `json:"candidateId"`
	Status     ApplicationStatus `json:"status"`
	AppliedAt  string            `json:"appliedAt"`
	ReviewedAt string            `json:"reviewedAt"`
	MatchScore *int              `json:"matchScore"`
}

// JobRef and CandidateRef appear either as populated documents or as bare id
// strings, depending on the endpoint. Both shapes decode into the same type.
type JobRef struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

type CandidateRef struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (j *JobRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &j.ID)
	}

	type plain JobRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	*j = JobRef(p)
	return nil
}

func (r *CandidateRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}

	type plain CandidateRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	*r = CandidateRef(p)
	return nil
}

// refDecodeHook lets mapstructure accept a bare id string where a populated
// reference struct is expected.
func refDecodeHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}

	switch to {
	case reflect.TypeOf(JobRef{}), reflect.TypeOf(CandidateRef{}):
		return map[string]any{"_id": data}, nil
	default:
		return data, nil
	}
}

func (c *Client) GetApplications(ctx context.Context) (*Applications, error) {
	return c.getApplications(ctx, "applications", fmt.Sprintf("%s/api/applications", c.APIURL))
}

func (c *Client) GetShortlistedApplications(ctx context.Context) (*Applications, error) {
	return c.getApplications(ctx, "shortlisted applications", fmt.Sprintf("%s/api/applications/shortlisted", c.APIURL))
}

func (c *Client) GetRejectedApplications(ctx context.Context) (*Applications, error) {
	return c.getApplications(ctx, "rejected applications", fmt.Sprintf("%s/api/applications/rejected", c.APIURL))
}

func (c *Client) getApplications(ctx context.Context, op, url string) (*Applications, error) {
	items, err := c.getItems(ctx, op, url, nil)
	if err != nil {
		return nil, err
	}

	apps, err := decodeApplications(items)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return apps, nil
}

// ShortlistApplication marks the application shortlisted and returns the
// server's message verbatim.
func (c *Client) ShortlistApplication(ctx context.Context, id string) (string, error) {
	return c.disposition(ctx, "shortlist", id)
}

// RejectApplication marks the application rejected and returns the server's
// message verbatim.
func (c *Client) RejectApplication(ctx context.Context, id string) (string, error) {
	return c.disposition(ctx, "reject", id)
}

func (c *Client) disposition(ctx context.Context, action, id string) (string, error) {
	if id == "" {
		return "", ValidationError(action, "Application ID is required")
	}

	var msg apiMessage
	url := fmt.Sprintf("%s/api/applications/%s/%s", c.APIURL, id, action)
	if err := c.postJSON(ctx, action, url, nil, &msg); err != nil {
		return "", err
	}

	return msg.Message, nil
}

func decodeApplications(items []Item) (*Applications, error) {
	var apps []*Application

	cfg := &mapstructure.DecoderConfig{
		Result:     &apps,
		TagName:    "json",
		DecodeHook: mapstructure.DecodeHookFunc(refDecodeHook),
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode applications: %w", err)
	}

	return &Applications{Items: apps}, nil
}

func (a *Applications) Len() int {
	return len(a.Items)
}

// PendingForJob filters the pending partition for a single job.
func (a *Applications) PendingForJob(jobID string) []*Application {
	var pending []*Application
	for _, app := range a.Items {
		if app.Job.ID == jobID && app.Status == StatusPending {
			pending = append(pending, app)
		}
	}

	return pending
}

func (a *Applications) FindByID(id string) *Application {
	for _, app := range a.Items {
		if app.ID == id {
			return app
		}
	}

	return nil
}

func (a *Applications) IDs() []string {
	ids := make([]string, 0, len(a.Items))
	for _, app := range a.Items {
		ids = append(ids, app.ID)
	}

	return ids
}
