package recruit

import (
	"context"
	"fmt"
	"io"
)

type Profiles struct {
	Items []*CandidateProfile
}

// CandidateProfile is role-scoped on the server: a candidate sees only their
// own profile, recruiters and admins see all of them.
type CandidateProfile struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	AppliedJobs []string `json:"appliedJobs"`
}

func (c *Client) GetCandidates(ctx context.Context) (*Profiles, error) {
	var items []*CandidateProfile
	if err := c.getJSON(ctx, "candidates", fmt.Sprintf("%s/api/candidates", c.APIURL), nil, &items); err != nil {
		return nil, err
	}

	return &Profiles{Items: items}, nil
}

// ApplyToJob submits an application and returns the server's message.
func (c *Client) ApplyToJob(ctx context.Context, jobID string) (string, error) {
	if jobID == "" {
		return "", ValidationError("apply", "Job ID is required")
	}

	var msg apiMessage
	if err := c.postJSON(ctx, "apply", fmt.Sprintf("%s/api/candidates/apply/%s", c.APIURL, jobID), nil, &msg); err != nil {
		return "", err
	}

	return msg.Message, nil
}

// UploadResume sends the resume file as multipart form data under the
// "resume" field.
func (c *Client) UploadResume(ctx context.Context, filename string, file io.Reader) (string, error) {
	if filename == "" || file == nil {
		return "", ValidationError("upload resume", "Resume file is required")
	}

	var msg apiMessage
	err := c.postFormFile(ctx, "upload resume", fmt.Sprintf("%s/api/candidates/upload", c.APIURL), "resume", filename, file, &msg)
	if err != nil {
		return "", err
	}

	return msg.Message, nil
}

func (p *Profiles) Len() int {
	return len(p.Items)
}

func (p *Profiles) FindByID(id string) *CandidateProfile {
	for _, profile := range p.Items {
		if profile.ID == id {
			return profile
		}
	}

	return nil
}

// Own returns the signed-in candidate's profile. The server sends exactly one
// profile for the candidate role.
func (p *Profiles) Own() *CandidateProfile {
	if len(p.Items) == 0 {
		return nil
	}

	return p.Items[0]
}

func (cp *CandidateProfile) HasApplied(jobID string) bool {
	for _, id := range cp.AppliedJobs {
		if id == jobID {
			return true
		}
	}

	return false
}
