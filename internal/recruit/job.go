package recruit

import (
	"context"
	"fmt"
)

type Jobs struct {
	Items []*Job
}

type Job struct {
	ID          string   `json:"_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

// NewJob is the payload for posting a job.
type NewJob struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

func (c *Client) GetJobs(ctx context.Context) (*Jobs, error) {
	var items []*Job
	if err := c.getJSON(ctx, "jobs", fmt.Sprintf("%s/api/jobs", c.APIURL), nil, &items); err != nil {
		return nil, err
	}

	return &Jobs{Items: items}, nil
}

func (c *Client) CreateJob(ctx context.Context, job *NewJob) error {
	if job == nil || job.Title == "" || job.Description == "" || len(job.Skills) == 0 {
		return ValidationError("create job", "Title, description and skills are required")
	}

	return c.postJSON(ctx, "create job", fmt.Sprintf("%s/api/jobs", c.APIURL), job, nil)
}

func (c *Client) DeleteJob(ctx context.Context, id string) error {
	if id == "" {
		return ValidationError("delete job", "Job ID is required")
	}

	return c.deleteJSON(ctx, "delete job", fmt.Sprintf("%s/api/jobs/%s", c.APIURL, id), nil)
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

func (j *Jobs) FindByID(id string) *Job {
	for _, job := range j.Items {
		if job.ID == id {
			return job
		}
	}

	return nil
}

func (j *Jobs) Titles() []string {
	titles := make([]string, 0, len(j.Items))
	for _, job := range j.Items {
		titles = append(titles, job.Title)
	}

	return titles
}
