// Package review partitions a job's applications into pending, shortlisted
// and rejected sets and applies the recruiter's disposition decisions. The
// server is authoritative: the store never mutates a score and only adjusts
// partition membership in direct response to a confirmed disposition call.
package review

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hireflow/hireflow/internal/directory"
	"github.com/hireflow/hireflow/internal/recruit"

	"go.uber.org/zap"
)

// MissingApplicationMessage is shown when a disposition is attempted without
// an application id, which means the match workflow has to be run again.
const MissingApplicationMessage = "Application ID not found. Please try matching again."

type Store struct {
	api    *recruit.Client
	dir    *directory.Cache
	logger *zap.Logger

	mu      sync.Mutex
	pending map[string][]*recruit.Application
}

func New(api *recruit.Client, dir *directory.Cache, logger *zap.Logger) *Store {
	return &Store{
		api:     api,
		dir:     dir,
		logger:  logger,
		pending: make(map[string][]*recruit.Application),
	}
}

// LoadPending derives the pending partition for a job from the full
// application list.
func (s *Store) LoadPending(ctx context.Context, jobID string) ([]*recruit.Application, error) {
	if jobID == "" {
		return nil, recruit.ValidationError("load pending", "Job ID is required")
	}

	apps, err := s.api.GetApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("load applications: %w", err)
	}

	pending := apps.PendingForJob(jobID)

	s.mu.Lock()
	s.pending[jobID] = pending
	s.mu.Unlock()

	s.logger.Debug("loaded pending applications",
		zap.String("job_id", jobID),
		zap.Int("count", len(pending)),
	)

	return pending, nil
}

// Pending returns the last loaded pending partition for the job.
func (s *Store) Pending(jobID string) []*recruit.Application {
	s.mu.Lock()
	defer s.mu.Unlock()

	apps := s.pending[jobID]
	out := make([]*recruit.Application, len(apps))
	copy(out, apps)

	return out
}

// Shortlist moves the application out of pending on success and returns the
// server's message verbatim.
func (s *Store) Shortlist(ctx context.Context, applicationID string) (string, error) {
	return s.disposition(ctx, applicationID, s.api.ShortlistApplication)
}

// Reject is the mirror of Shortlist.
func (s *Store) Reject(ctx context.Context, applicationID string) (string, error) {
	return s.disposition(ctx, applicationID, s.api.RejectApplication)
}

// disposition is one-shot: a missing id yields a validation failure without
// any remote call; on success the application leaves the local pending set and
// the reviewed partitions are re-read from the server in full. Repeating a
// disposition is the server's concern; whatever it answers is surfaced as-is.
func (s *Store) disposition(ctx context.Context, applicationID string, call func(context.Context, string) (string, error)) (string, error) {
	if strings.TrimSpace(applicationID) == "" {
		return "", recruit.ValidationError("disposition", MissingApplicationMessage)
	}

	message, err := call(ctx, applicationID)
	if err != nil {
		return "", err
	}

	s.dropPending(applicationID)

	if err := s.dir.LoadApplicationPartitions(ctx); err != nil {
		s.logger.Warn("refreshing reviewed applications", zap.Error(err))
	}

	s.logger.Info("application reviewed",
		zap.String("application_id", applicationID),
		zap.String("message", message),
	)

	return message, nil
}

func (s *Store) dropPending(applicationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for jobID, apps := range s.pending {
		for i, app := range apps {
			if app.ID != applicationID {
				continue
			}

			s.pending[jobID] = append(apps[:i:i], apps[i+1:]...)
			break
		}
	}
}
