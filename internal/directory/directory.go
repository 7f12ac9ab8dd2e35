// Package directory holds the client-side copy of the jobs and candidate
// lists plus the reviewed application partitions. Consistency is full-reload:
// the cache is always a direct projection of the last complete read, never an
// incremental patch.
package directory

import (
	"context"
	"fmt"
	"sync"

	"github.com/hireflow/hireflow/internal/recruit"
	"github.com/hireflow/hireflow/internal/session"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Cache struct {
	api     *recruit.Client
	session *session.Manager
	logger  *zap.Logger

	mu          sync.RWMutex
	jobs        *recruit.Jobs
	candidates  *recruit.Profiles
	shortlisted *recruit.Applications
	rejected    *recruit.Applications
}

func New(api *recruit.Client, sess *session.Manager, logger *zap.Logger) *Cache {
	return &Cache{
		api:         api,
		session:     sess,
		logger:      logger,
		jobs:        &recruit.Jobs{},
		candidates:  &recruit.Profiles{},
		shortlisted: &recruit.Applications{},
		rejected:    &recruit.Applications{},
	}
}

// LoadAll fetches jobs and candidate profiles concurrently. The two reads are
// independent: a failure on one side is logged and does not stop the other.
// The first error is returned after both reads complete. Authorization
// failures additionally invalidate the session through the client's 401 hook.
func (c *Cache) LoadAll(ctx context.Context) error {
	var g errgroup.Group

	g.Go(func() error {
		jobs, err := c.api.GetJobs(ctx)
		if err != nil {
			c.logger.Error("loading jobs", zap.Error(err))
			return fmt.Errorf("load jobs: %w", err)
		}

		c.mu.Lock()
		c.jobs = jobs
		c.mu.Unlock()

		c.logger.Debug("loaded jobs", zap.Int("count", jobs.Len()))
		return nil
	})

	g.Go(func() error {
		candidates, err := c.api.GetCandidates(ctx)
		if err != nil {
			c.logger.Error("loading candidates", zap.Error(err))
			return fmt.Errorf("load candidates: %w", err)
		}

		c.mu.Lock()
		c.candidates = candidates
		c.mu.Unlock()

		c.logger.Debug("loaded candidates", zap.Int("count", candidates.Len()))
		return nil
	})

	return g.Wait()
}

// LoadApplicationPartitions refreshes the shortlisted and rejected sets. Only
// recruiters review applications, so any other role is a no-op, not an error.
// The two fetches are independent.
func (c *Cache) LoadApplicationPartitions(ctx context.Context) error {
	if c.session.Role() != recruit.RoleRecruiter {
		return nil
	}

	var g errgroup.Group

	g.Go(func() error {
		shortlisted, err := c.api.GetShortlistedApplications(ctx)
		if err != nil {
			c.logger.Error("loading shortlisted applications", zap.Error(err))
			return fmt.Errorf("load shortlisted: %w", err)
		}

		c.mu.Lock()
		c.shortlisted = shortlisted
		c.mu.Unlock()
		return nil
	})

	g.Go(func() error {
		rejected, err := c.api.GetRejectedApplications(ctx)
		if err != nil {
			c.logger.Error("loading rejected applications", zap.Error(err))
			return fmt.Errorf("load rejected: %w", err)
		}

		c.mu.Lock()
		c.rejected = rejected
		c.mu.Unlock()
		return nil
	})

	return g.Wait()
}

// Jobs returns the last loaded job list. Callers treat it as read-only.
func (c *Cache) Jobs() *recruit.Jobs {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.jobs
}

// Candidates returns the last loaded candidate profiles, role-scoped by the
// server.
func (c *Cache) Candidates() *recruit.Profiles {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.candidates
}

func (c *Cache) Shortlisted() *recruit.Applications {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.shortlisted
}

func (c *Cache) Rejected() *recruit.Applications {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rejected
}
