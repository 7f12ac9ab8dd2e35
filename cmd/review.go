package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/hireflow/hireflow/internal/matching"
	"github.com/hireflow/hireflow/internal/recruit"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errBack = errors.New("back")

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Match and review applicants for a job (recruiters only)",
	Run: func(cmd *cobra.Command, _ []string) {
		a, err := newApp()
		if err != nil {
			log.Fatalf("starting up: %v", err)
		}

		ctx := cmd.Context()

		if err := a.requireSession(ctx); err != nil {
			a.logger.Fatal("checking session", zap.Error(err))
		}

		if a.session.Role() != recruit.RoleRecruiter {
			a.logger.Fatal("only recruiters can review applications")
		}

		if err := a.dir.LoadAll(ctx); err != nil {
			a.logger.Fatal("loading directory", zap.Error(err))
		}

		if err := a.dir.LoadApplicationPartitions(ctx); err != nil {
			a.logger.Warn("loading reviewed applications", zap.Error(err))
		}

		a.matcher.SetStageObserver(func(_ string, stage matching.Stage) {
			fmt.Printf("  [%d/4] %s\n", stage.Seq, stage.Label)
		})

		for {
			job, err := a.pickJob()
			if err != nil {
				return
			}

			a.reviewJob(ctx, job)
		}
	},
}

var reviewedCmd = &cobra.Command{
	Use:   "reviewed",
	Short: "List already reviewed applications",
	Run: func(cmd *cobra.Command, _ []string) {
		a, err := newApp()
		if err != nil {
			log.Fatalf("starting up: %v", err)
		}

		ctx := cmd.Context()

		if err := a.requireSession(ctx); err != nil {
			a.logger.Fatal("checking session", zap.Error(err))
		}

		if err := a.dir.LoadApplicationPartitions(ctx); err != nil {
			a.logger.Fatal("loading reviewed applications", zap.Error(err))
		}

		rejected, _ := cmd.Flags().GetBool("rejected")

		apps := a.dir.Shortlisted()
		label := "shortlisted"
		if rejected {
			apps = a.dir.Rejected()
			label = "rejected"
		}

		if apps.Len() == 0 {
			fmt.Printf("No %s applications.\n", label)
			return
		}

		for _, app := range apps.Items {
			score := "-"
			if app.MatchScore != nil {
				score = fmt.Sprintf("%d", *app.MatchScore)
			}

			fmt.Printf("%s  %s -> %s  score: %s\n", app.ID, app.Candidate.Name, app.Job.Title, score)
		}
	},
}

func init() {
	reviewedCmd.Flags().Bool("rejected", false, "show the rejected partition instead of shortlisted")

	rootCmd.AddCommand(reviewCmd, reviewedCmd)
}

func (a *App) pickJob() (*recruit.Job, error) {
	jobs := a.dir.Jobs()
	if jobs.Len() == 0 {
		fmt.Println("No jobs posted yet.")
		return nil, errBack
	}

	items := append(jobs.Titles(), "Quit")
	prompt := promptui.Select{Label: "Job", Items: items, Size: 10}

	i, _, err := prompt.Run()
	if err != nil || i == len(items)-1 {
		return nil, errBack
	}

	return jobs.Items[i], nil
}

// reviewJob loops over the job's pending applicants until the recruiter backs
// out, reloading the pending set after every disposition.
func (a *App) reviewJob(ctx context.Context, job *recruit.Job) {
	for {
		pending, err := a.reviews.LoadPending(ctx, job.ID)
		if err != nil {
			a.logger.Error("loading pending applications", zap.Error(err))
			return
		}

		if len(pending) == 0 {
			fmt.Printf("No pending applicants for %q.\n", job.Title)
			return
		}

		app, err := pickApplicant(pending)
		if err != nil {
			return
		}

		a.reviewApplicant(ctx, job, app)
	}
}

func pickApplicant(pending []*recruit.Application) (*recruit.Application, error) {
	items := make([]string, 0, len(pending)+1)
	for _, app := range pending {
		items = append(items, fmt.Sprintf("%s <%s>", app.Candidate.Name, app.Candidate.Email))
	}
	items = append(items, "Back")

	prompt := promptui.Select{Label: "Applicant", Items: items, Size: 10}

	i, _, err := prompt.Run()
	if err != nil || i == len(items)-1 {
		return nil, errBack
	}

	return pending[i], nil
}

func (a *App) reviewApplicant(ctx context.Context, job *recruit.Job, app *recruit.Application) {
	fmt.Printf("\nMatching %s against %q...\n", app.Candidate.Name, job.Title)

	outcome, err := a.matcher.Match(ctx, job.ID, app.Candidate.ID)
	if err != nil {
		fmt.Println(recruit.Reason(err, matching.FailureMessage))
		return
	}

	result := outcome.Result
	fmt.Printf("\n%s (score %d, confidence %s)\n", result.Band(), result.Score, result.ConfidenceLevel)
	if len(result.MatchedSkills) > 0 {
		fmt.Printf("  matched: %s\n", strings.Join(result.MatchedSkills, ", "))
	}
	if len(result.MissingSkills) > 0 {
		fmt.Printf("  missing: %s\n", strings.Join(result.MissingSkills, ", "))
	}
	if analysis := result.Analysis(); analysis != "" {
		fmt.Printf("  %s\n", analysis)
	}
	fmt.Println()

	// The compute response may omit the application id; the pending entry the
	// recruiter selected is then the authoritative link.
	applicationID := outcome.ApplicationID
	if applicationID == "" {
		applicationID = app.ID
	}

	for {
		prompt := promptui.Select{
			Label: "Decision",
			Items: []string{"Shortlist", "Reject", "Leave feedback", "Back"},
		}

		i, _, err := prompt.Run()
		if err != nil {
			return
		}

		switch i {
		case 0:
			a.decide(ctx, a.reviews.Shortlist, applicationID, "Failed to shortlist application")
			return
		case 1:
			a.decide(ctx, a.reviews.Reject, applicationID, "Failed to reject application")
			return
		case 2:
			a.leaveFeedback(ctx, result.ID)
		default:
			return
		}
	}
}

func (a *App) decide(ctx context.Context, call func(context.Context, string) (string, error), applicationID, fallback string) {
	message, err := call(ctx, applicationID)
	if err != nil {
		fmt.Println(recruit.Reason(err, fallback))
		return
	}

	fmt.Println(message)
}

func (a *App) leaveFeedback(ctx context.Context, resultID string) {
	prompt := promptui.Prompt{Label: "Feedback"}

	text, err := prompt.Run()
	if err != nil {
		return
	}

	if err := a.matcher.SendFeedback(ctx, resultID, text); err != nil {
		fmt.Println(recruit.Reason(err, "Failed to send feedback"))
		return
	}

	fmt.Println("Feedback sent.")
}
