package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hireflow/hireflow/internal/recruit"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Browse and manage job postings",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List job postings",
	Run: func(cmd *cobra.Command, _ []string) {
		a, err := newApp()
		if err != nil {
			log.Fatalf("starting up: %v", err)
		}

		ctx := cmd.Context()

		if err := a.requireSession(ctx); err != nil {
			a.logger.Fatal("checking session", zap.Error(err))
		}

		if err := a.dir.LoadAll(ctx); err != nil {
			a.logger.Fatal("loading directory", zap.Error(err))
		}

		jobs := a.dir.Jobs()
		if jobs.Len() == 0 {
			fmt.Println("No jobs posted yet.")
			return
		}

		// Candidates see which postings they already applied to.
		var own *recruit.CandidateProfile
		if a.session.Role() == recruit.RoleCandidate {
			own = a.dir.Candidates().Own()
		}

		for _, job := range jobs.Items {
			marker := ""
			if own != nil && own.HasApplied(job.ID) {
				marker = " [applied]"
			}

			fmt.Printf("%s  %s%s\n", job.ID, job.Title, marker)
			fmt.Printf("    skills: %s\n", strings.Join(job.Skills, ", "))
		}
	},
}

var jobsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Post a new job",
	Run: func(cmd *cobra.Command, _ []string) {
		a, err := newApp()
		if err != nil {
			log.Fatalf("starting up: %v", err)
		}

		ctx := cmd.Context()

		if err := a.requireSession(ctx); err != nil {
			a.logger.Fatal("checking session", zap.Error(err))
		}

		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		skillsFlag, _ := cmd.Flags().GetString("skills")

		var skills []string
		for _, s := range strings.Split(skillsFlag, ",") {
			if s = strings.TrimSpace(s); s != "" {
				skills = append(skills, s)
			}
		}

		job := &recruit.NewJob{Title: title, Description: description, Skills: skills}
		if err := a.api.CreateJob(ctx, job); err != nil {
			a.logger.Fatal("creating job", zap.String("reason", recruit.Reason(err, "Failed to create job")))
		}

		if err := a.dir.LoadAll(ctx); err != nil {
			a.logger.Warn("refreshing directory", zap.Error(err))
		}

		fmt.Printf("Posted %q.\n", title)
	},
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete a job posting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp()
		if err != nil {
			log.Fatalf("starting up: %v", err)
		}

		ctx := cmd.Context()

		if err := a.requireSession(ctx); err != nil {
			a.logger.Fatal("checking session", zap.Error(err))
		}

		if err := a.api.DeleteJob(ctx, args[0]); err != nil {
			a.logger.Fatal("deleting job", zap.String("reason", recruit.Reason(err, "Failed to delete job")))
		}

		if err := a.dir.LoadAll(ctx); err != nil {
			a.logger.Warn("refreshing directory", zap.Error(err))
		}

		fmt.Println("Job deleted.")
	},
}

var jobsApplyCmd = &cobra.Command{
	Use:   "apply <job-id>",
	Short: "Apply to a job as the signed-in candidate",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp()
		if err != nil {
			log.Fatalf("starting up: %v", err)
		}

		ctx := cmd.Context()

		if err := a.requireSession(ctx); err != nil {
			a.logger.Fatal("checking session", zap.Error(err))
		}

		message, err := a.api.ApplyToJob(ctx, args[0])
		if err != nil {
			a.logger.Fatal("applying to job", zap.String("reason", recruit.Reason(err, "Failed to apply to job")))
		}

		if err := a.dir.LoadAll(ctx); err != nil {
			a.logger.Warn("refreshing directory", zap.Error(err))
		}

		fmt.Println(message)
	},
}

var uploadResumeCmd = &cobra.Command{
	Use:   "upload-resume <file>",
	Short: "Upload a resume for the signed-in candidate",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp()
		if err != nil {
			log.Fatalf("starting up: %v", err)
		}

		ctx := cmd.Context()

		if err := a.requireSession(ctx); err != nil {
			a.logger.Fatal("checking session", zap.Error(err))
		}

		file, err := os.Open(args[0])
		if err != nil {
			a.logger.Fatal("opening resume", zap.Error(err))
		}
		defer file.Close()

		message, err := a.api.UploadResume(ctx, filepath.Base(args[0]), file)
		if err != nil {
			a.logger.Fatal("uploading resume", zap.String("reason", recruit.Reason(err, "Failed to upload resume")))
		}

		fmt.Println(message)
	},
}

func init() {
	jobsCreateCmd.Flags().String("title", "", "job title")
	jobsCreateCmd.Flags().String("description", "", "job description")
	jobsCreateCmd.Flags().String("skills", "", "comma-separated required skills")

	jobsCmd.AddCommand(jobsListCmd, jobsCreateCmd, jobsDeleteCmd, jobsApplyCmd, uploadResumeCmd)
	rootCmd.AddCommand(jobsCmd)
}
