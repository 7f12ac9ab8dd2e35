package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/hireflow/hireflow/internal/recruit"
	"github.com/hireflow/hireflow/internal/secrets"
	"github.com/hireflow/hireflow/internal/session"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the platform and store the session token",
	Run: func(cmd *cobra.Command, _ []string) {
		a, err := newApp()
		if err != nil {
			log.Fatalf("starting up: %v", err)
		}

		ctx := cmd.Context()

		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			email = promptFor("Email", false, a.logger)
		}

		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = promptFor("Password", true, a.logger)
		}

		identity, err := a.session.Login(ctx, email, password)
		if err != nil {
			a.logger.Fatal("login failed", zap.String("reason", recruit.Reason(err, session.LoginFallback)))
		}

		a.storeToken()

		fmt.Printf("Logged in as %s <%s> (%s)\n", identity.Name, identity.Email, identity.Role)
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register a new account on the platform",
	Run: func(cmd *cobra.Command, _ []string) {
		a, err := newApp()
		if err != nil {
			log.Fatalf("starting up: %v", err)
		}

		ctx := cmd.Context()

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = promptFor("Name", false, a.logger)
		}

		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			email = promptFor("Email", false, a.logger)
		}

		role, _ := cmd.Flags().GetString("role")
		if role == "" {
			rolePrompt := promptui.Select{
				Label: "Role",
				Items: []string{string(recruit.RoleCandidate), string(recruit.RoleRecruiter)},
			}
			_, role, err = rolePrompt.Run()
			if err != nil {
				a.logger.Fatal("reading role", zap.Error(err))
			}
		}

		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = promptFor("Password", true, a.logger)
		}

		identity, err := a.session.Signup(ctx, name, email, password, recruit.Role(role))
		if err != nil {
			a.logger.Fatal("signup failed", zap.String("reason", recruit.Reason(err, session.SignupFallback)))
		}

		a.storeToken()

		fmt.Printf("Welcome, %s! You are signed up as a %s.\n", identity.Name, identity.Role)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored session token",
	Run: func(cmd *cobra.Command, _ []string) {
		a, err := newApp()
		if err != nil {
			log.Fatalf("starting up: %v", err)
		}

		a.session.Logout(cmd.Context())

		if a.tokenFile != "" {
			// Best effort; a missing file is as good as a removed one.
			_ = os.Remove(a.tokenFile)
		}

		fmt.Println("Logged out.")
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the currently authenticated identity",
	Run: func(cmd *cobra.Command, _ []string) {
		a, err := newApp()
		if err != nil {
			log.Fatalf("starting up: %v", err)
		}

		if err := a.requireSession(cmd.Context()); err != nil {
			a.logger.Fatal("checking session", zap.Error(err))
		}

		identity := a.session.Identity()
		fmt.Printf("%s <%s> (%s)\n", identity.Name, identity.Email, identity.Role)
	},
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password (prompted when omitted)")

	signupCmd.Flags().String("name", "", "display name")
	signupCmd.Flags().String("email", "", "account email")
	signupCmd.Flags().String("password", "", "account password (prompted when omitted)")
	signupCmd.Flags().String("role", "", "account role: candidate or recruiter")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
}

func (a *App) storeToken() {
	token := a.api.Token()
	if a.tokenFile == "" || token == "" {
		return
	}

	if err := secrets.Save(a.tokenFile, token); err != nil {
		a.logger.Warn("storing session token", zap.Error(err))
	}
}

func promptFor(label string, masked bool, logger *zap.Logger) string {
	prompt := promptui.Prompt{Label: label}
	if masked {
		prompt.Mask = '*'
	}

	value, err := prompt.Run()
	if err != nil {
		logger.Fatal("reading input", zap.String("field", label), zap.Error(err))
	}

	return value
}
