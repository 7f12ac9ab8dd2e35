package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hireflow/hireflow/internal/directory"
	"github.com/hireflow/hireflow/internal/logger"
	"github.com/hireflow/hireflow/internal/matching"
	"github.com/hireflow/hireflow/internal/recruit"
	"github.com/hireflow/hireflow/internal/review"
	"github.com/hireflow/hireflow/internal/secrets"
	"github.com/hireflow/hireflow/internal/session"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app = "hireflow"
)

type Config struct {
	ServerURL string        `mapstructure:"server-url"`
	UserAgent string        `mapstructure:"user-agent"`
	TokenFile string        `mapstructure:"token-file"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hireflow is a console client for the HireFlow recruitment platform",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("token-file", "HIREFLOW_TOKEN_FILE"); err != nil {
		log.Fatalf("binding HIREFLOW_TOKEN_FILE environment variable: %v", err)
	}

	if err := viper.BindEnv("server-url", "HIREFLOW_SERVER_URL"); err != nil {
		log.Fatalf("binding HIREFLOW_SERVER_URL environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hireflow.yaml in current directory)")
	rootCmd.PersistentFlags().String("server-url", "", "base URL of the recruitment platform API")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("server-url", rootCmd.PersistentFlags().Lookup("server-url"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// The config file is optional unless one was named explicitly.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}

	return config, nil
}

// App wires the session manager, directory cache, match orchestrator and
// review store around one platform client. Commands are thin views over it.
type App struct {
	logger    *zap.Logger
	config    *Config
	api       *recruit.Client
	session   *session.Manager
	dir       *directory.Cache
	reviews   *review.Store
	matcher   *matching.Orchestrator
	tokenFile string
}

func newApp() (*App, error) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}

	serverURL := strings.TrimSpace(config.ServerURL)
	if serverURL == "" {
		serverURL = strings.TrimSpace(viper.GetString("server-url"))
	}

	tokenFile := strings.TrimSpace(config.TokenFile)
	if tokenFile == "" {
		tokenFile = strings.TrimSpace(viper.GetString("token-file"))
	}
	if tokenFile == "" {
		tokenFile = defaultTokenFile()
	}

	// Not being logged in yet is fine; every protected command checks the
	// session before doing anything.
	token, err := secrets.Load(secrets.Source{Name: "session token", File: tokenFile})
	if err != nil {
		logger.Debug("no stored session token", zap.Error(err))
		token = ""
	}

	api := recruit.New(logger, serverURL, token)
	if config.UserAgent != "" {
		api.UserAgent = config.UserAgent
	}
	if config.Timeout > 0 {
		api.HTTPClient.Timeout = config.Timeout
	}

	sess := session.NewManager(api, logger)
	sess.SetExpiredObserver(func() {
		fmt.Println("Session expired. Please login again.")
	})

	dir := directory.New(api, sess, logger)
	reviews := review.New(api, dir, logger)
	matcher := matching.New(api, logger)

	return &App{
		logger:    logger,
		config:    config,
		api:       api,
		session:   sess,
		dir:       dir,
		reviews:   reviews,
		matcher:   matcher,
		tokenFile: tokenFile,
	}, nil
}

// requireSession gates protected commands: the session check must complete
// before any live data is rendered.
func (a *App) requireSession(ctx context.Context) error {
	if a.session.CheckSession(ctx) != session.StateAuthenticated {
		return fmt.Errorf("you are not logged in. Run '%s login' first", app)
	}

	return nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, "."+app+"-token")
}
