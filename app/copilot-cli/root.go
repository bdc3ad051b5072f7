package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/yoockh/buuzzer/config"
	"github.com/yoockh/buuzzer/internal/credentials"
	"github.com/yoockh/buuzzer/internal/logger"
	"github.com/yoockh/buuzzer/internal/models"
	"github.com/yoockh/buuzzer/internal/stream"
)

type rootFlags struct {
	apiBase    string
	provider   string
	token      string
	resumeFile string
	jdFile     string
	years      int
	maxLines   int
	style      string
	history    int
}

func newRootCmd() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Config{APIBase: "http://localhost:4000", DefaultProvider: "openai", LogLevel: "warn"}
	}
	f := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "copilot-cli",
		Short: "Stream interview answers for transcript snippets read from stdin",
		Long: `copilot-cli reads one interviewer snippet per line from stdin and prints
the streamed answer for each, remembering earlier answers as context.

Examples:
  echo "What is REST?" | copilot-cli --token $TOKEN --max-lines 10
  copilot-cli login $TOKEN && copilot-cli --resume cv.txt --jd job.txt`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, cfg, f)
		},
	}

	cmd.Flags().StringVar(&f.apiBase, "api-base", cfg.APIBase, "Answer backend base URL")
	cmd.Flags().StringVarP(&f.provider, "provider", "p", cfg.DefaultProvider, "Model provider: openai, gemini or deepseek")
	cmd.Flags().StringVar(&f.token, "token", os.Getenv("BUUZZER_TOKEN"), "Bearer token for this run")
	cmd.Flags().StringVar(&f.resumeFile, "resume", "", "File with the resume text")
	cmd.Flags().StringVar(&f.jdFile, "jd", "", "File with the job description")
	cmd.Flags().IntVar(&f.years, "years", -1, "Years of professional experience (-1 = not specified)")
	cmd.Flags().IntVar(&f.maxLines, "max-lines", 0, "Preferred answer length in lines (0 = natural)")
	cmd.Flags().StringVar(&f.style, "style", "", "Response style, e.g. \"casual British English\"")
	cmd.Flags().IntVar(&f.history, "history", cfg.HistoryCapacity, "How many past answers to remember")

	cmd.AddCommand(newLoginCmd(cfg), newLogoutCmd(cfg))
	return cmd
}

// persistentStore returns the Redis credential store, or nil when Redis is not
// configured.
func persistentStore(cfg config.Config) (credentials.Store, *redis.Client, error) {
	target := cfg.RedisTarget()
	if target == "" {
		return nil, nil, nil
	}
	rdb, err := config.InitRedis(target)
	if err != nil {
		return nil, nil, err
	}
	return credentials.NewRedisStore(rdb, cfg.CredentialPrefix, cfg.CredentialTTL), rdb, nil
}

func newLoginCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "login TOKEN",
		Short: "Store a token for the next session to pick up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, rdb, err := persistentStore(cfg)
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("login needs REDIS_ADDR or REDIS_URL")
			}
			defer rdb.Close()
			return store.Set(cmd.Context(), credentials.TokenKey, strings.TrimSpace(args[0]))
		},
	}
}

func newLogoutCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove a stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, rdb, err := persistentStore(cfg)
			if err != nil || store == nil {
				return err
			}
			defer rdb.Close()
			return store.Delete(cmd.Context(), credentials.TokenKey)
		},
	}
}

func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (f *rootFlags) preferences() (models.UserPreferences, error) {
	resume, err := readOptional(f.resumeFile)
	if err != nil {
		return models.UserPreferences{}, err
	}
	jd, err := readOptional(f.jdFile)
	if err != nil {
		return models.UserPreferences{}, err
	}

	p := models.UserPreferences{
		ResumeText:     resume,
		JobDescription: jd,
		ResponseStyle:  f.style,
	}
	if f.years >= 0 {
		years := f.years
		p.YearsOfExperience = &years
	}
	if f.maxLines > 0 {
		lines := f.maxLines
		p.MaxLines = &lines
	}
	return p, nil
}

func runAsk(cmd *cobra.Command, cfg config.Config, f *rootFlags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log := logger.NewWithOutput(cfg.LogLevel, cmd.ErrOrStderr())

	prefs, err := f.preferences()
	if err != nil {
		return err
	}

	provider, ok := models.ParseProvider(f.provider)
	if !ok {
		log.WithField("provider", f.provider).Warn("unknown provider, using openai")
		provider = models.ProviderOpenAI
	}

	session := credentials.NewMemoryStore()
	if tok := strings.TrimSpace(f.token); tok != "" {
		if err := session.Set(ctx, credentials.TokenKey, tok); err != nil {
			return err
		}
	}
	persistent, rdb, err := persistentStore(cfg)
	if err != nil {
		log.WithError(err).Warn("credential store unavailable")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	client := stream.New(f.apiBase, credentials.NewResolver(session, persistent, credentials.WithResolverLogger(log)), stream.WithLogger(log))

	r := &repl{
		client:   client,
		provider: provider,
		prefs:    prefs,
		log:      log.WithField("op", "copilot-cli"),
		capacity: f.history,
	}
	return r.run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}

