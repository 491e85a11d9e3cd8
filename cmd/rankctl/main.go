// Command rankctl drives the ranking API from a terminal with the same services the
// dashboard uses. The session lives in a YAML file under the user's home directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"tecrank_admin/internal/app/service"
	"tecrank_admin/internal/app/session"
	"tecrank_admin/internal/domain/repository"
	"tecrank_admin/internal/platform/backend"
	"tecrank_admin/internal/platform/config"
	"tecrank_admin/internal/platform/logger"
	"time"

	"github.com/spf13/cobra"
)

// currentKey points at the sid of the logged-in session inside the session file.
const (
	pointerSID = "rankctl"
	currentKey = "current"
)

var errNotLoggedIn = errors.New("nenhuma sessão ativa; execute rankctl login")

var (
	backendURL  string
	sessionFile string
	verbose     bool
	timeout     time.Duration

	app *cliApp
)

type cliApp struct {
	store         repository.SessionRepository
	sessions      *session.Manager
	auth          *service.AuthService
	collaborators *service.CollaboratorService
	ranking       *service.RankingService
	exports       *service.ExportService
}

func newApp(cfg *config.Config, baseURL, file string, slow time.Duration) *cliApp {
	store := repository.NewFileSessionRepository(file)
	sessions := session.NewManager(store, cfg.SessionSealKey)
	client := backend.NewClient(baseURL, cfg.BackendTimeout, nil)
	sectorRepo := repository.NewApiSectorRepository(client)
	subjectRepo := repository.NewApiSubjectRepository(client)
	evalRepo := repository.NewApiEvaluationRepository(client)
	return &cliApp{
		store:         store,
		sessions:      sessions,
		auth:          service.NewAuthService(repository.NewApiAuthRepository(client), sessions),
		collaborators: service.NewCollaboratorService(repository.NewApiCollaboratorRepository(client), sectorRepo),
		ranking:       service.NewRankingService(repository.NewApiRankingRepository(client, slow)),
		exports:       service.NewExportService(evalRepo, subjectRepo),
	}
}

// current opens the logged-in session and binds it to ctx.
func (a *cliApp) current(ctx context.Context) (context.Context, *session.Session, error) {
	sid, err := a.store.Get(ctx, pointerSID, currentKey)
	if err != nil {
		return ctx, nil, err
	}
	if sid == "" {
		return ctx, nil, errNotLoggedIn
	}
	sess := a.sessions.Open(sid)
	if err := sess.Init(ctx); err != nil {
		return ctx, nil, err
	}
	if !sess.IsLoggedIn(ctx) {
		return ctx, nil, errNotLoggedIn
	}
	return session.WithSession(ctx, sess), sess, nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rankctl/session.yaml"
	}
	return filepath.Join(home, ".rankctl", "session.yaml")
}

var rootCmd = &cobra.Command{
	Use:   "rankctl",
	Short: "Administra o ranking técnico pela linha de comando",
	Long: `rankctl fala com a API do ranking técnico.

Comece com "rankctl login"; os demais comandos usam a sessão salva.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		if err := logger.Init(level); err != nil {
			return err
		}
		config.Load()
		cfg := config.AppConfig
		if backendURL == "" {
			backendURL = cfg.BackendBaseURL
		}
		if sessionFile == "" {
			sessionFile = defaultSessionFile()
		}
		app = newApp(cfg, backendURL, sessionFile, cfg.BackendSlowTimeout)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "URL da API (padrão: BACKEND_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session-file", "", "Arquivo da sessão (padrão: ~/.rankctl/session.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log detalhado")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 3*time.Minute, "Tempo máximo do comando")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, collaboratorsCmd, rankingCmd, exportCmd, themeCmd)
}

// commandContext bounds a command by --timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
