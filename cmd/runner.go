package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesync/internal/identity"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/repositories"
	"github.com/desertthunder/tunesync/internal/services"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/desertthunder/tunesync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Storage, adapters and the engine are built lazily so commands that only touch the
// config file never open the database.
type Runner struct {
	config     *shared.Config
	configPath string
	db         *sql.DB
	tokens     repositories.TokenStore
	runs       *repositories.SyncRunRepository
	cache      tasks.IDCache
	services   []services.Service
	engine     *tasks.Engine
	closers    []io.Closer
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sql.DB                 // opened from Config when nil
	Tokens     repositories.TokenStore // chosen by tokens.backend when nil
	Services   []services.Service      // built from Config and stored tokens when nil
	Engine     *tasks.Engine
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		tokens:     opts.Tokens,
		services:   opts.Services,
		engine:     opts.Engine,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	if opts.DB != nil {
		r.useDatabase(opts.DB)
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, listCommand, syncCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and any engine built afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) useDatabase(db *sql.DB) {
	r.db = db
	r.runs = repositories.NewSyncRunRepository(db)
	r.cache = repositories.NewTrackCache(repositories.NewTrackMappingRepository(db), r.logger)
	if r.tokens == nil && r.config.Tokens.Backend != "redis" {
		r.tokens = repositories.NewTokenRepository(db)
	}
}

// openDatabase opens and migrates the database on first use.
func (r *Runner) openDatabase() error {
	if r.db != nil {
		return nil
	}

	r.logger.Debug("opening database", "path", r.config.Database.Path)
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return err
	}
	r.closers = append(r.closers, db)
	r.useDatabase(db)
	return nil
}

// open opens the database and token store on first use.
func (r *Runner) open(ctx context.Context) error {
	if err := r.openDatabase(); err != nil {
		return err
	}

	if r.tokens == nil {
		client, err := repositories.NewRedisClient(ctx, r.config.Tokens)
		if err != nil {
			return err
		}
		r.closers = append(r.closers, client)
		r.tokens = repositories.NewRedisTokenStore(client, r.config.Tokens.KeyPrefix)
		r.logger.Debug("using redis token store", "addr", r.config.Tokens.RedisAddr)
	}
	return nil
}

// Close releases connections opened by the runner.
func (r *Runner) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i].Close())
	}
	r.closers = nil
	return errors.Join(errs...)
}

// platforms returns the configured platforms in priority order.
func (r *Runner) platforms() []models.Platform {
	platforms, err := models.ParsePlatforms(r.config.Sync.Platforms)
	if err != nil || len(platforms) == 0 {
		r.logger.Warn("invalid sync.platforms, using defaults", "platforms", r.config.Sync.Platforms, "error", err)
		return models.DefaultPlatforms
	}
	return platforms
}

// parsePlatform validates a platform tag given on the command line.
func parsePlatform(tag string) (models.Platform, error) {
	if tag == "" {
		return "", fmt.Errorf("%w: platform (spotify, youtube or deezer)", shared.ErrMissingArgument)
	}
	p, err := models.ParsePlatform(tag)
	if err != nil {
		return "", fmt.Errorf("%w: %v (must be spotify, youtube or deezer)", shared.ErrInvalidArgument, err)
	}
	return p, nil
}

// newService builds an unauthenticated adapter for p from the configured credentials and limits.
func (r *Runner) newService(p models.Platform) (services.Service, error) {
	opts := []services.Option{
		services.WithHTTPClient(r.httpClient),
		services.WithLogger(shared.WithLogger(r.logger, "platform", p)),
	}
	if interval := r.config.Limits.Interval(string(p)); interval > 0 {
		opts = append(opts, services.WithRateLimit(interval, r.config.Limits.Burst))
	}

	switch p {
	case models.Spotify:
		return services.NewSpotifyService(r.config.Credentials.Spotify.Map(), opts...)
	case models.YouTube:
		return services.NewYouTubeService(r.config.Credentials.YouTube.Map(), opts...)
	case models.Deezer:
		return services.NewDeezerService(opts...), nil
	default:
		return nil, fmt.Errorf("%w: unknown platform %q", shared.ErrInvalidArgument, p)
	}
}

// authenticate installs the stored token for svc. Refreshed OAuth tokens are written back to the store.
func (r *Runner) authenticate(ctx context.Context, svc services.Service) error {
	user, p := r.config.Sync.User, svc.Platform()

	token, err := r.tokens.Get(ctx, user, p)
	if err != nil {
		return err
	}

	if oauthSvc, ok := svc.(services.OAuthService); ok {
		oauthSvc.SetTokenRefreshCallback(repositories.PersistRefreshed(r.tokens, user, p, r.logger))
		oauthSvc.UseToken(token)
		return nil
	}
	return svc.Authenticate(ctx, map[string]string{"access_token": token.AccessToken})
}

// loadServices builds and authenticates every configured platform. Platforms without a stored
// token are skipped with a warning.
func (r *Runner) loadServices(ctx context.Context) ([]services.Service, error) {
	if r.services != nil {
		return r.services, nil
	}

	if err := r.open(ctx); err != nil {
		return nil, err
	}

	var svcs []services.Service
	for _, p := range r.platforms() {
		svc, err := r.newService(p)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s service: %w", p, err)
		}

		if err := r.authenticate(ctx, svc); err != nil {
			if errors.Is(err, shared.ErrTokenNotFound) {
				r.logger.Warn("platform not connected, skipping", "platform", p, "hint", "tunesync auth login "+p.String())
				continue
			}
			return nil, fmt.Errorf("failed to authenticate %s: %w", p, err)
		}
		svcs = append(svcs, svc)
	}

	r.services = svcs
	return svcs, nil
}

// resolver returns the identity resolver for the configured YouTube heuristic.
func (r *Runner) resolver() *identity.Resolver {
	if r.config.Sync.YouTubePreferChannel {
		return identity.NewResolver(identity.PreferChannel)
	}
	return identity.NewResolver(identity.SplitAlways)
}

// syncEngine returns the engine over the configured platforms.
func (r *Runner) syncEngine(ctx context.Context) (*tasks.Engine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	svcs, err := r.loadServices(ctx)
	if err != nil {
		return nil, err
	}

	opts := tasks.EngineOpts{
		Services:     svcs,
		Resolver:     r.resolver(),
		User:         r.config.Sync.User,
		Cache:        r.cache,
		FetchTimeout: r.config.Sync.FetchTimeout,
		Logger:       r.logger,
	}
	if r.runs != nil {
		opts.History = r.runs
	}

	r.engine = tasks.NewEngine(opts)
	return r.engine, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
