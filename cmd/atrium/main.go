package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/atrium-hq/atrium/cmd/atrium/cli"
	"github.com/atrium-hq/atrium/internal/app"
	"github.com/atrium-hq/atrium/internal/auth"
	"github.com/atrium-hq/atrium/internal/boot"
	"github.com/atrium-hq/atrium/internal/catalog"
	"github.com/atrium-hq/atrium/internal/i18n"
	"github.com/atrium-hq/atrium/internal/meta"
	"github.com/atrium-hq/atrium/internal/observability"
	"github.com/atrium-hq/atrium/internal/permissions"
	"github.com/atrium-hq/atrium/internal/platform/cache"
	"github.com/atrium-hq/atrium/internal/platform/db"
	"github.com/atrium-hq/atrium/internal/rbac"
	"github.com/atrium-hq/atrium/internal/settings"
	"github.com/atrium-hq/atrium/internal/shared"
	"github.com/atrium-hq/atrium/internal/users"
	"github.com/atrium-hq/atrium/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 && os.Args[1] == "ops" {
		stop()
		os.Exit(runOps(context.Background(), cfg, os.Args[2:]))
	}

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "atrium_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	activityLogger := shared.NewActivityLogger(dbpool)
	authHandler := auth.NewHandler(logger, authService, sessionManager, activityLogger)

	rbacService := rbac.NewService(rbac.NewRepository(dbpool))
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}
	rolesHandler := rbac.NewRolesHandler(logger, rbacService, rbacMiddleware)

	usersService := users.NewService(users.NewRepository(dbpool))
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	permissionsService := permissions.NewService(permissions.NewRepository(dbpool))

	catalogCache := catalog.NewCache(redisClient)
	resolver := catalog.NewResolver(catalog.NewRepository(dbpool), catalogCache, rbacService, permissionsService, catalog.NewMetrics(nil))

	metaService := meta.NewService(meta.NewRepository(dbpool))

	docCache := settings.NewDocumentCache(redisClient, 10*time.Minute)
	settingsService := settings.NewService(settings.NewRepository(dbpool), docCache, redisClient, cfg.AppLogoURL)

	bundle, err := i18n.NewBundle(cfg.DefaultLanguage)
	if err != nil {
		logger.Error("load translation catalogs", slog.Any("error", err))
		os.Exit(1)
	}

	bootRegistry := boot.NewRegistry()
	assembler := boot.NewAssembler(
		boot.NewRepository(dbpool),
		usersService,
		rbacService,
		resolver,
		metaService,
		settingsService,
		bundle,
		bootRegistry,
		boot.Conf{
			SiteName:         cfg.SiteName,
			MaxFileSize:      cfg.MaxFileSize,
			DeveloperMode:    cfg.DeveloperMode,
			SocketIOPort:     cfg.SocketIOPort,
			ErrorReportEmail: cfg.ErrorReportEmail,
			AppVersion:       app.Version,
		},
		boot.NewMetrics(nil),
	)
	bootHandler := boot.NewHandler(logger, assembler)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		AuthHandler:    authHandler,
		BootHandler:    bootHandler,
		UsersHandler:   usersHandler,
		RolesHandler:   rolesHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// runOps dispatches maintenance subcommands that run to completion and exit
// instead of serving HTTP.
func runOps(ctx context.Context, cfg *app.Config, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: atrium ops <provision-user|jobs> [flags]")
		return 1
	}
	switch args[0] {
	case "provision-user":
		return runProvisionUser(ctx, cfg, args[1:])
	case "jobs":
		return runJobsOps(ctx, cfg, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "ops: unknown command %s\n", args[0])
		return 1
	}
}

func runProvisionUser(ctx context.Context, cfg *app.Config, args []string) int {
	fs := flag.NewFlagSet("provision-user", flag.ContinueOnError)
	email := fs.String("email", "", "account email address")
	name := fs.String("name", "", "account name, defaults to the email")
	fullName := fs.String("full-name", "", "display name")
	password := fs.String("password", "", "initial password")
	language := fs.String("language", "", "preferred language code")
	timeZone := fs.String("time-zone", "", "preferred time zone")
	roles := fs.String("roles", "", "comma separated role list")
	jsonOut := fs.Bool("json", false, "print the result as JSON")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "provision-user: connect postgres: %v\n", err)
		return 1
	}
	defer dbpool.Close()

	provision := cli.NewProvisionCLI(users.NewService(users.NewRepository(dbpool)))
	return provision.ProvisionCommand(ctx, cli.ProvisionOptions{
		Email:      *email,
		Name:       *name,
		FullName:   *fullName,
		Password:   *password,
		Language:   *language,
		TimeZone:   *timeZone,
		Roles:      splitRoles(*roles),
		JSONOutput: *jsonOut,
	})
}

func runJobsOps(ctx context.Context, cfg *app.Config, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: atrium ops jobs <trigger|stats|scheduled> [args]")
		return 1
	}

	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
		return 1
	}
	defer func() { _ = jobsCLI.Close() }()

	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: atrium ops jobs trigger <task-name>")
			return 1
		}
		info, err := jobsCLI.Trigger(ctx, args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
			return 1
		}
		fmt.Printf("enqueued %s id=%s queue=%s\n", args[1], info.ID, info.Queue)
		return 0
	case "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
			return 1
		}
		if err := json.NewEncoder(os.Stdout).Encode(stats); err != nil {
			fmt.Fprintf(os.Stderr, "jobs: encode json: %v\n", err)
			return 1
		}
		return 0
	case "scheduled":
		infos, err := jobsCLI.ListScheduled(ctx, 20)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
			return 1
		}
		for _, info := range infos {
			fmt.Printf("%s\t%s\t%s\n", info.ID, info.Type, info.NextProcessAt.Format(time.RFC3339))
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "jobs: unknown subcommand %s\n", args[0])
		return 1
	}
}

func splitRoles(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
