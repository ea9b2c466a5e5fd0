package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/dondesang/appdon/auth"
	"github.com/dondesang/appdon/catalog"
	"github.com/dondesang/appdon/controllers"
	"github.com/dondesang/appdon/controllers/admin"
	"github.com/dondesang/appdon/cron"
	"github.com/dondesang/appdon/db"
	"github.com/dondesang/appdon/middleware"
	"github.com/dondesang/appdon/models"
	"github.com/dondesang/appdon/redis"
	"github.com/dondesang/appdon/routes"
	"github.com/dondesang/appdon/store"
	"github.com/dondesang/appdon/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	// bodyLimit leaves room above the 5 MB analysis file ceiling so oversize uploads reach
	// the handler and get the inline message instead of a bare 413.
	bodyLimit       = 6 * 1024 * 1024
	shutdownTimeout = 10 * time.Second
	requestTimeout  = 30 * time.Second
	limiterSweep    = time.Minute
	limiterIdle     = 3 * time.Minute
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, log := app.cfg, app.logger

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalogue: %w", err)
	}
	st := store.New(cat, cfg.DemoAppointments, utils.NowLome())
	log.Info("catalogue loaded",
		zap.Int("centers", len(cat.Centers)),
		zap.Int("hospitals", len(cat.Hospitals)),
		zap.Int("alerts", len(cat.Alerts)),
	)

	countries, refresher, closeCountries, err := openCountries(ctx)
	if err != nil {
		return err
	}
	defer closeCountries()

	files, err := openFiles()
	if err != nil {
		return err
	}

	opts := cron.Options{
		ReportSpec:    cfg.ReportCron,
		CountriesSpec: cfg.CountriesCron,
		Recipients:    cfg.ReportRecipients,
		Countries:     refresher,
		Log:           log.Named("cron"),
	}
	if cfg.SMTP.Enabled() {
		opts.Mailer = utils.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	}
	sched, err := cron.New(st, opts)
	if err != nil {
		return err
	}

	if auth.Mode(cfg.AuthMode) == auth.ModeSimulated && len(cfg.AdminEmails) > 0 {
		log.Warn("simulated login never grants the admin role, ADMIN_EMAILS only applies in verified mode")
	}
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	h := controllers.New(controllers.Deps{
		Store:         st,
		Authenticator: auth.NewAuthenticator(auth.Mode(cfg.AuthMode), cfg.LoginDelay, st, cfg.IsAdmin, log.Named("auth")),
		Tokens:        tokens,
		Files:         files,
		Countries:     countries,
		Log:           log,
	})
	ah := admin.New(st, sched, log.Named("admin"), nil)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Cleanup(ctx, limiterSweep, limiterIdle)

	guards := routes.Guards{
		Protected: middleware.Protected(tokens.Secret(), st, log),
		Admin:     middleware.RequireRole(models.RoleAdmin),
		AuthLimit: limiter.Handler(),
	}

	server := fiber.New(fiber.Config{
		AppName:               "appdon",
		BodyLimit:             bodyLimit,
		ErrorHandler:          utils.ErrorHandler,
		DisableStartupMessage: true,
	})
	server.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
	}))
	server.Use(middleware.RequestLogger(log.Named("http")))
	server.Use(middleware.RequestContext(ctx, requestTimeout))

	routes.SetupCatalogRoutes(server, h)
	routes.SetupAuthRoutes(server, h, guards)
	routes.SetupAppointmentRoutes(server, h, guards)
	routes.SetupDonorRoutes(server, h, guards)
	routes.SetupAdminRoutes(server, ah, guards)

	sched.StartCronJobs()

	errc := make(chan error, 1)
	go func() {
		log.Info("server started", zap.String("port", cfg.Port))
		errc <- server.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	sched.Stop(shutdownCtx)
	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openCountries connects the backend database and, when redis is configured, puts the
// cache in front of it. Without a database URL the reader answers ErrNotConfigured.
func openCountries(ctx context.Context) (db.CountryReader, cron.CountryRefresher, func(), error) {
	cfg, log := app.cfg, app.logger
	noop := func() {}

	conn, err := db.Open(cfg.DatabaseURL, log)
	if errors.Is(err, db.ErrNotConfigured) {
		log.Warn("no backend database configured, /countries will answer 503")
		return db.Unconfigured{}, nil, noop, nil
	}
	if err != nil {
		return nil, nil, noop, err
	}
	closeDB := func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	reader := db.NewCountries(conn)
	if cfg.RedisAddr == "" {
		return reader, nil, closeDB, nil
	}

	client, err := redis.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		log.Warn("redis unavailable, countries are read uncached", zap.Error(err))
		return reader, nil, closeDB, nil
	}
	cache := redis.NewCountryCache(reader, client, cfg.CountryTTL, log.Named("countries"))
	return cache, cache, func() {
		_ = client.Close()
		closeDB()
	}, nil
}

func openFiles() (utils.FileStore, error) {
	c := app.cfg.Cloudinary
	if !c.Enabled() {
		return utils.MemoryFiles{Now: utils.NowLome}, nil
	}
	files, err := utils.NewCloudinaryFiles(c.CloudName, c.APIKey, c.APISecret, c.UploadPreset, c.Folder)
	if err != nil {
		return nil, err
	}
	app.logger.Info("analysis files stored on cloudinary", zap.String("folder", c.Folder))
	return files, nil
}

func countriesCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "countries",
		Short: "List the countries table of the backend database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, err := db.Open(app.cfg.DatabaseURL, app.logger)
			if err != nil {
				return err
			}
			if sqlDB, err := conn.DB(); err == nil {
				defer sqlDB.Close()
			}
			if migrate {
				n, err := db.Migrate(ctx, conn, db.DefaultCountries)
				if err != nil {
					return err
				}
				fmt.Printf("Seeded %d countries\n", n)
			}
			rows, err := db.NewCountries(conn).Countries(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("\nFound %d countries:\n\n", len(rows))
			for _, r := range rows {
				fmt.Printf("- %s (%d)\n", r.Name, r.ID)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Create and seed the table on a local database first")
	return cmd
}

func catalogCmd() *cobra.Command {
	var sessions int
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate the catalogue and print centers with their next sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(app.cfg.CatalogPath)
			if err != nil {
				return err
			}
			now := utils.NowLome()
			fmt.Printf("\nFound %d centers, %d hospitals, %d alerts, %d time slots:\n\n",
				len(cat.Centers), len(cat.Hospitals), len(cat.Alerts), len(cat.TimeSlots))
			for _, c := range cat.Centers {
				fmt.Printf("- [%d] %s (%s, %s) - %s\n", c.ID, c.Name, c.City, c.Region, c.Address)
				next, err := c.NextSessions(now, sessions)
				if err != nil {
					return err
				}
				for _, t := range next {
					fmt.Printf("    session %s\n", utils.ToLome(t).Format("2006-01-02 15:04"))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&sessions, "sessions", 3, "Number of upcoming sessions to print for scheduled centers")
	return cmd
}
