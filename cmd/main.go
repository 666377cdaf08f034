package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/oauth2"

	"meetbook/internal/availability"
	"meetbook/internal/booking"
	"meetbook/internal/caldav"
	"meetbook/internal/config"
	"meetbook/internal/google"
	"meetbook/internal/meetroom"
	"meetbook/internal/schedule"
	"meetbook/internal/server"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "meetbook",
		Usage: "Expose calendar availability over CalDAV and book meetings against it.",
		Commands: []*cli.Command{
			serveCommand(),
			authCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("meetbook: %v", err)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the availability and booking HTTP server.",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()

			if cfg.CalDAVServerURL == "" {
				return fmt.Errorf("CALDAV_SERVER_URL is not set")
			}

			calClient, err := caldav.NewClient(logger,
				cfg.CalDAVServerURL, cfg.CalDAVUsername, cfg.CalDAVPassword,
				cfg.CalDAVCalendar, cfg.OrganizerEmail, cfg.AdditionalCalendars())
			if err != nil {
				return fmt.Errorf("failed to create caldav client: %w", err)
			}

			var source availability.ObjectSource = calClient
			if cfg.GoogleEnabled() {
				gSource, err := google.NewBusySource(c.Context, logger,
					cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleAccount, cfg.GoogleCalendars())
				if err != nil {
					return fmt.Errorf("failed to create google busy source: %w", err)
				}
				logger.Info("google busy source enabled", zap.Strings("calendars", cfg.GoogleCalendars()))
				source = &availability.MultiSource{
					Logger:    logger,
					Primary:   calClient,
					Secondary: []availability.ObjectSource{gSource},
				}
			}

			week := schedule.ParseWeek(cfg.WeekdayHours())
			allowed := schedule.ParseSlotLengths(cfg.SlotLengths)
			availabilitySvc := availability.NewService(logger, week, allowed, source)

			roomClient := meetroom.NewClient(logger, cfg.MeetAPIBaseURL, cfg.MeetAPIKey)
			bookingSvc := booking.NewService(logger, availabilitySvc, roomClient, calClient, cfg.OrganizerEmail)

			handler := server.NewHandler(logger, availabilitySvc, bookingSvc)
			router := server.New(logger, handler, cfg.MaxRequestsPerMin, cfg.IsProduction())

			srv := &http.Server{
				Addr:    "0.0.0.0:" + cfg.AppPort,
				Handler: router,
			}

			logger.Sugar().Infof("Starting server on %s...", srv.Addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Sugar().Fatalf("server failed to start: %v", err)
				}
			}()

			// Wait for an OS signal to gracefully shutdown.
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			logger.Sugar().Info("server is shutting down...")

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			logger.Sugar().Info("server stopped gracefully")
			return nil
		},
	}
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with a Google account for the optional busy source.",
		Action: func(c *cli.Context) error {
			oauthCfg, err := google.OAuthConfig(os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"))
			if err != nil {
				return fmt.Errorf("failed to get google oauth config: %w", err)
			}

			if accounts, err := google.TokenAccounts(); err == nil && len(accounts) > 0 {
				fmt.Printf("Already authorized accounts: %s\n", strings.Join(accounts, ", "))
			}

			authURL := oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
			fmt.Printf("Go to the following link in your browser then type the "+
				"authorization code: \n%v\n", authURL)

			reader := bufio.NewReader(os.Stdin)
			fmt.Print("Enter Authorization Code: ")
			authCode, _ := reader.ReadString('\n')
			authCode = strings.TrimSpace(authCode)

			token, err := google.ExchangeAuthCode(c.Context, oauthCfg, authCode)
			if err != nil {
				return fmt.Errorf("unable to retrieve token from web: %w", err)
			}

			fmt.Print("Enter a name for this account (e.g., 'personal', 'work'): ")
			accountName, _ := reader.ReadString('\n')
			accountName = strings.TrimSpace(accountName)
			tokenFile := "token-" + accountName + ".json"

			if err := google.SaveToken(tokenFile, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Printf("Saved token to %s. Set GOOGLE_ACCOUNT=%s to use it.\n", tokenFile, accountName)
			return nil
		},
	}
}

// newLogger builds the zap logger from config: production encoding in
// production, colored development output otherwise.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}
