package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zakdoc/blog-backend/api"
	"github.com/zakdoc/blog-backend/config"
	"github.com/zakdoc/blog-backend/database"
	"github.com/zakdoc/blog-backend/models"
	"github.com/zakdoc/blog-backend/services"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	c := config.New()
	setupLogging(c)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := config.LoadSSM(ctx, c); err != nil {
		log.Fatal().Err(err).Msg("Error loading parameters from SSM")
	}
	cancel()

	db, err := database.Open(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	// If generating models, run generation and exit
	if strings.ToLower(os.Getenv("GENERATE_MODELS")) == "true" {
		fmt.Println("Generating models and query helpers...")
		models.GenerateModels(db)
		return
	}

	// If generating column mismatch report, run report and exit
	if os.Getenv("GENERATE_COLUMN_REPORT") == "true" {
		fmt.Println("Generating column mismatch report...")
		models.GenerateColumnMismatchReportStandalone(db)
		return
	}

	if err := models.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Error migrating schema")
	}

	mailer := services.NewMailer(c)
	store := database.New(db)
	otp := services.NewOTPProvider(c, store.OTPRepo(), mailer)

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	images, err := services.NewImageStore(ctx, c)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Error configuring image storage")
	}
	if images == nil {
		log.Warn().Msg("S3_BUCKET not set, featured image uploads are disabled")
	}

	errChannel := make(chan error, 2)

	server, err := api.NewServer(c, store, mailer, otp, images)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(config.GetDuration(c, "SHUTDOWN_TIMEOUT_SECONDS", time.Second, 30))
}

// setupLogging switches to human readable output outside production and applies LOG_LEVEL.
func setupLogging(c map[string]string) {
	if config.GetString(c, "ENV", "development") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString(c, "LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
