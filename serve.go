package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vibin_discover/config"
	"vibin_discover/matching"
	"vibin_discover/metrics"
	"vibin_discover/middleware"
	"vibin_discover/routes"
	"vibin_discover/services"
	"vibin_discover/socket"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

const sweepInterval = time.Minute

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the discover HTTP and socket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, os.Getenv)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	return cmd
}

// openBackend connects the configured store. The returned func releases it.
func openBackend(ctx context.Context, cfg *config.Config) (matching.Backend, *services.PhotoService, func(), error) {
	log.Printf("Initializing AWS clients in %s...", cfg.AWS.Region)
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	var photos *services.PhotoService
	if cfg.AWS.BucketName != "" {
		photos = services.NewPhotoService(awsCfg, cfg.AWS.BucketName, cfg.AWS.PhotoURLExpiry)
	}

	switch cfg.Backend.Kind {
	case config.BackendPostgres:
		store, err := services.OpenPostgresDiscoverStore(ctx, cfg.Backend.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Println("✅ Connected to Postgres")
		return store, photos, func() { store.Close() }, nil
	default:
		dynamo := services.NewDynamoService(awsCfg)
		store := services.NewDynamoDiscoverStore(dynamo, cfg.Tables.Candidates, cfg.Tables.Swipes, cfg.Tables.Matches)
		log.Println("✅ DynamoDB client initialized")
		return store, photos, func() {}, nil
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	backend, photos, release, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	auth := middleware.NewAuthenticator(cfg.Auth.JWTSecret)
	registry := services.NewSessionRegistry(backend, matching.Options{
		PageSize:        cfg.Discover.PageSize,
		RefillThreshold: cfg.Discover.RefillThreshold,
		Dedupe:          cfg.Discover.Dedupe,
		Debug:           cfg.Discover.Debug,
		Logger:          log.Default(),
	}, cfg.Discover.SessionIdleTimeout)
	observer := metrics.New(registry.Len)
	registry.Options.Observer = observer

	actions := &services.ActionService{Sessions: registry}
	sock := socket.NewSocketServer(actions, photos, auth)
	registry.Options.Notifier = sock

	go func() {
		if err := sock.IO.Serve(); err != nil {
			log.Println("❌ Socket server stopped:", err)
		}
	}()
	defer sock.IO.Close()
	go registry.Run(ctx, sweepInterval)

	r := mux.NewRouter()
	routes.RegisterRoutes(r, observer.Handler())
	routes.RegisterDiscoverRoutes(r, actions, photos, auth)
	r.Handle("/socket.io/", sock.IO)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: corsHandler}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s...", cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
