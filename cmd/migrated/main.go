package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cedricziel/migrated/internal/adapter"
	"github.com/cedricziel/migrated/internal/adapter/memory"
	"github.com/cedricziel/migrated/internal/httpapi"
	"github.com/cedricziel/migrated/internal/mapper"
	"github.com/cedricziel/migrated/internal/mapper/qtest"
	"github.com/cedricziel/migrated/internal/mapper/zephyr"
	"github.com/cedricziel/migrated/internal/schedule"
	"github.com/cedricziel/migrated/internal/translate"
	"github.com/cedricziel/migrated/internal/workflow"
)

func main() {
	initConfig()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "migrated",
	Short: "Test-asset migration engine",
	Long: `migrated moves test cases, executions, suites, and cycles between
heterogeneous test-management systems (Zephyr Scale, qTest, and others)
through a canonical translation layer and a resumable, staged workflow.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server.

The server will:
- Register the built-in mapper plug-ins (Zephyr Scale, qTest)
- Register the demo in-memory adapters so migrations can run without
  real system credentials
- Serve the workflow submission/status/retry endpoints at /api/workflows
- Provide a health check at /health`,
	Run: func(cmd *cobra.Command, args []string) {
		port := viper.GetString("server.port")
		startServer(port)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run a single migration to completion and print its result",
	Long: `Run one migration workflow synchronously against the demo in-memory
adapters and print the resulting workflow status object as JSON. Useful for
smoke-testing the translation layer without standing up the HTTP server.`,
	Run: func(cmd *cobra.Command, args []string) {
		source := viper.GetString("migrate.source")
		target := viper.GetString("migrate.target")
		projectKey := viper.GetString("migrate.project")
		runOneShotMigration(source, target, projectKey)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)

	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))

	migrateCmd.Flags().String("source", "zephyr", "Source system name")
	migrateCmd.Flags().String("target", "qtest", "Target system name")
	migrateCmd.Flags().String("project", "DEMO", "Project key")
	viper.BindPFlag("migrate.source", migrateCmd.Flags().Lookup("source"))
	viper.BindPFlag("migrate.target", migrateCmd.Flags().Lookup("target"))
	viper.BindPFlag("migrate.project", migrateCmd.Flags().Lookup("project"))
}

// initConfig initializes Viper configuration.
func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.migrated")
	viper.AddConfigPath("/etc/migrated")

	viper.SetEnvPrefix("MIGRATED")
	viper.AutomaticEnv()
	viper.BindEnv("server.port", "PORT")

	viper.SetDefault("server.port", "8080")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore and use defaults/env vars.
		} else {
			log.Printf("Error reading config file: %v", err)
		}
	}
}

// buildEngine wires the mapper registry, adapter registry, and
// transformation service the same way for both serve and migrate.
func buildEngine() (*workflow.Engine, *workflow.Registry) {
	mappers := mapper.NewRegistry()
	zephyr.Register(mappers)
	qtest.Register(mappers)

	adapters := adapter.NewRegistry()
	adapters.Register("zephyr", memory.New("zephyr", memory.DemoZephyrTestCases()))
	adapters.Register("qtest", memory.New("qtest", nil))

	transformer := translate.NewTransformer(mappers, nil)
	service := translate.NewService(transformer)

	engine := workflow.NewEngine(adapters, service, nil)
	registry := workflow.NewRegistry()
	return engine, registry
}

func startServer(port string) {
	engine, registry := buildEngine()

	scheduler := schedule.NewScheduler(engine, registry, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scheduler.Start(ctx)

	handler := httpapi.NewHandler(engine, registry)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Mount("/", handler.Router())

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("migrated server listening on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	} else {
		log.Println("server exited gracefully")
	}
}

func runOneShotMigration(source, target, projectKey string) {
	engine, registry := buildEngine()

	wf := workflow.NewWorkflow(fmt.Sprintf("cli-%d", time.Now().UnixNano()), workflow.MigrationInput{
		SourceSystem: source,
		TargetSystem: target,
		ProjectKey:   projectKey,
		EntityTypes:  []string{"test-case"},
	})
	registry.Submit(wf)

	if err := engine.Start(context.Background(), wf); err != nil {
		log.Printf("migration finished with error: %v", err)
	}

	out, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal workflow: %v", err)
	}
	fmt.Println(string(out))
}
