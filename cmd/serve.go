package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/api"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/audit"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/authz"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/claims"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/config"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/grant"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/keys"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/policy"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/source"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/store"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/tasks"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/tokens"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/validation"
)

const defaultSweepInterval = 5 * time.Minute

var serveCfgFile string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the authorization server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load(serveCfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		rules, err := validation.ValidateRules(cfg.Rules)
		if err != nil {
			return fmt.Errorf("validating policy rules: %w", err)
		}

		log.Info().Msg("Initializing signing keys...")
		holder, err := keys.NewHolder()
		if err != nil {
			return fmt.Errorf("initializing key holder: %w", err)
		}

		derivations := store.NewDerivationRegistry(cfg.Derivations)

		log.Info().Msg("Initializing claim verifiers...")
		pipeline, err := claims.BuildPipeline(ctx, cfg.Verifiers, cfg.Server.BaseURL, derivations)
		if err != nil {
			return fmt.Errorf("building claim pipeline: %w", err)
		}

		engine := policy.New(rules)

		log.Info().Msg("Initializing authorizer chain...")
		authorizer, err := authz.BuildChain(cfg.Authorizer, engine)
		if err != nil {
			return fmt.Errorf("building authorizer chain: %w", err)
		}

		auditor, err := audit.Build(cfg.Audit)
		if err != nil {
			return fmt.Errorf("building auditor: %w", err)
		}
		defer func() {
			if err := auditor.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close auditor")
			}
		}()

		ticketStore := store.NewInMemoryTicketStore(cfg.Tickets.TTL)
		ticketFactory := tokens.NewJWTTicketFactory(holder, cfg.Server.BaseURL, cfg.Tickets.TTL)
		accessFactory := tokens.NewJWTAccessTokenFactory(holder, cfg.Server.BaseURL, cfg.Tokens.TTL)

		processor := grant.NewProcessor(ticketStore, ticketFactory, accessFactory, pipeline, authorizer, auditor)
		registrar := grant.NewRegistrar(ticketStore, ticketFactory, authorizer, auditor)

		// background sweep of expired tickets
		sweepInterval := cfg.Tickets.SweepInterval
		if sweepInterval <= 0 {
			sweepInterval = defaultSweepInterval
		}
		taskManager := tasks.NewManager()
		taskManager.Register("ticket-sweep", sweepInterval, func(ctx context.Context) error {
			removed, err := ticketStore.DeleteExpired(ctx)
			if err != nil {
				return err
			}
			if removed > 0 {
				log.Info().Int64("removed", removed).Msg("swept expired tickets")
			}
			return nil
		})

		// optional rule file with periodic reload
		if cfg.PolicySource.Path != "" {
			fetcher, err := source.NewFileFetcher(cfg.PolicySource.Path)
			if err != nil {
				return fmt.Errorf("initializing policy source: %w", err)
			}
			initial, err := fetcher.Fetch(ctx)
			if err != nil {
				return fmt.Errorf("loading policy source: %w", err)
			}
			engine.SetRules(initial)
			log.Info().Int("rules", len(initial)).Msgf("loaded policy rules from %s", cfg.PolicySource.Path)

			reload := cfg.PolicySource.ReloadInterval
			if reload <= 0 {
				reload = time.Minute
			}
			taskManager.Register("policy-reload", reload, func(ctx context.Context) error {
				rules, err := fetcher.Fetch(ctx)
				if err != nil {
					return err
				}
				engine.SetRules(rules)
				return nil
			})
		}

		srv := api.NewServer(processor, registrar, pipeline, holder, taskManager, cfg.Server.BaseURL)

		server := &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: srv.Routes([]byte(cfg.Server.ResourceServerKey)),
		}

		go func() {
			log.Info().Msgf("Starting server on %s...", cfg.Server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Server crashed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveCfgFile, "config", "c", "config.yaml", "path to the server config file")
}
