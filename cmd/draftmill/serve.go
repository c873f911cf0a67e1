package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/draftmill/draftmill/internal/api"
	"github.com/draftmill/draftmill/internal/config"
	"github.com/draftmill/draftmill/internal/configsvc"
	"github.com/draftmill/draftmill/internal/convert"
	"github.com/draftmill/draftmill/internal/llm"
	"github.com/draftmill/draftmill/internal/queue"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP conversion service",
		Long: `Start the HTTP conversion service.

Service settings come from the environment (PORT, WORKER_COUNT,
DRAFTMILL_API_TOKEN, ANTHROPIC_API_KEY, ...); flags override them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			workers, _ := cmd.Flags().GetInt("workers")
			cfgPath, _ := cmd.Flags().GetString("config")

			svcCfg := config.LoadService()
			if err := svcCfg.Validate(); err != nil {
				return err
			}
			if workers > 0 {
				svcCfg.WorkerCount = workers
			}
			if addr == "" {
				addr = ":" + svcCfg.Port
			}

			convCfg, err := loadConversionConfig(cfgPath)
			if err != nil {
				return err
			}
			engine := convert.NewEngine(convCfg, log)

			var client *llm.Client
			if svcCfg.LLMEnabled() {
				client = llm.NewClient(llm.Options{
					APIKey:  svcCfg.AnthropicAPIKey,
					Model:   svcCfg.AnthropicModel,
					BaseURL: svcCfg.AnthropicBaseURL,
					Timeout: svcCfg.LLMTimeout,
				}, log)
				defer client.Close()
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			q := queue.New(svcCfg, engine, log)
			q.Start(ctx)

			srv := api.NewServer(engine, q, configsvc.New(client, log), log, svcCfg)

			httpServer := &http.Server{
				Addr:         addr,
				Handler:      srv,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Graceful shutdown.
			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				log.Info("shutting down...")

				q.Stop()

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			log.Info("starting draftmill",
				"addr", addr,
				"workers", svcCfg.WorkerCount,
				"llm_enabled", svcCfg.LLMEnabled(),
			)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "", "listen address (defaults to :$PORT)")
	cmd.Flags().Int("workers", 0, "number of conversion workers (defaults to WORKER_COUNT)")
	cmd.Flags().StringP("config", "c", "", "conversion configuration file path (YAML)")
	return cmd
}
