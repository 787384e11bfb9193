package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/cli/config"
	httpctrl "github.com/secmon-lab/deckmemo/pkg/controller/http"
	"github.com/secmon-lab/deckmemo/pkg/service/worker"
	"github.com/secmon-lab/deckmemo/pkg/usecase"
	"github.com/secmon-lab/deckmemo/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var addr string
	var maxUploadSize int64
	var repoCfg config.Repository
	var storageCfg config.Storage
	var credCfg config.Credential
	var geminiCfg config.Gemini
	var memoCfg config.Memo
	var searchCfg config.Search
	var promptCfg config.Prompt

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("DECKMEMO_ADDR", "PORT"),
			Destination: &addr,
		},
		&cli.Int64Flag{
			Name:        "max-upload-size",
			Usage:       "Maximum size in bytes of an uploaded file",
			Value:       httpctrl.DefaultMaxUploadSize,
			Sources:     cli.EnvVars("DECKMEMO_MAX_UPLOAD_SIZE"),
			Destination: &maxUploadSize,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, credCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, memoCfg.Flags()...)
	flags = append(flags, searchCfg.Flags()...)
	flags = append(flags, promptCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Serve configuration",
				"repository", repoCfg.LogAttrs(),
				"storage", storageCfg.LogAttrs(),
				"credential", credCfg.LogAttrs(),
				"gemini", geminiCfg.LogAttrs(),
				"memo", memoCfg.LogAttrs(),
				"search", searchCfg.LogAttrs(),
			)

			prompts, err := promptCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load prompt configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			provider, err := credCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure credentials")
			}

			tokenWorker := worker.NewTokenRefreshWorker(provider, credCfg.RefreshInterval())
			if err := tokenWorker.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start token refresh worker")
			}
			defer tokenWorker.Stop()

			// ADC is left to the storage client so that signed URLs can detect the signer
			var storeOpts []option.ClientOption
			if credCfg.IsStatic() {
				storeOpts = append(storeOpts, option.WithTokenSource(provider))
			}
			store, closeStore, err := storageCfg.Configure(ctx, storeOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize storage")
			}
			defer closeStore()

			genaiClient, err := geminiCfg.Configure(ctx, provider.HTTPClient(ctx))
			if err != nil {
				return goerr.Wrap(err, "failed to initialize gemini client")
			}

			generator, err := memoCfg.Configure(ctx, &geminiCfg, genaiClient, prompts)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize memo generator")
			}

			ucOpts := []usecase.Option{
				usecase.WithObjectStore(store),
				usecase.WithExtractor(geminiCfg.NewExtractor(genaiClient, prompts)),
				usecase.WithMemoGenerator(generator),
			}

			searcher, err := searchCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize search client")
			}
			if searcher != nil {
				ucOpts = append(ucOpts, usecase.WithSearcher(searcher))
				logger.Info("Snippet validation enabled")
			} else {
				logger.Info("Search API not configured, snippet validation is disabled")
			}

			uc := usecase.New(repo, ucOpts...)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc.Content, httpctrl.WithMaxUploadSize(maxUploadSize)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)

				tokenWorker.Stop()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logger.Info("Server shutdown completed")
				return nil
			}
		},
	}
}
