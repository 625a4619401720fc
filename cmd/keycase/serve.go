package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	keycase "github.com/SimonDaKappa/go-keycase"
)

const shutdownTimeout = 5 * time.Second

type serveFlags struct {
	listen   string
	internal string
	header   string
	reject   bool
}

func (f *serveFlags) apply(cmd *cobra.Command, cfg *ServeConfig) {
	if cmd.Flags().Changed("listen") {
		cfg.Listen = f.listen
	}
	if cmd.Flags().Changed("internal") {
		cfg.Internal = f.internal
	}
	if cmd.Flags().Changed("header") {
		cfg.Header = f.header
	}
	if cmd.Flags().Changed("reject-invalid") {
		cfg.RejectInvalidRequestBody = f.reject
	}
}

func newServeCmd(root *rootOptions) *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an echo server behind the body transform",
		Long: `Starts an HTTP server whose /echo endpoint returns the JSON body it
receives. Clients pick their case format with the --header request header;
request bodies are converted into the --internal format before the handler
sees them and responses are converted back.

Example:
  keycase serve --listen :8080 --internal camel
  curl -H 'Content-Type: application/json' -H 'X-Case-Format: snake' \
       -d '{"first_name": "Ann"}' localhost:8080/echo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg.Serve
			flags.apply(cmd, &cfg)
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&flags.listen, "listen", ":8080", "Address to listen on")
	cmd.Flags().StringVar(&flags.internal, "internal", "camel", "Case format used by the handlers")
	cmd.Flags().StringVar(&flags.header, "header", keycase.DefaultCaseFormatHeader, "Request header naming the client case format")
	cmd.Flags().BoolVar(&flags.reject, "reject-invalid", false, "Answer 400 when a request body has malformed keys")

	return cmd
}

func runServe(ctx context.Context, cfg ServeConfig) error {
	log := logger
	if log == nil {
		log = zap.NewNop()
	}

	handler, err := newServeHandler(cfg, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Listening", zap.String("addr", cfg.Listen), zap.String("internal", cfg.Internal))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newServeHandler wires the echo endpoint behind the body transform.
func newServeHandler(cfg ServeConfig, log *zap.Logger) (http.Handler, error) {
	internal, err := keycase.ParseCaseFormat(cfg.Internal)
	if err != nil {
		return nil, fmt.Errorf("invalid --internal: %w", err)
	}

	tb, err := keycase.NewTransformBody(keycase.TransformBodyOpts{
		InternalCaseFormat:       internal,
		ValidateRequestBody:      cfg.ValidateRequestBody,
		RejectInvalidRequestBody: cfg.RejectInvalidRequestBody,
		Resolver:                 keycase.HeaderResolver(cfg.Header),
		Logger:                   log,
		MaxBodyBytes:             cfg.MaxBodyBytes,
	})
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/echo", tb.Middleware(http.HandlerFunc(echo)))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux, nil
}

type echoResponse struct {
	CaseFormat string          `json:"caseFormat"`
	Body       json.RawMessage `json:"body"`
}

// echo answers with the request body as the handler received it, along
// with the client case format.
func echo(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		body = []byte("null")
	}
	if !json.Valid(body) {
		http.Error(w, "request body is not JSON", http.StatusBadRequest)
		return
	}

	format, _ := keycase.CaseFormatFromContext(r.Context())

	w.Header().Set(keycase.HeaderContentType, keycase.ContentTypeApplicationJSON)
	_ = json.NewEncoder(w).Encode(echoResponse{
		CaseFormat: format.String(),
		Body:       body,
	})
}
