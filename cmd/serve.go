package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/codepathfinder/prreview/internal/analytics"
	"github.com/codepathfinder/prreview/internal/output"
	"github.com/codepathfinder/prreview/internal/reporting"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a long-lived HTTP server that reviews PRs on request",
	Long: `serve starts an HTTP server that accepts webhook-style review
requests and runs the same DiffStore -> CFA/PassRunner -> FindingPipeline
-> Reporter pipeline as "review", once per request.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "address to listen on")
	serveCmd.Flags().String("ruleset-dir", "", "directory of extracted mitigation-pattern bundles")
}

// serveRequestBody is the webhook payload shape /review accepts.
type serveRequestBody struct {
	RepoPath     string `json:"repo_path"`
	BaseRef      string `json:"base_ref"`
	HeadRef      string `json:"head_ref"`
	PRNumber     int    `json:"pr_number"`
	Owner        string `json:"owner"`
	RepoName     string `json:"repo_name"`
	Platform     string `json:"platform"`
	Project      string `json:"project,omitempty"`
	ConfigPath   string `json:"config_path,omitempty"`
}

type serveResponseBody struct {
	Gated            bool   `json:"gated"`
	CompleteFindings int    `json:"complete_findings"`
	PartialFindings  int    `json:"partial_findings"`
	PreflightValid   bool   `json:"preflight_valid"`
	Error            string `json:"error,omitempty"`
}

func runServe(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	addr, _ := flags.GetString("addr")
	rulesetDir, _ := flags.GetString("ruleset-dir")

	logger := output.NewLogger(output.VerbosityNormal)
	mux := http.NewServeMux()
	mux.HandleFunc("/review", reviewHandler(rulesetDir, logger))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{Addr: addr, Handler: mux}

	emitter.Emit(analytics.ServeStarted, nil)
	logger.Progress("listening on %s", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Progress("shutting down")
	case err := <-errCh:
		return err
	}

	emitter.Emit(analytics.ServeStopped, nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func reviewHandler(rulesetDir string, logger *output.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var body serveRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeServeError(w, http.StatusBadRequest, err)
			return
		}

		req := reviewRequest{
			RepoPath:     body.RepoPath,
			BaseRef:      body.BaseRef,
			HeadRef:      body.HeadRef,
			PRNumber:     body.PRNumber,
			Owner:        body.Owner,
			RepoName:     body.RepoName,
			Project:      body.Project,
			Organization: body.Owner,
			ConfigPath:   body.ConfigPath,
			RulesetDir:   rulesetDir,
			Platform:     body.Platform,
			Token:        tokenForPlatform(body.Platform),
		}

		outcome, err := runReview(r.Context(), req)
		if err != nil {
			logger.Error("review failed: %v", err)
			writeServeError(w, http.StatusInternalServerError, err)
			return
		}

		resp := serveResponseBody{PreflightValid: outcome.Preflight.Valid}
		if !outcome.Preflight.Valid {
			resp.Error = fmt.Sprintf("preflight failed: %v", outcome.Preflight.Errors)
			writeServeJSON(w, http.StatusOK, resp)
			return
		}

		if req.Platform != "" {
			backend, err := newBackend(req, outcome.ChangeSet.CheckSHA)
			if err != nil {
				writeServeError(w, http.StatusBadRequest, err)
				return
			}
			publisher := reporting.New(backend)
			if err := publisher.StartStatus(r.Context()); err != nil {
				logger.Warning("start status: %v", err)
			}
			if err := publisher.Publish(r.Context(), outcome.Result.Complete, outcome.Result.Partial, outcome.ChangeSet, outcome.Drift, outcome.Config); err != nil {
				logger.Warning("publish: %v", err)
			}
		}

		resp.Gated = reporting.Gates(outcome.Result.Complete, outcome.Config.FailOnSeverity)
		resp.CompleteFindings = len(flatten(outcome.Result.Complete))
		resp.PartialFindings = len(flatten(outcome.Result.Partial))
		writeServeJSON(w, http.StatusOK, resp)
	}
}

func writeServeError(w http.ResponseWriter, status int, err error) {
	writeServeJSON(w, status, serveResponseBody{Error: err.Error()})
}

func writeServeJSON(w http.ResponseWriter, status int, resp serveResponseBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
