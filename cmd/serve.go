package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/docmark/internal/format"
	"github.com/sells-group/docmark/internal/model"
	"github.com/sells-group/docmark/internal/pipeline"
	"github.com/sells-group/docmark/internal/store"
)

var servePort int

// maxUploadBytes caps PDF uploads at 64 MiB.
const maxUploadBytes = 64 << 20

// shutdownTimeout bounds how long in-flight conversions may drain.
const shutdownTimeout = 30 * time.Second

// gracefulShutdown drains the server on a fresh context. The signal context
// is already canceled by the time shutdown starts, so it cannot be used as
// the drain deadline.
func gracefulShutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Warn("server shutdown", zap.Error(err))
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP conversion server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, st, err := initProcessor(ctx)
		if err != nil {
			return err
		}
		defer closeStore(st)

		mux := newServeMux(p, st)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			gracefulShutdown(srv)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newServeMux builds the HTTP routes. Split out of the command for testing.
func newServeMux(p *pipeline.Processor, st store.Store) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /convert", func(w http.ResponseWriter, r *http.Request) {
		data, name, err := readUpload(r)
		if err != nil {
			http.Error(w, `{"error":"invalid upload"}`, http.StatusBadRequest)
			return
		}
		if len(data) == 0 {
			http.Error(w, `{"error":"empty document"}`, http.StatusBadRequest)
			return
		}

		result, err := p.ProcessBytes(r.Context(), data, name)
		if err != nil {
			zap.L().Error("convert request failed",
				zap.String("name", name),
				zap.Error(err),
			)
			http.Error(w, `{"error":"conversion failed"}`, http.StatusUnprocessableEntity)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"name":              result.Path,
			"category":          result.Context.Category,
			"pages":             len(result.Pages),
			"vision_calls_used": result.VisionCallsUsed,
			"sources":           result.SourceBreakdown(),
			"markdown":          result.Markdown,
		})
	})

	mux.HandleFunc("GET /runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			http.Error(w, `{"error":"run history not configured"}`, http.StatusNotFound)
			return
		}
		run, err := st.GetRun(r.Context(), r.PathValue("id"))
		if err != nil {
			http.Error(w, `{"error":"run not found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(run)
	})

	mux.HandleFunc("GET /preview/{id}", func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			http.Error(w, `{"error":"run history not configured"}`, http.StatusNotFound)
			return
		}
		run, err := st.GetRun(r.Context(), r.PathValue("id"))
		if err != nil {
			http.Error(w, `{"error":"run not found"}`, http.StatusNotFound)
			return
		}
		if run.Status != model.RunStatusComplete || run.Result == nil || run.Result.Markdown == "" {
			http.Error(w, `{"error":"run has no markdown"}`, http.StatusConflict)
			return
		}

		html, err := format.RenderHTML(run.Result.Markdown)
		if err != nil {
			http.Error(w, `{"error":"render failed"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, html)
	})

	return mux
}

// readUpload accepts either a multipart form with a "file" field or a raw
// application/pdf body.
func readUpload(r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", eris.Wrap(err, "read multipart file")
		}
		defer file.Close() //nolint:errcheck

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", eris.Wrap(err, "read upload body")
		}
		return data, header.Filename, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", eris.Wrap(err, "read request body")
	}
	return data, "upload.pdf", nil
}
