package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gnemet/LayoutForge/internal/database"
	"github.com/gnemet/LayoutForge/internal/extract"
	"github.com/gnemet/LayoutForge/internal/observer"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Extract every Figma export dropped into the stage directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			obs, cleanup, err := newObserver(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			return obs.Start(cmd.Context())
		},
	}
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the stage watcher behind an HTTP upload and results API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			obs, cleanup, err := newObserver(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if addr == "" {
				port := os.Getenv("PORT")
				if port == "" {
					port = "8080"
				}
				addr = ":" + port
			}
			srv := &http.Server{Addr: addr, Handler: newMux(ctx, obs)}

			errs := make(chan error, 2)
			go func() { errs <- obs.Start(ctx) }()
			go func() {
				fmt.Printf("LayoutForge starting on http://localhost%s\n", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errs <- err
				}
			}()

			select {
			case <-ctx.Done():
			case err := <-errs:
				if err != nil {
					return err
				}
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default :$PORT or :8080)")
	return cmd
}

// newObserver builds the observer with the optional database and artifact
// store the configuration enables.
func newObserver(ctx context.Context) (*observer.Observer, func(), error) {
	tables, err := loadTables()
	if err != nil {
		return nil, nil, err
	}
	filter, err := cfg.Extraction.Filter()
	if err != nil {
		return nil, nil, err
	}

	var db *sql.DB
	cleanup := func() {}
	if cfg.Application.SaveDB && cfg.Database.Configured() {
		db, err = database.NewConnection(cfg.Database.GetConnectStr())
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		cleanup = func() { db.Close() }
	}

	var store observer.Publisher
	if cfg.Application.Publish && cfg.S3.Enabled() {
		s, err := newStore()
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		store = s
	}

	engine := extract.New(tables, filter, engineLogger())
	return observer.NewObserver(cfg, engine, db, store, nil), cleanup, nil
}

func newMux(ctx context.Context, obs *observer.Observer) *http.ServeMux {
	mux := http.NewServeMux()
	output := cfg.Application.Storage.Output

	mux.Handle("/layouts/", http.StripPrefix("/layouts/", http.FileServer(http.Dir(output))))
	mux.HandleFunc("/upload", handleUpload)
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"processing": obs.IsProcessing()})
	})
	mux.HandleFunc("/reprocess", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		go obs.ReprocessAll(ctx)
		w.WriteHeader(http.StatusAccepted)
	})
	return mux
}

// handleUpload stores an exported Figma JSON file in the stage directory,
// where the watcher picks it up.
func handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !strings.HasSuffix(strings.ToLower(name), ".json") {
		http.Error(w, "expected a .json Figma export", http.StatusBadRequest)
		return
	}

	// write under a temporary name so the watcher never sees a partial file
	stage := cfg.Application.Storage.Stage
	tmpPath := filepath.Join(stage, "."+name+".part")
	dest, err := os.Create(tmpPath)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(dest, file); err != nil {
		dest.Close()
		os.Remove(tmpPath)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dest.Close()
	if err := os.Rename(tmpPath, filepath.Join(stage, name)); err != nil {
		log.Printf("Upload rename failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintf(w, "queued %s\n", name)
}
