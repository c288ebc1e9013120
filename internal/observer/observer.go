package observer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnemet/LayoutForge/internal/config"
	"github.com/gnemet/LayoutForge/internal/database"
	"github.com/gnemet/LayoutForge/internal/extract"
	"github.com/gnemet/LayoutForge/internal/figma"
)

const (
	exportExt   = ".json"
	commentsExt = ".comments.json"
	layoutsExt  = ".layouts.json"
)

// Publisher stores result documents; *artifact.S3Store implements it.
type Publisher interface {
	PutJSON(ctx context.Context, fileID, name string, payload any) (string, error)
}

// Observer extracts every Figma export dropped into the stage directory.
type Observer struct {
	cfg         *config.Config
	engine      *extract.Engine
	db          *sql.DB
	store       Publisher
	debounce    time.Duration
	activeTasks int
	mu          sync.Mutex
	LogChan     chan string
}

// NewObserver wires the observer. db and store are optional.
func NewObserver(cfg *config.Config, engine *extract.Engine, db *sql.DB, store Publisher, logChan chan string) *Observer {
	return &Observer{
		cfg:      cfg,
		engine:   engine,
		db:       db,
		store:    store,
		debounce: 2 * time.Second,
		LogChan:  logChan,
	}
}

func (o *Observer) log(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	log.Println(msg)
	if o.LogChan != nil {
		select {
		case o.LogChan <- msg:
		default:
			// fast non-blocking drop if buffer full
		}
	}
}

func (o *Observer) incrementTask() {
	o.mu.Lock()
	o.activeTasks++
	o.mu.Unlock()
}

func (o *Observer) decrementTask() {
	o.mu.Lock()
	o.activeTasks--
	o.mu.Unlock()
}

func isExport(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, exportExt) &&
		!strings.HasSuffix(lower, commentsExt) &&
		!strings.HasSuffix(lower, layoutsExt)
}

// Start watches the stage directory until ctx is cancelled.
func (o *Observer) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	stageDir := o.cfg.Application.Storage.Stage
	if stageDir == "" {
		return fmt.Errorf("stage storage directory not configured")
	}

	// Ensure directories exist
	for _, dir := range []string{stageDir, o.cfg.Application.Storage.Output, o.cfg.Application.Storage.Processed} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := watcher.Add(stageDir); err != nil {
		return err
	}

	o.log("Background observer started, watching: %s", stageDir)

	// Initial scan
	o.scanDirectory(ctx, stageDir)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) && isExport(event.Name) {
				o.log("Detected change in: %s", event.Name)

				// Debounce/delay for file transfer to complete
				select {
				case <-time.After(o.debounce):
				case <-ctx.Done():
					return nil
				}
				if _, err := os.Stat(event.Name); err != nil {
					continue // already processed by an earlier event
				}
				o.processFile(ctx, event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			o.log("Watcher error: %v", err)

		case <-ctx.Done():
			return nil
		}
	}
}

func (o *Observer) scanDirectory(ctx context.Context, dir string) {
	files, err := os.ReadDir(dir)
	if err != nil {
		o.log("Failed to scan directory: %v", err)
		return
	}

	for _, f := range files {
		if !f.IsDir() && isExport(f.Name()) {
			o.processFile(ctx, filepath.Join(dir, f.Name()))
		}
	}
}

func (o *Observer) processFile(ctx context.Context, path string) {
	if _, err := o.ProcessFile(ctx, path); err != nil {
		o.log("Failed to process %s: %v", filepath.Base(path), err)
	}
}

// ProcessFile extracts one export, writes <output>/<name>.layouts.json,
// persists and publishes it when configured, and moves the export into the
// processed directory. It returns the written result path.
func (o *Observer) ProcessFile(ctx context.Context, path string) (string, error) {
	o.incrementTask()
	defer o.decrementTask()

	filename := filepath.Base(path)
	fileID := strings.TrimSuffix(filename, filepath.Ext(filename))
	o.log("Processing file: %s", filename)

	res := o.engine.Run(ctx, figma.FileSource{}, fileID, path)
	if res.Metadata.Error != "" {
		return "", fmt.Errorf("extracting %s: %s", filename, res.Metadata.Error)
	}

	outPath, err := o.writeResult(fileID, res)
	if err != nil {
		return "", err
	}

	if o.db != nil {
		n, err := database.SaveExtraction(ctx, o.db, fileID, res)
		if err != nil {
			o.log("Failed to save %s to DB: %v", fileID, err)
		} else {
			o.log("Saved %d layouts of %s to DB", n, fileID)
		}
	}
	if o.store != nil {
		key, err := o.store.PutJSON(ctx, fileID, "layouts.json", res)
		if err != nil {
			o.log("Failed to publish %s: %v", fileID, err)
		} else {
			o.log("Published %s", key)
		}
	}

	o.log("Successfully processed: %s (%d slides, %d blocks)", filename,
		res.Metadata.ExtractionSummary.TotalSlides, res.Metadata.ExtractionSummary.TotalBlocks)

	o.finalizeFile(path, filename)
	return outPath, nil
}

func (o *Observer) writeResult(fileID string, res *extract.Result) (string, error) {
	outDir := o.cfg.Application.Storage.Output
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result of %s: %w", fileID, err)
	}
	outPath := filepath.Join(outDir, fileID+layoutsExt)
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", outPath, err)
	}
	return outPath, nil
}

// finalizeFile moves an export and its comments side-car out of the stage.
func (o *Observer) finalizeFile(path, filename string) {
	processedDir := o.cfg.Application.Storage.Processed
	if processedDir == "" {
		return
	}

	newPath := filepath.Join(processedDir, filename)

	// If path is already newPath, we are done
	if path == newPath {
		return
	}

	if err := os.Rename(path, newPath); err != nil {
		o.log("Failed to move %s to processed folder: %v", filename, err)
		return
	}
	o.log("Moved %s to %s", filename, newPath)

	comments := figma.CommentsPath(path)
	if _, err := os.Stat(comments); err == nil {
		if err := os.Rename(comments, figma.CommentsPath(newPath)); err != nil {
			o.log("Failed to move %s: %v", filepath.Base(comments), err)
		}
	}
}

// ReprocessAll moves processed exports back to the stage and rescans it.
// Stored rows are replaced per file, so nothing is cleared up front.
func (o *Observer) ReprocessAll(ctx context.Context) {
	o.incrementTask()
	defer o.decrementTask()

	o.log("STARTING FULL REPROCESS")

	stageDir := o.cfg.Application.Storage.Stage
	processedDir := o.cfg.Application.Storage.Processed

	if processedDir != "" && stageDir != "" {
		files, err := os.ReadDir(processedDir)
		if err == nil {
			for _, file := range files {
				if file.IsDir() || !strings.HasSuffix(strings.ToLower(file.Name()), exportExt) {
					continue
				}
				oldPath := filepath.Join(processedDir, file.Name())
				newPath := filepath.Join(stageDir, file.Name())
				if err := os.Rename(oldPath, newPath); err != nil {
					o.log("Failed to move %s back to stage: %v", file.Name(), err)
				} else {
					o.log("Moved %s back to stage for reprocessing", file.Name())
				}
			}
		}
	}

	o.log("Retriggering full scan of %s", stageDir)
	o.scanDirectory(ctx, stageDir)
}

func (o *Observer) IsProcessing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.activeTasks > 0
}
