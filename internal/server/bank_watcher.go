package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"resumecritic/internal/critic"
	"resumecritic/internal/errors"
	"resumecritic/internal/observability"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounceDelay = 500 * time.Millisecond

// BankWatcher watches the keyword bank file and calls reload once writes settle
type BankWatcher struct {
	mu sync.RWMutex

	file        string
	lastModTime time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan chan struct{}
	reload   func() error
	logger   *errors.Logger

	running     bool
	reloadCount int64
	failCount   int64
	lastReload  time.Time
	lastError   string
}

// NewBankWatcher creates a watcher for file; reload runs on the watcher goroutine
func NewBankWatcher(file string, debounceDelay time.Duration, reload func() error, logger *errors.Logger) *BankWatcher {
	if debounceDelay <= 0 {
		debounceDelay = defaultDebounceDelay
	}
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &BankWatcher{
		file:          filepath.Clean(file),
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reload:        reload,
		logger:        logger,
	}
}

// Start begins watching. The parent directory is watched too so that editors
// replacing the file by rename are noticed.
func (bw *BankWatcher) Start() error {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if bw.running {
		return fmt.Errorf("bank watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(bw.file)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", filepath.Dir(bw.file), err)
	}
	bw.fsWatcher = watcher

	if stat, err := os.Stat(bw.file); err == nil {
		bw.lastModTime = stat.ModTime()
	}

	bw.running = true
	go bw.watchLoop(watcher)

	bw.logger.Info("Keyword bank watcher started",
		"file", bw.file,
		"debounce_delay", bw.debounceDelay)
	return nil
}

// Stop stops watching; a pending debounced reload is dropped
func (bw *BankWatcher) Stop() error {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if !bw.running {
		return nil
	}

	close(bw.stopChan)
	if bw.debounceTimer != nil {
		bw.debounceTimer.Stop()
	}
	bw.running = false

	if err := bw.fsWatcher.Close(); err != nil {
		bw.logger.LogError(err, "Failed to close file system watcher")
		return err
	}

	bw.logger.Info("Keyword bank watcher stopped")
	return nil
}

// Status reports watcher state for the stats endpoint
func (bw *BankWatcher) Status() map[string]any {
	bw.mu.RLock()
	defer bw.mu.RUnlock()

	status := map[string]any{
		"running":        bw.running,
		"file":           bw.file,
		"debounce_delay": bw.debounceDelay.String(),
		"reload_count":   bw.reloadCount,
		"failure_count":  bw.failCount,
	}
	if !bw.lastReload.IsZero() {
		status["last_reload_time"] = bw.lastReload
	}
	if bw.lastError != "" {
		status["last_error"] = bw.lastError
	}
	return status
}

func (bw *BankWatcher) watchLoop(watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if bw.shouldProcessEvent(event) {
				bw.scheduleReload()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			bw.logger.LogError(err, "Keyword bank watcher error")

		case <-bw.stopChan:
			return
		}
	}
}

// shouldProcessEvent keeps writes and creates of the bank file whose mtime moved
func (bw *BankWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != bw.file {
		return false
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}

	stat, err := os.Stat(bw.file)
	if err != nil {
		return false
	}

	bw.mu.Lock()
	defer bw.mu.Unlock()
	if !stat.ModTime().Equal(bw.lastModTime) {
		bw.lastModTime = stat.ModTime()
		return true
	}
	return false
}

// scheduleReload restarts the debounce timer
func (bw *BankWatcher) scheduleReload() {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if !bw.running {
		return
	}
	if bw.debounceTimer != nil {
		bw.debounceTimer.Stop()
	}
	bw.debounceTimer = time.AfterFunc(bw.debounceDelay, bw.triggerReload)
}

func (bw *BankWatcher) triggerReload() {
	select {
	case <-bw.stopChan:
		return
	default:
	}

	err := bw.reload()

	bw.mu.Lock()
	defer bw.mu.Unlock()
	bw.reloadCount++
	bw.lastReload = time.Now()
	if err != nil {
		bw.failCount++
		bw.lastError = err.Error()
		return
	}
	bw.lastError = ""
}

// reloadBank rebuilds the critic from path; on failure the current critic keeps serving
func (s *Server) reloadBank(om *observability.ObservabilityManager, path string) error {
	reg, err := critic.LoadRegistryFile(path)
	om.GetMetrics().RecordBankReload(context.Background(), err == nil)
	if err != nil {
		s.Logger.LogError(err, "Keyword bank reload failed, keeping previous banks", "file", path)
		return err
	}

	s.SetCritic(critic.New(reg))
	s.Logger.Info("Keyword banks reloaded",
		"file", path,
		"industries", len(reg.Industries()))
	return nil
}

// startBankWatcher starts watching the configured bank file when enabled
func (s *Server) startBankWatcher(om *observability.ObservabilityManager) error {
	cfg := s.AppConfig.Critic
	if !cfg.WatchBankFile || cfg.BankFile == "" {
		return nil
	}

	watcher := NewBankWatcher(cfg.BankFile, cfg.DebounceDelay, func() error {
		return s.reloadBank(om, cfg.BankFile)
	}, s.Logger)
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start keyword bank watcher: %w", err)
	}
	s.BankWatcher = watcher
	return nil
}
