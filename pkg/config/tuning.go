package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Tuning holds runtime-changeable knobs. Operators adjust these during
// an exhibition without restarting the server.
type Tuning struct {
	Render RenderTuning `yaml:"render"`
}

// RenderTuning tunes server-side document encoding.
type RenderTuning struct {
	Padding            float64 `yaml:"padding"`
	PressureMultiplier float64 `yaml:"pressureMultiplier"`
	Precision          int     `yaml:"precision"`
}

// DefaultTuning returns the built-in tuning values.
func DefaultTuning() Tuning {
	return Tuning{
		Render: RenderTuning{
			Padding:            10,
			PressureMultiplier: 4,
			Precision:          2,
		},
	}
}

func loadTuningFromFile(path string) (Tuning, error) {
	tuning := DefaultTuning()

	data, err := os.ReadFile(path)
	if err != nil {
		return tuning, err
	}
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return tuning, err
	}
	return tuning, nil
}

// TuningWatcher keeps the current tuning values fresh by watching the
// tuning file for changes. Readers always get a consistent snapshot.
type TuningWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	current Tuning
	mu      sync.RWMutex
	logger  *zap.Logger
	stopCh  chan struct{}
}

// NewTuningWatcher loads the file and starts watching it. A missing or
// malformed file degrades to defaults.
func NewTuningWatcher(path string, logger *zap.Logger) (*TuningWatcher, error) {
	tuning, err := loadTuningFromFile(path)
	if err != nil {
		logger.Warn("Tuning file unreadable, using defaults",
			zap.String("path", path),
			zap.Error(err),
		)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory as well: editors and config pushes replace
	// the file via rename.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	tw := &TuningWatcher{
		path:    path,
		watcher: watcher,
		current: tuning,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
	go tw.watchLoop()

	logger.Info("Tuning watcher started", zap.String("path", path))
	return tw, nil
}

// Current returns the latest tuning snapshot.
func (w *TuningWatcher) Current() Tuning {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Stop stops watching.
func (w *TuningWatcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
}

func (w *TuningWatcher) watchLoop() {
	var debounce *time.Timer
	const debounceDelay = 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Tuning watcher error", zap.Error(err))
		}
	}
}

func (w *TuningWatcher) reload() {
	tuning, err := loadTuningFromFile(w.path)
	if err != nil {
		w.logger.Warn("Tuning reload failed, keeping previous values", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = tuning
	w.mu.Unlock()

	w.logger.Info("Tuning reloaded",
		zap.Float64("padding", tuning.Render.Padding),
		zap.Float64("pressureMultiplier", tuning.Render.PressureMultiplier),
	)
}
