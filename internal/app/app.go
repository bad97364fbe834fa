// Package app orchestrates the perception pipeline: frame capture,
// depth zone analysis, model inference, text recognition, and spoken
// feedback.
package app

import (
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nandita/sightline/internal/capture"
	"github.com/nandita/sightline/internal/config"
	"github.com/nandita/sightline/internal/depth"
	"github.com/nandita/sightline/internal/detect"
	"github.com/nandita/sightline/internal/feedback"
	"github.com/nandita/sightline/internal/infer"
	"github.com/nandita/sightline/internal/ocr"
	"github.com/nandita/sightline/internal/store"
)

// Config holds configuration options for the application.
type Config struct {
	Store     *store.Store
	Tuning    *config.Tuning
	PluginDir string
	CameraID  int
	// DepthDir is a directory of 16-bit depth PNGs used as the depth
	// source. Empty means no depth frames are available.
	DepthDir string
	// ModelDir holds currency.onnx and object.onnx.
	ModelDir string
	// OCRLanguage is the tesseract language code, default "eng".
	OCRLanguage string
}

// App runs the perception pipeline and fans results out to consumers.
type App struct {
	config Config

	camera   capture.Camera
	depthSrc capture.DepthSource
	motion   *capture.MotionDetector

	analyzer *depth.Analyzer
	policy   depth.Policy

	runners  map[Mode]infer.Runner
	decoders map[Mode]*detect.Decoder
	resolver *detect.Resolver

	reader ocr.Reader

	pluginMgr *feedback.Manager
	throttle  *feedback.Throttle

	tuning     *config.Tuning
	mode       Mode
	enabled    bool
	generation atomic.Uint64
	stopCh     chan struct{}
	mu         sync.RWMutex

	lastResult  *FrameResult
	subscribers map[chan FrameResult]struct{}
}

// New creates a new App instance with the given configuration.
func New(cfg Config) *App {
	tuning := cfg.Tuning
	if tuning == nil {
		tuning = &config.Tuning{}
	}

	pluginMgr := feedback.NewManager(cfg.PluginDir)
	executor := feedback.NewExecutor(5 * time.Second)

	a := &App{
		config:      cfg,
		camera:      capture.NewCamera(cfg.CameraID),
		motion:      capture.NewMotionDetector(1.0),
		analyzer:    depth.NewAnalyzer(tuning.DepthParams()),
		policy:      tuning.Policy(),
		resolver:    tuning.Resolver(),
		pluginMgr:   pluginMgr,
		throttle:    feedback.NewThrottle(feedback.NewPluginAnnouncer(pluginMgr, executor), tuning.GetAnnounceCooldown()),
		tuning:      tuning,
		mode:        ModeNavigate,
		subscribers: make(map[chan FrameResult]struct{}),
	}

	if cfg.DepthDir != "" {
		src, err := capture.NewFileDepthSource(cfg.DepthDir)
		if err != nil {
			log.Printf("Depth source unavailable (%v), navigation will report clear", err)
			a.depthSrc = capture.NewStaticDepthSource(nil)
		} else {
			a.depthSrc = src
		}
	} else {
		a.depthSrc = capture.NewStaticDepthSource(nil)
	}

	a.decoders = buildDecoders(tuning)

	a.runners = map[Mode]infer.Runner{
		ModeCurrency: a.loadRunner("currency.onnx"),
		ModeObject:   a.loadRunner("object.onnx"),
	}

	language := cfg.OCRLanguage
	if language == "" {
		language = "eng"
	}
	if reader, err := ocr.NewTesseractReader(language); err == nil {
		a.reader = reader
		log.Println("Using tesseract text recognition")
	} else {
		log.Printf("Text recognition not available (%v), using mock reader", err)
		a.reader = ocr.NewMockReader()
	}

	return a
}

// buildDecoders resolves fresh decoders from the tuning document. The
// pipeline reads decoders without a lock, so retuning must swap in new
// values rather than mutate live ones.
func buildDecoders(tuning *config.Tuning) map[Mode]*detect.Decoder {
	currency := detect.NewDecoder(detect.CurrencyClasses())
	object := detect.NewDecoder(detect.ObjectClasses())
	tuning.ApplyDecoder(currency)
	tuning.ApplyDecoder(object)
	return map[Mode]*detect.Decoder{
		ModeCurrency: currency,
		ModeObject:   object,
	}
}

// loadRunner opens an ONNX model under ModelDir, falling back to a mock
// runner when the model is missing.
func (a *App) loadRunner(name string) infer.Runner {
	if a.config.ModelDir != "" {
		path := filepath.Join(a.config.ModelDir, name)
		runner, err := infer.NewDNNRunner(path, a.tuning.GetInputSize())
		if err == nil {
			log.Printf("Loaded model %s", path)
			return runner
		}
		log.Printf("Model %s not available (%v), using mock runner", path, err)
	}
	return infer.NewMockRunner()
}

// SetEnabled enables or disables frame processing. Toggling bumps the
// generation so in-flight results are dropped.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enabled == enabled {
		return
	}
	a.enabled = enabled
	a.generation.Add(1)
	a.throttle.Reset()
}

// IsEnabled returns whether frame processing is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Mode returns the current operating mode.
func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// SetMode switches the operating mode. The generation is bumped so
// results computed under the old mode are discarded, and the throttle
// and motion gate start fresh.
func (a *App) SetMode(m Mode) {
	a.mu.Lock()
	if a.mode == m {
		a.mu.Unlock()
		return
	}
	a.mode = m
	a.generation.Add(1)
	a.throttle.Reset()
	a.motion.Reset()
	a.mu.Unlock()

	a.recordEvent(&store.Event{
		Generation: a.generation.Load(),
		Kind:       store.EventKindMode,
		Label:      m.String(),
	})
	a.announce(feedback.Announcement{
		Category: feedback.CategorySystem,
		Priority: feedback.PriorityUrgent,
		Message:  fmt.Sprintf("%s mode", m),
	})

	// Push the switch to live consumers so UIs update immediately.
	a.publish(FrameResult{
		Generation: a.generation.Load(),
		Mode:       m.String(),
		Timestamp:  time.Now(),
	})
}

// Generation returns the current result generation.
func (a *App) Generation() uint64 {
	return a.generation.Load()
}

// LastResult returns the most recent frame result, or nil before the
// first frame.
func (a *App) LastResult() *FrameResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastResult
}

// Subscribe registers a consumer for frame results. The returned cancel
// function releases the subscription. Slow consumers miss results
// rather than blocking the pipeline.
func (a *App) Subscribe() (<-chan FrameResult, func()) {
	ch := make(chan FrameResult, 8)

	a.mu.Lock()
	a.subscribers[ch] = struct{}{}
	a.mu.Unlock()

	cancel := func() {
		a.mu.Lock()
		delete(a.subscribers, ch)
		a.mu.Unlock()
	}
	return ch, cancel
}

// publish stores the result and fans it out to subscribers.
func (a *App) publish(result FrameResult) {
	a.mu.Lock()
	a.lastResult = &result
	for ch := range a.subscribers {
		select {
		case ch <- result:
		default:
		}
	}
	a.mu.Unlock()
}

// Tuning returns a copy of the current tuning document.
func (a *App) Tuning() config.Tuning {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return *a.tuning
}

// UpdateTuning overlays a partial tuning patch, re-applies the resolved
// parameters to the running pipeline, and persists the merged document
// so the overrides survive a restart. The generation is bumped so
// results computed under the old parameters are dropped.
func (a *App) UpdateTuning(patch *config.Tuning) error {
	if err := patch.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.tuning.Merge(patch)
	if err := a.tuning.Validate(); err != nil {
		return err
	}

	a.analyzer.SetParams(a.tuning.DepthParams())
	a.policy = a.tuning.Policy()
	a.resolver = a.tuning.Resolver()
	// Swap in fresh decoders; the old ones may still be mid-Decode on
	// the pipeline goroutine.
	a.decoders = buildDecoders(a.tuning)
	a.generation.Add(1)

	a.persistTuning()
	return nil
}

// persistTuning saves the merged tuning document to the settings table.
// Callers hold a.mu.
func (a *App) persistTuning() {
	if a.config.Store == nil {
		return
	}
	data, err := json.Marshal(a.tuning)
	if err != nil {
		log.Printf("Failed to serialize tuning: %v", err)
		return
	}
	if err := a.config.Store.Settings().Set(store.SettingTuning, string(data)); err != nil {
		log.Printf("Failed to persist tuning: %v", err)
	}
}

// recordEvent persists an event if a store is configured.
func (a *App) recordEvent(e *store.Event) {
	if a.config.Store == nil {
		return
	}
	if err := a.config.Store.Events().Create(e); err != nil {
		log.Printf("Failed to record event: %v", err)
	}
}

// announce sends an announcement through the throttled announcer.
func (a *App) announce(announcement feedback.Announcement) {
	a.mu.RLock()
	throttle := a.throttle
	a.mu.RUnlock()

	if err := throttle.Announce(announcement); err != nil {
		log.Printf("Failed to announce: %v", err)
	}
}

// DiscoverPlugins scans the plugin directory for speaker plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// PluginManager returns the speaker plugin manager.
func (a *App) PluginManager() *feedback.Manager {
	return a.pluginMgr
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// SetDepthSource replaces the depth source.
func (a *App) SetDepthSource(src capture.DepthSource) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.depthSrc = src
}

// SetRunner replaces the inference runner for a mode.
func (a *App) SetRunner(m Mode, r infer.Runner) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runners[m] = r
}

// SetReader replaces the text recognizer.
func (a *App) SetReader(r ocr.Reader) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reader = r
}

// SetAnnouncer points the throttle at a different announcer.
func (a *App) SetAnnouncer(next feedback.Announcer, cooldown time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.throttle = feedback.NewThrottle(next, cooldown)
}

// Start begins the processing pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		log.Printf("Camera not available (%v), detection modes will be idle", err)
	}

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	log.Println("Pipeline started")
	return nil
}

// Stop halts the pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	if err := a.depthSrc.Close(); err != nil {
		log.Printf("Error closing depth source: %v", err)
	}
	a.motion.Close()

	for _, runner := range a.runners {
		if err := runner.Close(); err != nil {
			log.Printf("Error closing runner: %v", err)
		}
	}
	if a.reader != nil {
		if err := a.reader.Close(); err != nil {
			log.Printf("Error closing reader: %v", err)
		}
	}

	log.Println("Pipeline stopped")
}
