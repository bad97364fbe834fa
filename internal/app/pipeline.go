package app

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nandita/sightline/internal/capture"
	"github.com/nandita/sightline/internal/depth"
	"github.com/nandita/sightline/internal/feedback"
	"github.com/nandita/sightline/internal/store"
)

// runPipeline is the main processing loop. Each tick handles one frame
// according to the current mode:
//
//  1. navigate: read a depth frame, average the middle band into
//     left/center/right zones, decide a directive, announce changes.
//  2. currency/object: read a camera frame, gate on scene change, run
//     the model, decode and de-duplicate boxes, announce new labels.
//  3. read: read a camera frame and recognize printed text.
//
// Results computed under an old generation (mode switch, disable) are
// dropped before they are published or announced.
func (a *App) runPipeline(stopCh chan struct{}) {
	interval := time.Second / time.Duration(a.Tuning().GetFPS())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Announce-on-change state, reset whenever the generation moves.
	var (
		stateGen      uint64
		lastDirective depth.Directive
		haveDirective bool
		det           detectState
		lastText      string
	)

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			gen := a.generation.Load()
			if gen != stateGen {
				stateGen = gen
				haveDirective = false
				det = detectState{}
				lastText = ""
			}

			switch a.Mode() {
			case ModeNavigate:
				a.stepNavigate(gen, &lastDirective, &haveDirective)
			case ModeCurrency:
				a.stepDetect(gen, ModeCurrency, &det)
			case ModeObject:
				a.stepDetect(gen, ModeObject, &det)
			case ModeRead:
				a.stepRead(gen, &lastText)
			}

			// FPS is tunable at runtime.
			if next := time.Second / time.Duration(a.Tuning().GetFPS()); next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

// stepNavigate processes one depth frame.
func (a *App) stepNavigate(gen uint64, lastDirective *depth.Directive, haveDirective *bool) {
	a.mu.RLock()
	src := a.depthSrc
	policy := a.policy
	a.mu.RUnlock()

	frame, err := src.ReadDepth()
	if err != nil {
		if !errors.Is(err, capture.ErrNoDepthFrames) {
			log.Printf("Error reading depth frame: %v", err)
		}
		return
	}

	res := a.analyzer.Analyze(frame)

	if gen != a.generation.Load() {
		return
	}

	result := FrameResult{
		Generation: gen,
		Mode:       ModeNavigate.String(),
		Timestamp:  time.Now(),
	}

	if res.Status == depth.StatusSkipped {
		// Keep the previous directive; a bad frame is not a reason to
		// tell the user anything.
		result.Skipped = true
		a.publish(result)
		return
	}

	report := res.Report
	directive := policy.Decide(report)
	result.Zones = &report
	result.Directive = directive.String()
	a.publish(result)

	if *haveDirective && *lastDirective == directive {
		return
	}
	*lastDirective = directive
	*haveDirective = true

	a.recordEvent(&store.Event{
		Generation: gen,
		Kind:       store.EventKindDirective,
		Directive:  directive.String(),
		DistanceMM: int(report.Center),
	})

	priority := feedback.PriorityNormal
	if directive == depth.DirectiveStop {
		priority = feedback.PriorityUrgent
	}
	a.announce(feedback.Announcement{
		Category: feedback.CategoryNavigation,
		Priority: priority,
		Message:  directiveMessage(directive),
	})
}

// directiveMessage renders a directive as a spoken phrase.
func directiveMessage(d depth.Directive) string {
	switch d {
	case depth.DirectiveStop:
		return "stop, obstacle ahead"
	case depth.DirectiveWarnLeft:
		return "obstacle on the left"
	case depth.DirectiveWarnRight:
		return "obstacle on the right"
	default:
		return "path clear"
	}
}

// detectState carries detection loop state across ticks.
type detectState struct {
	// inferred is set after the first inference in this generation.
	// Until then the motion gate cannot skip frames, or a static scene
	// would never be looked at.
	inferred   bool
	lastLabels string
}

// stepDetect processes one camera frame through the detection model for
// the given mode.
func (a *App) stepDetect(gen uint64, mode Mode, state *detectState) {
	a.mu.RLock()
	camera := a.camera
	runner := a.runners[mode]
	decoder := a.decoders[mode]
	resolver := a.resolver
	a.mu.RUnlock()

	frame, err := camera.ReadFrame()
	if err != nil {
		if !errors.Is(err, capture.ErrCameraNotOpen) {
			log.Printf("Error reading frame: %v", err)
		}
		return
	}
	defer frame.Close()

	// Unchanged scenes skip inference entirely; the last result stands.
	if changed, _ := a.motion.Detect(frame); !changed && state.inferred {
		return
	}

	out, err := runner.Run(frame)
	if err != nil {
		log.Printf("Error running model: %v", err)
		return
	}

	detections, err := decoder.Decode(out.Data, out.Shape)
	if err != nil {
		log.Printf("Error decoding model output: %v", err)
		return
	}
	detections = resolver.Resolve(detections)
	state.inferred = true

	if gen != a.generation.Load() {
		return
	}

	labels := make([]string, len(detections))
	for i, d := range detections {
		labels[i] = decoder.Classes.Name(d.ClassID)
	}

	a.publish(FrameResult{
		Generation: gen,
		Mode:       mode.String(),
		Detections: detections,
		Labels:     labels,
		Timestamp:  time.Now(),
	})

	if len(detections) == 0 {
		return
	}

	joined := strings.Join(labels, ", ")
	if joined == state.lastLabels {
		return
	}
	state.lastLabels = joined

	// Detections arrive sorted by score, so the first is the headline.
	best := detections[0]
	a.recordEvent(&store.Event{
		Generation: gen,
		Kind:       store.EventKindDetection,
		Label:      labels[0],
		Score:      float64(best.Score),
	})
	a.announce(feedback.Announcement{
		Category: feedback.CategoryDetection,
		Message:  fmt.Sprintf("detected %s", joined),
	})
}

// stepRead processes one camera frame through text recognition.
func (a *App) stepRead(gen uint64, lastText *string) {
	a.mu.RLock()
	camera := a.camera
	reader := a.reader
	a.mu.RUnlock()

	frame, err := camera.ReadFrame()
	if err != nil {
		if !errors.Is(err, capture.ErrCameraNotOpen) {
			log.Printf("Error reading frame: %v", err)
		}
		return
	}
	defer frame.Close()

	text, err := reader.Recognize(frame)
	if err != nil {
		log.Printf("Error recognizing text: %v", err)
		return
	}

	if gen != a.generation.Load() {
		return
	}

	a.publish(FrameResult{
		Generation: gen,
		Mode:       ModeRead.String(),
		Text:       text,
		Timestamp:  time.Now(),
	})

	if text == "" || text == *lastText {
		return
	}
	*lastText = text

	a.recordEvent(&store.Event{
		Generation: gen,
		Kind:       store.EventKindText,
		Label:      text,
	})
	a.announce(feedback.Announcement{
		Category: feedback.CategoryText,
		Message:  text,
	})
}
