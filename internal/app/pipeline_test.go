package app

import (
	"strings"
	"testing"

	"gocv.io/x/gocv"

	"github.com/nandita/sightline/internal/capture"
	"github.com/nandita/sightline/internal/depth"
	"github.com/nandita/sightline/internal/feedback"
	"github.com/nandita/sightline/internal/infer"
	"github.com/nandita/sightline/internal/ocr"
	"github.com/nandita/sightline/internal/store"
)

// zoneFrame builds a depth frame whose horizontal thirds read the given
// distances.
func zoneFrame(width, height int, left, center, right uint16) *depth.Frame {
	data := make([]uint16, width*height)
	leftEdge := width / 3
	rightEdge := 2 * width / 3
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			switch {
			case x < leftEdge:
				data[y*width+x] = left
			case x < rightEdge:
				data[y*width+x] = center
			default:
				data[y*width+x] = right
			}
		}
	}
	return &depth.Frame{Width: width, Height: height, Data: data}
}

func TestStepNavigate_AnnouncesStopOnce(t *testing.T) {
	a, announcer, s := testApp(t)

	a.SetDepthSource(capture.NewStaticDepthSource(zoneFrame(240, 180, 3000, 500, 3000)))

	var (
		lastDirective depth.Directive
		haveDirective bool
	)
	gen := a.Generation()

	a.stepNavigate(gen, &lastDirective, &haveDirective)

	result := a.LastResult()
	if result == nil {
		t.Fatal("expected a published result")
	}
	if result.Directive != "stop" {
		t.Errorf("Directive = %q, want stop", result.Directive)
	}
	if result.Zones == nil || result.Zones.Center != 500 {
		t.Errorf("Zones = %+v, want center 500", result.Zones)
	}

	got := announcer.Announcements()
	if len(got) != 1 {
		t.Fatalf("expected 1 announcement, got %d", len(got))
	}
	if got[0].Priority != feedback.PriorityUrgent {
		t.Error("stop must be announced urgently")
	}
	if !strings.Contains(got[0].Message, "stop") {
		t.Errorf("message = %q, want a stop phrase", got[0].Message)
	}

	events, err := s.Events().List(0)
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	if len(events) != 1 || events[0].Kind != store.EventKindDirective || events[0].Directive != "stop" {
		t.Errorf("expected one stop directive event, got %+v", events)
	}
	if events[0].DistanceMM != 500 {
		t.Errorf("DistanceMM = %d, want 500", events[0].DistanceMM)
	}

	// Same scene again: directive unchanged, nothing new announced.
	a.stepNavigate(gen, &lastDirective, &haveDirective)
	if len(announcer.Announcements()) != 1 {
		t.Error("unchanged directive must not be re-announced")
	}
}

func TestStepNavigate_DirectiveChangeAnnounced(t *testing.T) {
	a, announcer, _ := testApp(t)

	src := capture.NewStaticDepthSource(zoneFrame(240, 180, 3000, 3000, 3000))
	a.SetDepthSource(src)

	var (
		lastDirective depth.Directive
		haveDirective bool
	)
	gen := a.Generation()

	a.stepNavigate(gen, &lastDirective, &haveDirective)
	if got := a.LastResult().Directive; got != "clear" {
		t.Fatalf("Directive = %q, want clear", got)
	}

	src.SetFrame(zoneFrame(240, 180, 800, 3000, 3000))
	a.stepNavigate(gen, &lastDirective, &haveDirective)
	if got := a.LastResult().Directive; got != "warn_left" {
		t.Fatalf("Directive = %q, want warn_left", got)
	}

	messages := announcer.Announcements()
	if len(messages) != 2 {
		t.Fatalf("expected 2 announcements, got %d", len(messages))
	}
	if !strings.Contains(messages[1].Message, "left") {
		t.Errorf("second message = %q, want a left warning", messages[1].Message)
	}
}

func TestStepNavigate_BadFrameSkips(t *testing.T) {
	a, announcer, _ := testApp(t)

	a.SetDepthSource(capture.NewStaticDepthSource(&depth.Frame{Width: 0, Height: 0, Data: []uint16{}}))

	var (
		lastDirective depth.Directive
		haveDirective bool
	)
	a.stepNavigate(a.Generation(), &lastDirective, &haveDirective)

	result := a.LastResult()
	if result == nil {
		t.Fatal("expected a published result")
	}
	if !result.Skipped {
		t.Error("bad frame should publish a skipped result")
	}
	if result.Directive != "" {
		t.Errorf("skipped result must carry no directive, got %q", result.Directive)
	}
	if len(announcer.Announcements()) != 0 {
		t.Error("skipped frames must not announce")
	}
}

func TestStepNavigate_StaleGenerationDropped(t *testing.T) {
	a, announcer, _ := testApp(t)

	a.SetDepthSource(capture.NewStaticDepthSource(zoneFrame(240, 180, 3000, 500, 3000)))

	var (
		lastDirective depth.Directive
		haveDirective bool
	)
	stale := a.Generation()
	a.SetMode(ModeObject) // bumps the generation
	announcements := len(announcer.Announcements())

	a.stepNavigate(stale, &lastDirective, &haveDirective)

	// The only published result is the mode switch itself; the stale
	// navigation frame must not overwrite it.
	if result := a.LastResult(); result == nil || result.Mode != "object" || result.Directive != "" {
		t.Errorf("stale result leaked through: %+v", result)
	}
	if len(announcer.Announcements()) != announcements {
		t.Error("stale results must not announce")
	}
}

func testCameraFrame(t *testing.T) *gocv.Mat {
	t.Helper()
	mat := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { mat.Close() })
	return &mat
}

func TestStepDetect_AnnouncesDetection(t *testing.T) {
	a, announcer, s := testApp(t)

	camera := capture.NewMockCamera([]*gocv.Mat{testCameraFrame(t)}, true)
	if err := camera.Open(); err != nil {
		t.Fatalf("failed to open mock camera: %v", err)
	}
	a.camera = camera

	runner := infer.NewMockRunner()
	runner.SetOutput(infer.SingleBoxOutput(320, 240, 100, 120, 3, 7, 0.9, 64))
	a.SetRunner(ModeCurrency, runner)

	a.SetMode(ModeCurrency)
	gen := a.Generation()
	modeAnnouncements := len(announcer.Announcements())

	var state detectState
	a.stepDetect(gen, ModeCurrency, &state)

	result := a.LastResult()
	if result == nil {
		t.Fatal("expected a published result")
	}
	if len(result.Detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(result.Detections))
	}
	if result.Labels[0] != "100 rupees" {
		t.Errorf("label = %q, want 100 rupees", result.Labels[0])
	}

	got := announcer.Announcements()
	if len(got) != modeAnnouncements+1 {
		t.Fatalf("expected one detection announcement, got %d total", len(got))
	}
	last := got[len(got)-1]
	if !strings.Contains(last.Message, "100 rupees") {
		t.Errorf("message = %q, want the detected label", last.Message)
	}

	events, err := s.Events().List(1)
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	if len(events) != 1 || events[0].Kind != store.EventKindDetection || events[0].Label != "100 rupees" {
		t.Errorf("expected a detection event, got %+v", events)
	}
}

func TestStepDetect_MotionGateSkipsStaticScene(t *testing.T) {
	a, _, _ := testApp(t)

	camera := capture.NewMockCamera([]*gocv.Mat{testCameraFrame(t)}, true)
	if err := camera.Open(); err != nil {
		t.Fatalf("failed to open mock camera: %v", err)
	}
	a.camera = camera

	runner := infer.NewMockRunner()
	runner.SetOutput(infer.SingleBoxOutput(320, 240, 100, 120, 0, 7, 0.9, 64))
	a.SetRunner(ModeCurrency, runner)

	a.SetMode(ModeCurrency)
	gen := a.Generation()

	var state detectState
	// The first frame must be inferred even though it seeds the motion
	// baseline; afterwards identical frames are skipped.
	a.stepDetect(gen, ModeCurrency, &state)
	a.stepDetect(gen, ModeCurrency, &state)
	a.stepDetect(gen, ModeCurrency, &state)

	if runner.Runs() != 1 {
		t.Errorf("expected 1 inference on a static scene, got %d", runner.Runs())
	}
}

func TestStepRead_AnnouncesText(t *testing.T) {
	a, announcer, s := testApp(t)

	camera := capture.NewMockCamera([]*gocv.Mat{testCameraFrame(t)}, true)
	if err := camera.Open(); err != nil {
		t.Fatalf("failed to open mock camera: %v", err)
	}
	a.camera = camera

	reader := ocr.NewMockReader()
	reader.SetText("platform 2")
	a.SetReader(reader)

	a.SetMode(ModeRead)
	gen := a.Generation()
	before := len(announcer.Announcements())

	var lastText string
	a.stepRead(gen, &lastText)
	a.stepRead(gen, &lastText) // unchanged text, no repeat

	result := a.LastResult()
	if result == nil || result.Text != "platform 2" {
		t.Fatalf("expected text result, got %+v", result)
	}

	if len(announcer.Announcements()) != before+1 {
		t.Errorf("expected exactly one text announcement")
	}

	events, err := s.Events().List(1)
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	if len(events) != 1 || events[0].Kind != store.EventKindText || events[0].Label != "platform 2" {
		t.Errorf("expected a text event, got %+v", events)
	}
}
