// Package proctor implements the client-resident interview session engine:
// continuous attention estimation from a video frame source, tamper
// detection, audio answer capture, and the question/answer state machine
// that drives a candidate through a proctored interview.
package proctor

import (
	"context"
	"image"
	"log/slog"
	"math"
	"sync"
)

// Point is a face-mesh landmark in normalized frame coordinates ([0,1]).
type Point struct {
	X float64
	Y float64
}

// Landmarks is a full face-mesh point set, indexed by the mesh convention
// (nose tip 1, outer eye corners 33/263, iris rings 469-472/474-477).
type Landmarks []Point

// Face-mesh landmark indices used by the two gaze heuristics.
const (
	landmarkNoseTip       = 1
	landmarkLeftEyeOuter  = 33
	landmarkRightEyeOuter = 263
)

var (
	leftIrisIndices  = []int{474, 475, 476, 477}
	rightIrisIndices = []int{469, 470, 471, 472}

	leftEyeIndices  = []int{362, 382, 381, 380, 374, 373, 390, 249, 263, 466, 388, 387, 386, 385, 384, 398}
	rightEyeIndices = []int{33, 7, 163, 144, 145, 153, 154, 155, 133, 173, 157, 158, 159, 160, 161, 246}
)

// Landmarker runs facial-landmark inference on a single video frame.
// found is false when no face is present in the frame.
type Landmarker interface {
	Detect(ctx context.Context, frame image.Image) (lm Landmarks, found bool, err error)
	Close() error
}

// FrameSource yields live video frames. Next blocks until a frame is
// available or the context is cancelled; it is the host's frame callback
// expressed as a pull.
type FrameSource interface {
	Next(ctx context.Context) (image.Image, error)
}

// HeadPose is an approximate head orientation in degrees.
type HeadPose struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// AttentionSample is one observation of candidate engagement.
type AttentionSample struct {
	FaceDetected bool     `json:"face_detected"`
	EyesOnScreen bool     `json:"eyes_on_screen"`
	HeadPose     HeadPose `json:"head_pose"`

	// Score is the decay/recovery score in [0,100], used for scoring
	// decisions.
	Score int `json:"attention_score"`

	// SmoothedScore is the rolling-window percentage in [0,100], less
	// noise-sensitive and intended for on-screen display.
	SmoothedScore float64 `json:"smoothed_score"`
}

// EstimatorConfig tunes the attention heuristics.
type EstimatorConfig struct {
	// Decay/recovery steps applied to the running score per frame.
	EyesOnReward   float64
	LookAwayDecay  float64
	NoFaceDecay    float64
	AngleThreshold float64 // degrees, applied to |yaw| and |pitch|

	// Iris-offset method.
	IrisOffsetThreshold float64 // normalized frame units
	WindowSize          int     // rolling window capacity
}

func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		EyesOnReward:        0.5,
		LookAwayDecay:       2,
		NoFaceDecay:         3,
		AngleThreshold:      25,
		IrisOffsetThreshold: 0.015,
		WindowSize:          50,
	}
}

// Estimator consumes frames from a FrameSource, runs landmark inference and
// maintains the attention score. The inference loop is decoupled from all
// network I/O: telemetry readers call Sample, never the loop itself.
type Estimator struct {
	cfg        EstimatorConfig
	source     FrameSource
	landmarker Landmarker
	logger     *slog.Logger

	mu      sync.Mutex
	score   float64
	window  []bool
	current AttentionSample
	active  bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewEstimator creates an estimator. A nil landmarker disables attention
// scoring entirely: the session proceeds without it.
func NewEstimator(source FrameSource, landmarker Landmarker, logger *slog.Logger, cfg EstimatorConfig) *Estimator {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultEstimatorConfig().WindowSize
	}
	return &Estimator{
		cfg:        cfg,
		source:     source,
		landmarker: landmarker,
		logger:     logger,
		score:      100,
		current: AttentionSample{
			EyesOnScreen:  true,
			Score:         100,
			SmoothedScore: 100,
		},
	}
}

// Start launches the self-rescheduling inference loop. It is non-fatal for
// the landmarker to be absent; the estimator simply stays idle.
func (e *Estimator) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active {
		return
	}
	if e.landmarker == nil || e.source == nil {
		e.logger.Warn("attention estimator disabled, proceeding without attention scoring")
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})
	e.active = true

	go e.loop(loopCtx)
}

// Stop tears the loop down and closes the landmarker. Frames already in
// flight are discarded; Sample keeps returning the last observation.
func (e *Estimator) Stop() {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return
	}
	e.active = false
	cancel := e.cancel
	done := e.done
	e.mu.Unlock()

	cancel()
	<-done
	if err := e.landmarker.Close(); err != nil {
		e.logger.Warn("failed to close landmarker", "error", err)
	}
}

// Sample returns the most recent attention observation.
func (e *Estimator) Sample() AttentionSample {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *Estimator) loop(ctx context.Context) {
	defer close(e.done)

	for {
		frame, err := e.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			e.logger.Debug("frame source error", "error", err)
			continue
		}

		lm, found, err := e.landmarker.Detect(ctx, frame)
		if err != nil {
			// Per-frame inference failures count as "no face" rather
			// than aborting the loop.
			e.logger.Debug("landmark inference failed", "error", err)
			found = false
		}

		if !e.observe(lm, found) {
			return
		}
	}
}

// observe folds one inference result into the score state. It returns false
// once the estimator has been stopped, so a late frame never mutates state.
func (e *Estimator) observe(lm Landmarks, found bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return false
	}

	if !found {
		e.score = clamp(e.score - e.cfg.NoFaceDecay)
		e.pushWindow(false)
		e.current = AttentionSample{
			FaceDetected:  false,
			EyesOnScreen:  false,
			Score:         int(math.Round(e.score)),
			SmoothedScore: e.windowAverage(),
		}
		return true
	}

	pose, eyesOn := e.headPose(lm)
	if eyesOn {
		e.score = clamp(e.score + e.cfg.EyesOnReward)
	} else {
		e.score = clamp(e.score - e.cfg.LookAwayDecay)
	}
	e.pushWindow(e.irisOnScreen(lm))

	e.current = AttentionSample{
		FaceDetected:  true,
		EyesOnScreen:  eyesOn,
		HeadPose:      pose,
		Score:         int(math.Round(e.score)),
		SmoothedScore: e.windowAverage(),
	}
	return true
}

// headPose derives approximate yaw and pitch from the nose tip position
// relative to the frame center, and classifies eyes-on-screen by an angular
// threshold on both axes.
func (e *Estimator) headPose(lm Landmarks) (HeadPose, bool) {
	if len(lm) <= landmarkRightEyeOuter {
		return HeadPose{}, false
	}
	nose := lm[landmarkNoseTip]
	yaw := (nose.X - 0.5) * 60
	pitch := (nose.Y - 0.5) * 60

	eyesOn := math.Abs(yaw) < e.cfg.AngleThreshold && math.Abs(pitch) < e.cfg.AngleThreshold
	return HeadPose{Pitch: pitch, Yaw: yaw}, eyesOn
}

// irisOnScreen is the alternate geometric gaze check: the candidate is
// looking at the screen when each iris centroid sits within a small offset
// of its eye-contour centroid.
func (e *Estimator) irisOnScreen(lm Landmarks) bool {
	maxIdx := 0
	for _, idx := range leftIrisIndices {
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	if len(lm) <= maxIdx {
		return false
	}

	lOffset := distance(centroid(lm, leftIrisIndices), centroid(lm, leftEyeIndices))
	rOffset := distance(centroid(lm, rightIrisIndices), centroid(lm, rightEyeIndices))
	return lOffset < e.cfg.IrisOffsetThreshold && rOffset < e.cfg.IrisOffsetThreshold
}

func (e *Estimator) pushWindow(looking bool) {
	e.window = append(e.window, looking)
	if len(e.window) > e.cfg.WindowSize {
		e.window = e.window[1:]
	}
}

func (e *Estimator) windowAverage() float64 {
	if len(e.window) == 0 {
		return 100
	}
	focused := 0
	for _, looking := range e.window {
		if looking {
			focused++
		}
	}
	return float64(focused) / float64(len(e.window)) * 100
}

func centroid(lm Landmarks, indices []int) Point {
	var x, y float64
	for _, idx := range indices {
		x += lm[idx].X
		y += lm[idx].Y
	}
	n := float64(len(indices))
	return Point{X: x / n, Y: y / n}
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// clamp keeps the running score inside [0,100]. Hard invariant, applied
// after every update.
func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
