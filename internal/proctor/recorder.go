package proctor

import (
	"bytes"
	"context"
	"encoding/base64"
	"log/slog"
	"sync"
	"time"
)

// Microphone abstracts the host's audio device acquisition. Open blocks
// until the permission prompt resolves.
type Microphone interface {
	Open(ctx context.Context) (AudioStream, error)
}

// AudioStream delivers encoded audio chunks. The host closes Chunks after
// Stop, which finalizes the capture.
type AudioStream interface {
	Chunks() <-chan []byte
	Stop() error
}

// Recording is the finalized capture artifact: a transport-safe encoding of
// the audio plus its elapsed duration.
type Recording struct {
	AudioBase64 string
	Duration    time.Duration
}

// Recorder manages chunked microphone capture. At most one recording is
// active at a time; the device stream is owned exclusively by the recorder
// between StartRecording and finalization.
type Recorder struct {
	mic    Microphone
	logger *slog.Logger

	mu        sync.Mutex
	recording bool
	startedAt time.Time
	stream    AudioStream
	chunks    [][]byte
	drained   chan struct{}
	artifact  *Recording
}

func NewRecorder(mic Microphone, logger *slog.Logger) *Recorder {
	return &Recorder{mic: mic, logger: logger}
}

// StartRecording acquires the microphone and begins chunked capture. A
// denied permission or missing device surfaces as *DeviceError; unlike
// attention-inference failures this blocks the capability and is reported
// to the caller.
func (r *Recorder) StartRecording(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return ErrConflict
	}

	stream, err := r.mic.Open(ctx)
	if err != nil {
		return &DeviceError{Device: "microphone", Err: err}
	}

	r.recording = true
	r.startedAt = time.Now()
	r.stream = stream
	r.chunks = nil
	r.drained = make(chan struct{})

	go r.drain(stream, r.drained)
	return nil
}

func (r *Recorder) drain(stream AudioStream, done chan struct{}) {
	defer close(done)
	for chunk := range stream.Chunks() {
		if len(chunk) == 0 {
			continue
		}
		r.mu.Lock()
		r.chunks = append(r.chunks, chunk)
		r.mu.Unlock()
	}
}

// StopRecording finalizes the capture. The result arrives asynchronously on
// the returned channel once all chunks are drained and encoded; the channel
// is closed without a value when no recording was in progress.
func (r *Recorder) StopRecording() <-chan Recording {
	out := make(chan Recording, 1)

	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		close(out)
		return out
	}
	r.recording = false
	stream := r.stream
	drained := r.drained
	startedAt := r.startedAt
	r.stream = nil
	r.mu.Unlock()

	go func() {
		defer close(out)
		if err := stream.Stop(); err != nil {
			r.logger.Warn("failed to stop audio stream", "error", err)
		}
		<-drained

		r.mu.Lock()
		var buf bytes.Buffer
		for _, chunk := range r.chunks {
			buf.Write(chunk)
		}
		rec := Recording{
			AudioBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
			Duration:    time.Since(startedAt).Round(time.Second),
		}
		r.artifact = &rec
		r.chunks = nil
		r.mu.Unlock()

		out <- rec
	}()
	return out
}

// Recording returns the last finalized artifact, if any.
func (r *Recorder) Recording() (*Recording, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.artifact == nil {
		return nil, false
	}
	rec := *r.artifact
	return &rec, true
}

// IsRecording reports whether a capture is currently active.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Reset clears any previously captured artifact. Idempotent; it does not
// touch an in-progress recording.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifact = nil
	if !r.recording {
		r.chunks = nil
	}
}
