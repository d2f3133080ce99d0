// Package audio previews generated narration through the local speaker.
// Playback is strictly optional: a missing or broken audio device turns the
// player into a no-op so the generation pipeline never stalls on it.
package audio

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/config"
)

const (
	targetSampleRate = 48000
	queueDepth       = 8
)

// ErrQueueFull is returned when the preview queue cannot accept another clip.
var ErrQueueFull = errors.New("preview queue full")

// clip is one queued narration preview.
type clip struct {
	name string
	data []byte
}

// Player accepts narration clips for local playback.
type Player interface {
	Enqueue(name string, data []byte) error
	Stop()
	SetVolume(vol float64)
	Volume() float64
	Busy() bool
	Shutdown()
}

// Manager implements Player on gopxl/beep. One worker goroutine drains the
// queue so clips never overlap.
type Manager struct {
	mu          sync.Mutex
	volume      float64
	disabled    bool
	initialized bool
	playing     bool
	vol         *effects.Volume

	queue chan clip
	quit  chan struct{}
	skip  chan struct{}
}

// New creates a Manager. With preview disabled in config every method is a
// no-op.
func New(cfg config.AudioConfig) *Manager {
	m := &Manager{
		volume: clampVolume(cfg.Volume),
		queue:  make(chan clip, queueDepth),
		quit:   make(chan struct{}),
		skip:   make(chan struct{}, 1),
	}
	if !cfg.PreviewEnabled {
		m.disabled = true
		return m
	}
	go m.loop()
	return m
}

// Enqueue schedules a clip for playback. Clips play in submission order.
func (m *Manager) Enqueue(name string, data []byte) error {
	m.mu.Lock()
	disabled := m.disabled
	m.mu.Unlock()
	if disabled || len(data) == 0 {
		return nil
	}

	select {
	case m.queue <- clip{name: name, data: data}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop skips the clip currently playing. Queued clips still play.
func (m *Manager) Stop() {
	select {
	case m.skip <- struct{}{}:
	default:
	}
}

// SetVolume sets playback volume (0.0 to 1.0), applied live.
func (m *Manager) SetVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.volume = clampVolume(vol)
	if m.vol != nil {
		speaker.Lock()
		m.vol.Volume = volumeToPower(m.volume)
		m.vol.Silent = m.volume <= 0.01
		speaker.Unlock()
	}
}

// Volume returns the current volume level.
func (m *Manager) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// Busy reports whether a clip is currently playing.
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Shutdown stops playback and the worker. The Manager cannot be reused.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	if m.disabled {
		m.mu.Unlock()
		return
	}
	m.disabled = true
	initialized := m.initialized
	m.mu.Unlock()

	close(m.quit)
	if initialized {
		speaker.Clear()
	}
}

func (m *Manager) loop() {
	for {
		select {
		case <-m.quit:
			return
		case c := <-m.queue:
			m.play(c)
		}
	}
}

func (m *Manager) play(c clip) {
	if !m.ensureSpeaker() {
		return
	}

	streamer, format, err := decode(c.data)
	if err != nil {
		slog.Warn("Preview clip undecodable", "clip", c.name, "error", err)
		return
	}
	defer streamer.Close()

	resampled := beep.Resample(3, format.SampleRate, targetSampleRate, streamer)

	m.mu.Lock()
	vol := &effects.Volume{
		Streamer: resampled,
		Base:     2,
		Volume:   volumeToPower(m.volume),
		Silent:   m.volume <= 0.01,
	}
	m.vol = vol
	m.playing = true
	m.mu.Unlock()

	done := make(chan struct{})
	speaker.Play(beep.Seq(vol, beep.Callback(func() {
		close(done)
	})))

	slog.Debug("Preview playing", "clip", c.name,
		"duration", format.SampleRate.D(streamer.Len()).Round(time.Millisecond))

	select {
	case <-done:
	case <-m.skip:
		speaker.Clear()
	case <-m.quit:
		speaker.Clear()
	}

	m.mu.Lock()
	m.vol = nil
	m.playing = false
	m.mu.Unlock()
}

// ensureSpeaker initializes the audio device once. Failure disables the
// player for the rest of the process lifetime.
func (m *Manager) ensureSpeaker() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disabled {
		return false
	}
	if m.initialized {
		return true
	}

	sr := beep.SampleRate(targetSampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		slog.Warn("Audio device unavailable, preview disabled", "error", err)
		m.disabled = true
		return false
	}
	m.initialized = true
	return true
}

// decode tries MP3 first, then WAV.
func decode(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	streamer, format, err := mp3.Decode(nopSeekCloser(data))
	if err == nil {
		return streamer, format, nil
	}

	streamer, format, wavErr := wav.Decode(nopSeekCloser(data))
	if wavErr != nil {
		return nil, beep.Format{}, errors.Join(err, wavErr)
	}
	return streamer, format, nil
}

func nopSeekCloser(data []byte) io.ReadSeekCloser {
	return readSeekCloser{bytes.NewReader(data)}
}

type readSeekCloser struct {
	*bytes.Reader
}

func (readSeekCloser) Close() error { return nil }

func clampVolume(vol float64) float64 {
	if vol < 0 {
		return 0
	}
	if vol > 1 {
		return 1
	}
	return vol
}

// volumeToPower maps linear 0..1 volume onto beep's base-2 exponent scale.
func volumeToPower(vol float64) float64 {
	if vol <= 0.01 {
		return -10
	}
	return math.Log2(vol)
}
