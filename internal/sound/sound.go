//go:build !ci

package sound

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

const sampleRate = beep.SampleRate(44100)

var standardFormat = beep.Format{
	SampleRate:  sampleRate,
	NumChannels: 2,
	Precision:   2,
}

type SoundManager struct {
	mu      sync.RWMutex
	buffers map[string]*beep.Buffer
	enabled bool
	dir     string
}

func NewSoundManager() *SoundManager {
	return &SoundManager{
		buffers: make(map[string]*beep.Buffer),
		dir:     "assets/sounds",
	}
}

func (sm *SoundManager) Init() error {
	// Init speaker with smaller buffer for lower latency
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	if err := sm.synthesize(); err != nil {
		return err
	}
	// Files in the assets directory override the synthesized cues
	if err := sm.loadSoundFiles(); err != nil {
		return err
	}

	sm.mu.Lock()
	sm.enabled = true
	sm.mu.Unlock()
	return nil
}

// note is one tone of a cue melody
type note struct {
	freq float64
	dur  time.Duration
}

var melodies = map[string][]note{
	RoundStart: {{523.25, 120 * time.Millisecond}},
	Correct:    {{659.25, 90 * time.Millisecond}, {987.77, 140 * time.Millisecond}},
	RoundEnd:   {{440, 150 * time.Millisecond}},
	GameOver:   {{783.99, 150 * time.Millisecond}, {659.25, 150 * time.Millisecond}, {523.25, 300 * time.Millisecond}},
}

// synthesize builds the built-in cues from sine tones
func (sm *SoundManager) synthesize() error {
	for name, melody := range melodies {
		buffer := beep.NewBuffer(standardFormat)
		for _, n := range melody {
			tone, err := generators.SineTone(sampleRate, n.freq)
			if err != nil {
				return fmt.Errorf("failed to synthesize %s: %w", name, err)
			}
			buffer.Append(beep.Take(sampleRate.N(n.dur), tone))
		}
		sm.store(name, buffer)
	}
	return nil
}

// loadSoundFiles loads all sound files from the assets directory
func (sm *SoundManager) loadSoundFiles() error {
	files, err := os.ReadDir(sm.dir)
	if err != nil {
		// It's okay if directory doesn't exist, the synthesized cues remain
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read sound directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		name := file.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".mp3" && ext != ".wav" {
			continue
		}

		// Continue loading other files even if one fails
		_ = sm.loadSoundFile(name, strings.TrimSuffix(name, filepath.Ext(name)), ext)
	}

	return nil
}

// loadSoundFile loads a single sound file into the buffer
func (sm *SoundManager) loadSoundFile(name, baseName, ext string) error {
	f, err := os.Open(filepath.Clean(filepath.Join(sm.dir, name)))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	}
	if err != nil {
		return err
	}
	defer func() { _ = streamer.Close() }()

	var resampled beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		resampled = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}

	buffer := beep.NewBuffer(standardFormat)
	buffer.Append(resampled)
	sm.store(baseName, buffer)
	return nil
}

func (sm *SoundManager) store(name string, buffer *beep.Buffer) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.buffers[name] = buffer
}

func (sm *SoundManager) Play(name string) {
	sm.mu.RLock()
	buffer, ok := sm.buffers[name]
	enabled := sm.enabled
	sm.mu.RUnlock()

	if !enabled || !ok {
		return
	}
	speaker.Play(buffer.Streamer(0, buffer.Len()))
}

func (sm *SoundManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.enabled = false
}
