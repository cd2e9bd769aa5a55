package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/vision-status/internal/logging"
)

// Mode describes how a Player paces a replay script.
type Mode int

const (
	// RealTime waits each frame's After delay on the wall clock.
	RealTime Mode = iota
	// Accelerated publishes frames back to back, keeping their order.
	Accelerated
)

// ParseMode accepts "realtime" and "accelerated".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "realtime", "real_time":
		return RealTime, nil
	case "accelerated", "fast":
		return Accelerated, nil
	default:
		return RealTime, fmt.Errorf("unknown replay mode %q", s)
	}
}

// Frame is one scripted telemetry update, published After the previous one.
type Frame struct {
	After   time.Duration `yaml:"after"`
	Channel Channel       `yaml:"channel"`
	Value   any           `yaml:"value"`
}

// Script is an ordered list of frames.
type Script struct {
	Frames []Frame `yaml:"frames"`
	// Loop restarts the script after the last frame until the context ends.
	Loop bool `yaml:"loop"`
}

// LoadReplay parses a YAML replay script and checks every channel name.
func LoadReplay(r io.Reader) (*Script, error) {
	var script Script
	if err := yaml.NewDecoder(r).Decode(&script); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse replay script: %w", err)
	}
	for i, f := range script.Frames {
		if err := f.Channel.Validate(); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		if f.After < 0 {
			return nil, fmt.Errorf("frame %d: negative delay %s", i, f.After)
		}
	}
	return &script, nil
}

// LoadReplayFile reads a replay script from path.
func LoadReplayFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay script: %w", err)
	}
	defer f.Close()
	return LoadReplay(f)
}

// Player publishes a Script into a LocalSource.
type Player struct {
	script *Script
	dst    *LocalSource
	codec  Codec
	mode   Mode
	log    logging.Logger

	listeners []func(Frame)
}

// NewPlayer builds a player that encodes frame values with codec.
func NewPlayer(script *Script, dst *LocalSource, codec Codec, mode Mode, log logging.Logger) *Player {
	if codec == nil {
		codec = JSON
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Player{
		script: script,
		dst:    dst,
		codec:  codec,
		mode:   mode,
		log:    log.With(logging.String("component", "replay")),
	}
}

// AddListener registers a callback invoked after every published frame.
func (p *Player) AddListener(fn func(Frame)) {
	p.listeners = append(p.listeners, fn)
}

// Run plays the script until it ends or ctx is cancelled. Frames whose value
// cannot be encoded or published are logged and skipped.
func (p *Player) Run(ctx context.Context) error {
	if p.script == nil || len(p.script.Frames) == 0 {
		return nil
	}
	p.log.Info(ctx, "replay started",
		logging.Int("frames", len(p.script.Frames)),
		logging.Bool("loop", p.script.Loop),
	)
	for {
		for i, f := range p.script.Frames {
			if err := p.wait(ctx, f.After); err != nil {
				return err
			}
			if err := p.dst.PublishValue(f.Channel, p.codec, f.Value); err != nil {
				p.log.Warn(ctx, "skipping replay frame",
					logging.Int("frame", i),
					logging.String("channel", string(f.Channel)),
					logging.Err(err),
				)
				continue
			}
			for _, fn := range p.listeners {
				fn(f)
			}
		}
		if !p.script.Loop {
			p.log.Info(ctx, "replay finished")
			return nil
		}
	}
}

func (p *Player) wait(ctx context.Context, d time.Duration) error {
	if p.mode == Accelerated || d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
