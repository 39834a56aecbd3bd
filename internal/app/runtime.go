package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rbright/vox/internal/audio"
	"github.com/rbright/vox/internal/config"
	"github.com/rbright/vox/internal/deepgram"
	"github.com/rbright/vox/internal/indicator"
	"github.com/rbright/vox/internal/output"
	"github.com/rbright/vox/internal/session"
	"github.com/rbright/vox/internal/settings"
	"github.com/rbright/vox/internal/transcription"
)

// runtimeBuilder wires collaborators for each settings snapshot. The
// indicator is reused while its config is unchanged so an open notification
// can still be dismissed.
type runtimeBuilder struct {
	logger *slog.Logger

	mu            sync.Mutex
	indicatorCfg  config.IndicatorConfig
	indicatorImpl *indicator.Notifier
}

func newRuntimeBuilder(logger *slog.Logger) *runtimeBuilder {
	return &runtimeBuilder{logger: logger}
}

func (b *runtimeBuilder) build(snap settings.Snapshot) (session.Runtime, error) {
	cfg := snap.Config

	injector, err := output.FromConfig(cfg, b.logger)
	if err != nil {
		return session.Runtime{}, fmt.Errorf("output: %w", err)
	}

	engine := deepgram.New(deepgram.Config{
		Endpoint:       cfg.Recognizer.Endpoint,
		APIKey:         cfg.Secrets.Recognizer(),
		Model:          cfg.Recognizer.Model,
		Language:       cfg.Recognizer.Language,
		Punctuate:      cfg.Recognizer.Punctuate,
		SmartFormat:    cfg.Recognizer.SmartFormat,
		ConnectTimeout: time.Duration(cfg.Recognizer.ConnectTimeoutMS) * time.Millisecond,
	}, b.logger)

	mic := microphone{audio.NewMicrophone(cfg.Audio, cfg.Debug.EnableAudioDump, b.logger)}
	starter := transcription.NewStarter(engine, mic, transcription.Options{
		DrainTimeout: time.Duration(cfg.Recognizer.DrainTimeoutMS) * time.Millisecond,
		AudioDump:    cfg.Debug.EnableAudioDump,
		StreamDump:   cfg.Debug.EnableStreamDump,
	}, b.logger)

	return session.Runtime{
		Transcriber: session.TranscriberFunc(func(ctx context.Context, onFinal func(string)) (session.Recording, error) {
			s, err := starter.Start(ctx, onFinal)
			if err != nil {
				return nil, err
			}
			return s, nil
		}),
		Injector:  injector,
		Indicator: b.notifier(cfg.Indicator),
	}, nil
}

func (b *runtimeBuilder) notifier(cfg config.IndicatorConfig) *indicator.Notifier {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.indicatorImpl == nil || b.indicatorCfg != cfg {
		b.indicatorCfg = cfg
		b.indicatorImpl = indicator.New(cfg, b.logger)
	}
	return b.indicatorImpl
}

// microphone narrows audio.Microphone to the transcription capture interface.
type microphone struct {
	*audio.Microphone
}

func (m microphone) Open(ctx context.Context) (transcription.Capture, error) {
	capture, err := m.Microphone.Open(ctx)
	if err != nil {
		return nil, err
	}
	return capture, nil
}
