// Package session runs the push-to-talk controller: one goroutine that owns
// recording state and reacts to key edges, transcripts, and paste completion.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/rbright/vox/internal/formatting"
	"github.com/rbright/vox/internal/fsm"
	"github.com/rbright/vox/internal/gesture"
	"github.com/rbright/vox/internal/ipc"
	"github.com/rbright/vox/internal/recognizer"
	"github.com/rbright/vox/internal/settings"
)

const missingFormatterNotice = "AI formatting needs VOX_FORMATTER_API_KEY; pasted the plain transcript."

// Options are the fixed collaborators of a Controller.
type Options struct {
	Logger    *slog.Logger
	Indicator Indicator
	Focus     FocusFunc
	Build     Builder
	Reload    Reloader
}

// recording is the session the controller started most recently.
type recording struct {
	id                  string
	session             Recording
	modifierHeldAtStart bool
	releasedEarly       bool
	finalized           bool
}

// Controller serializes all state changes through Run.
type Controller struct {
	logger    *slog.Logger
	indicator Indicator
	focus     FocusFunc
	build     Builder
	reload    Reloader

	events  chan event
	stopped chan struct{}

	// Everything below is owned by the Run goroutine.
	state        fsm.State
	tracker      *gesture.Tracker
	snap         settings.Snapshot
	runtime      Runtime
	starting     *recording
	latest       *recording
	pendingPaste bool
	noticed      uint64
}

// NewController wires the initial runtime from snap.
func NewController(opts Options, snap settings.Snapshot) (*Controller, error) {
	if opts.Build == nil {
		return nil, errors.New("session: runtime builder is required")
	}
	runtime, err := opts.Build(snap)
	if err != nil {
		return nil, fmt.Errorf("build runtime: %w", err)
	}

	c := &Controller{
		logger:    opts.Logger,
		indicator: opts.Indicator,
		focus:     opts.Focus,
		build:     opts.Build,
		reload:    opts.Reload,
		events:    make(chan event, 64),
		stopped:   make(chan struct{}),
		state:     fsm.StateIdle,
		tracker:   gesture.NewTracker(snap.Binding),
		snap:      snap,
		runtime:   runtime,
	}
	if runtime.Indicator != nil {
		c.indicator = runtime.Indicator
	}
	if c.indicator == nil {
		c.indicator = noopIndicator{}
	}
	if c.focus == nil {
		c.focus = func(context.Context) (string, error) { return "", nil }
	}
	return c, nil
}

// ObserveFlags forwards one hardware modifier set. Safe from any goroutine.
func (c *Controller) ObserveFlags(flags gesture.Flags) {
	c.post(flagsEvent{flags: flags})
}

// Apply installs a new settings snapshot. Safe from any goroutine.
func (c *Controller) Apply(snap settings.Snapshot) {
	c.post(snapshotEvent{snap: snap})
}

// Handle serves IPC requests. State is read on the Run goroutine.
func (c *Controller) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case ipc.CommandStatus:
		reply := make(chan ipc.Response, 1)
		if !c.post(requestEvent{req: req, reply: reply}) {
			return ipc.Response{OK: false, Error: "controller stopped"}
		}
		select {
		case resp := <-reply:
			return resp
		case <-ctx.Done():
			return ipc.Response{OK: false, Error: ctx.Err().Error()}
		case <-c.stopped:
			return ipc.Response{OK: false, Error: "controller stopped"}
		}
	case ipc.CommandReload:
		if c.reload == nil {
			return ipc.Response{OK: false, Error: "reload not supported"}
		}
		if err := c.reload(); err != nil {
			return ipc.Response{OK: false, Error: fmt.Sprintf("reload failed: %v", err)}
		}
		return ipc.Response{OK: true, Message: "settings reloaded"}
	default:
		return ipc.Response{OK: false, Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

// Run processes events until ctx is done. An active recording is stopped on exit.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.stopped)

	for {
		select {
		case <-ctx.Done():
			if c.state == fsm.StateRecording && c.latest != nil {
				c.latest.session.Stop()
			}
			return nil
		case ev := <-c.events:
			c.dispatch(ctx, ev)
		}
	}
}

func (c *Controller) post(ev event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.stopped:
		return false
	}
}

func (c *Controller) dispatch(ctx context.Context, ev event) {
	switch ev := ev.(type) {
	case flagsEvent:
		edge, ok := c.tracker.Observe(ev.flags)
		if !ok {
			return
		}
		switch edge.Kind {
		case gesture.TriggerPressed:
			c.onPress(ctx, edge.ModifierHeld)
		case gesture.TriggerReleased:
			c.onRelease(ctx)
		}
	case startedEvent:
		c.onStarted(ctx, ev)
	case finalizedEvent:
		c.onFinalized(ctx, ev)
	case formattedEvent:
		c.onFormatted(ctx, ev)
	case settledEvent:
		c.onSettled(ctx, ev)
	case snapshotEvent:
		c.onSnapshot(ctx, ev.snap)
	case requestEvent:
		ev.reply <- c.status()
	}
}

// onPress opens the transcription session off the loop; the recognizer dial
// can take up to its connect timeout.
func (c *Controller) onPress(ctx context.Context, modifierHeld bool) {
	if c.state != fsm.StateIdle || c.pendingPaste || c.starting != nil {
		c.debug("press ignored", "state", c.state, "pending_paste", c.pendingPaste, "starting", c.starting != nil)
		return
	}

	rec := &recording{id: uuid.NewString(), modifierHeldAtStart: modifierHeld}
	c.starting = rec
	transcriber := c.runtime.Transcriber
	id := rec.id

	go func() {
		session, err := transcriber.Start(ctx, func(text string) {
			c.post(finalizedEvent{id: id, text: text})
		})
		if err != nil {
			c.post(startedEvent{rec: rec, err: err})
			return
		}
		if ctx.Err() != nil || !c.post(startedEvent{rec: rec, session: session}) {
			session.Stop()
		}
	}()
}

func (c *Controller) onStarted(ctx context.Context, ev startedEvent) {
	rec := ev.rec
	if c.starting == rec {
		c.starting = nil
	}
	if ev.err != nil {
		c.warn("recording start failed", "session", rec.id, "error", ev.err.Error())
		c.indicator.Error(ctx, startErrorText(ev.err))
		return
	}
	if rec.releasedEarly {
		ev.session.Stop()
		c.info("trigger released before recording started", "session", rec.id)
		return
	}
	if err := c.transition(fsm.EventStart); err != nil {
		ev.session.Stop()
		return
	}

	rec.session = ev.session
	c.latest = rec
	c.info("recording started", "session", rec.id, "ai", rec.modifierHeldAtStart)
	c.indicator.RecordingStarted(ctx)
}

func (c *Controller) onRelease(ctx context.Context) {
	if c.starting != nil {
		c.starting.releasedEarly = true
		return
	}
	if c.state != fsm.StateRecording {
		return
	}
	c.latest.session.Stop()
	_ = c.transition(fsm.EventStop)
	c.info("recording stopped", "session", c.latest.id)
	c.indicator.RecordingStopped(ctx)
}

func (c *Controller) onFinalized(ctx context.Context, ev finalizedEvent) {
	rec := c.latest
	if rec == nil || rec.id != ev.id || rec.finalized {
		c.debug("stale transcript dropped", "session", ev.id)
		return
	}
	rec.finalized = true

	pipeline := formatting.Pipeline{Formatter: c.snap.Formatter, Names: c.snap.Names()}
	useAI := rec.modifierHeldAtStart
	apps := c.snap.Config.Apps
	formality := c.snap.Formality()
	generation := c.snap.CredentialGeneration
	focus := c.focus

	go func() {
		app, err := focus(ctx)
		if err != nil {
			c.debug("focused app unavailable", "error", err.Error())
		}
		fc := formatting.ContextFor(app, apps, formality)
		result := pipeline.Process(ctx, ev.text, useAI, fc)
		c.post(formattedEvent{id: ev.id, result: result, generation: generation})
	}()
}

func (c *Controller) onFormatted(ctx context.Context, ev formattedEvent) {
	if c.latest == nil || c.latest.id != ev.id {
		c.debug("formatting result for superseded session discarded", "session", ev.id)
		return
	}

	res := ev.result
	if res.MissingFormatter && c.noticed != ev.generation {
		c.noticed = ev.generation
		c.indicator.Notice(ctx, missingFormatterNotice)
	}
	if res.Err != nil {
		c.warn("formatter failed; using transcript", "session", ev.id, "error", res.Err.Error())
	}

	if strings.TrimSpace(res.Text) == "" {
		c.info("empty transcript; nothing to paste", "session", ev.id)
		return
	}
	if err := c.transition(fsm.EventCommit); err != nil {
		c.warn("delivery skipped", "session", ev.id, "error", err.Error())
		return
	}

	// A trigger still held keeps the session open; release closes it as usual.
	c.pendingPaste = true
	id := ev.id
	c.info("delivering transcript", "session", id, "ai", res.UsedAI, "chars", len(res.Text), "state", c.state)
	c.runtime.Injector.Deliver(ctx, res.Text, func(err error) {
		c.post(settledEvent{id: id, err: err})
	})
}

func (c *Controller) onSettled(ctx context.Context, ev settledEvent) {
	c.pendingPaste = false
	if c.state != fsm.StateIdle {
		_ = c.transition(fsm.EventSettled)
	}
	if ev.err != nil {
		c.warn("delivery failed", "session", ev.id, "error", ev.err.Error())
		c.indicator.Error(ctx, "Could not copy the transcript to the clipboard")
		return
	}
	c.indicator.Delivered(ctx)
}

func (c *Controller) onSnapshot(ctx context.Context, snap settings.Snapshot) {
	runtime, err := c.build(snap)
	if err != nil {
		c.warn("settings rejected; keeping previous runtime", "error", err.Error())
		c.indicator.Error(ctx, "Settings reload failed")
		return
	}
	c.snap = snap
	c.runtime = runtime
	if runtime.Indicator != nil {
		c.indicator = runtime.Indicator
	}
	c.tracker.Rebind(snap.Binding)
	c.info("settings applied", "credential_generation", snap.CredentialGeneration)
}

func (c *Controller) status() ipc.Response {
	resp := ipc.Response{OK: true, State: string(c.state), PendingPaste: c.pendingPaste}
	if c.latest != nil {
		resp.Session = c.latest.id
	}
	return resp
}

func (c *Controller) transition(event fsm.Event) error {
	next, err := fsm.Transition(c.state, event)
	if err != nil {
		c.debug("transition ignored", "state", c.state, "event", event, "error", err.Error())
		return err
	}
	c.state = next
	return nil
}

func startErrorText(err error) string {
	var perm *recognizer.PermissionError
	switch {
	case errors.As(err, &perm):
		summary := "Speech recognition not permitted"
		if errors.Is(err, recognizer.ErrMicrophoneDenied) || errors.Is(err, recognizer.ErrMicrophoneNotDetermined) {
			summary = "Microphone unavailable"
		}
		if perm.Remediation == "" {
			return summary
		}
		return summary + ". " + perm.Remediation
	case errors.Is(err, recognizer.ErrUnavailable):
		return "Speech recognizer unavailable"
	default:
		return "Unable to start recording"
	}
}

func (c *Controller) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Controller) info(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *Controller) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
