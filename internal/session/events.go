package session

import (
	"github.com/rbright/vox/internal/formatting"
	"github.com/rbright/vox/internal/gesture"
	"github.com/rbright/vox/internal/ipc"
	"github.com/rbright/vox/internal/settings"
)

type event interface{ isEvent() }

type flagsEvent struct {
	flags gesture.Flags
}

type startedEvent struct {
	rec     *recording
	session Recording
	err     error
}

type finalizedEvent struct {
	id   string
	text string
}

type formattedEvent struct {
	id         string
	result     formatting.Result
	generation uint64
}

type settledEvent struct {
	id  string
	err error
}

type snapshotEvent struct {
	snap settings.Snapshot
}

type requestEvent struct {
	req   ipc.Request
	reply chan ipc.Response
}

func (flagsEvent) isEvent()     {}
func (startedEvent) isEvent()   {}
func (finalizedEvent) isEvent() {}
func (formattedEvent) isEvent() {}
func (settledEvent) isEvent()   {}
func (snapshotEvent) isEvent()  {}
func (requestEvent) isEvent()   {}
