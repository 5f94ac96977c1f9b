package processor

import (
	"github.com/roach88/cmdq/internal/command"
)

// Key is the ordering key of a queued entry.
type Key struct {
	Priority int
	Seq      int64
}

// Less orders keys by priority, then by sequence. It never looks at the
// payload, tags or owner of an entry.
func (k Key) Less(o Key) bool {
	if k.Priority != o.Priority {
		return k.Priority < o.Priority
	}
	return k.Seq < o.Seq
}

// haltKey is the key of the control entry pushed by Halt.
var haltKey = Key{Priority: 0, Seq: 0}

// payloadKind tags what an entry carries.
type payloadKind uint8

const (
	payloadWork payloadKind = iota + 1
	payloadControl
)

func (k payloadKind) String() string {
	switch k {
	case payloadWork:
		return "work"
	case payloadControl:
		return "control"
	default:
		return "unknown"
	}
}

// control is the signal carried by a control entry.
type control uint8

const (
	controlHalt control = iota + 1
)

// entry is a queued unit: ordering key, metadata and a tagged payload.
// Exactly one of cmd or ctl is meaningful, as selected by kind.
type entry[C any] struct {
	key    Key
	handle *command.Handle
	kind   payloadKind
	cmd    command.Command[C]
	ctl    control
}

// newWorkEntry keys the entry by the engine-allocated values, not by whatever
// the command put in its handle.
func newWorkEntry[C any](key Key, h *command.Handle, cmd command.Command[C]) *entry[C] {
	return &entry[C]{
		key:    key,
		handle: h,
		kind:   payloadWork,
		cmd:    cmd,
	}
}

func newHaltEntry[C any](owner string) *entry[C] {
	h := &command.Handle{
		Meta: command.Meta{Priority: haltKey.Priority, Seq: haltKey.Seq, Owner: owner},
		Name: "halt",
	}
	return &entry[C]{
		key:    haltKey,
		handle: h,
		kind:   payloadControl,
		ctl:    controlHalt,
	}
}
