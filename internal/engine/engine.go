// Package engine composes the dialect catalog, codec, framer, and stream
// buffer into the receive/transmit API described in SPEC_FULL.md §2
// (parse_bytes, decode_frame, serialize_message, complete_message).
package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kstaniek/mavlink-go/internal/codec"
	"github.com/kstaniek/mavlink-go/internal/crc"
	"github.com/kstaniek/mavlink-go/internal/dialect"
	"github.com/kstaniek/mavlink-go/internal/frame"
	"github.com/kstaniek/mavlink-go/internal/logging"
	"github.com/kstaniek/mavlink-go/internal/metrics"
	"github.com/kstaniek/mavlink-go/internal/streambuf"
)

// Sentinel errors for serialize failures, classified via errors.Is
// (mirrors the teacher's internal/server/errors.go pattern).
var (
	ErrUnknownMessage  = errors.New("mavlink: unknown message name")
	ErrMalformedMessage = errors.New("mavlink: malformed message")
	ErrMissingCRCExtra  = errors.New("mavlink: missing crc_extra for registered id")
)

// ParsedMessage is a decoded frame plus its message-level interpretation.
type ParsedMessage struct {
	Frame       frame.Frame
	MessageName string
	Payload     map[string]any
	Dialect     string
	Timestamp   time.Time
	Signature   []byte
}

// OutgoingMessage is the caller-supplied value serialized by
// SerializeMessage / CompleteMessage. SystemID and ComponentID are
// pointers because spec defaults (1/1) must be distinguishable from an
// explicit 0, which MAVLink itself uses (e.g. broadcast/proxy
// conventions) - a plain byte can't tell "omitted" from "zero".
type OutgoingMessage struct {
	MessageName     string
	Payload         map[string]any
	SystemID        *byte // nil selects the default (1)
	ComponentID     *byte // nil selects the default (1)
	Sequence        byte
	ProtocolVersion int // 0 = auto (v2 iff id > 255), 1 or 2 to force
}

// Byte returns a pointer to b, for populating OutgoingMessage.SystemID /
// ComponentID from a literal.
func Byte(b byte) *byte { return &b }

// Engine holds an immutable dialect catalog (shareable across engines, per
// spec §5) and an exclusively-owned stream buffer.
type Engine struct {
	name   string
	cat    *dialect.Catalog
	table  crc.Table
	buf    *streambuf.Buffer
	nowFn  func() time.Time
}

// New builds an Engine over cat. The dialect name is cosmetic (carried
// into ParsedMessage.Dialect) and defaults to "mavlink".
func New(cat *dialect.Catalog) *Engine {
	return &Engine{
		name:  "mavlink",
		cat:   cat,
		table: cat.CRCTable(),
		buf:   streambuf.New(),
		nowFn: time.Now,
	}
}

// WithDialectName sets the cosmetic dialect name reported on ParsedMessage.
func (e *Engine) WithDialectName(name string) *Engine {
	e.name = name
	return e
}

// ParseBytes appends data to the internal stream buffer, then repeatedly
// invokes the framer until it makes no further progress, decoding every
// frame it emits. Any unconsumed prefix remains buffered for the next call.
func (e *Engine) ParseBytes(data []byte) []*ParsedMessage {
	e.buf.Append(data)
	var out []*ParsedMessage
	for {
		contents := e.buf.Contents()
		if len(contents) == 0 {
			return out
		}
		fr, consumed := frame.ParseFrame(contents, e.table)
		if fr == nil && consumed == 0 {
			return out
		}
		if fr != nil {
			out = append(out, e.Decode(fr))
		}
		if consumed == 0 {
			return out
		}
		if fr == nil {
			metrics.AddResyncBytes(consumed)
			logging.L().Debug("frame_resync", "bytes", consumed)
		}
		e.buf.Consume(consumed)
	}
}

// Decode interprets a parsed frame against the catalog. An id absent from
// the catalog produces a synthetic UNKNOWN_<id> message carrying the raw
// payload, preserving the frame's CRCOK flag rather than treating the
// unknown id as an error (spec §4.5, §7).
func (e *Engine) Decode(fr *frame.Frame) *ParsedMessage {
	pm := &ParsedMessage{
		Frame:     *fr,
		Dialect:   e.name,
		Timestamp: e.nowFn(),
		Signature: fr.Signature,
	}
	def, ok := e.cat.ByID(fr.MessageID)
	if !ok {
		metrics.IncUnknownMessage()
		logging.L().Info("unknown_message", "id", fr.MessageID, "dialect", e.name)
		pm.MessageName = fmt.Sprintf("UNKNOWN_%d", fr.MessageID)
		pm.Payload = map[string]any{"raw_payload": fr.Payload}
		return pm
	}
	pm.MessageName = def.Name
	pm.Payload = codec.DecodePayload(fr.Payload, def.Fields)
	if !fr.CRCOK {
		logging.L().Warn("crc_mismatch", "message", def.Name, "id", fr.MessageID)
	}
	return pm
}

// CompleteMessage returns a copy of msg whose payload holds every field the
// definition declares. The payload is encoded and decoded again, so omitted
// fields come back as zero values (non-char arrays as zero-filled arrays)
// and supplied fields come back as their decoded wire values, in the
// field's Go type.
func (e *Engine) CompleteMessage(msg *OutgoingMessage) (*OutgoingMessage, error) {
	def, ok := e.cat.ByName(msg.MessageName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.MessageName)
	}
	if msg.Payload == nil {
		return nil, fmt.Errorf("%w: payload must be a mapping", ErrMalformedMessage)
	}
	full := codec.EncodePayload(msg.Payload, def.Fields)
	completed := codec.DecodePayload(full, def.Fields)
	out := *msg
	out.Payload = completed
	return &out, nil
}

// SerializeMessage looks msg.MessageName up in the catalog, fills missing
// fields with defaults, encodes the payload (truncating v2 extension
// trailing zeros), and wraps it into wire bytes via frame.CreateFrame.
func (e *Engine) SerializeMessage(msg *OutgoingMessage) ([]byte, error) {
	if msg.MessageName == "" {
		return nil, fmt.Errorf("%w: empty message name", ErrUnknownMessage)
	}
	def, ok := e.cat.ByName(msg.MessageName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.MessageName)
	}
	if msg.Payload == nil {
		return nil, fmt.Errorf("%w: payload must be a mapping", ErrMalformedMessage)
	}
	crcExtra, ok := e.cat.CRCExtra(def.ID)
	if !ok {
		return nil, fmt.Errorf("%w: id %d (%s)", ErrMissingCRCExtra, def.ID, def.Name)
	}

	full := codec.EncodePayload(msg.Payload, def.Fields)

	version := msg.ProtocolVersion
	if version == 0 {
		version = 1
		if def.ID > 255 {
			version = 2
		}
	}

	payload := full
	if version == 2 {
		_, core := codec.PayloadSize(codec.WireOrder(def.Fields))
		payload = codec.Truncate(full, core)
	}

	systemID, componentID := byte(1), byte(1)
	if msg.SystemID != nil {
		systemID = *msg.SystemID
	}
	if msg.ComponentID != nil {
		componentID = *msg.ComponentID
	}

	return frame.CreateFrame(def.ID, payload, systemID, componentID, msg.Sequence, crcExtra, version), nil
}

// ResetBuffer discards any unconsumed bytes retained by ParseBytes.
func (e *Engine) ResetBuffer() { e.buf.Reset() }

// DefinitionByID exposes the catalog's id lookup.
func (e *Engine) DefinitionByID(id uint32) (*dialect.MessageDef, bool) { return e.cat.ByID(id) }

// DefinitionByName exposes the catalog's name lookup.
func (e *Engine) DefinitionByName(name string) (*dialect.MessageDef, bool) { return e.cat.ByName(name) }

// SupportsID reports whether id is registered in the catalog.
func (e *Engine) SupportsID(id uint32) bool { return e.cat.SupportsID(id) }

// SupportsName reports whether name is registered in the catalog.
func (e *Engine) SupportsName(name string) bool { return e.cat.SupportsName(name) }

// SupportedIDs returns every registered id, sorted ascending.
func (e *Engine) SupportedIDs() []uint32 { return e.cat.SupportedIDs() }

// SupportedNames returns every registered name, sorted ascending for
// stable CLI/log output (the catalog itself does not guarantee order).
func (e *Engine) SupportedNames() []string {
	names := e.cat.SupportedNames()
	sort.Strings(names)
	return names
}
