// Package frame locates MAVLink frame boundaries in a byte buffer, parses
// v1 and v2 headers, validates the trailing CRC, and assembles outgoing
// frames. It is grounded on the teacher's internal/serial.Codec.DecodeStream
// preamble-scan/resync loop, generalized from a single fixed UART framing
// to MAVLink's two magic bytes and variable header widths.
package frame

import (
	"encoding/binary"

	"github.com/kstaniek/mavlink-go/internal/crc"
)

// indexMagic returns the index of the first 0xFE or 0xFD byte in data, or
// -1 if neither appears. Both are non-ASCII single bytes, not valid UTF-8
// on their own, so this is a plain byte scan rather than bytes.IndexAny
// (which treats its needle as a set of runes).
func indexMagic(data []byte) int {
	for i, b := range data {
		if b == MagicV1 || b == MagicV2 {
			return i
		}
	}
	return -1
}

const (
	MagicV1 = 0xFE
	MagicV2 = 0xFD

	headerSizeV1 = 5 // magic excluded: len,seq,sysid,compid,msgid
	headerSizeV2 = 9 // magic excluded: len,incompat,compat,seq,sysid,compid,msgid(3)
	trailerSize  = 2
	signatureLen = 13

	minFrameV1 = 8  // magic + 5-byte header + 0 payload + 2 checksum
	minFrameV2 = 12 // magic + 9-byte header + 0 payload + 2 checksum
)

// Frame is a single parsed MAVLink frame.
type Frame struct {
	Magic           byte
	PayloadLen      uint8
	IncompatFlags   byte
	CompatFlags     byte
	Sequence        byte
	SystemID        byte
	ComponentID     byte
	MessageID       uint32
	Payload         []byte
	Checksum        uint16
	Signature       []byte // nil unless v2 signing flag set and present
	ProtocolVersion int
	CRCOK           bool
}

// ParseFrame scans data for the next frame. It returns (frame, consumed)
// where consumed is always an index into data the caller should pass to
// the stream buffer's Consume: bytes strictly before the returned frame
// (noise, or a discarded corrupt frame) are included in consumed.
//
// A nil frame with consumed == 0 means "need more bytes, try again after
// the next Append" (the caller must retain everything from the current
// contents onward). A nil frame with consumed == len(data) means the
// entire buffer was noise and should be dropped. A nil frame with
// consumed == offset (the position of a found magic byte, short of
// minFrameV1/V2 more data away) also means "wait for more data, but you
// may discard everything before offset".
func ParseFrame(data []byte, table crc.Table) (*Frame, int) {
	if len(data) < minFrameV1 {
		return nil, 0
	}

	offset := indexMagic(data)
	if offset < 0 {
		return nil, len(data)
	}

	magic := data[offset]
	isV2 := magic == MagicV2
	minLen := minFrameV1
	if isV2 {
		minLen = minFrameV2
	}
	if len(data)-offset < minLen {
		return nil, offset
	}

	p := data[offset:]
	fr := &Frame{Magic: magic, ProtocolVersion: 1}
	var headerSize int
	if isV2 {
		fr.ProtocolVersion = 2
		headerSize = headerSizeV2
		fr.PayloadLen = p[1]
		fr.IncompatFlags = p[2]
		fr.CompatFlags = p[3]
		fr.Sequence = p[4]
		fr.SystemID = p[5]
		fr.ComponentID = p[6]
		fr.MessageID = uint32(p[7]) | uint32(p[8])<<8 | uint32(p[9])<<16
	} else {
		headerSize = headerSizeV1
		fr.PayloadLen = p[1]
		fr.Sequence = p[2]
		fr.SystemID = p[3]
		fr.ComponentID = p[4]
		fr.MessageID = uint32(p[5])
	}

	frameEnd := 1 + headerSize + int(fr.PayloadLen) + trailerSize
	if len(p) < frameEnd {
		return nil, offset
	}

	fr.Payload = append([]byte(nil), p[1+headerSize:1+headerSize+int(fr.PayloadLen)]...)
	checksumOff := 1 + headerSize + int(fr.PayloadLen)
	fr.Checksum = binary.LittleEndian.Uint16(p[checksumOff : checksumOff+2])

	if isV2 && fr.IncompatFlags&0x01 != 0 {
		if len(p) < frameEnd+signatureLen {
			return nil, offset
		}
		fr.Signature = append([]byte(nil), p[frameEnd:frameEnd+signatureLen]...)
		frameEnd += signatureLen
	}

	fr.CRCOK = crc.ValidateWithTable(p[1:checksumOff], fr.MessageID, fr.Checksum, table)

	return fr, offset + frameEnd
}

// CreateFrame assembles the wire bytes for an outgoing message: header,
// payload, and little-endian CRC trailer. Incompatible/compatible flags
// are always written as 0 (signing is not produced by this engine).
// version selects v1 (1) or v2 (2); messageID > 255 forces v2 regardless
// of version.
func CreateFrame(messageID uint32, payload []byte, systemID, componentID, sequence byte, crcExtra byte, version int) []byte {
	isV2 := version == 2 || messageID > 255

	if !isV2 {
		buf := make([]byte, 0, minFrameV1+len(payload))
		buf = append(buf, MagicV1, byte(len(payload)), sequence, systemID, componentID, byte(messageID))
		buf = append(buf, payload...)
		sum := crc.Calculate(buf[1:], crcExtra)
		var trailer [2]byte
		binary.LittleEndian.PutUint16(trailer[:], sum)
		return append(buf, trailer[:]...)
	}

	buf := make([]byte, 0, minFrameV2+len(payload))
	buf = append(buf, MagicV2, byte(len(payload)), 0, 0, sequence, systemID, componentID,
		byte(messageID), byte(messageID>>8), byte(messageID>>16))
	buf = append(buf, payload...)
	sum := crc.Calculate(buf[1:], crcExtra)
	var trailer [2]byte
	binary.LittleEndian.PutUint16(trailer[:], sum)
	return append(buf, trailer[:]...)
}
