// Package streambuf implements the append-and-consume byte reservoir that
// feeds the framer: a single backing array with start/end indices that
// grows and compacts to avoid per-call allocation (SPEC_FULL.md §2).
//
// It generalizes the teacher's inline bytes.Buffer + CompactBuffer/in.Next
// resync pattern (internal/serial.Codec.DecodeStream) into a standalone,
// reusable type, since the spec calls for a dedicated stream-buffer
// component rather than ad hoc buffer surgery at each call site.
package streambuf

const defaultCapacity = 4096

// Buffer is a byte reservoir with append/consume semantics. It is not
// safe for concurrent use; callers own one Buffer exclusively (spec §5).
type Buffer struct {
	data       []byte
	start, end int
}

// New returns a Buffer with the default initial capacity (4 KiB).
func New() *Buffer { return &Buffer{data: make([]byte, defaultCapacity)} }

// Append copies b onto the end of the live range, growing or compacting
// the backing array as needed.
func (buf *Buffer) Append(b []byte) {
	if len(b) == 0 {
		return
	}
	incoming := len(b)
	liveLen := buf.end - buf.start
	capacity := len(buf.data)

	switch {
	case liveLen+incoming > capacity:
		newCap := capacity * 2
		if required := liveLen + incoming; newCap < required {
			newCap = required
		}
		next := make([]byte, newCap)
		copy(next, buf.data[buf.start:buf.end])
		buf.data = next
		buf.end = liveLen
		buf.start = 0
	case buf.end+incoming > capacity:
		copy(buf.data, buf.data[buf.start:buf.end])
		buf.end = liveLen
		buf.start = 0
	}
	copy(buf.data[buf.end:], b)
	buf.end += incoming
}

// Contents returns a zero-copy view of the live range. The caller must
// finish reading the returned slice before the next Append, which may
// reallocate or shift the backing array out from under it.
func (buf *Buffer) Contents() []byte {
	return buf.data[buf.start:buf.end]
}

// Consume drops the first n bytes of the live range. Passing n greater
// than the live length is undefined (callers must only consume bytes they
// actually read, per spec's buffer-ownership contract).
func (buf *Buffer) Consume(n int) {
	buf.start += n
	if buf.start == buf.end {
		buf.start, buf.end = 0, 0
	}
}

// Reset empties the buffer without releasing the backing array.
func (buf *Buffer) Reset() {
	buf.start, buf.end = 0, 0
}

// Len returns the number of unread bytes currently held.
func (buf *Buffer) Len() int { return buf.end - buf.start }
