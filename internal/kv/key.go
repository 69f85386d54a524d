package kv

import (
	"bytes"
	"fmt"
)

// Key is an ordered sequence of string segments identifying one entry,
// e.g. {"projects", "by_owner", ownerID, projectID}.
type Key []string

const (
	segmentTag        = 0x02
	segmentTerminator = 0x00
	escapeByte        = 0xff
)

// Encode renders the key with a tuple encoding that preserves segment-wise
// lexicographic order: each segment is written as a tag byte, the segment
// bytes with embedded NULs escaped as 0x00 0xff, and a NUL terminator.
// The encoding of a key is always a byte prefix of the encoding of any key
// that extends it, which is what makes prefix scans line up with segment
// prefixes.
func (k Key) Encode() []byte {
	var buf bytes.Buffer
	for _, seg := range k {
		buf.WriteByte(segmentTag)
		for i := 0; i < len(seg); i++ {
			buf.WriteByte(seg[i])
			if seg[i] == segmentTerminator {
				buf.WriteByte(escapeByte)
			}
		}
		buf.WriteByte(segmentTerminator)
	}
	return buf.Bytes()
}

// DecodeKey reverses Encode. It fails on truncated or malformed input.
func DecodeKey(b []byte) (Key, error) {
	var k Key
	for len(b) > 0 {
		if b[0] != segmentTag {
			return nil, fmt.Errorf("kv: malformed key: expected segment tag, got 0x%02x", b[0])
		}
		b = b[1:]
		var seg bytes.Buffer
		terminated := false
		for len(b) > 0 {
			if b[0] == segmentTerminator {
				if len(b) > 1 && b[1] == escapeByte {
					seg.WriteByte(segmentTerminator)
					b = b[2:]
					continue
				}
				b = b[1:]
				terminated = true
				break
			}
			seg.WriteByte(b[0])
			b = b[1:]
		}
		if !terminated {
			return nil, fmt.Errorf("kv: malformed key: unterminated segment")
		}
		k = append(k, seg.String())
	}
	return k, nil
}

// Append returns a new key with the given segments added.
func (k Key) Append(segments ...string) Key {
	out := make(Key, 0, len(k)+len(segments))
	out = append(out, k...)
	out = append(out, segments...)
	return out
}

// HasPrefix reports whether k starts with the segments of prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, seg := range prefix {
		if k[i] != seg {
			return false
		}
	}
	return true
}

// String renders the key for logs and error messages.
func (k Key) String() string {
	var buf bytes.Buffer
	for i, seg := range k {
		if i > 0 {
			buf.WriteByte('/')
		}
		buf.WriteString(seg)
	}
	return buf.String()
}

// PrefixEnd returns the smallest encoded key greater than every encoding
// that starts with prefix, for use as the exclusive upper bound of a range
// scan. A nil result means the range is unbounded above.
func PrefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
