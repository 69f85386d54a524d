package kv

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyEncodeRoundTrip(t *testing.T) {
	cases := []Key{
		{},
		{"users"},
		{"users", "by_email", "a@x.com"},
		{"odd", "seg\x00with-nul"},
		{"trailing\x00"},
		{""},
		{"a", "", "b"},
	}
	for _, k := range cases {
		got, err := DecodeKey(k.Encode())
		require.NoError(t, err, "key %v", k)
		if len(k) == 0 {
			assert.Empty(t, got)
			continue
		}
		assert.Equal(t, k, got)
	}
}

func TestKeyEncodePreservesSegmentOrder(t *testing.T) {
	// Byte order of encodings must equal segment-wise order of keys.
	// "inside" < "inside/x" < "insider" segment-wise even though plain
	// string concatenation would sort "insider" between the other two.
	keys := []Key{
		{"scan", "inside"},
		{"scan", "inside", "x"},
		{"scan", "insider"},
	}
	enc := make([][]byte, len(keys))
	for i, k := range keys {
		enc[i] = k.Encode()
	}
	require.True(t, sort.SliceIsSorted(enc, func(i, j int) bool {
		return bytes.Compare(enc[i], enc[j]) < 0
	}))
}

func TestKeyEncodeIsPrefixOfExtensions(t *testing.T) {
	base := Key{"tasks", "by_story", "s1"}
	ext := base.Append("t1")
	assert.True(t, bytes.HasPrefix(ext.Encode(), base.Encode()))
	assert.True(t, ext.HasPrefix(base))
	assert.False(t, base.HasPrefix(ext))
}

func TestDecodeKeyMalformed(t *testing.T) {
	_, err := DecodeKey([]byte{0x07})
	assert.Error(t, err)
	_, err = DecodeKey([]byte{0x02, 'a'})
	assert.Error(t, err)
}

func TestPrefixEnd(t *testing.T) {
	assert.Equal(t, []byte{0x02}, PrefixEnd([]byte{0x01}))
	assert.Equal(t, []byte{0x01, 0x03}, PrefixEnd([]byte{0x01, 0x02}))
	// carries over trailing 0xff bytes
	assert.Equal(t, []byte{0x02}, PrefixEnd([]byte{0x01, 0xff, 0xff}))
	// all-0xff prefix has no finite upper bound
	assert.Nil(t, PrefixEnd([]byte{0xff, 0xff}))
	assert.Nil(t, PrefixEnd(nil))
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "users/by_email/a@x.com", Key{"users", "by_email", "a@x.com"}.String())
}
