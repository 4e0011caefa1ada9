package record

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader returns its chunks one Read at a time.
type chunkReader struct {
	chunks []string
	err    error
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		if c.err != nil {
			return 0, c.err
		}
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	c.chunks[0] = c.chunks[0][n:]
	if c.chunks[0] == "" {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func readAll(t *testing.T, r *Reader) []string {
	t.Helper()
	var out []string
	for {
		rec, err := r.Next(nil)
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, string(rec))
	}
}

func TestNext_NullDelimited(t *testing.T) {
	r := NewReader(strings.NewReader("/bin/sh\x00/usr/bin/shutdown\x00"), Null)

	assert.Equal(t, []string{"/bin/sh", "/usr/bin/shutdown"}, readAll(t, r))
}

func TestNext_NewlineDelimited(t *testing.T) {
	r := NewReader(strings.NewReader("/etc/hosts\n/etc/passwd\n"), Newline)

	assert.Equal(t, []string{"/etc/hosts", "/etc/passwd"}, readAll(t, r))
}

func TestNext_RecordSplitAcrossReads(t *testing.T) {
	src := &chunkReader{chunks: []string{"/usr/lo", "cal/bin", "\x00/opt\x00"}}
	r := NewReader(src, Null)

	assert.Equal(t, []string{"/usr/local/bin", "/opt"}, readAll(t, r))
}

func TestNext_OneByteReads(t *testing.T) {
	r := NewReader(iotest.OneByteReader(strings.NewReader("/a\x00/bc\x00")), Null)

	assert.Equal(t, []string{"/a", "/bc"}, readAll(t, r))
}

func TestNext_TrailingDataWithoutDelimiter(t *testing.T) {
	r := NewReader(strings.NewReader("/a\x00/tail"), Null)

	assert.Equal(t, []string{"/a", "/tail"}, readAll(t, r))
}

func TestNext_EmptyStream(t *testing.T) {
	r := NewReader(strings.NewReader(""), Null)

	rec, err := r.Next(nil)
	assert.ErrorIs(t, err, io.EOF)
	assert.Empty(t, rec)
	assert.NoError(t, r.Err())
}

func TestNext_SkipsEmptyRecords(t *testing.T) {
	r := NewReader(strings.NewReader("\x00\x00/a\x00\x00/b\x00\x00"), Null)

	assert.Equal(t, []string{"/a", "/b"}, readAll(t, r))
}

func TestNext_NullModeKeepsNewlines(t *testing.T) {
	r := NewReader(strings.NewReader("/tmp/odd\nname\x00"), Null)

	assert.Equal(t, []string{"/tmp/odd\nname"}, readAll(t, r))
}

func TestNext_OpaqueBytes(t *testing.T) {
	r := NewReader(strings.NewReader("/tmp/\xff\xfe\x00"), Null)

	rec, err := r.Next(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("/tmp/\xff\xfe"), rec)
}

func TestNext_AppendsToDestination(t *testing.T) {
	r := NewReader(strings.NewReader("/x/updatedb.h\x00"), Null)

	rec, err := r.Next([]byte("XXX"))
	require.NoError(t, err)
	assert.Equal(t, "XXX/x/updatedb.h", string(rec))
}

func TestNext_ReadErrorEndsStream(t *testing.T) {
	boom := errors.New("boom")
	src := &chunkReader{chunks: []string{"/a\x00/partial"}, err: boom}
	r := NewReader(src, Null)

	rec, err := r.Next(nil)
	require.NoError(t, err)
	assert.Equal(t, "/a", string(rec))

	rec, err = r.Next(nil)
	require.NoError(t, err)
	assert.Equal(t, "/partial", string(rec))

	_, err = r.Next(nil)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, r.Err(), boom)
}

func TestReady(t *testing.T) {
	t.Run("PartialRecordIsNotReady", func(t *testing.T) {
		src := &chunkReader{chunks: []string{"/usr/lo", "cal\x00"}}
		r := NewReader(src, Null)

		assert.False(t, r.Ready())
		require.NoError(t, r.Fill())
		assert.False(t, r.Ready())
		assert.Equal(t, 7, r.Buffered())
		require.NoError(t, r.Fill())
		assert.True(t, r.Ready())
	})

	t.Run("EndOfStreamIsReady", func(t *testing.T) {
		r := NewReader(strings.NewReader(""), Null)

		assert.False(t, r.Ready())
		assert.ErrorIs(t, r.Fill(), io.EOF)
		assert.True(t, r.Ready())
		assert.True(t, r.Ready(), "end of stream stays ready")
	})

	t.Run("OnlyDelimitersIsNotReady", func(t *testing.T) {
		src := &chunkReader{chunks: []string{"\x00\x00", "/a\x00"}}
		r := NewReader(src, Null)

		require.NoError(t, r.Fill())
		assert.False(t, r.Ready())
	})
}

func TestFill_CompactsConsumedBytes(t *testing.T) {
	src := &chunkReader{chunks: []string{"/a\x00/b", "\x00"}}
	r := NewReaderSize(src, Null, 4)

	require.NoError(t, r.Fill())
	rec, err := r.Next(nil)
	require.NoError(t, err)
	assert.Equal(t, "/a", string(rec))

	require.NoError(t, r.Fill())
	assert.Equal(t, 2, r.Buffered())
	rec, err = r.Next(nil)
	require.NoError(t, err)
	assert.Equal(t, "/b", string(rec))
}
