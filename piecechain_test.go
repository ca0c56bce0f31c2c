package piecechain

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChainState(t *testing.T) {
	c := New()
	assert.Equal(t, int64(0), c.Size())
	assert.True(t, c.Empty())
	assert.False(t, c.Dirty())
	assert.Nil(t, c.LastError())
	require.NoError(t, c.Close())
}

func TestBoundaryInserts(t *testing.T) {
	c := New()
	steps := []struct {
		offset int64
		data   string
		want   string
	}{
		{0, "hello", "hello"},
		{0, "<", "<hello"},
		{6, "world", "<helloworld"},
		{6, " ", "<hello world"},
		{12, ">", "<hello world>"},
	}
	for i, s := range steps {
		require.NoErrorf(t, c.Insert(s.offset, []byte(s.data)), "step %d", i)
		checkInvariants(t, c)
		assert.Equalf(t, s.want, text(c), "step %d", i)
	}
	assert.Equal(t, int64(13), c.Size())
	assert.False(t, c.Empty())
	assert.True(t, c.Dirty())
}

func TestDeletes(t *testing.T) {
	c := New()
	require.NoError(t, c.Insert(0, []byte("hello world")))

	require.NoError(t, c.Delete(0, 5))
	checkInvariants(t, c)
	assert.Equal(t, " world", text(c))

	require.NoError(t, c.Delete(1, 5))
	checkInvariants(t, c)
	assert.Equal(t, " ", text(c))

	require.NoError(t, c.Delete(0, 1))
	checkInvariants(t, c)
	assert.Equal(t, "", text(c))
	assert.True(t, c.Empty())
}

func TestInterleavedEdits(t *testing.T) {
	c := New()
	require.NoError(t, c.Insert(0, []byte("hello")))
	require.NoError(t, c.Delete(0, 3))
	require.NoError(t, c.Insert(1, []byte("w")))
	require.NoError(t, c.Insert(3, []byte("rld")))
	require.NoError(t, c.Delete(0, 1))
	require.NoError(t, c.Insert(0, []byte("hello_")))
	require.NoError(t, c.Replace(5, []byte(" ")))
	checkInvariants(t, c)
	assert.Equal(t, "hello world", text(c))
}

func TestArgumentChecks(t *testing.T) {
	c := New()
	require.NoError(t, c.Insert(0, []byte("hello")))

	err := c.Insert(6, []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfRange)

	err = c.Delete(6, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfRange)

	err = c.Replace(6, []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfRange)

	err = c.Insert(-1, []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfRange)

	// Failures leave the chain untouched and populate the last-error slot.
	assert.Equal(t, "hello", text(c))
	require.NotNil(t, c.LastError())
	assert.ErrorIs(t, c.LastError(), ErrOutOfRange)
	assert.NotEmpty(t, c.LastError().Message)
}

func TestReplaceAtEndFailsCleanly(t *testing.T) {
	c := New()
	require.NoError(t, c.Insert(0, []byte("hello")))
	c.Commit()

	err := c.Replace(5, []byte("x"))
	require.Error(t, err)
	assert.Equal(t, "hello", text(c))

	// No half-built change may linger: the next commit has nothing to do.
	c.Commit()
	_, ok := c.Undo()
	require.True(t, ok)
	assert.Equal(t, "", text(c), "only the original insert is undoable")
}

func TestReadByte(t *testing.T) {
	c := New()
	require.NoError(t, c.Insert(0, []byte("abc")))

	for i, want := range []byte("abc") {
		got, err := c.ReadByte(int64(i))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := c.ReadByte(3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = c.ReadByte(-1)
	require.Error(t, err)
}

func TestReadAt(t *testing.T) {
	c := New()
	require.NoError(t, c.Insert(0, []byte("hello")))
	c.Commit()
	require.NoError(t, c.Insert(5, []byte(" world")))

	buf := make([]byte, 5)
	n, err := c.ReadAt(buf, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "lo wo", string(buf))

	// Reading past the end returns the short count and io.EOF.
	n, err = c.ReadAt(buf, 8)
	assert.Equal(t, 3, n)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "rld", string(buf[:n]))

	_, err = c.ReadAt(buf, -1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestEmptyMeansNoBytes(t *testing.T) {
	c := New()
	assert.True(t, c.Empty())

	require.NoError(t, c.Insert(0, []byte("x")))
	assert.False(t, c.Empty())

	require.NoError(t, c.Delete(0, 1))
	assert.True(t, c.Empty(), "empty means size zero, not untouched")
}
