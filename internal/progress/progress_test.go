package progress

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 3, 5, 14, 7, 9, 0, time.Local)

func testLog(t *testing.T) *Log {
	t.Helper()
	l := New(filepath.Join(t.TempDir(), "logs", "code_log.txt"))
	l.now = func() time.Time { return testTime }
	return l
}

func TestAppend_Format(t *testing.T) {
	l := testLog(t)
	require.NoError(t, l.Append(Started))

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Equal(t, "2025-Mar-05-14:07:09 : Preliminaries complete. Initiating ETL process\n", string(data))
}

func TestAppend_KeepsExisting(t *testing.T) {
	l := testLog(t)
	for _, m := range Milestones {
		require.NoError(t, l.Append(m))
	}
	require.NoError(t, l.Append(Started))

	entries, err := l.Read()
	require.NoError(t, err)
	require.Len(t, entries, len(Milestones)+1)
	for i, m := range Milestones {
		assert.Equal(t, m, entries[i].Message)
		assert.True(t, testTime.Equal(entries[i].Timestamp))
	}
	assert.Equal(t, Started, entries[len(Milestones)].Message)
}

func TestMilestones(t *testing.T) {
	assert.Len(t, Milestones, 8)
	assert.Equal(t, Started, Milestones[0])
	assert.Equal(t, ConnectionClosed, Milestones[7])
}

func TestRead_NotFound(t *testing.T) {
	entries, err := testLog(t).Read()
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntry(t *testing.T) {
	e, err := UnmarshalEntry("2025-Mar-05-14:07:09 : Data saved to CSV file")
	require.NoError(t, err)
	assert.Equal(t, SavedFile, e.Message)
	assert.True(t, testTime.Equal(e.Timestamp))

	_, err = UnmarshalEntry("no separator here")
	assert.Error(t, err)

	_, err = UnmarshalEntry("yesterday : msg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing timestamp")
}

func TestMessageWithSeparator(t *testing.T) {
	e := Entry{Timestamp: testTime, Message: "a : b"}
	got, err := UnmarshalEntry(MarshalEntry(e))
	require.NoError(t, err)
	assert.Equal(t, "a : b", got.Message)
}
