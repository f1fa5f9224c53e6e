package gaia

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointAppendAndResume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.csv")

	cp, err := OpenCheckpoint(path)
	require.NoError(t, err)
	require.NoError(t, cp.Append(Record{
		TaskID:     "t-1",
		Question:   "How many, with \"quotes\" and, commas?",
		TrueAnswer: "3",
		Response:   "3",
		Status:     StatusSuccess,
	}))
	require.NoError(t, cp.Append(Record{TaskID: "t-2", Question: "q2", Status: StatusFailed}))
	require.NoError(t, cp.Close())

	// Reopen: processed IDs must survive the restart.
	cp2, err := OpenCheckpoint(path)
	require.NoError(t, err)
	defer cp2.Close()

	status, ok := cp2.Processed("t-1")
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, status)
	status, ok = cp2.Processed("t-2")
	require.True(t, ok)
	assert.Equal(t, StatusFailed, status)
	_, ok = cp2.Processed("t-3")
	assert.False(t, ok)
	assert.Equal(t, 2, cp2.Len())
}

func TestCheckpointAppendAfterReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.csv")

	cp, err := OpenCheckpoint(path)
	require.NoError(t, err)
	require.NoError(t, cp.Append(Record{TaskID: "t-1", Question: "q", Status: StatusSuccess}))
	require.NoError(t, cp.Close())

	cp, err = OpenCheckpoint(path)
	require.NoError(t, err)
	require.NoError(t, cp.Append(Record{TaskID: "t-2", Question: "q2", Status: StatusSuccess}))
	require.NoError(t, cp.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	// Header written exactly once.
	require.Len(t, rows, 3)
	assert.Equal(t, checkpointHeader, rows[0])
	assert.Equal(t, "t-1", rows[1][0])
	assert.Equal(t, "t-2", rows[2][0])
}
