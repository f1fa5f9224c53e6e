package gaia

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMetadata = `{"task_id": "t-1", "Question": "How many albums?", "Level": 1, "Final answer": "3", "file_name": ""}

{"task_id": "t-2", "Question": "Transcribe the recording.", "Level": 2, "Final answer": "text", "file_name": "audio.mp3"}
`

func TestParseTasks(t *testing.T) {
	tasks, err := ParseTasks(strings.NewReader(sampleMetadata))
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t-1", tasks[0].TaskID)
	assert.Equal(t, 1, tasks[0].Level)
	assert.Equal(t, "3", tasks[0].FinalAnswer)
	assert.Equal(t, "audio.mp3", tasks[1].FileName)
}

func TestParseTasksMalformedLine(t *testing.T) {
	_, err := ParseTasks(strings.NewReader(`{"task_id": "t-1", "Question": "q"}` + "\nnot json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseTasksMissingFields(t *testing.T) {
	_, err := ParseTasks(strings.NewReader(`{"task_id": "", "Question": "q"}`))
	require.Error(t, err)
}

func TestFind(t *testing.T) {
	tasks := []Task{{TaskID: "a", Question: "qa"}, {TaskID: "b", Question: "qb"}}
	got, err := Find(tasks, "b")
	require.NoError(t, err)
	assert.Equal(t, "qb", got.Question)

	_, err = Find(tasks, "missing")
	require.Error(t, err)
}
