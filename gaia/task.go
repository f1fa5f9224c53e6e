// Package gaia implements the GAIA benchmark harness: dataset management,
// checkpointed suite runs, single-case runs, and result persistence. Runs
// record model responses next to reference answers; they do not grade.
package gaia

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Task is one GAIA benchmark case from metadata.jsonl. Field tags follow
// the upstream dataset's column names.
type Task struct {
	TaskID      string `json:"task_id"`
	Question    string `json:"Question"`
	Level       int    `json:"Level"`
	FinalAnswer string `json:"Final answer"`
	FileName    string `json:"file_name"`
}

// Valid reports whether the task carries the fields a run needs.
func (t Task) Valid() bool {
	return strings.TrimSpace(t.TaskID) != "" && strings.TrimSpace(t.Question) != ""
}

// ParseTasks reads tasks from JSONL. Blank lines are skipped; a malformed
// line is an error naming its position.
func ParseTasks(r io.Reader) ([]Task, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var tasks []Task
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var t Task
		if err := json.Unmarshal([]byte(text), &t); err != nil {
			return nil, fmt.Errorf("metadata line %d: %w", line, err)
		}
		if !t.Valid() {
			return nil, fmt.Errorf("metadata line %d: missing task_id or question", line)
		}
		tasks = append(tasks, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	return tasks, nil
}
