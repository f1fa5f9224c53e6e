package gaia

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"
)

// Checkpoint statuses recorded per task.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusTimeout = "timeout"
)

var checkpointHeader = []string{"task_id", "question", "true_answer", "response", "status", "timestamp"}

// Record is one checkpoint row.
type Record struct {
	TaskID     string
	Question   string
	TrueAnswer string
	Response   string
	Status     string
	Timestamp  time.Time
}

// Checkpoint is an append-only CSV of finished tasks. Every append is
// flushed so a crashed run resumes exactly where it stopped.
type Checkpoint struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *csv.Writer
	done   map[string]string
}

// OpenCheckpoint opens or creates the checkpoint at path and loads the
// already-processed task IDs.
func OpenCheckpoint(path string) (*Checkpoint, error) {
	done := map[string]string{}

	if existing, err := os.Open(path); err == nil {
		rows, err := csv.NewReader(existing).ReadAll()
		existing.Close()
		if err != nil {
			return nil, fmt.Errorf("read checkpoint %s: %w", path, err)
		}
		for i, row := range rows {
			if i == 0 || len(row) < 6 {
				continue
			}
			done[row[0]] = row[4]
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open checkpoint %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint %s for append: %w", path, err)
	}
	c := &Checkpoint{path: path, file: f, writer: csv.NewWriter(f), done: done}

	if len(done) == 0 {
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("stat checkpoint: %w", err)
		}
		if info.Size() == 0 {
			if err := c.writeRow(checkpointHeader); err != nil {
				f.Close()
				return nil, err
			}
		}
	}
	return c, nil
}

// Processed reports whether the task already has a checkpoint row, and
// with which status.
func (c *Checkpoint) Processed(taskID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	status, ok := c.done[taskID]
	return status, ok
}

// Len returns the number of recorded tasks.
func (c *Checkpoint) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.done)
}

// Append records one finished task and flushes to disk.
func (c *Checkpoint) Append(rec Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	row := []string{
		rec.TaskID,
		rec.Question,
		rec.TrueAnswer,
		rec.Response,
		rec.Status,
		rec.Timestamp.UTC().Format(time.RFC3339),
	}
	if err := c.writeRow(row); err != nil {
		return err
	}
	c.done[rec.TaskID] = rec.Status
	return nil
}

func (c *Checkpoint) writeRow(row []string) error {
	if err := c.writer.Write(row); err != nil {
		return fmt.Errorf("write checkpoint row: %w", err)
	}
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return fmt.Errorf("flush checkpoint: %w", err)
	}
	return c.file.Sync()
}

// Close flushes and closes the underlying file.
func (c *Checkpoint) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		c.file.Close()
		return err
	}
	return c.file.Close()
}
