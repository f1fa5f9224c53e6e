package gaia

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jd-opensource/oxygent-go/types"
)

const (
	defaultHFBaseURL = "https://huggingface.co"
	datasetRepo      = "gaia-benchmark/GAIA"
	datasetSplitPath = "2023/validation/metadata.jsonl"
	metadataFileName = "metadata.jsonl"
	datasetCacheDir  = "gaia"
	downloadTimeout  = 5 * time.Minute
)

// Dataset resolves the GAIA metadata file: a local cache copy when
// present, otherwise a download from the Hugging Face hub.
type Dataset struct {
	cacheDir string
	hfToken  string
	baseURL  string
	client   *http.Client
	logger   *zap.Logger
}

// DatasetOption configures a Dataset.
type DatasetOption func(*Dataset)

// WithHubBaseURL overrides the Hugging Face hub base URL.
func WithHubBaseURL(base string) DatasetOption {
	return func(d *Dataset) { d.baseURL = strings.TrimRight(base, "/") }
}

// WithHTTPClient overrides the download client.
func WithHTTPClient(client *http.Client) DatasetOption {
	return func(d *Dataset) { d.client = client }
}

// NewDataset creates a dataset resolver rooted at cacheDir.
func NewDataset(cacheDir, hfToken string, logger *zap.Logger, opts ...DatasetOption) *Dataset {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dataset{
		cacheDir: cacheDir,
		hfToken:  hfToken,
		baseURL:  defaultHFBaseURL,
		client:   &http.Client{Timeout: downloadTimeout},
		logger:   logger.With(zap.String("component", "gaia.dataset")),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// MetadataPath is where the cached metadata file lives.
func (d *Dataset) MetadataPath() string {
	return filepath.Join(d.cacheDir, datasetCacheDir, metadataFileName)
}

// Load returns all tasks, downloading the metadata file on first use.
// An explicit path skips cache resolution entirely.
func (d *Dataset) Load(ctx context.Context, explicitPath string) ([]Task, error) {
	path := explicitPath
	if path == "" {
		path = d.MetadataPath()
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := d.download(ctx, path); err != nil {
				return nil, err
			}
		}
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewError(types.ErrDatasetMissing,
				fmt.Sprintf("dataset file %s does not exist", path))
		}
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	tasks, err := ParseTasks(f)
	if err != nil {
		return nil, err
	}
	d.logger.Info("dataset loaded", zap.String("path", path), zap.Int("tasks", len(tasks)))
	return tasks, nil
}

// Find returns the task with the given ID.
func Find(tasks []Task, taskID string) (Task, error) {
	for _, t := range tasks {
		if t.TaskID == taskID {
			return t, nil
		}
	}
	return Task{}, types.NewError(types.ErrTaskNotFound,
		fmt.Sprintf("task %q is not in the dataset", taskID))
}

// download fetches the metadata file from the hub. GAIA is a gated
// dataset, so the request carries the HF token.
func (d *Dataset) download(ctx context.Context, dest string) error {
	if d.hfToken == "" {
		return types.NewError(types.ErrDatasetMissing,
			"dataset is not cached and HF_TOKEN is not set; cannot download")
	}

	url := fmt.Sprintf("%s/datasets/%s/resolve/main/%s", d.baseURL, datasetRepo, datasetSplitPath)
	d.logger.Info("downloading dataset", zap.String("url", url), zap.String("dest", dest))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.hfToken)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download dataset: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return types.NewError(types.ErrDatasetMissing,
			fmt.Sprintf("hub returned status %d for %s", resp.StatusCode, url)).
			WithHTTPStatus(resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	// Write to a temp file first so a partial download never looks cached.
	tmp, err := os.CreateTemp(filepath.Dir(dest), metadataFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), dest)
}
