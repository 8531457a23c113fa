package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/routine/pkg/domain"
)

const ext = ".jsonl"

// Store implements ports.TraceStore using the local filesystem.
// Each run is a JSON Lines file with one tick report per line.
type Store struct {
	BasePath string

	mu sync.Mutex
}

// NewStore creates a new Store with the given base path.
// If basePath is empty, it defaults to ".routine/traces".
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".routine", "traces")
	}
	return &Store{BasePath: basePath}
}

func (f *Store) path(runID string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("runID cannot be empty")
	}
	if strings.ContainsAny(runID, `/\`) || runID == "." || runID == ".." {
		return "", fmt.Errorf("invalid runID %q", runID)
	}
	return filepath.Join(f.BasePath, runID+ext), nil
}

// Append writes the reports at the end of the run file.
func (f *Store) Append(ctx context.Context, runID string, reports ...*domain.TickReport) error {
	filePath, err := f.path(runID)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure trace directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	for _, rep := range reports {
		if err := enc.Encode(rep); err != nil {
			file.Close()
			return fmt.Errorf("failed to marshal report: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to write trace file: %w", err)
	}
	return file.Close()
}

// Load reads the whole run file.
func (f *Store) Load(ctx context.Context, runID string) ([]*domain.TickReport, error) {
	filePath, err := f.path(runID)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to read trace file: %w", err)
	}
	defer file.Close()

	var trace []*domain.TickReport
	dec := json.NewDecoder(file)
	for dec.More() {
		var rep domain.TickReport
		if err := dec.Decode(&rep); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report %d: %w", len(trace)+1, err)
		}
		trace = append(trace, &rep)
	}
	return trace, nil
}

// Delete removes the run file.
func (f *Store) Delete(ctx context.Context, runID string) error {
	filePath, err := f.path(runID)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	err = os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete trace file: %w", err)
	}
	return nil
}

// List returns all stored run IDs.
func (f *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list traces: %w", err)
	}

	var runs []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ext {
			runs = append(runs, strings.TrimSuffix(entry.Name(), ext))
		}
	}
	return runs, nil
}
