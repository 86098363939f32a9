// Package file provides file-based persistence for campaigns and segments.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dukex/campaigner/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
// Each record is one JSON file under <root>/<kind>/<id>.json.
type Persistence struct {
	root         string
	campaignRepo *CampaignRepository
	segmentRepo  *SegmentRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		campaignRepo: NewCampaignRepository(cleanRoot),
		segmentRepo:  NewSegmentRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// CampaignRepository returns the campaign repository implementation for file persistence.
func (fp *Persistence) CampaignRepository() persistence.CampaignRepository {
	return fp.campaignRepo
}

// SegmentRepository returns the segment repository implementation for file persistence.
func (fp *Persistence) SegmentRepository() persistence.SegmentRepository {
	return fp.segmentRepo
}

// readRecord loads <dir>/<id>.json into out. found is false when the file does not exist.
func readRecord(dir, id string, out any) (bool, error) {
	filePath := filepath.Clean(path.Join(dir, id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", filePath, err)
	}

	return true, nil
}

func writeRecord(dir, id string, record any) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", id, err)
	}

	return os.WriteFile(path.Join(dir, id+".json"), data, 0600)
}

// recordIDs lists the ids stored in dir. A missing directory holds no records.
func recordIDs(dir string) ([]string, error) {
	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(jsonFiles))
	for _, file := range jsonFiles {
		ids = append(ids, strings.TrimSuffix(file, ".json"))
	}

	return ids, nil
}
