package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/suwa-sh/lineage-to-graph/internal/model"
)

// headerNames are first-row values treated as a header rather than a column.
var headerNames = map[string]bool{
	"column": true,
	"name":   true,
}

// LoadColumns reads a column-list CSV and returns a flat datastore model
// named after the file. Only the first cell of each row is used; a leading
// header row is skipped.
func LoadColumns(path string) (*model.Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are fine, only the first cell counts
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var props []string
	for i, rec := range records {
		if len(rec) == 0 {
			continue
		}
		col := strings.TrimSpace(rec[0])
		if col == "" {
			continue
		}
		if i == 0 && headerNames[strings.ToLower(col)] {
			continue
		}
		props = append(props, col)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &model.Definition{
		Name:  name,
		Kind:  model.KindDatastore,
		Props: props,
	}, nil
}
