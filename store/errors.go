package store

import (
	"fmt"
	"strings"
)

// MissingArtifactError indicates the CSV artifact expected by the
// bootstrapper does not exist.
type MissingArtifactError struct {
	Path string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("artifact not found at %s: run the crawler first or point -csv at an existing file", e.Path)
}

// EmptyDatasetError indicates the artifact carried no data rows.
type EmptyDatasetError struct {
	Path string
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("no data rows in artifact %s: the crawl step may have failed", e.Path)
}

// SchemaMismatchError indicates the artifact header lacks required columns.
type SchemaMismatchError struct {
	Path    string
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("artifact %s is missing required columns: [%s]", e.Path, strings.Join(e.Missing, ", "))
}
