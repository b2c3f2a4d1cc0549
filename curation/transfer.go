// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package curation

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/wildframe/folio/utils/textutils"
)

// NamesFile is where confirmed names are exported to be kept under version
// control.
const NamesFile = "location_names.json"

// CurationData is the exported curation state.
type CurationData struct {
	LocationNames []*LocationName `json:"location_names"`
}

// Export writes every confirmed name to path, sorted by photo id to keep
// diffs small.
func Export(repo LocationNameRepository, path string) (int, error) {
	names, err := repo.AllSorted()
	if err != nil {
		return 0, fmt.Errorf("getting location names: %w", err)
	}

	if names == nil {
		names = []*LocationName{}
	}

	data, err := json.MarshalIndent(CurationData{LocationNames: names}, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshaling curation data: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}

	return len(names), nil
}

// ImportOutcome tells what Import did.
type ImportOutcome int

const (
	// ImportUpToDate nothing to load.
	ImportUpToDate ImportOutcome = iota
	// ImportReloaded the table was replaced with the file contents.
	ImportReloaded
	// ImportSkippedUnsaved the database holds names the file doesn't.
	ImportSkippedUnsaved
)

// Import replaces the confirmed names with the contents of path when the file
// holds more names than the database. It never overwrites local work that
// hasn't been exported yet.
func Import(repo LocationNameRepository, path string) (ImportOutcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ImportUpToDate, fmt.Errorf("could not find names file at %s: %w", path, err)
		}

		return ImportUpToDate, fmt.Errorf("reading names file: %w", err)
	}

	var curationData CurationData
	if err := json.Unmarshal(data, &curationData); err != nil {
		return ImportUpToDate, fmt.Errorf("unmarshaling curation data: %w", err)
	}

	fileCount := len(curationData.LocationNames)

	dbCount, err := repo.Count()
	if err != nil {
		return ImportUpToDate, fmt.Errorf("checking db state: %w", err)
	}

	if dbCount > fileCount {
		log.Printf("⚠️  Local location names (%d) exceed file counts (%d). Unsaved work detected.", dbCount, fileCount)
		log.Println("🛑 Skipping reload to prevent data loss. Run 'curation store' to save local changes first.")

		return ImportSkippedUnsaved, nil
	}

	if fileCount == dbCount {
		log.Println("✅ Location names are up to date. Skipping import.")

		return ImportUpToDate, nil
	}

	log.Printf("ℹ️  New location names available (%d > %d). Reloading...", fileCount, dbCount)

	for i, n := range curationData.LocationNames {
		if err := validateLocationName(n); err != nil {
			return ImportUpToDate, fmt.Errorf("invalid entry #%d: %w", i, err)
		}
	}

	if err := repo.DeleteAll(); err != nil {
		return ImportUpToDate, fmt.Errorf("clearing location names: %w", err)
	}

	if err := repo.BulkInsert(curationData.LocationNames); err != nil {
		return ImportUpToDate, fmt.Errorf("inserting location names: %w", err)
	}

	log.Printf("✅ Imported %s location names from %s\n", textutils.FormatInt(int64(fileCount)), path)

	return ImportReloaded, nil
}
