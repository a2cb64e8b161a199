package ops

import (
	"database/sql"
	"io"
	"strings"
	"time"

	"github.com/hpungsan/stf2json/internal/db"
	"github.com/hpungsan/stf2json/internal/errors"
	"github.com/hpungsan/stf2json/internal/stf"
)

// ArchiveInput contains parameters for the Archive operation.
type ArchiveInput struct {
	Source io.Reader // required
	Diag   io.Writer // comment/warning sink, nil discards
	Label  *string   // optional human label for the import
}

// ArchiveOutput contains the result of the Archive operation.
type ArchiveOutput struct {
	ImportID  string `json:"import_id"`
	FileCount int    `json:"file_count"`
	ItemCount int    `json:"item_count"`
}

// Archive converts an STF stream and stores the result in the database as a
// new import. The whole write happens in one transaction; a failed run
// archives nothing.
func Archive(database *sql.DB, input ArchiveInput) (*ArchiveOutput, error) {
	converted, err := Convert(ConvertInput{Source: input.Source, Diag: input.Diag})
	if err != nil {
		return nil, err
	}

	label := cleanOptionalString(input.Label)

	importID, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	tx, err := database.Begin()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	imp := &db.ImportRow{
		ID:        importID,
		Label:     label,
		FileCount: converted.FileCount,
		CreatedAt: time.Now().Unix(),
	}
	if err := db.InsertImport(tx, imp); err != nil {
		return nil, err
	}

	for i, rec := range converted.Files {
		fileID, err := generateULID()
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		row := &db.FileRow{
			ID:        fileID,
			ImportID:  importID,
			Position:  i,
			Timestamp: rec.Timestamp,
		}
		if err := db.InsertFile(tx, row, rec, generateULID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &ArchiveOutput{
		ImportID:  importID,
		FileCount: converted.FileCount,
		ItemCount: converted.ItemCount,
	}, nil
}

// RetrieveInput contains parameters for the Retrieve operation.
type RetrieveInput struct {
	ImportID string // required
}

// RetrieveOutput contains the result of the Retrieve operation.
type RetrieveOutput struct {
	Import *db.ImportRow     `json:"-"`
	Files  []*stf.FileRecord `json:"files"`

	ImportID  string  `json:"import_id"`
	Label     *string `json:"label,omitempty"`
	CreatedAt int64   `json:"created_at"`
}

// Retrieve reconstructs an archived import's file records.
func Retrieve(database *sql.DB, input RetrieveInput) (*RetrieveOutput, error) {
	id := strings.TrimSpace(input.ImportID)
	if id == "" {
		return nil, errors.NewInvalidRequest("import_id is required")
	}

	imp, err := db.GetImport(database, id)
	if err != nil {
		return nil, err
	}

	files, err := db.FilesByImport(database, id)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []*stf.FileRecord{}
	}

	return &RetrieveOutput{
		Import:    imp,
		Files:     files,
		ImportID:  imp.ID,
		Label:     imp.Label,
		CreatedAt: imp.CreatedAt,
	}, nil
}

// ListArchiveInput contains parameters for the ListArchive operation.
type ListArchiveInput struct{}

// ListArchiveOutput contains the result of the ListArchive operation.
type ListArchiveOutput struct {
	Imports []ImportSummary `json:"imports"`
	Total   int             `json:"total"`
}

// ImportSummary is one import header in a listing.
type ImportSummary struct {
	ImportID  string  `json:"import_id"`
	Label     *string `json:"label,omitempty"`
	FileCount int     `json:"file_count"`
	CreatedAt int64   `json:"created_at"`
}

// ListArchive lists archived imports, most recent first.
func ListArchive(database *sql.DB, _ ListArchiveInput) (*ListArchiveOutput, error) {
	rows, err := db.ListImports(database)
	if err != nil {
		return nil, err
	}

	imports := []ImportSummary{}
	for _, r := range rows {
		imports = append(imports, ImportSummary{
			ImportID:  r.ID,
			Label:     r.Label,
			FileCount: r.FileCount,
			CreatedAt: r.CreatedAt,
		})
	}

	return &ListArchiveOutput{Imports: imports, Total: len(imports)}, nil
}

// cleanOptionalString trims an optional string, mapping empty to nil.
func cleanOptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
