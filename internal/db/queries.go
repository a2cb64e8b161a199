package db

import (
	"database/sql"
	"encoding/json"

	"github.com/hpungsan/stf2json/internal/errors"
	"github.com/hpungsan/stf2json/internal/stf"
)

// ImportRow is one archived conversion run.
type ImportRow struct {
	ID        string
	Label     *string
	FileCount int
	CreatedAt int64
}

// FileRow is one archived file record within an import.
type FileRow struct {
	ID        string
	ImportID  string
	Position  int
	Timestamp string
}

// Execer is satisfied by both *sql.DB and *sql.Tx, so callers can run the
// insert helpers inside a transaction.
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// InsertImport stores an import header row.
func InsertImport(db Execer, imp *ImportRow) error {
	query := `
		INSERT INTO imports (id, label, file_count, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := db.Exec(query, imp.ID, toNullString(imp.Label), imp.FileCount, imp.CreatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// InsertFile stores a file record and its categories and items.
// Category and item rows carry their structured parts as JSON columns.
func InsertFile(db Execer, f *FileRow, rec *stf.FileRecord, newID func() (string, error)) error {
	query := `
		INSERT INTO files (id, import_id, position, timestamp)
		VALUES (?, ?, ?, ?)
	`

	if _, err := db.Exec(query, f.ID, f.ImportID, f.Position, f.Timestamp); err != nil {
		return errors.NewInternal(err)
	}

	for i, cat := range rec.Categories {
		id, err := newID()
		if err != nil {
			return errors.NewInternal(err)
		}
		if err := insertCategory(db, id, f.ID, i, cat); err != nil {
			return err
		}
	}
	for i, item := range rec.Items {
		id, err := newID()
		if err != nil {
			return errors.NewInternal(err)
		}
		if err := insertItem(db, id, f.ID, i, item); err != nil {
			return err
		}
	}

	return nil
}

func insertCategory(db Execer, id, fileID string, position int, cat *stf.Category) error {
	attrs, err := marshalColumn(cat.Attributes, len(cat.Attributes) > 0)
	if err != nil {
		return err
	}
	conditions, err := marshalColumn(cat.Conditions, cat.Conditions != nil)
	if err != nil {
		return err
	}
	actions, err := marshalColumn(cat.Actions, cat.Actions != nil)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO categories (
			id, file_id, position, name, note,
			attributes_json, conditions_json, actions_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.Exec(query,
		id, fileID, position, cat.Name, toNullString(cat.Note),
		attrs, conditions, actions,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

func insertItem(db Execer, id, fileID string, position int, item *stf.Item) error {
	links, err := marshalColumn(item.Links, len(item.Links) > 0)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO items (id, file_id, position, text, note, links_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = db.Exec(query,
		id, fileID, position, toNullString(item.Text), toNullString(item.Note), links,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// GetImport retrieves an import header by its ULID.
func GetImport(db *sql.DB, id string) (*ImportRow, error) {
	query := `
		SELECT id, label, file_count, created_at
		FROM imports
		WHERE id = ?
	`

	var (
		imp   ImportRow
		label sql.NullString
	)
	err := db.QueryRow(query, id).Scan(&imp.ID, &label, &imp.FileCount, &imp.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	imp.Label = fromNullString(label)

	return &imp, nil
}

// ListImports returns all import headers, most recent first.
func ListImports(db *sql.DB) ([]*ImportRow, error) {
	query := `
		SELECT id, label, file_count, created_at
		FROM imports
		ORDER BY created_at DESC, id DESC
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var imports []*ImportRow
	for rows.Next() {
		var (
			imp   ImportRow
			label sql.NullString
		)
		if err := rows.Scan(&imp.ID, &label, &imp.FileCount, &imp.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		imp.Label = fromNullString(label)
		imports = append(imports, &imp)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return imports, nil
}

// FilesByImport reconstructs the file records of an archived import
// in their original order.
func FilesByImport(db *sql.DB, importID string) ([]*stf.FileRecord, error) {
	query := `
		SELECT id, timestamp
		FROM files
		WHERE import_id = ?
		ORDER BY position
	`

	rows, err := db.Query(query, importID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	type fileRef struct {
		id  string
		rec *stf.FileRecord
	}
	var refs []fileRef
	for rows.Next() {
		var (
			id        string
			timestamp string
		)
		if err := rows.Scan(&id, &timestamp); err != nil {
			return nil, errors.NewInternal(err)
		}
		refs = append(refs, fileRef{id: id, rec: &stf.FileRecord{
			Timestamp:  timestamp,
			Categories: []*stf.Category{},
			Items:      []*stf.Item{},
		}})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	var files []*stf.FileRecord
	for _, ref := range refs {
		if ref.rec.Categories, err = categoriesByFile(db, ref.id); err != nil {
			return nil, err
		}
		if ref.rec.Items, err = itemsByFile(db, ref.id); err != nil {
			return nil, err
		}
		files = append(files, ref.rec)
	}

	return files, nil
}

func categoriesByFile(db *sql.DB, fileID string) ([]*stf.Category, error) {
	query := `
		SELECT name, note, attributes_json, conditions_json, actions_json
		FROM categories
		WHERE file_id = ?
		ORDER BY position
	`

	rows, err := db.Query(query, fileID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	categories := []*stf.Category{}
	for rows.Next() {
		var (
			cat        stf.Category
			note       sql.NullString
			attrs      sql.NullString
			conditions sql.NullString
			actions    sql.NullString
		)
		if err := rows.Scan(&cat.Name, &note, &attrs, &conditions, &actions); err != nil {
			return nil, errors.NewInternal(err)
		}
		cat.Note = fromNullString(note)
		cat.Attributes = []string{}
		if err := unmarshalColumn(attrs, &cat.Attributes); err != nil {
			return nil, err
		}
		if err := unmarshalColumn(conditions, &cat.Conditions); err != nil {
			return nil, err
		}
		if err := unmarshalColumn(actions, &cat.Actions); err != nil {
			return nil, err
		}
		categories = append(categories, &cat)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return categories, nil
}

func itemsByFile(db *sql.DB, fileID string) ([]*stf.Item, error) {
	query := `
		SELECT text, note, links_json
		FROM items
		WHERE file_id = ?
		ORDER BY position
	`

	rows, err := db.Query(query, fileID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	items := []*stf.Item{}
	for rows.Next() {
		var (
			item  stf.Item
			text  sql.NullString
			note  sql.NullString
			links sql.NullString
		)
		if err := rows.Scan(&text, &note, &links); err != nil {
			return nil, errors.NewInternal(err)
		}
		item.Text = fromNullString(text)
		item.Note = fromNullString(note)
		item.Links = []*stf.CategoryLink{}
		if err := unmarshalColumn(links, &item.Links); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return items, nil
}

// marshalColumn serializes v to a nullable JSON column.
// The present flag lets callers store NULL for empty collections.
func marshalColumn(v any, present bool) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, errors.NewInternal(err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalColumn parses a nullable JSON column into dst.
// NULL columns leave dst untouched.
func unmarshalColumn(ns sql.NullString, dst any) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(ns.String), dst); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
