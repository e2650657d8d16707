package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"delica-crawler/internal/model"
)

// CatalogDB provides SQLite-based storage for the extracted parts catalog
// and the durable crawl queue. The same database file is later opened
// read-only by the delica-tui browser, so the catalog schema is a contract,
// not an implementation detail.
//
// Design decision: One database file holds both the catalog and the crawl
// state. The crawl-state rows are the sole record of traversal progress;
// keeping them beside the catalog means a URL can be marked completed in
// the same transaction that persists its records, which is what makes an
// interrupted run resume cleanly.
type CatalogDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CatalogDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended: the TUI may
	// read the file while a crawl is writing it.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the catalog database at the specified path.
func Open(dbPath string, opts Options) (*CatalogDB, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a crawl or migrate first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer; the crawl is single-threaded anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CatalogDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CatalogDB) Close() error {
	return cdb.db.Close()
}

// Path returns the database file path.
func (cdb *CatalogDB) Path() string {
	return cdb.dbPath
}

// createTables creates the schema if it doesn't exist.
// The groups/subgroups/diagrams/parts columns are the contract the
// delica-tui browser reads; replaces_part_number is crawler-only.
func (cdb *CatalogDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS groups (
		id TEXT PRIMARY KEY,
		code TEXT,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS subgroups (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		group_id TEXT NOT NULL REFERENCES groups(id),
		path TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_subgroups_group ON subgroups(group_id);
	CREATE INDEX IF NOT EXISTS idx_subgroups_path ON subgroups(path);

	CREATE TABLE IF NOT EXISTS diagrams (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL REFERENCES groups(id),
		subgroup_id TEXT REFERENCES subgroups(id),
		name TEXT NOT NULL,
		image_url TEXT,
		image_path TEXT,
		source_url TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_diagrams_subgroup ON diagrams(subgroup_id);

	CREATE TABLE IF NOT EXISTS parts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		detail_page_id TEXT,
		part_number TEXT NOT NULL,
		pnc TEXT,
		description TEXT,
		ref_number TEXT,
		quantity INTEGER,
		spec TEXT,
		notes TEXT,
		color TEXT,
		model_date_range TEXT,
		diagram_id TEXT NOT NULL REFERENCES diagrams(id),
		group_id TEXT NOT NULL,
		subgroup_id TEXT,
		replacement_part_number TEXT,
		replaces_part_number TEXT,
		UNIQUE(part_number, diagram_id)
	);

	CREATE INDEX IF NOT EXISTS idx_parts_detail_page ON parts(detail_page_id);
	CREATE INDEX IF NOT EXISTS idx_parts_diagram ON parts(diagram_id);
	CREATE INDEX IF NOT EXISTS idx_parts_subgroup ON parts(subgroup_id);
	CREATE INDEX IF NOT EXISTS idx_parts_number ON parts(part_number);

	CREATE TABLE IF NOT EXISTS crawl_state (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'pending',
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_crawl_state_status ON crawl_state(status);

	CREATE VIRTUAL TABLE IF NOT EXISTS parts_fts USING fts5(
		part_number, description,
		content='parts', content_rowid='id'
	);

	CREATE TRIGGER IF NOT EXISTS parts_fts_insert AFTER INSERT ON parts BEGIN
		INSERT INTO parts_fts(rowid, part_number, description)
		VALUES (new.id, new.part_number, new.description);
	END;

	CREATE TRIGGER IF NOT EXISTS parts_fts_delete AFTER DELETE ON parts BEGIN
		INSERT INTO parts_fts(parts_fts, rowid, part_number, description)
		VALUES ('delete', old.id, old.part_number, old.description);
	END;

	CREATE TRIGGER IF NOT EXISTS parts_fts_update AFTER UPDATE ON parts BEGIN
		INSERT INTO parts_fts(parts_fts, rowid, part_number, description)
		VALUES ('delete', old.id, old.part_number, old.description);
		INSERT INTO parts_fts(rowid, part_number, description)
		VALUES (new.id, new.part_number, new.description);
	END;
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// InsertGroup inserts a group if its slug has not been seen.
// Groups are created once per distinct slug and never mutated, so a repeat
// insert is a no-op rather than an update.
func (cdb *CatalogDB) InsertGroup(ctx context.Context, g *model.Group) error {
	_, err := cdb.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO groups (id, code, name) VALUES (?, ?, ?)`,
		g.ID, g.Code, g.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group %s: %w", g.ID, err)
	}
	return nil
}

// GroupExists reports whether a group row exists for the slug.
func (cdb *CatalogDB) GroupExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := cdb.db.QueryRowContext(ctx, `SELECT 1 FROM groups WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check group %s: %w", id, err)
	}
	return true, nil
}

// UpsertSubgroup inserts or refreshes a subgroup. Re-crawling a listing
// page may carry a corrected heading; identity (id, path, group) is stable.
func (cdb *CatalogDB) UpsertSubgroup(ctx context.Context, s *model.Subgroup) error {
	_, err := cdb.db.ExecContext(ctx, `
		INSERT INTO subgroups (id, name, group_id, path)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, s.ID, s.Name, s.GroupID, s.Path)
	if err != nil {
		return fmt.Errorf("failed to upsert subgroup %s: %w", s.ID, err)
	}
	return nil
}

// UpsertDiagram inserts or refreshes a diagram. image_path is preserved on
// conflict: a re-crawl must not discard an already-downloaded illustration.
func (cdb *CatalogDB) UpsertDiagram(ctx context.Context, d *model.Diagram) error {
	_, err := cdb.db.ExecContext(ctx, `
		INSERT INTO diagrams (id, group_id, subgroup_id, name, image_url, image_path, source_url)
		VALUES (?, ?, ?, ?, ?, NULL, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			image_url = excluded.image_url,
			source_url = excluded.source_url
	`, d.ID, d.GroupID, nullable(d.SubgroupID), d.Name, nullable(d.ImageURL), d.SourceURL)
	if err != nil {
		return fmt.Errorf("failed to upsert diagram %s: %w", d.ID, err)
	}
	return nil
}

// DiagramExists reports whether a diagram row exists.
func (cdb *CatalogDB) DiagramExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := cdb.db.QueryRowContext(ctx, `SELECT 1 FROM diagrams WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check diagram %s: %w", id, err)
	}
	return true, nil
}

// SetDiagramImagePath records the local path of a downloaded illustration.
func (cdb *CatalogDB) SetDiagramImagePath(ctx context.Context, diagramID, imagePath string) error {
	_, err := cdb.db.ExecContext(ctx,
		`UPDATE diagrams SET image_path = ? WHERE id = ?`, imagePath, diagramID)
	if err != nil {
		return fmt.Errorf("failed to set image path for diagram %s: %w", diagramID, err)
	}
	return nil
}

// DiagramsMissingImages returns diagrams that have an image URL but no
// downloaded file yet. The image download step drains this set, which
// makes it idempotent.
func (cdb *CatalogDB) DiagramsMissingImages(ctx context.Context) ([]model.Diagram, error) {
	rows, err := cdb.db.QueryContext(ctx, `
		SELECT id, group_id, subgroup_id, name, image_url, image_path, source_url
		FROM diagrams
		WHERE image_url IS NOT NULL AND image_url != '' AND image_path IS NULL
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagrams missing images: %w", err)
	}
	defer rows.Close()
	return scanDiagrams(rows)
}

// InsertPartIfAbsent inserts a part row unless one already exists for the
// same (part_number, diagram_id). Returns whether a row was inserted.
//
// Design decision: INSERT OR IGNORE against the unique constraint is the
// idempotence primitive both normal traversal and the repair passes rely
// on; a constraint hit is success, not an error.
func (cdb *CatalogDB) InsertPartIfAbsent(ctx context.Context, p *model.Part) (bool, error) {
	result, err := cdb.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO parts (
			detail_page_id, part_number, pnc, description, ref_number,
			quantity, spec, notes, color, model_date_range,
			diagram_id, group_id, subgroup_id,
			replacement_part_number, replaces_part_number
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		nullable(p.DetailPageID), p.PartNumber, p.PNC, p.Description, p.RefNumber,
		p.Quantity, p.Spec, p.Notes, p.Color, p.ModelDateRange,
		p.DiagramID, p.GroupID, nullable(p.SubgroupID),
		p.ReplacementPartNumber, p.ReplacesPartNumber,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert part %s under %s: %w", p.PartNumber, p.DiagramID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return n > 0, nil
}

// PartsByDetailPageID returns all stored part rows extracted from one
// detail page, across every diagram they were attached to.
func (cdb *CatalogDB) PartsByDetailPageID(ctx context.Context, detailPageID string) ([]model.Part, error) {
	rows, err := cdb.db.QueryContext(ctx,
		partSelect+` WHERE detail_page_id = ? ORDER BY id`, detailPageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query parts for detail page %s: %w", detailPageID, err)
	}
	defer rows.Close()
	return scanParts(rows)
}

// PartsWithReplaces returns rows carrying an unresolved supersession
// reference, the input set of the replacement-merge pass.
func (cdb *CatalogDB) PartsWithReplaces(ctx context.Context) ([]model.Part, error) {
	rows, err := cdb.db.QueryContext(ctx,
		partSelect+` WHERE replaces_part_number IS NOT NULL AND replaces_part_number != '' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query parts with replaces references: %w", err)
	}
	defer rows.Close()
	return scanParts(rows)
}

// FindPart returns the part row for (partNumber, diagramID), or nil.
func (cdb *CatalogDB) FindPart(ctx context.Context, partNumber, diagramID string) (*model.Part, error) {
	rows, err := cdb.db.QueryContext(ctx,
		partSelect+` WHERE part_number = ? AND diagram_id = ?`, partNumber, diagramID)
	if err != nil {
		return nil, fmt.Errorf("failed to find part %s under %s: %w", partNumber, diagramID, err)
	}
	defer rows.Close()
	parts, err := scanParts(rows)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, nil
	}
	return &parts[0], nil
}

// SetReplacementPartNumber records the superseding part number on a
// replaced row and clears nothing else.
func (cdb *CatalogDB) SetReplacementPartNumber(ctx context.Context, partID int64, replacement string) error {
	_, err := cdb.db.ExecContext(ctx,
		`UPDATE parts SET replacement_part_number = ? WHERE id = ?`, replacement, partID)
	if err != nil {
		return fmt.Errorf("failed to set replacement on part %d: %w", partID, err)
	}
	return nil
}

// DeletePart removes one part row by id.
func (cdb *CatalogDB) DeletePart(ctx context.Context, partID int64) error {
	_, err := cdb.db.ExecContext(ctx, `DELETE FROM parts WHERE id = ?`, partID)
	if err != nil {
		return fmt.Errorf("failed to delete part %d: %w", partID, err)
	}
	return nil
}

// SharedPaths returns every subgroup path backing more than one diagram,
// the candidate set of the cross-diagram sharing repair pass.
func (cdb *CatalogDB) SharedPaths(ctx context.Context) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx, `
		SELECT s.path
		FROM subgroups s
		JOIN diagrams d ON d.subgroup_id = s.id
		GROUP BY s.path
		HAVING COUNT(DISTINCT d.id) > 1
		ORDER BY s.path
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shared paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// DiagramsForPath returns all diagrams whose subgroups share the path.
func (cdb *CatalogDB) DiagramsForPath(ctx context.Context, path string) ([]model.Diagram, error) {
	rows, err := cdb.db.QueryContext(ctx, `
		SELECT d.id, d.group_id, d.subgroup_id, d.name, d.image_url, d.image_path, d.source_url
		FROM diagrams d
		JOIN subgroups s ON d.subgroup_id = s.id
		WHERE s.path = ?
		ORDER BY d.id
	`, path)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagrams for path %s: %w", path, err)
	}
	defer rows.Close()
	return scanDiagrams(rows)
}

// Stats returns queue and catalog progress counters.
func (cdb *CatalogDB) Stats(ctx context.Context) (*model.CrawlStats, error) {
	stats := &model.CrawlStats{}

	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM crawl_state WHERE status = 'pending'`, &stats.Pending},
		{`SELECT COUNT(*) FROM crawl_state WHERE status = 'completed'`, &stats.Completed},
		{`SELECT COUNT(*) FROM crawl_state WHERE status = 'failed'`, &stats.Failed},
		{`SELECT COUNT(*) FROM groups`, &stats.Groups},
		{`SELECT COUNT(*) FROM subgroups`, &stats.Subgroups},
		{`SELECT COUNT(*) FROM diagrams`, &stats.Diagrams},
		{`SELECT COUNT(*) FROM parts`, &stats.Parts},
	}
	for _, c := range counts {
		if err := cdb.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("failed to count: %w", err)
		}
	}

	rows, err := cdb.db.QueryContext(ctx,
		`SELECT url, status, error FROM crawl_state WHERE status = 'failed' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query failed URLs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cs model.CrawlState
		var status string
		if err := rows.Scan(&cs.URL, &status, &cs.Error); err != nil {
			return nil, fmt.Errorf("failed to scan failed URL: %w", err)
		}
		cs.Status = model.CrawlStatus(status)
		stats.FailedURLs = append(stats.FailedURLs, cs)
	}
	return stats, rows.Err()
}

// partSelect is the shared column list for part queries.
const partSelect = `
	SELECT id, detail_page_id, part_number, pnc, description, ref_number,
	       quantity, spec, notes, color, model_date_range,
	       diagram_id, group_id, subgroup_id,
	       replacement_part_number, replaces_part_number
	FROM parts`

// scanParts reads part rows from a query over partSelect columns.
func scanParts(rows *sql.Rows) ([]model.Part, error) {
	var parts []model.Part
	for rows.Next() {
		var p model.Part
		var detailPageID, subgroupID sql.NullString
		if err := rows.Scan(
			&p.ID, &detailPageID, &p.PartNumber, &p.PNC, &p.Description, &p.RefNumber,
			&p.Quantity, &p.Spec, &p.Notes, &p.Color, &p.ModelDateRange,
			&p.DiagramID, &p.GroupID, &subgroupID,
			&p.ReplacementPartNumber, &p.ReplacesPartNumber,
		); err != nil {
			return nil, fmt.Errorf("failed to scan part: %w", err)
		}
		p.DetailPageID = detailPageID.String
		p.SubgroupID = subgroupID.String
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// scanDiagrams reads diagram rows from a query over the diagram columns.
func scanDiagrams(rows *sql.Rows) ([]model.Diagram, error) {
	var diagrams []model.Diagram
	for rows.Next() {
		var d model.Diagram
		var subgroupID, imageURL, imagePath sql.NullString
		if err := rows.Scan(&d.ID, &d.GroupID, &subgroupID, &d.Name, &imageURL, &imagePath, &d.SourceURL); err != nil {
			return nil, fmt.Errorf("failed to scan diagram: %w", err)
		}
		d.SubgroupID = subgroupID.String
		d.ImageURL = imageURL.String
		d.ImagePath = imagePath.String
		diagrams = append(diagrams, d)
	}
	return diagrams, rows.Err()
}

// nullable maps "" to NULL for TEXT columns the TUI treats as nullable.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
