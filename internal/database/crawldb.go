package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/baawa1/AI-SEO-Web-Crawler/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl sessions.
// It manages connection pooling and provides methods for persisting and
// reloading crawl results.
//
// Design decision: We use a single database file for all sites rather
// than one file per site. This keeps session listing and cross-site
// history queries trivial and makes backup/restore a single-file copy.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// ErrSessionNotFound is returned when a requested session ID does not exist.
var ErrSessionNotFound = errors.New("crawl session not found")

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "seocrawl.db")

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
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

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// but multiple readers can improve performance
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per crawl session (one seed URL, run to a terminal state)
	CREATE TABLE IF NOT EXISTS crawl_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed_url TEXT NOT NULL,
		site_domain TEXT NOT NULL,
		state TEXT NOT NULL,
		analyzed INTEGER NOT NULL,
		discovered INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		error_message TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_domain ON crawl_sessions(site_domain);
	CREATE INDEX IF NOT EXISTS idx_sessions_created ON crawl_sessions(created_at);

	-- One row per analyzed page; position preserves emission order
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL REFERENCES crawl_sessions(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		status INTEGER NOT NULL,
		crawl_depth INTEGER NOT NULL,
		response_time_ms INTEGER NOT NULL,
		redirect_url TEXT,
		canonical_url TEXT,
		is_noindex INTEGER NOT NULL,
		is_nofollow INTEGER NOT NULL,
		is_blocked_by_robots INTEGER NOT NULL,
		title TEXT,
		title_length INTEGER NOT NULL,
		meta_description TEXT,
		meta_description_length INTEGER NOT NULL,
		h1s TEXT NOT NULL,
		h2s TEXT NOT NULL,
		word_count INTEGER NOT NULL,
		duplicate_content_score REAL NOT NULL,
		missing_alt_text_images INTEGER NOT NULL,
		schema_types TEXT NOT NULL,
		url_parameters TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_session ON pages(session_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);

	-- One row per observed inlink edge; position preserves discovery order
	CREATE TABLE IF NOT EXISTS inlinks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		page_id INTEGER NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		source_url TEXT NOT NULL,
		anchor_text TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_inlinks_page ON inlinks(page_id);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SessionMetadata contains summary information about a stored session.
// This is used for listing crawl history without loading the pages.
type SessionMetadata struct {
	// ID is the unique identifier of the session in the database.
	ID int64

	// SeedURL is the URL the crawl started from.
	SeedURL string

	// SiteDomain is the hostname used for the same-domain filter.
	SiteDomain string

	// State is the terminal state name ("completed" or "failed").
	State string

	// Analyzed is the number of pages in the stored result set.
	Analyzed int

	// CreatedAt is when the session was stored.
	CreatedAt time.Time
}

// SaveSession stores a finished crawl session with its full result set.
// The session, its pages, and their inlinks are written in one
// transaction so a stored session is never partial.
func (cdb *CrawlDB) SaveSession(ctx context.Context, summary *model.Summary, pages []model.CrawledPage) (int64, error) {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx, `
	INSERT INTO crawl_sessions (seed_url, site_domain, state, analyzed, discovered, elapsed_ms, error_message)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		summary.SeedURL,
		summary.SiteDomain,
		summary.State.String(),
		summary.Analyzed,
		summary.Discovered,
		summary.Elapsed.Milliseconds(),
		summary.ErrorMessage,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}

	sessionID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i := range pages {
		if err := insertPage(ctx, tx, sessionID, i, &pages[i]); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit session: %w", err)
	}

	return sessionID, nil
}

// insertPage stores one page and its inlinks under the given session.
func insertPage(ctx context.Context, tx *sql.Tx, sessionID int64, position int, page *model.CrawledPage) error {
	h1s, err := json.Marshal(page.H1s)
	if err != nil {
		return fmt.Errorf("failed to serialize h1s: %w", err)
	}
	h2s, err := json.Marshal(page.H2s)
	if err != nil {
		return fmt.Errorf("failed to serialize h2s: %w", err)
	}
	schemaTypes, err := json.Marshal(page.SchemaTypes)
	if err != nil {
		return fmt.Errorf("failed to serialize schema types: %w", err)
	}
	urlParameters, err := json.Marshal(page.URLParameters)
	if err != nil {
		return fmt.Errorf("failed to serialize url parameters: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
	INSERT INTO pages (
		session_id, position, url, status, crawl_depth, response_time_ms,
		redirect_url, canonical_url, is_noindex, is_nofollow, is_blocked_by_robots,
		title, title_length, meta_description, meta_description_length,
		h1s, h2s, word_count, duplicate_content_score, missing_alt_text_images,
		schema_types, url_parameters
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sessionID,
		position,
		page.URL,
		page.Status,
		page.CrawlDepth,
		page.ResponseTimeMs,
		page.RedirectURL,
		page.CanonicalURL,
		page.IsNoIndex,
		page.IsNoFollow,
		page.IsBlockedByRobotsTxt,
		page.Title,
		page.TitleLength,
		page.MetaDescription,
		page.MetaDescriptionLength,
		string(h1s),
		string(h2s),
		page.WordCount,
		page.DuplicateContentScore,
		page.MissingAltTextImages,
		string(schemaTypes),
		string(urlParameters),
	)
	if err != nil {
		return fmt.Errorf("failed to insert page %s: %w", page.URL, err)
	}

	pageID, err := result.LastInsertId()
	if err != nil {
		return err
	}

	for i, inlink := range page.Inlinks {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO inlinks (page_id, position, source_url, anchor_text)
		VALUES (?, ?, ?, ?)
		`, pageID, i, inlink.SourceURL, inlink.AnchorText); err != nil {
			return fmt.Errorf("failed to insert inlink for %s: %w", page.URL, err)
		}
	}

	return nil
}

// ListSessions returns metadata for all stored sessions, newest first.
func (cdb *CrawlDB) ListSessions(ctx context.Context) ([]SessionMetadata, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT id, seed_url, site_domain, state, analyzed, created_at
	FROM crawl_sessions
	ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var results []SessionMetadata
	for rows.Next() {
		var meta SessionMetadata
		var createdAt string

		if err := rows.Scan(&meta.ID, &meta.SeedURL, &meta.SiteDomain, &meta.State, &meta.Analyzed, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan session metadata: %w", err)
		}

		meta.CreatedAt = parseTimestamp(createdAt)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetSession reloads a stored session: its summary and the full page
// list in emission order, inlinks included.
func (cdb *CrawlDB) GetSession(ctx context.Context, id int64) (*model.Summary, []model.CrawledPage, error) {
	summary, err := cdb.getSummary(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	pages, err := cdb.getPages(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return summary, pages, nil
}

// GetLatestSession reloads the most recent session for a site domain.
func (cdb *CrawlDB) GetLatestSession(ctx context.Context, siteDomain string) (*model.Summary, []model.CrawledPage, error) {
	var id int64
	err := cdb.db.QueryRowContext(ctx, `
	SELECT id FROM crawl_sessions
	WHERE site_domain = ?
	ORDER BY created_at DESC, id DESC
	LIMIT 1
	`, siteDomain).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find latest session: %w", err)
	}

	return cdb.GetSession(ctx, id)
}

// getSummary loads the session row.
func (cdb *CrawlDB) getSummary(ctx context.Context, id int64) (*model.Summary, error) {
	var summary model.Summary
	var state string
	var elapsedMs int64
	var errorMessage sql.NullString

	err := cdb.db.QueryRowContext(ctx, `
	SELECT seed_url, site_domain, state, analyzed, discovered, elapsed_ms, error_message
	FROM crawl_sessions
	WHERE id = ?
	`, id).Scan(
		&summary.SeedURL,
		&summary.SiteDomain,
		&state,
		&summary.Analyzed,
		&summary.Discovered,
		&elapsedMs,
		&errorMessage,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	summary.State = stateFromName(state)
	summary.Elapsed = time.Duration(elapsedMs) * time.Millisecond
	summary.ErrorMessage = errorMessage.String

	return &summary, nil
}

// getPages loads the page rows with their inlinks, in emission order.
func (cdb *CrawlDB) getPages(ctx context.Context, sessionID int64) ([]model.CrawledPage, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT id, url, status, crawl_depth, response_time_ms,
		redirect_url, canonical_url, is_noindex, is_nofollow, is_blocked_by_robots,
		title, title_length, meta_description, meta_description_length,
		h1s, h2s, word_count, duplicate_content_score, missing_alt_text_images,
		schema_types, url_parameters
	FROM pages
	WHERE session_id = ?
	ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var pages []model.CrawledPage
	var pageIDs []int64
	for rows.Next() {
		var page model.CrawledPage
		var pageID int64
		var redirectURL, canonicalURL, title, metaDescription sql.NullString
		var h1s, h2s, schemaTypes, urlParameters string

		if err := rows.Scan(
			&pageID,
			&page.URL,
			&page.Status,
			&page.CrawlDepth,
			&page.ResponseTimeMs,
			&redirectURL,
			&canonicalURL,
			&page.IsNoIndex,
			&page.IsNoFollow,
			&page.IsBlockedByRobotsTxt,
			&title,
			&page.TitleLength,
			&metaDescription,
			&page.MetaDescriptionLength,
			&h1s,
			&h2s,
			&page.WordCount,
			&page.DuplicateContentScore,
			&page.MissingAltTextImages,
			&schemaTypes,
			&urlParameters,
		); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}

		page.RedirectURL = redirectURL.String
		page.CanonicalURL = canonicalURL.String
		page.Title = title.String
		page.MetaDescription = metaDescription.String

		if err := unmarshalList(h1s, &page.H1s); err != nil {
			return nil, fmt.Errorf("failed to parse h1s for %s: %w", page.URL, err)
		}
		if err := unmarshalList(h2s, &page.H2s); err != nil {
			return nil, fmt.Errorf("failed to parse h2s for %s: %w", page.URL, err)
		}
		if err := unmarshalList(schemaTypes, &page.SchemaTypes); err != nil {
			return nil, fmt.Errorf("failed to parse schema types for %s: %w", page.URL, err)
		}
		if err := unmarshalList(urlParameters, &page.URLParameters); err != nil {
			return nil, fmt.Errorf("failed to parse url parameters for %s: %w", page.URL, err)
		}

		pages = append(pages, page)
		pageIDs = append(pageIDs, pageID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, pageID := range pageIDs {
		inlinks, err := cdb.getInlinks(ctx, pageID)
		if err != nil {
			return nil, err
		}
		pages[i].Inlinks = inlinks
	}

	return pages, nil
}

// getInlinks loads one page's inlinks in discovery order.
func (cdb *CrawlDB) getInlinks(ctx context.Context, pageID int64) ([]model.Inlink, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT source_url, anchor_text
	FROM inlinks
	WHERE page_id = ?
	ORDER BY position
	`, pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inlinks: %w", err)
	}
	defer rows.Close()

	var inlinks []model.Inlink
	for rows.Next() {
		var inlink model.Inlink
		if err := rows.Scan(&inlink.SourceURL, &inlink.AnchorText); err != nil {
			return nil, fmt.Errorf("failed to scan inlink: %w", err)
		}
		inlinks = append(inlinks, inlink)
	}

	return inlinks, rows.Err()
}

// unmarshalList decodes a JSON string list column; empty or "null"
// columns yield a nil slice.
func unmarshalList(raw string, dst *[]string) error {
	if raw == "" || raw == "null" {
		*dst = nil
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}

// stateFromName maps a stored state name back to the model constant.
func stateFromName(name string) model.State {
	switch name {
	case "completed":
		return model.StateCompleted
	case "failed":
		return model.StateFailed
	default:
		return model.StateIdle
	}
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}
