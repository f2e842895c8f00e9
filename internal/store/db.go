// Package store implements the transactional record store behind the claim
// pipeline: SQLite schema, query helpers, and the claim persistence manager.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init opens the SQLite database at baseDir/claimscope.db, creating the
// directory and applying migrations as needed. Tests pass t.TempDir().
func Init(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}

	dbPath := filepath.Join(baseDir, "claimscope.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)
	return db, nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := getUserVersion(db)
	if err != nil {
		return err
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS sources (
		  id           TEXT PRIMARY KEY,
		  name         TEXT NOT NULL,
		  source_type  TEXT NOT NULL,
		  homepage_url TEXT,
		  created_at   INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_sources_name ON sources(name);

		CREATE TABLE IF NOT EXISTS articles (
		  id           TEXT PRIMARY KEY,
		  source_id    TEXT NOT NULL REFERENCES sources(id),
		  url          TEXT NOT NULL,
		  title        TEXT NOT NULL,
		  published_at INTEGER,
		  cleaned_text TEXT NOT NULL,
		  content_hash TEXT NOT NULL,
		  created_at   INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_articles_url ON articles(url);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_articles_content_hash ON articles(content_hash);
		CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at);

		CREATE TABLE IF NOT EXISTS event_clusters (
		  id              TEXT PRIMARY KEY,
		  canonical_title TEXT NOT NULL,
		  status          TEXT NOT NULL DEFAULT 'active',
		  created_at      INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_event_clusters_status
		ON event_clusters(status, created_at, id);

		CREATE TABLE IF NOT EXISTS claims (
		  id                 TEXT PRIMARY KEY,
		  article_id         TEXT NOT NULL REFERENCES articles(id),
		  event_cluster_id   TEXT REFERENCES event_clusters(id),
		  claim_text         TEXT NOT NULL,
		  claim_type         TEXT NOT NULL,
		  confidence         REAL,
		  extraction_model   TEXT,
		  extraction_version TEXT,
		  created_at         INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_claims_article_id ON claims(article_id);
		CREATE INDEX IF NOT EXISTS idx_claims_event_cluster_id ON claims(event_cluster_id);

		CREATE TABLE IF NOT EXISTS claim_evidence (
		  id            TEXT PRIMARY KEY,
		  claim_id      TEXT NOT NULL REFERENCES claims(id),
		  article_id    TEXT NOT NULL REFERENCES articles(id),
		  evidence_text TEXT NOT NULL,
		  start_char    INTEGER,
		  end_char      INTEGER,
		  evidence_type TEXT NOT NULL,
		  created_at    INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_claim_evidence_claim_id ON claim_evidence(claim_id);

		CREATE TABLE IF NOT EXISTS claim_relations (
		  id             TEXT PRIMARY KEY,
		  left_claim_id  TEXT NOT NULL REFERENCES claims(id),
		  right_claim_id TEXT NOT NULL REFERENCES claims(id),
		  relation_type  TEXT NOT NULL,
		  score          REAL NOT NULL,
		  created_at     INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_claim_relations_left ON claim_relations(left_claim_id);
		CREATE INDEX IF NOT EXISTS idx_claim_relations_right ON claim_relations(right_claim_id);

		CREATE TABLE IF NOT EXISTS summaries (
		  id                   TEXT PRIMARY KEY,
		  event_cluster_id     TEXT NOT NULL REFERENCES event_clusters(id),
		  agreed_facts_json    TEXT NOT NULL DEFAULT '[]',
		  disputed_claims_json TEXT NOT NULL DEFAULT '[]',
		  unknowns_json        TEXT NOT NULL DEFAULT '[]',
		  confidence_rationale TEXT NOT NULL DEFAULT '',
		  confidence_score     REAL NOT NULL,
		  created_at           INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_summaries_created_at ON summaries(created_at DESC, id DESC);
		CREATE INDEX IF NOT EXISTS idx_summaries_cluster ON summaries(event_cluster_id);

		CREATE TABLE IF NOT EXISTS summary_citations (
		  id           TEXT PRIMARY KEY,
		  summary_id   TEXT NOT NULL REFERENCES summaries(id),
		  section      TEXT NOT NULL,
		  bullet_index INTEGER NOT NULL,
		  claim_id     TEXT NOT NULL REFERENCES claims(id),
		  evidence_id  TEXT REFERENCES claim_evidence(id),
		  created_at   INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_summary_citations_summary ON summary_citations(summary_id);
		CREATE INDEX IF NOT EXISTS idx_summary_citations_claim ON summary_citations(claim_id);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := setUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

func getUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return version, nil
}

func setUserVersion(db *sql.DB, version int) error {
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d;", version)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
