package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tkarpov/claimscope/internal/errors"
	"github.com/tkarpov/claimscope/internal/model"
)

// GetOrCreateSource returns the source with the given name, creating it lazily
// on first sight. Sources are never deleted.
func GetOrCreateSource(ctx context.Context, q Querier, name, sourceType string) (*model.Source, error) {
	src, err := getSourceByName(ctx, q, name)
	if err != nil {
		return nil, err
	}
	if src != nil {
		return src, nil
	}

	id, err := NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	src = &model.Source{
		ID:         id,
		Name:       name,
		SourceType: sourceType,
		CreatedAt:  time.Now().Unix(),
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO sources (id, name, source_type, homepage_url, created_at) VALUES (?, ?, ?, ?, ?)`,
		src.ID, src.Name, src.SourceType, toNullString(src.HomepageURL), src.CreatedAt,
	)
	if err != nil {
		if IsUniqueConstraintError(err) {
			// Lost a race on the name index; the winner's row is the source.
			return getSourceByName(ctx, q, name)
		}
		return nil, errors.NewInternal(err)
	}
	return src, nil
}

func getSourceByName(ctx context.Context, q Querier, name string) (*model.Source, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, name, source_type, homepage_url, created_at FROM sources WHERE name = ?`, name)
	var src model.Source
	var homepage sql.NullString
	err := row.Scan(&src.ID, &src.Name, &src.SourceType, &homepage, &src.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	src.HomepageURL = homepage.String
	return &src, nil
}

// GetArticleByID retrieves one article or a NOT_FOUND error.
func GetArticleByID(ctx context.Context, q Querier, id string) (*model.Article, error) {
	row := q.QueryRowContext(ctx, articleSelect+` WHERE id = ?`, id)
	art, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("article", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return art, nil
}

// GetArticleByID retrieves one article or a NOT_FOUND error.
func (s *Store) GetArticleByID(ctx context.Context, id string) (*model.Article, error) {
	return GetArticleByID(ctx, s.db, id)
}

// GetSourceByID retrieves one source or a NOT_FOUND error.
func (s *Store) GetSourceByID(ctx context.Context, id string) (*model.Source, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, source_type, homepage_url, created_at FROM sources WHERE id = ?`, id)
	var src model.Source
	var homepage sql.NullString
	err := row.Scan(&src.ID, &src.Name, &src.SourceType, &homepage, &src.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("source", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	src.HomepageURL = homepage.String
	return &src, nil
}

const articleSelect = `SELECT id, source_id, url, title, published_at, cleaned_text, content_hash, created_at FROM articles`

func scanArticle(row *sql.Row) (*model.Article, error) {
	var art model.Article
	var published sql.NullInt64
	err := row.Scan(&art.ID, &art.SourceID, &art.URL, &art.Title, &published, &art.CleanedText, &art.ContentHash, &art.CreatedAt)
	if err != nil {
		return nil, err
	}
	if published.Valid {
		art.PublishedAt = &published.Int64
	}
	return &art, nil
}

func getArticleBy(ctx context.Context, q Querier, column, value string) (*model.Article, error) {
	row := q.QueryRowContext(ctx, fmt.Sprintf("%s WHERE %s = ?", articleSelect, column), value)
	art, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return art, nil
}

// CreateArticleFromRaw stores one normalized feed item, deduplicating by
// content fingerprint. A unique-index race on the URL or fingerprint is
// recovered by re-querying for the winning row and reporting a dedupe hit.
func (s *Store) CreateArticleFromRaw(ctx context.Context, item model.RawItem, cleanedText, contentHash string) (model.ArticleUpsertResult, error) {
	var result model.ArticleUpsertResult

	existing, err := getArticleBy(ctx, s.db, "content_hash", contentHash)
	if err != nil {
		return result, err
	}
	if existing != nil {
		return model.ArticleUpsertResult{ArticleID: existing.ID, Deduped: true}, nil
	}

	err = s.InTx(ctx, func(q Querier) error {
		src, err := GetOrCreateSource(ctx, q, item.SourceName, item.SourceType)
		if err != nil {
			return err
		}
		id, err := NewID()
		if err != nil {
			return errors.NewInternal(err)
		}
		_, err = q.ExecContext(ctx,
			`INSERT INTO articles (id, source_id, url, title, published_at, cleaned_text, content_hash, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, src.ID, item.URL, item.Title, toNullInt64(item.PublishedAt), cleanedText, contentHash, time.Now().Unix(),
		)
		if err != nil {
			return err
		}
		result = model.ArticleUpsertResult{ArticleID: id, Deduped: false}
		return nil
	})
	if err == nil {
		return result, nil
	}
	if !IsUniqueConstraintError(err) {
		return result, err
	}

	// Concurrent insert won either the URL or fingerprint index; treat as dedupe.
	for _, lookup := range [][2]string{{"url", item.URL}, {"content_hash", contentHash}} {
		winner, qErr := getArticleBy(ctx, s.db, lookup[0], lookup[1])
		if qErr != nil {
			return result, qErr
		}
		if winner != nil {
			return model.ArticleUpsertResult{ArticleID: winner.ID, Deduped: true}, nil
		}
	}
	return result, errors.NewConflict("article insert conflicted but no winning row found")
}
