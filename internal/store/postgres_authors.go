package store

import (
	"context"
	"database/sql"
	"fmt"

	"social-insights/internal/models"

	"github.com/lib/pq"
)

// PostgresAuthorDirectory loads account profiles from social_authors.
type PostgresAuthorDirectory struct {
	db *sql.DB
}

func NewPostgresAuthorDirectory(db *sql.DB) *PostgresAuthorDirectory {
	return &PostgresAuthorDirectory{db: db}
}

// FetchAuthors returns the known profiles among handles, ordered by username.
// Unknown handles are omitted.
func (d *PostgresAuthorDirectory) FetchAuthors(ctx context.Context, handles []string) ([]models.AuthorProfile, error) {
	if len(handles) == 0 {
		return []models.AuthorProfile{}, nil
	}

	rows, err := d.db.QueryContext(ctx, `SELECT username, display_name, bio, location, website,
		followers, following, total_tweets, verified, account_created_at
		FROM social_authors
		WHERE username = ANY($1)
		ORDER BY username`, pq.Array(handles))
	if err != nil {
		return nil, fmt.Errorf("query authors: %w", err)
	}
	defer rows.Close()

	out := make([]models.AuthorProfile, 0, len(handles))
	for rows.Next() {
		var a models.AuthorProfile
		if err := rows.Scan(&a.Username, &a.DisplayName, &a.Bio, &a.Location, &a.Website,
			&a.Followers, &a.Following, &a.TotalTweets, &a.Verified, &a.AccountCreatedAt); err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate authors: %w", err)
	}
	return out, nil
}
