package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"social-insights/internal/common/logger"
	"social-insights/internal/models"

	"github.com/lib/pq"
)

const interactionColumns = `id, author, text, created_at, like_count, retweet_count, reply_count, quote_count,
	has_media, is_quote, hashtags, mentioned_users, urls, in_reply_to_user, retweeted_author,
	author_followers, impressions`

// PostgresInteractionStore reads posts and mentions from social_interactions.
type PostgresInteractionStore struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewPostgresInteractionStore(db *sql.DB, log logger.Logger) *PostgresInteractionStore {
	return &PostgresInteractionStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "interaction-store"}),
		now:    time.Now,
	}
}

// FetchInteractions returns the company's own posts from the last daysBack days, oldest first.
func (s *PostgresInteractionStore) FetchInteractions(ctx context.Context, companyDomain string, daysBack int) ([]models.Interaction, error) {
	return s.fetch(ctx, companyDomain, daysBack, false)
}

// FetchMentions returns third-party posts mentioning the company.
func (s *PostgresInteractionStore) FetchMentions(ctx context.Context, companyDomain string, daysBack int) ([]models.Interaction, error) {
	return s.fetch(ctx, companyDomain, daysBack, true)
}

func (s *PostgresInteractionStore) fetch(ctx context.Context, companyDomain string, daysBack int, mentions bool) ([]models.Interaction, error) {
	query := `SELECT ` + interactionColumns + `
		FROM social_interactions
		WHERE company_domain = $1 AND is_mention = $2 AND created_at >= $3
		ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, companyDomain, mentions, windowStart(s.now(), daysBack))
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	out := make([]models.Interaction, 0)
	for rows.Next() {
		it, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}

	s.logger.Debug("interactions fetched", map[string]interface{}{
		"company":  companyDomain,
		"mentions": mentions,
		"count":    len(out),
	})
	return out, nil
}

func scanInteraction(rows *sql.Rows) (models.Interaction, error) {
	var (
		it          models.Interaction
		replyTo     sql.NullString
		retweeted   sql.NullString
		impressions sql.NullInt64
	)
	err := rows.Scan(
		&it.ID, &it.Author, &it.Text, &it.CreatedAt,
		&it.LikeCount, &it.RetweetCount, &it.ReplyCount, &it.QuoteCount,
		&it.HasMedia, &it.IsQuote,
		pq.Array(&it.Hashtags), pq.Array(&it.MentionedUsers), pq.Array(&it.URLs),
		&replyTo, &retweeted, &it.AuthorFollowers, &impressions,
	)
	if err != nil {
		return it, fmt.Errorf("scan interaction: %w", err)
	}
	if replyTo.Valid {
		it.InReplyToUser = models.StringPtr(replyTo.String)
	}
	if retweeted.Valid {
		it.RetweetedAuthor = models.StringPtr(retweeted.String)
	}
	if impressions.Valid {
		n := int(impressions.Int64)
		it.Impressions = &n
	}
	return it, nil
}
