package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"social-insights/internal/common/database"
	"social-insights/internal/common/logger"
	"social-insights/internal/models"
)

// PostgresResultStore writes a run and its ranked rows in one transaction.
type PostgresResultStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresResultStore(db *sql.DB, log logger.Logger) *PostgresResultStore {
	return &PostgresResultStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "result-store"}),
	}
}

// Persist stores result atomically. A second write for the same
// (company, run timestamp) is a no-op.
func (s *PostgresResultStore) Persist(ctx context.Context, result *models.AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	inserted := false
	err = database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO analysis_runs
			(run_id, company_domain, run_at, days_back, include_mentions, status, interaction_count, mention_count, result)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (company_domain, run_at) DO NOTHING`,
			result.RunID, result.CompanyDomain, result.RunAt, result.DaysBack, result.IncludeMentions,
			string(result.Status), result.InteractionCount, result.MentionCount, payload)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil || n == 0 {
			return err
		}
		inserted = true

		for i, k := range result.KOLs {
			if _, err := tx.ExecContext(ctx, `INSERT INTO analysis_kols
				(run_id, rank, username, influence_score, primary_domain, followers)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				result.RunID, i+1, k.Username, k.InfluenceScore, k.PrimaryDomain, k.Followers); err != nil {
				return fmt.Errorf("insert kol %s: %w", k.Username, err)
			}
		}

		if result.Engagement != nil {
			for _, v := range result.Engagement.ViralPosts {
				if _, err := tx.ExecContext(ctx, `INSERT INTO analysis_viral_posts
					(run_id, interaction_id, author, total_engagement, viral_score)
					VALUES ($1, $2, $3, $4, $5)`,
					result.RunID, v.InteractionID, v.Author, v.TotalEngagement, v.ViralScore); err != nil {
					return fmt.Errorf("insert viral post %s: %w", v.InteractionID, err)
				}
			}
		}

		for i, in := range result.Insights {
			if _, err := tx.ExecContext(ctx, `INSERT INTO analysis_insights
				(run_id, position, category, severity, message)
				VALUES ($1, $2, $3, $4, $5)`,
				result.RunID, i, in.Category, in.Severity, in.Message); err != nil {
				return fmt.Errorf("insert insight: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !inserted {
		s.logger.Info("run already persisted", map[string]interface{}{
			"company": result.CompanyDomain,
			"runAt":   result.RunAt,
		})
	}
	return nil
}

// LatestResult loads the most recent stored result for a company.
func (s *PostgresResultStore) LatestResult(ctx context.Context, companyDomain string) (*models.AnalysisResult, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT result FROM analysis_runs
		WHERE company_domain = $1
		ORDER BY run_at DESC
		LIMIT 1`, companyDomain).Scan(&payload)
	if err != nil {
		return nil, err
	}
	var r models.AnalysisResult
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("decode stored result: %w", err)
	}
	return &r, nil
}
