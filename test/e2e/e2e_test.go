// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-insights/internal/analytics/engagement"
	"social-insights/internal/analytics/kol"
	"social-insights/internal/analytics/network"
	"social-insights/internal/common/camunda"
	"social-insights/internal/common/config"
	"social-insights/internal/common/database"
	"social-insights/internal/common/logger"
	"social-insights/internal/models"
	"social-insights/internal/orchestrator"
	"social-insights/internal/store"
	ac "social-insights/internal/workers/analytics/analyze-company"
)

// The suite needs the docker-compose stack (Zeebe, Postgres, Elasticsearch,
// Redis) on localhost and runs only when E2E_LIVE=1.
func TestMain(m *testing.M) {
	if os.Getenv("E2E_LIVE") != "1" {
		fmt.Println("skipping e2e suite, set E2E_LIVE=1 to run against local services")
		os.Exit(0)
	}
	os.Exit(m.Run())
}

type stack struct {
	cfg *config.Config
	pg  *database.PostgresClient
	es  *database.ElasticsearchClient
	rdb *database.RedisClient
}

func connect(t *testing.T) *stack {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Database.Elasticsearch.Addresses = []string{"http://localhost:9200"}
	cfg.Database.Elasticsearch.URL = ""

	ctx := context.Background()
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")
	t.Cleanup(func() { pg.Close() })

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err)
	require.NoError(t, es.Ping(ctx), "Elasticsearch ping failed")

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")
	t.Cleanup(func() { rdb.Close() })

	require.NoError(t, store.Migrate(ctx, pg.DB))
	return &stack{cfg: cfg, pg: pg, es: es, rdb: rdb}
}

// ==========================
// Connectivity
// ==========================

func TestZeebeTopology(t *testing.T) {
	client, err := camunda.NewClientWithConfig(context.Background(), &camunda.ClientConfig{
		GatewayAddress:         "localhost:26500",
		UsePlaintextConnection: true,
		RetryConfig:            &camunda.RetryConfig{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 4 * time.Second},
	}, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.HealthCheck(context.Background()))
}

// ==========================
// Full analysis run
// ==========================

func seedConversation(t *testing.T, db *sql.DB, domain string, now time.Time) {
	t.Helper()
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `DELETE FROM social_interactions WHERE company_domain = $1`, domain)
	require.NoError(t, err)

	insert := `INSERT INTO social_interactions
		(id, company_domain, is_mention, author, text, created_at, like_count, retweet_count, reply_count,
		 quote_count, has_media, hashtags, mentioned_users, urls, in_reply_to_user, author_followers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11, $12, $13, $14, $15)`

	ring := []struct{ from, to string }{{"alice", "bob"}, {"bob", "carol"}, {"carol", "alice"}}
	n := 0
	for round := 0; round < 3; round++ {
		for _, e := range ring {
			n++
			_, err := db.ExecContext(ctx, insert,
				fmt.Sprintf("%s-e2e-%d", domain, n), domain, e.from == "carol", e.from,
				fmt.Sprintf("@%s thoughts on the #launch", e.to),
				now.Add(-time.Duration(n)*time.Hour), 40*n, 5*n, n, n%2 == 0,
				pq.Array([]string{"launch"}), pq.Array([]string{e.to}), pq.Array([]string{}),
				e.to, 12000+1000*n,
			)
			require.NoError(t, err)
		}
	}
}

func TestAnalyzeCompany_LiveStack(t *testing.T) {
	s := connect(t)
	log := logger.NewTestLogger(t)
	domain := "e2e-" + time.Now().UTC().Format("20060102150405") + ".example.com"
	seedConversation(t, s.pg.DB, domain, time.Now().UTC())

	interactions := store.NewPostgresInteractionStore(s.pg.DB, log)
	results := store.NewPostgresResultStore(s.pg.DB, log)
	snapshots := store.NewRedisSnapshotStore(s.rdb.Client, time.Hour)

	engine := orchestrator.New(orchestrator.DefaultConfig(), orchestrator.Dependencies{
		Interactions: interactions,
		Authors:      store.NewPostgresAuthorDirectory(s.pg.DB),
		Results:      results,
		Snapshots:    snapshots,
		Reports:      store.NewElasticReportIndexer(s.es.Client, s.cfg.Database.Elasticsearch.ReportsIndex),
		Network:      network.NewRanker(network.DefaultConfig(), network.NativeAnalytics{}, log),
		Engagement:   engagement.NewAnalyzer(engagement.DefaultConfig(), log),
		KOL:          kol.NewIdentifier(kol.DefaultConfig(), log, kol.WithSnapshots(snapshots)),
	}, log)

	handler := ac.NewHandler(ac.LoadConfig(), engine, nil, log)
	output, err := handler.Execute(context.Background(), &ac.Input{
		CompanyDomain:   domain,
		IncludeMentions: true,
		DaysBack:        7,
	})
	require.NoError(t, err)

	// sentiment and entities have no service in this suite
	assert.Equal(t, string(models.StatusPartialFailure), output.Status)
	assert.Equal(t, 9, output.InteractionCount)
	assert.Equal(t, 3, output.MentionCount)
	assert.Len(t, output.DimensionErrors, 2)

	stored, err := results.LatestResult(context.Background(), domain)
	require.NoError(t, err)
	assert.Equal(t, output.RunID, stored.RunID)
	require.NotNil(t, stored.Network)
	assert.Equal(t, 3, stored.Network.NodeCount)

	followers, found, err := snapshots.FollowersAt(context.Background(), "alice", time.Now())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Positive(t, followers)

	res, err := esapi.GetRequest{
		Index:      s.cfg.Database.Elasticsearch.ReportsIndex,
		DocumentID: output.RunID,
	}.Do(context.Background(), s.es.Client)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.False(t, res.IsError(), res.String())
}
