package definition

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/ssc-prep/mocktest-backend/internal/config"
	"github.com/ssc-prep/mocktest-backend/internal/model"
)

// Source resolves a test identifier to a normalized TestDefinition.
type Source interface {
	Load(ctx context.Context, testID string) (*model.TestDefinition, error)
}

// Loader fetches test definition documents over HTTP and caches the
// normalized result in Redis. A load failure is the one error in the system
// that is surfaced to the caller: without a definition no attempt can start.
type Loader struct {
	baseURL  string
	client   *http.Client
	rdb      *redis.Client
	cacheTTL time.Duration
	log      zerolog.Logger
}

// NewLoader creates a Loader. rdb may be nil, in which case caching is
// disabled and every Load hits the source.
func NewLoader(cfg *config.Config, rdb *redis.Client, log zerolog.Logger) *Loader {
	return &Loader{
		baseURL:  cfg.TestSourceBaseURL,
		client:   &http.Client{Timeout: 15 * time.Second},
		rdb:      rdb,
		cacheTTL: cfg.DefinitionCacheTTL,
		log:      log.With().Str("component", "definition_loader").Logger(),
	}
}

// Load fetches and normalizes the definition for testID, consulting the
// Redis cache first. Cache failures are logged and ignored.
func (l *Loader) Load(ctx context.Context, testID string) (*model.TestDefinition, error) {
	if def := l.fromCache(ctx, testID); def != nil {
		return def, nil
	}

	url := fmt.Sprintf("%s/tests/%s.json", l.baseURL, testID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build definition request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch definition %s: %w", testID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch definition %s: unexpected status %d", testID, resp.StatusCode)
	}

	var raw rawDefinition
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode definition %s: %w", testID, err)
	}

	def := Normalize(testID, &raw)
	l.toCache(ctx, testID, def)
	return def, nil
}

func (l *Loader) fromCache(ctx context.Context, testID string) *model.TestDefinition {
	if l.rdb == nil {
		return nil
	}

	data, err := l.rdb.Get(ctx, config.CacheKey.TestDefinitionKey(testID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			l.log.Warn().Err(err).Str("test_id", testID).Msg("Definition cache read failed")
		}
		return nil
	}

	var def model.TestDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		l.log.Warn().Err(err).Str("test_id", testID).Msg("Corrupt cached definition")
		return nil
	}
	return &def
}

func (l *Loader) toCache(ctx context.Context, testID string, def *model.TestDefinition) {
	if l.rdb == nil {
		return
	}

	data, err := json.Marshal(def)
	if err != nil {
		return
	}
	if err := l.rdb.Set(ctx, config.CacheKey.TestDefinitionKey(testID), data, l.cacheTTL).Err(); err != nil {
		l.log.Warn().Err(err).Str("test_id", testID).Msg("Definition cache write failed")
	}
}
