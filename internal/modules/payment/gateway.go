package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Gateway creates charges at the payment provider.
type Gateway interface {
	CreateCharge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error)
}

// TokenCache stores the gateway OAuth token between charge jobs. The
// redis implementation is used in production; tests use a fake.
type TokenCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, token string, ttl time.Duration)
}

const tokenCacheKey = "appypay:access_token"

// tokenSafetyMargin is subtracted from the gateway's expires_in so a
// token is never used at the edge of its validity window.
const tokenSafetyMargin = 60 * time.Second

// minTokenTTL floors the cache TTL in case the gateway hands out a
// very short-lived token.
const minTokenTTL = 30 * time.Second

type appyPayGateway struct {
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string
	resource     string
	cache        TokenCache
	http         *http.Client
	logger       *zap.Logger
}

// NewAppyPayGateway builds the AppyPay client. Tokens are acquired via
// the client-credentials grant and cached with a safety margin.
func NewAppyPayGateway(baseURL, tokenURL, clientID, clientSecret, resource string, cache TokenCache, logger *zap.Logger) Gateway {
	return &appyPayGateway{
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		resource:     resource,
		cache:        cache,
		http:         &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

func (g *appyPayGateway) CreateCharge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring gateway token: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("charge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("charge request: unexpected status %d", resp.StatusCode)
	}

	var charge ChargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&charge); err != nil {
		return nil, fmt.Errorf("charge request: decoding response: %w", err)
	}
	if charge.Entity == "" || charge.ReferenceNumber == "" {
		return nil, fmt.Errorf("charge request: response missing entity/reference")
	}
	return &charge, nil
}

// accessToken returns the cached token or fetches a fresh one. The
// cached TTL is expires_in minus the safety margin; a duplicate fetch
// under concurrency is harmless because the token endpoint is
// idempotent.
func (g *appyPayGateway) accessToken(ctx context.Context) (string, error) {
	if token, ok := g.cache.Get(ctx, tokenCacheKey); ok {
		return token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", g.clientID)
	form.Set("client_secret", g.clientSecret)
	if g.resource != "" {
		form.Set("resource", g.resource)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("token request: unexpected status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("token request: decoding response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token request: empty access_token")
	}

	ttl := time.Duration(tr.ExpiresIn)*time.Second - tokenSafetyMargin
	if ttl < minTokenTTL {
		ttl = minTokenTTL
	}
	g.cache.Set(ctx, tokenCacheKey, tr.AccessToken, ttl)
	g.logger.Debug("gateway token refreshed", zap.Duration("ttl", ttl))

	return tr.AccessToken, nil
}

// ── Redis token cache ─────────────────────────────────────────────────────────

type redisTokenCache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewRedisTokenCache creates the redis-backed token cache.
func NewRedisTokenCache(rdb *redis.Client, logger *zap.Logger) TokenCache {
	return &redisTokenCache{rdb: rdb, logger: logger}
}

func (c *redisTokenCache) Get(ctx context.Context, key string) (string, bool) {
	token, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("token cache read failed", zap.Error(err))
		}
		return "", false
	}
	return token, true
}

func (c *redisTokenCache) Set(ctx context.Context, key string, token string, ttl time.Duration) {
	if err := c.rdb.Set(ctx, key, token, ttl).Err(); err != nil {
		c.logger.Warn("token cache write failed", zap.Error(err))
	}
}
