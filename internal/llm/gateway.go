// Package llm - gateway.go performs AI calls with API-key failover on quota exhaustion.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// DefaultGatewayRetries is the number of calls made before quota failover gives up.
const DefaultGatewayRetries = 3

// GatewayOptions configures a Gateway.
type GatewayOptions struct {
	Retries int
	Tier    ModelTier
}

// Gateway sends prompts to the AI service and switches keys when one runs out of quota.
// It is not safe for concurrent use.
type Gateway struct {
	keys      *KeyState
	newClient ClientFactory
	clients   map[string]Client
	retries   int
	tier      ModelTier
	logger    zerolog.Logger
}

// NewGateway creates a Gateway over keys. Client construction is deferred until a
// key is first used.
func NewGateway(keys []string, factory ClientFactory, opts GatewayOptions, logger zerolog.Logger) (*Gateway, error) {
	state, err := NewKeyState(keys)
	if err != nil {
		return nil, err
	}
	if factory == nil {
		factory = NewClientFactory(nil)
	}
	if opts.Retries <= 0 {
		opts.Retries = DefaultGatewayRetries
	}
	if opts.Tier == "" {
		opts.Tier = TierStandard
	}

	return &Gateway{
		keys:      state,
		newClient: factory,
		clients:   make(map[string]Client),
		retries:   opts.Retries,
		tier:      opts.Tier,
		logger:    logger,
	}, nil
}

// KeyIndex returns the index of the active key.
func (g *Gateway) KeyIndex() int {
	return g.keys.Index()
}

// Generate returns the model's text for prompt. A quota rejection rotates to the
// next key and retries immediately; any other failure is returned at once as a
// *GenerationError. After Retries consecutive quota rejections the returned
// *GenerationError wraps ErrMaxRetriesReached.
func (g *Gateway) Generate(ctx context.Context, prompt string) (string, error) {
	var lastQuota *QuotaError

	for attempt := 1; attempt <= g.retries; attempt++ {
		index := g.keys.Index()
		client, err := g.client(ctx)
		if err != nil {
			return "", &GenerationError{Message: fmt.Sprintf("failed to configure client for key #%d", index+1), Cause: err}
		}

		text, err := client.GenerateContent(ctx, prompt, g.tier)
		if err == nil {
			return text, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", &GenerationError{Message: "request aborted", Cause: ctxErr}
		}
		if !IsQuotaExhausted(err) {
			return "", &GenerationError{Message: "request failed", Cause: err}
		}

		lastQuota = &QuotaError{KeyIndex: index, Cause: err}
		next := g.keys.Rotate()
		g.logger.Warn().
			Int("attempt", attempt).
			Int("key", index+1).
			Int("next_key", next+1).
			Msg("Quota exhausted, switching API key")
	}

	return "", &GenerationError{
		Message: fmt.Sprintf("quota exhausted on %d consecutive attempts", g.retries),
		Cause:   errors.Join(ErrMaxRetriesReached, lastQuota),
	}
}

// client returns the cached client for the active key, creating it on first use.
func (g *Gateway) client(ctx context.Context) (Client, error) {
	key := g.keys.Active()
	if client, ok := g.clients[key]; ok {
		return client, nil
	}

	client, err := g.newClient(ctx, key)
	if err != nil {
		return nil, err
	}
	g.clients[key] = client
	g.logger.Debug().Int("key", g.keys.Index()+1).Str("model", client.GetModel(g.tier)).Msg("Configured AI client")
	return client, nil
}

// Close releases every client the gateway created.
func (g *Gateway) Close() error {
	var errs []error
	for key, client := range g.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(g.clients, key)
	}
	return errors.Join(errs...)
}
