package session

import (
	"context"
	"fmt"

	"github.com/vk/prefixtree/internal/config"
	"github.com/vk/prefixtree/internal/ctxlog"
	"github.com/vk/prefixtree/internal/inmemorystore"
	"github.com/vk/prefixtree/internal/prefix"
)

// Factory creates local, in-memory sessions sharing one set of rules and one
// tokenizer cache.
type Factory struct {
	rules     *config.Rules
	tokenizer *prefix.Tokenizer
}

// NewFactory validates rules and returns a Factory. A nil tokenizer disables
// caching.
func NewFactory(rules *config.Rules, tokenizer *prefix.Tokenizer) (*Factory, error) {
	if rules == nil {
		rules = config.DefaultRules()
	}
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid decoding rules: %w", err)
	}
	return &Factory{rules: rules, tokenizer: tokenizer}, nil
}

// NewSession creates a session backed by a fresh in-memory store.
func (f *Factory) NewSession(ctx context.Context) (*Session, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("session.Factory.NewSession called")

	return New(inmemorystore.New(), f.rules, f.tokenizer)
}
