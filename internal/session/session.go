package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/prefixtree/internal/config"
	"github.com/vk/prefixtree/internal/ctxlog"
	"github.com/vk/prefixtree/internal/fieldsplit"
	"github.com/vk/prefixtree/internal/hierarchy"
	"github.com/vk/prefixtree/internal/node"
	"github.com/vk/prefixtree/internal/nodestore"
	"github.com/vk/prefixtree/internal/prefix"
)

// Resolution is the field-split qualification of a prefix.
type Resolution struct {
	// Qualifier is "0" for the root or "0" followed by the field-split index.
	Qualifier string `json:"qualifier" yaml:"qualifier"`
	// NodeIndex is the registry index of the qualified hierarchy node.
	NodeIndex int `json:"node_index" yaml:"node_index"`
}

// Placement is the result of decoding one prefix.
type Placement struct {
	// ID is the display-tree identifier: qualifier followed by endtag.
	ID        string `json:"id" yaml:"id"`
	Prefix    string `json:"prefix" yaml:"prefix"`
	Qualifier string `json:"qualifier" yaml:"qualifier"`
	NodeIndex int    `json:"node_index" yaml:"node_index"`
	Endtag    string `json:"endtag" yaml:"endtag"`
}

// Session is a decoding context. Its methods are safe to call from several
// goroutines, but calls are executed one at a time.
type Session struct {
	mu sync.Mutex

	store     nodestore.Store
	tokenizer *prefix.Tokenizer
	extractor *fieldsplit.Extractor
	builder   *hierarchy.Builder

	anchor *node.CoarseAnchor
}

// New creates a session over store. A nil tokenizer disables caching.
func New(store nodestore.Store, rules *config.Rules, tokenizer *prefix.Tokenizer) (*Session, error) {
	if store == nil {
		return nil, fmt.Errorf("session requires a node store")
	}
	if rules == nil {
		rules = config.DefaultRules()
	}
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid decoding rules: %w", err)
	}
	return &Session{
		store:     store,
		tokenizer: tokenizer,
		extractor: fieldsplit.NewExtractor(rules.FieldsplitMarker, rules.Keywords),
		builder:   hierarchy.NewBuilder(rules.NestingSegments),
	}, nil
}

// ResolveFieldsplit returns the field-split qualifier of rawPrefix,
// registering a previously unseen field-split name and creating its node.
// Prefixes without a field-split marker resolve to the root.
func (s *Session) ResolveFieldsplit(ctx context.Context, rawPrefix string) (Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, found, err := s.extractor.Extract(rawPrefix)
	if err != nil {
		return Resolution{}, err
	}
	if !found {
		return rootResolution(), nil
	}
	return s.register(ctx, name)
}

// BuildHierarchyTag returns the endtag of rawPrefix within the node at
// nodeIndex. A prefix ending in a multigrid coarse segment records the
// session's coarse anchor; one ending in a numbered multigrid level sets the
// level count of the anchored record. The anchor must have been recorded for
// the same node; a level update against an anchor from another node fails
// with ErrUnresolvedCoarseAnchor.
func (s *Session) BuildHierarchyTag(ctx context.Context, rawPrefix string, nodeIndex int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if nodeIndex < 0 || nodeIndex >= s.store.NodeCount(ctx) {
		return "", &prefix.Error{
			Prefix: rawPrefix,
			Reason: fmt.Sprintf("node index %d is not registered", nodeIndex),
			Err:    prefix.ErrUnknownNodeIndex,
		}
	}

	plan, err := s.plan(rawPrefix, nodeIndex)
	if err != nil {
		return "", err
	}
	if err := s.apply(ctx, plan, nodeIndex); err != nil {
		return "", err
	}
	return plan.Endtag, nil
}

// Decode resolves and builds rawPrefix, then places its record in the node.
// Nothing is registered when any step fails.
func (s *Session) Decode(ctx context.Context, rawPrefix string) (Placement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := ctxlog.FromContext(ctx)

	name, found, err := s.extractor.Extract(rawPrefix)
	if err != nil {
		return Placement{}, err
	}

	res := rootResolution()
	pendingName := ""
	if found {
		if reg, ok := s.store.LookupFieldsplit(ctx, name); ok {
			res = Resolution{Qualifier: node.QualifierFor(reg.FieldsplitIndex), NodeIndex: reg.NodeIndex}
		} else {
			// The node does not exist yet; it will be appended at the end.
			pendingName = name
			res = Resolution{
				Qualifier: node.QualifierFor(len(s.store.FieldsplitNames(ctx))),
				NodeIndex: s.store.NodeCount(ctx),
			}
		}
	}

	plan, err := s.plan(rawPrefix, res.NodeIndex)
	if err != nil {
		return Placement{}, err
	}

	if pendingName != "" {
		registered, err := s.register(ctx, pendingName)
		if err != nil {
			return Placement{}, err
		}
		if registered != res {
			return Placement{}, fmt.Errorf("field split %q registered as %+v, expected %+v", pendingName, registered, res)
		}
	}
	if err := s.apply(ctx, plan, res.NodeIndex); err != nil {
		return Placement{}, err
	}
	if err := s.store.PlaceRecord(ctx, res.NodeIndex, plan.Endtag, rawPrefix); err != nil {
		return Placement{}, err
	}

	logger.Debug("Prefix decoded.", "prefix", rawPrefix, "qualifier", res.Qualifier, "endtag", plan.Endtag)
	return Placement{
		ID:        res.Qualifier + plan.Endtag,
		Prefix:    rawPrefix,
		Qualifier: res.Qualifier,
		NodeIndex: res.NodeIndex,
		Endtag:    plan.Endtag,
	}, nil
}

// Anchor returns the current multigrid coarse anchor.
func (s *Session) Anchor() (node.CoarseAnchor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.anchor == nil {
		return node.CoarseAnchor{}, false
	}
	return *s.anchor, true
}

func rootResolution() Resolution {
	return Resolution{Qualifier: node.RootID, NodeIndex: node.RootIndex}
}

// register must be called with s.mu held.
func (s *Session) register(ctx context.Context, name string) (Resolution, error) {
	reg, err := s.store.RegisterFieldsplit(ctx, name)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to register field split %q: %w", name, err)
	}
	res := Resolution{Qualifier: node.QualifierFor(reg.FieldsplitIndex), NodeIndex: reg.NodeIndex}
	if reg.Created {
		ctxlog.FromContext(ctx).Debug("Registered new field split.", "name", name, "qualifier", res.Qualifier, "node_index", res.NodeIndex)
	}
	return res, nil
}

// plan tokenizes and walks rawPrefix without touching any state. It must be
// called with s.mu held.
func (s *Session) plan(rawPrefix string, nodeIndex int) (hierarchy.Plan, error) {
	segments, err := s.tokenizer.Tokenize(rawPrefix)
	if err != nil {
		return hierarchy.Plan{}, err
	}
	plan, err := s.builder.Build(rawPrefix, segments)
	if err != nil {
		return hierarchy.Plan{}, err
	}

	if plan.UpdatesLevels() {
		switch {
		case s.anchor == nil:
			return hierarchy.Plan{}, &prefix.Error{
				Prefix: rawPrefix,
				Offset: segments[len(segments)-1].Offset,
				Reason: "no multigrid coarse level has been decoded in this session",
				Err:    prefix.ErrUnresolvedCoarseAnchor,
			}
		case s.anchor.NodeIndex != nodeIndex:
			return hierarchy.Plan{}, &prefix.Error{
				Prefix: rawPrefix,
				Offset: segments[len(segments)-1].Offset,
				Reason: fmt.Sprintf("coarse anchor belongs to node %d, not %d", s.anchor.NodeIndex, nodeIndex),
				Err:    prefix.ErrUnresolvedCoarseAnchor,
			}
		}
	}
	return plan, nil
}

// apply must be called with s.mu held.
func (s *Session) apply(ctx context.Context, plan hierarchy.Plan, nodeIndex int) error {
	logger := ctxlog.FromContext(ctx)

	if plan.SetsAnchor() {
		s.anchor = &node.CoarseAnchor{NodeIndex: nodeIndex, Endtag: plan.CoarseEndtag}
		logger.Debug("Multigrid coarse anchor recorded.", "node_index", nodeIndex, "endtag", plan.CoarseEndtag)
	}
	if plan.UpdatesLevels() {
		if err := s.store.SetLevels(ctx, nodeIndex, s.anchor.Endtag, plan.Levels); err != nil {
			return fmt.Errorf("failed to record multigrid levels: %w", err)
		}
		logger.Debug("Multigrid level count updated.", "node_index", nodeIndex, "endtag", s.anchor.Endtag, "levels", plan.Levels)
	}
	return nil
}
