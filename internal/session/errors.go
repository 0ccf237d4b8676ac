package session

import "github.com/vk/prefixtree/internal/prefix"

// Decoding errors, re-exported for callers that only import session.
var (
	ErrMalformedPrefix        = prefix.ErrMalformedPrefix
	ErrUnresolvedCoarseAnchor = prefix.ErrUnresolvedCoarseAnchor
	ErrUnknownNodeIndex       = prefix.ErrUnknownNodeIndex
)
