package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/prefixtree/internal/config"
	"github.com/vk/prefixtree/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL rules loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the rules file at path. An empty path yields the default rules.
func (l *Loader) Load(ctx context.Context, path string) (*config.Rules, error) {
	logger := ctxlog.FromContext(ctx)
	rules := config.DefaultRules()

	if path == "" {
		logger.Debug("No rules file configured, using default rules.")
		return rules, nil
	}
	logger.Debug("HCL loader started.", "path", path)

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading rules file %s: %w", path, err)
	}
	return l.parse(ctx, src, path, rules)
}

// parse decodes src over rules. filename is only used in diagnostics.
func (l *Loader) parse(ctx context.Context, src []byte, filename string, rules *config.Rules) (*config.Rules, error) {
	logger := ctxlog.FromContext(ctx)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	switch len(root.Rules) {
	case 0:
		logger.Warn("Rules file has no rules block, using default rules.", "path", filename)
		return rules, nil
	case 1:
	default:
		return nil, fmt.Errorf("rules file %s declares %d rules blocks, expected at most one", filename, len(root.Rules))
	}
	block := root.Rules[0]

	evalCtx, err := newEvalContext(rules)
	if err != nil {
		return nil, fmt.Errorf("failed to build evaluation context: %w", err)
	}

	if block.FieldsplitMarker != nil {
		rules.FieldsplitMarker = *block.FieldsplitMarker
	}
	if keywords, ok, err := decodeStringList(ctx, "keywords", block.Keywords, evalCtx); err != nil {
		return nil, err
	} else if ok {
		rules.Keywords = keywords
	}
	if nesting, ok, err := decodeStringList(ctx, "nesting_segments", block.NestingSegments, evalCtx); err != nil {
		return nil, err
	} else if ok {
		rules.NestingSegments = nesting
	}

	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules in %s: %w", filename, err)
	}

	logger.Debug("HCL loading complete.", "marker", rules.FieldsplitMarker, "keywords", len(rules.Keywords), "nesting_segments", len(rules.NestingSegments))
	return rules, nil
}
