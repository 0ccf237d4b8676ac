package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/prefixtree/internal/config"
	"github.com/vk/prefixtree/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

// newEvalContext exposes the default rules as `defaults` together with a few
// list functions.
func newEvalContext(defaults *config.Rules) (*hcl.EvalContext, error) {
	keywords, err := toCtyList(defaults.Keywords)
	if err != nil {
		return nil, err
	}
	nesting, err := toCtyList(defaults.NestingSegments)
	if err != nil {
		return nil, err
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"defaults": cty.ObjectVal(map[string]cty.Value{
				"fieldsplit_marker": cty.StringVal(defaults.FieldsplitMarker),
				"keywords":          keywords,
				"nesting_segments":  nesting,
			}),
		},
		Functions: map[string]function.Function{
			"concat":      stdlib.ConcatFunc,
			"distinct":    stdlib.DistinctFunc,
			"setsubtract": stdlib.SetSubtractFunc,
		},
	}, nil
}

// toCtyList converts a Go string slice into a cty list of strings.
func toCtyList(values []string) (cty.Value, error) {
	if len(values) == 0 {
		return cty.ListValEmpty(cty.String), nil
	}
	ty, err := gocty.ImpliedType(values)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(values, ty)
}

// decodeStringList evaluates expr and binds it to a string slice. found is
// false when the attribute was omitted.
func decodeStringList(ctx context.Context, name string, expr hcl.Expression, evalCtx *hcl.EvalContext) (values []string, found bool, err error) {
	logger := ctxlog.FromContext(ctx)
	if expr == nil {
		return nil, false, nil
	}

	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, false, fmt.Errorf("failed to evaluate %s: %w", name, diags)
	}
	if val.IsNull() {
		return nil, false, nil
	}
	if !val.IsWhollyKnown() {
		return nil, false, fmt.Errorf("%s must be known when the rules are loaded", name)
	}

	target := cty.List(cty.String)
	converted, err := convert.Convert(val, target)
	if err != nil {
		return nil, false, fmt.Errorf("cannot convert %s from %s to %s: %w", name, val.Type().FriendlyName(), target.FriendlyName(), err)
	}
	if !val.Type().Equals(converted.Type()) {
		logger.Debug("Implicitly converted value type.",
			"attribute", name,
			"from", val.Type().FriendlyName(),
			"to", converted.Type().FriendlyName(),
		)
	}

	if converted.LengthInt() == 0 {
		return []string{}, true, nil
	}
	if err := gocty.FromCtyValue(converted, &values); err != nil {
		return nil, false, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return values, true, nil
}
