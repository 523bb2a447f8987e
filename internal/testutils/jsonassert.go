package testutils

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mcuadros/go-defaults"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// PresencePlaceholder in expected JSON matches any actual value.
const PresencePlaceholder = "<<PRESENCE>>"

// JSONAssertOptions controls JSON comparison.
type JSONAssertOptions struct {
	IgnoreExtraKeys bool `default:"true"`
	IgnoredFields   []string
}

// JSONOption tweaks JSONAssertOptions.
type JSONOption func(*JSONAssertOptions)

func WithIgnoreExtraKeys(v bool) JSONOption {
	return func(o *JSONAssertOptions) { o.IgnoreExtraKeys = v }
}

func WithIgnoredFields(fields ...string) JSONOption {
	return func(o *JSONAssertOptions) { o.IgnoredFields = append(o.IgnoredFields, fields...) }
}

// JSONAsserter compares JSON documents structurally.
//
// With IgnoreExtraKeys, objects in actual may carry keys expected does not
// mention. IgnoredFields are dropped from both sides at any depth.
type JSONAsserter struct {
	t       TestingT
	options JSONAssertOptions
}

// NewJSONAsserter creates a JSONAsserter with default options.
func NewJSONAsserter(t TestingT, opts ...JSONOption) *JSONAsserter {
	o := JSONAssertOptions{}
	defaults.SetDefaults(&o)
	for _, opt := range opts {
		opt(&o)
	}
	return &JSONAsserter{t: t, options: o}
}

// MustJSON marshals v or panics.
func MustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// Assert fails the test when actualJSON does not match expectedJSON.
func (ja *JSONAsserter) Assert(actualJSON, expectedJSON string) bool {
	ja.t.Helper()

	if diff := ja.Diff(actualJSON, expectedJSON); diff != "" {
		ja.t.Errorf("JSON mismatch:\n%s", diff)
		return false
	}
	return true
}

// Diff returns a readable diff, or "" when the documents match.
func (ja *JSONAsserter) Diff(actualJSON, expectedJSON string) string {
	var expected, actual any
	if err := json.Unmarshal([]byte(expectedJSON), &expected); err != nil {
		return fmt.Sprintf("invalid expected JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(actualJSON), &actual); err != nil {
		return fmt.Sprintf("invalid actual JSON: %v", err)
	}

	// gojsondiff compares objects only
	expected = map[string]any{"root": expected}
	actual = map[string]any{"root": actual}

	expected = ja.dropIgnored(expected)
	actual = ja.dropIgnored(actual)
	expected = fillPlaceholders(expected, actual)
	if ja.options.IgnoreExtraKeys {
		actual = pruneExtraKeys(actual, expected)
	}

	left, _ := json.Marshal(expected)
	right, _ := json.Marshal(actual)

	diff, err := gojsondiff.New().Compare(left, right)
	if err != nil {
		return fmt.Sprintf("JSON comparison failed: %v", err)
	}
	if !diff.Modified() {
		return ""
	}

	f := formatter.NewAsciiFormatter(expected, formatter.AsciiFormatterConfig{ShowArrayIndex: true})
	out, err := f.Format(diff)
	if err != nil {
		return fmt.Sprintf("JSON diff formatting failed: %v", err)
	}
	return out
}

func (ja *JSONAsserter) dropIgnored(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if !slices.Contains(ja.options.IgnoredFields, k) {
				out[k] = ja.dropIgnored(item)
			}
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = ja.dropIgnored(item)
		}
		return out
	default:
		return v
	}
}

// fillPlaceholders replaces PresencePlaceholder values in expected with the
// value actual holds at the same path, when it holds one.
func fillPlaceholders(expected, actual any) any {
	switch exp := expected.(type) {
	case string:
		if exp == PresencePlaceholder && actual != nil {
			return actual
		}
		return exp
	case map[string]any:
		act, _ := actual.(map[string]any)
		out := make(map[string]any, len(exp))
		for k, item := range exp {
			out[k] = fillPlaceholders(item, act[k])
		}
		return out
	case []any:
		act, _ := actual.([]any)
		out := make([]any, len(exp))
		for i, item := range exp {
			var a any
			if i < len(act) {
				a = act[i]
			}
			out[i] = fillPlaceholders(item, a)
		}
		return out
	default:
		return expected
	}
}

// pruneExtraKeys drops object keys from actual that expected does not mention.
func pruneExtraKeys(actual, expected any) any {
	switch act := actual.(type) {
	case map[string]any:
		exp, ok := expected.(map[string]any)
		if !ok {
			return actual
		}
		out := make(map[string]any, len(exp))
		for k, item := range act {
			if e, found := exp[k]; found {
				out[k] = pruneExtraKeys(item, e)
			}
		}
		return out
	case []any:
		exp, _ := expected.([]any)
		out := make([]any, len(act))
		for i, item := range act {
			var e any
			if i < len(exp) {
				e = exp[i]
			}
			out[i] = pruneExtraKeys(item, e)
		}
		return out
	default:
		return actual
	}
}
