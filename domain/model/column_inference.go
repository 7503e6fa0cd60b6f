package model

import (
	"regexp"
	"strconv"
	"strings"
)

// boolLiterals maps the accepted boolean spellings to their values
var boolLiterals = map[string]bool{
	"1": true, "0": false,
	"true": true, "True": true, "TRUE": true,
	"false": false, "False": false, "FALSE": false,
	"y": true, "Y": true, "yes": true, "Yes": true, "YES": true,
	"n": false, "N": false, "no": false, "No": false, "NO": false,
}

var (
	integerPattern = regexp.MustCompile(`^(0|-?[1-9][0-9]*)$`)
	decimalPattern = regexp.MustCompile(`^[+-]?(0|[1-9][0-9]*|[0-9]+\.|[0-9]*\.[0-9]+)([eE][+-]?[0-9]+)?$`)
)

// Inference is the type decision for one column.
type Inference struct {
	Type   ColumnType
	Format string
	IsList bool
}

func isBoolean(v string) bool {
	_, ok := boolLiterals[v]
	return ok
}

func isInteger(v string) bool {
	if !integerPattern.MatchString(v) {
		return false
	}
	_, err := strconv.ParseInt(v, 10, 64)
	return err == nil
}

func isDecimal(v string) bool {
	return decimalPattern.MatchString(v)
}

// ColumnInferrer accumulates evidence for one column one value at a time.
// Every observation can only rule candidate types out, so the result never
// becomes more specific as more values are observed.
type ColumnInferrer struct {
	nonNull   int
	boolOK    bool
	intOK     bool
	decOK     bool
	dates     *datetimeCandidates
	nested    bool
	listOK    bool
	bracketed bool
	elements  *ColumnInferrer
}

// NewColumnInferrer creates an inferrer with every type still eligible
func NewColumnInferrer() *ColumnInferrer {
	return newColumnInferrer(false)
}

func newColumnInferrer(nested bool) *ColumnInferrer {
	ci := &ColumnInferrer{
		boolOK: true,
		intOK:  true,
		decOK:  true,
		dates:  newDatetimeCandidates(),
		nested: nested,
	}
	if !nested {
		ci.listOK = true
		ci.bracketed = true
		ci.elements = newColumnInferrer(true)
	}
	return ci
}

// Observe adds one raw field value. Blank values are nulls and carry no evidence.
func (ci *ColumnInferrer) Observe(value string) {
	v := strings.TrimSpace(value)
	if v == "" {
		return
	}
	ci.nonNull++

	if ci.boolOK && !isBoolean(v) {
		ci.boolOK = false
	}
	if ci.intOK && !isInteger(v) {
		ci.intOK = false
	}
	if ci.decOK && !isDecimal(v) {
		ci.decOK = false
	}
	ci.dates.observe(v)

	if !ci.listOK {
		return
	}
	items, bracketed, ok := SplitList(v)
	if !ok {
		ci.listOK = false
		ci.elements = nil
		return
	}
	if !bracketed {
		ci.bracketed = false
	}
	for _, item := range items {
		ci.elements.Observe(item)
	}
}

// Count returns the number of non-null values observed
func (ci *ColumnInferrer) Count() int {
	return ci.nonNull
}

// Result returns the type decision for the values observed so far.
//
// A column of nulls carries no evidence and is reported as String. Likewise a
// column whose lists are all empty is a String list until an element is seen.
func (ci *ColumnInferrer) Result() Inference {
	if ci.nonNull == 0 {
		return Inference{Type: ColumnTypeString}
	}
	if inf, ok := ci.scalar(); ok {
		return inf
	}
	if ci.listOK && ci.elements != nil {
		if !ci.elements.hasEvidence() {
			return Inference{Type: ColumnTypeString, IsList: ci.bracketed}
		}
		elem, _ := ci.elements.scalar()
		if ci.bracketed || elem.Type != ColumnTypeString {
			elem.IsList = true
			return elem
		}
	}
	return Inference{Type: ColumnTypeString}
}

// hasEvidence reports whether a non-null value was observed, or for a list
// column, a non-null element
func (ci *ColumnInferrer) hasEvidence() bool {
	if ci.nonNull == 0 {
		return false
	}
	if ci.nested {
		return true
	}
	if _, ok := ci.scalar(); ok {
		return true
	}
	return !ci.listOK || ci.elements == nil || ci.elements.hasEvidence()
}

// scalar applies the scalar rules in priority order
func (ci *ColumnInferrer) scalar() (Inference, bool) {
	if ci.nonNull == 0 {
		return Inference{Type: ColumnTypeString}, false
	}
	switch {
	case ci.boolOK:
		return Inference{Type: ColumnTypeBoolean}, true
	case ci.intOK:
		return Inference{Type: ColumnTypeInteger}, true
	case ci.decOK:
		return Inference{Type: ColumnTypeDecimal}, true
	}
	if layout, ok := ci.dates.best(); ok {
		return Inference{Type: layout.Type(), Format: layout.Pattern()}, true
	}
	return Inference{Type: ColumnTypeString}, false
}

// InferColumn infers the type of a column from its sampled raw values
func InferColumn(values []string) Inference {
	ci := NewColumnInferrer()
	for _, v := range values {
		ci.Observe(v)
	}
	return ci.Result()
}

// SplitList splits list notation into its elements. Bracketed lists use
// [a, b] or <a, b>; a bare value containing a comma is also list shaped.
// Elements are trimmed and lose one level of surrounding quotes.
func SplitList(v string) (items []string, bracketed bool, ok bool) {
	v = strings.TrimSpace(v)
	inner := v
	if n := len(v); n >= 2 && ((v[0] == '[' && v[n-1] == ']') || (v[0] == '<' && v[n-1] == '>')) {
		inner = strings.TrimSpace(v[1 : n-1])
		bracketed = true
	} else if !strings.Contains(v, ",") {
		return nil, false, false
	}
	if inner == "" {
		return []string{}, bracketed, true
	}
	parts := strings.Split(inner, ",")
	items = make([]string, len(parts))
	for i, p := range parts {
		items[i] = unquoteElement(strings.TrimSpace(p))
	}
	return items, bracketed, true
}

func unquoteElement(s string) string {
	if n := len(s); n >= 2 && (s[0] == '"' || s[0] == '\'') && s[n-1] == s[0] {
		return s[1 : n-1]
	}
	return s
}
