// SPDX-License-Identifier: MPL-2.0

package report

import (
	"github.com/doclog/doclog/pkg/doclog"
	"github.com/doclog/doclog/pkg/docstring"
	"github.com/doclog/doclog/pkg/reconcile"
	"github.com/doclog/doclog/pkg/typecheck"
	"github.com/doclog/doclog/pkg/typeexpr"
)

type (
	// Item is one section entry.
	Item struct {
		Name     string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
		Value    string `json:"value" yaml:"value" toml:"value"`
		Type     string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
		Line     int    `json:"line" yaml:"line" toml:"line"`
		Column   int    `json:"column" yaml:"column" toml:"column"`
		Subitems []Item `json:"subitems,omitempty" yaml:"subitems,omitempty" toml:"subitems,omitempty"`
	}

	// Section is one parsed comment section.
	Section struct {
		Kind  string `json:"kind" yaml:"kind" toml:"kind"`
		Items []Item `json:"items" yaml:"items" toml:"items"`
	}

	// Parse is the outcome of `doclog parse`.
	Parse struct {
		Dialect  string    `json:"dialect" yaml:"dialect" toml:"dialect"`
		Routine  string    `json:"routine,omitempty" yaml:"routine,omitempty" toml:"routine,omitempty"`
		Sections []Section `json:"sections" yaml:"sections" toml:"sections"`
	}

	// TypeNode is a parsed type expression tree.
	TypeNode struct {
		Name    string     `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
		Text    string     `json:"text" yaml:"text" toml:"text"`
		Unknown bool       `json:"unknown,omitempty" yaml:"unknown,omitempty" toml:"unknown,omitempty"`
		Elems   []TypeNode `json:"elems,omitempty" yaml:"elems,omitempty" toml:"elems,omitempty"`
	}

	// Type is the outcome of `doclog types`.
	Type struct {
		Input string   `json:"input" yaml:"input" toml:"input"`
		Depth int      `json:"depth" yaml:"depth" toml:"depth"`
		Tree  TypeNode `json:"tree" yaml:"tree" toml:"tree"`
	}

	// Result mirrors a typecheck.Result tree.
	Result struct {
		Type       string   `json:"type" yaml:"type" toml:"type"`
		Passed     bool     `json:"passed" yaml:"passed" toml:"passed"`
		Expected   string   `json:"expected" yaml:"expected" toml:"expected"`
		Actual     string   `json:"actual" yaml:"actual" toml:"actual"`
		Subresults []Result `json:"subresults,omitempty" yaml:"subresults,omitempty" toml:"subresults,omitempty"`
	}

	// Match is the outcome of `doclog match`.
	Match struct {
		Type   string `json:"type" yaml:"type" toml:"type"`
		Value  string `json:"value" yaml:"value" toml:"value"`
		Passed bool   `json:"passed" yaml:"passed" toml:"passed"`
		Error  string `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
		Result Result `json:"result" yaml:"result" toml:"result"`
	}

	// Binding is the reconciled declaration of one parameter or the return value.
	Binding struct {
		Name        string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
		Effective   string `json:"effective,omitempty" yaml:"effective,omitempty" toml:"effective,omitempty"`
		Comment     string `json:"comment,omitempty" yaml:"comment,omitempty" toml:"comment,omitempty"`
		Signature   string `json:"signature,omitempty" yaml:"signature,omitempty" toml:"signature,omitempty"`
		Source      string `json:"source" yaml:"source" toml:"source"`
		Discrepancy bool   `json:"discrepancy,omitempty" yaml:"discrepancy,omitempty" toml:"discrepancy,omitempty"`
		// Unparsed is set when the comment declaration could not be parsed.
		Unparsed bool   `json:"unparsed,omitempty" yaml:"unparsed,omitempty" toml:"unparsed,omitempty"`
		Error    string `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
		Line     int    `json:"line,omitempty" yaml:"line,omitempty" toml:"line,omitempty"`
	}

	// Function is the check outcome for one documented routine.
	Function struct {
		Name   string    `json:"name" yaml:"name" toml:"name"`
		Line   int       `json:"line" yaml:"line" toml:"line"`
		Params []Binding `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`
		Return *Binding  `json:"return,omitempty" yaml:"return,omitempty" toml:"return,omitempty"`
		// Undocumented lists signature parameters the comment does not mention.
		Undocumented []string `json:"undocumented,omitempty" yaml:"undocumented,omitempty" toml:"undocumented,omitempty"`
		// Unknown lists comment names that are not parameters of the routine.
		Unknown []string `json:"unknown,omitempty" yaml:"unknown,omitempty" toml:"unknown,omitempty"`
	}

	// File is the check outcome for one source file.
	File struct {
		Path      string     `json:"path" yaml:"path" toml:"path"`
		Error     string     `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
		Functions []Function `json:"functions,omitempty" yaml:"functions,omitempty" toml:"functions,omitempty"`
	}

	// Summary counts the findings of a check.
	Summary struct {
		Files         int `json:"files" yaml:"files" toml:"files"`
		Functions     int `json:"functions" yaml:"functions" toml:"functions"`
		Discrepancies int `json:"discrepancies" yaml:"discrepancies" toml:"discrepancies"`
		Unparsed      int `json:"unparsed" yaml:"unparsed" toml:"unparsed"`
		Unmatched     int `json:"unmatched" yaml:"unmatched" toml:"unmatched"`
		Errors        int `json:"errors" yaml:"errors" toml:"errors"`
	}

	// Check is the outcome of `doclog check`.
	Check struct {
		Dialect string  `json:"dialect" yaml:"dialect" toml:"dialect"`
		Summary Summary `json:"summary" yaml:"summary" toml:"summary"`
		Files   []File  `json:"files" yaml:"files" toml:"files"`
	}

	// Call is the outcome of `doclog call`.
	Call struct {
		Routine string    `json:"routine" yaml:"routine" toml:"routine"`
		Passed  bool      `json:"passed" yaml:"passed" toml:"passed"`
		Args    []Outcome `json:"args,omitempty" yaml:"args,omitempty" toml:"args,omitempty"`
		Return  *Outcome  `json:"return,omitempty" yaml:"return,omitempty" toml:"return,omitempty"`
	}

	// Marker is a header or directive opening a section.
	Marker struct {
		Text string `json:"text" yaml:"text" toml:"text"`
		Kind string `json:"kind" yaml:"kind" toml:"kind"`
	}

	// Dialect describes one supported comment dialect.
	Dialect struct {
		Name    string   `json:"name" yaml:"name" toml:"name"`
		Current bool     `json:"current" yaml:"current" toml:"current"`
		Markers []Marker `json:"markers" yaml:"markers" toml:"markers"`
	}

	// Dialects is the outcome of `doclog dialects`.
	Dialects struct {
		Dialects []Dialect `json:"dialects" yaml:"dialects" toml:"dialects"`
	}

	// Outcome is the check of one argument or return value.
	Outcome struct {
		Name     string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
		Type     string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
		Source   string `json:"source" yaml:"source" toml:"source"`
		Passed   bool   `json:"passed" yaml:"passed" toml:"passed"`
		Expected string `json:"expected,omitempty" yaml:"expected,omitempty" toml:"expected,omitempty"`
		Actual   string `json:"actual,omitempty" yaml:"actual,omitempty" toml:"actual,omitempty"`
		Error    string `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
	}
)

// FromSections converts a parsed comment, sections in canonical kind order.
func FromSections(dialect docstring.Dialect, r docstring.Result) Parse {
	out := Parse{Dialect: string(dialect), Sections: []Section{}}
	for _, k := range r.Kinds() {
		s := r[k]
		sec := Section{Kind: string(k), Items: items(s.Items)}
		if s.Origin != nil && out.Routine == "" {
			out.Routine = s.Origin.Routine
		}
		out.Sections = append(out.Sections, sec)
	}
	return out
}

func items(in []docstring.Item) []Item {
	out := make([]Item, 0, len(in))
	for _, it := range in {
		item := Item{
			Name:   it.Name,
			Value:  it.Value,
			Line:   it.Pos.Line,
			Column: it.Pos.Column,
		}
		if it.Type != nil {
			item.Type = it.Type.String()
		}
		if len(it.Subitems) > 0 {
			item.Subitems = items(it.Subitems)
		}
		out = append(out, item)
	}
	return out
}

// FromType converts a parsed type expression.
func FromType(input string, n typeexpr.Node) Type {
	return Type{Input: input, Depth: typeexpr.Depth(n), Tree: typeNode(n)}
}

func typeNode(n typeexpr.Node) TypeNode {
	if typeexpr.IsUnknown(n) {
		raw := ""
		if n != nil {
			raw = n.String()
		}
		return TypeNode{Text: raw, Unknown: true}
	}
	out := TypeNode{Name: typeexpr.Name(n), Text: n.String()}
	if c, ok := n.(*typeexpr.Container); ok {
		for _, e := range c.Elems {
			out.Elems = append(out.Elems, typeNode(e))
		}
	}
	return out
}

// FromResult converts a match result tree. A nil result yields the zero Result.
func FromResult(r *typecheck.Result) Result {
	if r == nil {
		return Result{}
	}
	out := Result{Passed: r.Passed, Expected: r.Expected, Actual: r.Actual}
	if r.Node != nil {
		out.Type = r.Node.String()
	}
	for _, sub := range r.Subresults {
		out.Subresults = append(out.Subresults, FromResult(sub))
	}
	return out
}

// FromBinding converts a reconciled declaration. docLine is the source line
// the comment starts on; when set, Line is absolute for comment declarations.
func FromBinding(b reconcile.Binding, docLine int) Binding {
	out := Binding{
		Name:        b.Name,
		Effective:   text(b.Effective),
		Comment:     text(b.Comment),
		Signature:   text(b.Signature),
		Source:      string(b.Source),
		Discrepancy: b.Discrepancy,
		Unparsed:    unparsed(b.Comment),
	}
	if b.Err != nil {
		out.Error = b.Err.Error()
	}
	if b.Source == reconcile.SourceComment && b.Pos.Line > 0 {
		out.Line = b.Pos.Line
		if docLine > 0 {
			out.Line = docLine + b.Pos.Line - 1
		}
	}
	return out
}

// FromPlan converts the reconciliation of one routine.
func FromPlan(name string, line, docLine int, plan *reconcile.Plan) Function {
	fn := Function{Name: name, Line: line}
	for _, b := range plan.Params {
		fn.Params = append(fn.Params, FromBinding(b, docLine))
	}
	if plan.Return.Source != reconcile.SourceNone {
		ret := FromBinding(plan.Return, docLine)
		fn.Return = &ret
	}
	fn.Undocumented = plan.Unmatched.PassedNotDocumented
	fn.Unknown = plan.Unmatched.DocumentedNotPassed
	return fn
}

// Failed reports whether the function has findings that fail a check.
// Unmatched names are reported but do not fail it.
func (f Function) Failed() bool {
	for _, b := range f.Params {
		if b.failed() {
			return true
		}
	}
	return f.Return != nil && f.Return.failed()
}

func (b Binding) failed() bool {
	return b.Discrepancy || b.Unparsed || b.Error != ""
}

// Add appends a file and updates the summary.
func (c *Check) Add(f File) {
	c.Files = append(c.Files, f)
	c.Summary.Files++
	if f.Error != "" {
		c.Summary.Errors++
	}
	for _, fn := range f.Functions {
		c.Summary.Functions++
		for _, b := range fn.bindings() {
			if b.Discrepancy {
				c.Summary.Discrepancies++
			}
			if b.Unparsed {
				c.Summary.Unparsed++
			}
			if b.Error != "" {
				c.Summary.Errors++
			}
		}
		c.Summary.Unmatched += len(fn.Unknown)
	}
}

// Passed reports whether the check found nothing to fix.
func (c *Check) Passed() bool {
	s := c.Summary
	return s.Discrepancies == 0 && s.Unparsed == 0 && s.Errors == 0
}

func (f Function) bindings() []Binding {
	if f.Return == nil {
		return f.Params
	}
	return append(f.Params[:len(f.Params):len(f.Params)], *f.Return)
}

func text(n typeexpr.Node) string {
	if n == nil {
		return ""
	}
	return n.String()
}

// unparsed reports a declaration that was written but could not be parsed.
func unparsed(n typeexpr.Node) bool {
	u, ok := n.(*typeexpr.Unknown)
	return ok && u.Raw != ""
}

// FromDialects describes every supported dialect, marking current.
func FromDialects(current docstring.Dialect) Dialects {
	var out Dialects
	for _, d := range docstring.Dialects() {
		dialect := Dialect{Name: string(d), Current: d == current, Markers: []Marker{}}
		for _, m := range docstring.Markers(d) {
			dialect.Markers = append(dialect.Markers, Marker{Text: m.Text, Kind: string(m.Kind)})
		}
		out.Dialects = append(out.Dialects, dialect)
	}
	return out
}

// FromCall converts the reports of a checked call. ret may be nil.
func FromCall(routine string, args, ret *doclog.Report) Call {
	out := Call{Routine: routine, Passed: true}
	if args != nil {
		for _, c := range args.Checks {
			out.Args = append(out.Args, outcome(c))
		}
		out.Passed = args.Passed()
	}
	if ret != nil && len(ret.Checks) > 0 {
		o := outcome(ret.Checks[0])
		out.Return = &o
		out.Passed = out.Passed && ret.Passed()
	}
	return out
}

func outcome(c doclog.Check) Outcome {
	o := Outcome{
		Name:   c.Name,
		Type:   text(c.Binding.Effective),
		Source: string(c.Binding.Source),
		Passed: c.Err == nil && c.Result != nil && c.Result.Passed,
	}
	if c.Result != nil {
		o.Expected, o.Actual = c.Result.Expected, c.Result.Actual
	}
	if c.Err != nil {
		o.Error = c.Err.Error()
	}
	return o
}
