// SPDX-License-Identifier: MPL-2.0

package doclog

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/doclog/doclog/pkg/docstring"
	"github.com/doclog/doclog/pkg/reconcile"
	"github.com/doclog/doclog/pkg/typecheck"
	"github.com/doclog/doclog/pkg/typeexpr"
)

const (
	// ModePassive logs mismatches and lets the call proceed.
	ModePassive Mode = "passive"
	// ModeActive returns the first mismatch as an error.
	ModeActive Mode = "active"
)

type (
	// Mode selects what happens on a type mismatch.
	Mode string

	// Config configures a Checker.
	Config struct {
		Dialect string
		Mode    Mode
		// Logger receives call and mismatch records. Defaults to a stderr
		// logger prefixed "doclog".
		Logger *log.Logger
		// MaxDepth bounds type matching; 0 selects typecheck.DefaultMaxDepth.
		MaxDepth int
	}

	// Checker validates calls against routine comments.
	Checker struct {
		dialect docstring.Dialect
		mode    Mode
		logger  *log.Logger
		matcher typecheck.Matcher
	}

	// Routine describes a callable as seen by signature introspection.
	Routine struct {
		Name string
		File string
		// Line is the line of the definition.
		Line int
		// DocLine is the source line the comment text starts on. Mismatch
		// positions are reported relative to it when set.
		DocLine int
		Doc     string
		Params  []reconcile.Param
		Return  typeexpr.Node
	}

	// Prepared is a routine whose comment has been parsed.
	Prepared struct {
		checker  *Checker
		routine  Routine
		sections docstring.Result
	}

	// Check is the outcome for one argument or for the return value.
	Check struct {
		// Name is empty for the return value.
		Name    string
		Binding reconcile.Binding
		Result  *typecheck.Result
		// Err is set when matching hit the depth bound.
		Err error
	}

	// Report is the outcome of CheckCall or CheckReturn.
	Report struct {
		Routine string
		Plan    *reconcile.Plan
		Checks  []Check
	}
)

// ParseMode resolves a mode name. The empty string selects ModePassive.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModePassive:
		return ModePassive, nil
	case ModeActive:
		return ModeActive, nil
	default:
		return "", fmt.Errorf("%w: %q (expected passive or active)", ErrInvalidMode, s)
	}
}

// New creates a Checker. It fails with a *docstring.DialectError for an
// unsupported dialect.
func New(cfg Config) (*Checker, error) {
	d, err := docstring.ParseDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	mode, err := ParseMode(string(cfg.Mode))
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "doclog"})
	}
	return &Checker{
		dialect: d,
		mode:    mode,
		logger:  logger,
		matcher: typecheck.Matcher{MaxDepth: cfg.MaxDepth},
	}, nil
}

// Dialect returns the configured dialect.
func (c *Checker) Dialect() docstring.Dialect { return c.dialect }

// Mode returns the configured mode.
func (c *Checker) Mode() Mode { return c.mode }

// active reports whether mismatches are returned as errors. A logger that
// discards warnings escalates as well, so mismatches are never silent.
func (c *Checker) active() bool {
	return c.mode == ModeActive || c.logger.GetLevel() >= log.ErrorLevel
}

// Prepare parses the comment of r once for all of its calls.
func (c *Checker) Prepare(r Routine) *Prepared {
	origin := docstring.Origin{Routine: r.Name, File: r.File, Line: r.Line}
	// The dialect was validated by New.
	sections := docstring.ParseWith(r.Doc, mustGrammar(c.dialect), docstring.WithOrigin(origin))
	return &Prepared{checker: c, routine: r, sections: sections}
}

func mustGrammar(d docstring.Dialect) docstring.Grammar {
	g, err := docstring.GrammarFor(string(d))
	if err != nil {
		panic(err)
	}
	return g
}

// Sections returns the parsed comment.
func (p *Prepared) Sections() docstring.Result { return p.sections }

// Routine returns the routine description.
func (p *Prepared) Routine() Routine { return p.routine }

// Plan reconciles the comment with the signature as if every signature
// parameter were passed. It is the static view used when no call is made.
func (p *Prepared) Plan() *reconcile.Plan {
	names := make([]string, 0, len(p.routine.Params))
	for _, param := range p.routine.Params {
		names = append(names, param.Name)
	}
	return p.reconcile(names)
}

// CheckCall binds positional values to parameter names in signature order,
// adds keyword values, and checks each against its effective type. Positional
// values beyond the declared parameters are ignored.
func (p *Prepared) CheckCall(positional []typecheck.Value, keyword map[string]typecheck.Value) (*Report, error) {
	c, r := p.checker, p.routine
	report := &Report{Routine: r.Name}
	if strings.TrimSpace(r.Doc) == "" {
		return report, nil
	}

	args := make(map[string]typecheck.Value, len(positional)+len(keyword))
	var names []string
	for i, v := range positional {
		if i >= len(r.Params) {
			c.logger.Debug("extra positional argument ignored", "routine", r.Name, "index", i)
			continue
		}
		args[r.Params[i].Name] = v
		names = append(names, r.Params[i].Name)
	}
	for _, name := range slices.Sorted(maps.Keys(keyword)) {
		if _, dup := args[name]; !dup {
			names = append(names, name)
		}
		args[name] = keyword[name]
	}

	types := p.sections[docstring.KindTypes]
	if types == nil {
		c.logger.Warn("type checking enabled but no types section could be parsed", "routine", r.Name, "line", r.Line)
	}
	c.logger.Info("routine called", "routine", r.Name, "file", r.File, "line", r.Line)
	c.logger.Debug("routine arguments", "routine", r.Name, "names", names)

	report.Plan = p.reconcile(names)
	p.logPlan(report.Plan)

	var first error
	for _, name := range names {
		b, ok := report.Plan.Param(name)
		if !ok {
			continue
		}
		check := p.check(name, b, args[name])
		report.Checks = append(report.Checks, check)
		if err := p.handle(check); err != nil && first == nil {
			first = err
		}
	}
	return report, first
}

// CheckReturn checks a return value against the effective return type.
func (p *Prepared) CheckReturn(v typecheck.Value) (*Report, error) {
	c, r := p.checker, p.routine
	report := &Report{Routine: r.Name}
	if strings.TrimSpace(r.Doc) == "" {
		return report, nil
	}
	if p.sections[docstring.KindRTypes] == nil {
		c.logger.Warn("type checking enabled but no rtypes section could be parsed", "routine", r.Name, "line", r.Line)
	}

	report.Plan = p.reconcile(nil)
	check := p.check("", report.Plan.Return, v)
	report.Checks = append(report.Checks, check)
	return report, p.handle(check)
}

// Passed reports whether every check passed.
func (r *Report) Passed() bool {
	for _, c := range r.Checks {
		if c.Err != nil || (c.Result != nil && !c.Result.Passed) {
			return false
		}
	}
	return true
}

// Mismatches returns one *MismatchError per failed check.
func (r *Report) Mismatches() []*MismatchError {
	var out []*MismatchError
	for _, c := range r.Checks {
		if c.Result != nil && !c.Result.Passed {
			out = append(out, &MismatchError{
				Routine:   r.Routine,
				Parameter: c.Name,
				Expected:  c.Result.Expected,
				Actual:    c.Result.Actual,
			})
		}
	}
	return out
}

func (p *Prepared) reconcile(callArgs []string) *reconcile.Plan {
	return reconcile.Reconcile(reconcile.Input{
		CommentTypes:     p.sections[docstring.KindTypes],
		CommentReturn:    p.sections[docstring.KindRTypes],
		CommentArguments: p.sections[docstring.KindArguments],
		CommentKeywords:  p.sections[docstring.KindKeywords],
		SignatureParams:  p.routine.Params,
		SignatureReturn:  p.routine.Return,
		CallArguments:    callArgs,
		Matcher:          p.checker.matcher,
	})
}

func (p *Prepared) logPlan(plan *reconcile.Plan) {
	logger, name := p.checker.logger, p.routine.Name
	for _, d := range plan.Discrepancies() {
		logger.Warn("comment and signature types disagree",
			"routine", name,
			"parameter", paramLabel(d.Name),
			"comment", d.Comment.String(),
			"signature", d.Signature.String())
	}
	if u := plan.Unmatched.DocumentedNotPassed; len(u) > 0 {
		logger.Info("documented parameters not passed", "routine", name, "names", u)
	}
	if u := plan.Unmatched.PassedNotDocumented; len(u) > 0 {
		logger.Info("passed parameters not documented", "routine", name, "names", u)
	}
}

func (p *Prepared) check(name string, b reconcile.Binding, v typecheck.Value) Check {
	res, err := p.checker.matcher.Match(b.Effective, v)
	return Check{Name: name, Binding: b, Result: res, Err: err}
}

// handle logs a failed or aborted check and returns it as an error in
// active mode.
func (p *Prepared) handle(check Check) error {
	c, r := p.checker, p.routine
	if check.Err != nil {
		c.logger.Error("type check aborted", "routine", r.Name, "parameter", paramLabel(check.Name), "err", check.Err)
		if c.active() {
			return fmt.Errorf("%s: check %s: %w", r.Name, paramLabel(check.Name), check.Err)
		}
		return nil
	}
	if check.Result.Passed {
		return nil
	}

	mErr := &MismatchError{
		Routine:   r.Name,
		Parameter: check.Name,
		Expected:  check.Result.Expected,
		Actual:    check.Result.Actual,
		Line:      p.declarationLine(check.Binding),
	}
	if c.active() {
		return mErr
	}
	c.logger.Warn("value was not of expected type",
		"routine", r.Name,
		"parameter", paramLabel(check.Name),
		"expected", mErr.Expected,
		"actual", mErr.Actual,
		"line", mErr.Line)
	return nil
}

func (p *Prepared) declarationLine(b reconcile.Binding) int {
	if b.Source != reconcile.SourceComment || p.routine.DocLine == 0 {
		return p.routine.Line
	}
	return p.routine.DocLine + b.Pos.Line - 1
}

func paramLabel(name string) string {
	if name == "" {
		return "<return>"
	}
	return name
}
