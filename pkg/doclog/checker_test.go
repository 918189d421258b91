// SPDX-License-Identifier: MPL-2.0

package doclog

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/doclog/doclog/pkg/docstring"
	"github.com/doclog/doclog/pkg/reconcile"
	"github.com/doclog/doclog/pkg/typecheck"
	"github.com/doclog/doclog/pkg/typeexpr"
)

const addDoc = `Function that adds two numbers and returns the result.

    Arguments:
    i -- the first number
    j -- the second number

    Types:
    i -- int
    j -- int

    Returns:
    Result of the addition.

    Return Type:
    int
    `

var (
	vInt = typecheck.Scalar(typecheck.KindInt)
	vStr = typecheck.Scalar(typecheck.KindStr)
)

func newChecker(t *testing.T, mode Mode) (*Checker, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	c, err := New(Config{
		Dialect: "pep257",
		Mode:    mode,
		Logger:  log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c, &buf
}

func addRoutine() Routine {
	return Routine{
		Name:    "add",
		File:    "add.py",
		Line:    10,
		DocLine: 11,
		Doc:     addDoc,
		Params:  []reconcile.Param{{Name: "i"}, {Name: "j"}},
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Dialect: "numpydoc"}); !errors.Is(err, docstring.ErrUnsupportedDialect) {
		t.Errorf("New(numpydoc) error = %v, want ErrUnsupportedDialect", err)
	}
	if _, err := New(Config{Dialect: "rest", Mode: "loud"}); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("New(mode loud) error = %v, want ErrInvalidMode", err)
	}
	c, err := New(Config{Dialect: "REST"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if c.Mode() != ModePassive || c.Dialect() != docstring.DialectReST {
		t.Errorf("defaults = (%s, %s), want (passive, rest)", c.Mode(), c.Dialect())
	}
}

func TestCheckCall_Passive(t *testing.T) {
	t.Parallel()

	c, buf := newChecker(t, ModePassive)
	p := c.Prepare(addRoutine())

	report, err := p.CheckCall([]typecheck.Value{vInt}, map[string]typecheck.Value{"j": vStr})
	if err != nil {
		t.Fatalf("passive CheckCall() must not fail: %v", err)
	}
	if report.Passed() {
		t.Error("j is a str and must fail")
	}
	if len(report.Checks) != 2 || report.Checks[0].Name != "i" || report.Checks[1].Name != "j" {
		t.Fatalf("Checks = %+v, want i then j", report.Checks)
	}
	mismatches := report.Mismatches()
	if len(mismatches) != 1 || mismatches[0].Parameter != "j" || !errors.Is(mismatches[0], ErrTypeMismatch) {
		t.Errorf("Mismatches() = %+v, want one for j", mismatches)
	}

	out := buf.String()
	for _, want := range []string{"routine called", "value was not of expected type", "parameter=j", "expected=int", "actual=str"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestCheckCall_Active(t *testing.T) {
	t.Parallel()

	c, _ := newChecker(t, ModeActive)
	p := c.Prepare(addRoutine())

	if _, err := p.CheckCall([]typecheck.Value{vInt, vInt}, nil); err != nil {
		t.Fatalf("matching call failed: %v", err)
	}

	_, err := p.CheckCall([]typecheck.Value{vStr, vInt}, nil)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("error = %v, want ErrTypeMismatch", err)
	}
	var mErr *MismatchError
	if !errors.As(err, &mErr) {
		t.Fatalf("error should be *MismatchError, got %T", err)
	}
	if mErr.Parameter != "i" || mErr.Expected != "int" || mErr.Actual != "str" {
		t.Errorf("MismatchError = %+v", mErr)
	}
	// "i -- int" is on line 8 of the comment, which starts on line 11.
	if mErr.Line != 18 {
		t.Errorf("Line = %d, want 18", mErr.Line)
	}
}

func TestCheckReturn(t *testing.T) {
	t.Parallel()

	c, _ := newChecker(t, ModeActive)
	p := c.Prepare(addRoutine())

	if _, err := p.CheckReturn(vInt); err != nil {
		t.Errorf("int return failed: %v", err)
	}
	_, err := p.CheckReturn(typecheck.List(vInt))
	var mErr *MismatchError
	if !errors.As(err, &mErr) || mErr.Parameter != "" || mErr.Actual != "list" {
		t.Errorf("error = %v, want return mismatch with actual list", err)
	}
	if !strings.Contains(err.Error(), "return value") {
		t.Errorf("message %q should mention the return value", err.Error())
	}
}

func TestCheckCall_MissingSectionsAndDiscrepancy(t *testing.T) {
	t.Parallel()

	c, buf := newChecker(t, ModePassive)
	p := c.Prepare(Routine{
		Name:   "scale",
		Doc:    "Scales.\n\nArguments:\nx -- factor\n",
		Params: []reconcile.Param{{Name: "x", Type: typeexpr.Parse("float")}},
		Return: typeexpr.Parse("float"),
	})

	report, err := p.CheckCall([]typecheck.Value{vInt}, map[string]typecheck.Value{"y": vInt})
	if err != nil {
		t.Fatalf("CheckCall() error: %v", err)
	}
	if report.Checks[0].Binding.Source != reconcile.SourceSignature || report.Passed() {
		t.Errorf("x should be checked against the signature type and fail: %+v", report.Checks)
	}
	if _, err := p.CheckReturn(typecheck.Scalar(typecheck.KindFloat)); err != nil {
		t.Errorf("CheckReturn() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"no types section", "no rtypes section", "passed parameters not documented"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}

	c, buf = newChecker(t, ModePassive)
	p = c.Prepare(Routine{
		Name:   "f",
		Doc:    "F.\n\nTypes:\nx -- str\n",
		Params: []reconcile.Param{{Name: "x", Type: typeexpr.Parse("int")}},
	})
	if _, err := p.CheckCall([]typecheck.Value{vStr}, nil); err != nil {
		t.Fatalf("CheckCall() error: %v", err)
	}
	if !strings.Contains(buf.String(), "comment and signature types disagree") {
		t.Errorf("discrepancy not logged:\n%s", buf.String())
	}
}

func TestCheckCall_NoComment(t *testing.T) {
	t.Parallel()

	c, buf := newChecker(t, ModeActive)
	report, err := c.Prepare(Routine{Name: "bare"}).CheckCall([]typecheck.Value{vStr}, nil)
	if err != nil || len(report.Checks) != 0 {
		t.Errorf("a routine without a comment is not checked: %+v, %v", report, err)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be logged, got:\n%s", buf.String())
	}
}

func TestActive_EscalatesWithErrorLevelLogger(t *testing.T) {
	t.Parallel()

	c, err := New(Config{
		Dialect: "pep257",
		Logger:  log.NewWithOptions(&bytes.Buffer{}, log.Options{Level: log.ErrorLevel}),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	_, err = c.Prepare(addRoutine()).CheckCall([]typecheck.Value{vStr}, nil)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("error = %v, want ErrTypeMismatch", err)
	}
}

func TestPrepared_Plan(t *testing.T) {
	t.Parallel()

	c, _ := newChecker(t, ModePassive)
	p := c.Prepare(Routine{
		Name:   "f",
		Doc:    "F.\n\nTypes:\nx -- str\ny -- int\n",
		Params: []reconcile.Param{{Name: "x", Type: typeexpr.Parse("int")}},
	})

	plan := p.Plan()
	b, ok := plan.Param("x")
	if !ok || !b.Discrepancy || b.Source != reconcile.SourceComment {
		t.Errorf("x binding = %+v, want a comment-governed discrepancy", b)
	}
	if got := plan.Unmatched.DocumentedNotPassed; len(got) != 1 || got[0] != "y" {
		t.Errorf("documented not passed = %v, want [y]", got)
	}
}

func TestCheckCall_KeywordSectionDocumentsNames(t *testing.T) {
	t.Parallel()

	c, buf := newChecker(t, ModePassive)
	p := c.Prepare(Routine{
		Name:   "add",
		Doc:    "Adds.\n\nArguments:\ni -- first\n\nKeyword Arguments:\nj -- second\n\nTypes:\ni -- int\n",
		Params: []reconcile.Param{{Name: "i"}, {Name: "j"}},
	})

	report, err := p.CheckCall([]typecheck.Value{vInt}, map[string]typecheck.Value{"j": vInt})
	if err != nil {
		t.Fatalf("CheckCall() error: %v", err)
	}
	if got := report.Plan.Unmatched.PassedNotDocumented; len(got) != 0 {
		t.Errorf("PassedNotDocumented = %v, want none", got)
	}
	if strings.Contains(buf.String(), "passed parameters not documented") {
		t.Errorf("a keyword documented under Keyword Arguments was logged as undocumented:\n%s", buf.String())
	}
}

func TestCheckCall_RecursionLimit(t *testing.T) {
	t.Parallel()

	routine := Routine{
		Name:   "deep",
		Doc:    "Deep.\n\nTypes:\nx -- list[list[list[int]]]\n",
		Params: []reconcile.Param{{Name: "x"}},
	}
	nested := typecheck.List(typecheck.List(typecheck.List(vInt)))

	tests := []struct {
		mode    Mode
		wantErr bool
	}{
		{ModePassive, false},
		{ModeActive, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			c, err := New(Config{
				Dialect:  "pep257",
				Mode:     tt.mode,
				Logger:   log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}),
				MaxDepth: 2,
			})
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}

			report, err := c.Prepare(routine).CheckCall([]typecheck.Value{nested}, nil)
			if got := errors.Is(err, typecheck.ErrRecursionLimit); got != tt.wantErr {
				t.Errorf("CheckCall() error = %v, want ErrRecursionLimit: %v", err, tt.wantErr)
			}
			if report.Passed() {
				t.Error("an aborted check must not pass")
			}
			if !strings.Contains(buf.String(), "type check aborted") {
				t.Errorf("abort not logged:\n%s", buf.String())
			}
		})
	}
}
