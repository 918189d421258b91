// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/doclog/doclog/internal/report"
)

const (
	markPass = "✓"
	markFail = "✗"
	markWarn = "!"
)

func renderParse(w io.Writer, p report.Parse) {
	title := "Sections (" + p.Dialect + ")"
	if p.Routine != "" {
		title += " of " + p.Routine
	}
	fmt.Fprintln(w, TitleStyle.Render(title))
	if len(p.Sections) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("  (no sections found)"))
		return
	}
	for _, sec := range p.Sections {
		fmt.Fprintf(w, "\n%s\n", CmdStyle.Render(sec.Kind))
		renderItems(w, sec.Items, 1)
	}
}

func renderItems(w io.Writer, items []report.Item, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, it := range items {
		var line strings.Builder
		line.WriteString(indent)
		if it.Name != "" {
			line.WriteString(it.Name)
			line.WriteString(": ")
		}
		line.WriteString(it.Value)
		fmt.Fprintf(w, "%s %s\n", line.String(), VerboseStyle.Render(fmt.Sprintf("(line %d)", it.Line)))
		renderItems(w, it.Subitems, depth+1)
	}
}

func renderType(w io.Writer, t report.Type) {
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("Type"), CmdStyle.Render(t.Input))
	fmt.Fprintf(w, "%s %d\n", SubtitleStyle.Render("depth:"), t.Depth)
	renderTypeNode(w, t.Tree, 1)
}

func renderTypeNode(w io.Writer, n report.TypeNode, depth int) {
	indent := strings.Repeat("  ", depth)
	if n.Unknown {
		fmt.Fprintf(w, "%s%s %s\n", indent, WarningStyle.Render("unknown"), VerboseStyle.Render(quoteOrEmpty(n.Text)))
		return
	}
	fmt.Fprintf(w, "%s%s\n", indent, n.Name)
	for _, e := range n.Elems {
		renderTypeNode(w, e, depth+1)
	}
}

func renderMatch(w io.Writer, m report.Match) {
	verdict := SuccessStyle.Render(markPass + " matches")
	if !m.Passed {
		verdict = ErrorStyle.Render(markFail + " does not match")
	}
	fmt.Fprintf(w, "%s %s %s\n", m.Value, verdict, CmdStyle.Render(m.Type))
	if m.Error != "" {
		fmt.Fprintf(w, "  %s\n", ErrorStyle.Render(m.Error))
	}
	renderResult(w, m.Result, 1)
}

func renderResult(w io.Writer, r report.Result, depth int) {
	if r.Type == "" && r.Expected == "" {
		return
	}
	indent := strings.Repeat("  ", depth)
	mark := SuccessStyle.Render(markPass)
	if !r.Passed {
		mark = ErrorStyle.Render(markFail)
	}
	fmt.Fprintf(w, "%s%s expected %s, got %s\n", indent, mark, r.Expected, r.Actual)
	for _, sub := range r.Subresults {
		renderResult(w, sub, depth+1)
	}
}

func renderCheck(w io.Writer, c report.Check, verbose bool) {
	for _, f := range c.Files {
		renderFile(w, f, verbose)
	}

	s := c.Summary
	summary := fmt.Sprintf("%d file(s), %d documented routine(s): %d discrepancy(ies), %d unparsed declaration(s), %d error(s)",
		s.Files, s.Functions, s.Discrepancies, s.Unparsed, s.Errors)
	if c.Passed() {
		fmt.Fprintln(w, SuccessStyle.Render(markPass+" "+summary))
		return
	}
	fmt.Fprintln(w, ErrorStyle.Render(markFail+" "+summary))
}

func renderFile(w io.Writer, f report.File, verbose bool) {
	var failing []report.Function
	for _, fn := range f.Functions {
		if verbose || fn.Failed() || len(fn.Unknown) > 0 {
			failing = append(failing, fn)
		}
	}
	if f.Error == "" && len(failing) == 0 {
		return
	}

	fmt.Fprintln(w, TitleStyle.Render(f.Path))
	if f.Error != "" {
		fmt.Fprintf(w, "  %s %s\n", ErrorStyle.Render(markFail), f.Error)
	}
	for _, fn := range failing {
		fmt.Fprintf(w, "  %s %s\n", CmdStyle.Render(fn.Name), VerboseStyle.Render(fmt.Sprintf("(line %d)", fn.Line)))
		for _, b := range fn.Params {
			renderBinding(w, b, verbose)
		}
		if fn.Return != nil {
			renderBinding(w, *fn.Return, verbose)
		}
		if len(fn.Unknown) > 0 {
			fmt.Fprintf(w, "    %s documented but not a parameter: %s\n", WarningStyle.Render(markWarn), strings.Join(fn.Unknown, ", "))
		}
		if verbose && len(fn.Undocumented) > 0 {
			fmt.Fprintf(w, "    %s not documented: %s\n", VerboseStyle.Render("-"), strings.Join(fn.Undocumented, ", "))
		}
	}
	fmt.Fprintln(w)
}

func renderBinding(w io.Writer, b report.Binding, verbose bool) {
	name := b.Name
	if name == "" {
		name = "<return>"
	}
	line := ""
	if b.Line > 0 {
		line = " " + VerboseStyle.Render(fmt.Sprintf("(line %d)", b.Line))
	}

	switch {
	case b.Error != "":
		fmt.Fprintf(w, "    %s %s: %s%s\n", ErrorStyle.Render(markFail), name, b.Error, line)
	case b.Unparsed:
		fmt.Fprintf(w, "    %s %s: cannot parse declared type %q%s\n", WarningStyle.Render(markWarn), name, b.Comment, line)
	case b.Discrepancy:
		fmt.Fprintf(w, "    %s %s: comment declares %s, signature declares %s%s\n",
			WarningStyle.Render(markWarn), name, CmdStyle.Render(b.Comment), CmdStyle.Render(b.Signature), line)
	case verbose:
		effective := b.Effective
		if effective == "" {
			effective = "(undeclared)"
		}
		fmt.Fprintf(w, "    %s %s: %s %s\n", SuccessStyle.Render(markPass), name, effective, VerboseStyle.Render("from "+b.Source))
	}
}

func renderCall(w io.Writer, c report.Call) {
	fmt.Fprintln(w, TitleStyle.Render("Call "+c.Routine))
	for _, o := range c.Args {
		renderOutcome(w, o)
	}
	if c.Return != nil {
		renderOutcome(w, *c.Return)
	}
	if c.Passed {
		fmt.Fprintln(w, SuccessStyle.Render(markPass+" all values match their declared types"))
		return
	}
	fmt.Fprintln(w, ErrorStyle.Render(markFail+" type mismatch"))
}

func renderOutcome(w io.Writer, o report.Outcome) {
	name := o.Name
	if name == "" {
		name = "<return>"
	}
	switch {
	case o.Error != "":
		fmt.Fprintf(w, "  %s %s: %s\n", ErrorStyle.Render(markFail), name, o.Error)
	case o.Passed:
		fmt.Fprintf(w, "  %s %s: %s\n", SuccessStyle.Render(markPass), name, CmdStyle.Render(orUndeclared(o.Type)))
	default:
		fmt.Fprintf(w, "  %s %s: expected %s, got %s\n", ErrorStyle.Render(markFail), name, o.Expected, o.Actual)
	}
}

func orUndeclared(t string) string {
	if t == "" {
		return "(undeclared)"
	}
	return t
}

func quoteOrEmpty(s string) string {
	if s == "" {
		return "(empty)"
	}
	return fmt.Sprintf("%q", s)
}
