package sas

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// NameVariables names every variable after its index.
func (t *Task) NameVariables() {
	for i := range t.Variables {
		t.Variables[i].Name = fmt.Sprintf("var%d", i)
	}
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) printf(format string, args ...interface{}) {
	if c.err != nil {
		return
	}
	n, err := fmt.Fprintf(c.w, format, args...)
	c.n += int64(n)
	c.err = err
}

func (c *countingWriter) facts(facts []Fact) {
	c.printf("%d\n", len(facts))
	for _, f := range facts {
		c.printf("%d %d\n", f.Var, f.Value)
	}
}

// WriteTo serializes the task in the translator output format. The output
// depends only on the task value.
func (t *Task) WriteTo(w io.Writer) (int64, error) {
	c := &countingWriter{w: bufio.NewWriter(w)}

	c.printf("begin_version\n%d\nend_version\n", FormatVersion)
	metric := 0
	if t.Metric {
		metric = 1
	}
	c.printf("begin_metric\n%d\nend_metric\n", metric)

	c.printf("%d\n", len(t.Variables))
	for _, v := range t.Variables {
		c.printf("begin_variable\n%s\n%d\n%d\n", v.Name, v.Layer, len(v.Values))
		for _, value := range v.Values {
			c.printf("%s\n", value)
		}
		c.printf("end_variable\n")
	}

	c.printf("%d\n", len(t.Mutexes))
	for _, m := range t.Mutexes {
		c.printf("begin_mutex_group\n")
		c.facts(m.Facts)
		c.printf("end_mutex_group\n")
	}

	c.printf("begin_state\n")
	for _, value := range t.Init {
		c.printf("%d\n", value)
	}
	c.printf("end_state\n")

	c.printf("begin_goal\n")
	c.facts(t.Goal)
	c.printf("end_goal\n")

	c.printf("%d\n", len(t.Operators))
	for _, op := range t.Operators {
		c.printf("begin_operator\n%s\n", op.Name)
		c.facts(op.Prevail)
		c.printf("%d\n", len(op.Effects))
		for _, e := range op.Effects {
			c.printf("%d", len(e.Condition))
			for _, f := range e.Condition {
				c.printf(" %d %d", f.Var, f.Value)
			}
			c.printf(" %d %d %d\n", e.Var, e.Pre, e.Post)
		}
		c.printf("%d\nend_operator\n", op.Cost)
	}

	c.printf("%d\n", len(t.Axioms))
	for _, ax := range t.Axioms {
		c.printf("begin_rule\n")
		c.facts(ax.Condition)
		c.printf("%d %d %d\nend_rule\n", ax.Var, ax.From, ax.To)
	}

	if c.err == nil {
		c.err = c.w.Flush()
	}
	return c.n, c.err
}

// WriteFile writes the task to path, replacing any existing file.
func WriteFile(path string, t *Task) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if _, err := t.WriteTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}

func (t *Task) factString(f Fact) string {
	v := t.Variables[f.Var]
	return fmt.Sprintf("%s=%s", v.Name, v.Values[f.Value])
}

func (t *Task) factList(facts []Fact) string {
	s := make([]string, len(facts))
	for i, f := range facts {
		s[i] = t.factString(f)
	}
	return strings.Join(s, ", ")
}

// Dump writes a human readable description of the task.
func (t *Task) Dump(w io.Writer) error {
	c := &countingWriter{w: bufio.NewWriter(w)}

	c.printf("variables:\n")
	for _, v := range t.Variables {
		if v.Derived {
			c.printf("  %s (layer %d):\n", v.Name, v.Layer)
		} else {
			c.printf("  %s:\n", v.Name)
		}
		for i, value := range v.Values {
			c.printf("    %d: %s\n", i, value)
		}
	}

	if len(t.Mutexes) > 0 {
		c.printf("mutex groups:\n")
		for _, m := range t.Mutexes {
			c.printf("  %s\n", t.factList(m.Facts))
		}
	}

	c.printf("initial state:\n")
	for i, value := range t.Init {
		c.printf("  %s\n", t.factString(Fact{Var: i, Value: value}))
	}

	c.printf("goal:\n")
	for _, f := range t.Goal {
		c.printf("  %s\n", t.factString(f))
	}

	c.printf("operators:\n")
	for _, op := range t.Operators {
		c.printf("  %s [cost %d]\n", op.Name, op.Cost)
		if len(op.Prevail) > 0 {
			c.printf("    prevail: %s\n", t.factList(op.Prevail))
		}
		for _, e := range op.Effects {
			v := t.Variables[e.Var]
			pre := "*"
			if e.Pre >= 0 {
				pre = v.Values[e.Pre]
			}
			c.printf("    %s: %s -> %s", v.Name, pre, v.Values[e.Post])
			if len(e.Condition) > 0 {
				c.printf(" if %s", t.factList(e.Condition))
			}
			c.printf("\n")
		}
	}

	c.printf("axioms:\n")
	for _, ax := range t.Axioms {
		marker := ""
		if ax.Overapproximated {
			marker = " [overapproximated]"
		}
		c.printf("  %s <- %s%s\n", t.factString(Fact{Var: ax.Var, Value: ax.To}), t.factList(ax.Condition), marker)
	}

	if c.err == nil {
		c.err = c.w.Flush()
	}
	return c.err
}
