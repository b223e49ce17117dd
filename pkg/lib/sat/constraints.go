package sat

import (
	"fmt"
	"strings"
)

// Constraint restricts the assignments of the Variable it is attached to.
// Each Constraint contributes exactly one clause.
type Constraint interface {
	String(subject Identifier) string
	apply(x constrainer, subject Identifier)
}

// AppliedConstraint is a Constraint bound to its Variable. Unsatisfiable
// cores are reported in terms of these.
type AppliedConstraint struct {
	Variable   Variable
	Constraint Constraint
}

func (a AppliedConstraint) String() string {
	return a.Constraint.String(a.Variable.Identifier())
}

// constrainer collects the literals of one clause.
type constrainer interface {
	Add(Identifier)
	AddNot(Identifier)
}

type mandatory struct{}

func (c mandatory) String(subject Identifier) string {
	return fmt.Sprintf("%s must hold", subject)
}

func (c mandatory) apply(x constrainer, subject Identifier) {
	x.Add(subject)
}

// Mandatory fixes its Variable to true.
func Mandatory() Constraint {
	return mandatory{}
}

type prohibited struct{}

func (c prohibited) String(subject Identifier) string {
	return fmt.Sprintf("%s must not hold", subject)
}

func (c prohibited) apply(x constrainer, subject Identifier) {
	x.AddNot(subject)
}

// Prohibited fixes its Variable to false.
func Prohibited() Constraint {
	return prohibited{}
}

type dependency []Identifier

func (c dependency) String(subject Identifier) string {
	s := make([]string, len(c))
	for i, each := range c {
		s[i] = string(each)
	}
	return fmt.Sprintf("%s needs one of %s", subject, strings.Join(s, ", "))
}

func (c dependency) apply(x constrainer, subject Identifier) {
	if len(c) == 0 {
		return
	}
	x.AddNot(subject)
	for _, each := range c {
		x.Add(each)
	}
}

// Dependency encodes subject -> (ids[0] or ids[1] or ...). An empty
// list adds nothing.
func Dependency(ids ...Identifier) Constraint {
	return dependency(ids)
}

type conflict Identifier

func (c conflict) String(subject Identifier) string {
	return fmt.Sprintf("%s excludes %s", subject, c)
}

func (c conflict) apply(x constrainer, subject Identifier) {
	x.AddNot(subject)
	x.AddNot(Identifier(c))
}

// Conflict forbids its Variable and id from holding together.
func Conflict(id Identifier) Constraint {
	return conflict(id)
}

// Literal is a Variable reference that may be negated.
type Literal struct {
	ID      Identifier
	Negated bool
}

func (l Literal) String() string {
	if l.Negated {
		return "not " + string(l.ID)
	}
	return string(l.ID)
}

type implied []Literal

func (c implied) String(subject Identifier) string {
	s := make([]string, len(c))
	for i, each := range c {
		s[i] = each.String()
	}
	return fmt.Sprintf("%s is implied by %s", subject, strings.Join(s, " and "))
}

func (c implied) apply(x constrainer, subject Identifier) {
	x.Add(subject)
	for _, each := range c {
		if each.Negated {
			x.Add(each.ID)
		} else {
			x.AddNot(each.ID)
		}
	}
}

// Implied returns a Constraint that forces a Variable to be true in
// every solution where all of the given literals hold. With no
// literals it is equivalent to Mandatory.
func Implied(lits ...Literal) Constraint {
	return implied(lits)
}
