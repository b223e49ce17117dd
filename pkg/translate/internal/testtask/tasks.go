// Package testtask builds small lifted tasks shared by the translator tests.
package testtask

import (
	"fmt"

	"github.com/planforge/translator/pkg/api/lifted"
)

func param(name, ty string) lifted.Parameter {
	return lifted.Parameter{Name: name, Type: ty}
}

func eff(lit lifted.Literal, cond ...lifted.Literal) lifted.Effect {
	return lifted.Effect{Literal: lit, Condition: cond}
}

// Shuttle moves a truck along a chain of locations. Every drive costs 2.
func Shuttle(locations ...string) *lifted.Task {
	t := &lifted.Task{
		Domain: lifted.Domain{
			Name:  "shuttle",
			Types: []lifted.Type{{Name: "location"}, {Name: "vehicle"}},
			Predicates: []lifted.Predicate{
				{Name: "at", Parameters: []lifted.Parameter{param("?v", "vehicle"), param("?l", "location")}},
				{Name: "road", Parameters: []lifted.Parameter{param("?from", "location"), param("?to", "location")}},
			},
			Actions: []lifted.Action{{
				Name:       "drive",
				Parameters: []lifted.Parameter{param("?v", "vehicle"), param("?from", "location"), param("?to", "location")},
				Precondition: []lifted.Literal{
					lifted.Pos("at", "?v", "?from"),
					lifted.Pos("road", "?from", "?to"),
				},
				Effects: []lifted.Effect{
					eff(lifted.Neg("at", "?v", "?from")),
					eff(lifted.Pos("at", "?v", "?to")),
				},
				Cost: &lifted.Cost{Value: 2},
			}},
		},
		Problem: lifted.Problem{
			Name:    "shuttle",
			Objects: []lifted.Object{{Name: "truck", Type: "vehicle"}},
			Init:    []lifted.Atom{{Predicate: "at", Args: []string{"truck", locations[0]}}},
			Goal:    []lifted.Literal{lifted.Pos("at", "truck", locations[len(locations)-1])},
			Metric:  true,
		},
	}
	for i, l := range locations {
		t.Problem.Objects = append(t.Problem.Objects, lifted.Object{Name: l, Type: "location"})
		if i > 0 {
			t.Problem.Init = append(t.Problem.Init, lifted.Atom{Predicate: "road", Args: []string{locations[i-1], l}})
		}
	}
	return t
}

// Toggle has a single position predicate over two places and a move action
// switching between them.
func Toggle() *lifted.Task {
	return &lifted.Task{
		Domain: lifted.Domain{
			Name: "toggle",
			Predicates: []lifted.Predicate{
				{Name: "at", Parameters: []lifted.Parameter{param("?p", "")}},
			},
			Actions: []lifted.Action{{
				Name:       "move",
				Parameters: []lifted.Parameter{param("?from", ""), param("?to", "")},
				Precondition: []lifted.Literal{
					lifted.Pos("at", "?from"),
					lifted.Neg(lifted.EqualityPredicate, "?from", "?to"),
				},
				Effects: []lifted.Effect{
					eff(lifted.Neg("at", "?from")),
					eff(lifted.Pos("at", "?to")),
				},
			}},
		},
		Problem: lifted.Problem{
			Name:    "toggle",
			Objects: []lifted.Object{{Name: "x"}, {Name: "y"}},
			Init:    []lifted.Atom{{Predicate: "at", Args: []string{"x"}}},
			Goal:    []lifted.Literal{lifted.Pos("at", "y")},
		},
	}
}

// Gripper is the classic two-room robot domain with two grippers.
func Gripper(balls int) *lifted.Task {
	t := &lifted.Task{
		Domain: lifted.Domain{
			Name:  "gripper",
			Types: []lifted.Type{{Name: "room"}, {Name: "ball"}, {Name: "gripper"}},
			Predicates: []lifted.Predicate{
				{Name: "at-robby", Parameters: []lifted.Parameter{param("?r", "room")}},
				{Name: "at", Parameters: []lifted.Parameter{param("?b", "ball"), param("?r", "room")}},
				{Name: "free", Parameters: []lifted.Parameter{param("?g", "gripper")}},
				{Name: "carry", Parameters: []lifted.Parameter{param("?b", "ball"), param("?g", "gripper")}},
			},
			Actions: []lifted.Action{
				{
					Name:       "move",
					Parameters: []lifted.Parameter{param("?from", "room"), param("?to", "room")},
					Precondition: []lifted.Literal{
						lifted.Pos("at-robby", "?from"),
						lifted.Neg(lifted.EqualityPredicate, "?from", "?to"),
					},
					Effects: []lifted.Effect{
						eff(lifted.Pos("at-robby", "?to")),
						eff(lifted.Neg("at-robby", "?from")),
					},
				},
				{
					Name:       "pick",
					Parameters: []lifted.Parameter{param("?b", "ball"), param("?r", "room"), param("?g", "gripper")},
					Precondition: []lifted.Literal{
						lifted.Pos("at", "?b", "?r"),
						lifted.Pos("at-robby", "?r"),
						lifted.Pos("free", "?g"),
					},
					Effects: []lifted.Effect{
						eff(lifted.Pos("carry", "?b", "?g")),
						eff(lifted.Neg("at", "?b", "?r")),
						eff(lifted.Neg("free", "?g")),
					},
				},
				{
					Name:       "drop",
					Parameters: []lifted.Parameter{param("?b", "ball"), param("?r", "room"), param("?g", "gripper")},
					Precondition: []lifted.Literal{
						lifted.Pos("carry", "?b", "?g"),
						lifted.Pos("at-robby", "?r"),
					},
					Effects: []lifted.Effect{
						eff(lifted.Pos("at", "?b", "?r")),
						eff(lifted.Pos("free", "?g")),
						eff(lifted.Neg("carry", "?b", "?g")),
					},
				},
			},
		},
		Problem: lifted.Problem{
			Name: "gripper",
			Objects: []lifted.Object{
				{Name: "rooma", Type: "room"},
				{Name: "roomb", Type: "room"},
				{Name: "left", Type: "gripper"},
				{Name: "right", Type: "gripper"},
			},
			Init: []lifted.Atom{
				{Predicate: "at-robby", Args: []string{"rooma"}},
				{Predicate: "free", Args: []string{"left"}},
				{Predicate: "free", Args: []string{"right"}},
			},
		},
	}
	for i := 1; i <= balls; i++ {
		b := fmt.Sprintf("ball%d", i)
		t.Problem.Objects = append(t.Problem.Objects, lifted.Object{Name: b, Type: "ball"})
		t.Problem.Init = append(t.Problem.Init, lifted.Atom{Predicate: "at", Args: []string{b, "rooma"}})
		t.Problem.Goal = append(t.Problem.Goal, lifted.Pos("at", b, "roomb"))
	}
	return t
}

// Lights has an acyclic negative axiom dependency: a room is dark when it is
// not lit, and lit when its switch is on.
func Lights() *lifted.Task {
	return &lifted.Task{
		Domain: lifted.Domain{
			Name: "lights",
			Predicates: []lifted.Predicate{
				{Name: "on", Parameters: []lifted.Parameter{param("?r", "")}},
				{Name: "lit", Parameters: []lifted.Parameter{param("?r", "")}, Derived: true},
				{Name: "dark", Parameters: []lifted.Parameter{param("?r", "")}, Derived: true},
			},
			Actions: []lifted.Action{{
				Name:         "switch",
				Parameters:   []lifted.Parameter{param("?r", "")},
				Precondition: []lifted.Literal{lifted.Pos("dark", "?r")},
				Effects:      []lifted.Effect{eff(lifted.Pos("on", "?r"))},
			}},
			Axioms: []lifted.Axiom{
				{
					Head:       lifted.Atom{Predicate: "lit", Args: []string{"?r"}},
					Parameters: []lifted.Parameter{param("?r", "")},
					Body:       []lifted.Literal{lifted.Pos("on", "?r")},
				},
				{
					Head:       lifted.Atom{Predicate: "dark", Args: []string{"?r"}},
					Parameters: []lifted.Parameter{param("?r", "")},
					Body:       []lifted.Literal{lifted.Neg("lit", "?r")},
				},
			},
		},
		Problem: lifted.Problem{
			Name:    "lights",
			Objects: []lifted.Object{{Name: "hall"}, {Name: "attic"}},
			Goal:    []lifted.Literal{lifted.Pos("lit", "hall")},
		},
	}
}

// NegativeCycle has one derived predicate whose two ground instances each
// hold when the other does not.
func NegativeCycle() *lifted.Task {
	return &lifted.Task{
		Domain: lifted.Domain{
			Name: "negative-cycle",
			Predicates: []lifted.Predicate{
				{Name: "open", Parameters: []lifted.Parameter{param("?n", "")}},
				{Name: "link", Parameters: []lifted.Parameter{param("?a", ""), param("?b", "")}},
				{Name: "done"},
				{Name: "active", Parameters: []lifted.Parameter{param("?n", "")}, Derived: true},
			},
			Actions: []lifted.Action{
				{
					Name:       "open-node",
					Parameters: []lifted.Parameter{param("?n", "")},
					Effects:    []lifted.Effect{eff(lifted.Pos("open", "?n"))},
				},
				{
					Name:         "finish",
					Precondition: []lifted.Literal{lifted.Pos("active", "a")},
					Effects:      []lifted.Effect{eff(lifted.Pos("done"))},
				},
			},
			Axioms: []lifted.Axiom{{
				Head:       lifted.Atom{Predicate: "active", Args: []string{"?x"}},
				Parameters: []lifted.Parameter{param("?x", ""), param("?y", "")},
				Body: []lifted.Literal{
					lifted.Pos("open", "?x"),
					lifted.Pos("link", "?x", "?y"),
					lifted.Neg("active", "?y"),
				},
			}},
		},
		Problem: lifted.Problem{
			Name:    "negative-cycle",
			Objects: []lifted.Object{{Name: "a"}, {Name: "b"}},
			Init: []lifted.Atom{
				{Predicate: "link", Args: []string{"a", "b"}},
				{Predicate: "link", Args: []string{"b", "a"}},
			},
			Goal: []lifted.Literal{lifted.Pos("done")},
		},
	}
}

// Keepsake drops an item and, when its key is charged, puts it straight
// back. The key is charged initially and never discharged, so the item can
// never be dropped.
func Keepsake() *lifted.Task {
	return &lifted.Task{
		Domain: lifted.Domain{
			Name:  "keepsake",
			Types: []lifted.Type{{Name: "item"}, {Name: "key"}},
			Predicates: []lifted.Predicate{
				{Name: "held", Parameters: []lifted.Parameter{param("?i", "item")}},
				{Name: "charged", Parameters: []lifted.Parameter{param("?k", "key")}},
			},
			Actions: []lifted.Action{
				{
					Name:       "drop",
					Parameters: []lifted.Parameter{param("?i", "item"), param("?k", "key")},
					Effects: []lifted.Effect{
						eff(lifted.Neg("held", "?i")),
						eff(lifted.Pos("held", "?i"), lifted.Pos("charged", "?k")),
					},
				},
				{
					Name:       "charge",
					Parameters: []lifted.Parameter{param("?k", "key")},
					Effects:    []lifted.Effect{eff(lifted.Pos("charged", "?k"))},
				},
			},
		},
		Problem: lifted.Problem{
			Name:    "keepsake",
			Objects: []lifted.Object{{Name: "box", Type: "item"}, {Name: "fob", Type: "key"}},
			Init: []lifted.Atom{
				{Predicate: "held", Args: []string{"box"}},
				{Predicate: "charged", Args: []string{"fob"}},
			},
			Goal: []lifted.Literal{lifted.Neg("held", "box")},
		},
	}
}

// KeepsakeWithSpare is Keepsake with a second key that starts uncharged, so the item
// can be dropped with it.
func KeepsakeWithSpare() *lifted.Task {
	t := Keepsake()
	t.Problem.Objects = append(t.Problem.Objects, lifted.Object{Name: "spare", Type: "key"})
	return t
}
