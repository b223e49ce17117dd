package invariant

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/hashstructure"

	"github.com/planforge/translator/pkg/translate/ground"
)

// Part binds the arguments of one predicate to invariant parameters:
// argument position Order[k] holds parameter k. Omitted is the counted
// position that ranges freely within an instance, or -1.
type Part struct {
	Predicate string
	Order     []int
	Omitted   int
}

func (p Part) arity() int {
	if p.Omitted >= 0 {
		return len(p.Order) + 1
	}
	return len(p.Order)
}

func (p Part) String() string {
	terms := make([]string, p.arity())
	for i := range terms {
		terms[i] = "*"
	}
	for k, pos := range p.Order {
		terms[pos] = fmt.Sprintf("?%d", k)
	}
	return fmt.Sprintf("%s(%s)", p.Predicate, strings.Join(terms, ", "))
}

// instanceKey returns the parameter values an atom of this part binds.
func (p Part) instanceKey(atom ground.Atom) string {
	values := make([]string, len(p.Order))
	for k, pos := range p.Order {
		values[k] = atom.Args[pos]
	}
	return strings.Join(values, ",")
}

// Candidate is a hypothesized invariant: in every reachable state, for every
// binding of its parameters, at most one atom matching one of its parts is
// true. Parts are sorted by predicate and mention each predicate once.
type Candidate struct {
	Parts []Part
}

func (c Candidate) Params() int {
	if len(c.Parts) == 0 {
		return 0
	}
	return len(c.Parts[0].Order)
}

func (c Candidate) part(predicate string) (Part, bool) {
	for _, p := range c.Parts {
		if p.Predicate == predicate {
			return p, true
		}
	}
	return Part{}, false
}

// Key is the canonical textual form of the candidate.
func (c Candidate) Key() string {
	s := make([]string, len(c.Parts))
	for i, p := range c.Parts {
		s[i] = p.String()
	}
	return "{" + strings.Join(s, ", ") + "}"
}

func (c Candidate) String() string {
	return c.Key()
}

func (c Candidate) hash() (uint64, error) {
	return hashstructure.Hash(c, nil)
}

// extend returns a canonical copy of c with one more part.
func (c Candidate) extend(p Part) Candidate {
	parts := make([]Part, 0, len(c.Parts)+1)
	parts = append(parts, c.Parts...)
	parts = append(parts, p)
	return canonical(parts)
}

// canonical sorts parts by predicate and renumbers parameters in order of
// first occurrence, so that candidates equal up to parameter renaming share
// a key.
func canonical(parts []Part) Candidate {
	sorted := make([]Part, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Predicate < sorted[j].Predicate })

	if len(sorted) == 0 {
		return Candidate{}
	}
	n := len(sorted[0].Order)
	rename := make([]int, n)
	for i := range rename {
		rename[i] = -1
	}
	next := 0
	for _, p := range sorted {
		byPosition := make([]int, p.arity())
		for i := range byPosition {
			byPosition[i] = -1
		}
		for k, pos := range p.Order {
			byPosition[pos] = k
		}
		for _, k := range byPosition {
			if k >= 0 && rename[k] < 0 {
				rename[k] = next
				next++
			}
		}
	}

	out := make([]Part, len(sorted))
	for i, p := range sorted {
		order := make([]int, n)
		for k, pos := range p.Order {
			order[rename[k]] = pos
		}
		out[i] = Part{Predicate: p.Predicate, Order: order, Omitted: p.Omitted}
	}
	return Candidate{Parts: out}
}

// seeds returns the initial candidates: one per fluent predicate and choice
// of counted argument position, including none.
func seeds(predicates []string, arity map[string]int) []Candidate {
	var result []Candidate
	for _, pred := range predicates {
		n := arity[pred]
		for omitted := -1; omitted < n; omitted++ {
			order := make([]int, 0, n)
			for pos := 0; pos < n; pos++ {
				if pos != omitted {
					order = append(order, pos)
				}
			}
			result = append(result, canonical([]Part{{Predicate: pred, Order: order, Omitted: omitted}}))
		}
	}
	return result
}

// seenSet de-duplicates candidates by structural hash, falling back to the
// canonical key on collisions.
type seenSet struct {
	buckets map[uint64][]string
	size    int
}

func newSeenSet() *seenSet {
	return &seenSet{buckets: make(map[uint64][]string)}
}

// add records c and reports whether it was new.
func (s *seenSet) add(c Candidate) (bool, error) {
	h, err := c.hash()
	if err != nil {
		return false, err
	}
	key := c.Key()
	for _, existing := range s.buckets[h] {
		if existing == key {
			return false, nil
		}
	}
	s.buckets[h] = append(s.buckets[h], key)
	s.size++
	return true, nil
}

func (s *seenSet) contains(c Candidate) (bool, error) {
	h, err := c.hash()
	if err != nil {
		return false, err
	}
	key := c.Key()
	for _, existing := range s.buckets[h] {
		if existing == key {
			return true, nil
		}
	}
	return false, nil
}
