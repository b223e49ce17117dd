package sat

type variable struct {
	id          Identifier
	constraints []Constraint
}

func (v *variable) Identifier() Identifier {
	return v.id
}

func (v *variable) Constraints() []Constraint {
	return v.constraints
}

// Problem collects variables and their constraints. Variables keep the
// order in which they were first mentioned.
type Problem struct {
	variables []*variable
	index     map[Identifier]*variable
}

func NewProblem() *Problem {
	return &Problem{index: make(map[Identifier]*variable)}
}

// Declare adds a variable without constraints if it is not known yet.
func (p *Problem) Declare(id Identifier) {
	p.get(id)
}

// Constrain attaches constraints to the variable with the given identifier,
// declaring it if needed. Identifiers referenced by the constraints must be
// declared before solving.
func (p *Problem) Constrain(id Identifier, constraints ...Constraint) {
	v := p.get(id)
	v.constraints = append(v.constraints, constraints...)
}

func (p *Problem) get(id Identifier) *variable {
	if v, ok := p.index[id]; ok {
		return v
	}
	v := &variable{id: id}
	p.index[id] = v
	p.variables = append(p.variables, v)
	return v
}

// Variables returns the problem's variables in declaration order.
func (p *Problem) Variables() []Variable {
	result := make([]Variable, len(p.variables))
	for i, v := range p.variables {
		result[i] = v
	}
	return result
}
