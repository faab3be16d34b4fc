package hdl

// Builder accumulates a sequence of statements. Component authors call
// its methods directly to record the statement tree a module's
// combinational Verilog body is lowered from.
type Builder struct {
	stmts []Stmt
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Assign appends an Assignment statement.
func (b *Builder) Assign(lhs, rhs Expr) *Builder {
	b.stmts = append(b.stmts, Assignment{Lhs: lhs, Rhs: rhs})
	return b
}

// AssignSlice appends a SliceAssignment statement.
func (b *Builder) AssignSlice(base string, width int, offset, replacement Expr) *Builder {
	b.stmts = append(b.stmts, SliceAssignment{
		Base: base, Width: width, Offset: offset, Replacement: replacement,
	})
	return b
}

// If appends an If statement built from two sub-builders.
func (b *Builder) If(test Expr, then func(*Builder), els func(*Builder)) *Builder {
	thenB := NewBuilder()
	then(thenB)
	stmt := If{Test: test, Then: thenB.Build()}
	if els != nil {
		elseB := NewBuilder()
		els(elseB)
		stmt.ElseBlock = elseB.Build()
	}
	b.stmts = append(b.stmts, stmt)
	return b
}

// Match appends a Match statement. cases is a flat list of
// pattern/builder-func pairs processed in order.
func (b *Builder) Match(test Expr, cases ...MatchCaseFunc) *Builder {
	m := Match{Test: test}
	for _, c := range cases {
		caseB := NewBuilder()
		c.Build(caseB)
		m.Cases = append(m.Cases, MatchCase{Pattern: c.Pattern, Block: caseB.Build()})
	}
	b.stmts = append(b.stmts, m)
	return b
}

// MatchCaseFunc describes one Match arm for use with Builder.Match.
type MatchCaseFunc struct {
	Pattern string
	Build   func(*Builder)
}

// Case builds a MatchCaseFunc.
func Case(pattern string, build func(*Builder)) MatchCaseFunc {
	return MatchCaseFunc{Pattern: pattern, Build: build}
}

// Loop appends a bounded Loop statement.
func (b *Builder) Loop(index string, from, to int, body func(*Builder)) *Builder {
	bodyB := NewBuilder()
	body(bodyB)
	b.stmts = append(b.stmts, Loop{Index: index, From: from, To: to, Body: bodyB.Build()})
	return b
}

// Comment appends a Comment statement.
func (b *Builder) Comment(text string) *Builder {
	b.stmts = append(b.stmts, Comment(text))
	return b
}

// LinkTo appends a Link statement carrying a single LinkDetail.
func (b *Builder) LinkTo(ownerPath, otherPath, localName string, mode LinkMode) *Builder {
	b.stmts = append(b.stmts, Link{Details: []LinkDetail{
		{OwnerPath: ownerPath, OtherPath: otherPath, LocalName: localName, Mode: mode},
	}})
	return b
}

// Build returns the accumulated statement list.
func (b *Builder) Build() []Stmt {
	return b.stmts
}

// Links extracts every LinkDetail recorded anywhere in a statement tree,
// recursing into If/Match/Loop bodies. Used by the module-define pass to
// collect a module's links.
func Links(stmts []Stmt) []LinkDetail {
	var out []LinkDetail
	for _, s := range stmts {
		switch st := s.(type) {
		case Link:
			out = append(out, st.Details...)
		case If:
			out = append(out, Links(st.Then)...)
			out = append(out, Links(st.ElseBlock)...)
			if st.ElseIf != nil {
				out = append(out, Links([]Stmt{*st.ElseIf})...)
			}
		case Match:
			for _, c := range st.Cases {
				out = append(out, Links(c.Block)...)
			}
		case Loop:
			out = append(out, Links(st.Body)...)
		}
	}
	return out
}
