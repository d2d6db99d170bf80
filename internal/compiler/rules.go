package compiler

import "nilox/internal/token"

// Precedence levels, low to high, per the language's operator-precedence
// table; binary infix handlers recurse at own-precedence+1 to enforce
// left-associativity.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix parseFn
	infix  parseFn
	prec   Precedence
}

var rules map[token.Type]parseRule

func init() {
	rules = map[token.Type]parseRule{
		token.LeftParen:  {(*Compiler).grouping, nil, PrecNone},
		token.Minus:      {(*Compiler).unary, (*Compiler).binary, PrecTerm},
		token.Plus:       {nil, (*Compiler).binary, PrecTerm},
		token.Slash:      {nil, (*Compiler).binary, PrecFactor},
		token.Star:       {nil, (*Compiler).binary, PrecFactor},
		token.Bang:       {(*Compiler).unary, nil, PrecNone},
		token.BangEqual:  {nil, (*Compiler).binary, PrecEquality},
		token.EqualEqual: {nil, (*Compiler).binary, PrecEquality},
		token.Greater:      {nil, (*Compiler).binary, PrecComparison},
		token.GreaterEqual: {nil, (*Compiler).binary, PrecComparison},
		token.Less:         {nil, (*Compiler).binary, PrecComparison},
		token.LessEqual:    {nil, (*Compiler).binary, PrecComparison},
		token.Ident:  {(*Compiler).variable, nil, PrecNone},
		token.String: {(*Compiler).stringLit, nil, PrecNone},
		token.Number: {(*Compiler).number, nil, PrecNone},
		token.And:    {nil, (*Compiler).and_, PrecAnd},
		token.Or:     {nil, (*Compiler).or_, PrecOr},
		token.False:  {(*Compiler).literal, nil, PrecNone},
		token.Nil:    {(*Compiler).literal, nil, PrecNone},
		token.True:   {(*Compiler).literal, nil, PrecNone},
	}
}

func getRule(typ token.Type) parseRule {
	if r, ok := rules[typ]; ok {
		return r
	}
	return parseRule{nil, nil, PrecNone}
}
