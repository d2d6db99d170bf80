// Package value implements the tagged Value union: nil, bool, number, and
// object-reference, with structural equality and the falsiness rule.
package value

import (
	"strconv"

	"nilox/internal/object"
)

// Kind discriminates the tag carried by a Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObject
)

// Value is a small tagged union, copied by value the way the VM's operand
// stack expects.
type Value struct {
	kind Kind
	num  float64
	b    bool
	obj  object.Obj
}

func Nil() Value                 { return Value{kind: KindNil} }
func Bool(b bool) Value          { return Value{kind: KindBool, b: b} }
func Number(n float64) Value     { return Value{kind: KindNumber, num: n} }
func Object(o object.Obj) Value  { return Value{kind: KindObject, obj: o} }

func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsObject() bool { return v.kind == KindObject }

func (v Value) IsString() bool {
	return v.kind == KindObject && v.obj.ObjType() == object.TypeString
}

func (v Value) AsBool() bool       { return v.b }
func (v Value) AsNumber() float64  { return v.num }
func (v Value) AsObject() object.Obj { return v.obj }

// AsString panics if v is not a string; callers must guard with IsString,
// matching the VM's own peek-before-pop discipline.
func (v Value) AsString() *object.StringObj {
	return v.obj.(*object.StringObj)
}

// Falsy reports whether v is nil or boolean false; every other value is
// truthy.
func Falsy(v Value) bool {
	return v.IsNil() || (v.IsBool() && !v.AsBool())
}

// Equal is structural equality by tag: numbers by double equality, objects
// by reference (interning makes this sufficient for strings).
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindObject:
		return a.obj == b.obj
	default:
		return false
	}
}

// String renders v the way `print` does.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindObject:
		switch o := v.obj.(type) {
		case *object.StringObj:
			return o.Chars
		default:
			return "<object>"
		}
	default:
		return "<invalid>"
	}
}
