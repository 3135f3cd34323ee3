package prim

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
	"math/bits"
	"strings"

	"github.com/nukata/goarith"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Op identifies a primitive operator in the catalog.
type Op uint16

type binaryFn func(a, b Literal) (Literal, bool)

type opInfo struct {
	family Family
	symbol string
	arity  int
	apply  binaryFn // nil unless arity == 2
}

var catalog = []opInfo{
	{FamilyNat, "add", 2, natArith(goarith.Number.Add)},
	{FamilyNat, "sub", 2, natSub},
	{FamilyNat, "mul", 2, natArith(goarith.Number.Mul)},
	{FamilyNat, "div", 2, natDivMod(false)},
	{FamilyNat, "mod", 2, natDivMod(true)},
	{FamilyNat, "eql", 2, natCmp(func(c int) bool { return c == 0 })},
	{FamilyNat, "lth", 2, natCmp(func(c int) bool { return c < 0 })},
	{FamilyNat, "lte", 2, natCmp(func(c int) bool { return c <= 0 })},
	{FamilyNat, "gth", 2, natCmp(func(c int) bool { return c > 0 })},
	{FamilyNat, "gte", 2, natCmp(func(c int) bool { return c >= 0 })},

	{FamilyU8, "add", 2, u8Arith(func(x, y U8) (U8, bool) { return x + y, true })},
	{FamilyU8, "sub", 2, u8Arith(func(x, y U8) (U8, bool) { return x - y, true })},
	{FamilyU8, "mul", 2, u8Arith(func(x, y U8) (U8, bool) { return x * y, true })},
	{FamilyU8, "div", 2, u8Arith(u8Div)},
	{FamilyU8, "mod", 2, u8Arith(u8Mod)},
	{FamilyU8, "and", 2, u8Arith(func(x, y U8) (U8, bool) { return x & y, true })},
	{FamilyU8, "or", 2, u8Arith(func(x, y U8) (U8, bool) { return x | y, true })},
	{FamilyU8, "xor", 2, u8Arith(func(x, y U8) (U8, bool) { return x ^ y, true })},
	{FamilyU8, "pow", 2, u8Pow},
	{FamilyU8, "shl", 2, u8Shift(func(x uint8, k uint32) uint8 { return x << (k % 8) })},
	{FamilyU8, "shr", 2, u8Shift(func(x uint8, k uint32) uint8 { return x >> (k % 8) })},
	{FamilyU8, "rol", 2, u8Shift(func(x uint8, k uint32) uint8 { return bits.RotateLeft8(x, int(k%8)) })},
	{FamilyU8, "ror", 2, u8Shift(func(x uint8, k uint32) uint8 { return bits.RotateLeft8(x, -int(k%8)) })},
	{FamilyU8, "eql", 2, u8Cmp(func(x, y U8) bool { return x == y })},
	{FamilyU8, "lth", 2, u8Cmp(func(x, y U8) bool { return x < y })},
	{FamilyU8, "lte", 2, u8Cmp(func(x, y U8) bool { return x <= y })},
	{FamilyU8, "gth", 2, u8Cmp(func(x, y U8) bool { return x > y })},
	{FamilyU8, "gte", 2, u8Cmp(func(x, y U8) bool { return x >= y })},
	{FamilyU8, "max", 0, nil},
	{FamilyU8, "min", 0, nil},
	{FamilyU8, "not", 1, nil},
	{FamilyU8, "count_zeros", 1, nil},
	{FamilyU8, "count_ones", 1, nil},
	{FamilyU8, "to_U16", 1, nil},
	{FamilyU8, "to_U32", 1, nil},
	{FamilyU8, "to_U64", 1, nil},
	{FamilyU8, "to_U128", 1, nil},
	{FamilyU8, "to_Nat", 1, nil},
	{FamilyU8, "to_I8", 1, nil},
	{FamilyU8, "to_I16", 1, nil},
	{FamilyU8, "to_I32", 1, nil},
	{FamilyU8, "to_I64", 1, nil},
	{FamilyU8, "to_I128", 1, nil},
	{FamilyU8, "to_Int", 1, nil},
	{FamilyU8, "to_Bits", 1, nil},
	{FamilyU8, "to_Bytes", 1, nil},
	{FamilyU8, "to_Char", 1, nil},

	{FamilyBool, "and", 2, boolOp(func(x, y Bool) Bool { return x && y })},
	{FamilyBool, "or", 2, boolOp(func(x, y Bool) Bool { return x || y })},
	{FamilyBool, "eql", 2, boolOp(func(x, y Bool) Bool { return x == y })},
	{FamilyBool, "not", 1, nil},

	{FamilyBits, "cons", 2, bitsCons},
	{FamilyBits, "take", 2, bitsSplit(true)},
	{FamilyBits, "drop", 2, bitsSplit(false)},
	{FamilyBits, "append", 2, bitsAppend},
	{FamilyBits, "insert", 3, nil},
	{FamilyBits, "remove", 2, bitsRemove},
	{FamilyBits, "index", 2, bitsIndex},
	{FamilyBits, "len", 1, nil},
	{FamilyBits, "head", 1, nil},
	{FamilyBits, "tail", 1, nil},
	{FamilyBits, "to_Bytes", 1, nil},

	{FamilyBytes, "append", 2, bytesAppend},
	{FamilyBytes, "index", 2, bytesIndex},
	{FamilyBytes, "eql", 2, bytesEql},
}

// constants holds the values of the nullary operators.
var constants = map[string]Literal{
	"#U8.max": U8(math.MaxUint8),
	"#U8.min": U8(0),
}

var opsByName = func() map[string]Op {
	m := make(map[string]Op, len(catalog))
	for i := range catalog {
		m[Op(i).String()] = Op(i)
	}
	return m
}()

func (op Op) info() opInfo {
	if int(op) >= len(catalog) {
		panic(fmt.Sprintf("prim: invalid operator %d", op))
	}
	return catalog[op]
}

// Family is the type the operator belongs to.
func (op Op) Family() Family { return op.info().family }

// Symbol is the operator name within its family.
func (op Op) Symbol() string { return op.info().symbol }

// Arity is the number of arguments the operator consumes.
func (op Op) Arity() int { return op.info().arity }

// String renders the operator in surface syntax, e.g. #U8.add.
func (op Op) String() string {
	info := op.info()
	return "#" + string(info.family) + "." + info.symbol
}

// LookupOp resolves surface syntax such as #Nat.add to an operator.
func LookupOp(text string) (Op, error) {
	if op, ok := opsByName[text]; ok {
		return op, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownOperator, text)
}

// IsOpSyntax reports whether a '#' token names an operator rather than a
// literal. Operators are always qualified by their family.
func IsOpSyntax(text string) bool {
	return strings.Contains(text, ".")
}

// Ops lists every operator ordered by surface name.
func Ops() []Op {
	ops := lo.Times(len(catalog), func(i int) Op { return Op(i) })
	slices.SortFunc(ops, func(a, b Op) int { return strings.Compare(a.String(), b.String()) })
	return ops
}

// ApplyBinary applies a binary operator to two literal operands, a being
// the first argument. It reports false when the operator is not binary or the
// operands are ill-typed or outside the operator's domain.
func ApplyBinary(op Op, a, b Literal) (Literal, bool) {
	info := op.info()
	if info.arity != 2 || info.apply == nil || a == nil || b == nil {
		return nil, false
	}
	return info.apply(a, b)
}

// ApplyNullary returns the value of a nullary operator such as #U8.max. It
// reports false for operators that take arguments.
func ApplyNullary(op Op) (Literal, bool) {
	if op.Arity() != 0 {
		return nil, false
	}
	lit, ok := constants[op.String()]
	return lit, ok
}

func natPair(a, b Literal) (Nat, Nat, bool) {
	x, ok1 := a.(Nat)
	y, ok2 := b.(Nat)
	return x, y, ok1 && ok2
}

func natArith(fn func(goarith.Number, goarith.Number) goarith.Number) binaryFn {
	return func(a, b Literal) (Literal, bool) {
		x, y, ok := natPair(a, b)
		if !ok {
			return nil, false
		}
		return Nat{v: fn(x.number(), y.number())}, true
	}
}

func natSub(a, b Literal) (Literal, bool) {
	x, y, ok := natPair(a, b)
	if !ok || x.number().Cmp(y.number()) < 0 {
		return nil, false
	}
	return Nat{v: x.number().Sub(y.number())}, true
}

func natDivMod(rem bool) binaryFn {
	return func(a, b Literal) (Literal, bool) {
		x, y, ok := natPair(a, b)
		if !ok {
			return nil, false
		}
		d := y.Big()
		if d.Sign() == 0 {
			return nil, false
		}
		q, r := new(big.Int).QuoRem(x.Big(), d, new(big.Int))
		return NatFromBig(lo.Ternary(rem, r, q)), true
	}
}

func natCmp(pred func(int) bool) binaryFn {
	return func(a, b Literal) (Literal, bool) {
		x, y, ok := natPair(a, b)
		if !ok {
			return nil, false
		}
		return Bool(pred(x.number().Cmp(y.number()))), true
	}
}

func u8Div(x, y U8) (U8, bool) {
	if y == 0 {
		return 0, false
	}
	return x / y, true
}

func u8Mod(x, y U8) (U8, bool) {
	if y == 0 {
		return 0, false
	}
	return x % y, true
}

func u8Arith(fn func(x, y U8) (U8, bool)) binaryFn {
	return func(a, b Literal) (Literal, bool) {
		x, ok1 := a.(U8)
		y, ok2 := b.(U8)
		if !ok1 || !ok2 {
			return nil, false
		}
		r, ok := fn(x, y)
		if !ok {
			return nil, false
		}
		return r, true
	}
}

func u8Cmp(pred func(x, y U8) bool) binaryFn {
	return func(a, b Literal) (Literal, bool) {
		x, ok1 := a.(U8)
		y, ok2 := b.(U8)
		if !ok1 || !ok2 {
			return nil, false
		}
		return Bool(pred(x, y)), true
	}
}

// u8Pow wraps on overflow like the other U8 arithmetic.
func u8Pow(a, b Literal) (Literal, bool) {
	x, ok1 := a.(U8)
	k, ok2 := b.(U32)
	if !ok1 || !ok2 {
		return nil, false
	}
	r, base := U8(1), x
	for e := uint32(k); e > 0; e >>= 1 {
		if e&1 == 1 {
			r *= base
		}
		base *= base
	}
	return r, true
}

// u8Shift takes the shift amount first, then the value being shifted.
func u8Shift(fn func(x uint8, k uint32) uint8) binaryFn {
	return func(a, b Literal) (Literal, bool) {
		k, ok1 := a.(U32)
		x, ok2 := b.(U8)
		if !ok1 || !ok2 {
			return nil, false
		}
		return U8(fn(uint8(x), uint32(k))), true
	}
}

func boolOp(fn func(x, y Bool) Bool) binaryFn {
	return func(a, b Literal) (Literal, bool) {
		x, ok1 := a.(Bool)
		y, ok2 := b.(Bool)
		if !ok1 || !ok2 {
			return nil, false
		}
		return fn(x, y), true
	}
}

// indexArg converts a Nat operand into an index, reporting false when it
// does not fit in an int.
func indexArg(l Literal) (int, bool) {
	n, ok := l.(Nat)
	if !ok {
		return 0, false
	}
	return n.Int()
}

func bitsCons(a, b Literal) (Literal, bool) {
	x, ok1 := a.(Bool)
	xs, ok2 := b.(Bits)
	if !ok1 || !ok2 {
		return nil, false
	}
	return NewBits(append(xs.Bools(), bool(x))), true
}

// bitsSplit splits at the index; an index past the end keeps everything on
// the left.
func bitsSplit(take bool) binaryFn {
	return func(a, b Literal) (Literal, bool) {
		xs, ok := b.(Bits)
		if _, isNat := a.(Nat); !ok || !isNat {
			return nil, false
		}
		all := xs.Bools()
		idx, fits := indexArg(a)
		if !fits || idx > len(all) {
			idx = len(all)
		}
		if take {
			return NewBits(all[:idx]), true
		}
		return NewBits(all[idx:]), true
	}
}

func bitsAppend(a, b Literal) (Literal, bool) {
	xs, ok1 := a.(Bits)
	ys, ok2 := b.(Bits)
	if !ok1 || !ok2 {
		return nil, false
	}
	return NewBits(append(xs.Bools(), ys.Bools()...)), true
}

// bitsRemove leaves the sequence unchanged when the index is out of range.
func bitsRemove(a, b Literal) (Literal, bool) {
	xs, ok := b.(Bits)
	if _, isNat := a.(Nat); !ok || !isNat {
		return nil, false
	}
	all := xs.Bools()
	idx, fits := indexArg(a)
	if !fits || idx >= len(all) {
		return xs, true
	}
	return NewBits(slices.Delete(all, idx, idx+1)), true
}

func bitsIndex(a, b Literal) (Literal, bool) {
	xs, ok := b.(Bits)
	idx, fits := indexArg(a)
	if !ok || !fits || idx >= xs.Len() {
		return nil, false
	}
	return Bool(xs.Bools()[idx]), true
}

func bytesAppend(a, b Literal) (Literal, bool) {
	xs, ok1 := a.(Bytes)
	ys, ok2 := b.(Bytes)
	if !ok1 || !ok2 {
		return nil, false
	}
	out := make(Bytes, 0, len(xs)+len(ys))
	return append(append(out, xs...), ys...), true
}

func bytesIndex(a, b Literal) (Literal, bool) {
	xs, ok := b.(Bytes)
	idx, fits := indexArg(a)
	if !ok || !fits || idx >= len(xs) {
		return nil, false
	}
	return U8(xs[idx]), true
}

func bytesEql(a, b Literal) (Literal, bool) {
	xs, ok1 := a.(Bytes)
	ys, ok2 := b.(Bytes)
	if !ok1 || !ok2 {
		return nil, false
	}
	return Bool(bytes.Equal(xs, ys)), true
}
