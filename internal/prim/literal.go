package prim

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/nukata/goarith"
)

// Family names the type a literal or operator belongs to.
type Family string

const (
	FamilyNat   Family = "Nat"
	FamilyU8    Family = "U8"
	FamilyU32   Family = "U32"
	FamilyBool  Family = "Bool"
	FamilyBits  Family = "Bits"
	FamilyBytes Family = "Bytes"
)

var (
	ErrInvalidLiteral  = errors.New("invalid literal")
	ErrUnknownOperator = errors.New("unknown operator")
)

// Literal is a boxed primitive value. Implementations are immutable.
type Literal interface {
	Family() Family
	// String renders the literal in surface syntax.
	String() string
}

// Nat is an arbitrary precision natural number.
type Nat struct {
	v goarith.Number
}

// NatFromBig returns z as a Nat. z must not be negative.
func NatFromBig(z *big.Int) Nat {
	return Nat{v: goarith.AsNumber(new(big.Int).Set(z))}
}

// NatFromUint64 returns u as a Nat.
func NatFromUint64(u uint64) Nat {
	return NatFromBig(new(big.Int).SetUint64(u))
}

func (n Nat) number() goarith.Number {
	if n.v == nil {
		return goarith.AsNumber(new(big.Int))
	}
	return n.v
}

// Big returns the value as a fresh *big.Int.
func (n Nat) Big() *big.Int {
	z, ok := new(big.Int).SetString(n.number().String(), 10)
	if !ok {
		return new(big.Int)
	}
	return z
}

// Int returns the value as an int when it fits.
func (n Nat) Int() (int, bool) {
	z := n.Big()
	if !z.IsInt64() || z.Int64() > int64(^uint(0)>>1) {
		return 0, false
	}
	return int(z.Int64()), true
}

func (Nat) Family() Family   { return FamilyNat }
func (n Nat) String() string { return n.number().String() }

// U8 is an unsigned 8-bit integer.
type U8 uint8

func (U8) Family() Family   { return FamilyU8 }
func (x U8) String() string { return strconv.FormatUint(uint64(x), 10) + "u8" }

// U32 is an unsigned 32-bit integer.
type U32 uint32

func (U32) Family() Family   { return FamilyU32 }
func (x U32) String() string { return strconv.FormatUint(uint64(x), 10) + "u32" }

// Bool is a boolean.
type Bool bool

func (Bool) Family() Family { return FamilyBool }
func (b Bool) String() string {
	if b {
		return "#true"
	}
	return "#false"
}

// Bits is a bit sequence, stored packed. The last bit is the head.
type Bits struct {
	n      int
	packed []byte
}

// NewBits packs bits into a Bits literal.
func NewBits(bits []bool) Bits {
	n, packed := BitsToBytes(bits)
	return Bits{n: n, packed: packed}
}

// Bools unpacks the sequence.
func (b Bits) Bools() []bool { return BytesToBits(b.n, b.packed) }

// Len is the number of bits in the sequence.
func (b Bits) Len() int { return b.n }

func (Bits) Family() Family { return FamilyBits }
func (b Bits) String() string {
	var sb strings.Builder
	sb.WriteString("#b")
	for _, bit := range b.Bools() {
		if bit {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Bytes is a byte string.
type Bytes []byte

func (Bytes) Family() Family   { return FamilyBytes }
func (b Bytes) String() string { return "#x" + hex.EncodeToString(b) }

// ParseNumber parses a NUMBER token: decimal digits with an optional u8 or
// u32 width suffix. Without a suffix the literal is a Nat.
func ParseNumber(text string) (Literal, error) {
	digits, suffix := text, ""
	if i := strings.IndexFunc(text, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
		digits, suffix = text[:i], text[i:]
	}
	if digits == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLiteral, text)
	}

	switch suffix {
	case "":
		z, ok := new(big.Int).SetString(digits, 10)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLiteral, text)
		}
		return NatFromBig(z), nil
	case "u8":
		v, err := strconv.ParseUint(digits, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: %q does not fit in U8", ErrInvalidLiteral, text)
		}
		return U8(v), nil
	case "u32":
		v, err := strconv.ParseUint(digits, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q does not fit in U32", ErrInvalidLiteral, text)
		}
		return U32(v), nil
	default:
		return nil, fmt.Errorf("%w: unknown suffix %q", ErrInvalidLiteral, suffix)
	}
}

// ParseHashLiteral parses the literal forms introduced by '#':
// #true, #false, #b<binary digits> and #x<hex digits>.
func ParseHashLiteral(text string) (Literal, error) {
	body, ok := strings.CutPrefix(text, "#")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLiteral, text)
	}

	switch {
	case body == "true":
		return Bool(true), nil
	case body == "false":
		return Bool(false), nil
	case strings.HasPrefix(body, "b"):
		digits := body[1:]
		bits := make([]bool, 0, len(digits))
		for _, r := range digits {
			switch r {
			case '0':
				bits = append(bits, false)
			case '1':
				bits = append(bits, true)
			default:
				return nil, fmt.Errorf("%w: %q is not a binary digit", ErrInvalidLiteral, r)
			}
		}
		return NewBits(bits), nil
	case strings.HasPrefix(body, "x"):
		raw, err := hex.DecodeString(body[1:])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidLiteral, text, err)
		}
		return Bytes(raw), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidLiteral, text)
	}
}

// Equal reports whether two literals have the same family and value.
func Equal(a, b Literal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Family() == b.Family() && a.String() == b.String()
}
