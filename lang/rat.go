package lang

import (
	"math"
	"strconv"
)

// Rat is an exact rational number with numerator and denominator bounded to
// int32, mirroring the value model of the language: numerals never degrade to
// floating point, and values outside the representable width are rejected
// rather than wrapped.
//
// Invariants: the denominator is positive and gcd(num, den) == 1. The zero
// value is not valid; use RatFromInt(0).
type Rat struct {
	num int32
	den int32
}

// RatFromInt returns the rational n/1.
func RatFromInt(n int32) Rat {
	return Rat{num: n, den: 1}
}

// NewRat returns the reduced rational num/den.
// A zero denominator or a reduced form outside int32 fails with
// ErrNumeralOverflow.
func NewRat(num, den int64) (Rat, error) {
	return makeRat(num, den)
}

// Num returns the reduced numerator.
func (r Rat) Num() int32 { return r.num }

// Den returns the reduced denominator. It is always positive.
func (r Rat) Den() int32 { return r.den }

// IsInt reports whether the rational is a whole number.
func (r Rat) IsInt() bool { return r.den == 1 }

// IsZero reports whether the rational equals zero.
func (r Rat) IsZero() bool { return r.num == 0 }

// Sign returns -1, 0, or +1 according to the sign of r.
func (r Rat) Sign() int {
	switch {
	case r.num < 0:
		return -1
	case r.num > 0:
		return 1
	default:
		return 0
	}
}

// Cmp compares r and s, returning -1, 0, or +1.
func (r Rat) Cmp(s Rat) int {
	// 32-bit operands: the cross products always fit in int64.
	a := int64(r.num) * int64(s.den)
	b := int64(s.num) * int64(r.den)

	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Float64 returns the nearest float64 approximation of r.
func (r Rat) Float64() float64 {
	return float64(r.num) / float64(r.den)
}

// String renders r as "num" for integers or "num/den" otherwise.
func (r Rat) String() string {
	if r.den == 1 {
		return strconv.FormatInt(int64(r.num), 10)
	}

	return strconv.FormatInt(int64(r.num), 10) +
		"/" + strconv.FormatInt(int64(r.den), 10)
}

// Add returns r + s, or ErrNumeralOverflow if the reduced result does not fit.
func (r Rat) Add(s Rat) (Rat, error) {
	return makeRat(
		int64(r.num)*int64(s.den)+int64(s.num)*int64(r.den),
		int64(r.den)*int64(s.den),
	)
}

// Sub returns r - s, or ErrNumeralOverflow if the reduced result does not fit.
func (r Rat) Sub(s Rat) (Rat, error) {
	return makeRat(
		int64(r.num)*int64(s.den)-int64(s.num)*int64(r.den),
		int64(r.den)*int64(s.den),
	)
}

// Mul returns r * s, or ErrNumeralOverflow if the reduced result does not fit.
func (r Rat) Mul(s Rat) (Rat, error) {
	return makeRat(int64(r.num)*int64(s.num), int64(r.den)*int64(s.den))
}

// Div returns r / s. Division by zero fails with ErrDivisionByZero.
func (r Rat) Div(s Rat) (Rat, error) {
	if s.num == 0 {
		return Rat{}, ErrDivisionByZero
	}

	return makeRat(int64(r.num)*int64(s.den), int64(r.den)*int64(s.num))
}

// Neg returns -r, or ErrNumeralOverflow when negating the minimum numerator.
func (r Rat) Neg() (Rat, error) {
	return makeRat(-int64(r.num), int64(r.den))
}

// Pow raises r to the power s. Whole-number exponents are computed exactly;
// fractional exponents fall back to a float32 approximation converted back to
// a rational, matching the reference behavior.
func (r Rat) Pow(s Rat) (Rat, error) {
	if s.IsInt() {
		return r.powInt(int64(s.num))
	}

	f := float32(math.Pow(r.Float64(), s.Float64()))

	return ratFromFloat32(f)
}

// powInt computes r^e exactly for integer e by repeated checked squaring.
func (r Rat) powInt(e int64) (Rat, error) {
	if e < 0 {
		inv, err := RatFromInt(1).Div(r)
		if err != nil {
			return Rat{}, err
		}

		return inv.powInt(-e)
	}

	acc := RatFromInt(1)
	base := r

	for e > 0 {
		var err error

		if e&1 == 1 {
			acc, err = acc.Mul(base)
			if err != nil {
				return Rat{}, err
			}
		}

		e >>= 1
		if e > 0 {
			base, err = base.Mul(base)
			if err != nil {
				return Rat{}, err
			}
		}
	}

	return acc, nil
}

// makeRat reduces num/den, normalizes the sign onto the numerator, and checks
// the int32 bounds.
func makeRat(num, den int64) (Rat, error) {
	if den == 0 {
		return Rat{}, ErrDivisionByZero
	}

	if den < 0 {
		num, den = -num, -den
	}

	if g := gcd64(abs64(num), den); g > 1 {
		num /= g
		den /= g
	}

	if num < math.MinInt32 || num > math.MaxInt32 || den > math.MaxInt32 {
		return Rat{}, ErrNumeralOverflow
	}

	return Rat{num: int32(num), den: int32(den)}, nil
}

// ratFromFloat32 converts a float32 to an exact rational m/2^k, failing with
// ErrNumeralOverflow when the scaled mantissa or the power-of-two denominator
// does not fit in int32.
func ratFromFloat32(f float32) (Rat, error) {
	f64 := float64(f)
	if math.IsNaN(f64) || math.IsInf(f64, 0) {
		return Rat{}, ErrNumeralOverflow
	}

	if f64 == 0 {
		return RatFromInt(0), nil
	}

	// f = frac * 2^exp with frac in [0.5, 1). A float32 mantissa has 24 bits,
	// so m below is exact.
	frac, exp := math.Frexp(f64)
	m := int64(frac * (1 << 24))
	exp -= 24

	for m != 0 && m&1 == 0 && exp < 0 {
		m >>= 1
		exp++
	}

	if exp >= 0 {
		if exp > 30 {
			return Rat{}, ErrNumeralOverflow
		}

		return makeRat(m<<uint(exp), 1)
	}

	if -exp > 30 {
		return Rat{}, ErrNumeralOverflow
	}

	return makeRat(m, 1<<uint(-exp))
}

func gcd64(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}

	if a == 0 {
		return 1
	}

	return a
}

func abs64(a int64) int64 {
	if a < 0 {
		return -a
	}

	return a
}
