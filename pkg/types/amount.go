package types

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/bsoncore"
)

// Amount is a fixed-point monetary value. The source represented values as
// 64-bit floats, which is a latent bug for anything that sums many of them
// (see design notes on floating-point value arithmetic). Amount instead
// wraps shopspring/decimal, rounded to AmountScale places at every
// arithmetic boundary, so summation and comparison are exact.
//
// AmountScale of 8 mirrors a satoshi-style smallest unit: 10^-8 of the base
// unit, per the suggested default for the unspecified smallest-unit choice.
const AmountScale = 8

// Amount is a decimal value clamped to AmountScale fractional digits.
type Amount struct {
	d decimal.Decimal
}

// Zero is the additive identity.
var Zero = Amount{d: decimal.Zero}

// NewAmount builds an Amount from an integer count of whole units.
func NewAmount(whole int64) Amount {
	return Amount{d: decimal.NewFromInt(whole).Round(AmountScale)}
}

// NewAmountFromFloat builds an Amount from a float64, rounding to AmountScale.
// Intended for literal constants in tests and config, not for summation.
func NewAmountFromFloat(f float64) Amount {
	return Amount{d: decimal.NewFromFloat(f).Round(AmountScale)}
}

// ParseAmount parses a decimal string such as "19.00000001".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Amount{d: d.Round(AmountScale)}, nil
}

func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d).Round(AmountScale)}
}

func (a Amount) Sub(b Amount) Amount {
	return Amount{d: a.d.Sub(b.d).Round(AmountScale)}
}

// Mul multiplies by another Amount (used for amount*price in settlement).
func (a Amount) Mul(b Amount) Amount {
	return Amount{d: a.d.Mul(b.d).Round(AmountScale)}
}

// DivInt64 divides by an integer divisor, e.g. halving a reward.
func (a Amount) DivInt64(n int64) Amount {
	if n == 0 {
		return Zero
	}
	return Amount{d: a.d.Div(decimal.NewFromInt(n)).Round(AmountScale)}
}

// DivPow2 divides by 2^n, used by the halving reward schedule where n can
// exceed what fits in an int64 divisor.
func (a Amount) DivPow2(n uint) Amount {
	divisor := decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), n), 0)
	return Amount{d: a.d.Div(divisor).Round(AmountScale)}
}

func (a Amount) Cmp(b Amount) int {
	return a.d.Cmp(b.d)
}

func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

func (a Amount) IsPositive() bool {
	return a.d.Sign() > 0
}

func (a Amount) IsNegative() bool {
	return a.d.Sign() < 0
}

// GreaterThanOrEqual reports whether a >= b.
func (a Amount) GreaterThanOrEqual(b Amount) bool {
	return a.d.Cmp(b.d) >= 0
}

// LessThan reports whether a < b.
func (a Amount) LessThan(b Amount) bool {
	return a.d.Cmp(b.d) < 0
}

func (a Amount) String() string {
	return a.d.StringFixed(AmountScale)
}

func (a Amount) Float64() float64 {
	f, _ := a.d.Float64()
	return f
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return a.d.MarshalJSON()
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	if err := a.d.UnmarshalJSON(data); err != nil {
		return err
	}
	a.d = a.d.Round(AmountScale)
	return nil
}

// MarshalBSONValue encodes the amount as a decimal string, so the document
// store's view of an Amount matches its JSON view rather than exposing the
// unexported decimal internals.
func (a Amount) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bsontype.String, bsoncore.AppendString(nil, a.d.String()), nil
}

func (a *Amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t != bsontype.String {
		return fmt.Errorf("amount: unexpected bson type %s", t)
	}
	s, _, ok := bsoncore.ReadString(data)
	if !ok {
		return fmt.Errorf("amount: malformed bson string value")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("amount: parse bson value %q: %w", s, err)
	}
	a.d = d.Round(AmountScale)
	return nil
}
