package keeper

import (
	"fmt"
	"math/big"

	"cosmossdk.io/math"
)

// maxAmount bounds every intermediate value: math.Int panics past 256 bits.
var maxAmount = new(big.Int).Lsh(big.NewInt(1), 256)

// SafeAdd adds two math.Int values with overflow checking
func SafeAdd(a, b math.Int) (math.Int, error) {
	result := new(big.Int).Add(a.BigInt(), b.BigInt())
	if result.Cmp(maxAmount) >= 0 {
		return math.Int{}, fmt.Errorf("overflow: addition result exceeds maximum value")
	}
	return math.NewIntFromBigInt(result), nil
}

// SafeSub subtracts two math.Int values with underflow checking
func SafeSub(a, b math.Int) (math.Int, error) {
	if a.LT(b) {
		return math.Int{}, fmt.Errorf("underflow: cannot subtract %s from %s", b.String(), a.String())
	}
	return a.Sub(b), nil
}

// SafeMul multiplies two math.Int values with overflow checking
func SafeMul(a, b math.Int) (math.Int, error) {
	if a.IsZero() || b.IsZero() {
		return math.ZeroInt(), nil
	}

	result := new(big.Int).Mul(a.BigInt(), b.BigInt())
	if result.Cmp(maxAmount) >= 0 {
		return math.Int{}, fmt.Errorf("overflow: multiplication result exceeds maximum value")
	}
	return math.NewIntFromBigInt(result), nil
}

// SafeMulDiv returns floor(a*b/c). The product is formed on big.Int so only
// the quotient needs to fit.
func SafeMulDiv(a, b, c math.Int) (math.Int, error) {
	if c.IsZero() {
		return math.Int{}, fmt.Errorf("division by zero")
	}

	intermediate := new(big.Int).Mul(a.BigInt(), b.BigInt())
	result := intermediate.Quo(intermediate, c.BigInt())
	if result.Cmp(maxAmount) >= 0 {
		return math.Int{}, fmt.Errorf("overflow: quotient exceeds maximum value")
	}
	return math.NewIntFromBigInt(result), nil
}

// SafeSqrt returns floor(sqrt(a)) for non-negative a.
func SafeSqrt(a math.Int) math.Int {
	if !a.IsPositive() {
		return math.ZeroInt()
	}
	return math.NewIntFromBigInt(new(big.Int).Sqrt(a.BigInt()))
}

// constantProduct returns reserve0*reserve1 without the 256-bit bound.
func constantProduct(reserve0, reserve1 math.Int) *big.Int {
	return new(big.Int).Mul(reserve0.BigInt(), reserve1.BigInt())
}
