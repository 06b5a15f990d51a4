package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// TokenAmount is an integer amount in the smallest unit of a token.
type TokenAmount struct {
	Amount   *big.Int
	Decimals int32
	Symbol   string
}

// NewTokenAmount ...
func NewTokenAmount(amount *big.Int, chain ChainID) TokenAmount {
	if amount == nil {
		amount = new(big.Int)
	}
	return TokenAmount{
		Amount:   new(big.Int).Set(amount),
		Decimals: chain.Decimals(),
		Symbol:   chain.Symbol(),
	}
}

// Decimal returns the amount in whole units.
func (a TokenAmount) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(a.Amount, -a.Decimals)
}

func (a TokenAmount) String() string {
	return a.Decimal().String() + " " + a.Symbol
}

// ParseTokenAmount converts a decimal string in whole units to the integer
// amount in the smallest unit of chain's token.
func ParseTokenAmount(s string, chain ChainID) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, ErrInvalidAmount
	}
	shifted := d.Shift(chain.Decimals())
	if !shifted.IsInteger() || shifted.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	return shifted.BigInt(), nil
}
