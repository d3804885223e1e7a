package bets

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"
)

// RandomSource devolve amostras uniformes em [0, 1)
type RandomSource interface {
	Float64() float64
}

type mathRandSource struct{}

func (mathRandSource) Float64() float64 { return rand.Float64() }

func NewRandomSource() RandomSource { return mathRandSource{} }

// WinProbabilityPercent é a chance de vitória implícita nas odds decimais, em %
func WinProbabilityPercent(odds decimal.Decimal) float64 {
	o := odds.InexactFloat64()
	if o <= 0 {
		return 0
	}
	return 100 / o
}

// wins sorteia o resultado: ganha quando amostra*100 <= 100/odds
func wins(rnd RandomSource, odds decimal.Decimal) bool {
	return rnd.Float64()*100 <= WinProbabilityPercent(odds)
}
