package ledger

import (
	"fmt"
	"math"

	"github.com/Veraticus/swipes/internal/common"
	"github.com/Veraticus/swipes/internal/model"
)

// Debit subtracts total from balance.
//
// A total larger than the balance fails with common.ErrInsufficientFunds and the caller must
// leave the balance unchanged. Amounts are compared in whole cents and the result never
// drops below zero.
func Debit(balance, total float64) (float64, error) {
	if !finite(total) || total < 0 {
		return balance, common.Validationf("purchase total %v must be a finite non-negative amount", total)
	}
	if !finite(balance) {
		return balance, common.Validationf("balance %v is not a finite amount", balance)
	}

	if cents(total) > cents(balance) {
		return balance, fmt.Errorf("%w: total %.2f exceeds balance %.2f",
			common.ErrInsufficientFunds, total, math.Max(balance, 0))
	}

	return math.Max(0, model.Round2(balance-total)), nil
}

// Credit adds amount back to a balance, used when restoring weekly allowances or manual edits.
func Credit(balance, amount float64) float64 {
	return math.Max(0, model.Round2(balance+amount))
}

func cents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
