package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RoundMoney rounds to two decimals.
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// FormatRupees renders an amount with thousand separators, e.g. "Rs. 12,500.00".
func FormatRupees(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	whole := int64(amount)
	frac := int64(math.Round((amount - float64(whole)) * 100))
	if frac == 100 {
		whole++
		frac = 0
	}
	return fmt.Sprintf("%sRs. %s.%02d", sign, formatThousand(whole), frac)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
