package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const displayTimeLayout = "2006-01-02 15:04:05"

// money renders d with two decimals and thousands separators, e.g. 12,345.60.
func money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}

// amount renders a balance with four decimals.
func amount(d decimal.Decimal) string {
	return d.StringFixed(4)
}

func displayTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(displayTimeLayout)
}

// rate keeps eight decimals for rates below one so small crypto quotes stay readable.
func rate(r float64) string {
	if r < 1 {
		return strconv.FormatFloat(r, 'f', 8, 64)
	}
	return strconv.FormatFloat(r, 'f', 2, 64)
}
