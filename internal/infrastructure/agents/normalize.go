package agents

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"2006/01/02",
	"02 January 2006",
	"2 January 2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

// NormalizeDate parses the common formats seen on hospital paperwork and
// returns the ISO form. Day-first formats win over month-first, matching
// the source documents' locale.
func NormalizeDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

var amountReplacer = strings.NewReplacer(
	"₹", "",
	"Rs.", "",
	"Rs", "",
	"rs.", "",
	"rs", "",
	"INR", "",
	"inr", "",
	"$", "",
	",", "",
	"/-", "",
	" ", "",
)

// ParseAmount strips currency symbols and locale separators and parses the
// remainder as a decimal.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := amountReplacer.Replace(strings.TrimSpace(raw))
	if s == "" {
		return decimal.Decimal{}, false
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return amount, true
}
