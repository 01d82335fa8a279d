package numbering

import "time"

var romanMonths = [...]string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII"}

// RomanMonth renders a month as an upper-case Roman numeral.
func RomanMonth(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return romanMonths[m-1]
}

func monthFromRoman(raw string) (time.Month, bool) {
	for i, r := range romanMonths {
		if r == raw {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}
