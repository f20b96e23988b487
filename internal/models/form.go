package models

import "strconv"

// Trade-form arithmetic. Inputs and outputs are the decimal strings the
// form fields hold; an unparsable or empty input yields "".

// OrderValue is price × quantity, 1 decimal.
func OrderValue(price, quantity string) string {
	p, err1 := strconv.ParseFloat(price, 64)
	q, err2 := strconv.ParseFloat(quantity, 64)
	if err1 != nil || err2 != nil {
		return ""
	}
	return strconv.FormatFloat(p*q, 'f', 1, 64)
}

// QuantityForValue is order value ÷ price, 4 decimals.
func QuantityForValue(value, price string) string {
	v, err1 := strconv.ParseFloat(value, 64)
	p, err2 := strconv.ParseFloat(price, 64)
	if err1 != nil || err2 != nil || p == 0 {
		return ""
	}
	return strconv.FormatFloat(v/p, 'f', 4, 64)
}
