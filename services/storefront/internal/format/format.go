// Package format renders prices and delivery estimates for storefront output.
package format

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Price renders an amount in minor units with a space as the thousands
// separator: 1234567 becomes "1 234 567".
func Price(amount int64) string {
	return strings.ReplaceAll(printer.Sprintf("%d", amount), ",", " ")
}

// Rub renders an amount followed by the rouble suffix.
func Rub(amount int64) string {
	return Price(amount) + " руб."
}

// Delivery window in days from today.
const (
	MinDeliveryDays = 1
	MaxDeliveryDays = 3
)

var monthsGenitive = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// DeliveryWindow renders the expected delivery range counted from now, e.g.
// "18-20 октября" or "30 октября - 1 ноября" when it crosses a month.
func DeliveryWindow(now time.Time) string {
	from := now.AddDate(0, 0, MinDeliveryDays)
	to := now.AddDate(0, 0, MaxDeliveryDays)

	fromMonth := monthsGenitive[from.Month()-1]
	toMonth := monthsGenitive[to.Month()-1]

	switch {
	case from.Month() != to.Month():
		return fmt.Sprintf("%d %s - %d %s", from.Day(), fromMonth, to.Day(), toMonth)
	case from.Day() == to.Day():
		return fmt.Sprintf("%d %s", from.Day(), fromMonth)
	default:
		return fmt.Sprintf("%d-%d %s", from.Day(), to.Day(), fromMonth)
	}
}
