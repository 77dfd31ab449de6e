// Package notify formats order notifications and delivers them to the
// WhatsApp Cloud API.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/fairyhunter13/order-notify-relay/internal/model"
)

const (
	guestCustomerName = "Guest Customer"
	notAvailable      = "N/A"
	shippingFallback  = "No shipping address provided"
	timeFallback      = "unknown time"

	// maxItemLines bounds the rendered item list so a large order does not
	// produce an unreadable message.
	maxItemLines = 5

	timeLayout = "02/01/2006 15:04"
)

// FormatOrderMessage renders an order as the WhatsApp notification text.
// It is a pure function: deterministic for a given order, store label and
// display timezone, with no I/O. Missing optional fields degrade to fixed
// placeholders; an empty line-item list renders as an empty section.
func FormatOrderMessage(o model.Order, store string, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛒 *New Order #%d*\n\n", o.OrderNumber)
	fmt.Fprintf(&b, "*Customer:* %s\n", customerName(o.Customer))
	fmt.Fprintf(&b, "*Email:* %s\n", customerField(o.Customer, func(c *model.Customer) string { return c.Email }))
	fmt.Fprintf(&b, "*Phone:* %s\n", customerField(o.Customer, func(c *model.Customer) string { return c.Phone }))
	fmt.Fprintf(&b, "*Total:* %s %s\n\n", o.Currency, o.TotalPrice)
	fmt.Fprintf(&b, "*Items (%d):*\n%s\n\n", len(o.LineItems), itemLines(o.LineItems, o.Currency))
	fmt.Fprintf(&b, "*Shipping Address:*\n%s\n\n", shippingBlock(o.ShippingAddress))
	fmt.Fprintf(&b, "*Placed:* %s\n", displayTime(o.CreatedAt, loc))
	fmt.Fprintf(&b, "— %s", store)
	return b.String()
}

func customerName(c *model.Customer) string {
	if c == nil {
		return guestCustomerName
	}
	name := strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
	if name == "" {
		return guestCustomerName
	}
	return name
}

func customerField(c *model.Customer, get func(*model.Customer) string) string {
	if c == nil {
		return notAvailable
	}
	v := strings.TrimSpace(get(c))
	if v == "" {
		return notAvailable
	}
	return v
}

func itemLines(items []model.LineItem, currency string) string {
	shown := items
	if len(shown) > maxItemLines {
		shown = shown[:maxItemLines]
	}
	lines := make([]string, 0, len(shown)+1)
	for _, it := range shown {
		lines = append(lines, fmt.Sprintf("%s (Qty: %d) - %s %s", it.Title, it.Quantity, currency, it.Price))
	}
	if rest := len(items) - len(shown); rest > 0 {
		lines = append(lines, fmt.Sprintf("...and %d more item(s)", rest))
	}
	return strings.Join(lines, "\n")
}

func shippingBlock(a *model.Address) string {
	if a == nil {
		return shippingFallback
	}
	lines := []string{
		a.Address1,
		fmt.Sprintf("%s, %s %s", a.City, a.Province, a.Zip),
		a.Country,
	}
	return strings.Join(lines, "\n")
}

func displayTime(createdAt string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(createdAt))
	if err != nil {
		return timeFallback
	}
	return ts.In(loc).Format(timeLayout)
}
