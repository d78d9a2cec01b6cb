package checkout

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/fjod/phone_store/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	whatsAppBaseURL = "https://wa.me/"

	// DevDestination is used outside production when ADMIN_WHATSAPP is unset.
	DevDestination = "917906829339"
)

var ErrDestinationNotConfigured = errors.New("checkout destination (ADMIN_WHATSAPP) is not configured")

var rupees = message.NewPrinter(language.MustParse("en-IN"))

// FormatPrice renders an amount the way the storefront shows it: ₹1,50,000.
func FormatPrice(amount int64) string {
	return "₹" + rupees.Sprintf("%d", amount)
}

// ResolveDestination picks the WhatsApp number checkout links point at.
func ResolveDestination(configured string, production bool) (string, error) {
	dest := strings.TrimPrefix(strings.TrimSpace(configured), "+")
	if dest != "" {
		return dest, nil
	}
	if production {
		return "", ErrDestinationNotConfigured
	}
	return DevDestination, nil
}

// Composer turns a cart into a WhatsApp deep link. It holds no state besides
// the destination and is safe for concurrent use.
type Composer struct {
	destination string
}

func NewComposer(destination string) (*Composer, error) {
	if destination == "" {
		return nil, ErrDestinationNotConfigured
	}
	return &Composer{destination: destination}, nil
}

func (c *Composer) Destination() string {
	return c.destination
}

// RenderMessage builds the pre-filled message text.
func (c *Composer) RenderMessage(items []domain.CartLineItem, customerName, customerPhone string) string {
	var b strings.Builder

	b.WriteString("Hi, I'm interested in buying:\n\n")

	var total int64
	for i, item := range items {
		subtotal := item.Subtotal()
		total += subtotal

		fmt.Fprintf(&b, "%d. %s\n", i+1, item.Name)
		fmt.Fprintf(&b, "   Price: %s\n", FormatPrice(item.Price))
		fmt.Fprintf(&b, "   Quantity: %d\n", item.Quantity)
		fmt.Fprintf(&b, "   Subtotal: %s\n\n", FormatPrice(subtotal))
	}

	fmt.Fprintf(&b, "*Total: %s*\n\n", FormatPrice(total))

	b.WriteString("Customer Details:\n")
	fmt.Fprintf(&b, "Name: %s\n", customerName)
	fmt.Fprintf(&b, "Phone: %s", customerPhone)

	return b.String()
}

// GenerateCheckoutMessage returns https://wa.me/<destination>?text=<message>.
func (c *Composer) GenerateCheckoutMessage(items []domain.CartLineItem, customerName, customerPhone string) string {
	text := c.RenderMessage(items, customerName, customerPhone)
	return whatsAppBaseURL + url.PathEscape(c.destination) + "?text=" + encodeText(text)
}

// encodeText percent-encodes like encodeURIComponent: spaces become %20
// rather than '+'.
func encodeText(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
