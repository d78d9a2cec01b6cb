package checkout

import (
	"net/url"
	"strings"
	"testing"

	"github.com/fjod/phone_store/internal/domain"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestComposer(t *testing.T) *Composer {
	t.Helper()
	c, err := NewComposer("919999999999")
	require.NoError(t, err)
	return c
}

func twoItemCart() []domain.CartLineItem {
	return []domain.CartLineItem{
		{ID: "p1", Name: "iPhone 12", Price: 20000, Quantity: 1},
		{ID: "p2", Name: "Galaxy S21", Price: 12500, Quantity: 2},
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "₹0", FormatPrice(0))
	assert.Equal(t, "₹999", FormatPrice(999))
	assert.Equal(t, "₹1,000", FormatPrice(1000))
	assert.Equal(t, "₹20,000", FormatPrice(20000))
	assert.Equal(t, "₹25,000", FormatPrice(25000))
}

func TestRenderMessage_Golden(t *testing.T) {
	c := newTestComposer(t)

	msg := c.RenderMessage(twoItemCart(), "Rahul", "9876543210")

	g := goldie.New(t)
	g.Assert(t, "whatsapp_message", []byte(msg))
}

func TestGenerateCheckoutMessage_Scenario(t *testing.T) {
	c := newTestComposer(t)
	items := []domain.CartLineItem{{ID: "p1", Name: "iPhone 12", Price: 20000, Quantity: 1}}

	link := c.GenerateCheckoutMessage(items, "Rahul", "9876543210")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "wa.me", u.Host)
	assert.Equal(t, "/919999999999", u.Path)

	text := u.Query().Get("text")
	assert.Equal(t, c.RenderMessage(items, "Rahul", "9876543210"), text)
	for _, want := range []string{"iPhone 12", "₹20,000", "Total", "Rahul", "9876543210"} {
		assert.Contains(t, text, want)
	}
}

func TestGenerateCheckoutMessage_EncodesLikeURIComponent(t *testing.T) {
	c := newTestComposer(t)
	items := []domain.CartLineItem{{ID: "p1", Name: "Note 10 & Pro+ #1?", Price: 100, Quantity: 1}}

	link := c.GenerateCheckoutMessage(items, "Asha Rao", "9876543210")

	query := link[strings.Index(link, "?")+1:]
	assert.NotContains(t, query, " ")
	assert.NotContains(t, query, "+", "spaces are %20 and plus signs are escaped")
	assert.Contains(t, query, "%20")
	assert.Equal(t, 1, strings.Count(link, "?"))

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Contains(t, u.Query().Get("text"), "Note 10 & Pro+ #1?")
	assert.Contains(t, u.Query().Get("text"), "Name: Asha Rao")
}

func TestGenerateCheckoutMessage_Deterministic(t *testing.T) {
	c := newTestComposer(t)

	a := c.GenerateCheckoutMessage(twoItemCart(), "Rahul", "9876543210")
	b := c.GenerateCheckoutMessage(twoItemCart(), "Rahul", "9876543210")

	assert.Equal(t, a, b)
}

func TestRenderMessage_EmptyCart(t *testing.T) {
	c := newTestComposer(t)

	msg := c.RenderMessage(nil, "Rahul", "9876543210")

	assert.Contains(t, msg, "*Total: ₹0*")
	assert.NotContains(t, msg, "1. ")
}

func TestResolveDestination(t *testing.T) {
	dest, err := ResolveDestination(" +919812345678 ", true)
	require.NoError(t, err)
	assert.Equal(t, "919812345678", dest)

	dest, err = ResolveDestination("", false)
	require.NoError(t, err)
	assert.Equal(t, DevDestination, dest)

	_, err = ResolveDestination("", true)
	assert.ErrorIs(t, err, ErrDestinationNotConfigured)
}

func TestNewComposer_RequiresDestination(t *testing.T) {
	_, err := NewComposer("")
	assert.ErrorIs(t, err, ErrDestinationNotConfigured)
}
