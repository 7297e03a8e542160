package mailer

import (
	"fmt"
	"html"
	"strings"

	"github.com/amazing-outfits/shop-backend/internal/entities"
)

func renderConfirmation(order entities.Order) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<h2 style="color: #333;">Order Confirmation</h2>`)
	fmt.Fprintf(&b, "<p>Dear %s,</p>", html.EscapeString(customerName(order)))
	b.WriteString("<p>Thank you for your order! Here are the details:</p>")

	section(&b, "Order Details",
		fmt.Sprintf("<p><strong>Order Number:</strong> %s</p>", html.EscapeString(order.OrderNumber)),
		fmt.Sprintf("<p><strong>Total Amount:</strong> %s</p>", naira(order.Total)),
		fmt.Sprintf("<p><strong>Status:</strong> %s</p>", order.Status),
	)
	section(&b, "Items Ordered",
		fmt.Sprintf(`<pre style="white-space: pre-line;">%s</pre>`, itemLines(order.Items)),
	)
	writeAddress(&b, order.ShippingAddress)

	b.WriteString("<p>If you have any questions, please contact our support team.</p>")
	b.WriteString("<p>Best regards,<br>Amazing Outfits Team</p></div>")
	return b.String()
}

func renderStatusUpdate(order entities.Order) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<h2 style="color: #333;">Order Status Update</h2>`)
	fmt.Fprintf(&b, "<p>Dear %s,</p>", html.EscapeString(customerName(order)))
	b.WriteString("<p>Your order status has been updated. Here are the details:</p>")

	section(&b, "Order Details",
		fmt.Sprintf("<p><strong>Order Number:</strong> %s</p>", html.EscapeString(order.OrderNumber)),
		fmt.Sprintf("<p><strong>Status:</strong> %s</p>", order.Status),
		fmt.Sprintf("<p><strong>Total Amount:</strong> %s</p>", naira(order.Total)),
	)
	section(&b, "Items Ordered",
		fmt.Sprintf(`<pre style="white-space: pre-line;">%s</pre>`, itemLines(order.Items)),
	)
	writeAddress(&b, order.ShippingAddress)

	b.WriteString("<p>If you have any questions, please contact our support team.</p>")
	b.WriteString("<p>Best regards,<br>Amazing Outfits Team</p></div>")
	return b.String()
}

func section(b *strings.Builder, title string, lines ...string) {
	b.WriteString(`<div style="background-color: #f9f9f9; padding: 20px; margin: 20px 0;">`)
	fmt.Fprintf(b, "<h3>%s</h3>", title)
	for _, line := range lines {
		b.WriteString(line)
	}
	b.WriteString("</div>")
}

func writeAddress(b *strings.Builder, a entities.ShippingAddress) {
	section(b, "Shipping Address",
		fmt.Sprintf("<p>%s</p>", html.EscapeString(a.FullName)),
		fmt.Sprintf("<p>%s</p>", html.EscapeString(a.AddressLine1)),
		fmt.Sprintf("<p>%s, %s</p>", html.EscapeString(a.City), html.EscapeString(a.County)),
		fmt.Sprintf("<p>%s</p>", html.EscapeString(a.Phone)),
	)
}

func itemLines(items []entities.Item) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%dx %s - %s",
			it.Quantity, html.EscapeString(it.ProductName), naira(it.LineTotal())))
	}
	return strings.Join(lines, "\n")
}

func customerName(order entities.Order) string {
	if order.CustomerName != "" {
		return order.CustomerName
	}
	return "Customer"
}

// naira formats a kobo amount as ₦.
func naira(kobo int64) string {
	return fmt.Sprintf("₦%d.%02d", kobo/100, kobo%100)
}
