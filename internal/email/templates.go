package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/ec-storefront/internal/model"
)

type statusCopy struct {
	Title   string
	Message string
}

var statusCopies = map[model.OrderStatus]statusCopy{
	model.OrderStatusPending: {
		Title:   "Order Received",
		Message: "We have received your order and it is being processed.",
	},
	model.OrderStatusProcessing: {
		Title:   "Order Processing",
		Message: "Your order is currently being prepared for shipment.",
	},
	model.OrderStatusShipped: {
		Title:   "Order Shipped",
		Message: "Great news! Your order has been shipped and is on its way to you.",
	},
	model.OrderStatusDelivered: {
		Title:   "Order Delivered",
		Message: "Your order has been successfully delivered. We hope you enjoy your purchase!",
	},
	model.OrderStatusCancelled: {
		Title:   "Order Cancelled",
		Message: "Your order has been cancelled. If you have any questions, please contact our support team.",
	},
}

func statusTemplate(status model.OrderStatus) statusCopy {
	if c, ok := statusCopies[status]; ok {
		return c
	}
	return statusCopy{
		Title:   "Order Update",
		Message: fmt.Sprintf("Your order status is now: %s.", status),
	}
}

func BuildOrderStatusText(orderID string, c statusCopy) string {
	return fmt.Sprintf("%s\n\n%s\n\nOrder number: #%s\n", c.Title, c.Message, ShortOrderID(orderID))
}

func BuildOrderStatusHTML(orderID string, c statusCopy) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #111827; padding: 24px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 22px;">%s</h1>
	</div>
	<div style="background: #fff; padding: 24px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">%s</p>
		<p style="font-size: 14px; color: #666;">Order number</p>
		<p style="font-size: 18px; font-weight: bold; font-family: monospace;">#%s</p>
	</div>
</body>
</html>`, html.EscapeString(c.Title), html.EscapeString(c.Message), ShortOrderID(orderID))
}

func itemName(item model.OrderItem) string {
	if item.Product != nil && item.Product.Name != "" {
		return item.Product.Name
	}
	return item.ProductID
}

func BuildOrderConfirmationText(order *model.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order, %s!\n\n", order.CustomerName())
	fmt.Fprintf(&b, "Order number: #%s\n\n", ShortOrderID(order.ID))
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %s x%d  %s\n", itemName(item), item.Quantity, formatMoney(lineTotal(item)))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", formatMoney(decimal.NewFromFloat(order.TotalAmount)))
	return b.String()
}

func BuildOrderConfirmationHTML(order *model.Order) string {
	var rows strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&rows, `<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>`,
			html.EscapeString(itemName(item)),
			item.Quantity,
			formatMoney(decimal.NewFromFloat(item.Price)),
			formatMoney(lineTotal(item)),
		)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px;">Thank you for your order, %s!</h1>
	<p>Order number <strong style="font-family: monospace;">#%s</strong></p>
	<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
		<thead>
			<tr style="background: #f8f9fa;">
				<th style="padding: 12px; text-align: left;">Product</th>
				<th style="padding: 12px; text-align: center;">Qty</th>
				<th style="padding: 12px; text-align: right;">Price</th>
				<th style="padding: 12px; text-align: right;">Subtotal</th>
			</tr>
		</thead>
		<tbody>
			%s
		</tbody>
	</table>
	<p style="text-align: right; font-size: 20px; font-weight: bold;">Total %s</p>
</body>
</html>`,
		html.EscapeString(order.CustomerName()),
		ShortOrderID(order.ID),
		rows.String(),
		formatMoney(decimal.NewFromFloat(order.TotalAmount)),
	)
}

func lineTotal(item model.OrderItem) decimal.Decimal {
	return decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

func formatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
