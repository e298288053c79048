// Package notify delivers order emails through the external mail function,
// an HTTP endpoint accepting {"to", "subject", "html"} as JSON.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Client posts messages to the mail function.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a Client for the given mail function URL.
func NewClient(url string) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Send posts a single message. The caller decides what to do with the error;
// order creation treats delivery as best-effort.
func (c *Client) Send(ctx context.Context, to, subject, htmlBody string) error {
	body, err := json.Marshal(message{To: to, Subject: subject, HTML: htmlBody})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to mail function: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail function returned status %d", resp.StatusCode)
	}
	return nil
}

// --- Email content ---

// OrderItemSummary is one line of the email item table.
type OrderItemSummary struct {
	ProductName string
	Size        string
	Quantity    int32
	Subtotal    decimal.Decimal
}

// OrderEmailData carries everything the email builders need about an order.
type OrderEmailData struct {
	OrderID         string
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	DeliveryAddress string
	PaymentMethod   string
	DeliveryMethod  string
	Comment         string
	Items           []OrderItemSummary
	Total           decimal.Decimal
}

// AdminOrderEmail builds the subject and HTML body of the new-order
// notification for the shop administrator.
func AdminOrderEmail(d OrderEmailData) (subject, body string) {
	subject = fmt.Sprintf("Новый заказ %s", d.OrderID)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<h2>Новый заказ %s</h2>", html.EscapeString(d.OrderID)))
	sb.WriteString("<p>")
	sb.WriteString(fmt.Sprintf("<b>Покупатель:</b> %s<br>", html.EscapeString(d.CustomerName)))
	sb.WriteString(fmt.Sprintf("<b>Телефон:</b> %s<br>", html.EscapeString(d.CustomerPhone)))
	if d.CustomerEmail != "" {
		sb.WriteString(fmt.Sprintf("<b>Email:</b> %s<br>", html.EscapeString(d.CustomerEmail)))
	}
	if d.DeliveryAddress != "" {
		sb.WriteString(fmt.Sprintf("<b>Адрес доставки:</b> %s<br>", html.EscapeString(d.DeliveryAddress)))
	}
	if d.DeliveryMethod != "" {
		sb.WriteString(fmt.Sprintf("<b>Доставка:</b> %s<br>", html.EscapeString(d.DeliveryMethod)))
	}
	if d.PaymentMethod != "" {
		sb.WriteString(fmt.Sprintf("<b>Оплата:</b> %s<br>", html.EscapeString(d.PaymentMethod)))
	}
	if d.Comment != "" {
		sb.WriteString(fmt.Sprintf("<b>Комментарий:</b> %s<br>", html.EscapeString(d.Comment)))
	}
	sb.WriteString("</p>")
	writeItemTable(&sb, d)

	return subject, sb.String()
}

// CustomerOrderEmail builds the order confirmation sent to the buyer.
func CustomerOrderEmail(d OrderEmailData) (subject, body string) {
	subject = fmt.Sprintf("Ваш заказ %s принят", d.OrderID)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<h2>Спасибо за заказ, %s!</h2>", html.EscapeString(d.CustomerName)))
	sb.WriteString(fmt.Sprintf("<p>Ваш заказ %s принят и скоро будет обработан. Мы свяжемся с вами по телефону %s.</p>",
		html.EscapeString(d.OrderID), html.EscapeString(d.CustomerPhone)))
	writeItemTable(&sb, d)

	return subject, sb.String()
}

func writeItemTable(sb *strings.Builder, d OrderEmailData) {
	sb.WriteString(`<table border="1" cellpadding="6" cellspacing="0">`)
	sb.WriteString("<tr><th>Товар</th><th>Размер</th><th>Кол-во</th><th>Сумма</th></tr>")
	for _, item := range d.Items {
		sb.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%d</td><td>%s ₽</td></tr>",
			html.EscapeString(item.ProductName),
			html.EscapeString(item.Size),
			item.Quantity,
			item.Subtotal.StringFixed(2),
		))
	}
	sb.WriteString("</table>")
	sb.WriteString(fmt.Sprintf("<p><b>Итого: %s ₽</b></p>", d.Total.StringFixed(2)))
}
