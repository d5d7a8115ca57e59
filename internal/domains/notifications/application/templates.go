package application

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/domain"
	orderdomain "github.com/Apurer/food-marketplace-api/internal/domains/orders/domain"
)

const (
	defaultCustomerName   = "Customer"
	defaultRestaurantName = "your restaurant"
	orderDateLayout       = "2 Jan 2006 15:04 MST"
	defaultCurrency       = "usd"
)

var currencySymbols = map[string]string{
	"usd": "$",
	"gbp": "£",
	"eur": "€",
}

var emailStatusMessages = map[string]string{
	"paid":           "Your payment has been confirmed!",
	"inProgress":     "Your order is being prepared!",
	"outForDelivery": "Your order is out for delivery!",
	"delivered":      "Your order has been delivered!",
}

var smsStatusMessages = map[string]string{
	"paid":           "Payment confirmed! Your order is being prepared.",
	"inProgress":     "Your order is being prepared!",
	"outForDelivery": "Your order is out for delivery!",
	"delivered":      "Your order has been delivered! Enjoy your meal!",
}

var extraStatusNotes = map[string]string{
	"outForDelivery": "Your order is on its way! Please be ready to receive it.",
	"delivered":      "We hope you enjoy your meal! Thank you for ordering with us.",
}

type itemLine struct {
	Name     string
	Quantity int64
}

type messageData struct {
	CustomerName  string
	OrderID       string
	ShortOrderID  string
	Restaurant    string
	OrderDate     string
	Status        string
	StatusUpper   string
	StatusMessage string
	StatusNote    string
	Items         []itemLine
	Total         string
	AddressLine1  string
	City          string
}

const confirmationText = `Order Confirmation - {{.Restaurant}}

Hi {{.CustomerName}},

Thank you for your order! We've received your order and it's being prepared.

Order Details:
- Order ID: {{.OrderID}}
- Restaurant: {{.Restaurant}}
- Order Date: {{.OrderDate}}
- Status: {{.Status}}

Items Ordered:
{{range .Items}}  - {{.Name}} x{{.Quantity}}
{{end}}
Total Amount: {{.Total}}

Delivery Address:
{{.AddressLine1}}
{{.City}}

We'll notify you when your order status changes.
`

const confirmationHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h1 style="background-color: #f97316; color: white; padding: 20px; text-align: center;">Order Confirmed!</h1>
  <p>Hi {{.CustomerName}},</p>
  <p>Thank you for your order! We've received your order and it's being prepared.</p>
  <h2>Order Details</h2>
  <p><strong>Order ID:</strong> {{.OrderID}}</p>
  <p><strong>Restaurant:</strong> {{.Restaurant}}</p>
  <p><strong>Order Date:</strong> {{.OrderDate}}</p>
  <p><strong>Status:</strong> {{.Status}}</p>
  <h3>Items Ordered:</h3>
  <ul>{{range .Items}}<li>{{.Name}} x{{.Quantity}}</li>{{end}}</ul>
  <p style="font-size: 18px; font-weight: bold; color: #f97316;">Total Amount: {{.Total}}</p>
  <h3>Delivery Address:</h3>
  <p>{{.AddressLine1}}<br>{{.City}}</p>
  <p>We'll notify you when your order status changes.</p>
  <p style="color: #666; font-size: 12px;">This is an automated email. Please do not reply.</p>
</body>
</html>
`

const statusText = `Order Update - {{.Restaurant}}

Hi {{.CustomerName}},

{{.StatusMessage}}

Status: {{.StatusUpper}}
Order ID: {{.OrderID}}
Restaurant: {{.Restaurant}}
Order Date: {{.OrderDate}}
{{if .StatusNote}}
{{.StatusNote}}
{{end}}
You can track your order status in your account.
`

const statusHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h1 style="background-color: #f97316; color: white; padding: 20px; text-align: center;">Order Update</h1>
  <p>Hi {{.CustomerName}},</p>
  <p>{{.StatusMessage}}</p>
  <div style="display: inline-block; padding: 10px 20px; background-color: #10b981; color: white; font-weight: bold;">Status: {{.StatusUpper}}</div>
  <p><strong>Order ID:</strong> {{.OrderID}}</p>
  <p><strong>Restaurant:</strong> {{.Restaurant}}</p>
  <p><strong>Order Date:</strong> {{.OrderDate}}</p>
  {{if .StatusNote}}<p>{{.StatusNote}}</p>{{end}}
  <p>You can track your order status in your account.</p>
  <p style="color: #666; font-size: 12px;">This is an automated email. Please do not reply.</p>
</body>
</html>
`

const confirmationSMS = `Order Confirmed!

Order ID: {{.ShortOrderID}}
Restaurant: {{.Restaurant}}
Total: {{.Total}}

Your order is being prepared. We'll notify you when it's ready!`

const statusSMS = `Order Update

Order ID: {{.ShortOrderID}}
Restaurant: {{.Restaurant}}
Status: {{.Status}}

{{.StatusMessage}}`

var (
	confirmationTextTmpl = texttemplate.Must(texttemplate.New("confirmation.txt").Parse(confirmationText))
	confirmationHTMLTmpl = htmltemplate.Must(htmltemplate.New("confirmation.html").Parse(confirmationHTML))
	statusTextTmpl       = texttemplate.Must(texttemplate.New("status.txt").Parse(statusText))
	statusHTMLTmpl       = htmltemplate.Must(htmltemplate.New("status.html").Parse(statusHTML))
	confirmationSMSTmpl  = texttemplate.Must(texttemplate.New("confirmation.sms").Parse(confirmationSMS))
	statusSMSTmpl        = texttemplate.Must(texttemplate.New("status.sms").Parse(statusSMS))
)

// FormatMoney renders minor units in the given ISO currency, or a placeholder before payment.
// Currencies without a known symbol are prefixed with their upper-case code.
func FormatMoney(amount *int64, currency string) string {
	if amount == nil {
		return "Pending payment"
	}
	value := decimal.New(*amount, -2).StringFixed(2)
	code := strings.ToLower(strings.TrimSpace(currency))
	if code == "" {
		code = defaultCurrency
	}
	if symbol, ok := currencySymbols[code]; ok {
		return symbol + value
	}
	return strings.ToUpper(code) + " " + value
}

// ShortOrderID returns the last eight characters used in text messages.
func ShortOrderID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}

func newMessageData(req domain.Request, order *orderdomain.Order, restaurantName, customerName, currency string) messageData {
	status := string(order.Status)
	if req.Kind == domain.KindStatusChanged {
		status = req.Status
	}
	items := make([]itemLine, 0, len(order.CartItems))
	for _, item := range order.CartItems {
		items = append(items, itemLine{Name: item.Name, Quantity: item.Quantity})
	}
	message, ok := emailStatusMessages[status]
	if !ok {
		message = "Your order status has been updated."
	}
	return messageData{
		CustomerName:  customerName,
		OrderID:       order.ID,
		ShortOrderID:  ShortOrderID(order.ID),
		Restaurant:    restaurantName,
		OrderDate:     formatTime(order.CreatedAt),
		Status:        status,
		StatusUpper:   strings.ToUpper(status),
		StatusMessage: message,
		StatusNote:    extraStatusNotes[status],
		Items:         items,
		Total:         FormatMoney(order.TotalAmount, currency),
		AddressLine1:  order.DeliveryDetails.AddressLine1,
		City:          order.DeliveryDetails.City,
	}
}

func renderEmail(kind domain.Kind, to string, data messageData) (domain.EmailMessage, error) {
	var text, html bytes.Buffer
	msg := domain.EmailMessage{To: to}
	switch kind {
	case domain.KindOrderConfirmed:
		msg.Subject = "Order Confirmation - " + data.Restaurant
		if err := confirmationTextTmpl.Execute(&text, data); err != nil {
			return msg, err
		}
		if err := confirmationHTMLTmpl.Execute(&html, data); err != nil {
			return msg, err
		}
	default:
		msg.Subject = "Order Update - " + data.Restaurant
		if err := statusTextTmpl.Execute(&text, data); err != nil {
			return msg, err
		}
		if err := statusHTMLTmpl.Execute(&html, data); err != nil {
			return msg, err
		}
	}
	msg.Text = text.String()
	msg.HTML = html.String()
	return msg, nil
}

func renderSMS(kind domain.Kind, to string, data messageData) (domain.SMSMessage, error) {
	var body bytes.Buffer
	tmpl := confirmationSMSTmpl
	if kind == domain.KindStatusChanged {
		tmpl = statusSMSTmpl
		if message, ok := smsStatusMessages[data.Status]; ok {
			data.StatusMessage = message
		}
	}
	if err := tmpl.Execute(&body, data); err != nil {
		return domain.SMSMessage{}, err
	}
	return domain.SMSMessage{To: to, Body: body.String()}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(orderDateLayout)
}
