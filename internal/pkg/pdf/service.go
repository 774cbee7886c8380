// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/sameday-checkout/internal/config"
	"github.com/your-org/sameday-checkout/internal/domain/order"
)

// Service handles receipt PDF generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// GenerateReceipt generates a PDF receipt for an order
func (s *Service) GenerateReceipt(o *order.Order) (*bytes.Buffer, error) {
	data := ReceiptData{
		ReceiptNumber: fmt.Sprintf("RCPT-%s", o.OrderNumber),
		ReceiptDate:   time.Now().Format("January 2, 2006"),
		Order:         o,
		Store: StoreInfo{
			Name:    s.config.App.StoreName,
			Address: s.config.App.StoreAddress,
			Phone:   s.config.App.StorePhone,
			Email:   s.config.App.StoreEmail,
		},
	}

	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

var receiptFuncs = template.FuncMap{
	"dollars": func(cents int64) string {
		return fmt.Sprintf("$%.2f", float64(cents)/100)
	},
	"title": func(s string) string {
		return strings.Title(strings.ReplaceAll(s, "_", " "))
	},
}

func (s *Service) generateHTML(data ReceiptData) (string, error) {
	tmpl := template.Must(template.New("receipt").Funcs(receiptFuncs).Parse(receiptTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// ReceiptData represents the data passed to the receipt template
type ReceiptData struct {
	ReceiptNumber string       `json:"receipt_number"`
	ReceiptDate   string       `json:"receipt_date"`
	Order         *order.Order `json:"order"`
	Store         StoreInfo    `json:"store"`
}

// StoreInfo represents store information
type StoreInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Receipt HTML template
const receiptTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.ReceiptNumber}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            color: #333;
        }
        .header {
            display: flex;
            justify-content: space-between;
            margin-bottom: 30px;
            border-bottom: 2px solid #eee;
            padding-bottom: 20px;
        }
        .store-info {
            flex: 1;
        }
        .receipt-info {
            text-align: right;
            flex: 1;
        }
        .receipt-title {
            font-size: 28px;
            font-weight: bold;
            color: #16a34a;
            margin-bottom: 10px;
        }
        .delivery-details {
            margin-bottom: 30px;
        }
        .delivery-details table {
            width: 100%;
        }
        .delivery-details td {
            padding: 5px 0;
            vertical-align: top;
        }
        .delivery-details .label {
            font-weight: bold;
            width: 150px;
        }
        .section-title {
            font-size: 16px;
            font-weight: bold;
            margin-bottom: 10px;
            color: #374151;
        }
        .items-table {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 30px;
        }
        .items-table th,
        .items-table td {
            border: 1px solid #ddd;
            padding: 12px 8px;
            text-align: left;
        }
        .items-table th {
            background-color: #f8f9fa;
            font-weight: bold;
        }
        .items-table .qty-col,
        .items-table .price-col,
        .items-table .total-col {
            text-align: right;
            width: 80px;
        }
        .totals {
            float: right;
            width: 300px;
        }
        .totals table {
            width: 100%;
            border-collapse: collapse;
        }
        .totals td {
            padding: 8px;
            border-bottom: 1px solid #eee;
        }
        .totals .label {
            text-align: right;
            font-weight: bold;
        }
        .totals .amount {
            text-align: right;
            width: 100px;
        }
        .total-row {
            font-size: 18px;
            font-weight: bold;
            border-top: 2px solid #333 !important;
        }
        .footer {
            margin-top: 50px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            text-align: center;
            color: #666;
            font-size: 12px;
        }
    </style>
</head>
<body>
    <div class="header">
        <div class="store-info">
            <h1>{{.Store.Name}}</h1>
            <p>{{.Store.Address}}</p>
            <p>Phone: {{.Store.Phone}}</p>
            <p>Email: {{.Store.Email}}</p>
        </div>
        <div class="receipt-info">
            <div class="receipt-title">RECEIPT</div>
            <p><strong>Receipt #:</strong> {{.ReceiptNumber}}</p>
            <p><strong>Date:</strong> {{.ReceiptDate}}</p>
            <p><strong>Order #:</strong> {{.Order.OrderNumber}}</p>
        </div>
    </div>

    <div class="delivery-details">
        <table>
            <tr>
                <td class="label">Order Date:</td>
                <td>{{.Order.CreatedAt.Format "January 2, 2006"}}</td>
                <td class="label" style="text-align: right;">Status:</td>
                <td style="text-align: right;">{{title (printf "%s" .Order.Status)}}</td>
            </tr>
            <tr>
                <td class="label">Deliver To:</td>
                <td>{{.Order.CustomerName}}, {{.Order.AddressText}} ({{title .Order.Borough}})</td>
                <td class="label" style="text-align: right;">Delivery Tier:</td>
                <td style="text-align: right;">{{title .Order.DeliveryTier}}</td>
            </tr>
            {{if .Order.ScheduledAt}}
            <tr>
                <td class="label">Scheduled For:</td>
                <td>{{.Order.ScheduledAt.Format "January 2, 2006 at 15:04"}}</td>
                <td></td>
                <td></td>
            </tr>
            {{end}}
        </table>
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Item</th>
                <th class="qty-col">Qty</th>
                <th class="price-col">Price</th>
                <th class="total-col">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td>
                    <strong>{{.Name}}</strong>
                    {{if .SelectedWeight}}<br><small>{{.SelectedWeight}}</small>{{end}}
                </td>
                <td class="qty-col">{{.Quantity}}</td>
                <td class="price-col">{{dollars .Price}}</td>
                <td class="total-col">{{dollars .TotalPrice}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr>
                <td class="label">Subtotal:</td>
                <td class="amount">{{dollars .Order.SubtotalAmount}}</td>
            </tr>
            <tr>
                <td class="label">Delivery Fee:</td>
                <td class="amount">{{dollars .Order.DeliveryFeeAmount}}</td>
            </tr>
            {{if gt .Order.DiscountAmount 0}}
            <tr>
                <td class="label">{{title .Order.DiscountKind}} Discount:</td>
                <td class="amount">-{{dollars .Order.DiscountAmount}}</td>
            </tr>
            {{end}}
            {{if gt .Order.CouponDiscountAmount 0}}
            <tr>
                <td class="label">Coupon {{.Order.CouponCode}}:</td>
                <td class="amount">-{{dollars .Order.CouponDiscountAmount}}</td>
            </tr>
            {{end}}
            <tr class="total-row">
                <td class="label">Total:</td>
                <td class="amount">{{dollars .Order.TotalAmount}}</td>
            </tr>
        </table>
    </div>

    <div style="clear: both;"></div>

    <div class="footer">
        <p>Thank you for shopping with us!</p>
        <p>Questions about this order? Contact us at {{.Store.Email}} or {{.Store.Phone}}</p>
    </div>
</body>
</html>
`
