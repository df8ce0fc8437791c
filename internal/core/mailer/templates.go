package mailer

import (
	"errors"
	"fmt"
	"time"

	"github.com/osteele/liquid"
)

// ErrUnknownStatus is returned when no email content exists for a
// shipment status.
var ErrUnknownStatus = errors.New("mailer: no email template for status")

type statusContent struct {
	Subject string
	Title   string
	Message string
	Color   string
}

// statusEmailContent holds the per-status Spanish copy used in
// shipment notification emails.
var statusEmailContent = map[string]statusContent{
	"pending": {
		Subject: "Envío Registrado",
		Title:   "📦 Envío Registrado",
		Message: "Su envío ha sido registrado en nuestro sistema y está pendiente de despacho.",
		Color:   "#6c757d",
	},
	"in_transit": {
		Subject: "Envío en Tránsito",
		Title:   "🚚 Su Envío Está en Camino",
		Message: "Su envío ha sido despachado y está en tránsito hacia su destino.",
		Color:   "#0066cc",
	},
	"delayed": {
		Subject: "Envío Retrasado",
		Title:   "⚠️ Actualización de Envío",
		Message: "Queremos informarle que su envío ha experimentado un retraso. Estamos trabajando para entregarlo lo antes posible.",
		Color:   "#ffc107",
	},
	"delivered": {
		Subject: "Envío Entregado",
		Title:   "✅ Envío Entregado Exitosamente",
		Message: "¡Excelentes noticias! Su envío ha sido entregado exitosamente.",
		Color:   "#28a745",
	},
	"cancelled": {
		Subject: "Envío Cancelado",
		Title:   "❌ Envío Cancelado",
		Message: "Su envío ha sido cancelado. Si tiene preguntas, por favor contáctenos.",
		Color:   "#dc3545",
	},
}

const shipmentStatusTemplate = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: {{ color }}; color: white; padding: 20px; text-align: center;">
    <h1 style="margin: 0;">{{ title }}</h1>
    <p style="margin: 5px 0 0 0;">Sistema de Seguimiento DIGO</p>
  </div>

  <div style="padding: 30px; background: #f8f9fa;">
    <p style="font-size: 16px; color: #333;">Estimado cliente,</p>

    <p style="font-size: 16px; color: #333;">{{ message }}</p>

    <div style="background: white; border-radius: 8px; padding: 20px; margin: 20px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1);">
      <h3 style="color: #333; margin-top: 0;">Detalles del Envío</h3>
      <table style="width: 100%; border-collapse: collapse;">
        <tr>
          <td style="padding: 8px; font-weight: bold; border-bottom: 1px solid #eee;">Código de Seguimiento:</td>
          <td style="padding: 8px; border-bottom: 1px solid #eee; font-family: monospace;">{{ trackingCode }}</td>
        </tr>
        <tr>
          <td style="padding: 8px; font-weight: bold; border-bottom: 1px solid #eee;">Origen:</td>
          <td style="padding: 8px; border-bottom: 1px solid #eee;">{{ origin }}</td>
        </tr>
        <tr>
          <td style="padding: 8px; font-weight: bold; border-bottom: 1px solid #eee;">Destino:</td>
          <td style="padding: 8px; border-bottom: 1px solid #eee;">{{ destination }}</td>
        </tr>
        {% if product != "" %}
        <tr>
          <td style="padding: 8px; font-weight: bold; border-bottom: 1px solid #eee;">Producto:</td>
          <td style="padding: 8px; border-bottom: 1px solid #eee;">{{ product }}</td>
        </tr>
        {% endif %}
        {% if estimatedDelivery != "" %}
        <tr>
          <td style="padding: 8px; font-weight: bold; border-bottom: 1px solid #eee;">Fecha Estimada de Entrega:</td>
          <td style="padding: 8px; border-bottom: 1px solid #eee;">{{ estimatedDelivery }}</td>
        </tr>
        {% endif %}
        <tr>
          <td style="padding: 8px; font-weight: bold;">Estado Actual:</td>
          <td style="padding: 8px; color: {{ color }}; font-weight: bold;">{{ statusLabel }}</td>
        </tr>
      </table>
    </div>

    <div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #ddd; font-size: 12px; color: #666;">
      <p>Este correo fue enviado automáticamente por el Sistema de Seguimiento DIGO.</p>
      <p>Si tiene preguntas sobre su envío, por favor contáctenos respondiendo a este correo.</p>
    </div>
  </div>
</div>
`

// ShipmentEmailData carries the shipment fields rendered into a status
// notification email. Optional fields left empty are omitted from the
// details table.
type ShipmentEmailData struct {
	TrackingCode      string
	Origin            string
	Destination       string
	Product           string
	EstimatedDelivery *time.Time
}

// Renderer turns shipment status changes into localized email content.
type Renderer struct {
	shipmentTpl *liquid.Template
}

func NewRenderer() (*Renderer, error) {
	tpl, err := liquid.NewEngine().ParseString(shipmentStatusTemplate)
	if err != nil {
		return nil, fmt.Errorf("mailer: parse shipment template: %w", err)
	}
	return &Renderer{shipmentTpl: tpl}, nil
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

func formatSpanishDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// RenderShipmentStatus builds the subject and HTML body for a shipment
// status notification.
func (r *Renderer) RenderShipmentStatus(status string, data ShipmentEmailData) (subject, html string, err error) {
	content, ok := statusEmailContent[status]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}

	trackingCode := orNA(data.TrackingCode)
	estimated := ""
	if data.EstimatedDelivery != nil {
		estimated = formatSpanishDate(*data.EstimatedDelivery)
	}

	bindings := map[string]any{
		"color":             content.Color,
		"title":             content.Title,
		"message":           content.Message,
		"trackingCode":      trackingCode,
		"origin":            orNA(data.Origin),
		"destination":       orNA(data.Destination),
		"product":           data.Product,
		"estimatedDelivery": estimated,
		"statusLabel":       content.Subject,
	}

	html, err = r.shipmentTpl.RenderString(bindings)
	if err != nil {
		return "", "", fmt.Errorf("mailer: render shipment template: %w", err)
	}
	return content.Subject + " - " + trackingCode, html, nil
}
