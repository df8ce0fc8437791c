package mailer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderShipmentStatus(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	estimated := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	subject, html, err := renderer.RenderShipmentStatus("in_transit", ShipmentEmailData{
		TrackingCode:      "ECO-2025-001",
		Origin:            "CDMX",
		Destination:       "Monterrey",
		Product:           "Aceite industrial",
		EstimatedDelivery: &estimated,
	})
	require.NoError(t, err)

	assert.Equal(t, "Envío en Tránsito - ECO-2025-001", subject)
	assert.Contains(t, html, "Su Envío Está en Camino")
	assert.Contains(t, html, "ECO-2025-001")
	assert.Contains(t, html, "CDMX")
	assert.Contains(t, html, "Monterrey")
	assert.Contains(t, html, "Aceite industrial")
	assert.Contains(t, html, "15 de marzo de 2025")
	assert.Contains(t, html, "#0066cc")
}

func TestRenderShipmentStatus_OptionalFieldsOmitted(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	subject, html, err := renderer.RenderShipmentStatus("delivered", ShipmentEmailData{
		Origin:      "CDMX",
		Destination: "Guadalajara",
	})
	require.NoError(t, err)

	assert.Equal(t, "Envío Entregado - N/A", subject)
	assert.NotContains(t, html, "Producto:")
	assert.NotContains(t, html, "Fecha Estimada de Entrega:")
	assert.Contains(t, html, "entregado exitosamente")
}

func TestRenderShipmentStatus_AllStatuses(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	for status, content := range statusEmailContent {
		t.Run(status, func(t *testing.T) {
			subject, html, err := renderer.RenderShipmentStatus(status, ShipmentEmailData{TrackingCode: "X-1"})
			require.NoError(t, err)
			assert.Equal(t, content.Subject+" - X-1", subject)
			assert.Contains(t, html, content.Color)
		})
	}
}

func TestRenderShipmentStatus_UnknownStatus(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	_, _, err = renderer.RenderShipmentStatus("exploded", ShipmentEmailData{})
	assert.ErrorIs(t, err, ErrUnknownStatus)
}
