package invoice

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MIDNayanajith/kasthuri-backend/pkg/apperr"
)

func TestRenderDocument(t *testing.T) {
	tr := completedTrip(1, "Ceylon Agro", "10000", "3000", "2000")
	tr.Description = "Colombo to Kandy"
	svc, _, _ := newTestService(tr)
	ctx := context.Background()

	inv, err := svc.Create(ctx, []int64{1}, 1)
	require.NoError(t, err)

	doc, err := svc.RenderDocument(ctx, inv.ID)
	require.NoError(t, err)

	assert.Contains(t, doc, "Kasthuri Enterprises")
	assert.Contains(t, doc, "Address: No: 332, Napawala, Getaheththa")
	assert.Contains(t, doc, "B.R. NO: EHE/DS/ADM/07/02329")
	assert.Contains(t, doc, "Invoice No: "+inv.InvoiceNo)
	assert.Contains(t, doc, "Client: Ceylon Agro")
	assert.Contains(t, doc, `Please Issue Cheques In Favour of "Kasthuri Enterprises".`)

	// The stored item appears verbatim.
	assert.Contains(t, doc, "04/03/2025")
	assert.Contains(t, doc, "WP-LA-4521")
	assert.Contains(t, doc, "Colombo to Kandy")
	assert.Contains(t, doc, "10000.00")
	assert.Contains(t, doc, "5000.00")
	assert.Contains(t, doc, "3000.00")

	assert.Contains(t, doc, "Total Amount")
	assert.Contains(t, doc, "2000.00")
}

func TestRenderDocument_PadsToMinimumRows(t *testing.T) {
	svc, _, _ := newTestService(completedTrip(1, "Ceylon Agro", "10000", "3000", "2000"))
	ctx := context.Background()

	inv, err := svc.Create(ctx, []int64{1}, 1)
	require.NoError(t, err)

	doc, err := svc.RenderDocument(ctx, inv.ID)
	require.NoError(t, err)

	// One item row plus four blank filler rows keeps the table at five rows.
	empty := tableRow("", "", "", "", "", "", "")
	assert.Equal(t, 4, strings.Count(doc, empty))
	assert.Equal(t, 1, strings.Count(doc, "04/03/2025"))
}

func TestRenderDocument_DeletedInvoiceNotFound(t *testing.T) {
	svc, _, _ := newTestService(completedTrip(1, "Ceylon Agro", "10000", "3000", "2000"))
	ctx := context.Background()

	inv, err := svc.Create(ctx, []int64{1}, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, inv.ID))

	_, err = svc.RenderDocument(ctx, inv.ID)
	assert.True(t, apperr.IsNotFound(err))

	_, err = svc.RenderDocument(ctx, 99)
	assert.True(t, apperr.IsNotFound(err))
}
