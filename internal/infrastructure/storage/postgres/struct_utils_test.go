package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbiz/internal/core/id"
	"smartbiz/internal/core/types"
	"smartbiz/internal/domain/catalog"
	"smartbiz/internal/domain/document"
)

func TestExtractDBColumns_FlattensEmbedded(t *testing.T) {
	cols := ExtractDBColumns[catalog.Product]()
	assert.Equal(t, []string{"id", "version", "code", "name", "type", "unit", "price", "cost"}, cols)

	docCols := ExtractDBColumns[document.PurchaseDocument]()
	for _, c := range []string{"id", "version", "created_at", "number", "items", "supplier_id", "additional_costs", "deadline"} {
		assert.Contains(t, docCols, c)
	}
	assert.NotContains(t, docCols, "client_id")
}

func TestStructToMap_Document(t *testing.T) {
	now := time.Now().UTC()
	wh := id.New()
	doc := document.New(document.Kind{Domain: document.DomainSales, Type: document.TypeInvoice}).(*document.SalesDocument)
	doc.Stamp(id.New(), now)
	doc.Number = "INV-007"
	doc.WarehouseID = &wh
	doc.ClientName = "Acme"
	doc.Items = document.Items{{ID: "custom-1", Description: "Fee", Quantity: types.NewQuantity(1), Price: types.MustMoney("5")}}

	m := StructToMap(doc)

	assert.Equal(t, doc.ID, m["id"])
	assert.Equal(t, 1, m["version"])
	assert.Equal(t, "INV-007", m["number"])
	assert.Equal(t, &wh, m["warehouse_id"])
	assert.Equal(t, "Acme", m["client_name"])
	assert.Equal(t, doc.Items, m["items"])
}

func TestPick_KeepsOrder(t *testing.T) {
	cols, vals := Pick(map[string]any{"b": 2, "a": 1, "z": 26}, []string{"a", "b", "c"})
	require.Len(t, cols, 2)
	assert.Equal(t, []string{"a", "b"}, cols)
	assert.Equal(t, []any{1, 2}, vals)
}
