package cart

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineItemJSON_PersistedLayout(t *testing.T) {
	raw := `[{"priceid":"P1","productType":"viands","name":"Dinuguan","imageUrl":"/img/d.png",` +
		`"price":85.5,"quantity":2,"availableQuantity":7,"category":"pork","spicy":true}]`

	items, err := DecodeItems(raw)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "P1", item.PriceID)
	assert.Equal(t, Viands, item.ProductType)
	assert.True(t, decimal.RequireFromString("85.5").Equal(item.Price))
	assert.Equal(t, 2, item.Quantity)
	require.NotNil(t, item.AvailableQuantity)
	assert.Equal(t, 7, *item.AvailableQuantity)
	assert.Nil(t, item.MaxQuantity)
	assert.JSONEq(t, `"pork"`, string(item.Extra["category"]))

	encoded, err := EncodeItems(items)
	require.NoError(t, err)
	assert.JSONEq(t, raw, encoded)
}

func TestLineItemJSON_PriceAsString(t *testing.T) {
	var item LineItem
	require.NoError(t, json.Unmarshal([]byte(`{"priceid":"L1","productType":"lechon","price":"1200.00","quantity":1,"maxQuantity":2}`), &item))
	assert.True(t, decimal.NewFromInt(1200).Equal(item.Price))
	require.NotNil(t, item.MaxQuantity)
	assert.Equal(t, 2, *item.MaxQuantity)
}

func TestEncodeItems_EmptyIsArray(t *testing.T) {
	encoded, err := EncodeItems(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", encoded)
}

func TestProductJSON_ExtrasReachLine(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"priceid":"V9","productType":"viands","name":"Kare-Kare",`+
		`"price":120,"imageSrc":"/img/k.png","availableQuantity":4,"description":"oxtail stew"}`), &p))

	items, outcome := EvaluateAdd(nil, p, 0)
	require.True(t, outcome.Accepted())
	require.Len(t, items, 1)
	assert.Equal(t, "/img/k.png", items[0].ImageURL)
	assert.JSONEq(t, `"oxtail stew"`, string(items[0].Extra["description"]))
}

func TestStateJSON(t *testing.T) {
	state := State{Total: decimal.RequireFromString("30.50"), Count: 0}
	data, err := json.Marshal(state)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"total":30.5,"count":0}`, string(data))
}

func TestEvaluateAdd_DoesNotMutateInput(t *testing.T) {
	items := []LineItem{{
		PriceID:           "P1",
		ProductType:       Viands,
		Price:             decimal.NewFromInt(10),
		Quantity:          1,
		AvailableQuantity: ptr(5),
	}}

	next, outcome := EvaluateAdd(items, viand("P1", 10, 9), 2)
	require.True(t, outcome.Accepted())
	assert.Equal(t, 3, next[0].Quantity)
	assert.Equal(t, 9, *next[0].AvailableQuantity)

	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 5, *items[0].AvailableQuantity)
}
