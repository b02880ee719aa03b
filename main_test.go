package main

import (
	"bytes"
	"testing"

	"github.com/mrops-br/products-catalog-api/internal/app/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintPage(t *testing.T) {
	var buf bytes.Buffer
	page := &dto.PageResponse{
		Items: []*dto.ProductResponse{
			{ID: 3, Name: "Blue Shirt", Description: "Cotton", Price: dto.Price{Decimal: decimal.RequireFromString("19.9")}},
		},
		TotalItems:  7,
		TotalPages:  2,
		CurrentPage: 2,
		PageSize:    6,
	}

	require.NoError(t, printPage(&buf, page))

	out := buf.String()
	assert.Contains(t, out, "Blue Shirt")
	assert.Contains(t, out, "19.90")
	assert.Contains(t, out, "page 2 of 2 (6 per page, 7 products)")
}

func TestPrintEmptyPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printPage(&buf, &dto.PageResponse{CurrentPage: 4, TotalPages: 3}))
	assert.Equal(t, "No products found.\n", buf.String())
}
