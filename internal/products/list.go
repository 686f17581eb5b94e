package product

import (
	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	pkgerrors "github.com/sweetorder/sweetorder-backend/pkg/errors"
	"github.com/sweetorder/sweetorder-backend/pkg/pagination"
)

// ProductListResult is a cursor page of store products.
type ProductListResult = pagination.Page[ProductSummaryDTO]

func parseCursor(raw string) (*pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return cursor, nil
}

func productCursor(p models.Product) pagination.Cursor {
	return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
}

func buildListResult(rows []models.Product, limit int) ProductListResult {
	page := pagination.Build(rows, limit, productCursor)
	out := ProductListResult{
		Items:      make([]ProductSummaryDTO, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for _, row := range page.Items {
		out.Items = append(out.Items, newSummaryDTO(row))
	}
	return out
}
