package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/flicky/haatbazar-api/internal/model"
)

func TestMatchCart(t *testing.T) {
	shopID := uuid.New()
	rice, dal := uuid.New(), uuid.New()
	order := &model.Order{ShopID: shopID, Items: []model.OrderItem{
		{ProductID: rice, Price: 60, Quantity: 2},
		{ProductID: dal, Price: 110, Quantity: 1},
	}}

	tests := []struct {
		name  string
		lines []cartLine
		want  error
	}{
		{"same lines any order", []cartLine{
			{ProductID: dal, ShopID: shopID, Price: 110, Quantity: 1},
			{ProductID: rice, ShopID: shopID, Price: 60, Quantity: 2},
		}, nil},
		{"emptied", nil, ErrCartEmpty},
		{"line removed", []cartLine{{ProductID: rice, ShopID: shopID, Price: 60, Quantity: 2}}, ErrCartChanged},
		{"quantity changed", []cartLine{
			{ProductID: rice, ShopID: shopID, Price: 60, Quantity: 3},
			{ProductID: dal, ShopID: shopID, Price: 110, Quantity: 1},
		}, ErrCartChanged},
		{"other product", []cartLine{
			{ProductID: rice, ShopID: shopID, Price: 60, Quantity: 2},
			{ProductID: uuid.New(), ShopID: shopID, Price: 110, Quantity: 1},
		}, ErrCartChanged},
		{"replaced by another shop", []cartLine{
			{ProductID: rice, ShopID: uuid.New(), Price: 60, Quantity: 2},
			{ProductID: dal, ShopID: uuid.New(), Price: 110, Quantity: 1},
		}, ErrCartChanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := matchCart(order, tt.lines)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
