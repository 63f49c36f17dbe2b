package cart

import "github.com/pawmart/storefront-backend/internal/upstream"

// collapseOrders folds the flat per-product records the commerce backend
// returns into one Order per order code. Records sharing a code concatenate
// their items and sum their totals; the order's metadata comes from the
// first record seen for that code, and codes keep first-appearance order.
func collapseOrders(records []upstream.OrderRecord) []Order {
	index := make(map[string]int, len(records))
	orders := make([]Order, 0, len(records))

	for _, record := range records {
		i, seen := index[record.OrderCode]
		if !seen {
			i = len(orders)
			index[record.OrderCode] = i
			orders = append(orders, Order{
				OrderCode: record.OrderCode,
				Date:      record.CreatedAt,
				Address:   record.User.Address,
				Phone:     record.User.Phone,
				Email:     record.User.ID,
			})
		}
		orders[i].TotalPrice += record.Total
		for _, product := range record.Products {
			orders[i].Items = append(orders[i].Items, Line{
				ProductID: product.ProductID,
				Title:     product.Title,
				Brand:     product.Brand,
				Image:     product.Image,
				Price:     product.Price,
				Quantity:  product.Quantity,
			})
		}
	}
	return orders
}
