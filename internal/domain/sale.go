package domain

import "time"

// Sale records a completed "mark sold" action: who bought, at what
// price, and a snapshot of the listing as it was at the moment of sale.
// The snapshot survives the product document, which is deleted next.
type Sale struct {
	ID           string    `bson:"_id" json:"id"`
	CustomerName string    `bson:"customer_name" json:"customerName"`
	CustomerTel  string    `bson:"customer_tel" json:"customerTel"`
	BuyingPrice  int       `bson:"buying_price" json:"buyingPrice"`
	SellingPrice int       `bson:"selling_price" json:"sellingPrice"`
	Product      Product   `bson:"product" json:"product"`
	SoldAt       time.Time `bson:"sold_at" json:"soldAt"`
}

// SaleInput is the mark-sold form payload.
type SaleInput struct {
	CustomerName string `validate:"required"`
	CustomerTel  string
	BuyingPrice  int `validate:"gte=0"`
	SellingPrice int `validate:"gte=0"`
}
