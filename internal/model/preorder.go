package model

// PreOrder is a pre-order product definition: a product customers can reserve
// with a deposit ahead of stock arriving.
type PreOrder struct {
	Base
	ProductID     string  `json:"product_id"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	Price         float64 `json:"price"`
	DepositAmount float64 `json:"deposit_amount"`
	ExpectedDate  string  `json:"expected_date,omitempty"`
	Slots         int     `json:"slots"`
	Reserved      int     `json:"reserved"`
	Status        string  `json:"status,omitempty"`
}

type PreOrderRequest struct {
	ProductID     string  `json:"product_id" binding:"required"`
	Title         string  `json:"title" binding:"required"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" binding:"required,gt=0"`
	DepositAmount float64 `json:"deposit_amount" binding:"required,gt=0,ltefield=Price"`
	ExpectedDate  string  `json:"expected_date" binding:"omitempty,datetime=2006-01-02"`
	Slots         int     `json:"slots" binding:"required,min=1"`
	Status        string  `json:"status" binding:"omitempty,oneof=open closed fulfilled"`
}
