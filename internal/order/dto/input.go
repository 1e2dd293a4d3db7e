package dto

type CreateOrderItemInput struct {
	ProductID int64  `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Note      string `json:"note"`
}

type CreateOrderInput struct {
	TableID int64                  `json:"table_id" validate:"required"`
	Items   []CreateOrderItemInput `json:"items" validate:"required,min=1,dive"`
	Note    string                 `json:"note"`
}
