package shop

// Typed request inputs, validated once before any mutation.

const maxRestockQty = 100_000

type AddItemInput struct {
	BuyerID   string
	ProductID string
	Qty       int
}

func (in AddItemInput) Validate() error {
	if in.BuyerID == "" {
		return Validationf("missing buyer id")
	}
	if in.ProductID == "" {
		return Validationf("missing product id")
	}
	if in.Qty <= 0 {
		return Validationf("quantity must be a positive integer")
	}
	return nil
}

// RemoveItemInput with Qty == 0 removes the whole line.
type RemoveItemInput struct {
	BuyerID   string
	ProductID string
	Qty       int
}

func (in RemoveItemInput) Validate() error {
	if in.BuyerID == "" {
		return Validationf("missing buyer id")
	}
	if in.ProductID == "" {
		return Validationf("missing product id")
	}
	if in.Qty < 0 {
		return Validationf("quantity must not be negative")
	}
	return nil
}

type PayInput struct {
	BuyerID string
	OrderID string
}

func (in PayInput) Validate() error {
	if in.BuyerID == "" {
		return Validationf("missing buyer id")
	}
	if in.OrderID == "" {
		return Validationf("missing order id")
	}
	return nil
}

type RestockInput struct {
	ProductID string
	Qty       int
}

func (in RestockInput) Validate() error {
	if in.ProductID == "" {
		return Validationf("missing product id")
	}
	if in.Qty <= 0 {
		return Validationf("quantity must be a positive integer")
	}
	if in.Qty > maxRestockQty {
		return Validationf("quantity exceeds %d", maxRestockQty)
	}
	return nil
}
