package shop

const (
	TopicCheckoutCommitted = "checkout.committed"
	TopicOrderSettled      = "order.settled"
)

// Partition key = order_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
