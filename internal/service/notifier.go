package service

// Notifier receives domain events once the unit of work that produced them
// has committed. The websocket hub implements it.
type Notifier interface {
	Publish(event string, data any)
}

// Event names published to connected clients.
const (
	EventStockUpdated = "stock.updated"
	EventSaleCreated  = "sale.created"
	EventSaleVoided   = "sale.voided"
)

type nopNotifier struct{}

func (nopNotifier) Publish(string, any) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
