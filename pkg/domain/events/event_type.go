package events

// EventType represents the type of an event in the system. The set is
// closed: subscribers key their interest on these constants and the bus
// routes delivery by them.
type EventType string

// Event type constants
const (
	// Transaction events
	EventTypeTransactionCreated   EventType = "Transaction.Created"
	EventTypeTransactionCompleted EventType = "Transaction.Completed"
	EventTypeTransactionFailed    EventType = "Transaction.Failed"

	// Security events
	EventTypeLoginFailed    EventType = "Security.LoginFailed"
	EventTypeLoginSucceeded EventType = "Security.LoginSucceeded"
	EventTypeFraudSuspected EventType = "Security.FraudSuspected"

	// Account events
	EventTypeBalanceLow EventType = "Account.BalanceLow"
)

// Kinds returns every event type in the closed set.
func Kinds() []EventType {
	return []EventType{
		EventTypeTransactionCreated,
		EventTypeTransactionCompleted,
		EventTypeTransactionFailed,
		EventTypeLoginFailed,
		EventTypeLoginSucceeded,
		EventTypeFraudSuspected,
		EventTypeBalanceLow,
	}
}

// String returns the string representation of the event type.
func (et EventType) String() string {
	return string(et)
}

// IsSecurity reports whether the event type belongs to the security family.
func (et EventType) IsSecurity() bool {
	switch et {
	case EventTypeLoginFailed, EventTypeLoginSucceeded, EventTypeFraudSuspected:
		return true
	}
	return false
}

// IsTransaction reports whether the event type belongs to the transaction family.
func (et EventType) IsTransaction() bool {
	switch et {
	case EventTypeTransactionCreated, EventTypeTransactionCompleted, EventTypeTransactionFailed:
		return true
	}
	return false
}
