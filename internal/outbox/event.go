package outbox

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType (event per topic).
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// Event types emitted by the delivery engine. Aggregate IDs are shop
// domains so per-shop ordering survives the hash balancer.
const (
	EventDateScheduled   = "delivery.date.scheduled.v1"
	EventSettingsUpdated = "delivery.settings.updated.v1"
)
