package kafka

import "github.com/emoncse/bugtracker/internal/domain"

// ActivityProducer exports persisted activity records to an external
// stream for downstream consumers (analytics, audit pipelines).
type ActivityProducer interface {
	Produce(activity *domain.Activity) error
	Close()
}
