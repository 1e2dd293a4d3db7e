package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-restaurant-service/pkg/broker"
	"github.com/google/uuid"
)

type KafkaPublisher struct {
	producer *broker.KafkaProducer
}

func NewKafkaPublisher(producer *broker.KafkaProducer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event EntityChanged) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// Key by entity identity so per-entity ordering survives partitioning.
	key := []byte(event.Entity + ":" + strconv.FormatInt(event.EntityID, 10))
	return p.producer.Publish(ctx, key, value)
}
