package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/virendrasuryawanshi09/ratings-website/internal/model"
)

type EventPublisher interface {
	PublishUserRegistered(user *model.User) error
	PublishStoreCreated(store *model.Store) error
	PublishRatingSubmitted(rating *model.Rating, created bool, agg model.StoreAggregate) error
	PublishRatingDeleted(userID, storeID uuid.UUID, agg model.StoreAggregate) error
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (EventPublisher, error) {
	nc, err := nats.Connect(natsURL)

	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc}, nil
}

type UserRegisteredEvent struct {
	EventType string    `json:"event_type"`
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	At        time.Time `json:"at"`
}

type StoreCreatedEvent struct {
	EventType string     `json:"event_type"`
	StoreID   uuid.UUID  `json:"store_id"`
	Name      string     `json:"name"`
	OwnerID   *uuid.UUID `json:"owner_id,omitempty"`
	At        time.Time  `json:"at"`
}

type RatingSubmittedEvent struct {
	EventType string    `json:"event_type"`
	StoreID   uuid.UUID `json:"store_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Created   bool      `json:"created"`
	Average   float64   `json:"average"`
	Count     int       `json:"count"`
	At        time.Time `json:"at"`
}

type RatingDeletedEvent struct {
	EventType string    `json:"event_type"`
	StoreID   uuid.UUID `json:"store_id"`
	UserID    uuid.UUID `json:"user_id"`
	Average   float64   `json:"average"`
	Count     int       `json:"count"`
	At        time.Time `json:"at"`
}

func (p *NatsPublisher) publish(subject string, event interface{}) error {
	eventJSON, err := json.Marshal(event)

	if err != nil {
		log.Printf("Error marshalling event JSON: %v", err)
		return err
	}

	err = p.conn.Publish(subject, eventJSON)

	if err != nil {
		log.Printf("Error publishing to NATS: %v", err)
		return err
	}

	log.Printf("Published event to NATS on subject '%s'", subject)

	return nil
}

func (p *NatsPublisher) PublishUserRegistered(user *model.User) error {
	return p.publish("user.registered", UserRegisteredEvent{
		EventType: "user.registered",
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		At:        time.Now(),
	})
}

func (p *NatsPublisher) PublishStoreCreated(store *model.Store) error {
	return p.publish("store.created", StoreCreatedEvent{
		EventType: "store.created",
		StoreID:   store.ID,
		Name:      store.Name,
		OwnerID:   store.OwnerID,
		At:        time.Now(),
	})
}

func (p *NatsPublisher) PublishRatingSubmitted(rating *model.Rating, created bool, agg model.StoreAggregate) error {
	return p.publish("rating.submitted", RatingSubmittedEvent{
		EventType: "rating.submitted",
		StoreID:   rating.StoreID,
		UserID:    rating.UserID,
		Rating:    rating.Rating,
		Created:   created,
		Average:   agg.Average,
		Count:     agg.Count,
		At:        time.Now(),
	})
}

func (p *NatsPublisher) PublishRatingDeleted(userID, storeID uuid.UUID, agg model.StoreAggregate) error {
	return p.publish("rating.deleted", RatingDeletedEvent{
		EventType: "rating.deleted",
		StoreID:   storeID,
		UserID:    userID,
		Average:   agg.Average,
		Count:     agg.Count,
		At:        time.Now(),
	})
}
