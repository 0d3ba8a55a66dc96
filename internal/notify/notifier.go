// Package notify publishes save/delete outcomes to per-user Redis channels
// so a frontend can surface them as transient messages. The core only
// reports outcome values; rendering is not its problem.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const channelPrefix = "roi:events:"

// Event types.
const (
	EventScenarioCreated = "scenario.created"
	EventScenarioUpdated = "scenario.updated"
	EventScenarioDeleted = "scenario.deleted"
	EventSaveFailed      = "scenario.save_failed"
)

// Event is one user-visible outcome.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ScenarioID string    `json:"scenario_id,omitempty"`
	Name       string    `json:"name,omitempty"`
	Message    string    `json:"message,omitempty"`
	At         time.Time `json:"at"`
}

// Notifier publishes events over Redis pub/sub.
type Notifier struct {
	client *redis.Client
}

func New(client *redis.Client) *Notifier {
	return &Notifier{client: client}
}

// Publish sends the event to the user's channel. Delivery is best effort;
// a publish error never fails the operation that produced the event.
func (n *Notifier) Publish(ctx context.Context, userID string, ev Event) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.client.Publish(ctx, Channel(userID), data).Err()
}

// Channel returns the pub/sub channel name for a user.
func Channel(userID string) string {
	return channelPrefix + userID
}
