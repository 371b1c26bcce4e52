package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const snipeTTL = 24 * time.Hour

// SnipedMessage is the last deleted message seen in a channel.
type SnipedMessage struct {
	Content       string    `json:"content"`
	AuthorTag     string    `json:"author_tag"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	DeletedAt     time.Time `json:"deleted_at"`
}

// SnipeStore keeps the most recent deleted message per channel with a TTL.
type SnipeStore struct {
	client *redis.Client
}

// NewSnipeStore instantiates the store.
func NewSnipeStore(client *redis.Client) *SnipeStore {
	return &SnipeStore{client: client}
}

func (s *SnipeStore) Set(ctx context.Context, channelID string, message SnipedMessage) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, snipeKey(channelID), payload, snipeTTL).Err()
}

// Get returns nil when no deleted message is cached for the channel.
func (s *SnipeStore) Get(ctx context.Context, channelID string) (*SnipedMessage, error) {
	payload, err := s.client.Get(ctx, snipeKey(channelID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	message := &SnipedMessage{}
	if err := json.Unmarshal(payload, message); err != nil {
		return nil, err
	}
	return message, nil
}

func snipeKey(channelID string) string {
	return "snipe:" + channelID
}
