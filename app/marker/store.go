package marker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists the per-source seen marker: the link of the newest feed
// entry already processed. It is single-writer state owned by the poller;
// read at the start of a poll cycle, written at the end.
type Store struct {
	client *redis.Client
}

func NewStore(addr string) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("Connected to Redis at %s", addr)

	return &Store{client: client}, nil
}

// Get returns the marker for a source, or "" when the source has never been
// polled.
func (s *Store) Get(ctx context.Context, source string) (string, error) {
	val, err := s.client.Get(ctx, markerKey(source)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read marker for %s: %w", source, err)
	}
	return val, nil
}

// Set advances the marker for a source. Markers never expire.
func (s *Store) Set(ctx context.Context, source, link string) error {
	if err := s.client.Set(ctx, markerKey(source), link, 0).Err(); err != nil {
		return fmt.Errorf("failed to write marker for %s: %w", source, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func markerKey(source string) string {
	return "marker:" + source
}
