package redis

import "github.com/redis/rueidis"

// NewStoreForTest wraps a (possibly mocked) rueidis client for tests.
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}
