package storage

import "context"

// Storage persists evidence file blobs. Keys are namespaced paths like
// "stock-in-evidence/{transactionID}/{uuid}.jpg".
type Storage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	PublicURL(key string) string
}
