package docstore

import (
	"time"

	store "github.com/taskdeck/backend/internal/infrastructure/docstore"
)

func docString(doc store.Document, key string) string {
	value, _ := doc[key].(string)
	return value
}

func docTime(doc store.Document, key string) time.Time {
	raw, ok := doc[key].(string)
	if !ok {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
