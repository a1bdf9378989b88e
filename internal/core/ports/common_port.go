package ports

import "time"

type LoggerPort interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

type CachePort interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	DeleteByPrefix(prefix string) error
}

type MetricsPort interface {
	RecordHTTPRequest(method, path string, status int, start time.Time)
	RecordImportRun(created, updated, skipped, gearCreated int)
}
