package logger

import (
	"time"

	"go.uber.org/zap"
)

// Field type alias for convenience
type Field = zap.Field

// Common field constructors - re-exported from zap for convenience

// String constructs a field with the given key and value
func String(key string, val string) Field {
	return zap.String(key, val)
}

// Int constructs a field with the given key and value
func Int(key string, val int) Field {
	return zap.Int(key, val)
}

// Int64 constructs a field with the given key and value
func Int64(key string, val int64) Field {
	return zap.Int64(key, val)
}

// Bool constructs a field with the given key and value
func Bool(key string, val bool) Field {
	return zap.Bool(key, val)
}

// Time constructs a field with the given key and value
func Time(key string, val time.Time) Field {
	return zap.Time(key, val)
}

// Duration constructs a field with the given key and value
func Duration(key string, val time.Duration) Field {
	return zap.Duration(key, val)
}

// Error constructs a field that lazily stores err.Error() under the key "error"
func Error(err error) Field {
	return zap.Error(err)
}

// Any takes a key and an arbitrary value and chooses the best way to represent them
func Any(key string, val interface{}) Field {
	return zap.Any(key, val)
}

// ByteString constructs a field that carries UTF-8 encoded text as a []byte
func ByteString(key string, val []byte) Field {
	return zap.ByteString(key, val)
}

// HTTP request related fields

// Method constructs a field for HTTP method
func Method(method string) Field {
	return String("method", method)
}

// Path constructs a field for request path
func Path(path string) Field {
	return String("path", path)
}

// Status constructs a field for HTTP status code
func Status(status int) Field {
	return Int("status", status)
}

// Latency constructs a field for request latency
func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

// ClientIP constructs a field for client IP address
func ClientIP(ip string) Field {
	return String("client_ip", ip)
}

// UserAgent constructs a field for the User-Agent header
func UserAgent(ua string) Field {
	return String("user_agent", ua)
}

// Query constructs a field for URL query string
func Query(q string) Field {
	return String("query", q)
}

// RequestID constructs a field for request ID
func RequestID(id string) Field {
	return String("request_id", id)
}

// TraceID constructs a field for trace ID
func TraceID(id string) Field {
	return String("trace_id", id)
}

// SpanID constructs a field for span ID
func SpanID(id string) Field {
	return String("span_id", id)
}

// Domain fields

// Component constructs a field naming the emitting component
func Component(name string) Field {
	return String("component", name)
}

// Operation constructs a field for operation name
func Operation(name string) Field {
	return String("operation", name)
}

// UserID constructs a field for user ID
func UserID(id string) Field {
	return String("user_id", id)
}

// Username constructs a field for username
func Username(name string) Field {
	return String("username", name)
}

// SessionID constructs a field for session ID
func SessionID(id string) Field {
	return String("session_id", id)
}

// Provider constructs a field for OAuth provider name
func Provider(name string) Field {
	return String("provider", name)
}

// Permission constructs a field for permission key
func Permission(key string) Field {
	return String("permission", key)
}

// RepoFullName constructs a field for repository full name (owner/name)
func RepoFullName(name string) Field {
	return String("repository", name)
}
