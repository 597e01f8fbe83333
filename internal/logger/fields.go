package logger

// Fields is a set of structured log fields.
type Fields map[string]interface{}

// Tracing fields, attached to a context and carried down the call chain.
const (
	FieldRequestID = "request_id"
	FieldMemeID    = "meme_id"
	FieldUserID    = "user_id"
	FieldComponent = "component"
	FieldSource    = "source" // trending source ID
)

// Metric fields, attached per line through Entry.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldSize       = "size"
	FieldStatus     = "status"
)
