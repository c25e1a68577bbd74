package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields propagated through the call chain.
const (
	// FieldRequestID is the HTTP request ID (UUID).
	FieldRequestID = "request_id"

	// FieldJobID is the archive import job ID.
	FieldJobID = "job_id"

	// FieldActorID is the owning account ID.
	FieldActorID = "actor_id"

	// FieldFileID is the fitness file record ID.
	FieldFileID = "file_id"

	// FieldBatchID is the import batch ID.
	FieldBatchID = "batch_id"

	// FieldComponent is the component/module name.
	FieldComponent = "component"
)

// Standard metric fields used for aggregation and alerting.
const (
	// FieldDurationMs is the execution duration in milliseconds.
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field.
	FieldCount = "count"

	// FieldBytes is a data size in bytes.
	FieldBytes = "bytes"

	// FieldStatus is the operation status.
	FieldStatus = "status"
)
