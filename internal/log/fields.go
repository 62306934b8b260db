package log

// Common field names for structured logging.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldDay         = "day"
	FieldParticipant = "participant"
	FieldAmountCents = "amount_cents"
	FieldWriter      = "writer"
	FieldVerdict     = "verdict"
	FieldBackend     = "backend"
)

// Standard component names.
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentContest  = "contest"
	ComponentStore    = "store"
	ComponentAMQP     = "amqp"
	ComponentFeed     = "feed"
	ComponentMirror   = "mirror"
	ComponentIdentity = "identity"
)
