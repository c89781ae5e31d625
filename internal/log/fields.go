package log

// Common field names for structured logging
const (
	FieldComponent      = "component"
	FieldRequestID      = "request_id"
	FieldClientIP       = "client_ip"
	FieldMethod         = "method"
	FieldPath           = "path"
	FieldStatusCode     = "status_code"
	FieldDuration       = "duration_ms"
	FieldUserAgent      = "user_agent"
	FieldError          = "error"
	FieldOperation      = "operation"
	FieldConversationID = "conversation_id"
	FieldIntent         = "intent"
	FieldIntents        = "intents"
	FieldEntities       = "entities"
	FieldConfidence     = "confidence"
	FieldPending        = "pending"
	FieldDoable         = "doable"
	FieldIncomplete     = "incomplete"
	FieldExpenseID      = "expense_id"
	FieldCount          = "count"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentChat     = "chat"
	ComponentExecutor = "executor"
	ComponentExpense  = "expense"
	ComponentStorage  = "storage"
	ComponentSession  = "session"
	ComponentNLU      = "nlu"
	ComponentClassify = "classifier"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentJournal  = "journal"
	ComponentSecurity = "security"
	ComponentBackend  = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpSearch   = "search"
	OpStat     = "stat"
	OpParse    = "parse"
	OpPublish  = "publish"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTurn adds the outcome of one conversation turn.
func (f LogFields) WithTurn(conversationID string, pending, doable, incomplete int) LogFields {
	f[FieldConversationID] = conversationID
	f[FieldPending] = pending
	f[FieldDoable] = doable
	f[FieldIncomplete] = incomplete
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldUserAgent] = userAgent
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	return f
}

// ToSlice converts LogFields to key/value pairs for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
