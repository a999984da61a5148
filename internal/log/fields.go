package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldUserID     = "user_id"
	FieldEmail      = "email"
	FieldCategory   = "category"
	FieldAmount     = "amount"
	FieldGeneration = "generation"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentAPI     = "api"
	ComponentServer  = "server"
	ComponentStore   = "store"
	ComponentStorage = "storage"
	ComponentSession = "session"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
	ComponentCache   = "cache"
)

// Standard operation names.
const (
	OpLogin    = "login"
	OpRegister = "register"
	OpList     = "list"
	OpCreate   = "create"
	OpReport   = "report"
	OpFetch    = "fetch"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpAppend   = "append"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
