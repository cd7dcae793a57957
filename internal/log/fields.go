package log

// Field names shared by the CLI and the worker log sites.
const (
	FieldComponent = "component"
	FieldError     = "error"
)

// Component names.
const (
	ComponentApp    = "app"
	ComponentWorker = "worker"
)
