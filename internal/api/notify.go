package api

// Level is the severity of a Toast.
type Level int

const (
	LevelError Level = iota
	LevelSuccess
	LevelInfo
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelInfo:
		return "info"
	default:
		return "error"
	}
}

const (
	apiErrorTitle    = "API Error"
	uploadErrorTitle = "Upload Error"
)

// Toast is a short, transient user-facing notification.
type Toast struct {
	Level   Level
	Title   string
	Message string
}

func (t Toast) String() string {
	if t.Title == "" {
		return t.Message
	}
	return t.Title + ": " + t.Message
}

// Notifier receives one Toast per failed logical call. Implementations must
// not block and must be safe for concurrent use.
type Notifier interface {
	Notify(Toast)
}

// NotifierFunc adapts a function to a Notifier.
type NotifierFunc func(Toast)

func (f NotifierFunc) Notify(t Toast) { f(t) }

// Discard drops every toast.
var Discard Notifier = NotifierFunc(func(Toast) {})
