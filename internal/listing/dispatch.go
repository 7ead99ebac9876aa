package listing

// InfoContext is the navigation context for an invite's detail view.
const InfoContext = "info"

// Intent is a request to navigate somewhere.
type Intent struct {
	Context string
	ID      string
}

// Router receives navigation intents. Calls are fire-and-forget.
type Router interface {
	Navigate(Intent)
}

// RouterFunc adapts a function to Router.
type RouterFunc func(Intent)

func (f RouterFunc) Navigate(i Intent) { f(i) }

// Activation is a row activation event, either a pointer click or a key
// press. StopPropagation keeps ancestors from also handling it.
type Activation interface {
	StopPropagation()
}

// PointerActivation is a click or tap on a row.
type PointerActivation struct {
	stopped bool
}

func (e *PointerActivation) StopPropagation() { e.stopped = true }

// Stopped reports whether propagation was stopped.
func (e *PointerActivation) Stopped() bool { return e.stopped }

// KeyActivation is a key press while a row has focus.
type KeyActivation struct {
	Key     string
	stopped bool
}

func (e *KeyActivation) StopPropagation() { e.stopped = true }

// Stopped reports whether propagation was stopped.
func (e *KeyActivation) Stopped() bool { return e.stopped }

// submitKeys activate a focused row.
var submitKeys = map[string]bool{
	"Enter": true,
	"enter": true,
	" ":     true,
	"space": true,
}

// IsSubmitKey reports whether key activates a row.
func IsSubmitKey(key string) bool {
	return submitKeys[key]
}

// Dispatcher turns row activations into navigation intents.
type Dispatcher struct {
	router Router
}

// NewDispatcher returns a dispatcher routing to r.
func NewDispatcher(r Router) *Dispatcher {
	return &Dispatcher{router: r}
}

// Handle processes one activation of the row for recordID. Pointer
// activations always navigate; key activations only for submit keys.
// It reports whether an intent was emitted.
func (d *Dispatcher) Handle(recordID string, ev Activation) bool {
	if ev == nil {
		return false
	}
	if k, ok := ev.(*KeyActivation); ok && !IsSubmitKey(k.Key) {
		return false
	}
	ev.StopPropagation()
	if d.router != nil {
		d.router.Navigate(Intent{Context: InfoContext, ID: recordID})
	}
	return true
}
