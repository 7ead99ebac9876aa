package listing

import "sync/atomic"

// ReloadBridge is a shared slot holding the function that makes the current
// listing re-fetch. The controller is the only writer; any number of
// callers may Invoke it. The last registration wins.
type ReloadBridge struct {
	fn atomic.Pointer[func()]
}

// NewReloadBridge returns an empty bridge.
func NewReloadBridge() *ReloadBridge {
	return &ReloadBridge{}
}

// Register replaces the reload function. A nil fn empties the slot.
func (b *ReloadBridge) Register(fn func()) {
	if fn == nil {
		b.fn.Store(nil)
		return
	}
	b.fn.Store(&fn)
}

// Invoke runs the registered function and reports whether there was one.
func (b *ReloadBridge) Invoke() bool {
	if b == nil {
		return false
	}
	fn := b.fn.Load()
	if fn == nil {
		return false
	}
	(*fn)()
	return true
}

// Registered reports whether a reload function is present.
func (b *ReloadBridge) Registered() bool {
	return b != nil && b.fn.Load() != nil
}
