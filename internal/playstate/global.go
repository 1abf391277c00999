package playstate

import "sync"

var (
	globalMu     sync.Mutex
	globalStore  *Store
	globalWriter *Writer
)

// Init creates the process-wide store. Calling Init again without Teardown
// returns the existing instance.
func Init(defaultThumbnail string) (*Store, *Writer) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalStore == nil {
		globalStore, globalWriter = New(defaultThumbnail)
	}
	return globalStore, globalWriter
}

// Get returns the process-wide store, or nil before Init.
func Get() *Store {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalStore
}

// Teardown closes and forgets the process-wide store.
func Teardown() {
	globalMu.Lock()
	s := globalStore
	globalStore, globalWriter = nil, nil
	globalMu.Unlock()
	if s != nil {
		s.Close()
	}
}
