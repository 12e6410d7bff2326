package llm

import (
	"fmt"
	"sync"
)

// Dialect translates completions to and from one provider's HTTP body
// format. The Adapter owns transport, auth and error mapping.
type Dialect interface {
	Name() string
	// Endpoint is the path, relative to the base URL, that completions are
	// POSTed to.
	Endpoint() string
	Encode(req CompletionRequest) (any, error)
	Decode(body []byte) (CompletionResponse, error)
}

var dialects sync.Map // name -> Dialect

// RegisterDialect makes d available to New under name. Dialect packages call
// it from init.
func RegisterDialect(name string, d Dialect) {
	dialects.Store(name, d)
}

// LookupDialect returns the dialect registered under name.
func LookupDialect(name string) (Dialect, error) {
	d, ok := dialects.Load(name)
	if !ok {
		return nil, fmt.Errorf("llm: no dialect %q registered", name)
	}
	return d.(Dialect), nil
}
