// Package sink holds the destinations that receive resolved media bytes.
package sink

import "context"

// Object is one resolved media item ready to be transmitted.
type Object struct {
	Name        string
	ContentType string
	Data        []byte
}

// Sink accepts media bytes. Upload returns where the object ended up.
type Sink interface {
	Upload(ctx context.Context, obj *Object) (string, error)
}
