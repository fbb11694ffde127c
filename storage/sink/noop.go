package sink

import (
	"context"
	"log"
)

type NoopSink struct{}

func (s *NoopSink) Upload(ctx context.Context, obj *Object) (string, error) {
	log.Println("Received no-op sink upload - dumping object information")
	log.Printf("Name: %v", obj.Name)
	log.Printf("Content-Type: %v", obj.ContentType)
	log.Printf("Size: %v", len(obj.Data))

	return "noop://" + obj.Name, nil
}
