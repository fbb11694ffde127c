// Package ingest validates media descriptors from job input and forwards the
// referenced bytes to the processing server.
package ingest

import "fmt"

// Kind is the media family a batch belongs to. It selects the embedded payload
// field name, the default content type and the wording of outcome messages.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Field is the wire-level name of the embedded payload field for this kind.
func (k Kind) Field() string {
	return string(k)
}

// ListKey is the job input key holding a batch of this kind.
func (k Kind) ListKey() string {
	return string(k) + "s"
}

// DefaultContentType is used when a payload carries no declared type.
func (k Kind) DefaultContentType() string {
	if k == KindImage {
		return "image/png"
	}
	return "video/mp4"
}

func (k Kind) plural() string {
	return k.ListKey()
}

// PayloadKind reports where a descriptor's bytes come from.
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadRemote
	PayloadEmbedded
)

func (p PayloadKind) String() string {
	switch p {
	case PayloadRemote:
		return "remote"
	case PayloadEmbedded:
		return "embedded"
	default:
		return "none"
	}
}

// Descriptor is one media item to be uploaded. HasData and HasURL record key
// presence; Data and URL may still be empty strings.
type Descriptor struct {
	Name    string
	Data    string
	URL     string
	HasData bool
	HasURL  bool
}

// Payload resolves the source precedence: a non-empty URL wins over embedded data.
func (d Descriptor) Payload() PayloadKind {
	switch {
	case d.URL != "":
		return PayloadRemote
	case d.Data != "":
		return PayloadEmbedded
	default:
		return PayloadNone
	}
}

func (d Descriptor) displayName() string {
	if d.Name == "" {
		return "unknown"
	}
	return d.Name
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s (%s)", d.displayName(), d.Payload())
}
