package ingest

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	invalidImagesMessage = "Invalid 'images' format. Must be a list of objects with 'name' and 'image' keys."
	invalidVideosMessage = "Invalid 'videos' format, must be a list of objects with 'name' and either 'video' (base64) or 'url'"
)

// ShapeError rejects a whole batch before any network activity.
type ShapeError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ShapeError) Error() string {
	return e.Message
}

func (e *ShapeError) Unwrap() error {
	return e.Cause
}

// JobInput is the validated form of a raw job input mapping.
type JobInput struct {
	Raw       map[string]any
	Images    []Descriptor
	Videos    []Descriptor
	HasImages bool
	HasVideos bool
}

// Batch returns the descriptors for kind and whether the key was present.
func (in *JobInput) Batch(kind Kind) ([]Descriptor, bool) {
	switch kind {
	case KindImage:
		return in.Images, in.HasImages
	case KindVideo:
		return in.Videos, in.HasVideos
	}
	return nil, false
}

type imageShape struct {
	Name    string `validate:"required"`
	HasData bool   `validate:"required"`
}

type videoShape struct {
	Name    string `validate:"required"`
	HasData bool
	HasURL  bool `validate:"required_without=HasData"`
}

var shapes = validator.New(validator.WithRequiredStructEnabled())

// ValidateInput checks the optional images and videos lists of a job input.
// Images are checked first; the videos pass runs independently after it.
func ValidateInput(raw map[string]any) (*JobInput, error) {
	if raw == nil {
		return nil, &ShapeError{Field: "input", Message: "Please provide input"}
	}

	in := &JobInput{Raw: raw}

	images, present, err := parseBatch(raw, KindImage)
	if err != nil {
		return nil, err
	}
	in.Images, in.HasImages = images, present

	videos, present, err := parseBatch(raw, KindVideo)
	if err != nil {
		return nil, err
	}
	in.Videos, in.HasVideos = videos, present

	return in, nil
}

func parseBatch(raw map[string]any, kind Kind) ([]Descriptor, bool, error) {
	value, ok := raw[kind.ListKey()]
	if !ok || value == nil {
		return nil, false, nil
	}

	items, ok := value.([]any)
	if !ok {
		return nil, true, shapeError(kind, fmt.Errorf("%s is %T, not a list", kind.ListKey(), value))
	}

	out := make([]Descriptor, 0, len(items))
	for i, item := range items {
		d, err := parseDescriptor(item, kind)
		if err != nil {
			return nil, true, shapeError(kind, fmt.Errorf("%s[%d]: %w", kind.ListKey(), i, err))
		}
		out = append(out, d)
	}

	return out, true, nil
}

func parseDescriptor(item any, kind Kind) (Descriptor, error) {
	m, ok := item.(map[string]any)
	if !ok {
		return Descriptor{}, fmt.Errorf("element is %T, not an object", item)
	}

	var d Descriptor
	var err error

	if d.Name, _, err = stringField(m, "name"); err != nil {
		return Descriptor{}, err
	}
	if d.Data, d.HasData, err = stringField(m, kind.Field()); err != nil {
		return Descriptor{}, err
	}
	if kind == KindVideo {
		if d.URL, d.HasURL, err = stringField(m, "url"); err != nil {
			return Descriptor{}, err
		}
	}

	switch kind {
	case KindImage:
		err = shapes.Struct(imageShape{Name: d.Name, HasData: d.HasData})
	default:
		err = shapes.Struct(videoShape{Name: d.Name, HasData: d.HasData, HasURL: d.HasURL})
	}
	if err != nil {
		return Descriptor{}, err
	}

	return d, nil
}

func stringField(m map[string]any, key string) (string, bool, error) {
	v, ok := m[key]
	if !ok {
		return "", false, nil
	}
	if v == nil {
		return "", true, nil
	}

	s, ok := v.(string)
	if !ok {
		return "", true, fmt.Errorf("field %q is %T, not a string", key, v)
	}

	return s, true, nil
}

func shapeError(kind Kind, cause error) *ShapeError {
	msg := invalidVideosMessage
	if kind == KindImage {
		msg = invalidImagesMessage
	}
	return &ShapeError{Field: kind.ListKey(), Message: msg, Cause: cause}
}
