package yaml

import (
	"errors"
	"io"

	"github.com/goccy/go-yaml"
)

type (
	// DecodeOption configures a [Decoder].
	DecodeOption = yaml.DecodeOption
	// MapSlice is an ordered mapping, produced when decoding with [OrderedMap].
	MapSlice = yaml.MapSlice
	// MapItem is one key/value pair of a [MapSlice].
	MapItem = yaml.MapItem
)

// OrderedMap makes the [Decoder] produce [MapSlice] values instead of
// map[string]any when decoding into an interface, preserving key order.
func OrderedMap() DecodeOption {
	return yaml.UseOrderedMap()
}

type Decoder struct {
	d *yaml.Decoder
}

func NewDecoder(r io.Reader, opts ...DecodeOption) *Decoder {
	opts = append([]DecodeOption{yaml.AllowDuplicateMapKey()}, opts...)

	return &Decoder{
		d: yaml.NewDecoder(r, opts...),
	}
}

func (d *Decoder) Decode(v any) error {
	err := d.d.Decode(v)
	if err == nil {
		return nil
	}

	var yamlErr yaml.Error
	if errors.As(err, &yamlErr) {
		return &Error{
			Err:   errors.New(yamlErr.GetMessage()),
			Token: yamlErr.GetToken(),
		}
	}

	//nolint:wrapcheck // Return the original error if it's not a [yaml.Error].
	return err
}
