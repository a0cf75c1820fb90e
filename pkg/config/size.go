package config

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// ParseSize converts a size node into bytes. Integers are taken as bytes;
// strings are parsed as human-readable sizes such as "10MB" (10,000,000) or
// "1.5 GiB" (1,610,612,736), case-insensitively.
func ParseSize(v any) (uint64, error) {
	switch n := v.(type) {
	case string:
		b, err := humanize.ParseBytes(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %w", ErrInvalidSizeLiteral, n, err)
		}

		return b, nil

	case uint64:
		return n, nil
	case uint:
		return uint64(n), nil
	case uint32:
		return uint64(n), nil
	case uint16:
		return uint64(n), nil
	case uint8:
		return uint64(n), nil

	case int:
		return signedSize(int64(n))
	case int64:
		return signedSize(n)
	case int32:
		return signedSize(int64(n))
	case int16:
		return signedSize(int64(n))
	case int8:
		return signedSize(int64(n))
	}

	return 0, fmt.Errorf("%w: expected integer or size string, got %T", ErrWrongValueType, v)
}

func signedSize(n int64) (uint64, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSizeLiteral, n)
	}

	return uint64(n), nil
}

// FormatSize renders bytes as a human-readable SI size, e.g. "1.0 kB".
func FormatSize(b uint64) string {
	return humanize.Bytes(b)
}
