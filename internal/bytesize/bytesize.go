// Package bytesize parses and formats human-readable byte counts.
//
// Configuration values like cache budgets accept strings such as "64Mi",
// "512MB" or plain integers. Binary suffixes (Ki, Mi, Gi, Ti) multiply by
// 1024, decimal suffixes (K, M, G, T) by 1000. A trailing "B" is optional
// in both families.
package bytesize

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteSize is a byte count. It unmarshals from human-readable strings.
type ByteSize uint64

const (
	B ByteSize = 1

	KB ByteSize = 1000 * B
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB
	TB ByteSize = 1000 * GB

	KiB ByteSize = 1024 * B
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
	TiB ByteSize = 1024 * GiB
)

// Parse converts a human-readable size string into a ByteSize.
//
// Accepted forms: "1024", "100MB", "1.5Gi", "512 MiB". Unit suffixes are
// case-insensitive. Fractional values are rounded down to whole bytes.
func Parse(s string) (ByteSize, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	// Split the trailing unit suffix off the numeric part.
	cut := len(trimmed)
	for cut > 0 {
		c := trimmed[cut-1]
		if (c >= '0' && c <= '9') || c == '.' {
			break
		}
		cut--
	}

	numPart := strings.TrimSpace(trimmed[:cut])
	unitPart := strings.TrimSpace(trimmed[cut:])

	mult, err := unitMultiplier(unitPart)
	if err != nil {
		return 0, err
	}

	if strings.Contains(numPart, ".") {
		f, err := strconv.ParseFloat(numPart, 64)
		if err != nil || f < 0 {
			return 0, fmt.Errorf("invalid byte size: %q", s)
		}
		return ByteSize(f * float64(mult)), nil
	}

	n, err := strconv.ParseUint(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}
	return ByteSize(n) * mult, nil
}

// unitMultiplier resolves a unit suffix to its byte multiplier.
func unitMultiplier(unit string) (ByteSize, error) {
	switch strings.TrimSuffix(strings.ToLower(unit), "b") {
	case "":
		return B, nil
	case "k":
		return KB, nil
	case "m":
		return MB, nil
	case "g":
		return GB, nil
	case "t":
		return TB, nil
	case "ki":
		return KiB, nil
	case "mi":
		return MiB, nil
	case "gi":
		return GiB, nil
	case "ti":
		return TiB, nil
	default:
		return 0, fmt.Errorf("unknown byte size unit: %q", unit)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler so ByteSize fields can
// be decoded directly from config files.
func (b *ByteSize) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// String formats the size with the largest fitting binary unit.
func (b ByteSize) String() string {
	switch {
	case b >= TiB:
		return fmt.Sprintf("%.2fTiB", float64(b)/float64(TiB))
	case b >= GiB:
		return fmt.Sprintf("%.2fGiB", float64(b)/float64(GiB))
	case b >= MiB:
		return fmt.Sprintf("%.2fMiB", float64(b)/float64(MiB))
	case b >= KiB:
		return fmt.Sprintf("%.2fKiB", float64(b)/float64(KiB))
	default:
		return fmt.Sprintf("%dB", uint64(b))
	}
}

// Bytes returns the size as a plain uint64.
func (b ByteSize) Bytes() uint64 {
	return uint64(b)
}

// Int64 returns the size as an int64 for APIs that take signed lengths.
func (b ByteSize) Int64() int64 {
	return int64(b)
}
