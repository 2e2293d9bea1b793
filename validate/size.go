package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var sizeSpec = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([KMGT]B?)$`)

var sizeUnits = map[string]uint64{
	"K": 1 << 10, "KB": 1 << 10,
	"M": 1 << 20, "MB": 1 << 20,
	"G": 1 << 30, "GB": 1 << 30,
	"T": 1 << 40, "TB": 1 << 40,
}

// ParseSize turns an operator-facing size spec ("10GB", "500M", "1T",
// or a bare byte count) into bytes.
func ParseSize(s string) (uint64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	m := sizeSpec.FindStringSubmatch(s)
	if m == nil {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("unrecognized size '%s'", s)
		}
		return n, nil
	}

	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("unrecognized size '%s'", s)
	}
	return uint64(n * float64(sizeUnits[m[2]])), nil
}

// FormatSize renders bytes for humans, with two decimal places above
// the KB boundary.
func FormatSize(n uint64) string {
	switch {
	case n < 1<<10:
		return fmt.Sprintf("%d B", n)
	case n < 1<<20:
		return fmt.Sprintf("%.2f KB", float64(n)/float64(1<<10))
	case n < 1<<30:
		return fmt.Sprintf("%.2f MB", float64(n)/float64(1<<20))
	case n < 1<<40:
		return fmt.Sprintf("%.2f GB", float64(n)/float64(1<<30))
	default:
		return fmt.Sprintf("%.2f TB", float64(n)/float64(1<<40))
	}
}
