package api

import "strings"

// Severity thresholds for standardized drought indices (SPI/SPEI
// family). They mirror the server's classification so locally rendered
// legends agree with server-side overview counts.
const (
	thresholdD0 = -0.8
	thresholdD1 = -1.3
	thresholdD2 = -1.6
	thresholdD3 = -2.0
)

// Severity class labels.
const (
	ClassNormalWet = "Normal/Wet"
	ClassD0        = "D0"
	ClassD1        = "D1"
	ClassD2        = "D2"
	ClassD3        = "D3"
	ClassD4        = "D4"
	ClassNA        = "N/A"
)

// DroughtClass maps a standardized index value to its severity class.
func DroughtClass(value float64) string {
	switch {
	case value >= 0:
		return ClassNormalWet
	case value >= thresholdD0:
		return ClassD0
	case value >= thresholdD1:
		return ClassD1
	case value >= thresholdD2:
		return ClassD2
	case value >= thresholdD3:
		return ClassD3
	default:
		return ClassD4
	}
}

// IsStandardizedIndex reports whether the index name belongs to the
// SPI/SPEI family, the only ones the severity classes apply to.
func IsStandardizedIndex(index string) bool {
	idx := strings.ToLower(strings.TrimSpace(index))
	return strings.HasPrefix(idx, "spi") || strings.HasPrefix(idx, "spei")
}
