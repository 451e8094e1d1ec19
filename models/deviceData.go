package models

import (
	"strings"
)

// DataCollector is the input key selecting the device data collector.
const DataCollector = "dataCollector"

type CollectorKind string

const (
	CollectorCard   CollectorKind = "card"
	CollectorPayPal CollectorKind = "paypal"
	CollectorBoth   CollectorKind = "both"
)

const InvalidDataCollector = "Invalid data collector"

// ParseCollectorKind reads the collector kind from fields. A missing or
// unrecognized kind is reported as false.
func ParseCollectorKind(fields Fields) (CollectorKind, bool) {
	raw, ok := fields.String(DataCollector)
	if !ok {
		return "", false
	}
	switch kind := CollectorKind(strings.ToLower(strings.TrimSpace(raw))); kind {
	case CollectorCard, CollectorPayPal, CollectorBoth:
		return kind, true
	default:
		return "", false
	}
}

// UsesPayPalCollector reports whether the PayPal collector serves the kind;
// card and both use the standard collector.
func (k CollectorKind) UsesPayPalCollector() bool {
	return k == CollectorPayPal
}
