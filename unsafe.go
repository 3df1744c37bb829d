package csvcore

import "unsafe"

// stringBytes returns the bytes backing s without copying. The result must
// never be mutated or retained past s's lifetime.
//
// Grounded on writer.go's use of unsafe.Slice(unsafe.StringData(field), ...)
// to hand string data to SIMD scanning without an allocation.
func stringBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
