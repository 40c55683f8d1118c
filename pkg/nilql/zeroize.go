package nilql

import "runtime"

// zeroizeBytes overwrites buf so encoded plaintexts and masks do not linger
// after an operation. It cannot reach copies made by the runtime or by
// crypto primitives.
func zeroizeBytes(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	// Prevent dead store elimination per golang/go#33325
	runtime.KeepAlive(buf)
}
