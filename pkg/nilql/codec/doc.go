// Package codec converts plaintext values to and from the tagged byte
// buffers that every protection mode operates on.
//
// # Wire Layout
//
// Integers are written as a zero tag byte followed by eight little-endian
// bytes holding the value shifted by 2^31, so the encoded form of every
// 32-bit signed integer is non-negative and of fixed width:
//
//	Encode(Integer(123))  // 00 7b 00 00 80 00 00 00 00
//
// Strings are written as a one tag byte followed by their UTF-8 bytes:
//
//	Encode(String("abc")) // 01 61 62 63
//
// The layout is part of the ciphertext format shared with other clients and
// must not change.
package codec
