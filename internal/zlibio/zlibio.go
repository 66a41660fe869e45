// Package zlibio wraps the zlib codec used for tile and image wire
// payloads.
//
// Decompression uses a sized-output callback: the caller learns the
// decompressed size and must return a writable buffer of exactly that
// size, or reject the payload. Pixel byte order on the wire is the
// canonical little-endian BGRA layout regardless of host endianness.
package zlibio

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

// ErrSizeMismatch is returned by Inflate when the output callback
// rejects the decompressed size.
var ErrSizeMismatch = errors.New("zlibio: output size mismatch")

// Inflate decompresses a zlib stream. Once the decompressed size is
// known, buffer is called with it and must return a writable slice of
// exactly that size; returning an error aborts the operation. The
// decompressed bytes are copied into the returned slice.
func Inflate(data []byte, buffer func(size int) ([]byte, error)) error {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("zlibio: %w", err)
	}
	raw, err := io.ReadAll(zr)
	if cerr := zr.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("zlibio: %w", err)
	}
	out, err := buffer(len(raw))
	if err != nil {
		return err
	}
	if len(out) != len(raw) {
		return fmt.Errorf("%w: need %d bytes, got %d", ErrSizeMismatch, len(raw), len(out))
	}
	copy(out, raw)
	return nil
}

// Deflate compresses data with zlib at the default compression level.
func Deflate(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		// Writing to a bytes.Buffer cannot fail.
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
