package httpwire

import (
	"bytes"
	"strconv"
	"strings"
)

// chunkedBody decodes chunked transfer coding. Decoding stops at the
// zero sized chunk, at a malformed size line, when the input runs out,
// or once limit bytes have been produced. Trailers are ignored.
type chunkedBody struct{}

func (chunkedBody) Decode(raw []byte, limit int) []byte {
	out := []byte{}
	pos := 0
	for pos < len(raw) && len(out) < limit {
		nl := bytes.IndexByte(raw[pos:], '\n')
		if nl < 0 {
			break
		}
		lineEnd := pos + nl
		sizeLine := strings.TrimRight(string(raw[pos:lineEnd]), "\r")
		sizeLine, _, _ = strings.Cut(sizeLine, ";")
		size, err := strconv.ParseUint(strings.TrimSpace(sizeLine), 16, 64)
		if err != nil || size == 0 {
			break
		}
		pos = lineEnd + 1
		chunkEnd := len(raw)
		if size < uint64(len(raw)-pos) {
			chunkEnd = pos + int(size)
		}
		count := min(limit-len(out), chunkEnd-pos)
		out = append(out, raw[pos:pos+count]...)
		pos = chunkEnd + 2
	}
	return out
}
