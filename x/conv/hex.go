package conv

const hexd = "0123456789ABCDEF"

// BytesHex writes src as uppercase hex without separators into buf and
// returns the used slice. buf must hold 2*len(src) bytes, otherwise buf[:0]
// is returned.
func BytesHex(buf, src []byte) []byte {
	if len(buf) < 2*len(src) {
		return buf[:0]
	}
	for i, b := range src {
		buf[2*i] = hexd[b>>4]
		buf[2*i+1] = hexd[b&0xF]
	}
	return buf[:2*len(src)]
}
