// Package macgen derives locally administered unicast MAC addresses from a
// hardware-unique chip serial.
package macgen

import (
	"hash/crc32"

	"github.com/sigurn/crc16"

	"vim3-go/services/env"
	"vim3-go/services/secmon"
	"vim3-go/x/conv"
)

// MAC is a 48-bit hardware address.
type MAC [6]byte

const (
	bitMulticast = 0x01
	bitLocal     = 0x02
	nicForce     = 0x800000 // bit 23: NIC bytes never all zero
)

// CRC16-CCITT as U-Boot's crc16_ccitt(0, ...): poly 0x1021, init 0, no
// reflection, no final xor.
var ccitt = crc16.MakeTable(crc16.CRC16_XMODEM)

// Sum16 is the CRC16-CCITT of p seeded with 0.
func Sum16(p []byte) uint16 { return crc16.Checksum(p, ccitt) }

// Sum32 is a seeded 32-bit checksum over p.
type Sum32 func(seed uint32, p []byte) uint32

// Raw runs the reflected IEEE CRC32 register from seed with no pre or post
// inversion (U-Boot crc32_no_comp). Seed 0 over zero bytes stays 0.
func Raw(seed uint32, p []byte) uint32 { return ^crc32.Update(^seed, crc32.IEEETable, p) }

// IEEE is the zlib-style crc32(seed, p) with inversion on both ends.
func IEEE(seed uint32, p []byte) uint32 { return crc32.Update(seed, crc32.IEEETable, p) }

// Deriver turns chip serials into addresses. The zero value uses Raw.
type Deriver struct {
	Sum32 Sum32
}

// FromSerial derives with the default Deriver.
func FromSerial(serial []byte) MAC { return Deriver{}.FromSerial(serial) }

// FromSerial derives the address: CRC16-CCITT gives the first two bytes
// (multicast cleared, locally administered set) and CRC32 the last four,
// most significant first. Both checksums are seeded with 0.
func (d Deriver) FromSerial(serial []byte) MAC {
	sum := d.Sum32
	if sum == nil {
		sum = Raw
	}
	sid := sum(0, serial)
	sid16 := Sum16(serial)

	if sid&0xFFFFFF == 0 {
		sid |= nicForce
	}

	return MAC{
		byte(sid16>>8)&0xFC | bitLocal,
		byte(sid16),
		byte(sid >> 24),
		byte(sid >> 16),
		byte(sid >> 8),
		byte(sid),
	}
}

func (m MAC) IsLocal() bool   { return m[0]&bitLocal != 0 }
func (m MAC) IsUnicast() bool { return m[0]&bitMulticast == 0 }

// Compact is 12 uppercase hex digits, no separators ("020000800000").
func (m MAC) Compact() string {
	var buf [12]byte
	return string(conv.BytesHex(buf[:], m[:]))
}

// String is the colon-separated lowercase form used by "ethaddr".
func (m MAC) String() string {
	const hexd = "0123456789abcdef"
	var buf [17]byte
	for i, b := range m {
		if i > 0 {
			buf[3*i-1] = ':'
		}
		buf[3*i] = hexd[b>>4]
		buf[3*i+1] = hexd[b&0xF]
	}
	return string(buf[:])
}

// SerialEthaddr fills an unset "ethaddr" from the chip serial.
type SerialEthaddr struct {
	Env     env.Env
	Monitor secmon.Monitor
	Deriver Deriver
	Key     string // defaults to "ethaddr"
}

// Generate is a no-op when the key is already set.
func (g SerialEthaddr) Generate() error {
	key := g.Key
	if key == "" {
		key = "ethaddr"
	}
	if _, ok := g.Env.Get(key); ok {
		return nil
	}
	s, err := g.Monitor.ChipSerial()
	if err != nil {
		return err
	}
	return g.Env.Set(key, g.Deriver.FromSerial(s.Bytes()).String())
}
