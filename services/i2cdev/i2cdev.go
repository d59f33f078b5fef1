// Package i2cdev resolves device-tree I2C bus nodes to live buses.
package i2cdev

import (
	"sync"

	"tinygo.org/x/drivers"

	"vim3-go/errcode"
)

// Factory injects I2C buses by device-tree node path
// (e.g. "/soc/bus@ff800000/i2c@5000").
// Uses the TinyGo drivers.I2C interface to remain compatible on MCU builds.
type Factory interface {
	ByID(path string) (drivers.I2C, bool)
}

// Map is a fixed Factory.
type Map map[string]drivers.I2C

func (m Map) ByID(path string) (drivers.I2C, bool) {
	b, ok := m[path]
	return b, ok
}

// ----------------------------- Host bus --------------------------------------

// ErrNoDevice is returned when no chip acks the address.
var ErrNoDevice = &errcode.E{C: errcode.IO, Msg: "no device at address"}

// Chip is a register file behind one address. The first written byte sets the
// register pointer, which auto-increments on every data byte.
type Chip struct {
	Regs [256]byte
	Err  error // returned from every transaction when set
}

// HostBus implements drivers.I2C for host-side tests.
type HostBus struct {
	mu    sync.Mutex
	chips map[uint16]*Chip
	Err   error // bus-level failure
	Txs   int
}

func NewHostBus() *HostBus { return &HostBus{chips: make(map[uint16]*Chip)} }

// Attach places a chip at addr and returns it for scripting.
func (h *HostBus) Attach(addr uint16) *Chip {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := &Chip{}
	h.chips[addr] = c
	return c
}

func (h *HostBus) Tx(addr uint16, w, r []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Txs++
	if h.Err != nil {
		return h.Err
	}
	c, ok := h.chips[addr]
	if !ok {
		return ErrNoDevice
	}
	if c.Err != nil {
		return c.Err
	}
	if len(w) == 0 {
		return nil
	}
	ptr := w[0]
	for _, b := range w[1:] {
		c.Regs[ptr] = b
		ptr++
	}
	for i := range r {
		r[i] = c.Regs[ptr]
		ptr++
	}
	return nil
}
