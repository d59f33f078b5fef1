//go:build linux

package i2cdev

import (
	"os"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"vim3-go/errcode"
)

// linux/i2c-dev.h, linux/i2c.h
const (
	i2cRdwr = 0x0707
	i2cMRd  = 0x0001
)

type i2cMsg struct {
	addr  uint16
	flags uint16
	len   uint16
	_     uint16
	buf   uintptr
}

type i2cRdwrData struct {
	msgs  uintptr
	nmsgs uint32
	_     uint32
}

// Dev is an open /dev/i2c-N adapter. Each Tx is one I2C_RDWR call so a
// register read uses a repeated start.
type Dev struct {
	mu sync.Mutex
	f  *os.File
}

func Open(path string) (*Dev, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &Dev{f: f}, nil
}

func (d *Dev) Tx(addr uint16, w, r []byte) error {
	var msgs [2]i2cMsg
	n := 0
	if len(w) > 0 {
		msgs[n] = i2cMsg{addr: addr, len: uint16(len(w)), buf: uintptr(unsafe.Pointer(&w[0]))}
		n++
	}
	if len(r) > 0 {
		msgs[n] = i2cMsg{addr: addr, flags: i2cMRd, len: uint16(len(r)), buf: uintptr(unsafe.Pointer(&r[0]))}
		n++
	}
	if n == 0 {
		return nil
	}
	data := i2cRdwrData{msgs: uintptr(unsafe.Pointer(&msgs[0])), nmsgs: uint32(n)}

	d.mu.Lock()
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), i2cRdwr, uintptr(unsafe.Pointer(&data)))
	d.mu.Unlock()

	runtime.KeepAlive(w)
	runtime.KeepAlive(r)
	runtime.KeepAlive(&msgs)
	if errno != 0 {
		return errcode.Wrap(errcode.IO, "i2c rdwr", errno)
	}
	return nil
}

func (d *Dev) Close() error { return d.f.Close() }
