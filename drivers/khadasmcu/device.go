package khadasmcu

import (
	"tinygo.org/x/drivers"
)

// Mode is the owner of the USB3/PCIe shared differential pair.
type Mode uint8

const (
	ModeUSB3 Mode = iota // register value 0
	ModePCIe             // any nonzero register value
)

func (m Mode) String() string {
	if m == ModePCIe {
		return "pcie"
	}
	return "usb3"
}

// ModeOf decodes the USB/PCIe switch register.
func ModeOf(raw byte) Mode {
	if raw != 0 {
		return ModePCIe
	}
	return ModeUSB3
}

// Config for the driver.
type Config struct {
	Address uint16
}

// DefaultConfig uses the board default address.
func DefaultConfig() Config { return Config{Address: AddressDefault} }

// Device is one MCU on an I2C bus.
type Device struct {
	i2c  drivers.I2C
	addr uint16

	// Fixed buffers to avoid per-call heap allocations.
	w [1]byte
	r [1]byte
}

// New binds an MCU at cfg.Address.
func New(i2c drivers.I2C, cfg Config) *Device {
	return &Device{i2c: i2c, addr: cfg.Address}
}

func (d *Device) Address() uint16 { return d.addr }

// ReadReg reads one byte at reg.
func (d *Device) ReadReg(reg byte) (byte, error) {
	d.w[0] = reg
	if err := d.i2c.Tx(d.addr, d.w[:1], d.r[:1]); err != nil {
		return 0, err
	}
	return d.r[0], nil
}

// SwitchMode reads the USB/PCIe switch and returns the raw value with its
// decoded mode.
func (d *Device) SwitchMode() (Mode, byte, error) {
	v, err := d.ReadReg(regUSBPCIeSwitch)
	if err != nil {
		return ModeUSB3, 0, err
	}
	return ModeOf(v), v, nil
}

// Version returns the MCU firmware version bytes.
func (d *Device) Version() (major, minor byte, err error) {
	if major, err = d.ReadReg(regVersion0); err != nil {
		return 0, 0, err
	}
	if minor, err = d.ReadReg(regVersion1); err != nil {
		return 0, 0, err
	}
	return major, minor, nil
}
