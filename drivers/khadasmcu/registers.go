// Package khadasmcu drives the auxiliary microcontroller found on Khadas
// VIM boards. The MCU sits on an I2C bus with one-byte register addressing.
package khadasmcu

const (
	// 7-bit I2C address used on VIM3/VIM3L.
	AddressDefault = 0x18

	// Register sub-addresses (8-bit registers).
	regVersion0      = 0x12
	regVersion1      = 0x13
	regUSBPCIeSwitch = 0x33
)

// RegUSBPCIeSwitch selects which controller owns the shared SerDes lane.
const RegUSBPCIeSwitch = regUSBPCIeSwitch
