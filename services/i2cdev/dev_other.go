//go:build !linux

package i2cdev

import "vim3-go/errcode"

// Dev is unavailable outside Linux.
type Dev struct{}

func Open(string) (*Dev, error) { return nil, errcode.Unsupported }

func (*Dev) Tx(uint16, []byte, []byte) error { return errcode.Unsupported }
func (*Dev) Close() error                    { return nil }
