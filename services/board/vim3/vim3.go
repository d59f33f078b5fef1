// Package vim3 implements the Khadas VIM3 and VIM3L board hooks.
//
// The on-board MCU muxes the shared USB3/PCIe differential pair between the
// USB3 Type-A connector and the M.2 Key M slot. The SoC PHY behind that pair
// serves only one controller at a time, so the device tree handed to the
// kernel is patched to match the MCU setting.
package vim3

import (
	"fmt"
	"io"
	"os"

	"github.com/u-root/u-root/pkg/dt"

	"vim3-go/bus"
	"vim3-go/services/board"
	"vim3-go/services/env"
	"vim3-go/services/i2cdev"
	"vim3-go/services/macgen"
	"vim3-go/services/secmon"
	"vim3-go/types"
)

// Board holds every collaborator the hooks need.
type Board struct {
	Profile Profile
	Control *dt.FDT // nil: look the MCU up in the target tree
	Buses   i2cdev.Factory
	Env     env.Env
	Monitor secmon.Monitor
	Eth     board.Ethernet
	Ethaddr board.AddrGenerator
	Deriver macgen.Deriver
	Out     io.Writer       // console, defaults to stdout
	Conn    *bus.Connection // structured events; nil disables them
	Verbose bool
}

// New returns a Board with the default profile.
func New() *Board { return &Board{Profile: DefaultProfile()} }

var _ board.Hooks = (*Board)(nil)

type builder struct{}

func init() {
	board.Register("khadas,vim3", builder{})
	board.Register("khadas,vim3l", builder{})
}

func (builder) Build(in board.BuildInput) (board.Hooks, error) {
	p, err := LoadProfile(board.ID(in.Compatible), in.ProfileJSON)
	if err != nil {
		return nil, err
	}
	d, _ := p.Deriver()
	b := &Board{
		Profile: p,
		Control: in.Control,
		Buses:   in.Buses,
		Env:     in.Env,
		Monitor: in.Monitor,
		Eth:     in.Ethernet,
		Ethaddr: in.Ethaddr,
		Deriver: d,
		Out:     in.Out,
		Conn:    in.Conn,
		Verbose: in.Verbose,
	}
	if b.Ethaddr == nil && in.Env != nil && in.Monitor != nil {
		b.Ethaddr = macgen.SerialEthaddr{Env: in.Env, Monitor: in.Monitor, Deriver: d}
	}
	return b, nil
}

func (b *Board) out() io.Writer {
	if b.Out == nil {
		return os.Stdout
	}
	return b.Out
}

func (b *Board) logf(format string, args ...any) {
	fmt.Fprintf(b.out(), "vim3: "+format+"\n", args...)
}

func (b *Board) debugf(format string, args ...any) {
	if b.Verbose {
		b.logf(format, args...)
	}
}

func (b *Board) topic(tokens ...string) bus.Topic {
	return append(bus.T("board", b.Profile.Board), tokens...)
}

func (b *Board) publish(t bus.Topic, payload any, retained bool) {
	if b.Conn == nil {
		return
	}
	b.Conn.Publish(b.Conn.NewMessage(t, payload, retained))
}

// report prints d and publishes it as a types.BoardDiag.
func (b *Board) report(d *Diag, sev types.Severity) {
	b.logf("%s", d.Msg)
	ev := types.BoardDiag{
		Board:    b.Profile.Board,
		Hook:     d.Hook,
		Kind:     string(d.Kind),
		Code:     string(d.C),
		Severity: sev,
		Msg:      d.Msg,
	}
	if d.Err != nil {
		ev.Err = d.Err.Error()
	}
	b.publish(b.topic("diag", string(d.Kind)), ev, false)
}
