package vim3

import (
	"fmt"

	"github.com/u-root/u-root/pkg/dt"

	"vim3-go/drivers/khadasmcu"
	"vim3-go/errcode"
	"vim3-go/services/board"
	"vim3-go/types"
	"vim3-go/x/fdtx"
)

const cellSize = 4

// FixupDeviceTree routes the shared lane in tree to PCIe when the MCU says
// so. Every anomaly is reported and the result is always 0. An anomaly
// before the USB node is edited leaves the tree untouched; a missing PCIe
// node or a failed enable leaves the USB PHY edits in place with PCIe still
// disabled.
func (b *Board) FixupDeviceTree(tree *fdtx.Tree, _ *board.BoardInfo) int {
	if d := b.ApplyDeviceTree(tree); d != nil {
		b.report(d, types.SeverityError)
	}
	return 0
}

// ApplyDeviceTree is FixupDeviceTree without the collapse: it returns the
// anomaly that stopped the fixup, or nil when the tree was patched or needs
// no patching. Non-fatal anomalies are reported as they happen.
func (b *Board) ApplyDeviceTree(tree *fdtx.Tree) *Diag {
	p := b.Profile
	if tree == nil || tree.FDT == nil || tree.Root() == nil {
		return fixupDiag(KindMCUNode, errcode.InvalidArgument, nil, "no device tree")
	}
	ctl := tree.Root()
	if b.Control != nil && b.Control.RootNode != nil {
		ctl = b.Control.RootNode
	}

	mcuNode, ok := fdtx.FindCompatible(ctl, p.MCUCompatible)
	if !ok {
		return fixupDiag(KindMCUNode, errcode.NotFound, nil, "cannot find %s node", p.MCUCompatible)
	}
	addr, err := fdtx.PropU32(mcuNode, "reg")
	if err != nil {
		return fixupDiag(KindMCUAddr, errcode.NotFound, err, "cannot find %s node i2c addr", p.MCUCompatible)
	}
	busNode, ok := fdtx.Parent(ctl, mcuNode)
	if !ok {
		return fixupDiag(KindI2CNode, errcode.NotFound, nil, "cannot find %s i2c node", p.MCUCompatible)
	}
	path, _ := fdtx.Path(ctl, busNode)
	if b.Buses == nil {
		return fixupDiag(KindI2CBus, errcode.IO, nil, "cannot find i2c bus (%s)", path)
	}
	i2c, ok := b.Buses.ByID(path)
	if !ok || i2c == nil {
		return fixupDiag(KindI2CBus, errcode.IO, nil, "cannot find i2c bus (%s)", path)
	}
	// 7-bit addressing only; 0 is the general call address.
	if addr == 0 || addr > 0x7F {
		return fixupDiag(KindI2CChip, errcode.InvalidArgument, nil, "cannot find i2c chip (%#x)", addr)
	}
	mcu := khadasmcu.New(i2c, khadasmcu.Config{Address: uint16(addr)})

	mode, raw, err := mcu.SwitchMode()
	if err != nil {
		return fixupDiag(KindRegRead, errcode.IO, err, "failed to read i2c reg (%v)", err)
	}
	b.debugf("MCU_USB_PCIE_SWITCH_REG: %d", raw)
	if b.Verbose {
		if major, minor, err := mcu.Version(); err != nil {
			b.debugf("MCU firmware version unavailable (%v)", err)
		} else {
			b.debugf("MCU firmware version: %d.%d", major, minor)
		}
	}

	state := types.SwitchState{Reg: khadasmcu.RegUSBPCIeSwitch, Raw: raw, Mode: types.SerDesUSB3}
	if mode == khadasmcu.ModePCIe {
		state.Mode = types.SerDesPCIe
		if d := b.enablePCIe(tree); d != nil {
			b.publish(b.topic("serdes"), state, true)
			return d
		}
		state.Applied = true
	}
	b.publish(b.topic("serdes"), state, true)
	return nil
}

// enablePCIe hands the lane to the PCIe controller: the USB controller loses
// its USB3 PHY and the PCIe node is enabled.
func (b *Board) enablePCIe(tree *fdtx.Tree) *Diag {
	p := b.Profile
	usb, ok := fdtx.FindCompatible(tree.Root(), p.USBCompatible)
	if !ok {
		return fixupDiag(KindUSBNode, errcode.NotFound, nil, "cannot find %s node", p.USBCompatible)
	}

	// Mandatory to disable USB3.
	if err := tree.SetProp(usb, "phy-names", fdtx.EncodeStrings(p.USB2PhyNames...)); err != nil {
		return fixupDiag(KindPhyNames, errcode.IO, err, "failed to update usb phy names property (%v)", err)
	}

	// Keep the first entries of "phys", optional.
	if phys, ok := fdtx.Prop(usb, "phys"); ok {
		n := min(p.PhysKeep*cellSize, len(phys))
		if err := tree.SetProp(usb, "phys", phys[:n]); err != nil {
			b.report(fixupDiag(KindPhysWrite, errcode.IO, err, "failed to update usb phys property (%v)", err), types.SeverityWarn)
		}
	} else {
		b.report(fixupDiag(KindPhys, errcode.NotFound, nil, "cannot find usb node phys property"), types.SeverityWarn)
	}

	pcie, ok := fdtx.FindCompatible(tree.Root(), p.PCIeCompatible)
	if !ok {
		return fixupDiag(KindPCIeNode, errcode.NotFound, nil, "cannot find %s node", p.PCIeCompatible)
	}
	if err := tree.SetString(pcie, "status", "okay"); err != nil {
		return fixupDiag(KindPCIeEnable, errcode.IO, err, "failed to enable pcie node (%v)", err)
	}

	b.logf("successfully enabled PCIe")
	return nil
}

func fixupDiag(k Kind, c errcode.Code, err error, format string, args ...any) *Diag {
	return &Diag{Hook: HookFixup, Kind: k, C: c, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Status reads a node's "status", treating a missing property as "okay".
func Status(n *dt.Node) string {
	v, ok := fdtx.Prop(n, "status")
	if !ok {
		return "okay"
	}
	if s := fdtx.DecodeStrings(v); len(s) > 0 {
		return s[0]
	}
	return ""
}
