package vim3

import "vim3-go/errcode"

// Hook names, as the boot framework calls them.
const (
	HookFixup = "ft_board_setup"
	HookMisc  = "misc_init_r"
)

// Kind identifies one anomaly a hook can swallow.
type Kind string

const (
	KindMCUNode    Kind = "mcu_node"
	KindMCUAddr    Kind = "mcu_addr"
	KindI2CNode    Kind = "i2c_node"
	KindI2CBus     Kind = "i2c_bus"
	KindI2CChip    Kind = "i2c_chip"
	KindRegRead    Kind = "reg_read"
	KindUSBNode    Kind = "usb_node"
	KindPhyNames   Kind = "phy_names"
	KindPhys       Kind = "phys"       // warn: property absent
	KindPhysWrite  Kind = "phys_write" // warn: PCIe enablement continues
	KindPCIeNode   Kind = "pcie_node"
	KindPCIeEnable Kind = "pcie_enable"
	KindEthInit    Kind = "eth_init"   // warn: result not acted on
	KindEthaddr    Kind = "ethaddr"    // warn: result not acted on
	KindSerial     Kind = "serial"     // secure monitor query failed
	KindSerialSet  Kind = "serial_set" // warn: env refused the value
)

// Diag is the error a hook step produces. Fixup collapses it to status 0
// after reporting it.
type Diag struct {
	Hook string
	Kind Kind
	C    errcode.Code
	Msg  string // console text, without the "vim3: " prefix
	Err  error
}

func (d *Diag) Error() string      { return "vim3: " + d.Msg }
func (d *Diag) Unwrap() error      { return d.Err }
func (d *Diag) Code() errcode.Code { return d.C }
