package types

// ------------------------
// Board hook events
// ------------------------

type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// BoardDiag is published for every anomaly a board hook swallows.
type BoardDiag struct {
	Board    string   `json:"board"`         // "vim3"
	Hook     string   `json:"hook"`          // "ft_board_setup", "misc_init_r"
	Kind     string   `json:"kind"`          // stable anomaly id, e.g. "mcu_node"
	Code     string   `json:"code"`          // errcode.Code
	Severity Severity `json:"severity"`      // warn: hook continued, error: hook stopped
	Msg      string   `json:"msg"`           // same text as the console line
	Err      string   `json:"err,omitempty"` // cause, if any
}

// SerDes lane owners.
type SerDesMode string

const (
	SerDesUSB3 SerDesMode = "usb3"
	SerDesPCIe SerDesMode = "pcie"
)

// SwitchState is the retained result of reading the MCU USB/PCIe switch.
type SwitchState struct {
	Reg     uint8      `json:"reg"`
	Raw     uint8      `json:"raw"`
	Mode    SerDesMode `json:"mode"`
	Applied bool       `json:"applied"` // tree patched for PCIe
}

// SerialProvisioned reports a synthesized "serial#".
type SerialProvisioned struct {
	Key   string `json:"key"`   // "serial#"
	Value string `json:"value"` // 12 uppercase hex digits
}
