package config

// Embedded board profiles.
// Key: board id, the first root compatible with ',' replaced by '-'.
// Val: raw JSON; keys not present keep the board package defaults.

const cfgVIM3 = `{
  "board": "vim3",
  "mcu_compatible": "khadas,mcu",
  "usb_compatible": "amlogic,meson-g12a-usb-ctrl",
  "pcie_compatible": "amlogic,g12a-pcie",
  "usb2_phy_names": ["usb2-phy0", "usb2-phy1"],
  "phys_keep": 2,
  "eth_mode": "rgmii",
  "eth_index": 0,
  "serial_key": "serial#",
  "crc32": "raw"
}`

// The VIM3L (S905D3) shares the board file and the MCU.
const cfgVIM3L = `{
  "board": "vim3l",
  "mcu_compatible": "khadas,mcu",
  "usb_compatible": "amlogic,meson-g12a-usb-ctrl",
  "pcie_compatible": "amlogic,g12a-pcie",
  "usb2_phy_names": ["usb2-phy0", "usb2-phy1"],
  "phys_keep": 2,
  "eth_mode": "rgmii",
  "eth_index": 0,
  "serial_key": "serial#",
  "crc32": "raw"
}`

var embeddedConfigs = map[string][]byte{
	"khadas-vim3":  []byte(cfgVIM3),
	"khadas-vim3l": []byte(cfgVIM3L),
}
