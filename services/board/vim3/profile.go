package vim3

import (
	"errors"
	"strings"

	"vim3-go/services/config"
	"vim3-go/services/macgen"
)

// Profile holds every fixed name and constant the hooks use.
type Profile struct {
	Board          string   `json:"board"`
	MCUCompatible  string   `json:"mcu_compatible"`
	USBCompatible  string   `json:"usb_compatible"`
	PCIeCompatible string   `json:"pcie_compatible"`
	USB2PhyNames   []string `json:"usb2_phy_names"`
	PhysKeep       int      `json:"phys_keep"` // phandle cells kept in "phys"
	EthMode        string   `json:"eth_mode"`
	EthIndex       int      `json:"eth_index"`
	SerialKey      string   `json:"serial_key"`
	CRC32          string   `json:"crc32"` // "raw" (U-Boot crc32_no_comp) or "ieee"
}

func DefaultProfile() Profile {
	return Profile{
		Board:          "vim3",
		MCUCompatible:  "khadas,mcu",
		USBCompatible:  "amlogic,meson-g12a-usb-ctrl",
		PCIeCompatible: "amlogic,g12a-pcie",
		USB2PhyNames:   []string{"usb2-phy0", "usb2-phy1"},
		PhysKeep:       2,
		EthMode:        "rgmii",
		EthIndex:       0,
		SerialKey:      "serial#",
		CRC32:          "raw",
	}
}

// LoadProfile starts from the defaults, applies the embedded profile for
// boardID if there is one, then override.
func LoadProfile(boardID string, override []byte) (Profile, error) {
	p := DefaultProfile()
	if _, ok := config.EmbeddedConfigLookup(boardID); ok {
		if err := config.Load(boardID, &p); err != nil {
			return Profile{}, err
		}
	}
	if len(override) > 0 {
		if err := config.Decode(override, &p); err != nil {
			return Profile{}, err
		}
	}
	return p, p.validate()
}

func (p Profile) validate() error {
	switch {
	case p.Board == "":
		return errors.New("vim3: profile: empty board name")
	case p.MCUCompatible == "" || p.USBCompatible == "" || p.PCIeCompatible == "":
		return errors.New("vim3: profile: empty compatible")
	case len(p.USB2PhyNames) == 0:
		return errors.New("vim3: profile: no usb2 phy names")
	case p.PhysKeep < 0:
		return errors.New("vim3: profile: negative phys_keep")
	case p.SerialKey == "" || strings.ContainsAny(p.SerialKey, "=\x00"):
		return errors.New("vim3: profile: bad serial key")
	}
	_, err := p.Deriver()
	return err
}

// Deriver returns the MAC deriver selected by CRC32.
func (p Profile) Deriver() (macgen.Deriver, error) {
	switch p.CRC32 {
	case "", "raw":
		return macgen.Deriver{Sum32: macgen.Raw}, nil
	case "ieee":
		return macgen.Deriver{Sum32: macgen.IEEE}, nil
	}
	return macgen.Deriver{}, errors.New("vim3: profile: unknown crc32 variant " + p.CRC32)
}
