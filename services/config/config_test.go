package config

import (
	"fmt"
	"reflect"
	"testing"

	"vim3-go/bus"
)

type profile struct {
	Board     string   `json:"board"`
	MCU       string   `json:"mcu_compatible"`
	USB       string   `json:"usb_compatible"`
	PCIe      string   `json:"pcie_compatible"`
	PhyNames  []string `json:"usb2_phy_names"`
	PhysKeep  int      `json:"phys_keep"`
	EthMode   string   `json:"eth_mode"`
	EthIndex  int      `json:"eth_index"`
	SerialKey string   `json:"serial_key"`
	CRC32     string   `json:"crc32"`
	Extra     string   `json:"extra"`
}

func TestConfig_PublishEmbedded_RetainedPerKey(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(board string) ([]byte, bool) {
		if board != "khadas-vim3" {
			return nil, false
		}
		return []byte(`{
			"board": "vim3",
			"phys_keep": 2,
			"usb2_phy_names": ["usb2-phy0", "usb2-phy1"]
		}`), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	if err := Publish(conn, "khadas-vim3"); err != nil {
		t.Fatal(err)
	}

	// Retained messages arrive on subscribe.
	sub := conn.Subscribe(bus.T(configPrefix, "khadas-vim3", "#"))
	got := map[string]any{}
	for len(got) < 3 {
		select {
		case m := <-sub.Channel():
			if len(m.Topic) != 3 || m.Topic[0] != configPrefix {
				t.Fatalf("unexpected topic: %v", m.Topic)
			}
			got[m.Topic[2]] = m.Payload
		default:
			t.Fatalf("expected 3 retained messages, got %d (%v)", len(got), got)
		}
	}

	if s, ok := got["board"].(string); !ok || s != "vim3" {
		t.Fatalf("board payload = %#v", got["board"])
	}
	if n := fmt.Sprint(got["phys_keep"]); n != "2" {
		t.Fatalf("phys_keep payload = %#v", got["phys_keep"])
	}
	if l, ok := got["usb2_phy_names"].([]any); !ok || len(l) != 2 {
		t.Fatalf("usb2_phy_names payload = %#v", got["usb2_phy_names"])
	}
}

func TestConfig_Publish_NoConfigFound(t *testing.T) {
	conn := bus.NewBus(4).NewConnection("test-no-config")
	if err := Publish(conn, "unknown-board"); err == nil {
		t.Fatal("expected error for missing embedded config, got nil")
	}
}

func TestConfig_Publish_RejectsBadJSON(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	for _, raw := range []string{`{"board": }`, `[1, 2]`, `{"board": "vim3"} trailing`} {
		EmbeddedConfigLookup = func(string) ([]byte, bool) { return []byte(raw), true }
		b := bus.NewBus(4)
		conn := b.NewConnection("test-bad-config")
		if err := Publish(conn, "khadas-vim3"); err == nil {
			t.Fatalf("%q accepted", raw)
		}
		sub := conn.Subscribe(bus.T(configPrefix, "#"))
		select {
		case m := <-sub.Channel():
			t.Fatalf("%q: retained %v published", raw, m.Topic)
		default:
		}
	}
}

func TestLoadEmbedded(t *testing.T) {
	want := []string{"khadas-vim3", "khadas-vim3l"}
	if got := Boards(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Boards = %v", got)
	}
	for _, id := range want {
		p := profile{Extra: "kept"}
		if err := Load(id, &p); err != nil {
			t.Fatalf("%s: %v", id, err)
		}
		if p.MCU != "khadas,mcu" || p.SerialKey != "serial#" || p.PhysKeep != 2 || len(p.PhyNames) != 2 {
			t.Fatalf("%s: %+v", id, p)
		}
		if p.Extra != "kept" {
			t.Fatalf("%s: absent field overwritten", id)
		}
	}
}

func TestDecodeStrict(t *testing.T) {
	var p profile
	if err := Decode([]byte(`{"board":"x","bogus":1}`), &p); err == nil {
		t.Fatal("unknown field accepted")
	}
	if err := Decode([]byte(`{"board":"x"} {}`), &p); err == nil {
		t.Fatal("trailing data accepted")
	}
	if err := Decode([]byte(`{"board":"x"}`), &p); err != nil || p.Board != "x" {
		t.Fatalf("Decode = %+v, %v", p, err)
	}
}
