package board

import (
	"testing"

	"github.com/u-root/u-root/pkg/dt"

	"vim3-go/x/fdtx"
)

type nopHooks struct{}

func (nopHooks) FixupDeviceTree(*fdtx.Tree, *BoardInfo) int { return 0 }
func (nopHooks) MiscInitLate() error                       { return nil }

type nopBuilder struct{ name string }

func (nopBuilder) Build(BuildInput) (Hooks, error) { return nopHooks{}, nil }

func rootWith(compat ...string) *dt.FDT {
	return &dt.FDT{RootNode: &dt.Node{
		Name:       "/",
		Properties: []dt.Property{{Name: "compatible", Value: fdtx.EncodeStrings(compat...)}},
	}}
}

func TestRegisterAndMatch(t *testing.T) {
	Register("test,board-a", nopBuilder{"a"})
	Register("test,soc", nopBuilder{"soc"})

	c, b, ok := Match(rootWith("test,board-a", "test,soc"))
	if !ok || c != "test,board-a" || b.(nopBuilder).name != "a" {
		t.Fatalf("most specific entry must win: %q %v %v", c, b, ok)
	}
	c, _, ok = Match(rootWith("test,unknown", "test,soc"))
	if !ok || c != "test,soc" {
		t.Fatalf("fallback to SoC entry: %q %v", c, ok)
	}
	if _, _, ok := Match(rootWith("test,none")); ok {
		t.Fatal("unregistered tree matched")
	}
	if _, _, ok := Match(&dt.FDT{RootNode: &dt.Node{Name: "/"}}); ok {
		t.Fatal("root without compatible matched")
	}
	if _, _, ok := Match(nil); ok {
		t.Fatal("nil tree matched")
	}

	if _, ok := Lookup("test,soc"); !ok {
		t.Fatal("Lookup failed")
	}
	found := false
	for _, c := range Compatibles() {
		found = found || c == "test,board-a"
	}
	if !found {
		t.Fatal("Compatibles missing entry")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("test,dup", nopBuilder{})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	Register("test,dup", nopBuilder{})
}

func TestRegisterEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on empty compatible")
		}
	}()
	Register("", nopBuilder{})
}

func TestID(t *testing.T) {
	if got := ID("khadas,vim3l"); got != "khadas-vim3l" {
		t.Fatalf("ID = %q", got)
	}
}

func TestEthernetFunc(t *testing.T) {
	var gotMode string
	var gotIdx = -1
	e := EthernetFunc(func(mode string, index int) error { gotMode, gotIdx = mode, index; return nil })
	if err := e.Init("rgmii", 0); err != nil || gotMode != "rgmii" || gotIdx != 0 {
		t.Fatalf("Init: %q %d %v", gotMode, gotIdx, err)
	}
}
