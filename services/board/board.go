// Package board is the board-support hook registry. Board packages register
// a Builder per root compatible string from init; the boot path matches the
// control tree and runs the returned Hooks.
package board

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/u-root/u-root/pkg/dt"

	"vim3-go/bus"
	"vim3-go/services/env"
	"vim3-go/services/i2cdev"
	"vim3-go/services/secmon"
	"vim3-go/x/fdtx"
)

// BoardInfo carries what the generic layer knows about the boot. Board hooks
// may ignore it.
type BoardInfo struct {
	Model   string
	RAMSize uint64
}

// Hooks are the per-board lifecycle callbacks.
type Hooks interface {
	// FixupDeviceTree patches the tree handed to the next stage. It returns
	// 0 on every path.
	FixupDeviceTree(tree *fdtx.Tree, bi *BoardInfo) int
	// MiscInitLate runs once after relocation, before the environment is
	// consulted by later stages.
	MiscInitLate() error
}

// Ethernet brings up the on-board MAC.
type Ethernet interface {
	Init(mode string, index int) error
}

// EthernetFunc adapts a function to Ethernet.
type EthernetFunc func(mode string, index int) error

func (f EthernetFunc) Init(mode string, index int) error { return f(mode, index) }

// AddrGenerator fills a MAC address variable from hardware identity.
type AddrGenerator interface {
	Generate() error
}

// BuildInput is provided to a board builder. Every dependency is explicit;
// nothing is read from process globals.
type BuildInput struct {
	Compatible  string
	Control     *dt.FDT // tree the firmware itself runs on; nil means use the target tree
	Buses       i2cdev.Factory
	Env         env.Env
	Monitor     secmon.Monitor
	Ethernet    Ethernet
	Ethaddr     AddrGenerator
	Out         io.Writer
	Conn        *bus.Connection
	Verbose     bool
	ProfileJSON []byte // optional override merged over the board defaults
}

// Builder constructs Hooks for one board.
type Builder interface {
	Build(in BuildInput) (Hooks, error)
}

var (
	muBuilders sync.RWMutex
	builders   = map[string]Builder{}
)

// Register installs a builder for a root compatible string.
// It panics on duplicate registration to catch mistakes at start-up.
func Register(compatible string, b Builder) {
	muBuilders.Lock()
	defer muBuilders.Unlock()
	if compatible == "" {
		panic("board: empty compatible for builder")
	}
	if _, exists := builders[compatible]; exists {
		panic(fmt.Sprintf("board: builder already registered for %q", compatible))
	}
	builders[compatible] = b
}

// Lookup returns the builder registered for compatible.
func Lookup(compatible string) (Builder, bool) {
	muBuilders.RLock()
	defer muBuilders.RUnlock()
	b, ok := builders[compatible]
	return b, ok
}

// Compatibles lists registered root compatibles.
func Compatibles() []string {
	muBuilders.RLock()
	defer muBuilders.RUnlock()
	out := make([]string, 0, len(builders))
	for k := range builders {
		out = append(out, k)
	}
	return out
}

// Match walks the root compatible list most specific first and returns the
// first registered entry.
func Match(tree *dt.FDT) (string, Builder, bool) {
	if tree == nil || tree.RootNode == nil {
		return "", nil, false
	}
	v, ok := fdtx.Prop(tree.RootNode, "compatible")
	if !ok {
		return "", nil, false
	}
	for _, c := range fdtx.DecodeStrings(v) {
		if b, ok := Lookup(c); ok {
			return c, b, true
		}
	}
	return "", nil, false
}

// ID turns a compatible into a board id ("khadas,vim3" -> "khadas-vim3").
func ID(compatible string) string { return strings.ReplaceAll(compatible, ",", "-") }
