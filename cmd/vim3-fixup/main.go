// Command vim3-fixup runs the VIM3 board hooks against a device tree blob
// and a U-Boot environment image from userspace: it provisions "serial#"
// and routes the shared USB3/PCIe lane in the tree the way the MCU says.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/u-root/u-root/pkg/dt"
	"golang.org/x/term"

	"vim3-go/bus"
	"vim3-go/services/board"
	_ "vim3-go/services/board/vim3"
	"vim3-go/services/config"
	"vim3-go/services/env"
	"vim3-go/services/i2cdev"
	"vim3-go/services/secmon"
	"vim3-go/x/fdtx"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	dtb, out   string
	env        string
	envSize    int
	serial     string
	sysfs, dev string
	profile    string
	pad        int
	verbose    bool
}

func parse(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("vim3-fixup", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.dtb, "dtb", "", "device tree blob to fix up (required)")
	fs.StringVar(&o.out, "out", "", "output blob (default: overwrite -dtb)")
	fs.StringVar(&o.env, "env", "", "U-Boot environment image; empty keeps the environment in memory")
	fs.IntVar(&o.envSize, "env-size", env.DefaultSize, "environment image size in bytes")
	fs.StringVar(&o.serial, "serial", secmon.DefaultSysfsPath, "file holding the hex chip serial")
	fs.StringVar(&o.sysfs, "sysfs", "/sys", "sysfs root used to map tree nodes to I2C adapters")
	fs.StringVar(&o.dev, "dev", "/dev", "directory holding i2c-N device nodes")
	fs.StringVar(&o.profile, "profile", "", "JSON file merged over the board profile")
	fs.IntVar(&o.pad, "pad", 0x3000, "free space the fixup may add to the blob")
	fs.BoolVar(&o.verbose, "v", false, "debug output and bus event dump")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.dtb == "" {
		return o, fmt.Errorf("-dtb is required")
	}
	if o.out == "" {
		o.out = o.dtb
	}
	return o, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	o, err := parse(args, stderr)
	if err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintln(stderr, "vim3-fixup:", err)
		}
		return 2
	}
	fail := func(err error) int {
		fmt.Fprintln(stderr, "vim3-fixup:", err)
		return 1
	}

	fdt, err := readFDT(o.dtb)
	if err != nil {
		return fail(err)
	}
	compat, bl, ok := board.Match(fdt)
	if !ok {
		return fail(fmt.Errorf("%s: no board hooks for this tree", o.dtb))
	}

	var override []byte
	if o.profile != "" {
		if override, err = os.ReadFile(o.profile); err != nil {
			return fail(err)
		}
	}

	store := env.NewStore()
	if o.env != "" {
		if store, err = env.Load(o.env); err != nil {
			return fail(err)
		}
	}

	var buses i2cdev.Factory = i2cdev.Map{}
	if lx, err := i2cdev.NewLinux(o.sysfs, o.dev); err != nil {
		fmt.Fprintln(stderr, "vim3-fixup: i2c:", err)
	} else {
		defer lx.Close()
		buses = lx
	}

	b := bus.NewBus(64)
	conn := b.NewConnection("vim3-fixup")
	events := conn.Subscribe(bus.T("#"))
	if o.verbose {
		_ = config.Publish(conn, board.ID(compat))
	}

	con := newConsole(stdout)
	hooks, err := bl.Build(board.BuildInput{
		Compatible: compat,
		Buses:      buses,
		Env:        store,
		Monitor:    secmon.Sysfs{Path: o.serial},
		Ethernet: board.EthernetFunc(func(mode string, index int) error {
			// Linux owns the MAC; nothing to bring up from here.
			if o.verbose {
				fmt.Fprintf(con, "eth%d: %s, left to the kernel\n", index, mode)
			}
			return nil
		}),
		Out:         con,
		Conn:        conn,
		Verbose:     o.verbose,
		ProfileJSON: override,
	})
	if err != nil {
		return fail(err)
	}

	rc := 0
	if err := hooks.MiscInitLate(); err != nil {
		fmt.Fprintln(stderr, "vim3-fixup: misc_init_r:", err)
		rc = 1
	}
	tree := &fdtx.Tree{FDT: fdt, Cap: fdtx.Size(fdt) + o.pad}
	hooks.FixupDeviceTree(tree, &board.BoardInfo{Model: model(fdt)})

	if err := writeFDT(o.out, fdt); err != nil {
		return fail(err)
	}
	if o.env != "" {
		if err := env.Save(o.env, store, o.envSize); err != nil {
			return fail(err)
		}
	}

	if o.verbose {
		dump(stderr, events)
	}
	return rc
}

func readFDT(path string) (*dt.FDT, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dt.ReadFDT(f)
}

func writeFDT(path string, fdt *dt.FDT) error {
	var buf bytes.Buffer
	if _, err := fdt.Write(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func model(fdt *dt.FDT) string {
	if v, ok := fdtx.Prop(fdt.RootNode, "model"); ok {
		if s := fdtx.DecodeStrings(v); len(s) > 0 {
			return s[0]
		}
	}
	return ""
}

// dump prints every queued bus event as one JSON line.
func dump(w io.Writer, sub *bus.Subscription) {
	enc := json.NewEncoder(w)
	for {
		select {
		case m := <-sub.Channel():
			_ = enc.Encode(struct {
				Topic    string `json:"topic"`
				Payload  any    `json:"payload"`
				Retained bool   `json:"retained,omitempty"`
			}{m.Topic.String(), m.Payload, m.Retained})
		default:
			return
		}
	}
}

// console colours the "vim3:" prefix when stdout is a terminal.
type console struct {
	w      io.Writer
	prefix []byte
	reset  []byte
}

func newConsole(w io.Writer) *console {
	c := &console{w: w}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		esc := term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{strings.NewReader(""), w}, "").Escape
		c.prefix, c.reset = esc.Yellow, esc.Reset
	}
	return c
}

func (c *console) Write(p []byte) (int, error) {
	const tag = "vim3:"
	if c.prefix == nil || !bytes.HasPrefix(p, []byte(tag)) {
		return c.w.Write(p)
	}
	var buf bytes.Buffer
	buf.Write(c.prefix)
	buf.WriteString(tag)
	buf.Write(c.reset)
	buf.Write(p[len(tag):])
	if _, err := c.w.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}
