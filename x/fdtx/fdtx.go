// Package fdtx adds the lookups and in-place edits board code needs on top
// of github.com/u-root/u-root/pkg/dt.
package fdtx

import (
	"bytes"
	"errors"

	"github.com/u-root/u-root/pkg/dt"

	"vim3-go/errcode"
)

var errStop = errors.New("stop")

// DecodeStrings splits a NUL-terminated string list. A missing final
// terminator is tolerated.
func DecodeStrings(b []byte) []string {
	if len(b) == 0 {
		return nil
	}
	b = bytes.TrimSuffix(b, []byte{0})
	var out []string
	for _, s := range bytes.Split(b, []byte{0}) {
		out = append(out, string(s))
	}
	return out
}

// EncodeStrings packs ss back to back, each NUL-terminated.
func EncodeStrings(ss ...string) []byte {
	n := 0
	for _, s := range ss {
		n += len(s) + 1
	}
	out := make([]byte, 0, n)
	for _, s := range ss {
		out = append(out, s...)
		out = append(out, 0)
	}
	return out
}

// Prop returns the raw property value.
func Prop(n *dt.Node, name string) ([]byte, bool) {
	p, ok := n.LookProperty(name)
	if !ok {
		return nil, false
	}
	return p.Value, true
}

// PropU32 reads a single big-endian cell.
func PropU32(n *dt.Node, name string) (uint32, error) {
	p, ok := n.LookProperty(name)
	if !ok {
		return 0, &errcode.E{C: errcode.NotFound, Op: "getprop", Msg: name}
	}
	v, err := p.AsU32()
	if err != nil {
		return 0, errcode.Wrap(errcode.InvalidArgument, "getprop "+name, err)
	}
	return v, nil
}

// HasCompatible reports whether compat is one of n's compatible entries.
func HasCompatible(n *dt.Node, compat string) bool {
	v, ok := Prop(n, "compatible")
	if !ok {
		return false
	}
	for _, s := range DecodeStrings(v) {
		if s == compat {
			return true
		}
	}
	return false
}

// FindCompatible returns the first node, depth first, carrying compat.
func FindCompatible(root *dt.Node, compat string) (*dt.Node, bool) {
	var found *dt.Node
	_ = root.Walk(func(n *dt.Node) error {
		if HasCompatible(n, compat) {
			found = n
			return errStop
		}
		return nil
	})
	return found, found != nil
}

// lineage returns the chain root..target, or nil if target is not under root.
func lineage(root, target *dt.Node) []*dt.Node {
	if root == target {
		return []*dt.Node{root}
	}
	for _, c := range root.Children {
		if l := lineage(c, target); l != nil {
			return append([]*dt.Node{root}, l...)
		}
	}
	return nil
}

// Parent returns n's parent. The root has none.
func Parent(root, n *dt.Node) (*dt.Node, bool) {
	l := lineage(root, n)
	if len(l) < 2 {
		return nil, false
	}
	return l[len(l)-2], true
}

// Path returns n's absolute path ("/soc/bus@ff800000/i2c@5000").
func Path(root, n *dt.Node) (string, bool) {
	l := lineage(root, n)
	if l == nil {
		return "", false
	}
	if len(l) == 1 {
		return "/", true
	}
	var b bytes.Buffer
	for _, x := range l[1:] {
		b.WriteByte('/')
		b.WriteString(x.Name)
	}
	return b.String(), true
}
