package fdtx

import (
	"github.com/u-root/u-root/pkg/dt"

	"vim3-go/errcode"
)

// Flattened layout sizes (FDT v17).
const (
	headerSize   = 40 // the reserve map starts at align16(headerSize)
	rsvEntrySize = 16
	tokenSize    = 4
	propHdrSize  = 12 // FDT_PROP, len, nameoff
)

// ErrNoSpace mirrors FDT_ERR_NOSPACE.
var ErrNoSpace = &errcode.E{C: errcode.IO, Msg: "no space in blob"}

func align4(n int) int  { return (n + 3) &^ 3 }
func align16(n int) int { return (n + 15) &^ 15 }

// Size returns the flattened size of f: header, reserve map (with terminator),
// structure block and strings block.
func Size(f *dt.FDT) int {
	n := align16(headerSize) + rsvEntrySize*(len(f.ReserveEntries)+1)
	names := map[string]struct{}{}
	var walk func(*dt.Node)
	walk = func(x *dt.Node) {
		n += tokenSize + align4(len(x.Name)+1)
		for _, p := range x.Properties {
			n += propHdrSize + align4(len(p.Value))
			names[p.Name] = struct{}{}
		}
		for _, c := range x.Children {
			walk(c)
		}
		n += tokenSize
	}
	if f.RootNode != nil {
		walk(f.RootNode)
	}
	n += tokenSize // FDT_END
	for k := range names {
		n += len(k) + 1
	}
	return n
}

// Tree is an editable blob with a bounded capacity.
type Tree struct {
	FDT *dt.FDT
	// Cap is the total blob size available; 0 means unbounded.
	Cap int
	// Check, when set, may veto a write before it is applied.
	Check func(n *dt.Node, name string, value []byte) error
}

// Root returns the tree root.
func (t *Tree) Root() *dt.Node { return t.FDT.RootNode }

// SetProp replaces or appends a property. The value is copied.
func (t *Tree) SetProp(n *dt.Node, name string, value []byte) error {
	if t.Check != nil {
		if err := t.Check(n, name, value); err != nil {
			return err
		}
	}
	v := append([]byte(nil), value...)
	idx := -1
	for i := range n.Properties {
		if n.Properties[i].Name == name {
			idx = i
			break
		}
	}
	if t.Cap > 0 {
		grow := propHdrSize + align4(len(v))
		if idx >= 0 {
			grow -= propHdrSize + align4(len(n.Properties[idx].Value))
		} else if !t.hasName(name) {
			grow += len(name) + 1
		}
		if Size(t.FDT)+grow > t.Cap {
			return ErrNoSpace
		}
	}
	if idx >= 0 {
		n.Properties[idx].Value = v
		return nil
	}
	n.Properties = append(n.Properties, dt.Property{Name: name, Value: v})
	return nil
}

// SetString stores s as a NUL-terminated string.
func (t *Tree) SetString(n *dt.Node, name, s string) error {
	return t.SetProp(n, name, EncodeStrings(s))
}

func (t *Tree) hasName(name string) bool {
	found := false
	_ = t.FDT.RootNode.Walk(func(x *dt.Node) error {
		if _, ok := x.LookProperty(name); ok {
			found = true
			return errStop
		}
		return nil
	})
	return found
}
