package i2cdev

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"tinygo.org/x/drivers"
)

const dtBase = "devicetree/base"

// ofNodePath turns an of_node symlink target into a device-tree path.
func ofNodePath(target string) (string, bool) {
	i := strings.LastIndex(target, dtBase)
	if i < 0 {
		return "", false
	}
	p := target[i+len(dtBase):]
	if p == "" {
		p = "/"
	}
	return p, true
}

// Scan maps device-tree paths to adapter numbers using
// <sysfsRoot>/bus/i2c/devices/i2c-N/of_node.
func Scan(sysfsRoot string) (map[string]int, error) {
	dir := filepath.Join(sysfsRoot, "bus", "i2c", "devices")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int)
	for _, e := range ents {
		name := e.Name()
		if !strings.HasPrefix(name, "i2c-") {
			continue
		}
		n, err := strconv.Atoi(name[len("i2c-"):])
		if err != nil {
			continue
		}
		target, err := os.Readlink(filepath.Join(dir, name, "of_node"))
		if err != nil {
			continue
		}
		if p, ok := ofNodePath(target); ok {
			out[p] = n
		}
	}
	return out, nil
}

// Linux resolves buses through sysfs and opens /dev/i2c-N on demand.
type Linux struct {
	DevRoot string // usually "/dev"

	mu       sync.Mutex
	adapters map[string]int
	open     map[int]*Dev
}

// NewLinux scans sysfsRoot (usually "/sys") once.
func NewLinux(sysfsRoot, devRoot string) (*Linux, error) {
	m, err := Scan(sysfsRoot)
	if err != nil {
		return nil, err
	}
	return &Linux{DevRoot: devRoot, adapters: m, open: make(map[int]*Dev)}, nil
}

// Adapter returns the adapter number bound to a device-tree path.
func (l *Linux) Adapter(path string) (int, bool) {
	n, ok := l.adapters[path]
	return n, ok
}

func (l *Linux) ByID(path string) (drivers.I2C, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, ok := l.adapters[path]
	if !ok {
		return nil, false
	}
	if d, ok := l.open[n]; ok {
		return d, true
	}
	d, err := Open(filepath.Join(l.DevRoot, "i2c-"+strconv.Itoa(n)))
	if err != nil {
		return nil, false
	}
	l.open[n] = d
	return d, true
}

// Close releases every opened adapter.
func (l *Linux) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var first error
	for n, d := range l.open {
		if err := d.Close(); err != nil && first == nil {
			first = err
		}
		delete(l.open, n)
	}
	return first
}
