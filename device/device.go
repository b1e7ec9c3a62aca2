// Package device defines where prepared tensors are placed: the compute placement capability.
//
// The data preparation stages only create host tensors. A Placement moves (or copies) each of them
// to the device the model runs on. Host is the default and keeps tensors in local memory; other
// devices are provided by the caller, usually wrapping their own runtime, and can be registered
// by name so configuration files can refer to them.
package device

import (
	"sort"
	"strings"
	"sync"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Placement places tensors on a named device.
type Placement interface {
	// Device returns the name of the target device, e.g. "cpu" or "cuda:0".
	Device() string

	// Place returns t placed on the device. It may return t itself.
	Place(t *tensors.Tensor) (*tensors.Tensor, error)
}

// Host keeps tensors in local host memory.
type Host struct{}

// Device implements Placement.
func (Host) Device() string { return "cpu" }

// Place implements Placement: tensors are created on the host, so it returns t unchanged.
func (Host) Place(t *tensors.Tensor) (*tensors.Tensor, error) { return t, nil }

// Func adapts a function to Placement.
type Func struct {
	Name string
	Fn   func(t *tensors.Tensor) (*tensors.Tensor, error)
}

// Device implements Placement.
func (f Func) Device() string { return f.Name }

// Place implements Placement.
func (f Func) Place(t *tensors.Tensor) (*tensors.Tensor, error) { return f.Fn(t) }

var (
	muRegistry sync.RWMutex
	registry   = map[string]Placement{
		"cpu":  Host{},
		"host": Host{},
	}
)

// Register makes p available to Lookup under name (case-insensitive). It replaces any previous
// registration with the same name.
func Register(name string, p Placement) {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	registry[strings.ToLower(name)] = p
}

// Lookup returns the placement registered under name. The empty name is the host.
func Lookup(name string) (Placement, error) {
	if name == "" {
		return Host{}, nil
	}
	muRegistry.RLock()
	defer muRegistry.RUnlock()
	if p, ok := registry[strings.ToLower(name)]; ok {
		return p, nil
	}
	known := make([]string, 0, len(registry))
	for n := range registry {
		known = append(known, n)
	}
	sort.Strings(known)
	return nil, errors.Errorf("no placement registered for device %q, known devices: %v", name, known)
}

// PlaceAll places every tensor pointed to by ts, replacing it by its placed version.
// Nil tensors are skipped.
func PlaceAll(p Placement, ts ...**tensors.Tensor) error {
	for i, t := range ts {
		if *t == nil {
			continue
		}
		placed, err := p.Place(*t)
		if err != nil {
			return errors.WithMessagef(err, "while placing tensor #%d %s on %q", i, (*t).Shape(), p.Device())
		}
		klog.V(2).Infof("placed tensor %s on %q", placed.Shape(), p.Device())
		*t = placed
	}
	return nil
}
