// Package capability answers what a given aircraft product can do.
package capability

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/signalsfoundry/vision-status/model"
	"gopkg.in/yaml.v3"
)

// ErrUnknownProduct is returned when a capability table names a product that
// does not exist.
var ErrUnknownProduct = errors.New("unknown product model")

// Lookup reports product capabilities.
type Lookup interface {
	VisionSupported(p model.ProductModel) bool
}

// OmniLookup is implemented by lookups that also know which products sense
// obstacles in every direction.
type OmniLookup interface {
	OmnidirectionalSupported(p model.ProductModel) bool
}

// Capabilities describes the sensing hardware of one product.
type Capabilities struct {
	Vision          bool `yaml:"vision"`
	Omnidirectional bool `yaml:"omnidirectional"`
}

// Table is an in-memory capability table. It is safe for concurrent use.
type Table struct {
	mu       sync.RWMutex
	products map[model.ProductModel]Capabilities
}

type tableFile struct {
	Products []struct {
		Model           string `yaml:"model"`
		Vision          bool   `yaml:"vision"`
		Omnidirectional bool   `yaml:"omnidirectional"`
	} `yaml:"products"`
}

// NewTable returns an empty table; every product reports no capabilities.
func NewTable() *Table {
	return &Table{products: make(map[model.ProductModel]Capabilities)}
}

// DefaultTable returns the built-in capability table.
func DefaultTable() *Table {
	t := NewTable()
	for _, p := range []model.ProductModel{
		model.ProductMavicPro,
		model.ProductMavicAir,
		model.ProductMavicAir2,
		model.ProductSpark,
		model.ProductPhantom4,
		model.ProductPhantom4Pro,
		model.ProductPhantom4ProV2,
		model.ProductPhantom4RTK,
		model.ProductInspire2,
		model.ProductMatrice210,
		model.ProductMatrice210RTKV2,
	} {
		t.Set(p, Capabilities{Vision: true})
	}
	for _, p := range []model.ProductModel{
		model.ProductMavic2,
		model.ProductMavic2Pro,
		model.ProductMavic2Zoom,
		model.ProductMavic2Enterprise,
		model.ProductMavic2EnterpriseDual,
		model.ProductMavic2EnterpriseAdvanced,
		model.ProductMatrice300RTK,
	} {
		t.Set(p, Capabilities{Vision: true, Omnidirectional: true})
	}
	return t
}

// LoadTable parses a YAML capability table:
//
//	products:
//	  - model: MAVIC_2_PRO
//	    vision: true
//	    omnidirectional: true
func LoadTable(r io.Reader) (*Table, error) {
	var f tableFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode capability table: %w", err)
	}

	t := NewTable()
	for i, p := range f.Products {
		pm, ok := model.LookupProductModel(p.Model)
		if !ok || pm == model.ProductUnknown {
			return nil, fmt.Errorf("products[%d]: %w: %q", i, ErrUnknownProduct, p.Model)
		}
		t.Set(pm, Capabilities{Vision: p.Vision, Omnidirectional: p.Omnidirectional})
	}
	return t, nil
}

// LoadTableFile reads a YAML capability table from path.
func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capability table: %w", err)
	}
	defer f.Close()
	return LoadTable(f)
}

// Set replaces the capabilities recorded for p.
func (t *Table) Set(p model.ProductModel, c Capabilities) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.products[p] = c
}

// Get returns the capabilities recorded for p.
func (t *Table) Get(p model.ProductModel) (Capabilities, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.products[p]
	return c, ok
}

// Len returns the number of products in the table.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.products)
}

// VisionSupported implements Lookup. Products missing from the table are
// reported as unsupported.
func (t *Table) VisionSupported(p model.ProductModel) bool {
	c, _ := t.Get(p)
	return c.Vision
}

// OmnidirectionalSupported reports whether p senses obstacles in every
// direction. Products missing from the table report false.
func (t *Table) OmnidirectionalSupported(p model.ProductModel) bool {
	c, _ := t.Get(p)
	return c.Omnidirectional
}
