package capability

import (
	"errors"
	"strings"
	"testing"

	"github.com/signalsfoundry/vision-status/model"
)

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		product model.ProductModel
		want    bool
	}{
		{product: model.ProductMavic2Pro, want: true},
		{product: model.ProductMatrice300RTK, want: true},
		{product: model.ProductPhantom4Pro, want: true},
		{product: model.ProductMavicMini, want: false},
		{product: model.ProductUnknown, want: false},
	}
	for _, tc := range tests {
		if got := table.VisionSupported(tc.product); got != tc.want {
			t.Errorf("VisionSupported(%v) = %v, want %v", tc.product, got, tc.want)
		}
	}

	if c, ok := table.Get(model.ProductMavic2Zoom); !ok || !c.Omnidirectional {
		t.Fatalf("Get(MAVIC_2_ZOOM) = %+v, %v; want omnidirectional", c, ok)
	}
}

func TestLoadTable(t *testing.T) {
	const doc = `
products:
  - model: Mavic Mini
    vision: true
  - model: MATRICE_300_RTK
    vision: false
    omnidirectional: true
`
	table, err := LoadTable(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if got := table.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	if !table.VisionSupported(model.ProductMavicMini) {
		t.Fatalf("VisionSupported(MAVIC_MINI) = false, want true")
	}
	if table.VisionSupported(model.ProductMatrice300RTK) {
		t.Fatalf("VisionSupported(MATRICE_300_RTK) = true, want false")
	}
	if !table.OmnidirectionalSupported(model.ProductMatrice300RTK) {
		t.Fatalf("OmnidirectionalSupported(MATRICE_300_RTK) = false, want true")
	}
	if table.OmnidirectionalSupported(model.ProductMavicMini) {
		t.Fatalf("OmnidirectionalSupported(MAVIC_MINI) = true, want false")
	}
	if table.VisionSupported(model.ProductMavic2) {
		t.Fatalf("VisionSupported for a product missing from the table = true, want false")
	}
}

func TestLoadTableRejectsUnknownProducts(t *testing.T) {
	_, err := LoadTable(strings.NewReader("products:\n  - model: Hot Air Balloon\n    vision: true\n"))
	if !errors.Is(err, ErrUnknownProduct) {
		t.Fatalf("LoadTable error = %v, want ErrUnknownProduct", err)
	}
}

func TestLoadTableEmptyDocument(t *testing.T) {
	table, err := LoadTable(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadTable(empty): %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", table.Len())
	}
}
