package model

// ProductModel identifies the connected aircraft.
type ProductModel int

const (
	ProductUnknown ProductModel = iota
	ProductMavicPro
	ProductMavicAir
	ProductMavicAir2
	ProductMavicMini
	ProductSpark
	ProductPhantom4
	ProductPhantom4Pro
	ProductPhantom4ProV2
	ProductPhantom4RTK
	ProductInspire2
	ProductMatrice210
	ProductMatrice210RTKV2
	ProductMavic2
	ProductMavic2Pro
	ProductMavic2Zoom
	ProductMavic2Enterprise
	ProductMavic2EnterpriseDual
	ProductMavic2EnterpriseAdvanced
	ProductMatrice300RTK
)

var productModels = newEnumTable(ProductUnknown, map[ProductModel]string{
	ProductUnknown:                  "UNKNOWN",
	ProductMavicPro:                 "MAVIC_PRO",
	ProductMavicAir:                 "MAVIC_AIR",
	ProductMavicAir2:                "MAVIC_AIR_2",
	ProductMavicMini:                "MAVIC_MINI",
	ProductSpark:                    "SPARK",
	ProductPhantom4:                 "PHANTOM_4",
	ProductPhantom4Pro:              "PHANTOM_4_PRO",
	ProductPhantom4ProV2:            "PHANTOM_4_PRO_V2",
	ProductPhantom4RTK:              "PHANTOM_4_RTK",
	ProductInspire2:                 "INSPIRE_2",
	ProductMatrice210:               "MATRICE_210",
	ProductMatrice210RTKV2:          "MATRICE_210_RTK_V2",
	ProductMavic2:                   "MAVIC_2",
	ProductMavic2Pro:                "MAVIC_2_PRO",
	ProductMavic2Zoom:               "MAVIC_2_ZOOM",
	ProductMavic2Enterprise:         "MAVIC_2_ENTERPRISE",
	ProductMavic2EnterpriseDual:     "MAVIC_2_ENTERPRISE_DUAL",
	ProductMavic2EnterpriseAdvanced: "MAVIC_2_ENTERPRISE_ADVANCED",
	ProductMatrice300RTK:            "MATRICE_300_RTK",
}, map[string]ProductModel{
	"M300_RTK":     ProductMatrice300RTK,
	"M300":         ProductMatrice300RTK,
	"M210":         ProductMatrice210,
	"M210_RTK_V2":  ProductMatrice210RTKV2,
	"MAVIC_2_ED":   ProductMavic2EnterpriseDual,
	"MAVIC_2_EA":   ProductMavic2EnterpriseAdvanced,
	"MAVIC_2_E":    ProductMavic2Enterprise,
	"P4_PRO":       ProductPhantom4Pro,
	"P4_PRO_V2":    ProductPhantom4ProV2,
	"P4_RTK":       ProductPhantom4RTK,
	"MAVIC_AIR2":   ProductMavicAir2,
	"MAVIC2":       ProductMavic2,
	"MAVIC2_PRO":   ProductMavic2Pro,
	"MAVIC2_ZOOM":  ProductMavic2Zoom,
	"INSPIRE2":     ProductInspire2,
	"PHANTOM4":     ProductPhantom4,
	"PHANTOM4_PRO": ProductPhantom4Pro,
})

func (p ProductModel) String() string { return productModels.name(p) }

// ParseProductModel maps a product display name ("Mavic 2 Pro") or wire name
// ("MAVIC_2_PRO") to a ProductModel, returning ProductUnknown when nothing
// matches.
func ParseProductModel(s string) ProductModel { return productModels.parse(s) }

func (p ProductModel) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *ProductModel) UnmarshalText(b []byte) error {
	*p = ParseProductModel(string(b))
	return nil
}

// IsDualAxisOmni reports whether the product reports horizontal and vertical
// omnidirectional sensing as separate subsystems.
func (p ProductModel) IsDualAxisOmni() bool {
	return p == ProductMatrice300RTK
}

// IsMavic2Series reports whether the product belongs to the Mavic 2 family,
// consumer and enterprise variants alike.
func (p ProductModel) IsMavic2Series() bool {
	switch p {
	case ProductMavic2,
		ProductMavic2Pro,
		ProductMavic2Zoom,
		ProductMavic2Enterprise,
		ProductMavic2EnterpriseDual,
		ProductMavic2EnterpriseAdvanced:
		return true
	}
	return false
}

// IsMavic2Enterprise reports whether the product is an enterprise Mavic 2.
func (p ProductModel) IsMavic2Enterprise() bool {
	switch p {
	case ProductMavic2Enterprise,
		ProductMavic2EnterpriseDual,
		ProductMavic2EnterpriseAdvanced:
		return true
	}
	return false
}

// LookupProductModel is ParseProductModel that also reports whether name
// matched a known product.
func LookupProductModel(name string) (ProductModel, bool) { return productModels.lookup(name) }

