package domain

type CatalogEntry string

const (
	CatalogHaircut         CatalogEntry = "HAIRCUT"
	CatalogBeardTrim       CatalogEntry = "BEARD_TRIM"
	CatalogHaircutAndBeard CatalogEntry = "HAIRCUT_AND_BEARD"
	CatalogHairWash        CatalogEntry = "HAIR_WASH"
	CatalogHairColoring    CatalogEntry = "HAIR_COLORING"
	CatalogEyebrowDesign   CatalogEntry = "EYEBROW_DESIGN"
)

type CatalogItem struct {
	Entry       CatalogEntry `json:"entry"`
	Name        string       `json:"name"`
	PriceCents  int64        `json:"price_cents"`
	Description string       `json:"description"`
}

var catalog = []CatalogItem{
	{Entry: CatalogHaircut, Name: "Haircut", PriceCents: 3500, Description: "Scissor or clipper cut, finished with styling"},
	{Entry: CatalogBeardTrim, Name: "Beard trim", PriceCents: 2500, Description: "Beard shaping with hot towel"},
	{Entry: CatalogHaircutAndBeard, Name: "Haircut and beard", PriceCents: 5500, Description: "Full haircut plus beard shaping"},
	{Entry: CatalogHairWash, Name: "Hair wash", PriceCents: 1500, Description: "Wash, conditioning and dry"},
	{Entry: CatalogHairColoring, Name: "Hair coloring", PriceCents: 8000, Description: "Single-process color"},
	{Entry: CatalogEyebrowDesign, Name: "Eyebrow design", PriceCents: 1200, Description: "Eyebrow cleanup with razor"},
}

// Catalog lists the offerable services in display order.
func Catalog() []CatalogItem {
	out := make([]CatalogItem, len(catalog))
	copy(out, catalog)
	return out
}

func (e CatalogEntry) Item() (CatalogItem, bool) {
	for _, item := range catalog {
		if item.Entry == e {
			return item, true
		}
	}
	return CatalogItem{}, false
}

func (e CatalogEntry) Valid() bool {
	_, ok := e.Item()
	return ok
}

// Service is an offerable service. Its name, price and description come from
// the catalog entry and cannot be changed per service.
type Service struct {
	ID    int64        `json:"id"`
	Entry CatalogEntry `json:"entry"`
}

func (s Service) Name() string {
	item, _ := s.Entry.Item()
	return item.Name
}

func (s Service) PriceCents() int64 {
	item, _ := s.Entry.Item()
	return item.PriceCents
}

func (s Service) Description() string {
	item, _ := s.Entry.Item()
	return item.Description
}
