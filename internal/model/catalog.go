package model

var catalog = []CatalogEntry{
	{ID: RewardCat, Name: "Pixel Cat", Cost: 60, Icon: "🐱"},
	{ID: RewardPlant, Name: "Succulent", Cost: 120, Icon: "🌿"},
	{ID: RewardLamp, Name: "Desk Lamp", Cost: 180, Icon: "💡"},
	{ID: RewardCoffee, Name: "Infinite Coffee", Cost: 240, Icon: "☕"},
}

// Catalog returns the fixed reward catalog in display order.
func Catalog() []CatalogEntry {
	entries := make([]CatalogEntry, len(catalog))
	copy(entries, catalog)
	return entries
}

func LookupCatalogEntry(id RewardItem) (CatalogEntry, bool) {
	for _, entry := range catalog {
		if entry.ID == id {
			return entry, true
		}
	}
	return CatalogEntry{}, false
}
