package domain

// Site is one SharePoint site to sweep, identified by its URL.
// Sites are read from the input file once and processed in file order.
type Site struct {
	URL string `json:"url"`
}

// ListRef is a traversal unit: one visible, non-empty document library or
// list discovered on a site. The enumeration is a snapshot; a ListRef is
// never re-queried or mutated after it is produced.
type ListRef struct {
	SiteURL   string `json:"site_url"`
	Title     string `json:"title"`
	ItemCount int    `json:"item_count"`
}
