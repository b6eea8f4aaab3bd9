package domain

// WikiBundle is one fused document per inferred service name.
// Design and build pages for the same service are concatenated into
// a single searchable record.
type WikiBundle struct {
	// ServiceName is the grouping key. Grouping is case- and
	// punctuation-sensitive: "Orders API" and "orders-api" bucket
	// separately unless the path-segment rule normalised them.
	ServiceName string

	// DesignFiles are source paths classified as design documentation,
	// in walk order.
	DesignFiles []string

	// BuildFiles are source paths classified as build documentation,
	// in walk order.
	BuildFiles []string

	// Content is the fused markdown body.
	Content string

	// DocumentURL is the canonical URL, derived from the first design
	// file when present, else the first build file.
	DocumentURL string
}
