package client

// URLBuilder constructs URLs for a project on an index.
type URLBuilder interface {
	Registry(name, version string) string
	Download(name, version string) string
	Documentation(name, version string) string
	PURL(name, version string) string
}

// Link is one labelled URL for a project.
type Link struct {
	Kind string // registry, download, docs or purl
	URL  string
}

// Links returns the non-empty URLs urls produces for a project, in a fixed
// order so output is stable.
func Links(urls URLBuilder, name, version string) []Link {
	candidates := []Link{
		{"registry", urls.Registry(name, version)},
		{"download", urls.Download(name, version)},
		{"docs", urls.Documentation(name, version)},
		{"purl", urls.PURL(name, version)},
	}
	links := candidates[:0]
	for _, l := range candidates {
		if l.URL != "" {
			links = append(links, l)
		}
	}
	return links
}
