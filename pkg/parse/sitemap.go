package parse

import (
	"encoding/xml"

	"seo-sitemap/pkg/utils"
)

// --- XML Structs for Sitemap Parsing ---

// XMLURL represents a <url> element in a sitemap
type XMLURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// XMLURLSet represents a <urlset> element in a sitemap
type XMLURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []XMLURL `xml:"url"`
}

// XMLSitemap represents a <sitemap> element in a sitemap index file
type XMLSitemap struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// XMLSitemapIndex represents a <sitemapindex> element. Some generators mix
// direct <url> entries into an index document, so those are captured too.
type XMLSitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []XMLSitemap `xml:"sitemap"`
	URLs     []XMLURL     `xml:"url"`
}

// Document is a classified sitemap document: exactly one of Index or URLSet
// is non-nil after a successful parse.
type Document struct {
	Index  *XMLSitemapIndex
	URLSet *XMLURLSet
}

// ParseDocument unmarshals raw sitemap bytes as either a sitemap index or a
// URL set. Returns ErrSitemapParse (wrapping both unmarshal errors) when the
// bytes are neither.
func ParseDocument(data []byte) (Document, error) {
	var index XMLSitemapIndex
	errIndex := xml.Unmarshal(data, &index)
	if errIndex == nil {
		return Document{Index: &index}, nil
	}

	var urlSet XMLURLSet
	errURLSet := xml.Unmarshal(data, &urlSet)
	if errURLSet == nil {
		return Document{URLSet: &urlSet}, nil
	}

	return Document{}, utils.WrapErrorf(utils.ErrSitemapParse,
		"not a sitemap index (%v) nor a URL set (%v)", errIndex, errURLSet)
}
