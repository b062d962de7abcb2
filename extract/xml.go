package extract

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ajpearen/lineup-etl/channel"
	"github.com/ajpearen/lineup-etl/config"
)

// 50MB is far beyond any real channel list; the limit keeps a corrupt
// or mistakenly pointed-at file from exhausting memory.
const maxChannelsXMLSize = 50 * 1024 * 1024

type channelsDoc struct {
	XMLName  xml.Name     `xml:"channels"`
	Channels []xmlChannel `xml:"channel"`
}

type xmlChannel struct {
	Site    string `xml:"site,attr"`
	Lang    string `xml:"lang,attr"`
	XMLTVID string `xml:"xmltv_id,attr"`
	SiteID  string `xml:"site_id,attr"`
	Name    string `xml:",chardata"`
}

// ReadCandidatesXML parses a channels XML document into candidates.
// Decoding is strict with entity expansion disabled; the files are
// operator-owned but pass through enough tooling to warrant it.
func ReadCandidatesXML(r io.Reader, src config.SourceConfig) ([]channel.Candidate, error) {
	dec := xml.NewDecoder(io.LimitReader(r, maxChannelsXMLSize))
	dec.Strict = true
	dec.Entity = make(map[string]string)

	var doc channelsDoc
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode channels xml: %w", err)
	}

	cands := make([]channel.Candidate, 0, len(doc.Channels))
	for _, ch := range doc.Channels {
		c := channel.Candidate{
			DisplayName: strings.TrimSpace(ch.Name),
			Site:        strings.TrimSpace(ch.Site),
			ExternalID:  strings.TrimSpace(ch.XMLTVID),
			SiteLocalID: strings.TrimSpace(ch.SiteID),
			Lang:        strings.TrimSpace(ch.Lang),
			Country:     channel.ParseCountry(src.Country),
			SourceTag:   src.Name,
		}
		if c.Site == "" {
			c.Site = src.Site
		}
		cands = append(cands, c)
	}
	return cands, nil
}
