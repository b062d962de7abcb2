// Package load emits the pipeline's artifacts: the channels XML list,
// the CSV audit reports and the optional DuckDB audit database. All
// file artifacts are written atomically and replaced wholesale.
package load

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/ajpearen/lineup-etl/channel"
	"github.com/google/renameio/v2"
)

type channelsOut struct {
	XMLName  xml.Name        `xml:"channels"`
	Channels []channelOutRow `xml:"channel"`
}

type channelOutRow struct {
	Site    string `xml:"site,attr,omitempty"`
	Lang    string `xml:"lang,attr,omitempty"`
	XMLTVID string `xml:"xmltv_id,attr,omitempty"`
	SiteID  string `xml:"site_id,attr,omitempty"`
	Name    string `xml:",chardata"`
}

// WriteChannelsXML serializes the final channel set to w in the
// channels list format. Names are emitted exactly as stored.
func WriteChannelsXML(w io.Writer, channels []channel.FinalChannel) error {
	doc := channelsOut{Channels: make([]channelOutRow, 0, len(channels))}
	for _, ch := range channels {
		doc.Channels = append(doc.Channels, channelOutRow{
			Site:    ch.Site,
			Lang:    ch.Lang,
			XMLTVID: ch.ExternalID,
			SiteID:  ch.SiteLocalID,
			Name:    ch.DisplayName,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write xml header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode channels: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return nil
}

// WriteChannelsXMLFile writes the channel list to path atomically:
// the previous artifact stays intact unless the new one is complete
// and fsynced.
func WriteChannelsXMLFile(path string, channels []channel.FinalChannel) error {
	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending channels file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if err := WriteChannelsXML(pending, channels); err != nil {
		return fmt.Errorf("write channels data: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace channels file: %w", err)
	}
	return nil
}
