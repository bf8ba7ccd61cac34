package scanner

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// NFO is the subset of a Kodi movie .nfo file that mediashelf reads.
type NFO struct {
	Title     string
	SortTitle string
	Year      int
	Plot      string
	Rating    float32
	Votes     int
	RatingMax int
	Watched   bool
	SetName   string
	SetPlot   string

	VideoCodec  string
	VideoWidth  int
	VideoHeight int
	Audio       []NFOAudio
}

// NFOAudio is one <audio> entry of the stream details.
type NFOAudio struct {
	Codec    string
	Channels string
	Language string
}

type nfoMovie struct {
	XMLName   xml.Name  `xml:"movie"`
	Title     string    `xml:"title"`
	SortTitle string    `xml:"sorttitle"`
	Year      string    `xml:"year"`
	Premiered string    `xml:"premiered"`
	Plot      string    `xml:"plot"`
	Rating    string    `xml:"rating"`
	Votes     string    `xml:"votes"`
	Ratings   []nfoRate `xml:"ratings>rating"`
	PlayCount string    `xml:"playcount"`
	Watched   string    `xml:"watched"`
	Set       nfoSet    `xml:"set"`
	Video     nfoVideo  `xml:"fileinfo>streamdetails>video"`
	Audio     []struct {
		Codec    string `xml:"codec"`
		Channels string `xml:"channels"`
		Language string `xml:"language"`
	} `xml:"fileinfo>streamdetails>audio"`
}

// nfoRate is the newer <ratings><rating name=".." max=".." default="true">
// layout.
type nfoRate struct {
	Name    string `xml:"name,attr"`
	Max     string `xml:"max,attr"`
	Default string `xml:"default,attr"`
	Value   string `xml:"value"`
	Votes   string `xml:"votes"`
}

// nfoSet accepts both <set>Name</set> and <set><name>Name</name></set>.
type nfoSet struct {
	Text     string `xml:",chardata"`
	Name     string `xml:"name"`
	Overview string `xml:"overview"`
}

type nfoVideo struct {
	Codec  string `xml:"codec"`
	Width  string `xml:"width"`
	Height string `xml:"height"`
}

// ParseNFO reads a Kodi movie .nfo file.
func ParseNFO(path string) (*NFO, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeNFO(b)
}

// DecodeNFO parses NFO XML. Numeric fields that fail to parse are left zero.
func DecodeNFO(b []byte) (*NFO, error) {
	var m nfoMovie
	if err := xml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode nfo: %w", err)
	}

	n := &NFO{
		Title:       strings.TrimSpace(m.Title),
		SortTitle:   strings.TrimSpace(m.SortTitle),
		Year:        atoi(m.Year),
		Plot:        strings.TrimSpace(m.Plot),
		Rating:      atof(m.Rating),
		Votes:       atoi(strings.ReplaceAll(m.Votes, ",", "")),
		RatingMax:   10,
		Watched:     atoi(m.PlayCount) > 0 || strings.EqualFold(strings.TrimSpace(m.Watched), "true"),
		SetName:     strings.TrimSpace(m.Set.Name),
		SetPlot:     strings.TrimSpace(m.Set.Overview),
		VideoCodec:  strings.TrimSpace(m.Video.Codec),
		VideoWidth:  atoi(m.Video.Width),
		VideoHeight: atoi(m.Video.Height),
	}
	if n.SetName == "" {
		n.SetName = strings.TrimSpace(m.Set.Text)
	}
	if n.Year == 0 && len(m.Premiered) >= 4 {
		n.Year = atoi(m.Premiered[:4])
	}
	if r, ok := pickRating(m.Ratings); ok {
		n.Rating = atof(r.Value)
		n.Votes = atoi(strings.ReplaceAll(r.Votes, ",", ""))
		if rmax := atoi(r.Max); rmax > 0 {
			n.RatingMax = rmax
		}
	}
	for _, a := range m.Audio {
		n.Audio = append(n.Audio, NFOAudio{
			Codec:    strings.TrimSpace(a.Codec),
			Channels: strings.TrimSpace(a.Channels),
			Language: strings.TrimSpace(a.Language),
		})
	}
	return n, nil
}

func pickRating(rs []nfoRate) (nfoRate, bool) {
	for _, r := range rs {
		if r.Default == "true" {
			return r, true
		}
	}
	if len(rs) > 0 {
		return rs[0], true
	}
	return nfoRate{}, false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func atof(s string) float32 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(s, ",", ".")), 32)
	return float32(f)
}
