package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kodiNFO = `<?xml version="1.0" encoding="UTF-8" standalone="yes" ?>
<movie>
  <title>Alien</title>
  <sorttitle>Alien 1</sorttitle>
  <year>1979</year>
  <plot>The crew of a commercial spacecraft encounters a deadly lifeform.</plot>
  <ratings>
    <rating name="tmdb" max="10">
      <value>8.1</value>
      <votes>12000</votes>
    </rating>
    <rating name="imdb" max="10" default="true">
      <value>8.5</value>
      <votes>950,000</votes>
    </rating>
  </ratings>
  <playcount>2</playcount>
  <set>
    <name>Alien Collection</name>
    <overview>Xenomorphs.</overview>
  </set>
  <fileinfo>
    <streamdetails>
      <video>
        <codec>h264</codec>
        <width>1920</width>
        <height>1040</height>
      </video>
      <audio>
        <codec>dts</codec>
        <language>eng</language>
        <channels>6</channels>
      </audio>
      <audio>
        <codec>ac3</codec>
        <language>ger</language>
        <channels>2</channels>
      </audio>
    </streamdetails>
  </fileinfo>
</movie>`

func TestDecodeNFO_Kodi(t *testing.T) {
	n, err := DecodeNFO([]byte(kodiNFO))
	require.NoError(t, err)

	assert.Equal(t, "Alien", n.Title)
	assert.Equal(t, "Alien 1", n.SortTitle)
	assert.Equal(t, 1979, n.Year)
	assert.Equal(t, float32(8.5), n.Rating)
	assert.Equal(t, 950000, n.Votes)
	assert.Equal(t, 10, n.RatingMax)
	assert.True(t, n.Watched)
	assert.Equal(t, "Alien Collection", n.SetName)
	assert.Equal(t, "Xenomorphs.", n.SetPlot)
	assert.Equal(t, "h264", n.VideoCodec)
	assert.Equal(t, 1920, n.VideoWidth)
	assert.Equal(t, 1040, n.VideoHeight)
	require.Len(t, n.Audio, 2)
	assert.Equal(t, NFOAudio{Codec: "dts", Channels: "6", Language: "eng"}, n.Audio[0])
}

func TestDecodeNFO_Legacy(t *testing.T) {
	n, err := DecodeNFO([]byte(`<movie>
  <title>Aliens</title>
  <premiered>1986-07-18</premiered>
  <rating>8,4</rating>
  <votes>700000</votes>
  <watched>true</watched>
  <set>Alien Collection</set>
</movie>`))
	require.NoError(t, err)

	assert.Equal(t, 1986, n.Year)
	assert.Equal(t, float32(8.4), n.Rating)
	assert.Equal(t, 700000, n.Votes)
	assert.True(t, n.Watched)
	assert.Equal(t, "Alien Collection", n.SetName)
	assert.Empty(t, n.Audio)
}

func TestDecodeNFO_Invalid(t *testing.T) {
	_, err := DecodeNFO([]byte("http://www.imdb.com/title/tt0078748/"))
	assert.Error(t, err)

	_, err = DecodeNFO([]byte("<tvshow><title>x</title></tvshow>"))
	assert.Error(t, err)
}

func TestParseNFO_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie.nfo")
	require.NoError(t, os.WriteFile(path, []byte(kodiNFO), 0644))

	n, err := ParseNFO(path)
	require.NoError(t, err)
	assert.Equal(t, "Alien", n.Title)

	_, err = ParseNFO(filepath.Join(t.TempDir(), "missing.nfo"))
	assert.Error(t, err)
}
