package media

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Extras(t *testing.T) {
	tests := []struct {
		name string
		want MediaFileType
	}{
		{"E.T. el extraterrestre", FileTypeVideo},
		{"E.T. the Extra-Terrestrial", FileTypeVideo},
		{"Extra", FileTypeVideo},
		{"Extras", FileTypeVideo},
		{"Extra 2012", FileTypeVideo},
		{"LazyTown Extra", FileTypeVideo},
		{"Extra! Extra!", FileTypeVideo},
		{"Extra.Das.RTL.Magazin.2014-06-02.GERMAN.Doku.WS.dTV.x264", FileTypeVideo},
		{"Person.of.Interest.S02E14.Extravaganzen.German.DL.720p.BluRay.x264", FileTypeVideo},
		{"The.Client.List.S02E04.Extra.gefaellig.GERMAN.DUBBED.DL.720p.WebHD.h264", FileTypeVideo},
		{"The.Amazing.World.of.Gumball.S03E06.The.Extras.720p.HDTV.x264", FileTypeVideo},

		{"Red.Shoe.Diaries.S01.EXTRAS.DVDRip.X264", FileTypeVideoExtra},
		{"Extra/extras/some-trailer", FileTypeVideoExtra},
		{"extras/someExtForSomeMovie-trailer", FileTypeVideoExtra},
		{"extras/someExtForSomeMovie", FileTypeVideoExtra},
		{"extra/The.Amazing.World.of.Gumball.S03E06.720p.HDTV.x264", FileTypeVideoExtra},
		{"bla-blubb-extra", FileTypeVideoExtra},
		{"bla-blubb-extra-something", FileTypeVideoExtra},
		{"bla-blubb-extra-", FileTypeVideoExtra},
		{"bla-blubb-extra-trailer", FileTypeVideoExtra},
		{"bla-blubb-extra-sample", FileTypeVideoExtra},
		{"trailers/bla-blubb-extra", FileTypeVideoExtra},

		{"Trailer", FileTypeVideo},
		{"Trailers", FileTypeVideo},
		{"Sample", FileTypeVideo},
		{"bla-blubb-trailer", FileTypeTrailer},
		{"bla-blubb.sample", FileTypeSample},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mf := NewMediaFile(filepath.Join(".", tt.name+".avi"))
			assert.Equal(t, tt.want, mf.Type)
		})
	}
}

func TestClassify_Types(t *testing.T) {
	tests := []struct {
		path string
		want MediaFileType
	}{
		{"/movies/Alien (1979)/Alien (1979).mkv", FileTypeVideo},
		{"/movies/Alien (1979)/Alien (1979)-trailer.mkv", FileTypeTrailer},
		{"/movies/Alien (1979)/trailers/teaser.mp4", FileTypeTrailer},
		{"/movies/Alien (1979)/Alien (1979)-sample.mkv", FileTypeSample},
		{"/movies/Alien (1979)/Sample/alien.mkv", FileTypeSample},
		{"/movies/Alien (1979)/VIDEO_TS/VIDEO_TS.IFO", FileTypeVideo},
		{"/movies/Alien (1979)/Alien (1979).nfo", FileTypeNFO},
		{"/movies/Alien (1979)/Alien (1979).en.srt", FileTypeSubtitle},
		{"/movies/Alien (1979)/Alien (1979)-poster.jpg", FileTypePoster},
		{"/movies/Alien (1979)/folder.jpg", FileTypePoster},
		{"/movies/Alien (1979)/fanart.jpg", FileTypeFanart},
		{"/movies/Alien (1979)/Alien (1979)-banner.png", FileTypeBanner},
		{"/movies/Alien (1979)/landscape.jpg", FileTypeThumb},
		{"/movies/Alien (1979)/clearlogo.png", FileTypeLogo},
		{"/movies/Alien (1979)/disc.png", FileTypeDisc},
		{"/movies/Alien (1979)/screenshot.png", FileTypeGraphic},
		{"/movies/Alien (1979)/soundtrack.flac", FileTypeAudio},
		{"/movies/Alien (1979)/readme.txt", FileTypeText},
		{"/movies/Alien (1979)/Alien (1979).part", FileTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, NewMediaFile(tt.path).Type)
		})
	}
}

func TestMediaFileType_Groups(t *testing.T) {
	assert.True(t, FileTypeVideoExtra.IsVideo())
	assert.True(t, FileTypeTrailer.IsVideo())
	assert.False(t, FileTypeNFO.IsVideo())
	assert.True(t, FileTypePoster.IsArtwork())
	assert.False(t, FileTypeSubtitle.IsArtwork())
}

func TestIsMediaPath(t *testing.T) {
	assert.True(t, IsMediaPath("/a/b.MKV"))
	assert.True(t, IsMediaPath("/a/b.nfo"))
	assert.False(t, IsMediaPath("/a/b.part"))
	assert.True(t, IsVideoExtension(".M2TS"))
}
