package media

import (
	"path/filepath"
	"strings"
)

// MediaFileType classifies a file found inside a movie folder.
type MediaFileType string

const (
	FileTypeVideo      MediaFileType = "VIDEO"
	FileTypeVideoExtra MediaFileType = "VIDEO_EXTRA"
	FileTypeTrailer    MediaFileType = "TRAILER"
	FileTypeSample     MediaFileType = "SAMPLE"
	FileTypeAudio      MediaFileType = "AUDIO"
	FileTypeSubtitle   MediaFileType = "SUBTITLE"
	FileTypeNFO        MediaFileType = "NFO"
	FileTypePoster     MediaFileType = "POSTER"
	FileTypeFanart     MediaFileType = "FANART"
	FileTypeBanner     MediaFileType = "BANNER"
	FileTypeThumb      MediaFileType = "THUMB"
	FileTypeClearart   MediaFileType = "CLEARART"
	FileTypeLogo       MediaFileType = "LOGO"
	FileTypeDisc       MediaFileType = "DISC"
	FileTypeGraphic    MediaFileType = "GRAPHIC"
	FileTypeText       MediaFileType = "TEXT"
	FileTypeUnknown    MediaFileType = "UNKNOWN"
)

// IsVideo reports whether the type is any kind of playable video.
func (t MediaFileType) IsVideo() bool {
	switch t {
	case FileTypeVideo, FileTypeVideoExtra, FileTypeTrailer, FileTypeSample:
		return true
	}
	return false
}

// IsArtwork reports whether the type is an image.
func (t MediaFileType) IsArtwork() bool {
	switch t {
	case FileTypePoster, FileTypeFanart, FileTypeBanner, FileTypeThumb,
		FileTypeClearart, FileTypeLogo, FileTypeDisc, FileTypeGraphic:
		return true
	}
	return false
}

var (
	videoExts = map[string]bool{
		".mkv": true, ".mp4": true, ".avi": true, ".mov": true,
		".wmv": true, ".flv": true, ".webm": true, ".m4v": true,
		".mpg": true, ".mpeg": true, ".m2ts": true, ".ts": true,
		".vob": true, ".ifo": true, ".iso": true, ".divx": true,
		".ogm": true, ".rmvb": true, ".3gp": true,
	}
	audioExts = map[string]bool{
		".mp3": true, ".flac": true, ".m4a": true, ".aac": true,
		".ogg": true, ".wav": true, ".wma": true, ".mka": true,
		".ac3": true, ".dts": true, ".opus": true,
	}
	subtitleExts = map[string]bool{
		".srt": true, ".sub": true, ".idx": true, ".ssa": true,
		".ass": true, ".smi": true, ".vtt": true, ".sup": true,
	}
	graphicExts = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".tbn": true,
		".bmp": true, ".gif": true, ".webp": true,
	}
)

// IsVideoExtension reports whether ext (with leading dot) is a video container.
func IsVideoExtension(ext string) bool {
	return videoExts[strings.ToLower(ext)]
}

// IsMediaPath reports whether the file at path is something the library tracks.
func IsMediaPath(path string) bool {
	return classifyByExtension(path) != FileTypeUnknown
}

func classifyByExtension(path string) MediaFileType {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case videoExts[ext]:
		return FileTypeVideo
	case audioExts[ext]:
		return FileTypeAudio
	case subtitleExts[ext]:
		return FileTypeSubtitle
	case graphicExts[ext]:
		return FileTypeGraphic
	case ext == ".nfo":
		return FileTypeNFO
	case ext == ".txt":
		return FileTypeText
	default:
		return FileTypeUnknown
	}
}

// artworkNames maps the lowercase basename (or its "-suffix") to an artwork type.
var artworkNames = []struct {
	names []string
	typ   MediaFileType
}{
	{[]string{"poster", "folder", "cover", "movie"}, FileTypePoster},
	{[]string{"fanart", "backdrop", "background"}, FileTypeFanart},
	{[]string{"banner"}, FileTypeBanner},
	{[]string{"thumb", "landscape"}, FileTypeThumb},
	{[]string{"clearart"}, FileTypeClearart},
	{[]string{"logo", "clearlogo"}, FileTypeLogo},
	{[]string{"disc", "discart", "cdart"}, FileTypeDisc},
}

func classifyArtwork(basename string) MediaFileType {
	lower := strings.ToLower(basename)
	for _, a := range artworkNames {
		for _, name := range a.names {
			if lower == name || strings.HasSuffix(lower, "-"+name) || strings.HasSuffix(lower, "."+name) {
				return a.typ
			}
		}
	}
	return FileTypeGraphic
}
