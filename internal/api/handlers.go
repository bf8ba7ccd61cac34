package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/Nomadcxx/mediashelf/internal/media"
	"github.com/Nomadcxx/mediashelf/internal/movie"
	"github.com/Nomadcxx/mediashelf/internal/moviesets"
	"github.com/Nomadcxx/mediashelf/internal/scanner"
	"github.com/Nomadcxx/mediashelf/internal/tree"
	"github.com/go-chi/chi/v5"
)

type Column struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Kind  string `json:"kind"`
}

// Row is one table row. Cells holds strings for text columns and booleans
// for check columns; blank cells are absent.
type Row struct {
	Kind  string         `json:"kind"`
	ID    string         `json:"id"`
	Depth int            `json:"depth"`
	Cells map[string]any `json:"cells"`
}

type TableResponse struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

type TreeNode struct {
	Kind     string     `json:"kind"`
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Year     int        `json:"year,omitempty"`
	Rating   float32    `json:"rating,omitempty"`
	Watched  bool       `json:"watched"`
	Children []TreeNode `json:"children,omitempty"`
}

type MediaFile struct {
	Path           string        `json:"path"`
	Filename       string        `json:"filename"`
	Type           string        `json:"type"`
	Size           int64         `json:"size"`
	Format         string        `json:"format,omitempty"`
	Stacking       int           `json:"stacking,omitempty"`
	StackingMarker string        `json:"stackingMarker,omitempty"`
	Audio          []AudioStream `json:"audio,omitempty"`
}

type AudioStream struct {
	Codec    string `json:"codec,omitempty"`
	Channels int    `json:"channels"`
	Language string `json:"language,omitempty"`
}

type MovieDetail struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Year     int         `json:"year,omitempty"`
	Path     string      `json:"path"`
	Plot     string      `json:"plot,omitempty"`
	Rating   float32     `json:"rating,omitempty"`
	Watched  bool        `json:"watched"`
	SetID    string      `json:"setId,omitempty"`
	SetTitle string      `json:"setTitle,omitempty"`
	Files    []MediaFile `json:"files"`
}

type Classification struct {
	Path                    string `json:"path"`
	Filename                string `json:"filename"`
	Type                    string `json:"type"`
	Stacked                 bool   `json:"stacked"`
	Stacking                int    `json:"stacking,omitempty"`
	StackingMarker          string `json:"stackingMarker,omitempty"`
	FilenameWithoutStacking string `json:"filenameWithoutStacking"`
}

type StatsResponse struct {
	Movies      int            `json:"movies"`
	MovieSets   int            `json:"movieSets"`
	MediaFiles  int            `json:"mediaFiles"`
	FilesByType map[string]int `json:"filesByType"`
}

type HealthResponse struct {
	Status  string          `json:"status"`
	Scanner *scanner.Status `json:"scanner,omitempty"`
}

// HandleHealth reports liveness. An unhealthy periodic scanner degrades the
// status but still answers 200.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	resp := HealthResponse{Status: "ok"}
	if s.scanStatus != nil {
		st := s.scanStatus()
		resp.Scanner = &st
		if !st.Healthy {
			resp.Status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// provider builds a request-scoped tree with the filter, watched and sort
// query parameters applied.
func (s *Server) provider(r *http.Request) (*moviesets.Provider, error) {
	q := r.URL.Query()
	sortBy, err := moviesets.ParseSortBy(q.Get("sort"))
	if err != nil {
		return nil, err
	}

	p := moviesets.NewProvider(s.lib, s.log)
	var filters []tree.Filter[moviesets.Node]
	if f := q.Get("filter"); f != "" {
		filters = append(filters, moviesets.NewTitleFilter(f))
	}
	if w := q.Get("watched"); w != "" {
		filters = append(filters, moviesets.ParseWatched(w))
	}
	p.SetFilters(filters...)
	p.SetComparator(moviesets.NewComparator(sortBy, s.lang))
	return p, nil
}

// HandleMovieSets returns the movie set table
func (s *Server) HandleMovieSets(w http.ResponseWriter, r *http.Request) {
	p, err := s.provider(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_sort", err.Error())
		return
	}
	defer p.Close()

	format := moviesets.NewTableFormat()
	resp := TableResponse{Columns: make([]Column, len(format.Columns)), Rows: []Row{}}
	for i, c := range format.Columns {
		kind := "text"
		if c.Kind == moviesets.CheckColumn {
			kind = "check"
		}
		resp.Columns[i] = Column{Key: c.Key, Title: c.Title, Kind: kind}
	}

	tree.Walk[moviesets.Node](p, func(n moviesets.Node, depth int) bool {
		if depth == 0 {
			return true
		}
		row := Row{Kind: n.Kind.String(), ID: nodeID(n), Depth: depth, Cells: make(map[string]any)}
		for i, v := range format.Row(n) {
			if v.Blank() {
				continue
			}
			if format.Columns[i].Kind == moviesets.CheckColumn {
				row.Cells[format.Columns[i].Key] = v.Check
			} else {
				row.Cells[format.Columns[i].Key] = v.Text
			}
		}
		resp.Rows = append(resp.Rows, row)
		return true
	})
	writeJSON(w, http.StatusOK, resp)
}

// HandleTree returns the movie sets as nested nodes
func (s *Server) HandleTree(w http.ResponseWriter, r *http.Request) {
	p, err := s.provider(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_sort", err.Error())
		return
	}
	defer p.Close()

	writeJSON(w, http.StatusOK, buildTree(p, p.Root()))
}

func buildTree(p tree.DataProvider[moviesets.Node], parent moviesets.Node) []TreeNode {
	children := p.Children(parent)
	out := make([]TreeNode, 0, len(children))
	for _, n := range children {
		node := TreeNode{Kind: n.Kind.String(), ID: nodeID(n), Title: n.Title()}
		switch n.Kind {
		case moviesets.MovieSetNode:
			node.Watched = n.Set.Watched()
			node.Children = buildTree(p, n)
		case moviesets.MovieNode:
			node.Year = n.Movie.Year
			node.Rating = n.Movie.Rating.Value
			node.Watched = n.Movie.Watched
		}
		out = append(out, node)
	}
	return out
}

func nodeID(n moviesets.Node) string {
	switch n.Kind {
	case moviesets.MovieSetNode:
		return n.Set.ID
	case moviesets.MovieNode:
		return n.Movie.ID
	}
	return ""
}

// HandleMovie returns a single movie with its files
func (s *Server) HandleMovie(w http.ResponseWriter, r *http.Request) {
	m := s.lib.Movie(chi.URLParam(r, "id"))
	if m == nil {
		writeError(w, http.StatusNotFound, "not_found", "movie not found")
		return
	}

	detail := MovieDetail{
		ID:      m.ID,
		Title:   m.Title,
		Year:    m.Year,
		Path:    m.Path,
		Plot:    m.Plot,
		Rating:  m.Rating.Value,
		Watched: m.Watched,
		Files:   make([]MediaFile, 0, len(m.MediaFiles)),
	}
	if set := s.lib.MovieSetOf(m); set != nil {
		detail.SetID = set.ID
		detail.SetTitle = set.Title
	}
	for _, mf := range m.MediaFiles {
		detail.Files = append(detail.Files, toMediaFile(mf))
	}
	writeJSON(w, http.StatusOK, detail)
}

func toMediaFile(mf *media.MediaFile) MediaFile {
	out := MediaFile{
		Path:           mf.Path,
		Filename:       mf.Filename,
		Type:           string(mf.Type),
		Size:           mf.Filesize,
		Format:         mf.VideoFormat(),
		Stacking:       mf.Stacking,
		StackingMarker: mf.StackingMarker,
	}
	for _, a := range mf.AudioStreams {
		out.Audio = append(out.Audio, AudioStream{Codec: a.Codec, Channels: a.ChannelsAsInt(), Language: a.Language})
	}
	return out
}

// HandleStats returns library counts
func (s *Server) HandleStats(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		stats, err := s.db.GetStats()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "stats_failed", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, StatsResponse{
			Movies:      stats.Movies,
			MovieSets:   stats.MovieSets,
			MediaFiles:  stats.MediaFiles,
			FilesByType: stats.FilesByType,
		})
		return
	}
	writeJSON(w, http.StatusOK, libraryStats(s.lib))
}

func libraryStats(lib *movie.Library) StatsResponse {
	resp := StatsResponse{FilesByType: make(map[string]int)}
	for _, m := range lib.Movies() {
		resp.Movies++
		for _, mf := range m.MediaFiles {
			resp.MediaFiles++
			resp.FilesByType[string(mf.Type)]++
		}
	}
	resp.MovieSets = len(lib.MovieSets())
	return resp
}

// HandleClassify classifies a file name or path without touching the disk
func (s *Server) HandleClassify(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		writeError(w, http.StatusBadRequest, "missing_path", "query parameter path is required")
		return
	}

	mf := media.NewMediaFile(path)
	if mf.Type == media.FileTypeVideo {
		mf.DetectStacking()
	}
	writeJSON(w, http.StatusOK, Classification{
		Path:                    mf.Path,
		Filename:                mf.Filename,
		Type:                    string(mf.Type),
		Stacked:                 mf.IsStacked(),
		Stacking:                mf.Stacking,
		StackingMarker:          mf.StackingMarker,
		FilenameWithoutStacking: mf.FilenameWithoutStacking(),
	})
}

// HandleChannels parses an audio channel description
func (s *Server) HandleChannels(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("value")
	writeJSON(w, http.StatusOK, map[string]any{
		"value":    value,
		"channels": media.ParseChannels(value),
	})
}

// HandleActivity returns the newest journal entries, limit defaults to 50
func (s *Server) HandleActivity(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusNotFound, "activity_disabled", "activity journal is not enabled")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	entries, err := s.journal.Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "activity_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}
