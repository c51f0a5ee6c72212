package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sagarc03/h2server"
)

// Lister is implemented by probes that can describe directory entries.
type Lister interface {
	List(ctx context.Context, name string) ([]fs.FileInfo, error)
}

// FileServer serves the logical path left by the route walk. It is the
// fallback of the route table.
type FileServer struct{}

// NewFileServer creates a FileServer.
func NewFileServer() *FileServer {
	return &FileServer{}
}

// Serve writes the file, default page or directory listing behind req.Path.
func (f *FileServer) Serve(ctx context.Context, req *h2server.Request, w http.ResponseWriter, srv *h2server.Server) error {
	kind, err := srv.Probe.Stat(ctx, req.Path)
	if err != nil {
		return fmt.Errorf("serve %s: %w", req.Path, err)
	}

	switch kind {
	case h2server.KindFile:
		return f.serveFile(ctx, req, w, srv, req.Path)
	case h2server.KindDirectory:
		return f.serveDirectory(ctx, req, w, srv)
	default:
		return fmt.Errorf("serve %s: %w", req.Path, h2server.ErrNotFound)
	}
}

func (f *FileServer) serveDirectory(ctx context.Context, req *h2server.Request, w http.ResponseWriter, srv *h2server.Server) error {
	urlPath := req.HTTP.URL.Path
	if !strings.HasSuffix(urlPath, "/") && h2server.CleanPath(urlPath) == req.Path {
		http.Redirect(w, req.HTTP, slashRedirect(req.HTTP), http.StatusMovedPermanently)
		return nil
	}

	for _, page := range srv.DefaultPages {
		index := h2server.JoinPath(req.Path, page)
		if h2server.FileExists(ctx, srv.Probe, index) {
			return f.serveFile(ctx, req, w, srv, index)
		}
	}

	if !srv.DirectoryList {
		return fmt.Errorf("serve %s: %w", req.Path, h2server.ErrNotFound)
	}

	return f.serveListing(ctx, req, w, srv)
}

// slashRedirect appends a slash to the path the client actually requested,
// which differs from URL.Path when the site is mounted below a prefix.
func slashRedirect(r *http.Request) string {
	requested, query, _ := strings.Cut(r.RequestURI, "?")
	if requested == "" {
		requested, query = r.URL.Path, r.URL.RawQuery
	}
	target := requested + "/"
	if query != "" {
		target += "?" + query
	}
	return target
}

func (f *FileServer) serveFile(ctx context.Context, req *h2server.Request, w http.ResponseWriter, srv *h2server.Server, name string) error {
	file, err := srv.Probe.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("serve %s: %w", name, err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("serve %s: %w: %w", name, h2server.ErrProbe, err)
	}

	http.ServeContent(w, req.HTTP, info.Name(), info.ModTime(), file)
	return nil
}

// Entry is one row of a directory listing.
type Entry struct {
	Name    string    `json:"name"`
	Dir     bool      `json:"dir"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	Href    string    `json:"-"`
}

func (f *FileServer) serveListing(ctx context.Context, req *h2server.Request, w http.ResponseWriter, srv *h2server.Server) error {
	entries, err := listEntries(ctx, srv.Probe, req.Path)
	if err != nil {
		return fmt.Errorf("list %s: %w", req.Path, err)
	}

	if wantsJSON(req.HTTP) {
		return WriteJSON(w, http.StatusOK, entries)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	return listingTemplate.Execute(w, struct {
		Path    string
		Parent  bool
		Entries []Entry
	}{
		Path:    req.Path,
		Parent:  req.Path != "/",
		Entries: entries,
	})
}

// listEntries sorts directories first, then by name.
func listEntries(ctx context.Context, probe h2server.Probe, name string) ([]Entry, error) {
	entries := []Entry{}

	if lister, ok := probe.(Lister); ok {
		infos, err := lister.List(ctx, name)
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			entries = append(entries, Entry{
				Name:    info.Name(),
				Dir:     info.IsDir(),
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})
		}
	} else {
		names, err := probe.ReadDir(ctx, name)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			kind, _ := probe.Stat(ctx, h2server.JoinPath(name, n))
			entries = append(entries, Entry{Name: n, Dir: kind == h2server.KindDirectory})
		}
	}

	for i := range entries {
		href := url.PathEscape(entries[i].Name)
		if entries[i].Dir {
			href += "/"
		}
		entries[i].Href = href
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Dir != entries[j].Dir {
			return entries[i].Dir
		}
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

var listingTemplate = template.Must(template.New("listing").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Index of {{.Path}}</title></head>
<body>
<h1>Index of {{.Path}}</h1>
<ul>
{{- if .Parent}}
<li><a href="../">../</a></li>
{{- end}}
{{- range .Entries}}
<li><a href="{{.Href}}">{{.Name}}{{if .Dir}}/{{end}}</a>{{if not .Dir}} <small>{{.Size}} bytes</small>{{end}}</li>
{{- end}}
</ul>
</body>
</html>
`))
