package render

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cgi"
	"os/exec"
	"path/filepath"
)

// Scripts executes server-side scripts as CGI programs.
type Scripts struct {
	interpreter string
	args        []string
	env         []string
}

// NewScripts creates a script renderer. With an empty interpreter the script
// itself must be executable.
func NewScripts(interpreter string, args []string, env []string) *Scripts {
	return &Scripts{
		interpreter: interpreter,
		args:        args,
		env:         env,
	}
}

// Render runs file with the request as CGI input and relays its response.
// Failures of the script itself are answered with 500 by the CGI handler.
func (s *Scripts) Render(w http.ResponseWriter, r *http.Request, file string) error {
	h := &cgi.Handler{
		Path:   file,
		Dir:    filepath.Dir(file),
		Root:   r.URL.Path,
		Env:    s.env,
		Logger: slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
	}

	if s.interpreter != "" {
		interpreter, err := exec.LookPath(s.interpreter)
		if err != nil {
			return fmt.Errorf("run script %s: %w", file, err)
		}
		h.Path = interpreter
		h.Args = append(append([]string{}, s.args...), file)
	}

	h.ServeHTTP(w, r)
	return nil
}
