package h2server_test

import (
	"context"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/sagarc03/h2server"
)

// memProbe is an in-memory tree of files keyed by logical path.
type memProbe struct {
	files map[string]bool
	fail  map[string]error
}

func newMemProbe(files ...string) *memProbe {
	p := &memProbe{files: map[string]bool{}, fail: map[string]error{}}
	for _, f := range files {
		p.files[h2server.JoinPath(f)] = true
	}
	return p
}

func (p *memProbe) Stat(ctx context.Context, name string) (h2server.ProbeKind, error) {
	name = h2server.JoinPath(name)
	if err, ok := p.fail[name]; ok {
		return h2server.KindAbsent, err
	}
	if p.files[name] {
		return h2server.KindFile, nil
	}
	prefix := strings.TrimSuffix(name, "/") + "/"
	for f := range p.files {
		if strings.HasPrefix(f, prefix) {
			return h2server.KindDirectory, nil
		}
	}
	return h2server.KindAbsent, nil
}

func (p *memProbe) ReadDir(ctx context.Context, name string) ([]string, error) {
	prefix := strings.TrimSuffix(h2server.JoinPath(name), "/") + "/"
	seen := map[string]bool{}
	for f := range p.files {
		if rest, ok := strings.CutPrefix(f, prefix); ok {
			seen[strings.Split(rest, "/")[0]] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (p *memProbe) Open(ctx context.Context, name string) (*os.File, error) {
	return nil, os.ErrNotExist
}

// SpyProbe records probe calls for tests that need exact failure injection.
type SpyProbe struct {
	mock.Mock
}

func (s *SpyProbe) Stat(ctx context.Context, name string) (h2server.ProbeKind, error) {
	args := s.Called(ctx, path.Clean(name))
	return args.Get(0).(h2server.ProbeKind), args.Error(1)
}

func (s *SpyProbe) ReadDir(ctx context.Context, name string) ([]string, error) {
	args := s.Called(ctx, path.Clean(name))
	return args.Get(0).([]string), args.Error(1)
}

func (s *SpyProbe) Open(ctx context.Context, name string) (*os.File, error) {
	args := s.Called(ctx, name)
	return args.Get(0).(*os.File), args.Error(1)
}
