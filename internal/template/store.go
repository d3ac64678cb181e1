package template

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Store manages the profile directory. All mutation goes through the mutex
// so concurrent documents can trigger synthesis without racing on names.
type Store struct {
	dir string
	log *zap.Logger

	mu        sync.Mutex
	templates map[string]*Template
}

// NewStore opens (creating if necessary) the profile directory and loads
// every *.yaml profile in it. A missing "_generic" profile is written out on
// first load so the fallback always exists on disk.
func NewStore(dir string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("template store: create dir %s: %w", dir, err)
	}
	s := &Store{dir: dir, log: log, templates: map[string]*Template{}}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[GenericName]; !ok {
		gen := Generic()
		if err := s.writeLocked(gen); err != nil {
			return nil, err
		}
		s.templates[GenericName] = gen
	}
	return s, nil
}

// Reload re-reads every profile from disk. Malformed files are skipped with a
// warning; they never take down the store.
func (s *Store) Reload() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("template store: read dir %s: %w", s.dir, err)
	}
	loaded := map[string]*Template{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.log.Warn("template read failed", zap.String("file", path), zap.Error(err))
			continue
		}
		var t Template
		if err := yaml.Unmarshal(data, &t); err != nil {
			s.log.Warn("template parse failed, skipping", zap.String("file", path), zap.Error(err))
			continue
		}
		if t.Name == "" {
			t.Name = strings.TrimSuffix(e.Name(), ".yaml")
		}
		loaded[t.Name] = &t
	}
	s.mu.Lock()
	s.templates = loaded
	s.mu.Unlock()
	return nil
}

// Get returns the named profile, or nil if absent.
func (s *Store) Get(name string) *Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templates[name]
}

// Generic returns the fallback profile, which NewStore guarantees to exist.
func (s *Store) Generic() *Template {
	if t := s.Get(GenericName); t != nil {
		return t
	}
	return Generic()
}

// All returns the loaded profiles sorted by name. The slice is a snapshot.
func (s *Store) All() []*Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Template, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// NextName reserves the next free auto-generated name, pattern_0001 upward.
// Existing on-disk files count even if they failed to parse, so a crashed
// half-written profile can never be silently overwritten.
func (s *Store) NextName() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextNameLocked()
}

func (s *Store) nextNameLocked() (string, error) {
	max := 0
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("template store: read dir %s: %w", s.dir, err)
	}
	scan := func(name string) {
		var n int
		if _, err := fmt.Sscanf(name, "pattern_%04d", &n); err == nil && n > max {
			max = n
		}
	}
	for _, e := range entries {
		scan(strings.TrimSuffix(e.Name(), ".yaml"))
	}
	for name := range s.templates {
		scan(name)
	}
	return fmt.Sprintf("pattern_%04d", max+1), nil
}

// Add assigns the template the next free pattern name, persists it, and makes
// it immediately routable. Name reservation and the write happen under one
// lock so two concurrent documents always get distinct names.
func (s *Store) Add(t *Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, err := s.nextNameLocked()
	if err != nil {
		return err
	}
	t.Name = name
	if err := s.writeLocked(t); err != nil {
		return err
	}
	s.templates[name] = t
	return nil
}

func (s *Store) writeLocked(t *Template) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("template store: marshal %s: %w", t.Name, err)
	}
	path := filepath.Join(s.dir, t.Name+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("template store: write %s: %w", path, err)
	}
	s.log.Info("template persisted", zap.String("name", t.Name), zap.String("file", path))
	return nil
}
