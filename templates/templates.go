package templates

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sudhirerahul/meta-creation-agents/core"
	"github.com/sudhirerahul/meta-creation-agents/logging"
)

const (
	// AgentFile is the file name of the generic agent template.
	AgentFile = "agent.yaml"
	// CreatorFile is the file name of the root Creator specification.
	CreatorFile = "creator.yaml"
)

//go:embed defaults/*.yaml
var defaults embed.FS

// DefaultAgentTemplate returns the embedded generic agent template.
func DefaultAgentTemplate() string { return mustDefault(AgentFile) }

// DefaultCreatorTemplate returns the embedded root Creator specification.
func DefaultCreatorTemplate() string { return mustDefault(CreatorFile) }

func mustDefault(name string) string {
	b, err := defaults.ReadFile("defaults/" + name)
	if err != nil {
		panic(fmt.Sprintf("templates: missing embedded %s: %v", name, err))
	}
	return string(b)
}

// Options configure a Store.
type Options struct {
	// Dir optionally holds agent.yaml / creator.yaml overriding the defaults.
	Dir string
	// Validate, when set, must accept a template before it replaces the
	// current one.
	Validate func(file, text string) error
	// Debounce delays reloads after bursts of file events.
	Debounce time.Duration
	Logger   logging.Logger
}

// Store holds the current templates. It is safe for concurrent use; a reload
// swaps both templates atomically.
type Store struct {
	opts    Options
	mu      sync.RWMutex
	agent   string
	creator string
	version int
}

var _ core.TemplateSource = (*Store)(nil)

// New builds a Store from the embedded defaults and, when Dir is set, the
// overrides found there.
func New(optFns ...func(o *Options)) (*Store, error) {
	opts := Options{
		Debounce: 250 * time.Millisecond,
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Store{
		opts:    opts,
		agent:   DefaultAgentTemplate(),
		creator: DefaultCreatorTemplate(),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// AgentTemplate implements core.TemplateSource.
func (s *Store) AgentTemplate() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.agent
}

// CreatorTemplate returns the root Creator specification.
func (s *Store) CreatorTemplate() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creator
}

// Version increments on every reload that changed a template.
func (s *Store) Version() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Reload re-reads the override directory. Missing files keep their current
// value; an invalid file leaves both templates untouched.
func (s *Store) Reload() error {
	if s.opts.Dir == "" {
		return nil
	}

	s.mu.RLock()
	agent, creator := s.agent, s.creator
	s.mu.RUnlock()

	var err error
	if agent, err = s.read(AgentFile, agent); err != nil {
		return err
	}
	if creator, err = s.read(CreatorFile, creator); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if agent != s.agent || creator != s.creator {
		s.agent, s.creator = agent, creator
		s.version++
		s.opts.Logger.Info("Templates reloaded", "dir", s.opts.Dir, "version", s.version)
	}
	return nil
}

func (s *Store) read(file, current string) (string, error) {
	b, err := os.ReadFile(filepath.Join(s.opts.Dir, file))
	if errors.Is(err, fs.ErrNotExist) {
		return current, nil
	}
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", file, err)
	}
	text := string(b)
	if s.opts.Validate != nil {
		if err := s.opts.Validate(file, text); err != nil {
			return "", fmt.Errorf("invalid template %s: %w", file, err)
		}
	}
	return text, nil
}
