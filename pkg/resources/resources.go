package resources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/placeholder-sync/internal/domain"
	"github.com/samvad-hq/placeholder-sync/pkg/netprovider"
	"gopkg.in/yaml.v3"
)

// Package resources contains the declarative list of API resources to sync
// (YAML/JSON) and the typed fetchers behind each kind.

// Resource is a single API path to poll.
type Resource struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Kind           string `json:"kind" yaml:"kind"`
	Path           string `json:"path" yaml:"path"`
	Method         string `json:"method" yaml:"method"`
	Collection     bool   `json:"collection" yaml:"collection"`
	RequestDelayMs int    `json:"request_delay_ms" yaml:"request_delay_ms"`
}

type configFile struct {
	Resources []Resource `json:"resources" yaml:"resources"`
}

const defaultRequestDelayMs = 250

var knownKinds = map[string]bool{
	domain.KindUser:    true,
	domain.KindPost:    true,
	domain.KindComment: true,
	domain.KindTodo:    true,
	domain.KindAlbum:   true,
}

// Registry materializes resource definitions loaded from config files.
type Registry struct {
	mu        sync.RWMutex
	resources []Resource
	idx       map[string]Resource
}

// LoadRegistry loads the resource registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("resources file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open resources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read resources file: %w", err)
	}

	cf, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return NewRegistry(cf.Resources)
}

// NewRegistry sanitizes and validates the given resources.
func NewRegistry(list []Resource) (*Registry, error) {
	if len(list) == 0 {
		return nil, errors.New("resources file contains no resources entries")
	}

	reg := &Registry{
		resources: make([]Resource, len(list)),
		idx:       make(map[string]Resource, len(list)),
	}
	for i := range list {
		r := sanitizeResource(list[i])
		if err := validateResource(r); err != nil {
			return nil, fmt.Errorf("resources[%d]: %w", i, err)
		}
		if _, exists := reg.idx[r.ID]; exists {
			return nil, fmt.Errorf("duplicate resource id %q", r.ID)
		}
		reg.resources[i] = r
		reg.idx[r.ID] = r
	}
	return reg, nil
}

type unmarshalFn func([]byte, any) error

func parseRegistry(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var cf configFile
		if err := d.fn(data, &cf); err == nil {
			return cf, nil
		}
	}

	return configFile{}, errors.New("resources file format not recognized (expected YAML or JSON)")
}

func sanitizeResource(r Resource) Resource {
	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
	r.Path = strings.Trim(strings.TrimSpace(r.Path), "/")
	r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
	if r.Method == "" {
		r.Method = string(netprovider.MethodGet)
	}
	if r.Name == "" {
		r.Name = r.ID
	}
	if r.RequestDelayMs <= 0 {
		r.RequestDelayMs = defaultRequestDelayMs
	}
	return r
}

func validateResource(r Resource) error {
	if r.ID == "" {
		return errors.New("id is required")
	}
	if r.Kind == "" {
		return fmt.Errorf("kind is required for resource %q", r.ID)
	}
	if !knownKinds[r.Kind] {
		return fmt.Errorf("unknown kind %q for resource %q", r.Kind, r.ID)
	}
	if r.Path == "" {
		return fmt.Errorf("path is required for resource %q", r.ID)
	}
	if _, ok := netprovider.ParseMethod(r.Method); !ok {
		return fmt.Errorf("unsupported method %q for resource %q", r.Method, r.ID)
	}
	return nil
}

// ByID returns the resource by id.
func (r *Registry) ByID(id string) (Resource, bool) {
	if r == nil {
		return Resource{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Resource{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.idx[id]
	return res, ok
}

// All returns all configured resources in file order.
func (r *Registry) All() []Resource {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Resource, len(r.resources))
	copy(out, r.resources)
	return out
}

// Request builds the provider request for the resource.
func (r Resource) Request() netprovider.Request {
	m, _ := netprovider.ParseMethod(r.Method)
	return netprovider.Request{Path: r.Path, Method: m}
}

// RequestDelay returns the pause applied after fetching this resource.
func (r Resource) RequestDelay() time.Duration {
	if r.RequestDelayMs <= 0 {
		return time.Duration(defaultRequestDelayMs) * time.Millisecond
	}
	return time.Duration(r.RequestDelayMs) * time.Millisecond
}
