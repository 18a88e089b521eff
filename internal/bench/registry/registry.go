package registry

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/paramseq"
)

// Source produces an initial artifact from its arguments.
type Source[A any] struct {
	Name     string
	Params   []string
	Defaults paramseq.Args
	Load     func(paramseq.Args) (A, error)
}

func (s Source[A]) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("source has no name")
	}
	if s.Load == nil {
		return fmt.Errorf("source %q has no loader", s.Name)
	}
	return nil
}

// Open loads the source with its defaults overridden by args.
func (s Source[A]) Open(args paramseq.Args) (A, error) {
	var zero A
	merged := s.Defaults.Clone()
	if merged == nil {
		merged = make(paramseq.Args, len(args))
	}
	for k, v := range args {
		if !slices.Contains(s.Params, k) {
			return zero, &paramseq.InvalidParameterError{Func: s.Name, Param: k}
		}
		merged[k] = v
	}
	return s.Load(merged)
}

// Registry is the catalogue of data sources and candidate methods a pipeline
// spec can refer to by name.
type Registry[A any] struct {
	mu      sync.RWMutex
	methods map[string]paramseq.Func[A]
	sources map[string]Source[A]
}

func New[A any]() *Registry[A] {
	return &Registry[A]{
		methods: make(map[string]paramseq.Func[A]),
		sources: make(map[string]Source[A]),
	}
}

func (r *Registry[A]) RegisterMethod(f paramseq.Func[A]) error {
	if f.Name == "" {
		return fmt.Errorf("method has no name")
	}
	if f.Fn == nil {
		return fmt.Errorf("method %q has no function", f.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.methods[f.Name]; exists {
		return fmt.Errorf("method %q already registered", f.Name)
	}
	r.methods[f.Name] = f
	return nil
}

func (r *Registry[A]) RegisterSource(s Source[A]) error {
	if err := s.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sources[s.Name]; exists {
		return fmt.Errorf("source %q already registered", s.Name)
	}
	r.sources[s.Name] = s
	return nil
}

func (r *Registry[A]) Method(name string) (paramseq.Func[A], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.methods[name]
	return f, ok
}

func (r *Registry[A]) Source(name string) (Source[A], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[name]
	return s, ok
}

func (r *Registry[A]) MethodNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.methods)
}

func (r *Registry[A]) SourceNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.sources)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
