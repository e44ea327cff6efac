package exporters

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

type Factory func() Exporter

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}

// Register adds an exporter under format. Formats are case-insensitive.
func Register(format string, factory Factory) error {
	format = normalizeFormat(format)
	if format == "" {
		return fmt.Errorf("exporter: empty format name")
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[format]; exists {
		return fmt.Errorf("exporter: format %q already registered", format)
	}
	registry[format] = factory
	return nil
}

// Get returns a fresh exporter for format.
func Get(format string) (Exporter, error) {
	registryMu.RLock()
	factory, ok := registry[normalizeFormat(format)]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported format: %q (available: %s)",
			format, strings.Join(List(), ", "))
	}
	return factory(), nil
}

// List returns the registered formats in alphabetical order.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	formats := make([]string, 0, len(registry))
	for name := range registry {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}

func MustRegister(format string, factory Factory) {
	if err := Register(format, factory); err != nil {
		panic(err)
	}
}
