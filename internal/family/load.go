package family

import (
	"fmt"
	"path/filepath"
)

// Load reads a kernel table, dispatching on file extension.
// .yaml/.yml files go through the YAML loader, .star through Starlark.
func Load(path string) (*Table, error) {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".star":
		return LoadStarlark(path)
	default:
		return nil, fmt.Errorf("unsupported kernel table format %q (want .yaml, .yml or .star)", filepath.Ext(path))
	}
}
