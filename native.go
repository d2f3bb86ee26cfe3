package dbmove

import (
	"fmt"
	"path/filepath"
	"plugin"

	"github.com/arikos/dbmove/dblog"
)

// NativeSource turns compiled migration artifacts into a collection of
// NativeMigration tuples. The engine never introspects the underlying
// artifact type — it only ever sees what Load returns, per spec §4.2.
type NativeSource interface {
	Load() ([]NativeMigration, error)
}

// StaticNativeSource is the Go-native equivalent of the original design's
// reflective "scan compiled modules for attribute-tagged classes" loading:
// since Go has no such reflective discovery, callers register their native
// migrations directly in code and hand the engine a finished slice.
type StaticNativeSource struct {
	Migrations []NativeMigration
}

// Load returns the statically registered migrations. It never fails.
func (s StaticNativeSource) Load() ([]NativeMigration, error) {
	return s.Migrations, nil
}

// PluginNativeSource loads native migrations from compiled Go plugins
// (*.so files built with `go build -buildmode=plugin`) found directly
// inside a directory. Each plugin is expected to export a package-level
// symbol named "Migrations" of type []dbmove.NativeMigration.
//
// Artifact filenames carry no ordering meaning; only the declared Version
// field of each loaded NativeMigration matters.
type PluginNativeSource struct {
	Dir    string
	Logger *dblog.Logger
}

const pluginSymbolName = "Migrations"

// Load enumerates *.so files in Dir, attempts to open each as a Go plugin,
// and collects the NativeMigration tuples they export. A file that is not a
// valid plugin, or that exports no Migrations symbol, is logged and
// skipped — it is not a fatal error per spec §4.2. If Dir does not exist or
// contains no artifacts at all, Load returns an empty collection.
func (s PluginNativeSource) Load() ([]NativeMigration, error) {
	entries, err := scan(s.Dir)
	if err != nil {
		var e *Error
		if ke, ok := err.(*Error); ok {
			e = ke
		}
		if e != nil && e.Kind == KindDirectoryMissing {
			return nil, nil
		}
		return nil, err
	}

	var all []NativeMigration
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".so" {
			continue
		}
		path := filepath.Join(s.Dir, entry.Name())
		migs, err := s.loadArtifact(path)
		if err != nil {
			s.logDebug("skipping invalid native artifact %s: %v", path, err)
			continue
		}
		if len(migs) == 0 {
			s.logTrace("native artifact %s declares no migrations", path)
			continue
		}
		all = append(all, migs...)
	}
	return all, nil
}

func (s PluginNativeSource) loadArtifact(path string) ([]NativeMigration, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plugin: %w", err)
	}
	sym, err := p.Lookup(pluginSymbolName)
	if err != nil {
		return nil, fmt.Errorf("lookup %s symbol: %w", pluginSymbolName, err)
	}
	migs, ok := sym.(*[]NativeMigration)
	if !ok {
		return nil, fmt.Errorf("symbol %s has unexpected type %T", pluginSymbolName, sym)
	}
	return *migs, nil
}

func (s PluginNativeSource) logDebug(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Debug(fmt.Sprintf(format, args...))
	}
}

func (s PluginNativeSource) logTrace(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Trace(fmt.Sprintf(format, args...))
	}
}
