package npr

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
)

//go:embed shaders/*.glsl
var builtinShaders embed.FS

// SourceFetcher returns the text of a named program.
type SourceFetcher interface {
	Fetch(name string) (string, error)
}

// FetcherFunc adapts a function to SourceFetcher.
type FetcherFunc func(name string) (string, error)

func (f FetcherFunc) Fetch(name string) (string, error) {
	return f(name)
}

// EmbeddedSources serves the programs compiled into the binary.
func EmbeddedSources() SourceFetcher {
	return FetcherFunc(func(name string) (string, error) {
		data, err := builtinShaders.ReadFile("shaders/" + name + ".glsl")
		if err != nil {
			return "", fmt.Errorf("builtin program %q: %w", name, err)
		}
		return string(data), nil
	})
}

// BuiltinProgramNames lists the programs compiled into the binary.
func BuiltinProgramNames() []string {
	entries, _ := fs.ReadDir(builtinShaders, "shaders")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".glsl"))
	}
	return names
}

// DirSources reads `<name>.glsl` from dir, falling back to an lz4 frame in `<name>.glsl.lz4`.
func DirSources(dir string) SourceFetcher {
	return FetcherFunc(func(name string) (string, error) {
		path := filepath.Join(dir, name+".glsl")
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}

		file, err := os.Open(path + ".lz4")
		if err != nil {
			return "", err
		}
		defer file.Close()
		data, err = io.ReadAll(lz4.NewReader(file))
		if err != nil {
			return "", fmt.Errorf("decompress %s: %w", file.Name(), err)
		}
		return string(data), nil
	})
}

// Overlay tries primary first and uses fallback for programs primary cannot provide.
func Overlay(primary, fallback SourceFetcher) SourceFetcher {
	return FetcherFunc(func(name string) (string, error) {
		src, err := primary.Fetch(name)
		if err == nil {
			return src, nil
		}
		src, ferr := fallback.Fetch(name)
		if ferr != nil {
			return "", errors.Join(err, ferr)
		}
		return src, nil
	})
}

// WriteCompressed writes src as an lz4 frame readable by DirSources.
func WriteCompressed(w io.Writer, src string) error {
	lzw := lz4.NewWriter(w)
	if err := lzw.Apply(lz4.CompressionLevelOption(lz4.Level9)); err != nil {
		return err
	}
	if _, err := io.WriteString(lzw, src); err != nil {
		return err
	}
	return lzw.Close()
}
