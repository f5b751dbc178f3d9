package assets

import (
	"bufio"
	"embed"
	"io"
	"path"
	"strings"
)

//go:embed layouts/*.txt
var FS embed.FS

// ReadLines returns the trimmed, non-empty, non-comment lines of r.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// LayoutLines reads the embedded layout called name.
func LayoutLines(name string) ([]string, error) {
	f, err := FS.Open(path.Join("layouts", name+".txt"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f)
}

// LayoutNames lists the embedded layouts without their extension.
func LayoutNames() ([]string, error) {
	entries, err := FS.ReadDir("layouts")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".txt"))
	}
	return names, nil
}
