// Package wiki fuses per-service design and build Markdown files into
// one searchable bundle per service.
package wiki

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
)

var (
	servicePattern = regexp.MustCompile(`[Ss]ervice:\s*([^\n]+)`)
	apiPattern     = regexp.MustCompile(`[Aa][Pp][Ii]:\s*([^\n]+)`)
	titlePattern   = regexp.MustCompile(`(?m)^#\s+(.+)$`)
)

// Fuser walks a wiki tree and groups Markdown files by service.
type Fuser struct {
	rootDir string
	baseURL string
}

// NewFuser returns a Fuser over rootDir. baseURL prefixes document
// URLs; when empty, URLs stay relative.
func NewFuser(rootDir, baseURL string) *Fuser {
	return &Fuser{rootDir: rootDir, baseURL: baseURL}
}

// Fuse classifies every Markdown file under the root as design and/or
// build documentation, buckets by service, and concatenates each
// service's files into one bundle. Bundles come back sorted by service
// name so repeated runs are stable.
func (f *Fuser) Fuse() ([]domain.WikiBundle, error) {
	if _, err := os.Stat(f.rootDir); err != nil {
		return nil, fmt.Errorf("wiki directory not found: %w", err)
	}

	designs := map[string][]string{}
	builds := map[string][]string{}

	err := filepath.WalkDir(f.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		rel, err := filepath.Rel(f.rootDir, path)
		if err != nil {
			return err
		}
		service := f.serviceName(path, rel)

		// A file matching both substrings lands in both buckets.
		lowerName := strings.ToLower(d.Name())
		lowerRel := strings.ToLower(rel)
		if strings.Contains(lowerName, "design") || strings.Contains(lowerRel, "design") {
			designs[service] = append(designs[service], path)
		}
		if strings.Contains(lowerName, "build") || strings.Contains(lowerRel, "build") {
			builds[service] = append(builds[service], path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking wiki directory: %w", err)
	}

	services := map[string]bool{}
	for s := range designs {
		services[s] = true
	}
	for s := range builds {
		services[s] = true
	}
	names := make([]string, 0, len(services))
	for s := range services {
		names = append(names, s)
	}
	sort.Strings(names)

	bundles := make([]domain.WikiBundle, 0, len(names))
	for _, name := range names {
		bundle, err := f.fuseService(name, designs[name], builds[name])
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, bundle)
	}
	return bundles, nil
}

// serviceName infers the owning service. Files at least one directory
// deep take the first path segment with separators turned into spaces;
// top-level files fall back to content markers, then the H1 title,
// then the filename stem.
func (f *Fuser) serviceName(path, rel string) string {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) > 1 {
		name := strings.ReplaceAll(parts[0], "-", " ")
		return strings.ReplaceAll(name, "_", " ")
	}

	if content, err := os.ReadFile(path); err == nil {
		if m := servicePattern.FindSubmatch(content); m != nil {
			return strings.TrimSpace(string(m[1]))
		}
		if m := apiPattern.FindSubmatch(content); m != nil {
			return strings.TrimSpace(string(m[1]))
		}
		if m := titlePattern.FindSubmatch(content); m != nil {
			return strings.TrimSpace(string(m[1]))
		}
	}

	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (f *Fuser) fuseService(name string, designFiles, buildFiles []string) (domain.WikiBundle, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", name)

	documentURL := ""
	appendSection := func(heading string, files []string) error {
		if len(files) == 0 {
			return nil
		}
		sb.WriteString("## " + heading + "\n\n")
		for _, path := range files {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading wiki file %s: %w", path, err)
			}
			sb.WriteString(stripLeadingTitle(string(content)))
			sb.WriteString("\n\n")
			if documentURL == "" {
				documentURL = f.documentURL(path)
			}
		}
		return nil
	}

	if err := appendSection("Design Documentation", designFiles); err != nil {
		return domain.WikiBundle{}, err
	}
	if err := appendSection("Build Documentation", buildFiles); err != nil {
		return domain.WikiBundle{}, err
	}

	return domain.WikiBundle{
		ServiceName: name,
		DesignFiles: designFiles,
		BuildFiles:  buildFiles,
		Content:     sb.String(),
		DocumentURL: documentURL,
	}, nil
}

// stripLeadingTitle drops the first line when it is an H1; the bundle
// carries its own title.
func stripLeadingTitle(content string) string {
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "# ") {
		lines = lines[1:]
	}
	return strings.Join(lines, "\n")
}

func (f *Fuser) documentURL(path string) string {
	rel, err := filepath.Rel(f.rootDir, path)
	if err != nil {
		rel = path
	}
	slashed := strings.ReplaceAll(filepath.ToSlash(rel), "\\", "/")
	if f.baseURL == "" {
		return slashed
	}
	slashed = strings.TrimSuffix(slashed, ".md")
	if strings.HasSuffix(f.baseURL, "/") {
		return f.baseURL + slashed
	}
	return f.baseURL + "/" + slashed
}
