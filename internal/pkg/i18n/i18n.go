package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var embedded embed.FS

const DefaultLocale = "en"

type Translations map[string]string

// Catalog holds notification message templates per locale. Templates are
// fmt format strings.
type Catalog struct {
	mu      sync.RWMutex
	locales map[string]Translations
}

// Default returns a catalog loaded from the embedded locales.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads <locale>/messages.yaml for every locale directory in fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	c := &Catalog{locales: make(map[string]Translations)}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		locale := entry.Name()
		filePath := path.Join(locale, "messages.yaml")

		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			continue
		}

		var doc struct {
			Messages Translations `yaml:"MESSAGES"`
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
		}
		c.locales[locale] = doc.Messages
	}

	return c, nil
}

// Translate falls back to the default locale, then to the key itself.
func (c *Catalog) Translate(locale, key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if trans, ok := c.locales[locale]; ok {
		if val, ok := trans[key]; ok {
			return val
		}
	}

	if locale != DefaultLocale {
		if trans, ok := c.locales[DefaultLocale]; ok {
			if val, ok := trans[key]; ok {
				return val
			}
		}
	}

	return key
}

func (c *Catalog) Format(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(c.Translate(locale, key), args...)
}
