package countyfile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/user/taxsale-crawler/internal/entity"
)

type countiesDocument struct {
	Counties []countyRecord `json:"counties"`
}

type countyRecord struct {
	Name       string `json:"name"`
	TaxSaleURL string `json:"tax_sale_url"`
}

// CountyRepoImpl loads counties from the JSON file on disk.
type CountyRepoImpl struct {
	path string
}

// NewCountyRepo creates a repository reading from path.
func NewCountyRepo(path string) *CountyRepoImpl {
	return &CountyRepoImpl{path: path}
}

// Load reads and decodes the counties file.
func (r *CountyRepoImpl) Load() (*entity.CountyList, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open counties file: %w", err)
	}
	defer f.Close()

	list, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	return list, nil
}

// Decode parses a counties document. Each county is keyed by the first
// whitespace-delimited token of its name; a later entry with the same key
// replaces the earlier one's seed page.
func Decode(rd io.Reader) (*entity.CountyList, error) {
	var doc countiesDocument
	if err := json.NewDecoder(rd).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode counties: %w", err)
	}

	list := entity.NewCountyList()
	for _, c := range doc.Counties {
		list.Put(CountyKey(c.Name), []string{c.TaxSaleURL})
	}
	return list, nil
}

// CountyKey normalizes "Fulton County" to "Fulton".
func CountyKey(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
