package receipt

import (
	"fmt"
	"strings"
	"sync"
)

// Concept identifies an accounting expense category by type and article.
type Concept struct {
	TypeCode    string `json:"tipoProducto"`
	ArticleCode string `json:"codigoArticulo"`
}

func (c Concept) String() string {
	return c.TypeCode + "/" + c.ArticleCode
}

// IsZero reports whether either code is missing.
func (c Concept) IsZero() bool {
	return c.TypeCode == "" || c.ArticleCode == ""
}

// IsObsolete reports whether c is the retired HONPRO/1 concept, which must
// never be produced.
func (c Concept) IsObsolete() bool {
	return c == obsoleteConcept
}

var (
	obsoleteConcept = Concept{TypeCode: "HONPRO", ArticleCode: "1"}

	// FallbackConcept ("Gastos extras") is used whenever nothing better is known.
	FallbackConcept = Concept{TypeCode: "TARIFA", ArticleCode: "14"}
)

// NormalizeConcept uppercases the type and drops leading zeros from the
// article ("tarifa", "05" -> TARIFA/5).
func NormalizeConcept(typeCode, articleCode string) Concept {
	a := strings.TrimLeft(strings.TrimSpace(articleCode), "0")
	if a == "" && strings.TrimSpace(articleCode) != "" {
		a = "0"
	}
	return Concept{
		TypeCode:    strings.ToUpper(strings.TrimSpace(typeCode)),
		ArticleCode: a,
	}
}

// ConceptEntry is one row of the active accounting concepts.
type ConceptEntry struct {
	TypeCode       string `json:"tipoProducto"`
	ArticleCode    string `json:"codigoArticulo"`
	Description    string `json:"descripcion"`
	UnitOfMeasure  string `json:"unidadMedida"`
	UsageFrequency int    `json:"frecuencia"`
	SpecialConcept string `json:"conceptoEspecial"`
}

// Concept returns the entry's key.
func (e ConceptEntry) Concept() Concept {
	return Concept{TypeCode: e.TypeCode, ArticleCode: e.ArticleCode}
}

// Catalog is an immutable set of concept entries keyed by (type, article).
// It is safe for concurrent use.
type Catalog struct {
	entries []ConceptEntry
	index   map[Concept]int
	types   []string
}

// NewCatalog validates and indexes entries, keeping their order. The
// obsolete HONPRO/1 concept is silently dropped; duplicate keys and rows
// without codes are rejected.
func NewCatalog(entries []ConceptEntry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]ConceptEntry, 0, len(entries)),
		index:   make(map[Concept]int, len(entries)),
	}
	seenType := make(map[string]bool)
	for i, e := range entries {
		key := NormalizeConcept(e.TypeCode, e.ArticleCode)
		if key.IsZero() {
			return nil, fmt.Errorf("concept entry %d: type and article codes are required", i)
		}
		if key.IsObsolete() {
			continue
		}
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("concept entry %d: duplicate concept %s", i, key)
		}
		e.TypeCode, e.ArticleCode = key.TypeCode, key.ArticleCode
		c.index[key] = len(c.entries)
		c.entries = append(c.entries, e)
		if !seenType[key.TypeCode] {
			seenType[key.TypeCode] = true
			c.types = append(c.types, key.TypeCode)
		}
	}
	return c, nil
}

// Lookup finds the entry for a concept.
func (c *Catalog) Lookup(concept Concept) (ConceptEntry, bool) {
	if c == nil {
		return ConceptEntry{}, false
	}
	i, ok := c.index[NormalizeConcept(concept.TypeCode, concept.ArticleCode)]
	if !ok {
		return ConceptEntry{}, false
	}
	return c.entries[i], true
}

// Contains reports whether the concept is active.
func (c *Catalog) Contains(concept Concept) bool {
	_, ok := c.Lookup(concept)
	return ok
}

// All returns a copy of every entry in catalog order.
func (c *Catalog) All() []ConceptEntry {
	if c == nil {
		return nil
	}
	return append([]ConceptEntry(nil), c.entries...)
}

// ByType returns the entries of one type code, compared case-insensitively.
func (c *Catalog) ByType(typeCode string) []ConceptEntry {
	if c == nil {
		return nil
	}
	want := strings.ToUpper(strings.TrimSpace(typeCode))
	out := make([]ConceptEntry, 0)
	for _, e := range c.entries {
		if e.TypeCode == want {
			out = append(out, e)
		}
	}
	return out
}

// Types returns the distinct type codes in first-seen order.
func (c *Catalog) Types() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.types...)
}

// Len returns the number of active concepts.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// DefaultCatalog returns the bundled active-concepts table, ordered by type
// and then by historical usage.
var DefaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := NewCatalog(defaultConceptEntries)
	if err != nil {
		panic(fmt.Sprintf("receipt: invalid default catalog: %v", err))
	}
	return c
})

var defaultConceptEntries = []ConceptEntry{
	{"TARIFA", "2", "Entrada / Salida (Migraciones)", "UN", 5569, ""},
	{"TARIFA", "5", "Peaje Argentino", "UN", 4662, ""},
	{"TARIFA", "10", "Desinfección", "UN", 3434, ""},
	{"TARIFA", "21", "Gastos en Frontera", "UN", 2574, "VT-V001"},
	{"TARIFA", "1", "Tunel Inter. Ruta Nac 7 Camión", "UN", 1843, ""},
	{"TARIFA", "14", "Gastos extras (Caja Camión)", "UN", 245, ""},
	{"TARIFA", "12", "Viaticos Chofer", "UN", 120, ""},
	{"TARIFA", "3", "Entrada / Salida (Aduana)", "UN", 77, ""},
	{"TARIFA", "7", "Iscamen - Control Sanitario", "UN", 41, ""},
	{"TARIFA", "8", "Sellados", "UN", 22, "VT-V000"},
	{"TARIFA", "4", "Peaje Chileno", "UN", 20, ""},
	{"TARIFA", "6", "Peaje Uruguayo", "UN", 5, ""},
	{"TARIFA", "13", "Estacionamiento / Aparcadero", "UN", 5, ""},
	{"TARIFA", "11", "Senasa", "UN", 2, ""},
	{"HONPRO", "6", "Honorarios Profesionales", "UN", 478, ""},
	{"HONPRO", "4", "ATA - Agente de Transporte Aduanero", "UN", 224, ""},
	{"HONPRO", "2", "Gestiones Aduaneras", "UN", 12, ""},
	{"HONPRO", "5", "Alquiler Predio Docwell", "UN", 2, ""},
	{"HONPRO", "3", "Servicios Aduaneros", "UN", 1, ""},
	{"NEUMAT", "3", "Pinchadura y Rotación", "UN", 157, ""},
	{"NEUMAT", "1", "Pinchadura", "UN", 37, ""},
	{"NEUMAT", "2", "Rotación", "UN", 30, ""},
	{"COMBLU", "3", "Urea 32% Adblue", "LT", 1, ""},
	{"COMBLU", "9", "Aceite Hidraulico Dexron II", "LT", 1, ""},
	{"SERVIC", "3", "Falso Flete", "UN", 2, "VT-V000"},
}
