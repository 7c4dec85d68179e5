package catalogfile

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"perk-roulette/internal/domain"
	"perk-roulette/pkg/validator"

	"github.com/sirupsen/logrus"
)

// csvHeader is the column order of CSV catalogs
var csvHeader = []string{"id", "name", "character", "category", "main_effect", "secondary_effect", "additional_effect", "quote", "image"}

// perkRecord struct - one catalog entry as stored on disk
type perkRecord struct {
	ID               string `json:"id" validate:"required,max=64"`
	Title            string `json:"name" validate:"required"`
	Character        string `json:"character"`
	Category         string `json:"category"`
	MainEffect       string `json:"main_effect"`
	SecondaryEffect  string `json:"secondary_effect"`
	AdditionalEffect string `json:"additional_effect"`
	Quote            string `json:"quote"`
	Image            string `json:"image"`
}

func (r perkRecord) toPerk() domain.Perk {
	return domain.Perk{
		ID:        strings.TrimSpace(r.ID),
		Title:     strings.TrimSpace(r.Title),
		Character: r.Character,
		Category:  r.Category,
		Description: domain.PerkDescription{
			MainEffect:       r.MainEffect,
			SecondaryEffect:  r.SecondaryEffect,
			AdditionalEffect: r.AdditionalEffect,
			Quote:            r.Quote,
		},
		ImageRef: r.Image,
	}
}

// Load reads a catalog file, choosing the format by extension (.json or .csv)
func Load(path string) (*domain.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogLoad, err)
	}
	defer f.Close()

	var records []perkRecord
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		records, err = decodeJSON(f)
	case ".csv":
		records, err = decodeCSV(f)
	default:
		err = fmt.Errorf("unsupported catalog format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrCatalogLoad, path, err)
	}

	catalog, err := build(records)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Perk catalog loaded: path=%s, perks=%d", path, catalog.Len())
	return catalog, nil
}

// decodeJSON accepts an array of records or an object keyed by perk id
func decodeJSON(r io.Reader) ([]perkRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var list []perkRecord
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var keyed map[string]perkRecord
	if err := json.Unmarshal(data, &keyed); err != nil {
		return nil, err
	}
	// map order is random, keep the catalog stable by reading keys in file order
	keys, err := objectKeys(data)
	if err != nil {
		return nil, err
	}
	list = make([]perkRecord, 0, len(keys))
	for _, key := range keys {
		record := keyed[key]
		if record.ID == "" {
			record.ID = key
		}
		list = append(list, record)
	}
	return list, nil
}

// objectKeys returns the top-level keys of a JSON object in document order
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	keys := make([]string, 0)
	for dec.More() {
		token, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := token.(string)
		if !ok {
			return nil, errors.New("expected object key")
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func decodeCSV(r io.Reader) ([]perkRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range csvHeader[:2] {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]perkRecord, 0)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, perkRecord{
			ID:               field(row, "id"),
			Title:            field(row, "name"),
			Character:        field(row, "character"),
			Category:         field(row, "category"),
			MainEffect:       field(row, "main_effect"),
			SecondaryEffect:  field(row, "secondary_effect"),
			AdditionalEffect: field(row, "additional_effect"),
			Quote:            field(row, "quote"),
			Image:            field(row, "image"),
		})
	}
	return records, nil
}

func build(records []perkRecord) (*domain.Catalog, error) {
	v := validator.New()
	perks := make([]domain.Perk, 0, len(records))
	for i, record := range records {
		record.ID = strings.TrimSpace(record.ID)
		record.Title = strings.TrimSpace(record.Title)
		if err := v.ValidateStruct(record); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", domain.ErrCatalogLoad, i, err)
		}
		perks = append(perks, record.toPerk())
	}
	return domain.NewCatalog(perks)
}
