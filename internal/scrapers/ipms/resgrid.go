package ipms

import (
	"cursedcompass-backend/internal/components/htmlutil"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/titanous/json5"
)

const defaultResgridVariable = "resgrid"

// FieldMap names the raw record fields each room field is read from,
// earlier names win. The names are reverse engineered from observed responses.
type FieldMap struct {
	Name        []string
	Price       []string
	Inventory   string
	Description string
	Image       string
}

var DefaultFieldMap = FieldMap{
	Name:        []string{"display_name", "roomtype"},
	Price:       []string{"day_base_1", "o_day_base_1"},
	Inventory:   "day_1",
	Description: "webdescription",
	Image:       "roomimg",
}

var defaultResgridRegex = resgridRegex(defaultResgridVariable)

func resgridRegex(variable string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)` + regexp.QuoteMeta(variable) + `\s*=\s*(\[.*?\]);`)
}

// ResgridStrategy reads the room array the booking widget assigns to a script
// variable (`resgrid = [[{...}, ...]];`) to bootstrap its client side rendering.
// The literal is decoded as json5 since keys are not always quoted.
type ResgridStrategy struct {
	IdPrefix string
	// Variable overrides the name of the assigned variable, defaults to "resgrid".
	Variable string
	// Fields overrides DefaultFieldMap.
	Fields *FieldMap
}

func (ResgridStrategy) Name() string {
	return "resgrid"
}

func (s ResgridStrategy) variable() string {
	if s.Variable == "" {
		return defaultResgridVariable
	}
	return s.Variable
}

func (s ResgridStrategy) fields() FieldMap {
	if s.Fields == nil {
		return DefaultFieldMap
	}
	return *s.Fields
}

func (s ResgridStrategy) Extract(doc *goquery.Document) ([]Room, error) {
	variable := s.variable()
	pattern := defaultResgridRegex
	if variable != defaultResgridVariable {
		pattern = resgridRegex(variable)
	}

	var errs []error
	for _, script := range htmlutil.ScriptContents(doc) {
		if !strings.Contains(script, variable) {
			continue
		}
		groups := pattern.FindStringSubmatch(script)
		if len(groups) < 2 {
			continue
		}

		records, err := decodeResgrid(groups[1])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return s.mapRecords(records), nil
	}

	return nil, errors.Join(errs...)
}

// decodeResgrid decodes the array literal, the booking system wraps the room
// list in an extra array so `[[...]]` is unwrapped to its first element.
func decodeResgrid(literal string) ([]any, error) {
	var decoded []any
	err := json5.Unmarshal([]byte(literal), &decoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if len(decoded) > 0 {
		if inner, ok := decoded[0].([]any); ok {
			return inner, nil
		}
	}
	return decoded, nil
}

func (s ResgridStrategy) mapRecords(records []any) []Room {
	fields := s.fields()

	rooms := make([]Room, 0, len(records))
	for i, raw := range records {
		record, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		rooms = append(rooms, mapRecord(record, i+1, s.IdPrefix, fields))
	}
	return rooms
}

// mapRecord normalizes a raw record, `n` is its 1-based position in the array.
func mapRecord(record map[string]any, n int, idPrefix string, fields FieldMap) Room {
	name, ok := firstString(record, fields.Name...)
	if !ok {
		name = fmt.Sprintf("Room %d", n)
	}

	price, _ := firstNonZeroFloat(record, fields.Price...)

	inventory, _ := parseIntLike(record[fields.Inventory])
	inventory = nonNegative(inventory)

	description, _ := stringLike(record[fields.Description])

	images := []string{}
	if image, ok := stringLike(record[fields.Image]); ok {
		images = append(images, image)
	}

	return Room{
		Id:             fmt.Sprintf("%s-%d", idPrefix, n),
		Name:           name,
		Price:          nonNegative(price),
		Available:      inventory > 0,
		Description:    description,
		Amenities:      []string{},
		InventoryCount: &inventory,
		Images:         images,
	}
}
