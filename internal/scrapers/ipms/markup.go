package ipms

import (
	"cursedcompass-backend/internal/components/htmlutil"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

const (
	markupRoomSelector        = `.room-item, .roomtype-item, [class*="room"]`
	markupNameSelector        = `.room-name, .roomtype-name, h3, h4`
	markupPriceSelector       = `[class*="price"], .amount`
	markupDescriptionSelector = `.description, .room-desc`
)

// MarkupStrategy guesses rooms from room-like elements when there is no embedded array.
// It cannot see inventory so every room it finds is available with an unknown count.
type MarkupStrategy struct {
	IdPrefix string
}

func (MarkupStrategy) Name() string {
	return "html"
}

func (s MarkupStrategy) Extract(doc *goquery.Document) ([]Room, error) {
	var rooms []Room
	doc.Find(markupRoomSelector).Each(func(_ int, sel *goquery.Selection) {
		name := htmlutil.CleanText(sel.Find(markupNameSelector).First())
		if name == "" {
			return
		}

		priceText := htmlutil.NumericText(sel.Find(markupPriceSelector).First().Text())
		price, _ := parseFloatLike(priceText)

		rooms = append(rooms, Room{
			Id:          fmt.Sprintf("%s-parsed-%d", s.IdPrefix, len(rooms)+1),
			Name:        name,
			Price:       nonNegative(price),
			Available:   true,
			Description: htmlutil.CleanText(sel.Find(markupDescriptionSelector).First()),
			Amenities:   []string{},
			Images:      []string{},
		})
	})
	return rooms, nil
}
