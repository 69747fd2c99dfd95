package ipms

import (
	"net/url"
	"strconv"
	"strings"
)

// the booking widget's own calendar format, used for the primary check-in field
const formDateLayout = "01-02-2006"

type FormField struct {
	Name  string
	Value string
}

// FormData is an ordered list of form fields, the order is the order a browser
// submits the booking widget in.
type FormData []FormField

func (f FormData) Get(name string) (string, bool) {
	for _, field := range f {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

// Encode url-encodes the fields in order (application/x-www-form-urlencoded).
func (f FormData) Encode() string {
	var out strings.Builder
	for i, field := range f {
		if i > 0 {
			out.WriteByte('&')
		}
		out.WriteString(url.QueryEscape(field.Name))
		out.WriteByte('=')
		out.WriteString(url.QueryEscape(field.Value))
	}
	return out.String()
}

// BuildFormData translates a request into the fields the rmdetails endpoint expects.
// `propertyCode` is the booking system's numeric hotel id.
//
// note: "ArrvalDt" is misspelled on purpose, the endpoint does not recognize "ArrivalDt".
func BuildFormData(req AvailabilityRequest, propertyCode string) FormData {
	nights := strconv.Itoa(req.Nights())

	return FormData{
		{"checkin", req.CheckIn.Format(formDateLayout)},
		{"gridcolumn", "1"},
		{"adults", strconv.Itoa(req.Guests)},
		{"child", "0"},
		{"nonights", nights},
		{"ShowSelectedNights", "true"},
		{"DefaultSelectedNights", nights},
		{"calendarDateFormat", "mm-dd-yy"},
		{"rooms", "1"},
		{"promotion", ""},
		{"ArrvalDt", req.CheckInString()},
		{"HotelId", propertyCode},
		{"isLogin", "lf"},
		{"selectedLang", ""},
		{"modifysearch", "false"},
		{"promotioncode", ""},
		{"layoutView", "2"},
		{"ShowMinNightsMatchedRatePlan", "false"},
		{"LayoutTheme", "2"},
		{"w_showadult", "false"},
		{"w_showchild_bb", "false"},
		{"ShowMoreLessOpt", ""},
		{"w_showchild", "true"},
		{"ischeckavailabilityclicked", "1"},
	}
}
