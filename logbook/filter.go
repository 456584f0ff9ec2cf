package logbook

import "strings"

// Filter narrows a listing. Zero fields do not filter. Date, From and To are
// display dates; From and To are inclusive and may be used alone.
type Filter struct {
	Category Category `json:"category" form:"category"`
	Role     OpRole   `json:"role" form:"role"`
	Date     string   `json:"date" form:"date"`
	From     string   `json:"from" form:"from"`
	To       string   `json:"to" form:"to"`
	Owner    string   `json:"owner" form:"owner"`
}

// Query is a Filter with canonical enums and sort keys, ready for the store.
type Query struct {
	Category Category
	Role     OpRole
	DateKey  string
	FromKey  string
	ToKey    string
	Owner    string
}

// Resolve canonicalizes the filter. Unknown category or role spellings are
// kept verbatim so they match nothing instead of everything.
func (f Filter) Resolve() (Query, error) {
	q := Query{Owner: strings.TrimSpace(f.Owner)}
	if s := strings.TrimSpace(string(f.Category)); s != "" {
		if c, ok := ParseCategory(s); ok {
			q.Category = c
		} else {
			q.Category = Category(s)
		}
	}
	if s := strings.TrimSpace(string(f.Role)); s != "" {
		if r, ok := ParseOpRole(s); ok {
			q.Role = r
		} else {
			q.Role = OpRole(s)
		}
	}

	var err error
	if strings.TrimSpace(f.Date) != "" {
		if q.DateKey, err = ToSortKey(f.Date); err != nil {
			return Query{}, err
		}
	}
	if strings.TrimSpace(f.From) != "" {
		if q.FromKey, err = ToSortKey(f.From); err != nil {
			return Query{}, err
		}
	}
	if strings.TrimSpace(f.To) != "" {
		if q.ToKey, err = ToSortKey(f.To); err != nil {
			return Query{}, err
		}
	}
	return q, nil
}
