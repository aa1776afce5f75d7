package listing

// Plan is the pagination arithmetic for one collection run.
type Plan struct {
	Total          int
	PageSize       int
	EffectiveLimit int
	// Remainder is the size of the last page. It equals PageSize when the
	// effective limit divides evenly.
	Remainder int
	NumPages  int
}

// Page is one request in a Plan.
type Page struct {
	Number int
	// Start is the 1-based offset of the first item on the page.
	Start int
	// Count is the number of items requested from the page.
	Count int
	Last  bool
}

// NewPlan computes the pagination for a listing of total items. A limit
// below 1, or above total, means the whole listing.
func NewPlan(total, pageSize, limit int) Plan {
	effective := limit
	if limit < 1 || total < limit {
		effective = total
	}

	p := Plan{
		Total:          total,
		PageSize:       pageSize,
		EffectiveLimit: effective,
	}
	if pageSize < 1 || effective < 1 {
		return p
	}

	p.Remainder = effective % pageSize
	if p.Remainder == 0 {
		p.Remainder = pageSize
	}
	p.NumPages = (effective + pageSize - 1) / pageSize
	return p
}

// Pages lists the requests in order.
func (p Plan) Pages() []Page {
	pages := make([]Page, 0, p.NumPages)
	for i := 1; i <= p.NumPages; i++ {
		page := Page{
			Number: i,
			Start:  (i-1)*p.PageSize + 1,
			Count:  p.PageSize,
			Last:   i == p.NumPages,
		}
		if page.Last {
			page.Count = p.Remainder
		}
		pages = append(pages, page)
	}
	return pages
}

// End is the 1-based offset of the last item expected on the page.
func (p Plan) End(page Page) int {
	if page.Last {
		return p.EffectiveLimit
	}
	return page.Number * p.PageSize
}
