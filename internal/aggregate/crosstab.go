package aggregate

// Contribution adds weight to the (entity, category) cell of a cross-tab.
type Contribution struct {
	Entity   string
	Category string
	Weight   float64
}

// CrossRow is one entity of a cross-tab. Values holds every category of the
// table, zero when the entity had no contribution.
type CrossRow struct {
	Entity string             `json:"entity"`
	Values map[string]float64 `json:"values"`
	Total  float64            `json:"total"`
}

// CrossTable is an entity x category matrix. Entities and Categories are in
// first-seen order.
type CrossTable struct {
	Categories []string   `json:"categories"`
	Rows       []CrossRow `json:"rows"`
}

// CrossTab accumulates contributions into a table. Entity and category
// labels are grouped the same way GroupCount groups categories.
func CrossTab(contribs []Contribution) CrossTable {
	entities, categories := newGrouper(), newGrouper()
	var cells []map[int]float64
	for _, c := range contribs {
		e := entities.slot(c.Entity)
		k := categories.slot(c.Category)
		if e == len(cells) {
			cells = append(cells, make(map[int]float64))
		}
		cells[e][k] += c.Weight
	}

	table := CrossTable{
		Categories: append([]string{}, categories.display...),
		Rows:       make([]CrossRow, entities.len()),
	}
	for e := range table.Rows {
		row := CrossRow{Entity: entities.display[e], Values: make(map[string]float64, categories.len())}
		for k, name := range categories.display {
			v := cells[e][k]
			row.Values[name] = v
			row.Total += v
		}
		table.Rows[e] = row
	}
	return table
}
