package frame

// Profile holds cheap structural facts about a frame, derived once per run
// and shared by every analyzer that needs them.
type Profile struct {
	Rows               int      `json:"rows"`
	Columns            int      `json:"columns"`
	NumericColumns     []string `json:"numeric_columns"`
	CategoricalColumns []string `json:"categorical_columns"`
	ColumnNames        []string `json:"column_names"`
}

// BuildProfile partitions columns by storage type and counts rows and columns.
func BuildProfile(f *Frame) *Profile {
	p := &Profile{
		Rows:               f.Rows(),
		Columns:            f.Width(),
		NumericColumns:     []string{},
		CategoricalColumns: []string{},
		ColumnNames:        f.Names(),
	}
	for _, col := range f.Columns() {
		if col.IsNumeric() {
			p.NumericColumns = append(p.NumericColumns, col.Name)
		} else {
			p.CategoricalColumns = append(p.CategoricalColumns, col.Name)
		}
	}
	return p
}
