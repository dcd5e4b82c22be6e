package object

// ColumnName is a storage table column used as a lookup key.
type ColumnName string

const (
	// ComponentID links a storage row to its component.
	ComponentID ColumnName = "component_id"
)

// String implements fmt.Stringer.
func (c ColumnName) String() string {
	return string(c)
}
