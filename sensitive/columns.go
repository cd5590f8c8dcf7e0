package sensitive

// CipherSuffix is appended to the snake_case attribute name to form the
// storage column of a sensitive attribute.
const CipherSuffix = "_cipher"

// Column binds a wire attribute to its storage column.
type Column struct {
	Attribute string
	Column    string
	// ReadOnly columns are managed by the database and never written from a
	// wire record. Only used by plaintext columns.
	ReadOnly bool
}

// Columns lists every sensitive player attribute in a fixed order.
var Columns = []Column{
	cipher("firstName", "first_name"),
	cipher("lastName", "last_name"),
	cipher("dob", "dob"),
	cipher("email", "email"),
	cipher("phone", "phone"),
	cipher("address", "address"),
	cipher("guardianName", "guardian_name"),
	cipher("guardianPhone", "guardian_phone"),
	cipher("guardianEmail", "guardian_email"),
	cipher("medicalInfo", "medical_info"),
	cipher("emergencyContact", "emergency_contact"),
	cipher("emergencyPhone", "emergency_phone"),
	cipher("guardianInfo", "guardian_info"),
	cipher("playingHistory", "playing_history"),
	cipher("internalNotes", "internal_notes"),
	cipher("notes", "notes"),
	cipher("currentClub", "current_club"),
	cipher("city", "city"),
	cipher("country", "country"),
}

// PlainColumns lists player attributes stored and transmitted as-is.
var PlainColumns = []Column{
	{Attribute: "id", Column: "id", ReadOnly: true},
	{Attribute: "academyId", Column: "academy_id", ReadOnly: true},
	{Attribute: "position", Column: "position"},
	{Attribute: "heightCm", Column: "height_cm"},
	{Attribute: "weightKg", Column: "weight_kg"},
	{Attribute: "nationality", Column: "nationality"},
	{Attribute: "preferredFoot", Column: "preferred_foot"},
	{Attribute: "jerseyNumber", Column: "jersey_number"},
	{Attribute: "status", Column: "status"},
	{Attribute: "registrationDate", Column: "registration_date"},
	{Attribute: "photoKey", Column: "photo_key", ReadOnly: true},
	{Attribute: "createdAt", Column: "created_at", ReadOnly: true},
	{Attribute: "updatedAt", Column: "updated_at", ReadOnly: true},
}

func cipher(attribute, base string) Column {
	return Column{Attribute: attribute, Column: base + CipherSuffix}
}

var (
	byAttribute      = index(Columns, func(c Column) string { return c.Attribute })
	byColumn         = index(Columns, func(c Column) string { return c.Column })
	plainByAttribute = index(PlainColumns, func(c Column) string { return c.Attribute })
	plainByColumn    = index(PlainColumns, func(c Column) string { return c.Column })
)

func index(cols []Column, key func(Column) string) map[string]Column {
	m := make(map[string]Column, len(cols))
	for _, c := range cols {
		if _, dup := m[key(c)]; dup {
			panic("sensitive: duplicate column mapping " + key(c))
		}
		m[key(c)] = c
	}
	return m
}

// ColumnFor returns the storage column of a sensitive attribute.
func ColumnFor(attribute string) (string, bool) {
	c, ok := byAttribute[attribute]
	return c.Column, ok
}

// AttributeFor returns the sensitive attribute stored in column.
func AttributeFor(column string) (string, bool) {
	c, ok := byColumn[column]
	return c.Attribute, ok
}

// IsSensitive reports whether attribute is stored in a cipher column.
func IsSensitive(attribute string) bool {
	_, ok := byAttribute[attribute]
	return ok
}

// PlainColumnFor returns the plaintext column definition of attribute.
func PlainColumnFor(attribute string) (Column, bool) {
	c, ok := plainByAttribute[attribute]
	return c, ok
}

// IsKnownColumn reports whether column belongs to the player schema.
func IsKnownColumn(column string) bool {
	if _, ok := byColumn[column]; ok {
		return true
	}
	_, ok := plainByColumn[column]
	return ok
}

// StorageColumns returns every player column, plaintext first, in
// declaration order.
func StorageColumns() []string {
	cols := make([]string, 0, len(PlainColumns)+len(Columns))
	for _, c := range PlainColumns {
		cols = append(cols, c.Column)
	}
	for _, c := range Columns {
		cols = append(cols, c.Column)
	}
	return cols
}
