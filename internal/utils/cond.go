package querybuilder

// CondType joins a condition to the one before it
type CondType int

const (
	CondTypeAnd CondType = iota + 1
	CondTypeOr
)

func (c CondType) String() string {
	switch c {
	case CondTypeAnd:
		return "AND"
	case CondTypeOr:
		return "OR"
	default:
		return ""
	}
}

// Condition is one WHERE term, or a parenthesised group of terms when nested
// is set. An empty group renders as TRUE.
type Condition struct {
	joiner CondType
	clause string
	args   []interface{}
	group  []Condition
	nested bool
}

func (c Condition) render() (string, []interface{}) {
	if !c.nested {
		return c.clause, c.args
	}
	if len(c.group) == 0 {
		return "TRUE", nil
	}
	clause, args := buildCondition(c.group)
	return "(" + clause + ")", args
}
