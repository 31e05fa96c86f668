package gcal

import "fmt"

// Operation is the kind of work a batch entry performs. The zero value is
// not a valid operation.
type Operation int

const (
	OpInsert Operation = iota + 1
	OpUpdate
	OpDelete
	OpQuery
)

// String returns the wire name of the operation
func (o Operation) String() string {
	name, err := o.wireName()
	if err != nil {
		return fmt.Sprintf("Operation(%d)", int(o))
	}
	return name
}

func (o Operation) wireName() (string, error) {
	switch o {
	case OpInsert:
		return "insert", nil
	case OpUpdate:
		return "update", nil
	case OpDelete:
		return "delete", nil
	case OpQuery:
		return "query", nil
	default:
		return "", fmt.Errorf("%w: %d", ErrInvalidOperation, int(o))
	}
}

// Valid reports whether o is one of the four recognized operations
func (o Operation) Valid() bool {
	_, err := o.wireName()
	return err == nil
}

// needsEditLink reports whether the operation mutates an existing item and
// therefore needs a fresh concurrency token
func (o Operation) needsEditLink() bool {
	switch o {
	case OpUpdate, OpDelete:
		return true
	default:
		return false
	}
}

// ParseOperation maps a wire name back to its Operation
func ParseOperation(s string) (Operation, error) {
	for _, op := range []Operation{OpInsert, OpUpdate, OpDelete, OpQuery} {
		if op.String() == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidOperation, s)
}
