package domain

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/light-bringer/changegraph/internal/pkg/changepath"
	"github.com/light-bringer/changegraph/internal/pkg/graph"
)

// Field is a view of one loan member addressed by model path.
type Field struct {
	loan  *Loan
	path  changepath.Path
	owner graph.Entity
	desc  graph.Field
	// virtualID is set for virtual fields, which have no model member.
	virtualID string
}

// Field resolves modelPath, with or without the Loan. prefix. A leading
// CurrentApplication segment addresses CurrentApplication.
func (l *Loan) Field(modelPath string) (*Field, error) {
	if !l.bound {
		return nil, ErrNotInitialized
	}
	p, err := changepath.Parse(strings.TrimSpace(modelPath))
	if err != nil {
		return nil, err
	}
	if len(p) > 1 && strings.EqualFold(p[0].Name, RootName) {
		p = p[1:]
	}

	var root graph.Entity = l
	rel := p
	if strings.EqualFold(p[0].Name, currentApplication) {
		if len(p) == 1 {
			return nil, fmt.Errorf("field %s: %w", modelPath, graph.ErrNotSupported)
		}
		p[0] = changepath.Field(currentApplication)
		root = l.CurrentApplication()
		rel = p[1:]
	}
	owner, desc, err := graph.Resolve(root, rel.String())
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", modelPath, err)
	}
	return &Field{loan: l, path: p, owner: owner, desc: desc}, nil
}

// VirtualField returns the view of the computed field id.
func (l *Loan) VirtualField(id string) (*Field, error) {
	if !l.bound {
		return nil, ErrNotInitialized
	}
	if id == "" {
		return nil, fmt.Errorf("virtual field: empty id: %w", graph.ErrArgumentInvalid)
	}
	return &Field{loan: l, path: changepath.Path{changepath.KeyedBy("VirtualFields", id)}, virtualID: id}, nil
}

// ModelPath is the key used for field locking.
func (f *Field) ModelPath() string {
	return RootName + "." + f.path.String()
}

// AttributePath is the webhook filter form of the path.
func (f *Field) AttributePath() string {
	return f.path.Render(changepath.AttributeFormat)
}

func (f *Field) Virtual() bool {
	return f.virtualID != ""
}

func (f *Field) ReadOnly() bool {
	return f.Virtual() || f.desc.Access() != graph.AccessReadWrite
}

func (f *Field) Value() any {
	if f.Virtual() {
		v, ok := f.loan.virtualFields[f.virtualID]
		if !ok {
			return nil
		}
		return v
	}
	return f.desc.Value(f.owner)
}

// SetValue assigns v, converting strings to the field's type where the
// conversion is lossless.
func (f *Field) SetValue(v any) error {
	if f.Virtual() {
		return fmt.Errorf("set %s: %w", f.virtualID, ErrVirtualField)
	}
	converted, err := convert(f.desc.Value(f.owner), v)
	if err != nil {
		return fmt.Errorf("set %s: %w", f.ModelPath(), err)
	}
	if err := f.desc.SetAny(f.owner, converted); err != nil {
		return fmt.Errorf("set %s: %w", f.ModelPath(), err)
	}
	return nil
}

// Locked reports whether a field lock for the path is in effect.
func (f *Field) Locked() bool {
	if f.Virtual() {
		return false
	}
	locks := f.loan.FieldLocks()
	i := locks.IndexOfID(f.ModelPath())
	if i < 0 {
		return false
	}
	lock, err := locks.Get(i)
	return err == nil && !lock.LockRemoved()
}

// SetLocked adds or updates the field lock for the path.
func (f *Field) SetLocked(locked bool) error {
	if f.Virtual() {
		return fmt.Errorf("lock %s: %w", f.virtualID, ErrVirtualField)
	}
	locks := f.loan.FieldLocks()
	if i := locks.IndexOfID(f.ModelPath()); i >= 0 {
		lock, err := locks.Get(i)
		if err != nil {
			return err
		}
		return lock.SetLockRemoved(!locked)
	}
	if !locked {
		return nil
	}
	locks.Append(NewFieldLock(f.ModelPath()))
	return nil
}

// convert adapts v to the dynamic type of current. Values that already
// match, and types without a conversion, are returned unchanged.
func convert(current, v any) (any, error) {
	if v == nil || current == nil || reflect.TypeOf(v) == reflect.TypeOf(current) {
		return v, nil
	}
	s, isString := v.(string)
	switch current.(type) {
	case *Money:
		switch x := v.(type) {
		case string:
			if x == "" {
				return (*Money)(nil), nil
			}
			return ParseMoney(x)
		case int:
			return MustMoney(int64(x)), nil
		case int64:
			return MustMoney(x), nil
		case float64:
			r := new(big.Rat)
			if r.SetFloat64(x) == nil {
				return nil, fmt.Errorf("%v: %w", x, ErrValueConversion)
			}
			return NewMoneyFromRat(r), nil
		}
	case string:
		if st, ok := v.(fmt.Stringer); ok {
			return st.String(), nil
		}
	case int:
		if isString {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return nil, fmt.Errorf("%q: %w", s, ErrValueConversion)
			}
			return n, nil
		}
	case bool:
		if isString {
			switch strings.ToUpper(strings.TrimSpace(s)) {
			case "Y", "TRUE":
				return true, nil
			case "N", "FALSE", "":
				return false, nil
			}
			return nil, fmt.Errorf("%q: %w", s, ErrValueConversion)
		}
	case time.Time:
		if isString {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", s, ErrValueConversion)
			}
			return t, nil
		}
	}
	return v, nil
}
