package refgraph

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ============================================================
// Test records
// ============================================================

type selfRef struct {
	A    int      `refgraph:"a"`
	B    int      `refgraph:"b"`
	Self *selfRef `refgraph:"self"`
}

type box struct {
	X int `refgraph:"x"`
}

type holder struct {
	Child *box `refgraph:"child"`
	Alias *box `refgraph:"alias"`
}

type node struct {
	Val  int
	Next *node
}

type parent struct {
	Name  string
	Child *child
}

type child struct {
	Name   string
	Parent *parent
}

type allKinds struct {
	Flag bool
	I    int
	I8   int8
	I16  int16
	I32  int32
	I64  int64
	U    uint
	U8   uint8
	U16  uint16
	U32  uint32
	U64  uint64
	F32  float32
	F64  float64
	S    string
	OptI *int
	OptS *string
	Next *allKinds
}

type linkPtr *link

type link struct {
	Val  int
	Self linkPtr
}

type empty struct{}

type emptyPair struct {
	A *empty
	B *empty
}

type withHidden struct {
	Name   string
	secret int
}

func ptr[T any](v T) *T { return &v }

// ============================================================
// Encode
// ============================================================

func TestEncode_SelfReference(t *testing.T) {
	v := &selfRef{A: 1, B: 2}
	v.Self = v

	got, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := "{a:1,b:2,self:~0~}"; got != want {
		t.Errorf("Marshal = %q, want %q", got, want)
	}
}

func TestEncode_SharedChild(t *testing.T) {
	c := &box{X: 5}
	got, err := Marshal(&holder{Child: c, Alias: c})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := "{child:{x:5},alias:~1~}"; got != want {
		t.Errorf("Marshal = %q, want %q", got, want)
	}
}

func TestEncode_AllKinds(t *testing.T) {
	v := &allKinds{
		Flag: true, I: -1, I8: -8, I16: 16, I32: -32, I64: 1 << 40,
		U: 1, U8: 255, U16: 65535, U32: 7, U64: 1 << 63,
		F32: 1.5, F64: 0.1, S: "hi, {there}",
	}
	got, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{Flag:true,I:-1,I8:-8,I16:16,I32:-32,I64:1099511627776,` +
		`U:1,U8:255,U16:65535,U32:7,U64:9223372036854775808,` +
		`F32:1.5,F64:0.1,S:"hi, {there}"}`
	if got != want {
		t.Errorf("Marshal =\n%s\nwant\n%s", got, want)
	}
}

func TestEncode_AbsentFieldsOmitted(t *testing.T) {
	got, err := Marshal(&allKinds{OptI: ptr(0), OptS: ptr("")})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "OptI:0") || !strings.Contains(got, `OptS:""`) {
		t.Errorf("present optional fields missing: %s", got)
	}
	if strings.Contains(got, "Next") {
		t.Errorf("nil record field encoded: %s", got)
	}

	got, err = Marshal(&allKinds{})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"OptI", "OptS", "Next"} {
		if strings.Contains(got, name+":") {
			t.Errorf("absent field %s encoded: %s", name, got)
		}
	}
}

func TestEncode_Cycle(t *testing.T) {
	a := &node{Val: 1}
	b := &node{Val: 2}
	c := &node{Val: 3}
	a.Next, b.Next, c.Next = b, c, a

	got, err := Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := "{Val:1,Next:{Val:2,Next:{Val:3,Next:~0~}}}"; got != want {
		t.Errorf("Marshal = %q, want %q", got, want)
	}
}

func TestEncode_SkipsInaccessible(t *testing.T) {
	got, err := Marshal(&withHidden{Name: "x", secret: 7})
	if err != nil {
		t.Fatal(err)
	}
	if want := `{Name:"x"}`; got != want {
		t.Errorf("Marshal = %q, want %q", got, want)
	}
}

func TestEncode_Errors(t *testing.T) {
	c := New()

	t.Run("type mismatch", func(t *testing.T) {
		_, err := c.Encode(&box{}, TypeOf[node]())
		var tme *TypeMismatchError
		if !errors.As(err, &tme) {
			t.Fatalf("error = %v, want *TypeMismatchError", err)
		}
		if tme.Declared != TypeOf[node]() || tme.Actual != reflect.TypeOf((**box)(nil)).Elem() {
			t.Errorf("got declared %v actual %v", tme.Declared, tme.Actual)
		}
	})

	t.Run("value not pointer", func(t *testing.T) {
		_, err := c.Encode(box{}, TypeOf[box]())
		var tme *TypeMismatchError
		if !errors.As(err, &tme) {
			t.Fatalf("error = %v, want *TypeMismatchError", err)
		}
	})

	t.Run("declared as pointer", func(t *testing.T) {
		got, err := c.Encode(&box{X: 1}, reflect.TypeOf((**box)(nil)).Elem())
		if err != nil || got != "{x:1}" {
			t.Errorf("Encode = %q, %v", got, err)
		}
	})

	t.Run("nil record", func(t *testing.T) {
		_, err := c.Encode((*box)(nil), TypeOf[box]())
		if !errors.Is(err, ErrNilRecord) {
			t.Errorf("error = %v, want ErrNilRecord", err)
		}
	})

	t.Run("reserved rune", func(t *testing.T) {
		inner := &parent{Name: "p", Child: &child{Name: "bad \uE000"}}
		_, err := c.Encode(inner, TypeOf[parent]())
		var rre *ReservedRuneError
		if !errors.As(err, &rre) {
			t.Fatalf("error = %v, want *ReservedRuneError", err)
		}
		if !strings.Contains(err.Error(), "parent.Child: child.Name:") {
			t.Errorf("error %q lacks field path", err)
		}
	})

	t.Run("unsupported nested type", func(t *testing.T) {
		type bad struct{ Items []int }
		type outer struct{ B *bad }
		_, err := c.Encode(&outer{B: &bad{}}, TypeOf[outer]())
		var se *SchemaError
		if !errors.As(err, &se) {
			t.Fatalf("error = %v, want *SchemaError", err)
		}
	})
}

func TestEncode_MaxDepth(t *testing.T) {
	var head *node
	for i := 0; i < 5; i++ {
		head = &node{Val: i, Next: head}
	}
	c := New(WithMaxDepth(3))
	if _, err := c.Encode(head, TypeOf[node]()); !errors.Is(err, ErrTooDeep) {
		t.Errorf("Encode error = %v, want ErrTooDeep", err)
	}
	if _, err := New(WithMaxDepth(5)).Encode(head, TypeOf[node]()); err != nil {
		t.Errorf("Encode with enough depth: %v", err)
	}
}

func TestCodec_MaxDepthFallback(t *testing.T) {
	for _, depth := range []int{0, -1} {
		c := New(WithMaxDepth(depth))
		if c.maxDepth != DefaultMaxDepth {
			t.Errorf("WithMaxDepth(%d): maxDepth = %d, want %d", depth, c.maxDepth, DefaultMaxDepth)
		}
		if _, err := c.Encode(&node{Val: 1}, TypeOf[node]()); err != nil {
			t.Errorf("WithMaxDepth(%d): Encode: %v", depth, err)
		}
	}
}

func TestEncode_NamedPointerCycle(t *testing.T) {
	l := &link{Val: 1}
	l.Self = l

	text, err := Marshal(l)
	if err != nil {
		t.Fatal(err)
	}
	if want := "{Val:1,Self:~0~}"; text != want {
		t.Errorf("Marshal = %q, want %q", text, want)
	}

	got, err := Unmarshal[link](text)
	if err != nil {
		t.Fatal(err)
	}
	if (*link)(got.Self) != got {
		t.Error("decoded Self is not the root")
	}
}

// A shared zero-sized record is a back-reference like any other.
func TestEncode_SharedZeroSizedRecord(t *testing.T) {
	e := &empty{}
	text, err := Marshal(&emptyPair{A: e, B: e})
	if err != nil {
		t.Fatal(err)
	}
	if want := "{A:{},B:~1~}"; text != want {
		t.Errorf("Marshal = %q, want %q", text, want)
	}
}

// ============================================================
// Decode
// ============================================================

func TestDecode_SelfReference(t *testing.T) {
	v, err := Unmarshal[selfRef]("{a:1,b:2,self:~0~}")
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v.A != 1 || v.B != 2 {
		t.Errorf("got a=%d b=%d, want 1 2", v.A, v.B)
	}
	if v.Self != v {
		t.Error("self does not point at the record itself")
	}
}

func TestDecode_SharedChild(t *testing.T) {
	v, err := Unmarshal[holder]("{child:{x:5},alias:~1~}")
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v.Child == nil || v.Child.X != 5 {
		t.Fatalf("child = %+v, want x=5", v.Child)
	}
	if v.Alias != v.Child {
		t.Error("alias is not the same instance as child")
	}
}

func TestDecode_FieldOrderAndDuplicates(t *testing.T) {
	v, err := Unmarshal[selfRef]("{b:2,a:1,a:3}")
	if err != nil {
		t.Fatal(err)
	}
	if v.A != 3 || v.B != 2 || v.Self != nil {
		t.Errorf("got %+v, want a=3 b=2 self=nil", v)
	}
}

func TestDecode_Empty(t *testing.T) {
	v, err := Unmarshal[allKinds]("{}")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&allKinds{}, v); diff != "" {
		t.Errorf("empty record mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Errors(t *testing.T) {
	c := New()

	tests := []struct {
		name  string
		text  string
		typ   reflect.Type
		check func(t *testing.T, err error)
	}{
		{
			name: "no default constructor",
			text: "{}",
			typ:  reflect.TypeOf((*int)(nil)).Elem(),
			check: func(t *testing.T, err error) {
				var e *NoDefaultConstructorError
				if !errors.As(err, &e) {
					t.Fatalf("error = %v, want *NoDefaultConstructorError", err)
				}
			},
		},
		{
			name: "unknown field",
			text: "{a:1,zzz:2}",
			typ:  TypeOf[selfRef](),
			check: func(t *testing.T, err error) {
				var e *UnknownFieldError
				if !errors.As(err, &e) {
					t.Fatalf("error = %v, want *UnknownFieldError", err)
				}
				if e.Name != "zzz" || e.Type != TypeOf[selfRef]() {
					t.Errorf("got name %q type %v", e.Name, e.Type)
				}
			},
		},
		{
			name: "unknown nested field",
			text: "{child:{y:1}}",
			typ:  TypeOf[holder](),
			check: func(t *testing.T, err error) {
				var e *UnknownFieldError
				if !errors.As(err, &e) {
					t.Fatalf("error = %v, want *UnknownFieldError", err)
				}
				if e.Type != TypeOf[box]() {
					t.Errorf("type = %v, want box", e.Type)
				}
			},
		},
		{
			name: "leaf format",
			text: "{a:one}",
			typ:  TypeOf[selfRef](),
			check: func(t *testing.T, err error) {
				var e *LeafFormatError
				if !errors.As(err, &e) {
					t.Fatalf("error = %v, want *LeafFormatError", err)
				}
				if e.Kind != KindInt || e.Text != "one" {
					t.Errorf("got kind %s text %q", e.Kind, e.Text)
				}
			},
		},
		{
			name: "back-reference on leaf",
			text: "{a:~0~}",
			typ:  TypeOf[selfRef](),
			check: func(t *testing.T, err error) {
				var e *LeafFormatError
				if !errors.As(err, &e) {
					t.Fatalf("error = %v, want *LeafFormatError", err)
				}
			},
		},
		{
			name: "dangling back-reference",
			text: "{self:~4~}",
			typ:  TypeOf[selfRef](),
			check: func(t *testing.T, err error) {
				var e *ReferenceError
				if !errors.As(err, &e) || e.Index != 4 {
					t.Fatalf("error = %v, want *ReferenceError for ~4~", err)
				}
			},
		},
		{
			name: "back-reference of wrong type",
			text: `{Name:"p",Child:{Name:"c",Parent:~1~}}`,
			typ:  TypeOf[parent](),
			check: func(t *testing.T, err error) {
				var re *ReferenceError
				if !errors.As(err, &re) {
					t.Fatalf("error = %v, want *ReferenceError", err)
				}
				var tme *TypeMismatchError
				if !errors.As(err, &tme) || tme.Actual != TypeOf[child]() {
					t.Errorf("error = %v, want wrapped *TypeMismatchError", err)
				}
			},
		},
		{
			name: "malformed back-reference",
			text: "{self:~x~}",
			typ:  TypeOf[selfRef](),
			check: func(t *testing.T, err error) {
				var e *SyntaxError
				if !errors.As(err, &e) {
					t.Fatalf("error = %v, want *SyntaxError", err)
				}
			},
		},
		{
			name: "signed back-reference",
			text: "{self:~+0~}",
			typ:  TypeOf[selfRef](),
			check: func(t *testing.T, err error) {
				var e *SyntaxError
				if !errors.As(err, &e) || e.Offset != 6 {
					t.Fatalf("error = %v, want *SyntaxError at 6", err)
				}
			},
		},
		{
			name: "missing frame",
			text: "a:1",
			typ:  TypeOf[selfRef](),
			check: func(t *testing.T, err error) {
				var e *SyntaxError
				if !errors.As(err, &e) || e.Offset != 0 {
					t.Fatalf("error = %v, want *SyntaxError at 0", err)
				}
			},
		},
		{
			name: "nested record not framed",
			text: "{a:1,self:5}",
			typ:  TypeOf[selfRef](),
			check: func(t *testing.T, err error) {
				var e *SyntaxError
				if !errors.As(err, &e) || e.Offset != 10 {
					t.Fatalf("error = %v, want *SyntaxError at 10", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := c.Decode(tt.text, tt.typ)
			if err == nil {
				t.Fatalf("Decode(%q) = %+v, want error", tt.text, v)
			}
			if v != nil {
				t.Errorf("Decode returned partial value %+v", v)
			}
			tt.check(t, err)
		})
	}
}

func TestDecode_InaccessibleField(t *testing.T) {
	text := `{Name:"x",secret:5}`

	res, err := New().DecodeWithReport(text, TypeOf[withHidden]())
	if err != nil {
		t.Fatalf("lenient decode: %v", err)
	}
	v := res.Value.(*withHidden)
	if v.Name != "x" || v.secret != 0 {
		t.Errorf("got %+v, want Name=x secret=0", v)
	}
	if !res.HasWarnings() || res.Warnings[0].Field != "secret" || res.Warnings[0].Op != AccessWrite {
		t.Errorf("warnings = %v, want one write warning for secret", res.Warnings)
	}

	_, err = New(WithStrictAccess()).Decode(text, TypeOf[withHidden]())
	var fae *FieldAccessError
	if !errors.As(err, &fae) {
		t.Fatalf("strict decode error = %v, want *FieldAccessError", err)
	}
}

func TestDecode_MaxDepth(t *testing.T) {
	text := "{Val:0,Next:{Val:1,Next:{Val:2,Next:{Val:3}}}}"
	if _, err := New(WithMaxDepth(3)).Decode(text, TypeOf[node]()); !errors.Is(err, ErrTooDeep) {
		t.Errorf("Decode error = %v, want ErrTooDeep", err)
	}
	if _, err := New(WithMaxDepth(4)).Decode(text, TypeOf[node]()); err != nil {
		t.Errorf("Decode with enough depth: %v", err)
	}
}

// ============================================================
// Round trips
// ============================================================

func TestRoundTrip_Acyclic(t *testing.T) {
	tests := []*allKinds{
		{},
		{Flag: true, I: -7, S: `he said "no", twice`},
		{
			I8: -128, I16: -32768, I32: -2147483648, I64: -9223372036854775808,
			U8: 255, U16: 65535, U32: 4294967295, U64: 18446744073709551615,
			F32: 3.4028235e38, F64: 2.2250738585072014e-308,
			OptI: ptr(0), OptS: ptr(`"`),
		},
		{
			S:    "root",
			Next: &allKinds{S: "mid", OptI: ptr(2), Next: &allKinds{S: "leaf {,}"}},
		},
	}

	for i, in := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			text, err := Marshal(in)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			out, err := Unmarshal[allKinds](text)
			if err != nil {
				t.Fatalf("Unmarshal(%q): %v", text, err)
			}
			if diff := cmp.Diff(in, out); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}

			again, err := Marshal(out)
			if err != nil {
				t.Fatal(err)
			}
			if again != text {
				t.Errorf("re-encode = %q, want %q", again, text)
			}
		})
	}
}

func TestRoundTrip_Cycle(t *testing.T) {
	a := &node{Val: 1}
	b := &node{Val: 2}
	c := &node{Val: 3}
	a.Next, b.Next, c.Next = b, c, a

	text, err := Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	x, err := Unmarshal[node](text)
	if err != nil {
		t.Fatal(err)
	}
	if x.Next.Next.Next != x {
		t.Error("x.Next.Next.Next != x")
	}
	if x.Val != 1 || x.Next.Val != 2 || x.Next.Next.Val != 3 {
		t.Errorf("values = %d %d %d, want 1 2 3", x.Val, x.Next.Val, x.Next.Next.Val)
	}
}

func TestRoundTrip_MutualReference(t *testing.T) {
	p := &parent{Name: "p"}
	p.Child = &child{Name: "c", Parent: p}

	text, err := Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{Name:"p",Child:{Name:"c",Parent:~0~}}`; text != want {
		t.Errorf("Marshal = %q, want %q", text, want)
	}

	got, err := Unmarshal[parent](text)
	if err != nil {
		t.Fatal(err)
	}
	if got.Child.Parent != got {
		t.Error("child.Parent does not point back at the parent")
	}
}

func TestRoundTrip_SharedDiamond(t *testing.T) {
	// root -> left -> shared, root -> right -> shared
	type diamondLeaf struct{ N int }
	type diamondMid struct{ Leaf *diamondLeaf }
	type diamondRoot struct{ Left, Right *diamondMid }

	shared := &diamondLeaf{N: 9}
	root := &diamondRoot{Left: &diamondMid{Leaf: shared}, Right: &diamondMid{Leaf: shared}}

	text, err := Marshal(root)
	if err != nil {
		t.Fatal(err)
	}
	if want := "{Left:{Leaf:{N:9}},Right:{Leaf:~2~}}"; text != want {
		t.Errorf("Marshal = %q, want %q", text, want)
	}

	got, err := Unmarshal[diamondRoot](text)
	if err != nil {
		t.Fatal(err)
	}
	if got.Left == got.Right {
		t.Error("distinct mids decoded as one instance")
	}
	if got.Left.Leaf != got.Right.Leaf {
		t.Error("shared leaf decoded as two instances")
	}
}

func TestRoundTrip_TextEscaping(t *testing.T) {
	inputs := []string{`"`, `""`, `a"b"c`, `{"k":"v"}`, `x,"y",z`, `~0~`, `"}`}
	for _, s := range inputs {
		text, err := Marshal(&parent{Name: s})
		if err != nil {
			t.Fatalf("Marshal(%q): %v", s, err)
		}
		got, err := Unmarshal[parent](text)
		if err != nil {
			t.Fatalf("Unmarshal(%q): %v", text, err)
		}
		if got.Name != s {
			t.Errorf("round trip of %q gave %q", s, got.Name)
		}
	}
}

func TestRoundTrip_TextInNestedRecords(t *testing.T) {
	p := &parent{Name: `p{"`, Child: &child{Name: `c}",`}}
	p.Child.Parent = p
	text, err := Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal[parent](text)
	if err != nil {
		t.Fatalf("Unmarshal(%q): %v", text, err)
	}
	if got.Name != p.Name || got.Child.Name != p.Child.Name || got.Child.Parent != got {
		t.Errorf("got %+v / %+v", got, got.Child)
	}
}

// ============================================================
// Reference table and concurrency
// ============================================================

func TestRefTable(t *testing.T) {
	refs := newRefTable()
	a, b := &node{}, &node{}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)

	if pos := refs.register(va); pos != 0 {
		t.Errorf("register(a) = %d, want 0", pos)
	}
	if pos := refs.register(vb); pos != 1 {
		t.Errorf("register(b) = %d, want 1", pos)
	}
	if pos := refs.register(va); pos != 0 {
		t.Errorf("re-register(a) = %d, want 0", pos)
	}
	if refs.len() != 2 {
		t.Errorf("len = %d, want 2", refs.len())
	}
	if pos, ok := refs.lookup(reflect.ValueOf(&node{})); ok {
		t.Errorf("lookup of equal but distinct instance found position %d", pos)
	}
	if got, ok := refs.at(1); !ok || got.Interface() != b {
		t.Error("at(1) is not b")
	}
	if _, ok := refs.at(2); ok {
		t.Error("at(2) should be out of range")
	}
	if pos, ok := refs.lookup(reflect.ValueOf(linkPtr(&link{}))); ok {
		t.Errorf("lookup of unregistered link found position %d", pos)
	}
	l := &link{}
	refs.register(reflect.ValueOf(l))
	if pos, ok := refs.lookup(reflect.ValueOf(linkPtr(l))); !ok || pos != 2 {
		t.Errorf("lookup through named pointer = %d, %v; want 2, true", pos, ok)
	}
}

func TestEncode_EqualButDistinctRecords(t *testing.T) {
	text, err := Marshal(&holder{Child: &box{X: 1}, Alias: &box{X: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if want := "{child:{x:1},alias:{x:1}}"; text != want {
		t.Errorf("Marshal = %q, want %q", text, want)
	}
}

func TestCodec_IndependentCalls(t *testing.T) {
	c := New()
	v := &selfRef{A: 1}
	v.Self = v

	first, err := c.Encode(v, TypeOf[selfRef]())
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Encode(v, TypeOf[selfRef]())
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("second call saw state from the first: %q vs %q", first, second)
	}
}

func TestCodec_Concurrent(t *testing.T) {
	c := New()
	a := &node{Val: 1}
	a.Next = &node{Val: 2, Next: a}
	want, err := c.Encode(a, TypeOf[node]())
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.Encode(a, TypeOf[node]())
			if err != nil {
				errs <- err
				return
			}
			if got != want {
				errs <- fmt.Errorf("encode = %q, want %q", got, want)
				return
			}
			v, err := c.Decode(got, TypeOf[node]())
			if err != nil {
				errs <- err
				return
			}
			if n := v.(*node); n.Next.Next != n {
				errs <- errors.New("decoded cycle broken")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

// ============================================================
// Benchmarks
// ============================================================

func benchChain(n int) *node {
	head := &node{Val: 0}
	cur := head
	for i := 1; i < n; i++ {
		cur.Next = &node{Val: i}
		cur = cur.Next
	}
	cur.Next = head
	return head
}

func BenchmarkEncodeChain(b *testing.B) {
	head := benchChain(100)
	c := New()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := c.Encode(head, TypeOf[node]()); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeChain(b *testing.B) {
	c := New()
	text, err := c.Encode(benchChain(100), TypeOf[node]())
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := c.Decode(text, TypeOf[node]()); err != nil {
			b.Fatal(err)
		}
	}
}
