package ast

// Equal reports whether two nodes are structurally identical. Spans and
// explicit parentheses are ignored.
func Equal(a, b Node) bool {
	if ea, ok := a.(Expr); ok {
		a = Unparen(ea)
	}
	if eb, ok := b.(Expr); ok {
		b = Unparen(eb)
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case *Ident:
		y, ok := b.(*Ident)
		return ok && x.Name == y.Name
	case *Literal:
		y, ok := b.(*Literal)
		return ok && x.Kind == y.Kind && x.Value == y.Value
	case *ThisExpr:
		_, ok := b.(*ThisExpr)
		return ok
	case *TypeName:
		y, ok := b.(*TypeName)
		return ok && typeNameEqual(x, y)
	case *UnaryExpr:
		y, ok := b.(*UnaryExpr)
		return ok && x.Op == y.Op && x.Postfix == y.Postfix && Equal(x.X, y.X)
	case *BinaryExpr:
		y, ok := b.(*BinaryExpr)
		return ok && x.Op == y.Op && Equal(x.X, y.X) && Equal(x.Y, y.Y)
	case *AssignExpr:
		y, ok := b.(*AssignExpr)
		return ok && x.Op == y.Op && Equal(x.Target, y.Target) && Equal(x.Value, y.Value)
	case *CallExpr:
		y, ok := b.(*CallExpr)
		return ok && Equal(x.Fun, y.Fun) && argsEqual(x.Args, y.Args)
	case *MemberExpr:
		y, ok := b.(*MemberExpr)
		return ok && x.Name == y.Name && Equal(x.X, y.X)
	case *IndexExpr:
		y, ok := b.(*IndexExpr)
		return ok && Equal(x.X, y.X) && Equal(x.Index, y.Index)
	case *CondExpr:
		y, ok := b.(*CondExpr)
		return ok && Equal(x.Cond, y.Cond) && Equal(x.Then, y.Then) && Equal(x.Else, y.Else)
	case *NewExpr:
		y, ok := b.(*NewExpr)
		return ok && typeNameEqual(x.Type, y.Type) && argsEqual(x.Args, y.Args)
	case *CastExpr:
		y, ok := b.(*CastExpr)
		return ok && typeNameEqual(x.Type, y.Type) && Equal(x.X, y.X)
	case *InterpolatedString:
		y, ok := b.(*InterpolatedString)
		if !ok || len(x.Parts) != len(y.Parts) {
			return false
		}
		for i := range x.Parts {
			if !Equal(x.Parts[i], y.Parts[i]) {
				return false
			}
		}
		return true
	}

	// Statements and declarations compare by rendered source, which is
	// span-free and deterministic.
	return a.String() == b.String()
}

func typeNameEqual(a, b *TypeName) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name == b.Name
}

func argsEqual(a, b []*Arg) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Mode != b[i].Mode || !Equal(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}
