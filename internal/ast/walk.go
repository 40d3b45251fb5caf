package ast

// Inspect traverses the tree rooted at node in depth-first order. It calls
// fn(node) for every node; if fn returns false, the children of that node
// are skipped. Type references in declarations are not visited.
func Inspect(node Node, fn func(Node) bool) {
	if node == nil || isNilNode(node) || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *File:
		for _, t := range n.Types {
			Inspect(t, fn)
		}
	case *TypeDecl:
		for _, m := range n.Members {
			Inspect(m, fn)
		}
	case *FieldDecl:
		inspectExpr(n.Init, fn)
	case *MethodDecl:
		if n.Body != nil {
			Inspect(n.Body, fn)
		}
		inspectExpr(n.ExprBody, fn)
	case *PropertyDecl:
		for _, a := range []*Accessor{n.Getter, n.Setter} {
			if a == nil {
				continue
			}
			if a.Body != nil {
				Inspect(a.Body, fn)
			}
			inspectExpr(a.ExprBody, fn)
		}

	// Statements
	case *Block:
		for _, s := range n.Stmts {
			Inspect(s, fn)
		}
	case *ExprStmt:
		inspectExpr(n.X, fn)
	case *LocalDecl:
		inspectExpr(n.Init, fn)
	case *IfStmt:
		inspectExpr(n.Cond, fn)
		Inspect(n.Then, fn)
		if n.Else != nil {
			Inspect(n.Else, fn)
		}
	case *WhileStmt:
		inspectExpr(n.Cond, fn)
		Inspect(n.Body, fn)
	case *ForStmt:
		for _, s := range n.Init {
			Inspect(s, fn)
		}
		inspectExpr(n.Cond, fn)
		for _, p := range n.Post {
			inspectExpr(p, fn)
		}
		Inspect(n.Body, fn)
	case *ForEachStmt:
		inspectExpr(n.Collection, fn)
		Inspect(n.Body, fn)
	case *SwitchStmt:
		inspectExpr(n.Tag, fn)
		for _, sec := range n.Sections {
			for _, l := range sec.Labels {
				inspectExpr(l, fn)
			}
			for _, s := range sec.Body {
				Inspect(s, fn)
			}
		}
	case *ReturnStmt:
		inspectExpr(n.Result, fn)
	case *ThrowStmt:
		inspectExpr(n.X, fn)
	case *LabeledStmt:
		Inspect(n.Stmt, fn)

	// Expressions
	case *ParenExpr:
		Inspect(n.X, fn)
	case *UnaryExpr:
		Inspect(n.X, fn)
	case *BinaryExpr:
		Inspect(n.X, fn)
		Inspect(n.Y, fn)
	case *AssignExpr:
		Inspect(n.Target, fn)
		Inspect(n.Value, fn)
	case *CallExpr:
		Inspect(n.Fun, fn)
		for _, a := range n.Args {
			Inspect(a.Value, fn)
		}
	case *MemberExpr:
		Inspect(n.X, fn)
	case *IndexExpr:
		Inspect(n.X, fn)
		Inspect(n.Index, fn)
	case *CondExpr:
		Inspect(n.Cond, fn)
		Inspect(n.Then, fn)
		Inspect(n.Else, fn)
	case *NewExpr:
		for _, a := range n.Args {
			Inspect(a.Value, fn)
		}
	case *CastExpr:
		Inspect(n.X, fn)
	case *InterpolatedString:
		for _, p := range n.Parts {
			Inspect(p, fn)
		}
	}
}

func inspectExpr(e Expr, fn func(Node) bool) {
	if e != nil {
		Inspect(e, fn)
	}
}

// isNilNode catches typed nil pointers stored in an interface.
func isNilNode(n Node) bool {
	switch x := n.(type) {
	case *Block:
		return x == nil
	case *TypeName:
		return x == nil
	case *LocalDecl:
		return x == nil
	}
	return false
}

// ===== Copy-on-write rewriting =====

// ExprMapper returns a replacement for e and true, or false to descend into
// e's children.
type ExprMapper func(e Expr) (Expr, bool)

// MapExpr rewrites e in pre-order. Replaced nodes are not descended into.
// Nodes whose children are unchanged are returned as is.
func MapExpr(e Expr, fn ExprMapper) Expr {
	if e == nil {
		return nil
	}
	if r, ok := fn(e); ok {
		return r
	}

	switch n := e.(type) {
	case *ParenExpr:
		if x := MapExpr(n.X, fn); x != n.X {
			c := *n
			c.X = x
			return &c
		}
	case *UnaryExpr:
		if x := MapExpr(n.X, fn); x != n.X {
			c := *n
			c.X = x
			return &c
		}
	case *BinaryExpr:
		x, y := MapExpr(n.X, fn), MapExpr(n.Y, fn)
		if x != n.X || y != n.Y {
			c := *n
			c.X, c.Y = x, y
			return &c
		}
	case *AssignExpr:
		t, v := MapExpr(n.Target, fn), MapExpr(n.Value, fn)
		if t != n.Target || v != n.Value {
			c := *n
			c.Target, c.Value = t, v
			return &c
		}
	case *CallExpr:
		f := MapExpr(n.Fun, fn)
		args, changed := mapArgs(n.Args, fn)
		if f != n.Fun || changed {
			c := *n
			c.Fun, c.Args = f, args
			return &c
		}
	case *MemberExpr:
		if x := MapExpr(n.X, fn); x != n.X {
			c := *n
			c.X = x
			return &c
		}
	case *IndexExpr:
		x, i := MapExpr(n.X, fn), MapExpr(n.Index, fn)
		if x != n.X || i != n.Index {
			c := *n
			c.X, c.Index = x, i
			return &c
		}
	case *CondExpr:
		cond, th, el := MapExpr(n.Cond, fn), MapExpr(n.Then, fn), MapExpr(n.Else, fn)
		if cond != n.Cond || th != n.Then || el != n.Else {
			c := *n
			c.Cond, c.Then, c.Else = cond, th, el
			return &c
		}
	case *NewExpr:
		if args, changed := mapArgs(n.Args, fn); changed {
			c := *n
			c.Args = args
			return &c
		}
	case *CastExpr:
		if x := MapExpr(n.X, fn); x != n.X {
			c := *n
			c.X = x
			return &c
		}
	case *InterpolatedString:
		parts, changed := mapExprs(n.Parts, fn)
		if changed {
			c := *n
			c.Parts = parts
			return &c
		}
	}
	return e
}

func mapExprs(list []Expr, fn ExprMapper) ([]Expr, bool) {
	var out []Expr
	for i, e := range list {
		r := MapExpr(e, fn)
		if r != e && out == nil {
			out = make([]Expr, len(list))
			copy(out, list[:i])
		}
		if out != nil {
			out[i] = r
		}
	}
	if out == nil {
		return list, false
	}
	return out, true
}

func mapArgs(args []*Arg, fn ExprMapper) ([]*Arg, bool) {
	var out []*Arg
	for i, a := range args {
		v := MapExpr(a.Value, fn)
		if v != a.Value && out == nil {
			out = make([]*Arg, len(args))
			copy(out, args[:i])
		}
		if out != nil {
			if v != a.Value {
				c := *a
				c.Value = v
				out[i] = &c
			} else {
				out[i] = a
			}
		}
	}
	if out == nil {
		return args, false
	}
	return out, true
}

// MapStmtExprs applies MapExpr to every expression reachable from s,
// including expressions of nested statements.
func MapStmtExprs(s Stmt, fn ExprMapper) Stmt {
	return mapStmt(s, fn, true)
}

// MapShallowExprs applies MapExpr to the expressions owned directly by s.
// Nested statements are left alone.
func MapShallowExprs(s Stmt, fn ExprMapper) Stmt {
	return mapStmt(s, fn, false)
}

func mapStmt(s Stmt, fn ExprMapper, deep bool) Stmt {
	sub := func(st Stmt) Stmt {
		if !deep || st == nil {
			return st
		}
		return mapStmt(st, fn, deep)
	}

	switch n := s.(type) {
	case *Block:
		if !deep {
			return s
		}
		if list, changed := mapStmtList(n.Stmts, sub); changed {
			c := *n
			c.Stmts = list
			return &c
		}
	case *ExprStmt:
		if x := MapExpr(n.X, fn); x != n.X {
			c := *n
			c.X = x
			return &c
		}
	case *LocalDecl:
		if x := MapExpr(n.Init, fn); x != n.Init {
			c := *n
			c.Init = x
			return &c
		}
	case *IfStmt:
		cond, th, el := MapExpr(n.Cond, fn), sub(n.Then), sub(n.Else)
		if cond != n.Cond || th != n.Then || el != n.Else {
			c := *n
			c.Cond, c.Then, c.Else = cond, th, el
			return &c
		}
	case *WhileStmt:
		cond, body := MapExpr(n.Cond, fn), sub(n.Body)
		if cond != n.Cond || body != n.Body {
			c := *n
			c.Cond, c.Body = cond, body
			return &c
		}
	case *ForStmt:
		init, ic := mapStmtList(n.Init, func(st Stmt) Stmt { return mapStmt(st, fn, true) })
		cond := MapExpr(n.Cond, fn)
		post, pc := mapExprs(n.Post, fn)
		body := sub(n.Body)
		if ic || cond != n.Cond || pc || body != n.Body {
			c := *n
			c.Init, c.Cond, c.Post, c.Body = init, cond, post, body
			return &c
		}
	case *ForEachStmt:
		coll, body := MapExpr(n.Collection, fn), sub(n.Body)
		if coll != n.Collection || body != n.Body {
			c := *n
			c.Collection, c.Body = coll, body
			return &c
		}
	case *SwitchStmt:
		tag := MapExpr(n.Tag, fn)
		var secs []*SwitchSection
		for i, sec := range n.Sections {
			body, changed := sec.Body, false
			if deep {
				body, changed = mapStmtList(sec.Body, sub)
			}
			if changed && secs == nil {
				secs = make([]*SwitchSection, len(n.Sections))
				copy(secs, n.Sections[:i])
			}
			if secs != nil {
				if changed {
					cs := *sec
					cs.Body = body
					secs[i] = &cs
				} else {
					secs[i] = sec
				}
			}
		}
		if tag != n.Tag || secs != nil {
			c := *n
			c.Tag = tag
			if secs != nil {
				c.Sections = secs
			}
			return &c
		}
	case *ReturnStmt:
		if x := MapExpr(n.Result, fn); x != n.Result {
			c := *n
			c.Result = x
			return &c
		}
	case *ThrowStmt:
		if x := MapExpr(n.X, fn); x != n.X {
			c := *n
			c.X = x
			return &c
		}
	case *LabeledStmt:
		if inner := sub(n.Stmt); inner != n.Stmt {
			c := *n
			c.Stmt = inner
			return &c
		}
	}
	return s
}

func mapStmtList(list []Stmt, fn func(Stmt) Stmt) ([]Stmt, bool) {
	var out []Stmt
	for i, s := range list {
		r := fn(s)
		if r != s && out == nil {
			out = make([]Stmt, len(list))
			copy(out, list[:i])
		}
		if out != nil {
			out[i] = r
		}
	}
	if out == nil {
		return list, false
	}
	return out, true
}

// RewriteStmts rewrites s in post-order: children first, then fn on the
// node itself. fn returns its argument when it has nothing to change.
func RewriteStmts(s Stmt, fn func(Stmt) Stmt) Stmt {
	if s == nil {
		return nil
	}
	rec := func(st Stmt) Stmt { return RewriteStmts(st, fn) }

	switch n := s.(type) {
	case *Block:
		if list, changed := mapStmtList(n.Stmts, rec); changed {
			c := *n
			c.Stmts = list
			s = &c
		}
	case *IfStmt:
		th, el := rec(n.Then), rec(n.Else)
		if th != n.Then || el != n.Else {
			c := *n
			c.Then, c.Else = th, el
			s = &c
		}
	case *WhileStmt:
		if body := rec(n.Body); body != n.Body {
			c := *n
			c.Body = body
			s = &c
		}
	case *ForStmt:
		if body := rec(n.Body); body != n.Body {
			c := *n
			c.Body = body
			s = &c
		}
	case *ForEachStmt:
		if body := rec(n.Body); body != n.Body {
			c := *n
			c.Body = body
			s = &c
		}
	case *SwitchStmt:
		if secs, changed := rewriteSections(n.Sections, func(list []Stmt) ([]Stmt, bool) {
			return mapStmtList(list, rec)
		}); changed {
			c := *n
			c.Sections = secs
			s = &c
		}
	case *LabeledStmt:
		if inner := rec(n.Stmt); inner != n.Stmt {
			c := *n
			c.Stmt = inner
			s = &c
		}
	}
	return fn(s)
}

// ListRewriter rewrites one statement list and reports whether it changed.
type ListRewriter func(list []Stmt) ([]Stmt, bool)

// RewriteStmtLists applies fn to every statement list under s (block bodies
// and switch sections), innermost lists first.
func RewriteStmtLists(s Stmt, fn ListRewriter) Stmt {
	return RewriteStmts(s, func(st Stmt) Stmt {
		switch n := st.(type) {
		case *Block:
			if list, changed := fn(n.Stmts); changed {
				c := *n
				c.Stmts = list
				return &c
			}
		case *SwitchStmt:
			if secs, changed := rewriteSections(n.Sections, fn); changed {
				c := *n
				c.Sections = secs
				return &c
			}
		}
		return st
	})
}

func rewriteSections(secs []*SwitchSection, fn ListRewriter) ([]*SwitchSection, bool) {
	var out []*SwitchSection
	for i, sec := range secs {
		body, changed := fn(sec.Body)
		if changed && out == nil {
			out = make([]*SwitchSection, len(secs))
			copy(out, secs[:i])
		}
		if out != nil {
			if changed {
				c := *sec
				c.Body = body
				out[i] = &c
			} else {
				out[i] = sec
			}
		}
	}
	if out == nil {
		return secs, false
	}
	return out, true
}

// RewriteMembers applies fn to every member of every type in f. A member
// returned unchanged keeps the original pointer, and so does the file when
// nothing changed.
func RewriteMembers(f *File, fn func(td *TypeDecl, m Member) Member) *File {
	var types []*TypeDecl
	for ti, td := range f.Types {
		var members []Member
		for mi, m := range td.Members {
			r := fn(td, m)
			if r != m && members == nil {
				members = make([]Member, len(td.Members))
				copy(members, td.Members[:mi])
			}
			if members != nil {
				members[mi] = r
			}
		}
		if members != nil && types == nil {
			types = make([]*TypeDecl, len(f.Types))
			copy(types, f.Types[:ti])
		}
		if types != nil {
			if members != nil {
				c := *td
				c.Members = members
				types[ti] = &c
			} else {
				types[ti] = td
			}
		}
	}
	if types == nil {
		return f
	}
	c := *f
	c.Types = types
	return &c
}

// BodyFunc rewrites one executable body. decl is the method or property
// that owns the body.
type BodyFunc func(td *TypeDecl, decl Member, body *Block) *Block

// RewriteBodies applies fn to the block body of every method and accessor.
func RewriteBodies(f *File, fn BodyFunc) *File {
	return RewriteMembers(f, func(td *TypeDecl, m Member) Member {
		switch d := m.(type) {
		case *MethodDecl:
			if d.Body == nil {
				return m
			}
			if b := fn(td, d, d.Body); b != d.Body {
				c := *d
				c.Body = b
				return &c
			}
		case *PropertyDecl:
			g, s := rewriteAccessor(td, d, d.Getter, fn), rewriteAccessor(td, d, d.Setter, fn)
			if g != d.Getter || s != d.Setter {
				c := *d
				c.Getter, c.Setter = g, s
				return &c
			}
		}
		return m
	})
}

func rewriteAccessor(td *TypeDecl, owner Member, a *Accessor, fn BodyFunc) *Accessor {
	if a == nil || a.Body == nil {
		return a
	}
	if b := fn(td, owner, a.Body); b != a.Body {
		c := *a
		c.Body = b
		return &c
	}
	return a
}

// MapFileExprs applies MapExpr to every expression in f: field
// initializers, expression bodies and statement bodies.
func MapFileExprs(f *File, fn ExprMapper) *File {
	mapAcc := func(a *Accessor) *Accessor {
		if a == nil {
			return nil
		}
		c := *a
		if a.Body != nil {
			if b, _ := MapStmtExprs(a.Body, fn).(*Block); b != a.Body {
				c.Body = b
			}
		}
		c.ExprBody = MapExpr(a.ExprBody, fn)
		if c.Body == a.Body && c.ExprBody == a.ExprBody {
			return a
		}
		return &c
	}
	return RewriteMembers(f, func(_ *TypeDecl, m Member) Member {
		switch d := m.(type) {
		case *FieldDecl:
			if x := MapExpr(d.Init, fn); x != d.Init {
				c := *d
				c.Init = x
				return &c
			}
		case *MethodDecl:
			c := *d
			if d.Body != nil {
				c.Body, _ = MapStmtExprs(d.Body, fn).(*Block)
			}
			c.ExprBody = MapExpr(d.ExprBody, fn)
			if c.Body != d.Body || c.ExprBody != d.ExprBody {
				return &c
			}
		case *PropertyDecl:
			g, s := mapAcc(d.Getter), mapAcc(d.Setter)
			if g != d.Getter || s != d.Setter {
				c := *d
				c.Getter, c.Setter = g, s
				return &c
			}
		}
		return m
	})
}

// ===== Queries =====

// Unparen strips any number of enclosing parentheses.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}

// Root returns the variable at the base of a member or index chain.
// this.x roots at x; chains rooted at a call or constructor have no root.
func Root(e Expr) (string, bool) {
	for {
		switch n := Unparen(e).(type) {
		case *Ident:
			return n.Name, true
		case *MemberExpr:
			if _, ok := Unparen(n.X).(*ThisExpr); ok {
				return n.Name, true
			}
			e = n.X
		case *IndexExpr:
			e = n.X
		case *CastExpr:
			e = n.X
		default:
			return "", false
		}
	}
}

// Idents returns the names of all identifiers referenced under n, in
// first-seen order. Member names are not identifiers.
func Idents(n Node) []string {
	var names []string
	seen := make(map[string]bool)
	Inspect(n, func(x Node) bool {
		if id, ok := x.(*Ident); ok && !seen[id.Name] {
			seen[id.Name] = true
			names = append(names, id.Name)
		}
		return true
	})
	return names
}

// DeclaredLocals returns the names of every local, foreach variable and
// for-loop variable declared under s.
func DeclaredLocals(s Stmt) map[string]bool {
	locals := make(map[string]bool)
	Inspect(s, func(x Node) bool {
		switch d := x.(type) {
		case *LocalDecl:
			locals[d.Name] = true
		case *ForEachStmt:
			locals[d.Name] = true
		}
		return true
	})
	return locals
}
