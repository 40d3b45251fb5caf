package optimize

import "github.com/orizon-lang/astopt/internal/ast"

// mutations is the conservative write set of a region of code.
type mutations struct {
	roots map[string]bool
	// contents holds variables passed to opaque calls. The variable keeps
	// its binding but whatever it references may have been written.
	contents map[string]bool
	// nonLocals is set when an opaque call on the implicit receiver may
	// have written any field.
	nonLocals bool
	locals    map[string]bool
}

// collectMutations scans region for writes. locals holds the parameters
// and locals of the enclosing method; with declarations set, names
// declared inside region count as written too.
func collectMutations(region ast.Node, locals map[string]bool, declarations bool) *mutations {
	m := &mutations{roots: make(map[string]bool), contents: make(map[string]bool), locals: locals}
	mark := func(e ast.Expr) {
		if root, ok := ast.Root(e); ok {
			m.roots[root] = true
		}
	}
	escape := func(args []*ast.Arg) {
		for _, a := range args {
			switch v := ast.Unparen(a.Value).(type) {
			case *ast.ThisExpr:
				m.nonLocals = true
			case *ast.MemberExpr:
				if isValueMember(v.Name) {
					continue
				}
			}
			if root, ok := ast.Root(a.Value); ok {
				m.contents[root] = true
			}
		}
	}

	ast.Inspect(region, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.LocalDecl:
			if declarations {
				m.roots[x.Name] = true
			}
		case *ast.ForEachStmt:
			m.roots[x.Name] = true
		case *ast.AssignExpr:
			mark(x.Target)
		case *ast.UnaryExpr:
			if x.IsIncDec() {
				mark(x.X)
			}
		case *ast.CallExpr:
			for _, a := range x.Args {
				if a.Mode == ast.ModeRef || a.Mode == ast.ModeOut {
					mark(a.Value)
				}
			}
			if isPureCall(x) {
				break
			}
			escape(x.Args)
			switch fun := ast.Unparen(x.Fun).(type) {
			case *ast.Ident:
				m.nonLocals = true
			case *ast.MemberExpr:
				if _, ok := ast.Unparen(fun.X).(*ast.ThisExpr); ok {
					m.nonLocals = true
				} else {
					mark(fun.X)
				}
			}
		case *ast.NewExpr:
			if !pureConstructors[x.Type.String()] {
				escape(x.Args)
			}
		}
		return true
	})
	return m
}

// isValueMember reports whether reading member yields a copy that shares
// nothing with its receiver.
func isValueMember(name string) bool {
	_, engine := engineProperties[name]
	return engine || pureMembers[name]
}

// written reports whether name may change inside the region.
func (m *mutations) written(name string) bool {
	if isTypeName(name) {
		return false
	}
	return m.roots[name] || m.contents[name] || (m.nonLocals && !m.locals[name])
}

// stable reports whether every variable e reads is left untouched by the
// region and e itself is free of side effects.
func (m *mutations) stable(e ast.Expr) bool {
	if !sideEffectFree(e) {
		return false
	}
	ok := true
	ast.Inspect(e, func(n ast.Node) bool {
		if !ok {
			return false
		}
		switch x := n.(type) {
		case *ast.Ident:
			if m.written(x.Name) {
				ok = false
			}
		case *ast.MemberExpr:
			if _, this := ast.Unparen(x.X).(*ast.ThisExpr); this && m.written(x.Name) {
				ok = false
			}
		}
		return ok
	})
	return ok
}

// methodLocals returns the parameters and every local declared in a body.
func methodLocals(decl ast.Member, body *ast.Block) map[string]bool {
	locals := ast.DeclaredLocals(body)
	if md, ok := decl.(*ast.MethodDecl); ok {
		for _, p := range md.Params {
			locals[p.Name] = true
		}
	}
	if _, ok := decl.(*ast.PropertyDecl); ok {
		locals["value"] = true
	}
	return locals
}

// visitUnconditional calls fn for every expression of e that is evaluated
// whenever e is. The right operands of && || ?? and the branches of ?: are
// skipped. If fn returns false the expression's children are not visited.
func visitUnconditional(e ast.Expr, fn func(ast.Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch n := e.(type) {
	case *ast.ParenExpr:
		visitUnconditional(n.X, fn)
	case *ast.UnaryExpr:
		visitUnconditional(n.X, fn)
	case *ast.BinaryExpr:
		visitUnconditional(n.X, fn)
		if n.Op != "&&" && n.Op != "||" && n.Op != "??" {
			visitUnconditional(n.Y, fn)
		}
	case *ast.AssignExpr:
		visitUnconditional(n.Value, fn)
	case *ast.CallExpr:
		if sel, ok := n.Fun.(*ast.MemberExpr); ok {
			visitUnconditional(sel.X, fn)
		}
		for _, a := range n.Args {
			if a.Mode == ast.ModeValue {
				visitUnconditional(a.Value, fn)
			}
		}
	case *ast.MemberExpr:
		visitUnconditional(n.X, fn)
	case *ast.IndexExpr:
		visitUnconditional(n.X, fn)
		visitUnconditional(n.Index, fn)
	case *ast.CondExpr:
		visitUnconditional(n.Cond, fn)
	case *ast.NewExpr:
		for _, a := range n.Args {
			if a.Mode == ast.ModeValue {
				visitUnconditional(a.Value, fn)
			}
		}
	case *ast.CastExpr:
		visitUnconditional(n.X, fn)
	case *ast.InterpolatedString:
		for _, p := range n.Parts {
			visitUnconditional(p, fn)
		}
	}
}

// stmtExprs returns the expressions a statement evaluates itself before
// any nested statement runs. Loops are opaque and contribute nothing, and
// so do labeled statements, since a goto may enter there.
func stmtExprs(s ast.Stmt) []ast.Expr {
	switch n := s.(type) {
	case *ast.ExprStmt:
		return []ast.Expr{n.X}
	case *ast.LocalDecl:
		if n.Init != nil {
			return []ast.Expr{n.Init}
		}
	case *ast.IfStmt:
		return []ast.Expr{n.Cond}
	case *ast.SwitchStmt:
		return []ast.Expr{n.Tag}
	case *ast.ReturnStmt:
		if n.Result != nil {
			return []ast.Expr{n.Result}
		}
	case *ast.ThrowStmt:
		if n.X != nil {
			return []ast.Expr{n.X}
		}
	}
	return nil
}
