package optimize

import (
	"encoding/binary"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/blake3"

	"github.com/orizon-lang/astopt/internal/ast"
)

const defaultFingerprintCacheSize = 4096

// Fingerprint is a structural hash of an expression. Two expressions with
// equal fingerprints have the same shape, names and literal values; spans
// and explicit parentheses do not contribute.
type Fingerprint [32]byte

func (f Fingerprint) String() string { return hex.EncodeToString(f[:8]) }

// Fingerprinter computes Merkle-style fingerprints: every node hashes its
// kind, its own fields and the fingerprints of its children. Results are
// memoized per node, which is sound because trees are never mutated.
type Fingerprinter struct {
	cache *lru.Cache[ast.Expr, Fingerprint]
}

// NewFingerprinter creates a fingerprinter with a bounded memo cache.
func NewFingerprinter(size int) *Fingerprinter {
	cache, err := lru.New[ast.Expr, Fingerprint](size)
	if err != nil {
		cache, _ = lru.New[ast.Expr, Fingerprint](defaultFingerprintCacheSize)
	}
	return &Fingerprinter{cache: cache}
}

// Of returns the fingerprint of e.
func (fp *Fingerprinter) Of(e ast.Expr) Fingerprint {
	e = ast.Unparen(e)
	if e == nil {
		return Fingerprint{}
	}
	if f, ok := fp.cache.Get(e); ok {
		return f
	}
	f := fp.compute(e)
	fp.cache.Add(e, f)
	return f
}

// Same reports whether a and b are structurally equal. Fingerprints are
// confirmed with a structural comparison so a collision cannot merge
// distinct expressions.
func (fp *Fingerprinter) Same(a, b ast.Expr) bool {
	return fp.Of(a) == fp.Of(b) && ast.Equal(a, b)
}

type hashWriter struct {
	buf []byte
}

func (w *hashWriter) tag(kind byte) { w.buf = append(w.buf, kind) }

func (w *hashWriter) str(s string) {
	w.buf = binary.AppendUvarint(w.buf, uint64(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *hashWriter) num(n int) { w.buf = binary.AppendUvarint(w.buf, uint64(n)) }

func (w *hashWriter) child(f Fingerprint) { w.buf = append(w.buf, f[:]...) }

func (fp *Fingerprinter) compute(e ast.Expr) Fingerprint {
	w := &hashWriter{}
	args := func(list []*ast.Arg) {
		w.num(len(list))
		for _, a := range list {
			w.num(int(a.Mode))
			w.child(fp.Of(a.Value))
		}
	}

	switch n := e.(type) {
	case *ast.Ident:
		w.tag(1)
		w.str(n.Name)
	case *ast.Literal:
		w.tag(2)
		w.num(int(n.Kind))
		w.str(n.Value)
	case *ast.ThisExpr:
		w.tag(3)
	case *ast.UnaryExpr:
		w.tag(4)
		w.str(n.Op)
		if n.Postfix {
			w.num(1)
		} else {
			w.num(0)
		}
		w.child(fp.Of(n.X))
	case *ast.BinaryExpr:
		w.tag(5)
		w.str(n.Op)
		w.child(fp.Of(n.X))
		w.child(fp.Of(n.Y))
	case *ast.AssignExpr:
		w.tag(6)
		w.str(n.Op)
		w.child(fp.Of(n.Target))
		w.child(fp.Of(n.Value))
	case *ast.CallExpr:
		w.tag(7)
		w.child(fp.Of(n.Fun))
		args(n.Args)
	case *ast.MemberExpr:
		w.tag(8)
		w.str(n.Name)
		w.child(fp.Of(n.X))
	case *ast.IndexExpr:
		w.tag(9)
		w.child(fp.Of(n.X))
		w.child(fp.Of(n.Index))
	case *ast.CondExpr:
		w.tag(10)
		w.child(fp.Of(n.Cond))
		w.child(fp.Of(n.Then))
		w.child(fp.Of(n.Else))
	case *ast.NewExpr:
		w.tag(11)
		w.str(n.Type.String())
		args(n.Args)
	case *ast.CastExpr:
		w.tag(12)
		w.str(n.Type.String())
		w.child(fp.Of(n.X))
	case *ast.InterpolatedString:
		w.tag(13)
		w.num(len(n.Parts))
		for _, p := range n.Parts {
			w.child(fp.Of(p))
		}
	case *ast.TypeName:
		w.tag(14)
		w.str(n.Name)
	default:
		w.tag(0)
		w.str(e.String())
	}
	return blake3.Sum256(w.buf)
}
