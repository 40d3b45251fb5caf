package optimize

import "github.com/orizon-lang/astopt/internal/ast"

// Purity tables. These allow-lists are the contract: a call is treated as
// free of side effects only when it appears here. Result types name the
// temporary declared when a call is hoisted or shared. An empty result type
// marks an overloaded method whose temporary is declared with var.

var pureStaticCalls = map[string]map[string]string{
	"Mathf": {
		"Sqrt": "float", "Abs": "", "Sin": "float", "Cos": "float", "Tan": "float",
		"Asin": "float", "Acos": "float", "Atan": "float", "Atan2": "float",
		"Pow": "float", "Exp": "float", "Log": "float", "Log10": "float",
		"Floor": "float", "Ceil": "float", "Round": "float", "Sign": "float",
		"FloorToInt": "int", "CeilToInt": "int", "RoundToInt": "int",
		"Min": "", "Max": "", "Clamp": "", "Clamp01": "float",
		"Lerp": "float", "LerpUnclamped": "float", "InverseLerp": "float",
		"MoveTowards": "float", "SmoothStep": "float", "DeltaAngle": "float",
		"Approximately": "bool",
	},
	"Math": {
		"Sqrt": "double", "Abs": "", "Sin": "double", "Cos": "double", "Tan": "double",
		"Atan2": "double", "Pow": "double", "Exp": "double", "Log": "double",
		"Floor": "", "Ceiling": "", "Round": "",
		"Min": "", "Max": "", "Clamp": "",
	},
	"Vector2": {
		"Distance": "float", "Dot": "float", "Angle": "float",
		"Lerp": "Vector2", "Scale": "Vector2", "Min": "Vector2", "Max": "Vector2",
	},
	"Vector3": {
		"Distance": "float", "Dot": "float", "Angle": "float", "SignedAngle": "float",
		"Cross": "Vector3", "Lerp": "Vector3", "Slerp": "Vector3", "Project": "Vector3",
		"ProjectOnPlane": "Vector3", "Reflect": "Vector3", "Scale": "Vector3",
		"Min": "Vector3", "Max": "Vector3", "Normalize": "Vector3", "MoveTowards": "Vector3",
	},
	"Quaternion": {
		"Euler": "Quaternion", "AngleAxis": "Quaternion", "LookRotation": "Quaternion",
		"Lerp": "Quaternion", "Slerp": "Quaternion", "Inverse": "Quaternion",
		"FromToRotation": "Quaternion", "Angle": "float", "Dot": "float",
	},
	"Color": {
		"Lerp": "Color",
	},
}

// Allow-listed static calls that still throw for some operands, such as
// Math.Abs(int.MinValue) or Math.Clamp with min greater than max.
var throwingStaticCalls = map[string]bool{
	"Math.Abs": true, "Math.Clamp": true, "Math.Round": true,
}

var pureInstanceMethods = map[string]struct {
	arity  int
	result string
}{
	"ToString":    {0, "string"},
	"GetHashCode": {0, "int"},
	"CompareTo":   {1, "int"},
	"Equals":      {1, "bool"},
}

// Value-type members whose read has no side effects.
var pureMembers = map[string]bool{
	"magnitude": true, "sqrMagnitude": true, "normalized": true,
	"x": true, "y": true, "z": true, "w": true,
	"Length": true, "Count": true,
}

// Value types whose constructors only store their arguments.
var pureConstructors = map[string]bool{
	"Vector2": true, "Vector3": true, "Vector4": true,
	"Quaternion": true, "Color": true, "Color32": true,
}

// Engine properties that are costly to read because each access crosses
// into native code. The value is the declared type of the property.
var engineProperties = map[string]string{
	"position":         "Vector3",
	"localPosition":    "Vector3",
	"eulerAngles":      "Vector3",
	"localEulerAngles": "Vector3",
	"localScale":       "Vector3",
	"lossyScale":       "Vector3",
	"forward":          "Vector3",
	"right":            "Vector3",
	"up":               "Vector3",
	"velocity":         "Vector3",
	"angularVelocity":  "Vector3",
	"rotation":         "Quaternion",
	"localRotation":    "Quaternion",
}

// Properties worth sharing when read twice in one scope.
var expensiveProperties = map[string]bool{
	"position": true, "rotation": true, "localPosition": true, "localRotation": true,
	"localScale": true, "eulerAngles": true, "lossyScale": true,
	"forward": true, "right": true, "up": true,
}

// Receivers known to be engine components.
var componentNames = map[string]bool{
	"transform": true, "gameObject": true, "rigidbody": true, "rb": true,
	"collider": true, "renderer": true, "animator": true,
}

// isTypeName reports whether name is one of the immutable engine types the
// purity tables refer to. Such names are never treated as variables.
func isTypeName(name string) bool {
	if _, ok := pureStaticCalls[name]; ok {
		return true
	}
	return pureConstructors[name]
}

// staticPureCall reports whether call is an allow-listed static call and
// returns the declared result type, or "" when it depends on the operands.
func staticPureCall(call *ast.CallExpr) (string, bool) {
	sel, ok := call.Fun.(*ast.MemberExpr)
	if !ok {
		return "", false
	}
	class, ok := sel.X.(*ast.Ident)
	if !ok {
		return "", false
	}
	methods, ok := pureStaticCalls[class.Name]
	if !ok {
		return "", false
	}
	result, ok := methods[sel.Name]
	if !ok {
		return "", false
	}
	for _, a := range call.Args {
		if a.Mode != ast.ModeValue {
			return "", false
		}
	}
	return result, true
}

// instancePureCall reports whether call is an allow-listed instance method.
func instancePureCall(call *ast.CallExpr) (string, bool) {
	sel, ok := call.Fun.(*ast.MemberExpr)
	if !ok {
		return "", false
	}
	if _, static := staticPureCall(call); static {
		return "", false
	}
	m, ok := pureInstanceMethods[sel.Name]
	if !ok || len(call.Args) != m.arity {
		return "", false
	}
	for _, a := range call.Args {
		if a.Mode != ast.ModeValue {
			return "", false
		}
	}
	return m.result, true
}

// isPureCall reports whether call has no side effects of its own.
func isPureCall(call *ast.CallExpr) bool {
	if _, ok := staticPureCall(call); ok {
		return true
	}
	_, ok := instancePureCall(call)
	return ok
}

// cannotThrow reports whether evaluating e never raises an exception:
// literals, locals, fields of this, unary and non-dividing binary operators
// and non-throwing pure static calls over such operands.
func cannotThrow(e ast.Expr) bool {
	switch n := ast.Unparen(e).(type) {
	case *ast.Literal, *ast.Ident, *ast.ThisExpr:
		return true
	case *ast.MemberExpr:
		_, this := ast.Unparen(n.X).(*ast.ThisExpr)
		return this
	case *ast.UnaryExpr:
		return !n.IsIncDec() && cannotThrow(n.X)
	case *ast.BinaryExpr:
		switch n.Op {
		case "/", "%":
			return false
		}
		return cannotThrow(n.X) && cannotThrow(n.Y)
	case *ast.CallExpr:
		if _, ok := staticPureCall(n); !ok || throwingStaticCalls[n.Fun.String()] {
			return false
		}
		for _, a := range n.Args {
			if !cannotThrow(a.Value) {
				return false
			}
		}
		return true
	}
	return false
}

// resultType returns the declared type for a temporary holding e, or ""
// when var must be used.
func resultType(e ast.Expr) string {
	switch n := ast.Unparen(e).(type) {
	case *ast.CallExpr:
		if t, ok := staticPureCall(n); ok {
			return t
		}
		if t, ok := instancePureCall(n); ok {
			return t
		}
	case *ast.MemberExpr:
		return engineProperties[n.Name]
	case *ast.NewExpr:
		if pureConstructors[n.Type.String()] {
			return n.Type.String()
		}
	}
	return ""
}

// sideEffectFree reports whether evaluating e cannot change program state:
// no assignments, increments or calls and constructors outside the
// allow-lists. Member reads count as free.
func sideEffectFree(e ast.Expr) bool {
	free := true
	ast.Inspect(e, func(n ast.Node) bool {
		if !free {
			return false
		}
		switch x := n.(type) {
		case *ast.AssignExpr:
			free = false
		case *ast.UnaryExpr:
			if x.IsIncDec() {
				free = false
			}
		case *ast.CallExpr:
			if !isPureCall(x) {
				free = false
			}
		case *ast.NewExpr:
			if !pureConstructors[x.Type.String()] {
				free = false
			}
		}
		return free
	})
	return free
}
