package ast

import (
	"mslash/internal/span"
	"mslash/internal/token"
)

// KindOf returns the tag name of a node, e.g. "LoopStmt".
func KindOf(node Node) string {
	switch node.(type) {
	case *Program:
		return "Program"
	case *FuncDef:
		return "FuncDef"
	case *ClassDef:
		return "ClassDef"
	case *StealDecl:
		return "StealDecl"
	case *IdentExpr:
		return "IdentExpr"
	case *IntLiteral:
		return "IntLiteral"
	case *FloatLiteral:
		return "FloatLiteral"
	case *StringLiteral:
		return "StringLiteral"
	case *TemplateLiteral:
		return "TemplateLiteral"
	case *BoolLiteral:
		return "BoolLiteral"
	case *NoneLiteral:
		return "NoneLiteral"
	case *ListLiteral:
		return "ListLiteral"
	case *MapLiteral:
		return "MapLiteral"
	case *UnaryExpr:
		return "UnaryExpr"
	case *BinaryExpr:
		return "BinaryExpr"
	case *CallExpr:
		return "CallExpr"
	case *MemberExpr:
		return "MemberExpr"
	case *IndexExpr:
		return "IndexExpr"
	case *NewExpr:
		return "NewExpr"
	case *AssignStmt:
		return "AssignStmt"
	case *SayStmt:
		return "SayStmt"
	case *MathStmt:
		return "MathStmt"
	case *InputStmt:
		return "InputStmt"
	case *EmptyLineStmt:
		return "EmptyLineStmt"
	case *PauseStmt:
		return "PauseStmt"
	case *BreakStmt:
		return "BreakStmt"
	case *ReturnStmt:
		return "ReturnStmt"
	case *HelpStmt:
		return "HelpStmt"
	case *ExprStmt:
		return "ExprStmt"
	case *IfStmt:
		return "IfStmt"
	case *LoopStmt:
		return "LoopStmt"
	default:
		return "Unknown"
	}
}

// NodeToMap converts an AST node to a map suitable for JSON serialization.
// This produces a tagged-union structure: every node has a "kind" field.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}
	kind := KindOf(node)

	switch n := node.(type) {
	case *Program:
		decls := make([]interface{}, len(n.Decls))
		for i, d := range n.Decls {
			decls[i] = NodeToMap(d)
		}
		return m(kind, n.Span, "file", n.File, "decls", decls, "main", stmtSlice(n.Main))

	// ---- Declarations ----
	case *FuncDef:
		return m(kind, n.Span, "name", n.Name, "params", n.Params, "body", stmtSlice(n.Body))
	case *ClassDef:
		methods := make([]interface{}, len(n.Order))
		for i, name := range n.Order {
			methods[i] = NodeToMap(n.Methods[name])
		}
		return m(kind, n.Span, "name", n.Name, "methods", methods)
	case *StealDecl:
		return m(kind, n.Span, "symbol", n.Symbol, "path", n.Path)

	// ---- Expressions ----
	case *IdentExpr:
		return m(kind, n.Span, "name", n.Name)
	case *IntLiteral:
		return m(kind, n.Span, "value", n.Value)
	case *FloatLiteral:
		return m(kind, n.Span, "value", n.Value)
	case *StringLiteral:
		return m(kind, n.Span, "value", n.Value)
	case *TemplateLiteral:
		return m(kind, n.Span, "parts", n.Parts, "exprs", exprSlice(n.Exprs))
	case *BoolLiteral:
		return m(kind, n.Span, "value", n.Value)
	case *NoneLiteral:
		return m(kind, n.Span)
	case *ListLiteral:
		return m(kind, n.Span, "elements", exprSlice(n.Elements))
	case *MapLiteral:
		return m(kind, n.Span, "keys", exprSlice(n.Keys), "values", exprSlice(n.Values))
	case *UnaryExpr:
		return m(kind, n.Span, "op", opStr(n.Op), "operand", NodeToMap(n.Operand))
	case *BinaryExpr:
		return m(kind, n.Span,
			"op", opStr(n.Op),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *CallExpr:
		return m(kind, n.Span,
			"callee", NodeToMap(n.Callee),
			"args", exprSlice(n.Args))
	case *MemberExpr:
		return m(kind, n.Span,
			"object", NodeToMap(n.Object),
			"property", n.Property)
	case *IndexExpr:
		return m(kind, n.Span,
			"object", NodeToMap(n.Object),
			"index", NodeToMap(n.Index))
	case *NewExpr:
		return m(kind, n.Span,
			"className", n.ClassName,
			"args", exprSlice(n.Args))

	// ---- Statements ----
	case *AssignStmt:
		return m(kind, n.Span,
			"target", NodeToMap(n.Target),
			"value", NodeToMap(n.Value))
	case *SayStmt:
		return m(kind, n.Span, "value", NodeToMap(n.Value))
	case *MathStmt:
		return m(kind, n.Span, "value", NodeToMap(n.Value))
	case *InputStmt:
		return m(kind, n.Span, "name", n.Name)
	case *EmptyLineStmt:
		return m(kind, n.Span, "count", NodeToMap(n.Count))
	case *ReturnStmt:
		result := m(kind, n.Span)
		if n.Value != nil {
			result["value"] = NodeToMap(n.Value)
		}
		return result
	case *ExprStmt:
		return m(kind, n.Span, "expr", NodeToMap(n.Expr))
	case *IfStmt:
		result := m(kind, n.Span,
			"condition", NodeToMap(n.Condition),
			"then", stmtSlice(n.Then))
		if elseBody, ok := n.Else.Get(); ok {
			result["else"] = stmtSlice(elseBody)
		}
		return result
	case *LoopStmt:
		return m(kind, n.Span,
			"count", NodeToMap(n.Count),
			"body", stmtSlice(n.Body))
	default:
		// PauseStmt, BreakStmt, HelpStmt and anything without fields
		return m(kind, node.GetSpan())
	}
}

// ---- helpers ----

func m(kind string, s span.Span, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"span": spanToMap(s),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

func spanToMap(s span.Span) map[string]interface{} {
	return map[string]interface{}{
		"line":   s.Start.Line,
		"column": s.Start.Column,
	}
}

func exprSlice(exprs []Expr) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = NodeToMap(e)
	}
	return result
}

func stmtSlice(stmts []Stmt) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = NodeToMap(s)
	}
	return result
}

func opStr(k token.Kind) string {
	return k.String()
}
