package runtime

import (
	"mslash/internal/ast"
	"mslash/internal/diag"
	"mslash/internal/module"
	"mslash/internal/span"

	"go.uber.org/zap"
)

// ============================================================
// Calls
// ============================================================

func (i *Interpreter) evalCall(e *ast.CallExpr) (Value, error) {
	// Method call: obj.method(args)
	if member, ok := e.Callee.(*ast.MemberExpr); ok {
		objVal, err := i.evalExpr(member.Object)
		if err != nil {
			return nil, err
		}
		args, err := i.evalArgs(e.Args)
		if err != nil {
			return nil, err
		}
		return i.callMethod(objVal, member.Property, args, e.Span)
	}

	// Named call: declarations of the running file take precedence, then
	// callable variables, then built-ins.
	if ident, ok := e.Callee.(*ast.IdentExpr); ok {
		args, err := i.evalArgs(e.Args)
		if err != nil {
			return nil, err
		}
		if fn, ok := i.symbols.Func(ident.Name); ok {
			return i.callFunction(fn, nil, args, e.Span)
		}
		if val, ok := i.env.Get(ident.Name); ok {
			return i.callValue(val, args, e.Span)
		}
		if b, ok := i.builtins[ident.Name]; ok {
			return i.callBuiltin(b, args, e.Span)
		}
		if _, ok := i.symbols.Class(ident.Name); ok {
			return nil, diag.Errorf(diag.CallError, diag.CodeNotCallable, e.Span,
				"class '%s' is not a function", ident.Name).
				WithHint("create an instance with 'new " + ident.Name + "(...)'")
		}
		return nil, callErr(diag.CodeUndefinedFunction, e.Span, "undefined function '%s'", ident.Name)
	}

	callee, err := i.evalExpr(e.Callee)
	if err != nil {
		return nil, err
	}
	args, err := i.evalArgs(e.Args)
	if err != nil {
		return nil, err
	}
	return i.callValue(callee, args, e.Span)
}

func (i *Interpreter) evalArgs(exprs []ast.Expr) ([]Value, error) {
	args := make([]Value, 0, len(exprs))
	for _, argExpr := range exprs {
		val, err := i.evalExpr(argExpr)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return args, nil
}

// callValue calls a function held in a value.
func (i *Interpreter) callValue(callee Value, args []Value, s span.Span) (Value, error) {
	switch fn := callee.(type) {
	case *FuncRef:
		return i.callFunction(fn.Fn, nil, args, s)
	case *BuiltinVal:
		return i.callBuiltin(fn, args, s)
	default:
		return nil, callErr(diag.CodeNotCallable, s, "value of type '%s' is not callable", callee.TypeName())
	}
}

// callFunction runs fn in a fresh scope whose parent is the caller's scope.
// Parameters (and this, for methods) are bound in that scope and shadow any
// outer names. Names called from the body resolve in fn's home file.
func (i *Interpreter) callFunction(fn *module.Function, this *ObjectVal, args []Value, s span.Span) (Value, error) {
	if len(args) != fn.Arity() {
		return nil, callErr(diag.CodeArityMismatch, s,
			"%s() expects %d argument(s), got %d", fn.Name(), fn.Arity(), len(args))
	}
	if i.depth >= i.maxDepth {
		return nil, callErr(diag.CodeRecursionLimit, s,
			"maximum call depth %d exceeded in %s()", i.maxDepth, fn.Name())
	}

	callEnv := NewEnvironment(i.env)
	if this != nil {
		callEnv.Define("this", this)
	}
	for idx, param := range fn.Def.Params {
		callEnv.Define(param, args[idx])
	}

	prevSymbols := i.symbols
	i.symbols = fn.Home
	i.depth++
	defer func() {
		i.symbols = prevSymbols
		i.depth--
	}()

	i.logger.Debug("call",
		zap.String("func", fn.Name()),
		zap.String("home", fn.Home.File),
		zap.Int("depth", i.depth))

	result, err := i.execBlock(fn.Def.Body, callEnv)
	if err != nil {
		return nil, err
	}
	if result.Signal == SigReturn {
		return result.Value, nil
	}
	return NoneVal{}, nil
}

func (i *Interpreter) callBuiltin(b *BuiltinVal, args []Value, s span.Span) (Value, error) {
	if len(args) < b.MinArgs || (b.MaxArgs >= 0 && len(args) > b.MaxArgs) {
		return nil, callErr(diag.CodeArityMismatch, s,
			"%s() expects %s argument(s), got %d", b.Name, arityRange(b.MinArgs, b.MaxArgs), len(args))
	}
	val, err := b.Fn(args)
	if err != nil {
		return nil, located(err, s)
	}
	return val, nil
}

// callMethod dispatches obj.name(args) on objects, lists, maps and strings.
func (i *Interpreter) callMethod(objVal Value, name string, args []Value, s span.Span) (Value, error) {
	switch obj := objVal.(type) {
	case *ObjectVal:
		if method, ok := obj.Class.Method(name).Get(); ok {
			return i.callFunction(method, obj, args, s)
		}
		if field, ok := obj.Fields[name]; ok {
			return i.callValue(field, args, s)
		}
		return nil, callErr(diag.CodeUndefinedMethod, s, "class '%s' has no method '%s'", obj.Class.Name(), name)
	case StringVal:
		val, err := callStringMethod(string(obj), name, args)
		return val, located(err, s)
	case *ListVal:
		val, err := callListMethod(obj, name, args)
		return val, located(err, s)
	case *MapVal:
		val, err := callMapMethod(obj, name, args)
		return val, located(err, s)
	default:
		return nil, callErr(diag.CodeUndefinedMethod, s, "value of type '%s' has no method '%s'", objVal.TypeName(), name)
	}
}

// evalNew allocates an object and runs its init method, if any.
func (i *Interpreter) evalNew(e *ast.NewExpr) (Value, error) {
	class, ok := i.symbols.Class(e.ClassName)
	if !ok {
		return nil, callErr(diag.CodeUndefinedClass, e.Span, "undefined class '%s'", e.ClassName)
	}

	args, err := i.evalArgs(e.Args)
	if err != nil {
		return nil, err
	}

	obj := &ObjectVal{Class: class, Fields: make(map[string]Value)}
	ctor, ok := class.Method("init").Get()
	if !ok {
		if len(args) > 0 {
			return nil, callErr(diag.CodeArityMismatch, e.Span,
				"class '%s' has no init method and takes no arguments, got %d", e.ClassName, len(args))
		}
		return obj, nil
	}
	if _, err := i.callFunction(ctor, obj, args, e.Span); err != nil {
		return nil, err
	}
	return obj, nil
}
