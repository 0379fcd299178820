// SPDX-License-Identifier: MIT
package scripting

import (
	"math"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// roundFunc rounds a number to the nearest integer, half away from
// zero. The stdlib has floor/ceil but no plain round, and lesson
// scripts use round heavily for score math.
var roundFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "num", Type: cty.Number},
	},
	Type: function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		f, _ := args[0].AsBigFloat().Float64()
		return cty.NumberFloatVal(math.Round(f)), nil
	},
})

// Functions returns the standard function library injected into every
// environment at lesson start. The same table is used for every
// statement; scripts cannot define functions of their own.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"abs":      stdlib.AbsoluteFunc,
		"ceil":     stdlib.CeilFunc,
		"floor":    stdlib.FloorFunc,
		"round":    roundFunc,
		"max":      stdlib.MaxFunc,
		"min":      stdlib.MinFunc,
		"pow":      stdlib.PowFunc,
		"signum":   stdlib.SignumFunc,
		"log":      stdlib.LogFunc,
		"parseint": stdlib.ParseIntFunc,
		"int":      stdlib.IntFunc,
		"upper":    stdlib.UpperFunc,
		"lower":    stdlib.LowerFunc,
		"strlen":   stdlib.StrlenFunc,
		"substr":   stdlib.SubstrFunc,
		"trim":     stdlib.TrimSpaceFunc,
		"replace":  stdlib.ReplaceFunc,
		"split":    stdlib.SplitFunc,
		"join":     stdlib.JoinFunc,
		"format":   stdlib.FormatFunc,
	}
}
