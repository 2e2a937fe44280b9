package cmd

import "github.com/ardnew/formula/lang"

// Predefined errors.
var (
	ErrDefine      = lang.NewError("invalid definition")
	ErrVarsFile    = lang.NewError("invalid variables file")
	ErrName        = lang.NewError("invalid variable name")
	ErrEval        = lang.NewError("evaluation failed")
	ErrSource      = lang.NewError("read formulas")
	ErrOutput      = lang.NewError("write output")
	ErrWriteConfig = lang.NewError("write configuration file")
	ErrFileExists  = lang.NewError("file exists (use --force to overwrite)")
)
