package cmd

import "github.com/fatih/color"

var (
	colorError     = color.New(color.FgRed)
	colorWarning   = color.New(color.FgYellow)
	colorSuccess   = color.New(color.FgGreen)
	colorNotice    = color.New(color.FgBlue)
	colorHeader    = color.New(color.FgWhite, color.Bold)
	colorChanged   = color.New(color.FgHiBlue)
	colorHighlight = color.New(color.FgCyan)
	colorDim       = color.New(color.Faint)
)
