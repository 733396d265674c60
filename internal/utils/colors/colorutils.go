package colors

import "github.com/fatih/color"

var (
	BranchC    = color.New(color.FgGreen, color.Bold)
	ProtectedC = color.New(color.FgMagenta, color.Bold)
	HeadC      = color.New(color.FgCyan, color.Bold)
	CommitC    = color.New(color.FgYellow)
	WarningC   = color.New(color.FgYellow)
	FaintC     = color.New(color.Faint)
)

var (
	Branch    = BranchC.Sprint
	Protected = ProtectedC.Sprint
	Head      = HeadC.Sprint
	Commit    = CommitC.Sprint
	Warning   = WarningC.Sprint
	Faint     = FaintC.Sprint
)
