package models

// TargetDirectory is the deployment root a DeployFile is relative to.
type TargetDirectory string

const (
	TargetProgramFiles TargetDirectory = "program-files"
	TargetBinaries     TargetDirectory = "binaries"
	TargetCommonData   TargetDirectory = "common-data"
)

// DebugSymbolSuffixes are the companion files deployed next to a binary when present.
var DebugSymbolSuffixes = []string{".mdb", ".pdb", ".dbg"}

// DeployFile maps a source file to a path relative to a target directory.
type DeployFile struct {
	SourcePath         string          `json:"sourcePath"`
	RelativeTargetPath string          `json:"relativeTargetPath"`
	TargetDirectory    TargetDirectory `json:"targetDirectory"`
}
