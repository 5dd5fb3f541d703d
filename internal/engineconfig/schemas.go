package engineconfig

// Concrete configuration schemas, one per (version, kind). The set is
// closed: a new protocol version needs a schema here plus a resolver
// table entry before it can be served.

// FormatterOptionsV1 controls the V1 formatter.
type FormatterOptionsV1 struct {
	SpaceBeforeColon      bool `json:"spaceBeforeColon"`
	SpaceAfterColon       bool `json:"spaceAfterColon"`
	SpaceAroundAssignment bool `json:"spaceAroundAssignment"`
	NewlinesBeforePrintln int  `json:"newlinesBeforePrintln"`
}

// FormatterOptionsV2 extends V1 with block-aware settings.
type FormatterOptionsV2 struct {
	SpaceBeforeColon      bool `json:"spaceBeforeColon"`
	SpaceAfterColon       bool `json:"spaceAfterColon"`
	SpaceAroundAssignment bool `json:"spaceAroundAssignment"`
	NewlinesBeforePrintln int  `json:"newlinesBeforePrintln"`
	IndentSpaces          int  `json:"indentSpaces"`
	IfBraceSameLine       bool `json:"ifBraceSameLine"`
}

// AnalyzerOptionsV1 controls the V1 linter.
type AnalyzerOptionsV1 struct {
	IdentifierFormat       string `json:"identifierFormat"`
	EnforcePrintlnArgument bool   `json:"enforcePrintlnArgument"`
}

// AnalyzerOptionsV2 adds the readInput argument rule introduced in V2.
type AnalyzerOptionsV2 struct {
	IdentifierFormat         string `json:"identifierFormat"`
	EnforcePrintlnArgument   bool   `json:"enforcePrintlnArgument"`
	EnforceReadInputArgument bool   `json:"enforceReadInputArgument"`
}
