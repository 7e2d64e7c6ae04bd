package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Unit files (typed IR)
	UnitInfo          Code = 1000
	UnitMalformedYAML Code = 1001
	UnitUnknownNode   Code = 1002
	UnitMissingField  Code = 1003
	UnitDuplicateDecl Code = 1004

	// Type expressions
	TypInfo            Code = 2000
	TypSyntax          Code = 2001
	TypUnknownName     Code = 2002
	TypEmptyUnion      Code = 2003
	TypBadContainerArg Code = 2004

	// Backends
	EmitInfo        Code = 3000
	EmitUnsupported Code = 3001

	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002
	IOCacheError     Code = 4003

	// Monomorphization
	MonoInfo                   Code = 5000
	MonoUnboundTypeParameter   Code = 5001
	MonoNameCollision          Code = 5002
	MonoRecursiveInstantiation Code = 5003
	MonoArityMismatch          Code = 5004
	MonoUnknownTemplate        Code = 5005
	MonoTypeParamLeak          Code = 5006

	ProjInfo            Code = 6000
	ProjManifestInvalid Code = 6001
	ProjNoUnits         Code = 6002

	ObsInfo    Code = 7000
	ObsTimings Code = 7001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                "Unknown error",
		UnitInfo:                   "Unit information",
		UnitMalformedYAML:          "malformed unit file",
		UnitUnknownNode:            "unknown statement or expression node",
		UnitMissingField:           "required field is missing",
		UnitDuplicateDecl:          "duplicate declaration",
		TypInfo:                    "Type information",
		TypSyntax:                  "malformed type expression",
		TypUnknownName:             "unknown type name",
		TypEmptyUnion:              "union must have at least one member",
		TypBadContainerArg:         "wrong number of container type arguments",
		EmitInfo:                   "Emitter information",
		EmitUnsupported:            "construct cannot be emitted",
		IOLoadFileError:            "I/O load file error",
		IOWriteFileError:           "I/O write file error",
		IOCacheError:               "build cache error",
		MonoInfo:                   "Monomorphization information",
		MonoUnboundTypeParameter:   "type parameter is not bound",
		MonoNameCollision:          "mangled class name collision",
		MonoRecursiveInstantiation: "recursive generic instantiation",
		MonoArityMismatch:          "wrong number of type arguments",
		MonoUnknownTemplate:        "unknown generic class",
		MonoTypeParamLeak:          "type parameter survived monomorphization",
		ProjInfo:                   "Project information",
		ProjManifestInvalid:        "invalid pyjs.toml",
		ProjNoUnits:                "no unit files matched",
		ObsInfo:                    "Observability information",
		ObsTimings:                 "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("UNIT%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("EMIT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("MONO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
