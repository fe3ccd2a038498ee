package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Директивы препроцессора
	PPInfo              Code = 1000
	PPMalformedInclude  Code = 1001
	PPIncludeNotFound   Code = 1002
	PPCyclicInclude     Code = 1003
	PPMissingVersion    Code = 1004
	PPPragmaOnceSkipped Code = 1005

	// I/O
	IOInfo           Code = 4000
	IOUnreadableFile Code = 4001
	IOWriteFailed    Code = 4002
	IOCacheCorrupt   Code = 4003

	// Проект и опции
	PrjInfo            Code = 5000
	PrjInvalidOption   Code = 5001
	PrjInvalidManifest Code = 5002
	PrjManifestMissing Code = 5003
)

var (
	codeDescription = map[Code]string{
		UnknownCode:         "Unknown error",
		PPInfo:              "Preprocessor information",
		PPMalformedInclude:  "Malformed #include directive",
		PPIncludeNotFound:   "Include file not found",
		PPCyclicInclude:     "Cyclic include",
		PPMissingVersion:    "Version not specified",
		PPPragmaOnceSkipped: "Include skipped by #pragma once",
		IOInfo:              "I/O information",
		IOUnreadableFile:    "Unreadable file",
		IOWriteFailed:       "Failed to write output",
		IOCacheCorrupt:      "Corrupt cache entry",
		PrjInfo:             "Project information",
		PrjInvalidOption:    "Invalid option",
		PrjInvalidManifest:  "Invalid manifest",
		PrjManifestMissing:  "Manifest not found",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("PP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
