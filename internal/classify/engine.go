package classify

import "strings"

// Engine identifies the caller generation that produced the VCF.
type Engine int

const (
	// EngineV1 is the original MuTect, which has no germline_risk filter.
	EngineV1 Engine = iota
	// EngineV2 is Mutect2 (GATK4).
	EngineV2
)

// versionMarker appears in the ##Mutect Version= header written by Mutect2.
const versionMarker = "Mutect Version="

func (e Engine) String() string {
	if e == EngineV2 {
		return "mutect2"
	}
	return "mutect"
}

// DetectEngine returns the engine in effect after reading headerLine.
// Once EngineV2 has been seen it is kept for the rest of the run.
func DetectEngine(current Engine, headerLine string) Engine {
	if current == EngineV2 || strings.Contains(headerLine, versionMarker) {
		return EngineV2
	}
	return current
}
